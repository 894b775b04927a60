// Package blob persists uploaded documents on the local filesystem.
// Documents arrive as base64 data URIs; the stored filename is the
// document purpose plus the extension implied by the MIME type.
package blob

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore writes decoded documents under a single directory.
type LocalStore struct {
	dir    string
	logger *zap.Logger
}

// NewLocalStore creates a blob store rooted at dir.
func NewLocalStore(dir string, logger *zap.Logger) *LocalStore {
	return &LocalStore{dir: dir, logger: logger}
}

// Save decodes a data URI of the form "data:<mime>;base64,<payload>" and
// writes it to <dir>/<name>.<ext>, returning the written path. The
// extension is the MIME subtype ("image/png" -> "png").
func (s *LocalStore) Save(ctx context.Context, name, dataURI string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	format, payload, ok := strings.Cut(dataURI, ";base64,")
	if !ok {
		return "", fmt.Errorf("%s: not a base64 data URI", name)
	}
	ext := format[strings.LastIndexByte(format, '/')+1:]
	if ext == "" || strings.ContainsAny(ext, `/\.`) {
		return "", fmt.Errorf("%s: cannot derive extension from %q", name, format)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%s: decode base64: %w", name, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.dir, name+"."+ext)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("%s: write file: %w", name, err)
	}

	s.logger.Debug("blob: document saved",
		zap.String("name", name),
		zap.String("path", path),
		zap.Int("bytes", len(raw)),
	)
	return path, nil
}
