package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/halloran/ap-gateway-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// CreateEntity registers a new business entity with the remote ledger.
// A 2xx response without an identifier is treated as a bad gateway: the
// remote accepted the request but the entity is unusable locally.
func (c *Client) CreateEntity(ctx context.Context, payload map[string]any) (*domain.RemoteEntity, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreateEntity")
	defer span.End()

	body, err := c.do(ctx, "create entity", http.MethodPost, "/entity", payload)
	if err != nil {
		return nil, err
	}

	var entity domain.RemoteEntity
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, &domain.ErrTransport{Operation: "create entity", Err: fmt.Errorf("decode entity: %w", err)}
	}
	if entity.ID == "" {
		return nil, &domain.ErrRemoteAPI{
			Operation: "create entity",
			Status:    http.StatusBadGateway,
			Body:      string(body),
		}
	}

	span.SetAttributes(attribute.String("entity.id", entity.ID))
	return &entity, nil
}

// IssueToken mints a remote session token for the entity. The ledger
// returns the token as a bare JSON string; one layer of surrounding quotes
// is stripped before returning.
func (c *Client) IssueToken(ctx context.Context, entityID string) (string, error) {
	ctx, span := tracer.Start(ctx, "Ledger.IssueToken")
	defer span.End()
	span.SetAttributes(attribute.String("entity.id", entityID))

	body, err := c.do(ctx, "issue token", http.MethodPost, "/entity/"+url.PathEscape(entityID)+"/token", map[string]any{})
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(body))
	if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
		token = token[1 : len(token)-1]
	}
	return token, nil
}
