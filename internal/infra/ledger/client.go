// Package ledger provides the HTTP client for the remote accounts-payable
// platform. It owns bearer-token authentication, request/response plumbing
// and failure normalization: remote rejections become ErrRemoteAPI,
// unreachability and decode failures become ErrTransport.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/infra/observability"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("ledger")

// Client wraps HTTP calls to the remote ledger API. The bearer credential
// is injected at construction and scoped to the instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a ledger client.
func NewClient(httpClient *http.Client, baseURL, apiKey string, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cb:         cb,
		metrics:    metrics,
		logger:     logger,
	}
}

type httpResult struct {
	status int
	body   []byte
}

// do executes a single authenticated request. No retries: a failed call is
// reported once and the caller decides whether to re-issue it. Only
// transport failures and 5xx responses count against the circuit breaker.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	res, err := c.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, &domain.ErrTransport{Operation: op, Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("ledger: request failed",
				zap.String("operation", op),
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err),
			)
			return nil, &domain.ErrTransport{Operation: op, Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &domain.ErrTransport{Operation: op, Err: err}
		}

		r := httpResult{status: resp.StatusCode, body: body}
		if resp.StatusCode >= 500 {
			return r, &domain.ErrRemoteAPI{Operation: op, Status: resp.StatusCode, Body: string(body)}
		}
		return r, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// The request was never issued; not a remote error.
			return nil, &domain.ErrCircuitOpen{Service: "ledger"}
		}
		c.metrics.IncrRemoteError(op)
		var remoteErr *domain.ErrRemoteAPI
		if errors.As(err, &remoteErr) {
			c.logger.Warn("ledger: server error",
				zap.String("operation", op),
				zap.Int("status", remoteErr.Status),
				zap.String("body", remoteErr.Body),
			)
		}
		return nil, err
	}

	r := res.(httpResult)
	if r.status < 200 || r.status >= 300 {
		c.metrics.IncrRemoteError(op)
		c.logger.Warn("ledger: non-2xx response",
			zap.String("operation", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", r.status),
			zap.String("body", string(r.body)),
		)
		return nil, &domain.ErrRemoteAPI{Operation: op, Status: r.status, Body: string(r.body)}
	}

	c.logger.Debug("ledger: request OK",
		zap.String("operation", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", r.status),
	)
	return r.body, nil
}
