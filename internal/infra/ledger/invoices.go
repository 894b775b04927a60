package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/halloran/ap-gateway-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// FetchInvoices returns the entity's invoices in the order the ledger
// reports them. The aging aggregator relies on this order being preserved.
func (c *Client) FetchInvoices(ctx context.Context, entityID string) ([]domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "Ledger.FetchInvoices")
	defer span.End()
	span.SetAttributes(attribute.String("entity.id", entityID))

	body, err := c.do(ctx, "fetch invoices", http.MethodGet, "/entity/"+url.PathEscape(entityID)+"/invoices", nil)
	if err != nil {
		return nil, err
	}

	// The ledger wraps the collection in {"data": [...]}; older API
	// versions returned the bare array. Accept both.
	var wrapped struct {
		Data []domain.Invoice `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	var invoices []domain.Invoice
	if err := json.Unmarshal(body, &invoices); err != nil {
		return nil, &domain.ErrTransport{Operation: "fetch invoices", Err: fmt.Errorf("decode invoices: %w", err)}
	}
	return invoices, nil
}

// CreateInvoice forwards an invoice-creation payload and returns the raw
// created invoice.
func (c *Client) CreateInvoice(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreateInvoice")
	defer span.End()

	return c.do(ctx, "create invoice", http.MethodPost, "/invoice", payload)
}

// UpdateInvoice forwards an invoice update.
func (c *Client) UpdateInvoice(ctx context.Context, invoiceID string, payload map[string]any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.UpdateInvoice")
	defer span.End()
	span.SetAttributes(attribute.String("invoice.id", invoiceID))

	return c.do(ctx, "update invoice", http.MethodPost, "/invoice/"+url.PathEscape(invoiceID), payload)
}

// ApproveInvoice records an approval by the given entity user.
func (c *Client) ApproveInvoice(ctx context.Context, invoiceID, userID string) error {
	ctx, span := tracer.Start(ctx, "Ledger.ApproveInvoice")
	defer span.End()
	span.SetAttributes(
		attribute.String("invoice.id", invoiceID),
		attribute.String("user.id", userID),
	)

	_, err := c.do(ctx, "approve invoice", http.MethodPost,
		"/invoice/"+url.PathEscape(invoiceID)+"/approve",
		map[string]any{"userId": userID},
	)
	return err
}
