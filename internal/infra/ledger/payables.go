package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ============================================================
// Entity users
// ============================================================

func (c *Client) CreateEntityUser(ctx context.Context, entityID string, payload map[string]any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreateEntityUser")
	defer span.End()

	return c.do(ctx, "create entity user", http.MethodPost,
		"/entity/"+url.PathEscape(entityID)+"/user", payload)
}

func (c *Client) ListEntityUsers(ctx context.Context, entityID string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.ListEntityUsers")
	defer span.End()

	return c.do(ctx, "list entity users", http.MethodGet,
		"/entity/"+url.PathEscape(entityID)+"/users", nil)
}

func (c *Client) UpdateEntityUser(ctx context.Context, entityID, userID string, payload map[string]any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.UpdateEntityUser")
	defer span.End()

	return c.do(ctx, "update entity user", http.MethodPost,
		"/entity/"+url.PathEscape(entityID)+"/user/"+url.PathEscape(userID), payload)
}

func (c *Client) DeleteEntityUser(ctx context.Context, entityID, userID string) error {
	ctx, span := tracer.Start(ctx, "Ledger.DeleteEntityUser")
	defer span.End()

	_, err := c.do(ctx, "delete entity user", http.MethodDelete,
		"/entity/"+url.PathEscape(entityID)+"/user/"+url.PathEscape(userID), nil)
	return err
}

// ============================================================
// Approval policies
// ============================================================

func (c *Client) CreateApprovalPolicy(ctx context.Context, entityID string, payload map[string]any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreateApprovalPolicy")
	defer span.End()

	return c.do(ctx, "create approval policy", http.MethodPost,
		"/entity/"+url.PathEscape(entityID)+"/approval-policies", payload)
}

func (c *Client) ListApprovalPolicies(ctx context.Context, entityID string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.ListApprovalPolicies")
	defer span.End()

	return c.do(ctx, "list approval policies", http.MethodGet,
		"/entity/"+url.PathEscape(entityID)+"/approval-policies", nil)
}

func (c *Client) UpdateApprovalPolicy(ctx context.Context, entityID, policyID string, payload map[string]any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.UpdateApprovalPolicy")
	defer span.End()

	return c.do(ctx, "update approval policy", http.MethodPost,
		"/entity/"+url.PathEscape(entityID)+"/approval-policy/"+url.PathEscape(policyID), payload)
}

func (c *Client) DeleteApprovalPolicy(ctx context.Context, entityID, policyID string) error {
	ctx, span := tracer.Start(ctx, "Ledger.DeleteApprovalPolicy")
	defer span.End()

	_, err := c.do(ctx, "delete approval policy", http.MethodDelete,
		"/entity/"+url.PathEscape(entityID)+"/approval-policy/"+url.PathEscape(policyID), nil)
	return err
}

// ============================================================
// Payment-method schemas
// ============================================================

func (c *Client) CreatePaymentSchema(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreatePaymentSchema")
	defer span.End()

	return c.do(ctx, "create payment schema", http.MethodPost, "/paymentMethod/schema", payload)
}

func (c *Client) ListPaymentSchemas(ctx context.Context) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.ListPaymentSchemas")
	defer span.End()

	return c.do(ctx, "list payment schemas", http.MethodGet, "/paymentMethod/schema", nil)
}

func (c *Client) DeletePaymentSchema(ctx context.Context, schemaID string) error {
	ctx, span := tracer.Start(ctx, "Ledger.DeletePaymentSchema")
	defer span.End()

	_, err := c.do(ctx, "delete payment schema", http.MethodDelete,
		"/paymentMethod/schema/"+url.PathEscape(schemaID), nil)
	return err
}

// ============================================================
// Vendors (counterparties)
// ============================================================

func (c *Client) ListVendors(ctx context.Context, entityID string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Ledger.ListVendors")
	defer span.End()

	return c.do(ctx, "list vendors", http.MethodGet,
		"/entity/"+url.PathEscape(entityID)+"/counterparties/payees", nil)
}
