package domain

import "encoding/json"

// Request shapes of the pass-through endpoints. The gateway reshapes these
// into the remote ledger's payloads; it does not interpret the business
// fields beyond what the reshaping needs.

// EntityScopedRequest carries only the entity identifier; used by the list
// endpoints (invoices, users, policies, vendors).
type EntityScopedRequest struct {
	EntityID string `json:"entity_id"`
}

// InvoiceLineItem is one invoice line as submitted by the frontend.
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// CreateInvoiceRequest is the request body for POST /api/invoices/create
type CreateInvoiceRequest struct {
	EntityID  string            `json:"entityId"`
	PayeeID   string            `json:"payeeId"`
	Memo      string            `json:"memo"`
	DueDate   string            `json:"dueDate"`
	LineItems []InvoiceLineItem `json:"lineItems"`
}

// UpdateInvoiceRequest is the request body for POST /api/invoices/update.
// Fields other than the invoice id are forwarded verbatim.
type UpdateInvoiceRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Fields    json.RawMessage `json:"fields"`
}

// ApproveInvoiceRequest is the request body for POST /api/invoice/approve.
// UserID is the remote entity-user performing the approval; it is required
// (the gateway never substitutes a fixed approver).
type ApproveInvoiceRequest struct {
	InvoiceID string `json:"invoice_id"`
	UserID    string `json:"user_id"`
}

// EntityUserRequest covers entity-user create and update.
type EntityUserRequest struct {
	EntityID  string   `json:"entity_id"`
	UserID    string   `json:"user_id,omitempty"` // required for update/delete
	ForeignID string   `json:"foreignId,omitempty"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles"`
}

// ApprovalPolicyRequest covers approval-policy create and update. The flat
// local fields are reshaped into the remote trigger/rule structure.
type ApprovalPolicyRequest struct {
	EntityID     string   `json:"entity_id"`
	PolicyID     string   `json:"policy_id,omitempty"` // required for update/delete
	Amount       float64  `json:"amount"`
	Currency     string   `json:"currency"`
	Roles        []string `json:"roles"`
	NumApprovers int      `json:"num_approvers"`
}

// PaymentSchemaField is forwarded verbatim; the remote ledger owns the
// field schema format.
type PaymentSchemaField = json.RawMessage

// PaymentSchemaRequest covers payment-method schema create and delete.
type PaymentSchemaRequest struct {
	SchemaID      string               `json:"schema_id,omitempty"` // required for delete
	Name          string               `json:"name"`
	IsSource      bool                 `json:"isSource"`
	IsDestination bool                 `json:"isDestination"`
	Fields        []PaymentSchemaField `json:"fields"`
}
