package service

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/port"
)

var payablesTracer = otel.Tracer("service/payables")

// PayablesService is the reshaping pass-through for invoices, entity
// users, approval policies, payment-method schemas, and vendors. The
// remote ledger owns the data; this layer validates identifiers and
// converts between the flat local request shapes and the remote
// payload structure.
type PayablesService struct {
	ledger port.LedgerAPI
	logger *zap.Logger
}

// NewPayablesService creates a PayablesService.
func NewPayablesService(ledger port.LedgerAPI, logger *zap.Logger) *PayablesService {
	return &PayablesService{ledger: ledger, logger: logger}
}

// ListInvoices returns the entity's invoices as the remote ledger sent
// them.
func (s *PayablesService) ListInvoices(ctx context.Context, req *domain.EntityScopedRequest) ([]domain.Invoice, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.ListInvoices")
	defer span.End()

	if req.EntityID == "" {
		return nil, &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	span.SetAttributes(attribute.String("entity_id", req.EntityID))
	return s.ledger.FetchInvoices(ctx, req.EntityID)
}

// CreateInvoice creates a draft invoice payable by the entity.
func (s *PayablesService) CreateInvoice(ctx context.Context, req *domain.CreateInvoiceRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.CreateInvoice")
	defer span.End()

	if req.EntityID == "" {
		return nil, &domain.ErrValidation{Field: "entityId", Message: "entityId is required"}
	}
	if req.PayeeID == "" {
		return nil, &domain.ErrValidation{Field: "payeeId", Message: "payeeId is required"}
	}

	lineItems := make([]map[string]any, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		lineItems = append(lineItems, map[string]any{
			"description": li.Description,
			"quantity":    li.Quantity,
			"unitPrice":   li.UnitPrice,
		})
	}

	payload := map[string]any{
		"status":          "NEW",
		"creatorEntityId": req.EntityID,
		"payerId":         req.EntityID,
		"payeeId":         req.PayeeID,
		"noteToSelf":      req.Memo,
		"dueDate":         req.DueDate,
		"lineItems":       lineItems,
	}
	return s.ledger.CreateInvoice(ctx, payload)
}

// UpdateInvoice forwards the given fields to the remote invoice.
func (s *PayablesService) UpdateInvoice(ctx context.Context, req *domain.UpdateInvoiceRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.UpdateInvoice")
	defer span.End()

	if req.InvoiceID == "" {
		return nil, &domain.ErrValidation{Field: "invoice_id", Message: "invoice_id is required"}
	}

	var fields map[string]any
	if len(req.Fields) > 0 {
		if err := json.Unmarshal(req.Fields, &fields); err != nil {
			return nil, &domain.ErrValidation{Field: "fields", Message: "fields must be a JSON object"}
		}
	}
	if len(fields) == 0 {
		return nil, &domain.ErrValidation{Field: "fields", Message: "at least one field is required"}
	}
	return s.ledger.UpdateInvoice(ctx, req.InvoiceID, fields)
}

// ApproveInvoice records an approval by the given entity user. The user
// id is required; approvals are never attributed to a default user.
func (s *PayablesService) ApproveInvoice(ctx context.Context, req *domain.ApproveInvoiceRequest) error {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.ApproveInvoice")
	defer span.End()

	if req.InvoiceID == "" {
		return &domain.ErrValidation{Field: "invoice_id", Message: "invoice_id is required"}
	}
	if req.UserID == "" {
		return &domain.ErrValidation{Field: "user_id", Message: "user_id is required"}
	}
	return s.ledger.ApproveInvoice(ctx, req.InvoiceID, req.UserID)
}

// CreateEntityUser adds a user to the entity.
func (s *PayablesService) CreateEntityUser(ctx context.Context, req *domain.EntityUserRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.CreateEntityUser")
	defer span.End()

	if req.EntityID == "" {
		return nil, &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	}
	return s.ledger.CreateEntityUser(ctx, req.EntityID, entityUserPayload(req))
}

// ListEntityUsers returns the entity's users verbatim.
func (s *PayablesService) ListEntityUsers(ctx context.Context, req *domain.EntityScopedRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.ListEntityUsers")
	defer span.End()

	if req.EntityID == "" {
		return nil, &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	return s.ledger.ListEntityUsers(ctx, req.EntityID)
}

// UpdateEntityUser updates a user of the entity.
func (s *PayablesService) UpdateEntityUser(ctx context.Context, req *domain.EntityUserRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.UpdateEntityUser")
	defer span.End()

	if req.EntityID == "" {
		return nil, &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	if req.UserID == "" {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "user_id is required"}
	}
	return s.ledger.UpdateEntityUser(ctx, req.EntityID, req.UserID, entityUserPayload(req))
}

// DeleteEntityUser removes a user from the entity.
func (s *PayablesService) DeleteEntityUser(ctx context.Context, req *domain.EntityUserRequest) error {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.DeleteEntityUser")
	defer span.End()

	if req.EntityID == "" {
		return &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	if req.UserID == "" {
		return &domain.ErrValidation{Field: "user_id", Message: "user_id is required"}
	}
	return s.ledger.DeleteEntityUser(ctx, req.EntityID, req.UserID)
}

// CreateApprovalPolicy reshapes the flat local fields into the remote
// trigger/rule structure and creates the policy.
func (s *PayablesService) CreateApprovalPolicy(ctx context.Context, req *domain.ApprovalPolicyRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.CreateApprovalPolicy")
	defer span.End()

	if err := validatePolicy(req, false); err != nil {
		return nil, err
	}
	return s.ledger.CreateApprovalPolicy(ctx, req.EntityID, policyPayload(req))
}

// ListApprovalPolicies returns the entity's policies verbatim.
func (s *PayablesService) ListApprovalPolicies(ctx context.Context, req *domain.EntityScopedRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.ListApprovalPolicies")
	defer span.End()

	if req.EntityID == "" {
		return nil, &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	return s.ledger.ListApprovalPolicies(ctx, req.EntityID)
}

// UpdateApprovalPolicy replaces the policy's trigger and rule.
func (s *PayablesService) UpdateApprovalPolicy(ctx context.Context, req *domain.ApprovalPolicyRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.UpdateApprovalPolicy")
	defer span.End()

	if err := validatePolicy(req, true); err != nil {
		return nil, err
	}
	return s.ledger.UpdateApprovalPolicy(ctx, req.EntityID, req.PolicyID, policyPayload(req))
}

// DeleteApprovalPolicy removes the policy from the entity.
func (s *PayablesService) DeleteApprovalPolicy(ctx context.Context, req *domain.ApprovalPolicyRequest) error {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.DeleteApprovalPolicy")
	defer span.End()

	if req.EntityID == "" {
		return &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	if req.PolicyID == "" {
		return &domain.ErrValidation{Field: "policy_id", Message: "policy_id is required"}
	}
	return s.ledger.DeleteApprovalPolicy(ctx, req.EntityID, req.PolicyID)
}

// CreatePaymentSchema registers a custom payment-method schema.
func (s *PayablesService) CreatePaymentSchema(ctx context.Context, req *domain.PaymentSchemaRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.CreatePaymentSchema")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	fields := req.Fields
	if fields == nil {
		fields = []domain.PaymentSchemaField{}
	}
	payload := map[string]any{
		"name":          req.Name,
		"isSource":      req.IsSource,
		"isDestination": req.IsDestination,
		"fields":        fields,
	}
	return s.ledger.CreatePaymentSchema(ctx, payload)
}

// ListPaymentSchemas returns all payment-method schemas verbatim.
func (s *PayablesService) ListPaymentSchemas(ctx context.Context) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.ListPaymentSchemas")
	defer span.End()

	return s.ledger.ListPaymentSchemas(ctx)
}

// DeletePaymentSchema removes a payment-method schema.
func (s *PayablesService) DeletePaymentSchema(ctx context.Context, req *domain.PaymentSchemaRequest) error {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.DeletePaymentSchema")
	defer span.End()

	if req.SchemaID == "" {
		return &domain.ErrValidation{Field: "schema_id", Message: "schema_id is required"}
	}
	return s.ledger.DeletePaymentSchema(ctx, req.SchemaID)
}

// ListVendors returns the entity's payees verbatim.
func (s *PayablesService) ListVendors(ctx context.Context, req *domain.EntityScopedRequest) (json.RawMessage, error) {
	ctx, span := payablesTracer.Start(ctx, "PayablesService.ListVendors")
	defer span.End()

	if req.EntityID == "" {
		return nil, &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	return s.ledger.ListVendors(ctx, req.EntityID)
}

func entityUserPayload(req *domain.EntityUserRequest) map[string]any {
	roles := req.Roles
	if roles == nil {
		roles = []string{}
	}
	payload := map[string]any{
		"email": req.Email,
		"name":  req.Name,
		"roles": roles,
	}
	if req.ForeignID != "" {
		payload["foreignId"] = req.ForeignID
	}
	return payload
}

func validatePolicy(req *domain.ApprovalPolicyRequest, forUpdate bool) error {
	if req.EntityID == "" {
		return &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	if forUpdate && req.PolicyID == "" {
		return &domain.ErrValidation{Field: "policy_id", Message: "policy_id is required"}
	}
	if req.Amount < 0 {
		return &domain.ErrValidation{Field: "amount", Message: "amount must not be negative"}
	}
	if len(req.Roles) == 0 {
		return &domain.ErrValidation{Field: "roles", Message: "at least one role is required"}
	}
	if req.NumApprovers < 1 {
		return &domain.ErrValidation{Field: "num_approvers", Message: "num_approvers must be at least 1"}
	}
	return nil
}

func policyPayload(req *domain.ApprovalPolicyRequest) map[string]any {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	return map[string]any{
		"trigger": []map[string]any{
			{
				"type":     "amount",
				"amount":   req.Amount,
				"currency": currency,
			},
		},
		"rule": map[string]any{
			"type":         "approver",
			"numApprovers": req.NumApprovers,
			"identifierList": map[string]any{
				"type":  "rolesList",
				"value": req.Roles,
			},
		},
	}
}
