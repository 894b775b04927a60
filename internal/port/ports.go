// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from concrete implementations: the remote ledger HTTP client, the
// account store, and the blob store for uploaded documents.
package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/halloran/ap-gateway-go/internal/domain"
)

// LedgerAPI is the remote accounts-payable platform. All business data
// lives there; the gateway only reshapes requests and responses.
type LedgerAPI interface {
	// Entities
	CreateEntity(ctx context.Context, payload map[string]any) (*domain.RemoteEntity, error)
	IssueToken(ctx context.Context, entityID string) (string, error)

	// Invoices
	FetchInvoices(ctx context.Context, entityID string) ([]domain.Invoice, error)
	CreateInvoice(ctx context.Context, payload map[string]any) (json.RawMessage, error)
	UpdateInvoice(ctx context.Context, invoiceID string, payload map[string]any) (json.RawMessage, error)
	ApproveInvoice(ctx context.Context, invoiceID, userID string) error

	// Entity users
	CreateEntityUser(ctx context.Context, entityID string, payload map[string]any) (json.RawMessage, error)
	ListEntityUsers(ctx context.Context, entityID string) (json.RawMessage, error)
	UpdateEntityUser(ctx context.Context, entityID, userID string, payload map[string]any) (json.RawMessage, error)
	DeleteEntityUser(ctx context.Context, entityID, userID string) error

	// Approval policies
	CreateApprovalPolicy(ctx context.Context, entityID string, payload map[string]any) (json.RawMessage, error)
	ListApprovalPolicies(ctx context.Context, entityID string) (json.RawMessage, error)
	UpdateApprovalPolicy(ctx context.Context, entityID, policyID string, payload map[string]any) (json.RawMessage, error)
	DeleteApprovalPolicy(ctx context.Context, entityID, policyID string) error

	// Payment-method schemas
	CreatePaymentSchema(ctx context.Context, payload map[string]any) (json.RawMessage, error)
	ListPaymentSchemas(ctx context.Context) (json.RawMessage, error)
	DeletePaymentSchema(ctx context.Context, schemaID string) error

	// Vendors (counterparties)
	ListVendors(ctx context.Context, entityID string) (json.RawMessage, error)
}

// AccountStore persists local accounts and their remote-entity links.
// Implementations must enforce email uniqueness themselves (unique
// constraint in the backing store), so concurrent signups for the same
// email cannot both succeed.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// EnsureLink returns the AccountLink for the account, creating an
	// empty one if none exists (idempotent get-or-create).
	EnsureLink(ctx context.Context, accountID string) (*domain.AccountLink, error)
	AttachEntity(ctx context.Context, accountID, entityID, entityName, entityLogo string) error
}

// BlobStore persists uploaded documents submitted as base64 data URIs and
// returns a stable reference to the stored copy.
type BlobStore interface {
	Save(ctx context.Context, name, dataURI string) (string, error)
}

// Cache provides generic caching with TTL. Set uses the cache's default
// lifetime; SetFor is for entries whose lifetime the remote side dictates.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	SetFor(key string, value T, ttl time.Duration)
}
