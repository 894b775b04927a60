package service_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/halloran/ap-gateway-go/internal/domain"
)

// mockLedger implements port.LedgerAPI with overridable function fields.
// Unset methods return benign defaults so each test only wires what it
// asserts on.
type mockLedger struct {
	createEntityFn  func(ctx context.Context, payload map[string]any) (*domain.RemoteEntity, error)
	issueTokenFn    func(ctx context.Context, entityID string) (string, error)
	fetchInvoicesFn func(ctx context.Context, entityID string) ([]domain.Invoice, error)

	createEntityCalls atomic.Int32
	issueTokenCalls   atomic.Int32

	lastPayload map[string]any
}

func (m *mockLedger) CreateEntity(ctx context.Context, payload map[string]any) (*domain.RemoteEntity, error) {
	m.createEntityCalls.Add(1)
	m.lastPayload = payload
	if m.createEntityFn != nil {
		return m.createEntityFn(ctx, payload)
	}
	return &domain.RemoteEntity{ID: "ent-1"}, nil
}

func (m *mockLedger) IssueToken(ctx context.Context, entityID string) (string, error) {
	m.issueTokenCalls.Add(1)
	if m.issueTokenFn != nil {
		return m.issueTokenFn(ctx, entityID)
	}
	return "tok-" + entityID, nil
}

func (m *mockLedger) FetchInvoices(ctx context.Context, entityID string) ([]domain.Invoice, error) {
	if m.fetchInvoicesFn != nil {
		return m.fetchInvoicesFn(ctx, entityID)
	}
	return nil, nil
}

func (m *mockLedger) CreateInvoice(_ context.Context, payload map[string]any) (json.RawMessage, error) {
	m.lastPayload = payload
	return json.RawMessage(`{"id":"inv-1"}`), nil
}

func (m *mockLedger) UpdateInvoice(_ context.Context, _ string, payload map[string]any) (json.RawMessage, error) {
	m.lastPayload = payload
	return json.RawMessage(`{"id":"inv-1"}`), nil
}

func (m *mockLedger) ApproveInvoice(_ context.Context, _, _ string) error { return nil }

func (m *mockLedger) CreateEntityUser(_ context.Context, _ string, payload map[string]any) (json.RawMessage, error) {
	m.lastPayload = payload
	return json.RawMessage(`{"id":"user-1"}`), nil
}

func (m *mockLedger) ListEntityUsers(_ context.Context, _ string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (m *mockLedger) UpdateEntityUser(_ context.Context, _, _ string, payload map[string]any) (json.RawMessage, error) {
	m.lastPayload = payload
	return json.RawMessage(`{"id":"user-1"}`), nil
}

func (m *mockLedger) DeleteEntityUser(_ context.Context, _, _ string) error { return nil }

func (m *mockLedger) CreateApprovalPolicy(_ context.Context, _ string, payload map[string]any) (json.RawMessage, error) {
	m.lastPayload = payload
	return json.RawMessage(`{"id":"pol-1"}`), nil
}

func (m *mockLedger) ListApprovalPolicies(_ context.Context, _ string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (m *mockLedger) UpdateApprovalPolicy(_ context.Context, _, _ string, payload map[string]any) (json.RawMessage, error) {
	m.lastPayload = payload
	return json.RawMessage(`{"id":"pol-1"}`), nil
}

func (m *mockLedger) DeleteApprovalPolicy(_ context.Context, _, _ string) error { return nil }

func (m *mockLedger) CreatePaymentSchema(_ context.Context, payload map[string]any) (json.RawMessage, error) {
	m.lastPayload = payload
	return json.RawMessage(`{"id":"cpms-1"}`), nil
}

func (m *mockLedger) ListPaymentSchemas(_ context.Context) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (m *mockLedger) DeletePaymentSchema(_ context.Context, _ string) error { return nil }

func (m *mockLedger) ListVendors(_ context.Context, _ string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

// mockBlobStore records saved names and can fail selectively. Saves run
// concurrently during onboarding, hence the mutex.
type mockBlobStore struct {
	mu      sync.Mutex
	failFor map[string]bool
	saved   []string
}

func (m *mockBlobStore) Save(_ context.Context, name, _ string) (string, error) {
	for suffix := range m.failFor {
		if strings.HasSuffix(name, suffix) {
			return "", context.DeadlineExceeded
		}
	}
	m.mu.Lock()
	m.saved = append(m.saved, name)
	m.mu.Unlock()
	return "uploads/" + name + ".png", nil
}
