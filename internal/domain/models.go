// Package domain holds the core types shared across the gateway:
// local accounts, their link to a remote ledger entity, and the
// request/response shapes of the local API surface.
package domain

import "time"

// Account is a local login identity. The password is stored only as a
// bcrypt hash; plaintext never leaves the signup handler.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountLink associates a local account with a remote ledger entity.
// EntityID is empty until onboarding completes and is written exactly once;
// callers must check it before attaching (see OnboardingService).
type AccountLink struct {
	AccountID  string `json:"account_id"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	EntityLogo string `json:"entity_logo"`
}

// Linked reports whether onboarding has completed for this link.
func (l *AccountLink) Linked() bool {
	return l != nil && l.EntityID != ""
}

// GatewayMetrics is a computed snapshot of gateway health backing the
// GET /v1/metrics/summary endpoint.
type GatewayMetrics struct {
	TotalRequests     int64   `json:"total_requests"`
	ErrorRate         float64 `json:"error_rate"`
	RemoteErrors      int64   `json:"remote_errors"`
	OnboardingsNew    int64   `json:"onboardings_new"`
	OnboardingsRepeat int64   `json:"onboardings_repeat"`
	DocumentsSaved    int64   `json:"documents_saved"`
	DocumentsFailed   int64   `json:"documents_failed"`
	TokenCacheHitRate float64 `json:"token_cache_hit_rate"`
	Period            string  `json:"period"`
}

// RemoteEntity is the remote ledger's view of a business entity.
// Only the identifier is interpreted locally.
type RemoteEntity struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status,omitempty"`
	ForeignID string `json:"foreignId,omitempty"`
}
