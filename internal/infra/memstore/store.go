// Package memstore is an in-memory AccountStore used when Supabase is not
// configured (local development) and in tests. Email uniqueness is
// enforced under the store's own lock, matching the constraint the
// database-backed store gets from its unique index.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/halloran/ap-gateway-go/internal/domain"

	"github.com/google/uuid"
)

// Store holds accounts and links keyed by account id.
type Store struct {
	mu       sync.Mutex
	byEmail  map[string]*domain.Account
	links    map[string]*domain.AccountLink
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byEmail: make(map[string]*domain.Account),
		links:   make(map[string]*domain.AccountLink),
	}
}

// CreateAccount inserts a new account. Returns ErrConflict if the email is
// already registered. Assigns an id when the caller left it empty.
func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(account.Email)
	if _, exists := s.byEmail[key]; exists {
		return &domain.ErrConflict{Message: "account already exists"}
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	stored := *account
	s.byEmail[key] = &stored
	return nil
}

// GetAccountByEmail returns the account or nil when absent.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

// EnsureLink returns the account's link, creating an empty one on first use.
func (s *Store) EnsureLink(ctx context.Context, accountID string) (*domain.AccountLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[accountID]
	if !ok {
		link = &domain.AccountLink{AccountID: accountID}
		s.links[accountID] = link
	}
	copied := *link
	return &copied, nil
}

// AttachEntity writes the remote entity reference onto the link. Callers
// are expected to have checked the link is unlinked; a second call
// overwrites.
func (s *Store) AttachEntity(ctx context.Context, accountID, entityID, entityName, entityLogo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[accountID]
	if !ok {
		link = &domain.AccountLink{AccountID: accountID}
		s.links[accountID] = link
	}
	link.EntityID = entityID
	link.EntityName = entityName
	link.EntityLogo = entityLogo
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
