package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
)

// AccountStore persists accounts and their entity links in Supabase.
type AccountStore struct {
	client *Client
	logger *zap.Logger
}

// NewAccountStore creates an AccountStore backed by the given Supabase client.
func NewAccountStore(client *Client, logger *zap.Logger) *AccountStore {
	return &AccountStore{client: client, logger: logger}
}

type accountRow struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type linkRow struct {
	AccountID  string `json:"account_id"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	EntityLogo string `json:"entity_logo"`
}

// CreateAccount inserts a new account. A unique index on email makes
// duplicate signups fail with 409, which maps to ErrConflict.
func (s *AccountStore) CreateAccount(ctx context.Context, account *domain.Account) error {
	ctx, span := tracer.Start(ctx, "supabase.CreateAccount")
	defer span.End()

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))

	status, body, err := s.client.doPost(ctx, "accounts", map[string]any{
		"id":            account.ID,
		"email":         account.Email,
		"password_hash": account.PasswordHash,
		"created_at":    account.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return &domain.ErrTransport{Operation: "create account", Err: err}
	}
	if status == http.StatusConflict {
		return &domain.ErrConflict{Message: "an account with this email already exists"}
	}
	if status < 200 || status >= 300 {
		s.logger.Warn("supabase: account insert failed",
			zap.Int("status", status),
			zap.String("body", string(body)),
		)
		return &domain.ErrTransport{Operation: "create account", Err: errStatus(status, body)}
	}
	return nil
}

// GetAccountByEmail returns the account for an email, or nil when no
// account exists.
func (s *AccountStore) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "supabase.GetAccountByEmail")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	path := "accounts?email=eq." + url.QueryEscape(email) + "&limit=1"
	body, err := s.client.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrTransport{Operation: "look up account", Err: err}
	}
	if body == nil {
		return nil, nil
	}

	var rows []accountRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrTransport{Operation: "look up account", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToAccount(rows[0]), nil
}

// EnsureLink returns the existing link row for an account, creating an
// empty one on first use.
func (s *AccountStore) EnsureLink(ctx context.Context, accountID string) (*domain.AccountLink, error) {
	ctx, span := tracer.Start(ctx, "supabase.EnsureLink")
	defer span.End()

	link, err := s.getLink(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		return link, nil
	}

	status, body, err := s.client.doPost(ctx, "account_links", map[string]any{
		"account_id": accountID,
	})
	if err != nil {
		return nil, &domain.ErrTransport{Operation: "create account link", Err: err}
	}
	// A concurrent EnsureLink may have inserted first; re-read on conflict.
	if status == http.StatusConflict {
		return s.getLink(ctx, accountID)
	}
	if status < 200 || status >= 300 {
		return nil, &domain.ErrTransport{Operation: "create account link", Err: errStatus(status, body)}
	}
	return &domain.AccountLink{AccountID: accountID}, nil
}

// AttachEntity records the remote entity an account maps to.
func (s *AccountStore) AttachEntity(ctx context.Context, accountID, entityID, entityName, entityLogo string) error {
	ctx, span := tracer.Start(ctx, "supabase.AttachEntity")
	defer span.End()

	path := "account_links?account_id=eq." + url.QueryEscape(accountID)
	err := s.client.doPatch(ctx, path, map[string]any{
		"entity_id":   entityID,
		"entity_name": entityName,
		"entity_logo": entityLogo,
	})
	if err != nil {
		return &domain.ErrTransport{Operation: "attach entity", Err: err}
	}
	return nil
}

func (s *AccountStore) getLink(ctx context.Context, accountID string) (*domain.AccountLink, error) {
	path := "account_links?account_id=eq." + url.QueryEscape(accountID) + "&limit=1"
	body, err := s.client.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrTransport{Operation: "look up account link", Err: err}
	}
	if body == nil {
		return nil, nil
	}

	var rows []linkRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrTransport{Operation: "look up account link", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &domain.AccountLink{
		AccountID:  r.AccountID,
		EntityID:   r.EntityID,
		EntityName: r.EntityName,
		EntityLogo: r.EntityLogo,
	}, nil
}

func rowToAccount(r accountRow) *domain.Account {
	return &domain.Account{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func errStatus(status int, body []byte) error {
	return fmt.Errorf("unexpected status %d: %s", status, string(body))
}
