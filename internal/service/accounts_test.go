package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/infra/cache"
	"github.com/halloran/ap-gateway-go/internal/infra/memstore"
	"github.com/halloran/ap-gateway-go/internal/infra/observability"
	"github.com/halloran/ap-gateway-go/internal/service"
)

func newAccountService(ledger *mockLedger) (*service.AccountService, *memstore.Store) {
	store := memstore.New()
	svc := service.NewAccountService(
		store,
		ledger,
		cache.New[string](5*time.Minute),
		observability.NewMetrics(),
		"test-secret",
		15*time.Minute,
		zap.NewNop(),
	)
	return svc, store
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newAccountService(&mockLedger{})
	ctx := context.Background()

	err := svc.Signup(ctx, &domain.SignupRequest{Email: "Owner@Acme.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Email lookup is case-insensitive.
	resp, err := svc.Login(ctx, &domain.LoginRequest{Username: "owner@acme.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.EntityID != "" {
		t.Errorf("entity id should be empty before onboarding, got %q", resp.EntityID)
	}
	if resp.Token == "" {
		t.Fatal("expected a signed token")
	}

	accountID, email, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if accountID == "" || email != "owner@acme.com" {
		t.Errorf("unexpected claims: id=%q email=%q", accountID, email)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newAccountService(&mockLedger{})
	ctx := context.Background()

	req := &domain.SignupRequest{Email: "owner@acme.com", Password: "hunter2hunter2"}
	if err := svc.Signup(ctx, req); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	err := svc.Signup(ctx, req)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newAccountService(&mockLedger{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  *domain.SignupRequest
	}{
		{"missing email", &domain.SignupRequest{Password: "hunter2hunter2"}},
		{"malformed email", &domain.SignupRequest{Email: "not-an-email", Password: "hunter2hunter2"}},
		{"short password", &domain.SignupRequest{Email: "owner@acme.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Signup(ctx, tc.req)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newAccountService(&mockLedger{})
	ctx := context.Background()

	if err := svc.Signup(ctx, &domain.SignupRequest{Email: "owner@acme.com", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err := svc.Login(ctx, &domain.LoginRequest{Username: "owner@acme.com", Password: "wrong-password"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = svc.Login(ctx, &domain.LoginRequest{Username: "ghost@acme.com", Password: "whatever"})
	if !errors.As(err, &unauthorized) {
		t.Fatalf("unknown user should also be unauthorized, got %v", err)
	}
}

func TestSessionToken_CachedPerEntity(t *testing.T) {
	ledger := &mockLedger{}
	svc, store := newAccountService(ledger)
	ctx := context.Background()

	if err := svc.Signup(ctx, &domain.SignupRequest{Email: "owner@acme.com", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	account, _ := store.GetAccountByEmail(ctx, "owner@acme.com")
	if err := store.AttachEntity(ctx, account.ID, "ent-1", "Acme LLC", ""); err != nil {
		t.Fatalf("attach: %v", err)
	}

	req := &domain.SessionTokenRequest{Email: "owner@acme.com"}
	first, err := svc.SessionToken(ctx, req)
	if err != nil {
		t.Fatalf("first token: %v", err)
	}
	second, err := svc.SessionToken(ctx, req)
	if err != nil {
		t.Fatalf("second token: %v", err)
	}
	if first.Token != second.Token {
		t.Errorf("expected cached token, got %q vs %q", first.Token, second.Token)
	}
	if got := ledger.issueTokenCalls.Load(); got != 1 {
		t.Errorf("expected one remote token call, got %d", got)
	}
}

// remoteJWT mints an unsigned-verification-irrelevant token carrying exp,
// shaped like what the ledger hands out.
func remoteJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"sub": "ent-1",
	}).SignedString([]byte("remote-secret"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestSessionToken_CacheHonorsTokenExpiry(t *testing.T) {
	ctx := context.Background()
	attach := func(svc *service.AccountService, store *memstore.Store) {
		t.Helper()
		if err := svc.Signup(ctx, &domain.SignupRequest{Email: "owner@acme.com", Password: "hunter2hunter2"}); err != nil {
			t.Fatalf("signup: %v", err)
		}
		account, _ := store.GetAccountByEmail(ctx, "owner@acme.com")
		if err := store.AttachEntity(ctx, account.ID, "ent-1", "Acme LLC", ""); err != nil {
			t.Fatalf("attach: %v", err)
		}
	}
	req := &domain.SessionTokenRequest{Email: "owner@acme.com"}

	// A token with plenty of life left is cached.
	ledger := &mockLedger{
		issueTokenFn: func(context.Context, string) (string, error) {
			return remoteJWT(t, time.Now().Add(time.Hour)), nil
		},
	}
	svc, store := newAccountService(ledger)
	attach(svc, store)
	for i := 0; i < 2; i++ {
		if _, err := svc.SessionToken(ctx, req); err != nil {
			t.Fatalf("token call %d: %v", i, err)
		}
	}
	if got := ledger.issueTokenCalls.Load(); got != 1 {
		t.Errorf("long-lived token: expected one remote call, got %d", got)
	}

	// A token at the end of its life is returned but never cached.
	ledger = &mockLedger{
		issueTokenFn: func(context.Context, string) (string, error) {
			return remoteJWT(t, time.Now().Add(5*time.Second)), nil
		},
	}
	svc, store = newAccountService(ledger)
	attach(svc, store)
	for i := 0; i < 2; i++ {
		if _, err := svc.SessionToken(ctx, req); err != nil {
			t.Fatalf("token call %d: %v", i, err)
		}
	}
	if got := ledger.issueTokenCalls.Load(); got != 2 {
		t.Errorf("near-expiry token: expected two remote calls, got %d", got)
	}
}

func TestSessionToken_NotOnboarded(t *testing.T) {
	svc, _ := newAccountService(&mockLedger{})
	ctx := context.Background()

	if err := svc.Signup(ctx, &domain.SignupRequest{Email: "owner@acme.com", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err := svc.SessionToken(ctx, &domain.SessionTokenRequest{Email: "owner@acme.com"})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not-found for unlinked account, got %v", err)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc, _ := newAccountService(&mockLedger{})

	_, _, err := svc.VerifyToken("not.a.jwt")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
