// Package service contains the gateway's business flows: local account
// management, entity onboarding, the aging report, and the reshaping
// pass-through to the remote ledger.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/infra/observability"
	"github.com/halloran/ap-gateway-go/internal/port"
)

var accountTracer = otel.Tracer("service/accounts")

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// AccountService handles signup, login, and remote session tokens.
type AccountService struct {
	store      port.AccountStore
	ledger     port.LedgerAPI
	tokenCache port.Cache[string]
	metrics    *observability.Metrics
	jwtSecret  []byte
	accessTTL  time.Duration
	logger     *zap.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(store port.AccountStore, ledger port.LedgerAPI, tokenCache port.Cache[string], metrics *observability.Metrics, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AccountService {
	return &AccountService{
		store:      store,
		ledger:     ledger,
		tokenCache: tokenCache,
		metrics:    metrics,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		logger:     logger,
	}
}

// Signup creates a local account. The password is hashed before it
// touches the store; duplicate emails surface as ErrConflict from the
// store's unique constraint.
func (s *AccountService) Signup(ctx context.Context, req *domain.SignupRequest) error {
	ctx, span := accountTracer.Start(ctx, "AccountService.Signup")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return &domain.ErrValidation{Field: "email", Message: "a valid email is required"}
	}
	if len(req.Password) < minPasswordLength {
		return &domain.ErrValidation{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{Email: email, PasswordHash: string(hash)}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return err
	}

	// An empty link row marks the account as not yet onboarded.
	if _, err := s.store.EnsureLink(ctx, account.ID); err != nil {
		s.logger.Warn("signup: could not create link row",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("account created", zap.String("account_id", account.ID))
	return nil
}

// Login verifies credentials and returns the stored entity link plus a
// locally signed JWT. Entity fields are empty strings until onboarding
// completes, which the frontend uses to route into the onboarding form.
func (s *AccountService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Username))
	if email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "username and password are required"}
	}

	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if account == nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt", zap.String("account_id", account.ID))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	link, err := s.store.EnsureLink(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load account link: %w", err)
	}

	token, err := s.signAccessToken(account)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	span.SetAttributes(attribute.Bool("linked", link.Linked()))
	return &domain.LoginResponse{
		Status:     "ok",
		EntityID:   link.EntityID,
		EntityName: link.EntityName,
		EntityLogo: link.EntityLogo,
		Token:      token,
	}, nil
}

// Profile returns the account and link for an authenticated email.
// Backs GET /v1/auth/me.
func (s *AccountService) Profile(ctx context.Context, email string) (*domain.Account, *domain.AccountLink, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.Profile")
	defer span.End()

	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("look up account: %w", err)
	}
	if account == nil {
		return nil, nil, &domain.ErrNotFound{Resource: "account", ID: email}
	}

	link, err := s.store.EnsureLink(ctx, account.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load account link: %w", err)
	}
	return account, link, nil
}

// SessionToken mints a remote ledger session token for the entity linked
// to the given email. Tokens are cached per entity for their TTL so the
// frontend polling does not hammer the remote token endpoint.
func (s *AccountService) SessionToken(ctx context.Context, req *domain.SessionTokenRequest) (*domain.SessionTokenResponse, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.SessionToken")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	}

	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if account == nil {
		return nil, &domain.ErrNotFound{Resource: "account", ID: email}
	}

	link, err := s.store.EnsureLink(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load account link: %w", err)
	}
	if !link.Linked() {
		return nil, &domain.ErrNotFound{Resource: "entity", ID: account.ID}
	}

	if token, ok := s.tokenCache.Get(link.EntityID); ok {
		s.metrics.IncrTokenCacheHit()
		return &domain.SessionTokenResponse{Status: "success", Token: token}, nil
	}
	s.metrics.IncrTokenCacheMiss()

	token, err := s.ledger.IssueToken(ctx, link.EntityID)
	if err != nil {
		return nil, err
	}
	s.cacheSessionToken(link.EntityID, token)

	return &domain.SessionTokenResponse{Status: "success", Token: token}, nil
}

// cacheSessionToken stores a remote session token without letting the
// cache entry outlive the token itself. The ledger issues JWTs; when the
// exp claim is readable the entry expires shortly before the token does.
// Tokens already at the end of their life are handed out but not cached.
func (s *AccountService) cacheSessionToken(entityID, token string) {
	const expiryGrace = 30 * time.Second

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		exp, err := claims.GetExpirationTime()
		if err == nil && exp != nil {
			if remaining := time.Until(exp.Time) - expiryGrace; remaining > 0 {
				s.tokenCache.SetFor(entityID, token, remaining)
			}
			return
		}
	}
	s.tokenCache.Set(entityID, token)
}

// tokenClaims are the claims carried by locally signed access tokens.
type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *AccountService) signAccessToken(account *domain.Account) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifyToken validates a locally signed JWT and returns the subject
// (account id) and email. Used by the auth middleware.
func (s *AccountService) VerifyToken(tokenString string) (accountID, email string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", "", &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return "", "", &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	return claims.Subject, claims.Email, nil
}
