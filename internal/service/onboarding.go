package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/infra/observability"
	"github.com/halloran/ap-gateway-go/internal/port"
)

var onboardingTracer = otel.Tracer("service/onboarding")

// docSaveConcurrency caps parallel document writes per onboarding call.
const docSaveConcurrency = 4

// OnboardingService turns a local account into a remote ledger entity.
// The flow is idempotent: re-submitting for an already linked account
// short-circuits without a second remote call.
type OnboardingService struct {
	store   port.AccountStore
	ledger  port.LedgerAPI
	blobs   port.BlobStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewOnboardingService creates an OnboardingService.
func NewOnboardingService(store port.AccountStore, ledger port.LedgerAPI, blobs port.BlobStore, metrics *observability.Metrics, logger *zap.Logger) *OnboardingService {
	return &OnboardingService{
		store:   store,
		ledger:  ledger,
		blobs:   blobs,
		metrics: metrics,
		logger:  logger,
	}
}

// Onboard creates the remote entity for an account and persists any
// uploaded documents. Document failures are logged and reported as nil
// entries in SavedFiles; they never abort onboarding.
func (s *OnboardingService) Onboard(ctx context.Context, req *domain.OnboardingRequest) (*domain.OnboardingResult, error) {
	ctx, span := onboardingTracer.Start(ctx, "OnboardingService.Onboard")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	}
	if strings.TrimSpace(req.LegalBusinessName) == "" {
		return nil, &domain.ErrValidation{Field: "legalBusinessName", Message: "legal business name is required"}
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
	if link.Linked() {
		s.metrics.IncrOnboarding("repeat")
		span.SetAttributes(attribute.Bool("already_onboarded", true))
		return &domain.OnboardingResult{
			Status:     domain.OnboardingAlready,
			EntityID:   link.EntityID,
			EntityName: link.EntityName,
			EntityLogo: link.EntityLogo,
		}, nil
	}

	// Persist documents while the remote call is in flight. Each document
	// writes its own result slot, so no locking is needed.
	saved := &domain.SavedFiles{}
	g, docCtx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(docSaveConcurrency)
	for _, doc := range []struct {
		kind    string
		dataURI string
		slot    **string
	}{
		{"logo", req.Logo, &saved.Logo},
		{"w9", req.W9, &saved.W9},
		{"form1099", req.Form1099, &saved.Form1099},
		{"bank_statement", req.BankStatement, &saved.BankStatement},
	} {
		doc := doc
		if doc.dataURI == "" {
			continue
		}
		g.Go(func() error {
			path, err := s.blobs.Save(docCtx, account.ID+"_"+doc.kind, doc.dataURI)
			if err != nil {
				s.metrics.IncrDocumentFailed()
				s.logger.Warn("onboarding: skipping document",
					zap.String("account_id", account.ID),
					zap.String("document", doc.kind),
					zap.Error(err),
				)
				return nil
			}
			s.metrics.IncrDocumentSaved()
			*doc.slot = &path
			return nil
		})
	}

	entity, err := s.createRemoteEntity(ctx, account, req)
	if err != nil {
		// The link stays empty so a retry can create the entity again.
		_ = g.Wait()
		return nil, err
	}

	_ = g.Wait()

	// The stored logo is the value the caller submitted, not the local
	// copy; a failed save still leaves the link's logo intact.
	if err := s.store.AttachEntity(ctx, account.ID, entity.ID, req.LegalBusinessName, req.Logo); err != nil {
		return nil, fmt.Errorf("attach entity: %w", err)
	}

	s.metrics.IncrOnboarding("new")
	s.logger.Info("entity onboarded",
		zap.String("account_id", account.ID),
		zap.String("entity_id", entity.ID),
	)

	return &domain.OnboardingResult{
		Status:     domain.OnboardingSuccess,
		EntityID:   entity.ID,
		EntityName: req.LegalBusinessName,
		EntityLogo: req.Logo,
		SavedFiles: saved,
	}, nil
}

func (s *OnboardingService) createRemoteEntity(ctx context.Context, account *domain.Account, req *domain.OnboardingRequest) (*domain.RemoteEntity, error) {
	businessType := strings.ToLower(req.BusinessType)
	if businessType == "" {
		businessType = "llc"
	}
	country := req.Address.Country
	if country == "" {
		country = "US"
	}
	// The foreign id ties the remote entity back to the local account
	// when the caller does not supply one.
	foreignID := req.ForeignID
	if foreignID == "" {
		foreignID = account.ID
	}

	payload := map[string]any{
		"isCustomer":  true,
		"isPayor":     true,
		"isPayee":     false,
		"accountType": "business",
		"foreignId":   foreignID,
		"profile": map[string]any{
			"business": map[string]any{
				"email":             account.Email,
				"legalBusinessName": req.LegalBusinessName,
				"website":           req.Website,
				"businessType":      businessType,
				"phone": map[string]any{
					"countryCode": "1",
					"number":      req.Phone,
				},
				"address": map[string]any{
					"addressLine1":    req.Address.AddressLine1,
					"addressLine2":    req.Address.AddressLine2,
					"city":            req.Address.City,
					"stateOrProvince": req.Address.StateOrProvince,
					"postalCode":      req.Address.PostalCode,
					"country":         country,
				},
				"taxId": map[string]any{
					"ein": map[string]any{
						"number": req.EIN,
					},
				},
			},
		},
	}

	return s.ledger.CreateEntity(ctx, payload)
}
