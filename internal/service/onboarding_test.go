package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/infra/memstore"
	"github.com/halloran/ap-gateway-go/internal/infra/observability"
	"github.com/halloran/ap-gateway-go/internal/service"
)

const dataURI = "data:image/png;base64,aGVsbG8="

func newOnboardingFixture(t *testing.T, ledger *mockLedger, blobs *mockBlobStore) (*service.OnboardingService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	account := &domain.Account{Email: "owner@acme.com", PasswordHash: "x"}
	if err := store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	svc := service.NewOnboardingService(store, ledger, blobs, observability.NewMetrics(), zap.NewNop())
	return svc, store
}

func TestOnboard_Success(t *testing.T) {
	ledger := &mockLedger{}
	blobs := &mockBlobStore{}
	svc, store := newOnboardingFixture(t, ledger, blobs)

	req := &domain.OnboardingRequest{
		Email:             "owner@acme.com",
		LegalBusinessName: "Acme LLC",
		Website:           "https://acme.com",
		Phone:             "5551234567",
		EIN:               "12-3456789",
		Address: domain.OnboardingAddress{
			AddressLine1:    "1 Main St",
			City:            "Springfield",
			StateOrProvince: "IL",
			PostalCode:      "62701",
		},
		Logo: dataURI,
		W9:   dataURI,
	}

	result, err := svc.Onboard(context.Background(), req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.Status != domain.OnboardingSuccess {
		t.Errorf("expected status %q, got %q", domain.OnboardingSuccess, result.Status)
	}
	if result.EntityID != "ent-1" {
		t.Errorf("expected entity ent-1, got %q", result.EntityID)
	}
	if result.SavedFiles == nil || result.SavedFiles.Logo == nil || result.SavedFiles.W9 == nil {
		t.Error("expected logo and w9 to be saved")
	}
	if result.SavedFiles.Form1099 != nil || result.SavedFiles.BankStatement != nil {
		t.Error("absent documents should stay nil")
	}

	account, _ := store.GetAccountByEmail(context.Background(), "owner@acme.com")
	link, _ := store.EnsureLink(context.Background(), account.ID)
	if link.EntityID != "ent-1" {
		t.Errorf("link not attached, got %q", link.EntityID)
	}
	if link.EntityName != "Acme LLC" {
		t.Errorf("expected entity name stored, got %q", link.EntityName)
	}
}

func TestOnboard_Idempotent(t *testing.T) {
	ledger := &mockLedger{}
	svc, _ := newOnboardingFixture(t, ledger, &mockBlobStore{})

	req := &domain.OnboardingRequest{Email: "owner@acme.com", LegalBusinessName: "Acme LLC"}
	first, err := svc.Onboard(context.Background(), req)
	if err != nil {
		t.Fatalf("first onboard: %v", err)
	}

	second, err := svc.Onboard(context.Background(), req)
	if err != nil {
		t.Fatalf("second onboard: %v", err)
	}
	if second.Status != domain.OnboardingAlready {
		t.Errorf("expected %q, got %q", domain.OnboardingAlready, second.Status)
	}
	if second.EntityID != first.EntityID {
		t.Errorf("expected same entity id, got %q vs %q", second.EntityID, first.EntityID)
	}
	if got := ledger.createEntityCalls.Load(); got != 1 {
		t.Errorf("expected exactly one remote entity creation, got %d", got)
	}
}

func TestOnboard_DocumentFailureIsNotFatal(t *testing.T) {
	ledger := &mockLedger{}
	blobs := &mockBlobStore{failFor: map[string]bool{"_w9": true}}
	svc, _ := newOnboardingFixture(t, ledger, blobs)

	req := &domain.OnboardingRequest{
		Email:             "owner@acme.com",
		LegalBusinessName: "Acme LLC",
		Logo:              dataURI,
		W9:                dataURI,
	}

	result, err := svc.Onboard(context.Background(), req)
	if err != nil {
		t.Fatalf("document failure must not abort onboarding: %v", err)
	}
	if result.Status != domain.OnboardingSuccess {
		t.Fatalf("expected success, got %q", result.Status)
	}
	if result.SavedFiles.W9 != nil {
		t.Error("failed document should be reported as nil")
	}
	if result.SavedFiles.Logo == nil {
		t.Error("unaffected document should still be saved")
	}
}

func TestOnboard_StoresSubmittedLogoNotSavedPath(t *testing.T) {
	ledger := &mockLedger{}
	svc, store := newOnboardingFixture(t, ledger, &mockBlobStore{})

	req := &domain.OnboardingRequest{
		Email:             "owner@acme.com",
		LegalBusinessName: "Acme LLC",
		Logo:              dataURI,
	}
	result, err := svc.Onboard(context.Background(), req)
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if result.EntityLogo != dataURI {
		t.Errorf("expected submitted logo in result, got %q", result.EntityLogo)
	}

	account, _ := store.GetAccountByEmail(context.Background(), "owner@acme.com")
	link, _ := store.EnsureLink(context.Background(), account.ID)
	if link.EntityLogo != dataURI {
		t.Errorf("expected submitted logo stored on link, got %q", link.EntityLogo)
	}
}

func TestOnboard_LogoSaveFailureKeepsSubmittedLogo(t *testing.T) {
	ledger := &mockLedger{}
	blobs := &mockBlobStore{failFor: map[string]bool{"_logo": true}}
	svc, store := newOnboardingFixture(t, ledger, blobs)

	req := &domain.OnboardingRequest{
		Email:             "owner@acme.com",
		LegalBusinessName: "Acme LLC",
		Logo:              dataURI,
	}
	result, err := svc.Onboard(context.Background(), req)
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if result.SavedFiles.Logo != nil {
		t.Error("failed save should leave the saved-file slot nil")
	}
	if result.EntityLogo != dataURI {
		t.Errorf("expected submitted logo despite failed save, got %q", result.EntityLogo)
	}

	account, _ := store.GetAccountByEmail(context.Background(), "owner@acme.com")
	link, _ := store.EnsureLink(context.Background(), account.ID)
	if link.EntityLogo != dataURI {
		t.Errorf("expected submitted logo stored on link, got %q", link.EntityLogo)
	}
}

func TestOnboard_RemoteFailureLeavesLinkEmpty(t *testing.T) {
	ledger := &mockLedger{
		createEntityFn: func(context.Context, map[string]any) (*domain.RemoteEntity, error) {
			return nil, &domain.ErrRemoteAPI{Operation: "create entity", Status: 500, Body: "boom"}
		},
	}
	svc, store := newOnboardingFixture(t, ledger, &mockBlobStore{})

	req := &domain.OnboardingRequest{Email: "owner@acme.com", LegalBusinessName: "Acme LLC"}
	_, err := svc.Onboard(context.Background(), req)
	var apiErr *domain.ErrRemoteAPI
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected remote API error, got %v", err)
	}

	account, _ := store.GetAccountByEmail(context.Background(), "owner@acme.com")
	link, _ := store.EnsureLink(context.Background(), account.ID)
	if link.Linked() {
		t.Error("link must stay empty after remote failure so onboarding can retry")
	}
}

func TestOnboard_ForeignIDDefaultsToAccountID(t *testing.T) {
	ledger := &mockLedger{}
	svc, store := newOnboardingFixture(t, ledger, &mockBlobStore{})

	req := &domain.OnboardingRequest{Email: "owner@acme.com", LegalBusinessName: "Acme LLC"}
	if _, err := svc.Onboard(context.Background(), req); err != nil {
		t.Fatalf("onboard: %v", err)
	}

	account, _ := store.GetAccountByEmail(context.Background(), "owner@acme.com")
	if got := ledger.lastPayload["foreignId"]; got != account.ID {
		t.Errorf("expected foreignId %q, got %v", account.ID, got)
	}
}

func TestOnboard_UnknownAccount(t *testing.T) {
	svc := service.NewOnboardingService(memstore.New(), &mockLedger{}, &mockBlobStore{}, observability.NewMetrics(), zap.NewNop())

	_, err := svc.Onboard(context.Background(), &domain.OnboardingRequest{
		Email:             "nobody@acme.com",
		LegalBusinessName: "Acme LLC",
	})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestOnboard_DefaultsBusinessTypeAndCountry(t *testing.T) {
	ledger := &mockLedger{}
	svc, _ := newOnboardingFixture(t, ledger, &mockBlobStore{})

	req := &domain.OnboardingRequest{Email: "owner@acme.com", LegalBusinessName: "Acme LLC"}
	if _, err := svc.Onboard(context.Background(), req); err != nil {
		t.Fatalf("onboard: %v", err)
	}

	profile := ledger.lastPayload["profile"].(map[string]any)
	business := profile["business"].(map[string]any)
	if business["businessType"] != "llc" {
		t.Errorf("expected default businessType llc, got %v", business["businessType"])
	}
	address := business["address"].(map[string]any)
	if address["country"] != "US" {
		t.Errorf("expected default country US, got %v", address["country"])
	}
}
