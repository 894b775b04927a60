package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/config"
	"github.com/halloran/ap-gateway-go/internal/handler"
	"github.com/halloran/ap-gateway-go/internal/infra/blob"
	"github.com/halloran/ap-gateway-go/internal/infra/cache"
	"github.com/halloran/ap-gateway-go/internal/infra/ledger"
	"github.com/halloran/ap-gateway-go/internal/infra/memstore"
	"github.com/halloran/ap-gateway-go/internal/infra/observability"
	"github.com/halloran/ap-gateway-go/internal/infra/resilience"
	"github.com/halloran/ap-gateway-go/internal/infra/supabase"
	"github.com/halloran/ap-gateway-go/internal/port"
	"github.com/halloran/ap-gateway-go/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("ledger_api_url", cfg.LedgerAPIURL),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("token_cache_ttl", cfg.TokenCacheTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	if cfg.LedgerAPIKey == "" {
		logger.Warn("LEDGER_API_KEY is empty; remote ledger calls will be rejected")
	}

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(context.Background(), "ap-gateway", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	tokenCache := cache.New[string](cfg.TokenCacheTTL)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	cb := resilience.NewCircuitBreaker("ledger")
	ledgerClient := ledger.NewClient(httpClient, cfg.LedgerAPIURL, cfg.LedgerAPIKey, cb, metrics, logger)

	// --- Account store ---
	var store port.AccountStore
	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase account store", zap.String("supabase_url", cfg.SupabaseURL))
		supabaseClient := supabase.NewClient(httpClient, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey, logger)
		store = supabase.NewAccountStore(supabaseClient, logger)
	} else {
		logger.Warn("Supabase not configured, using in-memory account store; accounts do not survive restarts")
		store = memstore.New()
	}

	// --- Blob store ---
	blobs := blob.NewLocalStore(cfg.UploadDir, logger)

	// --- Services ---
	svcs := handler.Services{
		Accounts:   service.NewAccountService(store, ledgerClient, tokenCache, metrics, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
		Onboarding: service.NewOnboardingService(store, ledgerClient, blobs, metrics, logger),
		Aging:      service.NewAgingService(ledgerClient, logger),
		Payables:   service.NewPayablesService(ledgerClient, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, cfg.MaxConcurrency, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
