// Package handler wires the HTTP surface: the /api routes consumed by
// the payables frontend, JWT-protected account endpoints under /v1, and
// the operational endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/infra/observability"
	"github.com/halloran/ap-gateway-go/internal/infra/resilience"
	"github.com/halloran/ap-gateway-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Services groups the service dependencies of the router.
type Services struct {
	Accounts   *service.AccountService
	Onboarding *service.OnboardingService
	Aging      *service.AgingService
	Payables   *service.PayablesService
}

// NewRouter creates the HTTP router with all routes and middleware.
// maxConcurrency caps in-flight requests; values below 1 disable the cap.
func NewRouter(svcs Services, metrics *observability.Metrics, maxConcurrency int, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	// The React frontend posts with trailing slashes.
	r.Use(middleware.StripSlashes)
	if maxConcurrency > 0 {
		r.Use(concurrencyLimiter(resilience.NewBulkhead(maxConcurrency)))
	}
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(metricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- Frontend API ---
	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", signupHandler(svcs.Accounts, logger))
		r.Post("/login", loginHandler(svcs.Accounts, logger))
		r.Post("/token", sessionTokenHandler(svcs.Accounts, logger))

		r.Post("/entity/create", createEntityHandler(svcs.Onboarding, logger))

		r.Post("/invoices", listInvoicesHandler(svcs.Payables, logger))
		r.Post("/invoices/create", createInvoiceHandler(svcs.Payables, logger))
		r.Post("/invoices/update", updateInvoiceHandler(svcs.Payables, logger))
		r.Post("/invoice/approve", approveInvoiceHandler(svcs.Payables, logger))

		r.Post("/entity/user/create", createEntityUserHandler(svcs.Payables, logger))
		r.Post("/entity/user/list", listEntityUsersHandler(svcs.Payables, logger))
		r.Post("/entity/user/update", updateEntityUserHandler(svcs.Payables, logger))
		r.Post("/entity/user/delete", deleteEntityUserHandler(svcs.Payables, logger))

		r.Post("/entity/approval-policy/create", createApprovalPolicyHandler(svcs.Payables, logger))
		r.Post("/entity/approval-policy/list", listApprovalPoliciesHandler(svcs.Payables, logger))
		r.Post("/entity/approval-policy/update", updateApprovalPolicyHandler(svcs.Payables, logger))
		r.Post("/entity/approval-policy/delete", deleteApprovalPolicyHandler(svcs.Payables, logger))

		r.Post("/payment-method/schema/create", createPaymentSchemaHandler(svcs.Payables, logger))
		r.Get("/payment-method/schema/list", listPaymentSchemasHandler(svcs.Payables, logger))
		r.Post("/payment-method/schema/delete", deletePaymentSchemaHandler(svcs.Payables, logger))

		r.Post("/vendors/list", listVendorsHandler(svcs.Payables, logger))

		r.Post("/aging-report", agingReportHandler(svcs.Aging, logger))
	})

	// --- Authenticated API ---
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Accounts, logger))
			r.Get("/auth/me", meHandler(svcs.Accounts, logger))
		})
		r.Get("/metrics/summary", metricsSummaryHandler(metrics))
	})

	return r
}

// concurrencyLimiter queues requests behind a bulkhead. A request whose
// context ends while waiting gets a 503 instead of a slot.
func concurrencyLimiter(bh *resilience.Bulkhead) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := bh.Acquire(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "server is at capacity")
				return
			}
			defer bh.Release()
			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware records per-request duration and outcome counters.
func metricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			metrics.RecordRequestDuration(r.Method+" "+r.URL.Path, time.Since(start))
			if ww.Status() >= 500 {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
		})
	}
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSnapshot())
	}
}
