package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/service"
)

// createEntityHandler runs the onboarding flow. Re-submitting for an
// already onboarded account returns the stored link with 200.
func createEntityHandler(onboarding *service.OnboardingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/create")
		defer span.End()

		var req domain.OnboardingRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := onboarding.Onboard(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("entity.id", result.EntityID),
			attribute.String("onboarding.status", result.Status),
		)
		writeJSON(w, http.StatusOK, result)
	}
}
