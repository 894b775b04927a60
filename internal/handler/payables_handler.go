package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/service"
)

// ============================================================
// Entity users
// ============================================================

func createEntityUserHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/user/create")
		defer span.End()

		var req domain.EntityUserRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := payables.CreateEntityUser(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "user": user})
	}
}

func listEntityUsersHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/user/list")
		defer span.End()

		var req domain.EntityScopedRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		users, err := payables.ListEntityUsers(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "users": users})
	}
}

func updateEntityUserHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/user/update")
		defer span.End()

		var req domain.EntityUserRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := payables.UpdateEntityUser(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "user": user})
	}
}

func deleteEntityUserHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/user/delete")
		defer span.End()

		var req domain.EntityUserRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := payables.DeleteEntityUser(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

// ============================================================
// Approval policies
// ============================================================

func createApprovalPolicyHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/approval-policy/create")
		defer span.End()

		var req domain.ApprovalPolicyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		policy, err := payables.CreateApprovalPolicy(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "policy": policy})
	}
}

func listApprovalPoliciesHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/approval-policy/list")
		defer span.End()

		var req domain.EntityScopedRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		policies, err := payables.ListApprovalPolicies(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "policies": policies})
	}
}

func updateApprovalPolicyHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/approval-policy/update")
		defer span.End()

		var req domain.ApprovalPolicyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		policy, err := payables.UpdateApprovalPolicy(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "policy": policy})
	}
}

func deleteApprovalPolicyHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/entity/approval-policy/delete")
		defer span.End()

		var req domain.ApprovalPolicyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := payables.DeleteApprovalPolicy(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

// ============================================================
// Payment-method schemas
// ============================================================

func createPaymentSchemaHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/payment-method/schema/create")
		defer span.End()

		var req domain.PaymentSchemaRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		schema, err := payables.CreatePaymentSchema(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "schema": schema})
	}
}

// listPaymentSchemasHandler is the one GET endpoint under /api; the
// schema catalog is global, not entity-scoped.
func listPaymentSchemasHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/payment-method/schema/list")
		defer span.End()

		schemas, err := payables.ListPaymentSchemas(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if schemas == nil {
			schemas = json.RawMessage(`[]`)
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "schemas": schemas})
	}
}

func deletePaymentSchemaHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/payment-method/schema/delete")
		defer span.End()

		var req domain.PaymentSchemaRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := payables.DeletePaymentSchema(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

// ============================================================
// Vendors
// ============================================================

func listVendorsHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/vendors/list")
		defer span.End()

		var req domain.EntityScopedRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		vendors, err := payables.ListVendors(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "vendors": vendors})
	}
}
