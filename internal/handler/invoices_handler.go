package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/service"
)

// ============================================================
// Invoices and the aging report
// ============================================================

func listInvoicesHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/invoices")
		defer span.End()

		var req domain.EntityScopedRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		invoices, err := payables.ListInvoices(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if invoices == nil {
			invoices = []domain.Invoice{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "success",
			"invoices": invoices,
		})
	}
}

func createInvoiceHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/invoices/create")
		defer span.End()

		var req domain.CreateInvoiceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		invoice, err := payables.CreateInvoice(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"invoice": invoice,
		})
	}
}

func updateInvoiceHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/invoices/update")
		defer span.End()

		var req domain.UpdateInvoiceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		invoice, err := payables.UpdateInvoice(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"invoice": invoice,
		})
	}
}

func approveInvoiceHandler(payables *service.PayablesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/invoice/approve")
		defer span.End()

		var req domain.ApproveInvoiceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := payables.ApproveInvoice(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func agingReportHandler(aging *service.AgingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/aging-report")
		defer span.End()

		var req domain.AgingReportRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		report, err := aging.BuildReport(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"aging":  report,
		})
	}
}
