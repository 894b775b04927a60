package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/port"
)

var agingTracer = otel.Tracer("service/aging")

// AgingService builds the accounts-payable aging report from live
// remote invoice data. Reports are never cached; staleness here would
// misstate what the business owes.
type AgingService struct {
	ledger port.LedgerAPI
	logger *zap.Logger
	// now is swappable in tests.
	now func() time.Time
}

// NewAgingService creates an AgingService.
func NewAgingService(ledger port.LedgerAPI, logger *zap.Logger) *AgingService {
	return &AgingService{ledger: ledger, logger: logger, now: time.Now}
}

// BuildReport fetches the entity's invoices and groups the matching ones
// into aging buckets. Statuses defaults to APPROVED when empty.
func (s *AgingService) BuildReport(ctx context.Context, req *domain.AgingReportRequest) (domain.AgingReport, error) {
	ctx, span := agingTracer.Start(ctx, "AgingService.BuildReport")
	defer span.End()

	if req.EntityID == "" {
		return nil, &domain.ErrValidation{Field: "entity_id", Message: "entity_id is required"}
	}
	span.SetAttributes(attribute.String("entity_id", req.EntityID))

	invoices, err := s.ledger.FetchInvoices(ctx, req.EntityID)
	if err != nil {
		return nil, err
	}

	report := BucketInvoices(invoices, req.Statuses, s.now())
	s.logger.Debug("aging report built",
		zap.String("entity_id", req.EntityID),
		zap.Int("invoices", len(invoices)),
	)
	return report, nil
}

// BucketInvoices partitions invoices into aging buckets by days past due
// at the given reference time. Only invoices whose status matches one of
// statuses (APPROVED when empty) are included; invoices without a due
// date are discarded. Each matching invoice lands in exactly one bucket,
// preserving remote order. All five buckets are always present, empty
// ones as empty slices.
func BucketInvoices(invoices []domain.Invoice, statuses []string, now time.Time) domain.AgingReport {
	if len(statuses) == 0 {
		statuses = []string{"APPROVED"}
	}
	wanted := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		wanted[strings.ToUpper(st)] = true
	}

	report := make(domain.AgingReport, 5)
	for _, name := range domain.AgingBucketNames() {
		report[name] = []domain.Invoice{}
	}

	nowUTC := now.UTC()
	for _, inv := range invoices {
		if !wanted[strings.ToUpper(inv.Status)] {
			continue
		}
		if inv.DueDate == nil {
			continue
		}
		// Whole elapsed days; an invoice a few hours past due is still
		// current until a full day has passed.
		days := int(nowUTC.Sub(inv.DueDate.UTC()).Hours() / 24)
		var bucket string
		switch {
		case days <= 0:
			bucket = domain.BucketCurrent
		case days <= 30:
			bucket = domain.Bucket1To30
		case days <= 60:
			bucket = domain.Bucket31To60
		case days <= 90:
			bucket = domain.Bucket61To90
		default:
			bucket = domain.Bucket90Plus
		}
		report[bucket] = append(report[bucket], inv)
	}
	return report
}
