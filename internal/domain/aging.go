package domain

// Aging bucket names, ordered from least to most overdue. The report
// always contains all five, even when empty.
const (
	BucketCurrent = "Current"
	Bucket1To30   = "1-30 Days"
	Bucket31To60  = "31-60 Days"
	Bucket61To90  = "61-90 Days"
	Bucket90Plus  = "90+ Days"
)

// AgingBucketNames returns the bucket names in display order.
func AgingBucketNames() []string {
	return []string{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, Bucket90Plus}
}

// AgingReport groups invoices by how many days past due they are.
// Invoice order within each bucket matches the order returned by the
// remote ledger.
type AgingReport map[string][]Invoice

// AgingReportRequest is the local request for POST /api/aging-report.
// Statuses defaults to {"APPROVED"} when empty.
type AgingReportRequest struct {
	EntityID string   `json:"entity_id"`
	Statuses []string `json:"statuses,omitempty"`
}
