package domain

import (
	"encoding/json"
	"time"
)

// Invoice is owned by the remote ledger. The gateway interprets only the
// status and due date (for the aging report); every other field passes
// through untouched, so the original JSON is kept verbatim.
type Invoice struct {
	ID      string
	Status  string
	DueDate *time.Time
	Raw     json.RawMessage
}

// UnmarshalJSON extracts the locally interpreted fields and retains the
// raw document for pass-through serialization.
func (i *Invoice) UnmarshalJSON(data []byte) error {
	var envelope struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		DueDate string `json:"dueDate"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	i.ID = envelope.ID
	i.Status = envelope.Status
	i.DueDate = parseLedgerTime(envelope.DueDate)
	i.Raw = append(i.Raw[:0], data...)
	return nil
}

// MarshalJSON emits the invoice exactly as the remote ledger returned it.
func (i Invoice) MarshalJSON() ([]byte, error) {
	if len(i.Raw) == 0 {
		return []byte("null"), nil
	}
	return i.Raw, nil
}

// parseLedgerTime accepts the timestamp formats the remote ledger emits:
// full RFC 3339 or a bare calendar date. Returns nil when absent or
// unparseable, which excludes the invoice from aging.
func parseLedgerTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}
