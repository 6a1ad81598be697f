// Package outcome describes how a run ended. The summary is what gets
// published to MQTT and exported as metrics; it never carries the
// report text.
package outcome

import "time"

// Status is the final state of a run.
type Status string

const (
	StatusSkipped   Status = "skipped"   // gate said no
	StatusDelivered Status = "delivered" // report handed to the channel
	StatusDuplicate Status = "duplicate" // already delivered for this date
	StatusFailed    Status = "failed"    // delivery or setup error
	StatusDryRun    Status = "dry_run"   // generated and printed only
)

// Statuses lists every status in a stable order.
var Statuses = []Status{StatusSkipped, StatusDelivered, StatusDuplicate, StatusFailed, StatusDryRun}

// Summary is the outcome of one invocation.
type Summary struct {
	Date       string    `json:"date"`
	RunID      string    `json:"run_id"`
	Status     Status    `json:"status"`
	Reason     string    `json:"reason"`
	Detail     string    `json:"detail,omitempty"`
	Source     string    `json:"source,omitempty"`
	CredoKey   int       `json:"credo_key,omitempty"`
	Attempts   int       `json:"attempts"`
	Deliverer  string    `json:"deliverer,omitempty"`
	Error      string    `json:"error,omitempty"`
	Duration   float64   `json:"duration_seconds"`
	FinishedAt time.Time `json:"finished_at"`
	Version    string    `json:"version"`
}

// OK reports whether the run ended without an error worth alerting on.
func (s Summary) OK() bool {
	return s.Status != StatusFailed
}
