package models

import "time"

// Run sources recorded on persisted reports.
const (
	RunScheduled = "SCHEDULED"
	RunOnDemand  = "ONDEMAND"
	RunBackfill  = "BACKFILL"
)

// SignalGroups buckets signals by type for the report object.
type SignalGroups struct {
	Historical []Signal `json:"historical"`
	Impact     []Signal `json:"impact"`
	Confidence []Signal `json:"confidence"`
}

// Report is the sole hand-off artifact of the analysis engine.
// Persistence and export layers treat it as opaque beyond these fields.
type Report struct {
	ExecutiveSummary string       `json:"executive_summary"`
	Signals          SignalGroups `json:"signals"`
}

// StoredReport wraps a Report with persistence metadata.
type StoredReport struct {
	ID         string    `json:"id"`
	ReportDate time.Time `json:"report_date"`
	RunSource  string    `json:"run_source"`
	Generated  time.Time `json:"generated_at_utc"`
	Report     Report    `json:"report"`
}
