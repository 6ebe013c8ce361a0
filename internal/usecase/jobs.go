package usecase

import (
	"context"
	"fmt"

	"Stockometry/pkg/queue"
	"Stockometry/pkg/util"
)

// ReportJobType is the queue message type for report generation.
const ReportJobType = "report.run"

// ReportJobPayload carries one report run request through the queue.
type ReportJobPayload struct {
	Date      string `json:"date"` // YYYY-MM-DD
	RunSource string `json:"run_source"`
}

// ReportJob executes queued report runs. Backfill enqueues one job per
// missing date; the queue's retry and DLQ handling apply.
type ReportJob struct {
	runner *ReportRunner
}

// NewReportJob creates a new ReportJob instance.
func NewReportJob(runner *ReportRunner) *ReportJob {
	return &ReportJob{runner: runner}
}

func (j *ReportJob) Name() string { return "report_runner" }
func (j *ReportJob) Type() string { return ReportJobType }

func (j *ReportJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ReportJobPayload](payload)
	if err != nil {
		return fmt.Errorf("report job payload: %w", err)
	}
	day, ok := util.ParseDate(p.Date)
	if !ok {
		return fmt.Errorf("report job: bad date %q", p.Date)
	}
	_, err = j.runner.RunForDate(ctx, day, p.RunSource)
	return err
}

var _ queue.Job = (*ReportJob)(nil)
