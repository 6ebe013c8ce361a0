package usecase

import (
	"context"
	"fmt"
	"time"

	"Stockometry/internal/domain/models"
	drepo "Stockometry/internal/domain/repository"
	applogger "Stockometry/pkg/logger"
	"Stockometry/pkg/queue"
	"Stockometry/pkg/util"
)

// Backfill finds days without a stored report, restores article
// coverage for them, and enqueues one report run per missing date.
// With no queue configured it runs synchronously.
type Backfill struct {
	reports   drepo.ReportStore
	runner    *ReportRunner
	collector *NewsCollector
	q         queue.QueueService
	l         *applogger.Logger
}

// NewBackfill creates a new Backfill instance.
func NewBackfill(reports drepo.ReportStore, runner *ReportRunner, collector *NewsCollector, q queue.QueueService, l *applogger.Logger) *Backfill {
	return &Backfill{reports: reports, runner: runner, collector: collector, q: q, l: l}
}

// Run fills [from, to]. Returns the dates that were scheduled or run.
func (b *Backfill) Run(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	missing, err := b.reports.MissingDates(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("find missing dates: %w", err)
	}
	if len(missing) == 0 {
		if b.l != nil {
			b.l.Info("backfill: nothing to do",
				applogger.String("from", util.FormatDate(from)),
				applogger.String("to", util.FormatDate(to)),
			)
		}
		return nil, nil
	}

	// Re-fetch the missing span first so re-runs see the same coverage
	// a scheduled run would have had. Collection failures are logged
	// but do not block the report runs: partial coverage beats none.
	if b.collector != nil {
		first, last := missing[0], missing[len(missing)-1]
		if n, cerr := b.collector.CollectRange(ctx, first, last.AddDate(0, 0, 1)); cerr != nil {
			if b.l != nil {
				b.l.Warn("backfill collection failed", applogger.Error(cerr))
			}
		} else if b.l != nil {
			b.l.Info("backfill collection finished", applogger.Int("ingested", n))
		}
	}

	for _, day := range missing {
		payload := ReportJobPayload{
			Date:      util.FormatDate(day),
			RunSource: models.RunBackfill,
		}
		if b.q != nil {
			if err := b.q.PublishMessage(ctx, ReportJobType, payload); err != nil {
				return nil, fmt.Errorf("enqueue backfill %s: %w", payload.Date, err)
			}
			continue
		}
		if _, err := b.runner.RunForDate(ctx, day, models.RunBackfill); err != nil {
			return nil, fmt.Errorf("backfill %s: %w", payload.Date, err)
		}
	}

	if b.l != nil {
		b.l.Info("backfill scheduled",
			applogger.Int("dates", len(missing)),
			applogger.Bool("queued", b.q != nil),
		)
	}
	return missing, nil
}

// RunDays fills the trailing n days up to yesterday.
func (b *Backfill) RunDays(ctx context.Context, n int) ([]time.Time, error) {
	if n <= 0 {
		n = 7
	}
	to := util.Day(time.Now().UTC()).AddDate(0, 0, -1)
	from := to.AddDate(0, 0, -(n - 1))
	return b.Run(ctx, from, to)
}
