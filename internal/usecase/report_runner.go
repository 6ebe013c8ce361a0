package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Stockometry/internal/domain/models"
	drepo "Stockometry/internal/domain/repository"
	"Stockometry/internal/service/cache"
	"Stockometry/internal/services/analysis"
	"Stockometry/internal/services/output"
	applogger "Stockometry/pkg/logger"
	"Stockometry/pkg/util"

	"github.com/google/uuid"
)

// LatestReportCacheKey is where the most recent report is cached.
const LatestReportCacheKey = "stockometry:report:latest"

// ReportRunner loads the article snapshot for a date, runs the
// synthesizer, and fans the finished report out to storage, the JSON
// exporter, and the latest-report cache.
type ReportRunner struct {
	articles     drepo.ArticleStore
	reports      drepo.ReportStore
	synth        *analysis.Synthesizer
	exporter     *output.Exporter
	cache        cache.BytesCache
	cacheTTL     time.Duration
	lookbackDays int
	metrics      drepo.Metrics
	l            *applogger.Logger
}

// NewReportRunner creates a new ReportRunner instance.
func NewReportRunner(
	articles drepo.ArticleStore,
	reports drepo.ReportStore,
	synth *analysis.Synthesizer,
	exporter *output.Exporter,
	bc cache.BytesCache,
	cacheTTL time.Duration,
	lookbackDays int,
	metrics drepo.Metrics,
	l *applogger.Logger,
) *ReportRunner {
	if lookbackDays <= 0 {
		lookbackDays = analysis.DefaultLookbackDays
	}
	return &ReportRunner{
		articles:     articles,
		reports:      reports,
		synth:        synth,
		exporter:     exporter,
		cache:        bc,
		cacheTTL:     cacheTTL,
		lookbackDays: lookbackDays,
		metrics:      metrics,
		l:            l,
	}
}

// RunForDate generates, persists, and exports the report for asOf.
// The snapshot spans the trend lookback window plus the as-of day and
// the day before it, which is everything the detectors can touch.
func (r *ReportRunner) RunForDate(ctx context.Context, asOf time.Time, runSource string) (*models.StoredReport, error) {
	start := time.Now()
	day := util.Day(asOf)

	from := day.AddDate(0, 0, -r.lookbackDays)
	to := day.AddDate(0, 0, 1)
	snapshot, err := r.articles.ListAnnotatedRange(ctx, from, to)
	if err != nil {
		r.metrics.RecordError("report_snapshot")
		return nil, fmt.Errorf("load article snapshot: %w", err)
	}

	report := r.synth.Run(snapshot, asOf)

	sr := &models.StoredReport{
		ID:         uuid.NewString(),
		ReportDate: day,
		RunSource:  runSource,
		Generated:  time.Now().UTC(),
		Report:     *report,
	}
	if err := r.reports.Save(ctx, sr); err != nil {
		r.metrics.RecordError("report_save")
		return nil, fmt.Errorf("save report: %w", err)
	}

	for range report.Signals.Historical {
		r.metrics.RecordSignal(models.SignalHistorical)
	}
	for range report.Signals.Impact {
		r.metrics.RecordSignal(models.SignalImpact)
	}
	for range report.Signals.Confidence {
		r.metrics.RecordSignal(models.SignalConfidence)
	}

	if r.exporter != nil {
		if path, err := r.exporter.Export(sr); err != nil {
			r.metrics.RecordError("report_export")
			if r.l != nil {
				r.l.Error("report export failed", applogger.Error(err))
			}
		} else if r.l != nil {
			r.l.Info("report exported", applogger.String("path", path))
		}
	}

	r.cacheLatest(sr)
	r.metrics.RecordLatency("report_run", time.Since(start).Seconds())
	if r.l != nil {
		r.l.Info("report generated",
			applogger.String("date", util.FormatDate(day)),
			applogger.String("run_source", runSource),
			applogger.Int("articles", len(snapshot)),
			applogger.Int("historical", len(report.Signals.Historical)),
			applogger.Int("impact", len(report.Signals.Impact)),
			applogger.Int("confidence", len(report.Signals.Confidence)),
		)
	}
	return sr, nil
}

// RunNow generates the report for the current UTC time.
func (r *ReportRunner) RunNow(ctx context.Context, runSource string) (*models.StoredReport, error) {
	return r.RunForDate(ctx, time.Now().UTC(), runSource)
}

func (r *ReportRunner) cacheLatest(sr *models.StoredReport) {
	if r.cache == nil {
		return
	}
	b, err := json.Marshal(sr)
	if err != nil {
		return
	}
	if err := r.cache.SetBytes(LatestReportCacheKey, b, r.cacheTTL); err != nil && r.l != nil {
		r.l.Warn("cache latest report failed", applogger.Error(err))
	}
}
