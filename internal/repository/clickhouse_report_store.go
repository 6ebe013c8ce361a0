package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"Stockometry/internal/domain/models"
	pkgch "Stockometry/pkg/clickhouse"
	applogger "Stockometry/pkg/logger"
	"Stockometry/pkg/util"
)

// CHReportStore implements ReportStore backed by ClickHouse. One report
// per calendar day; re-running a day inserts a newer version that wins
// the ReplacingMergeTree merge.
type CHReportStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHReportStore(ch *pkgch.Client, table string) *CHReportStore {
	return &CHReportStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHReportStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHReportStore) Save(ctx context.Context, r *models.StoredReport) error {
	start := time.Now()
	body, err := json.Marshal(r.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (id, report_date, run_source, generated_at, report) VALUES (?, ?, ?, ?, ?)",
		s.table)
	if _, err := s.db.ExecContext(ctx, q,
		r.ID,
		util.Day(r.ReportDate),
		r.RunSource,
		r.Generated.UTC(),
		string(body),
	); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_report error",
				applogger.String("table", s.table),
				applogger.String("date", util.FormatDate(r.ReportDate)),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save report: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse save_report ok",
			applogger.String("date", util.FormatDate(r.ReportDate)),
			applogger.String("run_source", r.RunSource),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHReportStore) Latest(ctx context.Context) (*models.StoredReport, error) {
	q := fmt.Sprintf(`
        SELECT id, report_date, run_source, generated_at, report
        FROM %s FINAL
        ORDER BY report_date DESC
        LIMIT 1
    `, s.table)
	reports, err := s.queryReports(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, sql.ErrNoRows
	}
	return reports[0], nil
}

func (s *CHReportStore) ByDate(ctx context.Context, day time.Time) (*models.StoredReport, error) {
	q := fmt.Sprintf(`
        SELECT id, report_date, run_source, generated_at, report
        FROM %s FINAL
        WHERE report_date = ?
        LIMIT 1
    `, s.table)
	reports, err := s.queryReports(ctx, q, util.Day(day))
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, sql.ErrNoRows
	}
	return reports[0], nil
}

func (s *CHReportStore) List(ctx context.Context, limit int) ([]*models.StoredReport, error) {
	if limit <= 0 {
		limit = 30
	}
	q := fmt.Sprintf(`
        SELECT id, report_date, run_source, generated_at, report
        FROM %s FINAL
        ORDER BY report_date DESC
        LIMIT ?
    `, s.table)
	return s.queryReports(ctx, q, limit)
}

// MissingDates returns days in [from, to] with no stored report.
func (s *CHReportStore) MissingDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	q := fmt.Sprintf(`
        SELECT DISTINCT report_date
        FROM %s
        WHERE report_date >= ? AND report_date <= ?
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, util.Day(from), util.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query report dates: %w", err)
	}
	defer rows.Close()

	have := make(map[string]bool)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		have[util.FormatDate(d)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	missing := []time.Time{}
	for _, d := range util.DaysBetween(from, to) {
		if !have[util.FormatDate(d)] {
			missing = append(missing, d)
		}
	}
	return missing, nil
}

func (s *CHReportStore) queryReports(ctx context.Context, q string, args ...interface{}) ([]*models.StoredReport, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse reports query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	out := []*models.StoredReport{}
	for rows.Next() {
		var sr models.StoredReport
		var date, generated time.Time
		var body string
		if err := rows.Scan(&sr.ID, &date, &sr.RunSource, &generated, &body); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		sr.ReportDate = date.UTC()
		sr.Generated = generated.UTC()
		if err := json.Unmarshal([]byte(body), &sr.Report); err != nil {
			return nil, fmt.Errorf("unmarshal report %s: %w", sr.ID, err)
		}
		out = append(out, &sr)
	}
	return out, rows.Err()
}
