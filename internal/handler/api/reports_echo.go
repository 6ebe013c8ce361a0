package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"Stockometry/internal/domain/models"
	domrepo "Stockometry/internal/domain/repository"
	icache "Stockometry/internal/service/cache"
	"Stockometry/internal/service/metrics"
	"Stockometry/internal/service/ratelimit"
	"Stockometry/internal/usecase"
	xhttp "Stockometry/pkg/http"
	xlogger "Stockometry/pkg/logger"
	"Stockometry/pkg/util"

	"github.com/labstack/echo/v4"
)

// ReportsHandler exposes report generation and retrieval over HTTP.
type ReportsHandler struct {
	logger   *xlogger.Logger
	runner   *usecase.ReportRunner
	backfill *usecase.Backfill
	reports  domrepo.ReportStore
	articles domrepo.ArticleStore
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
}

func NewReportsHandler(
	logger *xlogger.Logger,
	runner *usecase.ReportRunner,
	backfill *usecase.Backfill,
	reports domrepo.ReportStore,
	articles domrepo.ArticleStore,
) *ReportsHandler {
	metrics.Register()
	return &ReportsHandler{
		logger:   logger,
		runner:   runner,
		backfill: backfill,
		reports:  reports,
		articles: articles,
		rl:       ratelimit.New(),
	}
}

// SetCache injects the latest-report cache.
func (h *ReportsHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *ReportsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analysis/run", h.Run)
	g.POST("/backfill", h.Backfill)
	g.GET("/reports/latest", h.Latest)
	g.GET("/reports/:date", h.ByDate)
	g.GET("/reports", h.List)
	e.GET("/healthz", h.Health)
}

type runRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// Run triggers an on-demand analysis run, optionally for a past date.
func (h *ReportsHandler) Run(c echo.Context) error {
	start := time.Now()
	endpoint := "run"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":run", 3, 0.2) {
		return xhttp.BadRequestResponse(c, "rate limited, try again shortly")
	}

	req := &runRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	asOf := time.Now().UTC()
	if req.Date != "" {
		d, ok := util.ParseDate(req.Date)
		if !ok {
			return xhttp.BadRequestResponse(c, "date must be YYYY-MM-DD")
		}
		asOf = d
	}

	sr, err := h.runner.RunForDate(c.Request().Context(), asOf, models.RunOnDemand)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("analysis run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, sr)
}

type backfillRequest struct {
	Days int `json:"days" default:"7" validate:"omitempty,min=1,max=90"`
}

// Backfill schedules report generation for recent days without one.
func (h *ReportsHandler) Backfill(c echo.Context) error {
	start := time.Now()
	endpoint := "backfill"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &backfillRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	dates, err := h.backfill.RunDays(c.Request().Context(), req.Days)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("backfill error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = util.FormatDate(d)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"scheduled": out})
}

// Latest serves the most recent report, preferring the cache.
func (h *ReportsHandler) Latest(c echo.Context) error {
	start := time.Now()
	endpoint := "latest"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(usecase.LatestReportCacheKey); err != nil {
			h.logger.Warn("latest report cache_get_error", xlogger.Error(err))
		} else if ok {
			var sr models.StoredReport
			if err := json.Unmarshal(b, &sr); err == nil {
				return xhttp.SuccessResponse(c, &sr)
			}
		}
	}

	sr, err := h.reports.Latest(c.Request().Context())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return xhttp.NotFoundResponse(c, "no reports generated yet")
		}
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("latest report error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sr)
}

// ByDate serves the report for a specific day.
func (h *ReportsHandler) ByDate(c echo.Context) error {
	start := time.Now()
	endpoint := "by_date"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	day, ok := util.ParseDate(c.Param("date"))
	if !ok {
		return xhttp.BadRequestResponse(c, "date must be YYYY-MM-DD")
	}

	sr, err := h.reports.ByDate(c.Request().Context(), day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return xhttp.NotFoundResponse(c, "no report for "+util.FormatDate(day))
		}
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("report by date error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, sr)
}

type listRequest struct {
	Limit int `query:"limit" default:"30" validate:"omitempty,min=1,max=100"`
}

// List serves recent reports, newest first.
func (h *ReportsHandler) List(c echo.Context) error {
	start := time.Now()
	endpoint := "list"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &listRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	reports, err := h.reports.List(c.Request().Context(), req.Limit)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("list reports error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, reports, int64(len(reports)))
}

// Health reports storage connectivity.
func (h *ReportsHandler) Health(c echo.Context) error {
	if err := h.articles.Health(c.Request().Context()); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("storage unhealthy: %v", err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
