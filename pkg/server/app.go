package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/usecase"
	pkgch "Stockometry/pkg/clickhouse"
	"Stockometry/pkg/config"
	xhttp "Stockometry/pkg/http"
	pkgkafka "Stockometry/pkg/kafka"
	applogger "Stockometry/pkg/logger"
	pkgqueue "Stockometry/pkg/queue"

	"github.com/robfig/cron/v3"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	collector *usecase.NewsCollector
	sweep     *usecase.AnnotationSweep
	runner    *usecase.ReportRunner
	backfill  *usecase.Backfill
	quotes    *usecase.QuoteCollector
	consumer  *pkgkafka.Consumer
	kh        pkgkafka.MessageHandler
	queue     *pkgqueue.RedisQueue
	chClient  *pkgch.Client

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	cronRunner  *cron.Cron
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.NewsCollector,
	sweep *usecase.AnnotationSweep,
	runner *usecase.ReportRunner,
	backfill *usecase.Backfill,
	quotes *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	queue *pkgqueue.RedisQueue,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		sweep:     sweep,
		runner:    runner,
		backfill:  backfill,
		quotes:    quotes,
		consumer:  consumer,
		kh:        kh,
		queue:     queue,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Queue workers handle backfill report runs
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			l.Error("queue start error", applogger.Error(err))
		}
	}

	// Kafka consumer stores raw articles when ingest goes through the bus
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Optional market data stream
	if a.quotes != nil && a.cfg.MarketData.Enabled {
		go func() {
			if err := a.quotes.Start(ctx); err != nil {
				l.Error("quote collector error", applogger.Error(err))
			}
		}()
		l.Info("quote collector started", applogger.Strings("symbols", a.cfg.MarketData.Symbols))
	}

	if a.cfg.Scheduler.Enabled {
		if err := a.startScheduler(ctx, l); err != nil {
			return err
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// startScheduler registers the collect / annotate / report cron entries.
func (a *App) startScheduler(ctx context.Context, l *applogger.Logger) error {
	c := cron.New()

	if _, err := c.AddFunc(a.cfg.Scheduler.CollectCron, func() {
		if n, err := a.collector.CollectLatest(ctx, 24*time.Hour); err != nil {
			l.Error("scheduled collection error", applogger.Error(err))
		} else {
			l.Info("scheduled collection finished", applogger.Int("ingested", n))
		}
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc(a.cfg.Scheduler.AnnotateCron, func() {
		if _, err := a.sweep.Run(ctx); err != nil {
			l.Error("scheduled annotation error", applogger.Error(err))
		}
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc(a.cfg.Scheduler.ReportCron, func() {
		if _, err := a.runner.RunNow(ctx, models.RunScheduled); err != nil {
			l.Error("scheduled report error", applogger.Error(err))
		}
	}); err != nil {
		return err
	}

	c.Start()
	a.cronRunner = c
	l.Info("scheduler started",
		applogger.String("collect", a.cfg.Scheduler.CollectCron),
		applogger.String("annotate", a.cfg.Scheduler.AnnotateCron),
		applogger.String("report", a.cfg.Scheduler.ReportCron),
	)
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	if a.cronRunner != nil {
		stopCtx := a.cronRunner.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(a.cfg.Server.ShutdownTimeout):
			l.Warn("timeout waiting for cron jobs")
		}
	}

	if a.quotes != nil {
		if err := a.quotes.Shutdown(ctx); err != nil {
			l.Warn("quote collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			l.Warn("queue stop error", applogger.Error(err))
		}
	}

	// Close collector resources (publisher/storage)
	if a.collector != nil {
		a.collector.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
