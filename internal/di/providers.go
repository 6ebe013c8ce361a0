package di

import (
	"context"
	"fmt"
	"time"

	"Stockometry/internal/domain/repository"
	"Stockometry/internal/handler/api"
	mid "Stockometry/internal/middleware"
	internalrepo "Stockometry/internal/repository"
	icache "Stockometry/internal/service/cache"
	"Stockometry/internal/service/marketdata"
	"Stockometry/internal/service/newsapi"
	"Stockometry/internal/services/analysis"
	"Stockometry/internal/services/nlp"
	"Stockometry/internal/services/output"
	"Stockometry/internal/services/sectors"
	"Stockometry/internal/usecase"
	pkgch "Stockometry/pkg/clickhouse"
	"Stockometry/pkg/config"
	xhttp "Stockometry/pkg/http"
	pkgkafka "Stockometry/pkg/kafka"
	applogger "Stockometry/pkg/logger"
	"Stockometry/pkg/metrics"
	pkgqueue "Stockometry/pkg/queue"
	"Stockometry/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the shared application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	db := cfg.ClickHouse.Database

	// Articles live in a ReplacingMergeTree keyed by URL. Annotation is a
	// second insert with annotated=1 that wins the merge, so raw storage
	// stays append-only and a URL is never stored twice. Reads use FINAL.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		`CREATE TABLE IF NOT EXISTS ` + db + `.articles (
			url String,
			source_name String,
			author String,
			title String,
			description String,
			content String,
			published_at DateTime('UTC'),
			annotated UInt8,
			nlp_features String
		) ENGINE=ReplacingMergeTree(annotated) ORDER BY url`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.daily_reports (
			id String,
			report_date Date,
			run_source String,
			generated_at DateTime('UTC'),
			report String
		) ENGINE=ReplacingMergeTree(generated_at) ORDER BY report_date`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.stock_quotes (
			ts DateTime64(3, 'UTC'),
			symbol String,
			price Float64,
			volume Float64
		) ENGINE=MergeTree ORDER BY (symbol, ts)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer when ingest goes through the bus.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Ingest.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Ingest.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideArticleStore creates the ClickHouse article repository.
func ProvideArticleStore(chClient *pkgch.Client, cfg *config.Config) repository.ArticleStore {
	return internalrepo.NewCHArticleStore(chClient, cfg.ClickHouse.Database+".articles")
}

// ProvideReportStore creates the ClickHouse report repository.
func ProvideReportStore(chClient *pkgch.Client, cfg *config.Config) repository.ReportStore {
	return internalrepo.NewCHReportStore(chClient, cfg.ClickHouse.Database+".daily_reports")
}

// ProvideQuoteStore creates the ClickHouse quote repository.
func ProvideQuoteStore(chClient *pkgch.Client, cfg *config.Config) repository.QuoteStore {
	return internalrepo.NewCHQuoteStore(chClient, cfg.ClickHouse.Database+".stock_quotes")
}

// ProvideArticlePublisher creates the Kafka article publisher.
func ProvideArticlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaArticlePublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaArticlesHandler registers the handler for the articles topic.
func ProvideKafkaArticlesHandler(store repository.ArticleStore, annotator repository.Annotator, m repository.Metrics, cfg *config.Config) *usecase.KafkaArticlesHandler {
	h := usecase.NewKafkaArticlesHandler(cfg.Kafka.Topic, store, m)
	h.SetAnnotator(annotator)
	return h
}

// ProvideSectors builds the entity-to-sector lookup. Config entries are
// keyed sector -> entities; an empty config falls back to the built-in map.
func ProvideSectors(cfg *config.Config) *sectors.Map {
	if len(cfg.Sectors) == 0 {
		return sectors.Default()
	}
	entries := make(map[string]string)
	for sector, entities := range cfg.Sectors {
		for _, e := range entities {
			entries[e] = sector
		}
	}
	return sectors.New(entries)
}

// ProvideSynthesizer creates the signal synthesis engine.
func ProvideSynthesizer(m *sectors.Map, cfg *config.Config) *analysis.Synthesizer {
	return analysis.NewSynthesizer(m, cfg.Analysis.LookbackDays)
}

// ProvideNewsFetcher creates the NewsAPI client.
func ProvideNewsFetcher(cfg *config.Config) usecase.NewsFetcher {
	return newsapi.New(
		cfg.NewsAPI.APIKey,
		cfg.NewsAPI.BaseURL,
		cfg.NewsAPI.Timeout,
		newsapi.WithQuery(cfg.NewsAPI.Query, cfg.NewsAPI.Language),
		newsapi.WithPageSize(cfg.NewsAPI.PageSize),
		newsapi.WithRateLimit(cfg.NewsAPI.RPS, cfg.NewsAPI.Burst),
	)
}

// ProvideAnnotator creates the NLP annotation client.
func ProvideAnnotator(cfg *config.Config) repository.Annotator {
	return nlp.New(cfg.NLP.ServiceURL, cfg.NLP.Timeout)
}

// ProvideMarketStream creates the market data WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	if !cfg.MarketData.Enabled {
		return nil
	}
	return marketdata.New(
		cfg.MarketData.APIKey,
		cfg.MarketData.WebSocketURL,
		cfg.MarketData.Symbols,
		cfg.MarketData.ReconnectDelay,
		cfg.MarketData.PingInterval,
	)
}

// ProvideRedisClient creates the shared Redis connection.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideBytesCache creates the latest-report cache. Redis when enabled,
// in-process TTL cache otherwise.
func ProvideBytesCache(rdb *redis.Client, cfg *config.Config) icache.BytesCache {
	if rdb != nil {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideQueue creates the Redis-backed job queue with the report job
// registered. Backfill enqueues one report run per missing date.
func ProvideQueue(lgr *applogger.Logger, rdb *redis.Client, runner *usecase.ReportRunner) *pkgqueue.RedisQueue {
	if rdb == nil {
		return nil
	}
	q := pkgqueue.NewRedisQueue(lgr, &pkgqueue.QueueConfig{
		Workers:    2,
		QueueSize:  100,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rdb, pkgqueue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewReportJob(runner))
	return q
}

// ProvideExporter creates the JSON report exporter.
func ProvideExporter(cfg *config.Config) *output.Exporter {
	dir := cfg.Output.Dir
	if dir == "" {
		dir = "output"
	}
	return output.New(dir)
}

// ProvideReportRunner creates the report generation use case.
func ProvideReportRunner(
	articles repository.ArticleStore,
	reports repository.ReportStore,
	synth *analysis.Synthesizer,
	exporter *output.Exporter,
	bc icache.BytesCache,
	m repository.Metrics,
	cfg *config.Config,
	lgr *applogger.Logger,
) *usecase.ReportRunner {
	ttl := cfg.Output.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return usecase.NewReportRunner(articles, reports, synth, exporter, bc, ttl, cfg.Analysis.LookbackDays, m, lgr)
}

// ProvideBackfill creates the backfill use case.
func ProvideBackfill(
	reports repository.ReportStore,
	runner *usecase.ReportRunner,
	collector *usecase.NewsCollector,
	q *pkgqueue.RedisQueue,
	lgr *applogger.Logger,
) *usecase.Backfill {
	// A nil *RedisQueue must not become a non-nil QueueService.
	var qs pkgqueue.QueueService
	if q != nil {
		qs = q
	}
	return usecase.NewBackfill(reports, runner, collector, qs, lgr)
}

// ProvideAnnotationSweep creates the annotation use case.
func ProvideAnnotationSweep(
	store repository.ArticleStore,
	annotator repository.Annotator,
	m repository.Metrics,
	cfg *config.Config,
	lgr *applogger.Logger,
) *usecase.AnnotationSweep {
	return usecase.NewAnnotationSweep(store, annotator, m, cfg.NLP.BatchSize, lgr)
}

// ProvideNewsCollector creates the news collection use case.
func ProvideNewsCollector(
	fetcher usecase.NewsFetcher,
	pub repository.Publisher,
	store repository.ArticleStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.NewsCollector {
	return usecase.NewNewsCollector(fetcher, pub, store, m, cfg.Ingest.Type)
}

// ProvideQuoteCollector creates the quote collector use case.
func ProvideQuoteCollector(
	stream repository.MarketStream,
	store repository.QuoteStore,
	m repository.Metrics,
) *usecase.QuoteCollector {
	if stream == nil {
		return nil
	}
	proc := usecase.NewQuoteProcessor(store, m)
	pipe := mid.NewQuotePipeline(proc, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewQuoteCollector(stream, m, pipe)
}

// ProvideReportsHandler creates the HTTP handler for report endpoints.
func ProvideReportsHandler(
	lgr *applogger.Logger,
	runner *usecase.ReportRunner,
	backfill *usecase.Backfill,
	reports repository.ReportStore,
	articles repository.ArticleStore,
	bc icache.BytesCache,
) xhttp.Handler {
	h := api.NewReportsHandler(lgr, runner, backfill, reports, articles)
	h.SetCache(bc)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.NewsCollector,
	sweep *usecase.AnnotationSweep,
	runner *usecase.ReportRunner,
	backfill *usecase.Backfill,
	quotes *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaArticlesHandler,
	q *pkgqueue.RedisQueue,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, sweep, runner, backfill, quotes, consumer, kh, q, chClient)
	app.SetHTTPHandler(handler)
	return app
}
