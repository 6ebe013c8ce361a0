//go:build wireinject
// +build wireinject

package di

import (
	"Stockometry/pkg/config"
	"Stockometry/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Shared infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Repositories
		ProvideArticleStore,
		ProvideReportStore,
		ProvideQuoteStore,
		ProvideArticlePublisher,

		// Domain services
		ProvideSectors,
		ProvideSynthesizer,
		ProvideNewsFetcher,
		ProvideAnnotator,
		ProvideMarketStream,
		ProvideBytesCache,
		ProvideExporter,

		// Use cases
		ProvideReportRunner,
		ProvideQueue,
		ProvideBackfill,
		ProvideAnnotationSweep,
		ProvideNewsCollector,
		ProvideQuoteCollector,
		ProvideKafkaArticlesHandler,

		// HTTP and application server
		ProvideReportsHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
