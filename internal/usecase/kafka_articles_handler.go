package usecase

import (
	"context"
	"encoding/json"
	"time"

	"Stockometry/internal/domain/models"
	domrepo "Stockometry/internal/domain/repository"
	pkgkafka "Stockometry/pkg/kafka"
)

// KafkaArticlesHandler consumes raw articles from Kafka and writes them
// to the article store. URL deduplication happens in the store. When an
// annotator is attached it enriches each new article inline; failures
// leave the article pending for the sweep to retry.
type KafkaArticlesHandler struct {
	topic     string
	store     domrepo.ArticleStore
	annotator domrepo.Annotator
	metrics   domrepo.Metrics
}

func NewKafkaArticlesHandler(topic string, store domrepo.ArticleStore, metrics domrepo.Metrics) *KafkaArticlesHandler {
	return &KafkaArticlesHandler{topic: topic, store: store, metrics: metrics}
}

// SetAnnotator enables inline annotation of consumed articles.
func (h *KafkaArticlesHandler) SetAnnotator(a domrepo.Annotator) { h.annotator = a }

func (h *KafkaArticlesHandler) Topic() string { return h.topic }

func (h *KafkaArticlesHandler) Handle(ctx context.Context, b []byte) error {
	var a models.Article
	if err := json.Unmarshal(b, &a); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	inserted, err := h.store.StoreRaw(ctx, []*models.Article{&a})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	if len(inserted) == 0 {
		return nil // duplicate URL
	}
	h.metrics.RecordArticleStored("clickhouse", a.SourceName)

	if h.annotator != nil {
		feats, err := h.annotator.Annotate(ctx, annotationText(&a))
		if err != nil {
			h.metrics.RecordError("consumer_annotate")
			return nil // stays pending, sweep retries
		}
		a.NLPFeatures = feats
		if err := h.store.StoreAnnotated(ctx, &a); err != nil {
			h.metrics.RecordError("consumer_annotate_store")
		}
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaArticlesHandler)(nil)
