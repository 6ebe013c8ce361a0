package repository

import (
	"context"

	"Stockometry/internal/domain/models"
	"Stockometry/internal/domain/repository"
	pkgkafka "Stockometry/pkg/kafka"
)

// KafkaArticlePublisher implements Publisher for Kafka. Raw articles are
// keyed by URL so repeated collections of the same story land on the
// same partition.
type KafkaArticlePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaArticlePublisher creates a Kafka article publisher.
func NewKafkaArticlePublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaArticlePublisher{producer: producer, topic: topic}
}

func (p *KafkaArticlePublisher) PublishArticle(ctx context.Context, a *models.Article) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.URL), a)
}

func (p *KafkaArticlePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
