package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Stockometry/internal/domain/models"
	drepo "Stockometry/internal/domain/repository"
	applogger "Stockometry/pkg/logger"
)

// AnnotationSweep drains the pending-article backlog through the NLP
// service. A failed article is left pending and retried on the next
// sweep; one bad article never fails the batch.
type AnnotationSweep struct {
	store     drepo.ArticleStore
	annotator drepo.Annotator
	metrics   drepo.Metrics
	batchSize int
	l         *applogger.Logger
}

// NewAnnotationSweep creates a new AnnotationSweep instance.
func NewAnnotationSweep(
	store drepo.ArticleStore,
	annotator drepo.Annotator,
	metrics drepo.Metrics,
	batchSize int,
	l *applogger.Logger,
) *AnnotationSweep {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &AnnotationSweep{
		store:     store,
		annotator: annotator,
		metrics:   metrics,
		batchSize: batchSize,
		l:         l,
	}
}

// Run processes up to one batch of pending articles. Returns the number
// of articles successfully annotated.
func (s *AnnotationSweep) Run(ctx context.Context) (int, error) {
	pending, err := s.store.ListPending(ctx, s.batchSize)
	if err != nil {
		s.metrics.RecordError("annotate_list")
		return 0, fmt.Errorf("list pending: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	done := 0
	for _, a := range pending {
		select {
		case <-ctx.Done():
			return done, ctx.Err()
		default:
		}

		start := time.Now()
		feats, err := s.annotator.Annotate(ctx, annotationText(a))
		if err != nil {
			s.metrics.RecordError("annotate_nlp")
			if s.l != nil {
				s.l.Warn("annotation failed, article stays pending",
					applogger.String("url", a.URL),
					applogger.Error(err),
				)
			}
			continue
		}
		a.NLPFeatures = feats
		if err := s.store.StoreAnnotated(ctx, a); err != nil {
			s.metrics.RecordError("annotate_store")
			if s.l != nil {
				s.l.Error("store annotated failed",
					applogger.String("url", a.URL),
					applogger.Error(err),
				)
			}
			continue
		}
		s.metrics.RecordLatency("annotate", time.Since(start).Seconds())
		done++
	}

	if s.l != nil {
		s.l.Info("annotation sweep finished",
			applogger.Int("pending", len(pending)),
			applogger.Int("annotated", done),
		)
	}
	return done, nil
}

// annotationText is what the NLP service sees for an article.
func annotationText(a *models.Article) string {
	if a.Description == "" {
		return a.Title
	}
	return strings.TrimSpace(a.Title + ". " + a.Description)
}
