package nlp

import (
	"context"
	"fmt"
	"time"

	"Stockometry/internal/domain/models"
	xhttp "Stockometry/pkg/http"
)

// HTTPAnnotator calls the external NLP service to extract sentiment and
// named entities from article text. The model inference itself lives in
// a separate Python process; this client only speaks JSON over HTTP.
type HTTPAnnotator struct {
	baseURL  string
	client   *xhttp.Client
	attempts int
}

// New builds an annotator client for the given service URL.
func New(baseURL string, timeout time.Duration) *HTTPAnnotator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAnnotator{
		baseURL:  baseURL,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		attempts: 3,
	}
}

type annotateRequest struct {
	Text string `json:"text"`
}

type annotateResponse struct {
	Sentiment *struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"sentiment"`
	Entities []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"entities"`
}

// Annotate sends text to the NLP service and maps the response onto the
// domain model. Transient failures are retried with a linear backoff.
func (a *HTTPAnnotator) Annotate(ctx context.Context, text string) (*models.NLPFeatures, error) {
	if a.client == nil || a.baseURL == "" {
		return nil, fmt.Errorf("nlp client not initialized")
	}

	var resp annotateResponse
	var err error
	for i := 1; i <= a.attempts; i++ {
		err = a.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    a.baseURL + "/annotate",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			Body: annotateRequest{Text: text},
		}, &resp)
		if err == nil {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	feats := &models.NLPFeatures{}
	if resp.Sentiment != nil {
		feats.Sentiment = &models.Sentiment{
			Label: resp.Sentiment.Label,
			Score: resp.Sentiment.Score,
		}
	}
	for _, e := range resp.Entities {
		feats.Entities = append(feats.Entities, models.Entity{Text: e.Text, Label: e.Label})
	}
	return feats, nil
}
