package models

import "time"

// Article is a news item as collected from the news provider.
// NLPFeatures is nil until the annotation pipeline has processed it;
// the analysis engine only ever sees annotated articles.
type Article struct {
	ID          int64        `json:"id"`
	SourceName  string       `json:"source_name,omitempty"`
	Author      string       `json:"author,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Content     string       `json:"content,omitempty"`
	URL         string       `json:"url"`
	PublishedAt time.Time    `json:"published_at"`
	NLPFeatures *NLPFeatures `json:"nlp_features,omitempty"`
}

// NLPFeatures is the output of the external annotation service.
type NLPFeatures struct {
	Sentiment *Sentiment `json:"sentiment"`
	Entities  []Entity   `json:"entities"`
}

// Sentiment holds the label and confidence score for an article.
type Sentiment struct {
	Label string  `json:"label"` // "positive", "negative", "neutral"
	Score float64 `json:"score"` // [0, 1]
}

// Entity is a named entity extracted from article text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"` // "ORG", "PERSON", "GPE", ...
}

// Annotated reports whether the article carries usable NLP features.
func (a *Article) Annotated() bool {
	return a.NLPFeatures != nil
}

// SignedScore maps the sentiment to a signed value: positive label
// keeps the score, negative negates it, neutral contributes zero.
func (s *Sentiment) SignedScore() float64 {
	switch s.Label {
	case SentimentPositive:
		return s.Score
	case SentimentNegative:
		return -s.Score
	default:
		return 0
	}
}

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)
