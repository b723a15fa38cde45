package repository

import (
	"context"

	"StonkPulse/internal/domain/models"
)

// Gateway is the typed view of the upstream data providers.
// Implementations return *gateway.FetchError on failure and never panic.
type Gateway interface {
	FetchPrice(ctx context.Context, symbol string) (models.Quote, error)
	FetchMacro(ctx context.Context) (models.MacroReading, error)
	FetchSentiment(ctx context.Context) (models.SentimentReading, error)
	FetchNews(ctx context.Context) ([]models.NewsItem, error)
	FetchSeries(ctx context.Context, symbol string) (models.Series, error)
}

type Metrics interface {
	RecordFetch(endpoint, outcome string)
	RecordPoll(task string, seconds float64, failed bool)
	RecordLastPrice(symbol string, price float64)
	RecordFearGreed(score int)
	RecordStaleDrop(panel string)
}
