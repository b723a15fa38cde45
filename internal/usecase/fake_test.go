package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"StonkPulse/internal/domain/models"
	"StonkPulse/internal/service/gateway"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/metrics"
)

// fakeGateway answers from funcs; a nil func fails with an empty-data error.
type fakeGateway struct {
	price     func(ctx context.Context, symbol string) (models.Quote, error)
	macro     func(ctx context.Context) (models.MacroReading, error)
	sentiment func(ctx context.Context) (models.SentimentReading, error)
	news      func(ctx context.Context) ([]models.NewsItem, error)
	series    func(ctx context.Context, symbol string) (models.Series, error)

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeGateway) count(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[key]++
}

func (f *fakeGateway) Calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func emptyErr(endpoint, symbol string) error {
	return &gateway.FetchError{Kind: gateway.KindEmpty, Endpoint: endpoint, Symbol: symbol, Err: context.DeadlineExceeded}
}

func (f *fakeGateway) FetchPrice(ctx context.Context, symbol string) (models.Quote, error) {
	f.count("price:" + symbol)
	if f.price == nil {
		return models.Quote{}, emptyErr(gateway.EndpointPrice, symbol)
	}
	return f.price(ctx, symbol)
}

func (f *fakeGateway) FetchMacro(ctx context.Context) (models.MacroReading, error) {
	f.count("macro")
	if f.macro == nil {
		return models.MacroReading{}, emptyErr(gateway.EndpointMacro, "")
	}
	return f.macro(ctx)
}

func (f *fakeGateway) FetchSentiment(ctx context.Context) (models.SentimentReading, error) {
	f.count("sentiment")
	if f.sentiment == nil {
		return models.SentimentReading{}, emptyErr(gateway.EndpointSentiment, "")
	}
	return f.sentiment(ctx)
}

func (f *fakeGateway) FetchNews(ctx context.Context) ([]models.NewsItem, error) {
	f.count("news")
	if f.news == nil {
		return nil, emptyErr(gateway.EndpointNews, "")
	}
	return f.news(ctx)
}

func (f *fakeGateway) FetchSeries(ctx context.Context, symbol string) (models.Series, error) {
	f.count("series:" + symbol)
	if f.series == nil {
		return models.Series{}, emptyErr(gateway.EndpointSeries, symbol)
	}
	return f.series(ctx, symbol)
}

func quote(symbol string, price float64) models.Quote {
	return models.Quote{Symbol: symbol, Price: price, State: models.StateAvailable, FetchedAt: time.Now()}
}

func seriesOf(symbol string, values ...float64) models.Series {
	pts := make([]models.Point, len(values))
	for i, v := range values {
		pts[i] = models.Point{Time: int64(1000 + i), Value: v}
	}
	return models.Series{Symbol: symbol, Points: pts}
}

var (
	nopLog     = logger.Nop()
	nopMetrics = metrics.Nop{}
)

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}
