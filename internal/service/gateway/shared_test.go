package gateway

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"StonkPulse/internal/domain/models"
)

type gatedGateway struct {
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedGateway) FetchPrice(ctx context.Context, symbol string) (models.Quote, error) {
	g.calls.Add(1)
	<-g.release
	return models.Quote{Symbol: symbol, Price: 5, State: models.StateAvailable}, nil
}

func (g *gatedGateway) FetchMacro(context.Context) (models.MacroReading, error) {
	return models.MacroReading{}, nil
}

func (g *gatedGateway) FetchSentiment(context.Context) (models.SentimentReading, error) {
	return models.SentimentReading{}, nil
}

func (g *gatedGateway) FetchNews(context.Context) ([]models.NewsItem, error) { return nil, nil }

func (g *gatedGateway) FetchSeries(ctx context.Context, symbol string) (models.Series, error) {
	g.calls.Add(1)
	<-g.release
	return models.Series{Symbol: symbol, Points: []models.Point{{Time: 1, Value: 1}}}, nil
}

func TestSharedJoinsInFlightCalls(t *testing.T) {
	g := &gatedGateway{release: make(chan struct{})}
	s := NewShared(g)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q, err := s.FetchPrice(context.Background(), "AAPL"); err != nil || q.Price != 5 {
				t.Errorf("unexpected result %+v %v", q, err)
			}
		}()
	}
	// let every caller reach the group before releasing the single upstream call
	deadline := time.Now().Add(time.Second)
	for g.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(g.release)
	wg.Wait()

	if n := g.calls.Load(); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}

func TestSharedDoesNotReuseCompletedResult(t *testing.T) {
	g := &gatedGateway{release: make(chan struct{})}
	close(g.release)
	s := NewShared(g)

	for i := 0; i < 3; i++ {
		if _, err := s.FetchSeries(context.Background(), "TSLA"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := g.calls.Load(); n != 3 {
		t.Fatalf("expected every sequential call to refetch, got %d upstream calls", n)
	}
}

func TestSharedCallerCancellation(t *testing.T) {
	g := &gatedGateway{release: make(chan struct{})}
	defer close(g.release)
	s := NewShared(g)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.FetchSeries(ctx, "TSLA")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error on cancellation, got %v", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Endpoint != EndpointSeries || fe.Symbol != "TSLA" {
		t.Fatalf("unexpected error %v", err)
	}
}
