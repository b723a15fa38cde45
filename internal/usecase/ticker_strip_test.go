package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"StonkPulse/internal/domain/models"
)

func TestTickerStripPartialFailure(t *testing.T) {
	symbols := []string{"AAPL", "TSLA", "MSFT", "GOOG"}
	gw := &fakeGateway{price: func(ctx context.Context, s string) (models.Quote, error) {
		switch s {
		case "TSLA", "GOOG":
			return models.Quote{}, errors.New("upstream down")
		}
		return quote(s, 100), nil
	}}
	p := NewTickerStrip(gw, nopMetrics, nopLog, TickerOptions{Symbols: symbols, Interval: time.Hour})

	if err := p.Refresh(context.Background()); err == nil {
		t.Fatal("expected an error summarizing the failed fetches")
	}

	got := p.Quotes()
	if len(got) != len(symbols) {
		t.Fatalf("expected %d entries, got %d", len(symbols), len(got))
	}
	for i, q := range got {
		if q.Symbol != symbols[i] {
			t.Fatalf("roster order changed: %v", got)
		}
		failed := q.Symbol == "TSLA" || q.Symbol == "GOOG"
		if failed && (q.State != models.StateUnavailable || q.Display() != "N/A") {
			t.Fatalf("%s should be unavailable, got %+v", q.Symbol, q)
		}
		if !failed && (q.State != models.StateAvailable || q.Price != 100) {
			t.Fatalf("%s should hold its price, got %+v", q.Symbol, q)
		}
	}
}

func TestTickerStripFailureDoesNotKeepPreviousValue(t *testing.T) {
	var fail atomic.Bool
	gw := &fakeGateway{price: func(ctx context.Context, s string) (models.Quote, error) {
		if fail.Load() {
			return models.Quote{}, errors.New("down")
		}
		return quote(s, 10), nil
	}}
	p := NewTickerStrip(gw, nopMetrics, nopLog, TickerOptions{Symbols: []string{"AAPL"}})
	_ = p.Refresh(context.Background())
	fail.Store(true)
	_ = p.Refresh(context.Background())

	if q := p.Quotes()[0]; q.State != models.StateUnavailable {
		t.Fatalf("expected unavailable, got %+v", q)
	}
}

func TestTickerStripKeepStale(t *testing.T) {
	var fail atomic.Bool
	gw := &fakeGateway{price: func(ctx context.Context, s string) (models.Quote, error) {
		if fail.Load() {
			return models.Quote{}, errors.New("down")
		}
		return quote(s, 10), nil
	}}
	p := NewTickerStrip(gw, nopMetrics, nopLog, TickerOptions{Symbols: []string{"AAPL"}, KeepStale: true})
	_ = p.Refresh(context.Background())
	fail.Store(true)
	_ = p.Refresh(context.Background())

	q := p.Quotes()[0]
	if q.State != models.StateStale || q.Price != 10 || q.Display() != "$10.00" {
		t.Fatalf("expected stale $10.00, got %+v", q)
	}
}

func TestTickerStripFansOutAndSwapsAtomically(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	gw := &fakeGateway{price: func(ctx context.Context, s string) (models.Quote, error) {
		started.Add(1)
		<-release
		return quote(s, 1), nil
	}}
	symbols := []string{"A", "B", "C"}
	p := NewTickerStrip(gw, nopMetrics, nopLog, TickerOptions{Symbols: symbols})

	done := make(chan error, 1)
	go func() { done <- p.Refresh(context.Background()) }()

	// all fetches are issued before any settles
	eventually(t, func() bool { return started.Load() == 3 }, "fetches were not issued concurrently")
	for _, q := range p.Quotes() {
		if q.State != models.StateLoading {
			t.Fatalf("nothing should apply before the batch settles, got %+v", q)
		}
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, q := range p.Quotes() {
		if q.State != models.StateAvailable {
			t.Fatalf("expected the whole batch applied, got %+v", q)
		}
	}
}

func TestTickerStripNoWriteAfterStop(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	gw := &fakeGateway{price: func(ctx context.Context, s string) (models.Quote, error) {
		entered <- struct{}{}
		<-release
		return quote(s, 5), nil
	}}
	p := NewTickerStrip(gw, nopMetrics, nopLog, TickerOptions{Symbols: []string{"AAPL"}, Interval: time.Hour})
	p.Start(context.Background())
	<-entered
	p.Stop()
	close(release)

	time.Sleep(20 * time.Millisecond)
	if q := p.Quotes()[0]; q.State != models.StateLoading {
		t.Fatalf("result arriving after stop must be discarded, got %+v", q)
	}
}

func TestTickerStripPollsPeriodically(t *testing.T) {
	gw := &fakeGateway{price: func(ctx context.Context, s string) (models.Quote, error) { return quote(s, 1), nil }}
	p := NewTickerStrip(gw, nopMetrics, nopLog, TickerOptions{Symbols: []string{"X"}, Interval: 5 * time.Millisecond})
	p.Start(context.Background())
	defer p.Stop()

	eventually(t, func() bool { return gw.Calls("price:X") >= 3 }, "expected repeated polls")
}
