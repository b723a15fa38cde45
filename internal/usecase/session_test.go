package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StonkPulse/internal/domain/models"
)

func newTestSession(gw *fakeGateway, opts SessionOptions) *Session {
	chart := NewChartFeed(gw, nopMetrics, nopLog, 14)
	return NewSession(chart, nopMetrics, nopLog, opts)
}

func okSeries() *fakeGateway {
	return &fakeGateway{series: func(ctx context.Context, s string) (models.Series, error) {
		return seriesOf(s, 1, 2, 3), nil
	}}
}

func TestSubmitOrdering(t *testing.T) {
	s := newTestSession(okSeries(), SessionOptions{})
	ctx := context.Background()

	if _, _, err := s.Submit(ctx, "aapl"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err := s.Submit(ctx, " tsla "); err != nil {
		t.Fatalf("submit: %v", err)
	}

	r := s.Reports()
	if len(r) != 2 || r[0].Symbol != "TSLA" || r[1].Symbol != "AAPL" {
		t.Fatalf("expected most recent first, got %+v", r)
	}
	if len(r[0].SubmittedAt) != len("15:04:05") {
		t.Fatalf("unexpected submitted_at %q", r[0].SubmittedAt)
	}
	if s.Active() != "TSLA" {
		t.Fatalf("expected TSLA active, got %q", s.Active())
	}
}

func TestSubmitNeverDeduplicates(t *testing.T) {
	s := newTestSession(okSeries(), SessionOptions{})
	for i := 0; i < 3; i++ {
		if _, _, err := s.Submit(context.Background(), "AAPL"); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(s.Reports()); n != 3 {
		t.Fatalf("expected 3 entries, got %d", n)
	}
}

func TestSubmitRejectsBlank(t *testing.T) {
	s := newTestSession(okSeries(), SessionOptions{})
	if _, _, err := s.Submit(context.Background(), "   "); !errors.Is(err, ErrEmptySymbol) {
		t.Fatalf("expected ErrEmptySymbol, got %v", err)
	}
	if len(s.Reports()) != 0 {
		t.Fatal("blank submit must not add an entry")
	}
}

func TestSelectFromHistoryIsIdempotent(t *testing.T) {
	gw := okSeries()
	s := newTestSession(gw, SessionOptions{})
	ctx := context.Background()
	_, _, _ = s.Submit(ctx, "AAPL")
	_, _, _ = s.Submit(ctx, "TSLA")
	before := s.Reports()

	for i := 0; i < 2; i++ {
		o, err := s.SelectFromHistory(ctx, "AAPL")
		if err != nil || o.State != models.ChartReady {
			t.Fatalf("select: %+v %v", o, err)
		}
	}
	after := s.Reports()
	if len(after) != len(before) || after[0].Symbol != before[0].Symbol || after[1].Symbol != before[1].Symbol {
		t.Fatalf("log changed: %+v -> %+v", before, after)
	}
	if s.Active() != "AAPL" {
		t.Fatalf("expected AAPL active, got %q", s.Active())
	}
	if n := gw.Calls("series:AAPL"); n != 3 {
		t.Fatalf("every selection should refetch, got %d", n)
	}
}

func TestSelectFromHistoryUnknown(t *testing.T) {
	s := newTestSession(okSeries(), SessionOptions{})
	if _, err := s.SelectFromHistory(context.Background(), "NVDA"); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestLoadingFlagAndRotation(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{series: func(ctx context.Context, s string) (models.Series, error) {
		<-release
		return seriesOf(s, 1), nil
	}}
	msgs := []string{"one", "two", "three"}
	s := newTestSession(gw, SessionOptions{LoadingMessages: msgs, LoadingInterval: 5 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Submit(context.Background(), "AAPL")
		done <- err
	}()

	eventually(t, func() bool { loading, _ := s.Loading(); return loading }, "loading flag not set")
	seen := map[string]bool{}
	eventually(t, func() bool {
		_, m := s.Loading()
		seen[m] = true
		return seen["one"] && seen["two"] && seen["three"]
	}, "status messages did not rotate")

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	loading, msg := s.Loading()
	if loading || msg != "" {
		t.Fatalf("loading should clear after completion, got %v %q", loading, msg)
	}
}

func TestLoadingShowsInitialTextBeforeRotation(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{series: func(ctx context.Context, s string) (models.Series, error) {
		<-release
		return seriesOf(s, 1), nil
	}}
	s := newTestSession(gw, SessionOptions{LoadingMessages: []string{"one", "two"}, LoadingInterval: time.Hour})

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Submit(context.Background(), "AAPL")
		done <- err
	}()

	eventually(t, func() bool { loading, _ := s.Loading(); return loading }, "loading flag not set")
	time.Sleep(10 * time.Millisecond)
	if _, msg := s.Loading(); msg != InitialLoadingMessage {
		t.Fatalf("expected %q before the first tick, got %q", InitialLoadingMessage, msg)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func TestSubmitHonoursCallerContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	gw := &fakeGateway{series: func(ctx context.Context, s string) (models.Series, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return models.Series{}, ctx.Err()
	}}
	s := newTestSession(gw, SessionOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, _, err := s.Submit(ctx, "AAPL"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if loading, _ := s.Loading(); loading {
		t.Fatal("loading must clear when the caller gives up")
	}
	if s.Active() != "AAPL" || len(s.Reports()) != 1 {
		t.Fatal("accepted submission should stay recorded")
	}
}
