package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"StonkPulse/internal/domain/models"
	"StonkPulse/pkg/config"
)

func summaryOptions() SummaryOptions {
	return SummaryOptions{
		Markets: []config.MarketSpec{
			{Key: "sp500", Label: "S&P 500", Symbol: "^GSPC"},
			{Key: "oil", Label: "Crude Oil", Symbol: "CL=F"},
		},
		Static: []config.StaticSpec{{Key: "eggs", Label: "Eggs", Text: "$4.50/dozen"}},
	}
}

func TestMarketSummaryAllSucceed(t *testing.T) {
	gw := &fakeGateway{
		price: func(ctx context.Context, s string) (models.Quote, error) { return quote(s, 5000.456), nil },
		macro: func(ctx context.Context) (models.MacroReading, error) {
			return models.MacroReading{DXY: "104.12", TenYearYield: "4.2%", Inflation: "3.1%", FedRate: "5.33%"}, nil
		},
		sentiment: func(ctx context.Context) (models.SentimentReading, error) { return models.SentimentReading{Score: 72}, nil },
	}
	p := NewMarketSummary(gw, nopMetrics, nopLog, summaryOptions())
	if err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := p.View()
	if len(v.Markets) != 3 {
		t.Fatalf("expected 2 priced lines and 1 static line, got %+v", v.Markets)
	}
	if v.Markets[0].Text != "$5000.46" || v.Markets[0].Quote == nil {
		t.Fatalf("unexpected sp500 line %+v", v.Markets[0])
	}
	if v.Markets[2].Key != "eggs" || v.Markets[2].Text != "$4.50/dozen" || v.Markets[2].Quote != nil {
		t.Fatalf("unexpected static line %+v", v.Markets[2])
	}
	m := v.Macro
	if !m.Fresh || m.UpdatedAt.IsZero() {
		t.Fatalf("expected fresh snapshot, got %+v", m)
	}
	if m.DXY.Display() != "104.12" || m.FedRate.Display() != "5.33%" {
		t.Fatalf("unexpected macro fields %+v", m)
	}
	if m.FearGreed.Label != "Greed" || m.FearGreed.Class != "greed" || m.FearGreed.Index != 72 {
		t.Fatalf("unexpected sentiment %+v", m.FearGreed)
	}
}

func TestMarketSummaryPartialFailure(t *testing.T) {
	gw := &fakeGateway{
		price: func(ctx context.Context, s string) (models.Quote, error) {
			if s == "CL=F" {
				return models.Quote{}, errors.New("no oil")
			}
			return quote(s, 1), nil
		},
		macro: func(ctx context.Context) (models.MacroReading, error) {
			return models.MacroReading{DXY: "101"}, nil
		},
		// sentiment fails
	}
	p := NewMarketSummary(gw, nopMetrics, nopLog, summaryOptions())
	if err := p.Refresh(context.Background()); err == nil {
		t.Fatal("expected joined error")
	}

	v := p.View()
	if v.Markets[0].Text != "$1.00" || v.Markets[1].Text != "N/A" {
		t.Fatalf("unexpected market lines %+v", v.Markets)
	}
	m := v.Macro
	if m.DXY.Display() != "101" {
		t.Fatalf("dxy should be available, got %+v", m.DXY)
	}
	for _, f := range []models.Field{m.TenYearYield, m.Inflation, m.FedRate} {
		if f.Display() != "N/A" {
			t.Fatalf("absent field should be N/A, got %+v", f)
		}
	}
	if m.FearGreed.State != models.StateUnavailable || m.FearGreed.Label != "?" {
		t.Fatalf("unexpected sentiment %+v", m.FearGreed)
	}
	if m.Fresh {
		t.Fatal("snapshot must not be fresh when sentiment failed")
	}
}

func TestMarketSummaryMacroFailureMarksEveryField(t *testing.T) {
	gw := &fakeGateway{
		sentiment: func(ctx context.Context) (models.SentimentReading, error) { return models.SentimentReading{Score: 10}, nil },
	}
	p := NewMarketSummary(gw, nopMetrics, nopLog, summaryOptions())
	_ = p.Refresh(context.Background())

	m := p.View().Macro
	for _, f := range []models.Field{m.DXY, m.TenYearYield, m.Inflation, m.FedRate} {
		if f.State != models.StateUnavailable {
			t.Fatalf("expected N/A field, got %+v", f)
		}
	}
	if m.FearGreed.Label != "Extreme Fear" || m.Fresh {
		t.Fatalf("unexpected snapshot %+v", m)
	}
}

func TestMarketSummaryGroupsApplyIndependently(t *testing.T) {
	releaseMacro := make(chan struct{})
	gw := &fakeGateway{
		price: func(ctx context.Context, s string) (models.Quote, error) { return quote(s, 2), nil },
		macro: func(ctx context.Context) (models.MacroReading, error) {
			<-releaseMacro
			return models.MacroReading{DXY: "100"}, nil
		},
		sentiment: func(ctx context.Context) (models.SentimentReading, error) { return models.SentimentReading{Score: 50}, nil },
	}
	p := NewMarketSummary(gw, nopMetrics, nopLog, summaryOptions())
	done := make(chan error, 1)
	go func() { done <- p.Refresh(context.Background()) }()

	eventually(t, func() bool {
		v := p.View()
		return v.Markets[0].Quote.State == models.StateAvailable && v.Macro.FearGreed.State == models.StateAvailable
	}, "prices and sentiment should apply while macro is still pending")

	v := p.View()
	if v.Macro.DXY.State != models.StateLoading || v.Macro.Fresh {
		t.Fatalf("macro should still be loading, got %+v", v.Macro)
	}
	close(releaseMacro)
	<-done
	if !p.View().Macro.Fresh {
		t.Fatal("expected fresh once both calls of the round succeeded")
	}
}

func TestMarketSummaryFreshResetsEachRound(t *testing.T) {
	var round atomic.Int32
	holdSentiment := make(chan struct{})
	gw := &fakeGateway{
		macro: func(ctx context.Context) (models.MacroReading, error) {
			if round.Load() == 2 {
				return models.MacroReading{}, errors.New("macro down")
			}
			return models.MacroReading{DXY: "104"}, nil
		},
		sentiment: func(ctx context.Context) (models.SentimentReading, error) {
			if round.Load() == 2 {
				<-holdSentiment
			}
			return models.SentimentReading{Score: 60}, nil
		},
	}
	p := NewMarketSummary(gw, nopMetrics, nopLog, summaryOptions())

	round.Store(1)
	_ = p.Refresh(context.Background())
	if m := p.View().Macro; !m.Fresh || m.DXY.Display() != "104" {
		t.Fatalf("round 1 should be fresh, got %+v", m)
	}

	round.Store(2)
	done := make(chan error, 1)
	go func() { done <- p.Refresh(context.Background()) }()

	eventually(t, func() bool { return p.View().Macro.DXY.State == models.StateUnavailable },
		"round 2 macro failure never applied")
	if p.View().Macro.Fresh {
		t.Fatal("snapshot kept the previous round's fresh flag after macro failed")
	}

	close(holdSentiment)
	<-done
	if p.View().Macro.Fresh {
		t.Fatal("a round with a failed macro call must not be fresh")
	}
}

func TestMarketSummaryOneShot(t *testing.T) {
	gw := &fakeGateway{
		macro:     func(ctx context.Context) (models.MacroReading, error) { return models.MacroReading{DXY: "1"}, nil },
		sentiment: func(ctx context.Context) (models.SentimentReading, error) { return models.SentimentReading{Score: 1}, nil },
	}
	p := NewMarketSummary(gw, nopMetrics, nopLog, summaryOptions())
	p.Start(context.Background())
	eventually(t, func() bool { return p.View().Macro.Fresh }, "one-shot refresh did not complete")

	time.Sleep(20 * time.Millisecond)
	if n := gw.Calls("macro"); n != 1 {
		t.Fatalf("expected a single macro fetch, got %d", n)
	}
}
