package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"StonkPulse/internal/domain/models"
	"StonkPulse/internal/handler/api"
	"StonkPulse/internal/service/ratelimit"
	"StonkPulse/internal/usecase"
	"StonkPulse/pkg/config"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type downGateway struct{}

var errDown = errors.New("upstream down")

func (downGateway) FetchPrice(context.Context, string) (models.Quote, error) {
	return models.Quote{}, errDown
}
func (downGateway) FetchMacro(context.Context) (models.MacroReading, error) {
	return models.MacroReading{}, errDown
}
func (downGateway) FetchSentiment(context.Context) (models.SentimentReading, error) {
	return models.SentimentReading{}, errDown
}
func (downGateway) FetchNews(context.Context) ([]models.NewsItem, error) {
	return nil, errDown
}
func (downGateway) FetchSeries(context.Context, string) (models.Series, error) {
	return models.Series{}, errDown
}

func newTestApp(t *testing.T, port int) *App {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.Port = port
	cfg.Server.ShutdownTimeout = 2 * time.Second

	gw, m, l := downGateway{}, metrics.Nop{}, logger.Nop()
	chart := usecase.NewChartFeed(gw, m, l, cfg.Panels.RSIWindow)
	dash := usecase.NewDashboard(
		usecase.NewTickerStrip(gw, m, l, usecase.TickerOptions{Symbols: cfg.Panels.TickerSymbols, Interval: time.Hour}),
		usecase.NewMarketSummary(gw, m, l, usecase.SummaryOptions{Markets: cfg.Panels.SummaryMarkets}),
		usecase.NewNewsFeed(gw, m, l, usecase.NewsOptions{Interval: time.Hour}),
		chart,
		usecase.NewSession(chart, m, l, usecase.SessionOptions{}),
		l,
	)
	limiter := ratelimit.New(cfg.Server.SubmitBurst, cfg.Server.SubmitPerSec)
	stream := api.NewSnapshotStream(dash, cfg.Server.PushInterval, cfg.Server.CORSOrigins, l)
	handler := api.NewDashboardEchoHandler(l, dash, limiter, stream)
	return New(cfg, l, dash, handler, stream, limiter, prometheus.NewRegistry())
}

func TestRunContextStopsOnCancel(t *testing.T) {
	app := newTestApp(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunContext() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunContext did not return after cancel")
	}
}

func TestRunContextReportsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	app := newTestApp(t, ln.Addr().(*net.TCPAddr).Port)

	done := make(chan error, 1)
	go func() { done <- app.RunContext(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunContext did not report the listen failure")
	}
}
