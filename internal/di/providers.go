package di

import (
	"StonkPulse/internal/domain/repository"
	"StonkPulse/internal/handler/api"
	"StonkPulse/internal/service/gateway"
	"StonkPulse/internal/service/ratelimit"
	"StonkPulse/internal/usecase"
	"StonkPulse/pkg/config"
	pkghttp "StonkPulse/pkg/http"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/metrics"
	"StonkPulse/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideRegistry creates the Prometheus registry served at the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideHTTPClient creates the outbound client used by the gateway.
func ProvideHTTPClient(cfg *config.Config) *pkghttp.Client {
	return pkghttp.NewClient(
		pkghttp.WithTimeout(cfg.Upstream.Timeout),
		pkghttp.WithUserAgent(cfg.Upstream.UserAgent),
	)
}

// ProvideGateway creates the fetch gateway, throttled and deduplicated per symbol.
func ProvideGateway(cfg *config.Config, hc *pkghttp.Client, m repository.Metrics, l *logger.Logger) repository.Gateway {
	opts := []gateway.Option{
		gateway.WithMetrics(m),
		gateway.WithLogger(l.With("component", "gateway")),
		gateway.WithNews(cfg.Upstream.NewsMode, cfg.Upstream.NewsRelayURL, cfg.Upstream.NewsFeedURL),
	}
	if cfg.Upstream.RateLimitRPS > 0 {
		burst := cfg.Upstream.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, gateway.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Upstream.RateLimitRPS), burst)))
	}
	return gateway.NewShared(gateway.New(cfg.Upstream.BaseURL, hc, opts...))
}

// ProvideTickerStrip creates the ticker strip panel.
func ProvideTickerStrip(cfg *config.Config, gw repository.Gateway, m repository.Metrics, l *logger.Logger) *usecase.TickerStrip {
	return usecase.NewTickerStrip(gw, m, l, usecase.TickerOptions{
		Symbols:   cfg.Panels.TickerSymbols,
		Interval:  cfg.Panels.TickerInterval,
		KeepStale: cfg.Panels.TickerOnFailure == "stale",
	})
}

// ProvideMarketSummary creates the market/macro/sentiment panel.
func ProvideMarketSummary(cfg *config.Config, gw repository.Gateway, m repository.Metrics, l *logger.Logger) *usecase.MarketSummary {
	return usecase.NewMarketSummary(gw, m, l, usecase.SummaryOptions{
		Markets:  cfg.Panels.SummaryMarkets,
		Static:   cfg.Panels.SummaryStatic,
		Interval: cfg.Panels.SummaryInterval,
	})
}

// ProvideNewsFeed creates the news panel.
func ProvideNewsFeed(cfg *config.Config, gw repository.Gateway, m repository.Metrics, l *logger.Logger) *usecase.NewsFeed {
	return usecase.NewNewsFeed(gw, m, l, usecase.NewsOptions{
		Interval: cfg.Panels.NewsInterval,
		Limit:    cfg.Panels.NewsLimit,
	})
}

// ProvideChartFeed creates the selected-ticker chart panel.
func ProvideChartFeed(cfg *config.Config, gw repository.Gateway, m repository.Metrics, l *logger.Logger) *usecase.ChartFeed {
	return usecase.NewChartFeed(gw, m, l, cfg.Panels.RSIWindow)
}

// ProvideSession creates the report log coordinator.
func ProvideSession(cfg *config.Config, chart *usecase.ChartFeed, m repository.Metrics, l *logger.Logger) *usecase.Session {
	return usecase.NewSession(chart, m, l, usecase.SessionOptions{
		LoadingMessages: cfg.Panels.LoadingMessages,
		LoadingInterval: cfg.Panels.LoadingInterval,
	})
}

// ProvideLimiter creates the per-client limiter for selection calls.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.SubmitBurst, cfg.Server.SubmitPerSec)
}

// ProvideSnapshotStream creates the websocket snapshot pusher.
func ProvideSnapshotStream(cfg *config.Config, dash *usecase.Dashboard, l *logger.Logger) *api.SnapshotStream {
	return api.NewSnapshotStream(dash, cfg.Server.PushInterval, cfg.Server.CORSOrigins, l.With("component", "ws"))
}

// ProvideHandler creates the echo route handler.
func ProvideHandler(l *logger.Logger, dash *usecase.Dashboard, limiter *ratelimit.Limiter, stream *api.SnapshotStream) pkghttp.Handler {
	return api.NewDashboardEchoHandler(l, dash, limiter, stream)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	dash *usecase.Dashboard,
	handler pkghttp.Handler,
	stream *api.SnapshotStream,
	limiter *ratelimit.Limiter,
	reg *prometheus.Registry,
) *server.App {
	return server.New(cfg, l, dash, handler, stream, limiter, reg)
}
