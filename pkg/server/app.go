package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StonkPulse/internal/handler/api"
	"StonkPulse/internal/service/ratelimit"
	"StonkPulse/internal/usecase"
	"StonkPulse/pkg/config"
	xhttp "StonkPulse/pkg/http"
	applogger "StonkPulse/pkg/logger"
	"StonkPulse/pkg/poller"

	"github.com/prometheus/client_golang/prometheus"
)

const sweepInterval = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	dash        *usecase.Dashboard
	httpHandler xhttp.Handler
	stream      *api.SnapshotStream
	limiter     *ratelimit.Limiter
	registry    *prometheus.Registry
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	dash *usecase.Dashboard,
	handler xhttp.Handler,
	stream *api.SnapshotStream,
	limiter *ratelimit.Limiter,
	registry *prometheus.Registry,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		dash:        dash,
		httpHandler: handler,
		stream:      stream,
		limiter:     limiter,
		registry:    registry,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the panels and the HTTP server and blocks until ctx ends
// or the server fails.
func (a *App) RunContext(ctx context.Context) error {
	a.httpServer = xhttp.NewServer(a.httpHandler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(a.cfg.Server.CORSOrigins),
		xhttp.WithMetrics(a.registry, a.cfg.Metrics.Path),
	)

	// panels stop explicitly during shutdown, after the server has drained
	panelsCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	a.dash.Start(panelsCtx)
	sweeper := poller.Start(panelsCtx, "ratelimit-sweep", func(context.Context) error {
		if n := a.limiter.Sweep(); n > 0 {
			a.log.Debug("rate limit buckets swept", applogger.Int("removed", n))
		}
		return nil
	}, sweepInterval)
	a.log.Info("panels started",
		applogger.Strings("tickers", a.cfg.Panels.TickerSymbols),
		applogger.Duration("ticker_interval", a.cfg.Panels.TickerInterval),
		applogger.Duration("summary_interval", a.cfg.Panels.SummaryInterval),
		applogger.Duration("news_interval", a.cfg.Panels.NewsInterval),
	)

	errc := a.httpServer.Start()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-errc:
		if err != nil {
			runErr = err
		}
	}

	a.shutdown(sweeper)
	return runErr
}

// shutdown gracefully stops all services.
func (a *App) shutdown(sweeper *poller.Handle) {
	a.log.Info("shutting down...")

	a.stream.Close()
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	sweeper.Stop()
	a.dash.Stop()

	a.log.Info("shutdown complete")
}
