package usecase

import (
	"context"
	"sync"
	"time"

	"StonkPulse/internal/domain/models"
	drepo "StonkPulse/internal/domain/repository"
	"StonkPulse/internal/service/gateway"
	"StonkPulse/internal/services/features"
	"StonkPulse/pkg/logger"
)

const PanelChart = "chart"

// SelectOutcome reports how one selection ended.
type SelectOutcome struct {
	Symbol string
	State  models.ChartState
	// Stale is true when a newer selection or Stop superseded this one.
	Stale bool
}

// ChartFeed holds the series for the selected ticker. Every Select bumps a
// generation; a fetch only applies if its generation is still current.
type ChartFeed struct {
	gw        drepo.Gateway
	metrics   drepo.Metrics
	log       *logger.Logger
	rsiWindow int

	mu     sync.RWMutex
	ctx    context.Context
	gen    uint64
	view   models.ChartView
	cancel context.CancelFunc
}

func NewChartFeed(gw drepo.Gateway, metrics drepo.Metrics, log *logger.Logger, rsiWindow int) *ChartFeed {
	if rsiWindow <= 1 {
		rsiWindow = features.DefaultRSIWindow
	}
	return &ChartFeed{
		gw:        gw,
		metrics:   metrics,
		log:       log.With("panel", PanelChart),
		rsiWindow: rsiWindow,
		ctx:       context.Background(),
		view:      models.ChartView{State: models.ChartIdle},
	}
}

// Start sets the context every later fetch derives from.
func (p *ChartFeed) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = ctx
}

// Stop supersedes any in-flight fetch. The view is left as is.
func (p *ChartFeed) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Select tears down the current series and fetches symbol, even if it is the
// one already shown. The returned channel yields exactly one outcome.
func (p *ChartFeed) Select(symbol string) <-chan SelectOutcome {
	out := make(chan SelectOutcome, 1)

	p.mu.Lock()
	p.gen++
	gen := p.gen
	// the previous fetch can no longer apply; cancel it
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancel = cancel
	p.view = models.ChartView{Symbol: symbol, State: models.ChartFetching, UpdatedAt: time.Now()}
	p.mu.Unlock()

	go func() {
		defer cancel()
		out <- p.fetch(ctx, gen, symbol)
	}()
	return out
}

func (p *ChartFeed) fetch(ctx context.Context, gen uint64, symbol string) SelectOutcome {
	series, err := p.gw.FetchSeries(ctx, symbol)

	var rsi []float64
	if err == nil {
		rsi = features.RSI(series.Closes(), p.rsiWindow)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		dropStale(p.metrics, p.log, PanelChart, symbol)
		return SelectOutcome{Symbol: symbol, State: models.ChartFetching, Stale: true}
	}

	p.cancel = nil
	if err != nil {
		logFetchFailure(p.log, gateway.EndpointSeries, symbol, err)
		p.log.Warn("chart failed, nothing to render", logger.String("symbol", symbol))
		p.view = models.ChartView{Symbol: symbol, State: models.ChartFailed, UpdatedAt: time.Now()}
		return SelectOutcome{Symbol: symbol, State: models.ChartFailed}
	}

	p.view = models.ChartView{
		Symbol:    symbol,
		State:     models.ChartReady,
		Points:    series.Points,
		RSI:       rsi,
		UpdatedAt: time.Now(),
	}
	return SelectOutcome{Symbol: symbol, State: models.ChartReady}
}

// View returns a copy of the current chart state.
func (p *ChartFeed) View() models.ChartView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v := p.view
	v.Points = append([]models.Point(nil), p.view.Points...)
	v.RSI = append([]float64(nil), p.view.RSI...)
	return v
}
