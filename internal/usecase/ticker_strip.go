package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StonkPulse/internal/domain/models"
	drepo "StonkPulse/internal/domain/repository"
	"StonkPulse/internal/service/gateway"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/poller"

	"golang.org/x/sync/errgroup"
)

const TaskTickers = "tickers"

// TickerOptions configures the ticker strip.
type TickerOptions struct {
	Symbols  []string
	Interval time.Duration
	// KeepStale shows the previous price marked stale instead of N/A when a fetch fails.
	KeepStale bool
}

// TickerStrip polls one price per symbol and swaps the whole roster at once.
type TickerStrip struct {
	gw      drepo.Gateway
	metrics drepo.Metrics
	log     *logger.Logger
	opts    TickerOptions
	now     func() time.Time

	mu        sync.RWMutex
	quotes    []models.Quote
	updatedAt time.Time
	handle    *poller.Handle
}

// NewTickerStrip creates the panel with every symbol in the loading state.
func NewTickerStrip(gw drepo.Gateway, metrics drepo.Metrics, log *logger.Logger, opts TickerOptions) *TickerStrip {
	quotes := make([]models.Quote, len(opts.Symbols))
	for i, s := range opts.Symbols {
		quotes[i] = models.PendingQuote(s)
	}
	return &TickerStrip{
		gw:      gw,
		metrics: metrics,
		log:     log.With("panel", TaskTickers),
		opts:    opts,
		now:     time.Now,
		quotes:  quotes,
	}
}

// Start begins polling. Calling Start on a running panel is a no-op.
func (p *TickerStrip) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle.Active() {
		return
	}
	p.handle = poller.Start(ctx, TaskTickers, p.Refresh, p.opts.Interval,
		poller.WithObserver(pollObserver(p.metrics, p.log)))
}

// Stop cancels polling. Results in flight are discarded.
func (p *TickerStrip) Stop() {
	p.mu.RLock()
	h := p.handle
	p.mu.RUnlock()
	h.Stop()
}

// Refresh fetches every symbol concurrently and applies the batch once all
// have settled. A failed symbol never aborts the others.
func (p *TickerStrip) Refresh(ctx context.Context) error {
	symbols := p.opts.Symbols
	results := make([]models.Quote, len(symbols))
	failed := make([]bool, len(symbols))

	var g errgroup.Group
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			q, err := p.gw.FetchPrice(ctx, sym)
			if err != nil {
				logFetchFailure(p.log, gateway.EndpointPrice, sym, err)
				failed[i] = true
				return nil
			}
			q.Symbol = sym
			q.State = models.StateAvailable
			results[i] = q
			return nil
		})
	}
	_ = g.Wait()

	now := p.now()
	nFailed := 0

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil {
		dropStale(p.metrics, p.log, TaskTickers, "")
		return errStopped
	}
	for i, sym := range symbols {
		if !failed[i] {
			p.metrics.RecordLastPrice(sym, results[i].Price)
			continue
		}
		nFailed++
		prev := p.quotes[i]
		if p.opts.KeepStale && (prev.State == models.StateAvailable || prev.State == models.StateStale) {
			prev.State = models.StateStale
			results[i] = prev
			continue
		}
		results[i] = models.UnavailableQuote(sym, now)
	}
	p.quotes = results
	p.updatedAt = now

	if nFailed > 0 {
		return fmt.Errorf("%d of %d price fetches failed", nFailed, len(symbols))
	}
	return nil
}

// Quotes returns a copy of the roster in configured order.
func (p *TickerStrip) Quotes() []models.Quote {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Quote, len(p.quotes))
	copy(out, p.quotes)
	return out
}

// UpdatedAt is when the last batch was applied.
func (p *TickerStrip) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}
