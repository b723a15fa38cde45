package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StonkPulse/internal/domain/models"
	drepo "StonkPulse/internal/domain/repository"
	"StonkPulse/internal/service/gateway"
	"StonkPulse/pkg/config"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/poller"

	"golang.org/x/sync/errgroup"
)

const TaskSummary = "summary"

// SummaryOptions configures the market summary panel.
type SummaryOptions struct {
	Markets []config.MarketSpec
	Static  []config.StaticSpec
	// Interval <= 0 refreshes once on Start.
	Interval time.Duration
}

// MarketSummary runs three independent groups per refresh: index prices,
// the macro snapshot and the sentiment index. Each group applies as soon as
// it settles.
type MarketSummary struct {
	gw      drepo.Gateway
	metrics drepo.Metrics
	log     *logger.Logger
	opts    SummaryOptions
	now     func() time.Time

	mu      sync.RWMutex
	markets []models.Quote // parallel to opts.Markets
	macro   models.MacroSnapshot
	round   uint64
	macroOK *bool
	sentOK  *bool
	handle  *poller.Handle
}

// NewMarketSummary creates the panel in the loading state.
func NewMarketSummary(gw drepo.Gateway, metrics drepo.Metrics, log *logger.Logger, opts SummaryOptions) *MarketSummary {
	markets := make([]models.Quote, len(opts.Markets))
	for i, m := range opts.Markets {
		markets[i] = models.PendingQuote(m.Symbol)
	}
	return &MarketSummary{
		gw:      gw,
		metrics: metrics,
		log:     log.With("panel", TaskSummary),
		opts:    opts,
		now:     time.Now,
		markets: markets,
		macro:   models.PendingMacro(),
	}
}

func (p *MarketSummary) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle.Active() {
		return
	}
	p.handle = poller.Start(ctx, TaskSummary, p.Refresh, p.opts.Interval,
		poller.WithObserver(pollObserver(p.metrics, p.log)))
}

func (p *MarketSummary) Stop() {
	p.mu.RLock()
	h := p.handle
	p.mu.RUnlock()
	h.Stop()
}

// Refresh runs one round of all three groups and waits for them.
func (p *MarketSummary) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.round++
	round := p.round
	p.macroOK, p.sentOK = nil, nil
	p.macro.Fresh = false
	p.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, 3)
	wg.Add(3)
	go func() { defer wg.Done(); errs[0] = p.refreshMarkets(ctx) }()
	go func() { defer wg.Done(); errs[1] = p.refreshMacro(ctx, round) }()
	go func() { defer wg.Done(); errs[2] = p.refreshSentiment(ctx, round) }()
	wg.Wait()

	return errors.Join(errs...)
}

func (p *MarketSummary) refreshMarkets(ctx context.Context) error {
	results := make([]models.Quote, len(p.opts.Markets))
	var g errgroup.Group
	for i, m := range p.opts.Markets {
		i, m := i, m
		g.Go(func() error {
			q, err := p.gw.FetchPrice(ctx, m.Symbol)
			if err != nil {
				logFetchFailure(p.log, gateway.EndpointPrice, m.Symbol, err)
				results[i] = models.UnavailableQuote(m.Symbol, p.now())
				return nil
			}
			q.Symbol = m.Symbol
			q.State = models.StateAvailable
			results[i] = q
			return nil
		})
	}
	_ = g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil {
		dropStale(p.metrics, p.log, TaskSummary, "")
		return errStopped
	}
	nFailed := 0
	for i, q := range results {
		if q.State == models.StateUnavailable {
			nFailed++
			continue
		}
		p.metrics.RecordLastPrice(p.opts.Markets[i].Symbol, q.Price)
	}
	p.markets = results
	if nFailed > 0 {
		return fmt.Errorf("%d of %d index fetches failed", nFailed, len(results))
	}
	return nil
}

func (p *MarketSummary) refreshMacro(ctx context.Context, round uint64) error {
	r, err := p.gw.FetchMacro(ctx)
	if err != nil {
		logFetchFailure(p.log, gateway.EndpointMacro, "", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || round != p.round {
		dropStale(p.metrics, p.log, TaskSummary, "")
		return errStopped
	}
	if err != nil {
		na := models.Field{State: models.StateUnavailable}
		p.macro.DXY, p.macro.TenYearYield, p.macro.Inflation, p.macro.FedRate = na, na, na, na
	} else {
		p.macro.DXY = macroField(r.DXY)
		p.macro.TenYearYield = macroField(r.TenYearYield)
		p.macro.Inflation = macroField(r.Inflation)
		p.macro.FedRate = macroField(r.FedRate)
	}
	ok := err == nil
	p.macroOK = &ok
	p.settleRound()
	return err
}

func (p *MarketSummary) refreshSentiment(ctx context.Context, round uint64) error {
	r, err := p.gw.FetchSentiment(ctx)
	if err != nil {
		logFetchFailure(p.log, gateway.EndpointSentiment, "", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || round != p.round {
		dropStale(p.metrics, p.log, TaskSummary, "")
		return errStopped
	}
	if err != nil {
		p.macro.FearGreed = models.Sentiment{State: models.StateUnavailable, Label: "?"}
	} else {
		p.macro.FearGreed = models.NewSentiment(r.Score)
		p.metrics.RecordFearGreed(r.Score)
	}
	ok := err == nil
	p.sentOK = &ok
	p.settleRound()
	return err
}

// settleRound marks the snapshot fresh once both macro and sentiment of the
// current round have succeeded. Caller holds p.mu.
func (p *MarketSummary) settleRound() {
	if p.macroOK == nil || p.sentOK == nil {
		return
	}
	p.macro.Fresh = *p.macroOK && *p.sentOK
	p.macro.UpdatedAt = p.now()
}

func macroField(v string) models.Field {
	if v == "" {
		return models.Field{State: models.StateUnavailable}
	}
	return models.Field{Value: v, State: models.StateAvailable}
}

// View returns the priced lines, then the static lines, then the macro snapshot.
func (p *MarketSummary) View() models.SummaryView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	lines := make([]models.MarketLine, 0, len(p.opts.Markets)+len(p.opts.Static))
	for i, m := range p.opts.Markets {
		q := p.markets[i]
		lines = append(lines, models.MarketLine{Key: m.Key, Label: m.Label, Quote: &q, Text: q.Display()})
	}
	for _, s := range p.opts.Static {
		lines = append(lines, models.MarketLine{Key: s.Key, Label: s.Label, Text: s.Text})
	}
	return models.SummaryView{Markets: lines, Macro: p.macro}
}
