package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"StonkPulse/internal/domain/models"
	drepo "StonkPulse/internal/domain/repository"
	"StonkPulse/internal/service/gateway"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/poller"
	"StonkPulse/pkg/util"
)

const TaskNews = "news"

// NewsOptions configures the news panel.
type NewsOptions struct {
	Interval time.Duration
	Limit    int
	Location *time.Location // for DisplayTime; nil means time.Local
}

// NewsFeed keeps the newest Limit headlines. A failed poll keeps the previous list.
type NewsFeed struct {
	gw      drepo.Gateway
	metrics drepo.Metrics
	log     *logger.Logger
	opts    NewsOptions

	mu        sync.RWMutex
	items     []models.NewsItem
	updatedAt time.Time
	handle    *poller.Handle
}

func NewNewsFeed(gw drepo.Gateway, metrics drepo.Metrics, log *logger.Logger, opts NewsOptions) *NewsFeed {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &NewsFeed{gw: gw, metrics: metrics, log: log.With("panel", TaskNews), opts: opts}
}

func (p *NewsFeed) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle.Active() {
		return
	}
	p.handle = poller.Start(ctx, TaskNews, p.Refresh, p.opts.Interval,
		poller.WithObserver(pollObserver(p.metrics, p.log)))
}

func (p *NewsFeed) Stop() {
	p.mu.RLock()
	h := p.handle
	p.mu.RUnlock()
	h.Stop()
}

// Refresh fetches the feed and replaces the list on success.
func (p *NewsFeed) Refresh(ctx context.Context) error {
	items, err := p.gw.FetchNews(ctx)
	if err != nil {
		logFetchFailure(p.log, gateway.EndpointNews, "", err)
		return err
	}
	items = p.prepare(items)

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil {
		dropStale(p.metrics, p.log, TaskNews, "")
		return errStopped
	}
	p.items = items
	p.updatedAt = time.Now()
	return nil
}

// prepare orders newest first (unknown times last), truncates and sets DisplayTime.
func (p *NewsFeed) prepare(in []models.NewsItem) []models.NewsItem {
	items := make([]models.NewsItem, len(in))
	copy(items, in)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.After(b)
	})
	if len(items) > p.opts.Limit {
		items = items[:p.opts.Limit]
	}
	for i := range items {
		items[i].DisplayTime = util.ClockHM(items[i].PublishedAt, p.opts.Location)
	}
	return items
}

// Items returns a copy of the current list.
func (p *NewsFeed) Items() []models.NewsItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.NewsItem, len(p.items))
	copy(out, p.items)
	return out
}
