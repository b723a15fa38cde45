package usecase

import (
	"context"
	"time"

	"StonkPulse/internal/domain/models"
	"StonkPulse/pkg/logger"
)

// Dashboard composes the panels and the session. Each panel keeps its own
// state; Dashboard only reads them.
type Dashboard struct {
	Tickers *TickerStrip
	Summary *MarketSummary
	News    *NewsFeed
	Chart   *ChartFeed
	Session *Session
	log     *logger.Logger
}

func NewDashboard(t *TickerStrip, s *MarketSummary, n *NewsFeed, c *ChartFeed, sess *Session, log *logger.Logger) *Dashboard {
	return &Dashboard{Tickers: t, Summary: s, News: n, Chart: c, Session: sess, log: log}
}

// Start launches every panel under ctx.
func (d *Dashboard) Start(ctx context.Context) {
	d.Chart.Start(ctx)
	d.Session.Start(ctx)
	d.Tickers.Start(ctx)
	d.Summary.Start(ctx)
	d.News.Start(ctx)
	d.log.Info("dashboard panels started")
}

// Stop halts all polling. In-flight results are discarded.
func (d *Dashboard) Stop() {
	d.Tickers.Stop()
	d.Summary.Stop()
	d.News.Stop()
	d.Chart.Stop()
	d.Session.Stop()
	d.log.Info("dashboard panels stopped")
}

// Snapshot returns an immutable copy of everything the display renders.
func (d *Dashboard) Snapshot() models.Dashboard {
	loading, msg := d.Session.Loading()
	return models.Dashboard{
		Tickers:        d.Tickers.Quotes(),
		Summary:        d.Summary.View(),
		News:           d.News.Items(),
		Chart:          d.Chart.View(),
		Reports:        d.Session.Reports(),
		Active:         d.Session.Active(),
		Loading:        loading,
		LoadingMessage: msg,
		GeneratedAt:    time.Now(),
	}
}
