package gateway

import (
	"context"

	"StonkPulse/internal/domain/models"
	"StonkPulse/internal/domain/repository"

	"golang.org/x/sync/singleflight"
)

// Shared collapses concurrent price and series calls for the same symbol
// into one upstream request. Only in-flight calls are joined; a call that
// starts after the previous one returned always hits the network again.
type Shared struct {
	repository.Gateway
	prices singleflight.Group
	series singleflight.Group
}

var _ repository.Gateway = (*Shared)(nil)

// NewShared wraps g.
func NewShared(g repository.Gateway) *Shared {
	return &Shared{Gateway: g}
}

// FetchPrice joins an in-flight call for symbol if there is one. The shared
// call is detached from the first caller's cancellation; each caller still
// returns early when its own ctx is done.
func (s *Shared) FetchPrice(ctx context.Context, symbol string) (models.Quote, error) {
	ch := s.prices.DoChan(symbol, func() (any, error) {
		return s.Gateway.FetchPrice(context.WithoutCancel(ctx), symbol)
	})
	select {
	case <-ctx.Done():
		return models.Quote{}, classify(EndpointPrice, symbol, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return models.Quote{}, r.Err
		}
		return r.Val.(models.Quote), nil
	}
}

// FetchSeries joins an in-flight call for symbol if there is one.
func (s *Shared) FetchSeries(ctx context.Context, symbol string) (models.Series, error) {
	ch := s.series.DoChan(symbol, func() (any, error) {
		return s.Gateway.FetchSeries(context.WithoutCancel(ctx), symbol)
	})
	select {
	case <-ctx.Done():
		return models.Series{}, classify(EndpointSeries, symbol, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return models.Series{}, r.Err
		}
		// callers own their points
		src := r.Val.(models.Series)
		out := models.Series{Symbol: src.Symbol, Points: make([]models.Point, len(src.Points))}
		copy(out.Points, src.Points)
		return out, nil
	}
}
