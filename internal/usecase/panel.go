package usecase

import (
	"context"
	"errors"
	"time"

	drepo "StonkPulse/internal/domain/repository"
	"StonkPulse/internal/service/gateway"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/poller"
)

// errStopped is returned by a panel task whose result arrived after Stop.
var errStopped = errors.New("panel stopped")

// pollObserver records every poll run and logs failures at debug; individual
// fetch failures are already logged by the panel at warn.
func pollObserver(m drepo.Metrics, log *logger.Logger) poller.Observer {
	return func(name string, took time.Duration, err error) {
		m.RecordPoll(name, took.Seconds(), err != nil && !errors.Is(err, errStopped))
		if err != nil && !errors.Is(err, errStopped) && !errors.Is(err, context.Canceled) {
			log.Debug("poll finished with errors",
				logger.String("task", name),
				logger.Duration("took", took),
				logger.Error(err),
			)
		}
	}
}

// logFetchFailure is the single warn line every panel emits per failed fetch.
func logFetchFailure(log *logger.Logger, endpoint, symbol string, err error) {
	log.Warn("fetch failed",
		logger.String("endpoint", endpoint),
		logger.String("symbol", symbol),
		logger.String("kind", string(gateway.KindOf(err))),
		logger.Error(err),
	)
}

// dropStale records a result discarded because ctx is no longer current.
func dropStale(m drepo.Metrics, log *logger.Logger, panel, symbol string) {
	m.RecordStaleDrop(panel)
	log.Debug("dropped stale result",
		logger.String("panel", panel),
		logger.String("symbol", symbol),
	)
}
