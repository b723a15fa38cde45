package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"StonkPulse/internal/domain/models"
	drepo "StonkPulse/internal/domain/repository"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/poller"
	"StonkPulse/pkg/util"
)

const (
	TaskLoading = "loading"

	// InitialLoadingMessage is shown until the first rotation tick.
	InitialLoadingMessage  = "Fetching data..."
	defaultLoadingInterval = 1500 * time.Millisecond
)

var (
	ErrEmptySymbol   = errors.New("symbol is empty")
	ErrUnknownSymbol = errors.New("symbol is not in the report log")
)

// SessionOptions configures the loading status rotation.
type SessionOptions struct {
	LoadingMessages []string
	LoadingInterval time.Duration
}

// Session owns the report log, the active selection and the loading flag.
// Selections drive the chart panel.
type Session struct {
	chart   *ChartFeed
	metrics drepo.Metrics
	log     *logger.Logger
	opts    SessionOptions
	now     func() time.Time

	mu      sync.RWMutex
	ctx     context.Context
	reports []models.ReportEntry
	active  string
	pending int
	message string
	rotor   *poller.Handle
}

func NewSession(chart *ChartFeed, metrics drepo.Metrics, log *logger.Logger, opts SessionOptions) *Session {
	if opts.LoadingInterval <= 0 {
		opts.LoadingInterval = defaultLoadingInterval
	}
	return &Session{
		chart:   chart,
		metrics: metrics,
		log:     log.With("panel", "session"),
		opts:    opts,
		now:     time.Now,
		ctx:     context.Background(),
	}
}

// Start sets the context the loading rotation runs under.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
}

// Stop ends the loading rotation if one is running.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotor.Stop()
	s.rotor = nil
}

// Submit normalizes raw, prepends it to the report log, makes it the active
// selection and waits for its chart fetch to settle or ctx to end.
func (s *Session) Submit(ctx context.Context, raw string) (models.ReportEntry, SelectOutcome, error) {
	sym := util.NormalizeSymbol(raw)
	if sym == "" {
		return models.ReportEntry{}, SelectOutcome{}, ErrEmptySymbol
	}

	s.beginLoading()
	defer s.endLoading()

	now := s.now()
	entry := models.ReportEntry{Symbol: sym, SubmittedAt: util.ClockHMS(now, time.Local), At: now}

	s.mu.Lock()
	s.reports = append([]models.ReportEntry{entry}, s.reports...)
	s.active = sym
	outcome := s.chart.Select(sym)
	s.mu.Unlock()

	s.log.Info("report submitted", logger.String("symbol", sym))
	o, err := wait(ctx, outcome)
	return entry, o, err
}

// SelectFromHistory re-selects a symbol already in the log without adding an entry.
func (s *Session) SelectFromHistory(ctx context.Context, raw string) (SelectOutcome, error) {
	sym := util.NormalizeSymbol(raw)
	if sym == "" {
		return SelectOutcome{}, ErrEmptySymbol
	}

	s.mu.Lock()
	if !s.hasReport(sym) {
		s.mu.Unlock()
		return SelectOutcome{}, ErrUnknownSymbol
	}
	s.mu.Unlock()

	s.beginLoading()
	defer s.endLoading()

	s.mu.Lock()
	s.active = sym
	outcome := s.chart.Select(sym)
	s.mu.Unlock()

	return wait(ctx, outcome)
}

func wait(ctx context.Context, ch <-chan SelectOutcome) (SelectOutcome, error) {
	select {
	case o := <-ch:
		return o, nil
	case <-ctx.Done():
		return SelectOutcome{}, ctx.Err()
	}
}

// caller holds s.mu
func (s *Session) hasReport(sym string) bool {
	for _, r := range s.reports {
		if r.Symbol == sym {
			return true
		}
	}
	return false
}

func (s *Session) beginLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending++
	if s.pending > 1 {
		return
	}
	s.message = InitialLoadingMessage
	msgs := s.opts.LoadingMessages
	if len(msgs) == 0 {
		return
	}

	// the poller fires at once; the initial text holds until the first interval
	next := -1
	var h *poller.Handle
	h = poller.Start(s.ctx, TaskLoading, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ctx.Err() != nil || s.rotor != h {
			return nil
		}
		if next < 0 {
			next = 0
			return nil
		}
		s.message = msgs[next%len(msgs)]
		next++
		return nil
	}, s.opts.LoadingInterval, poller.WithObserver(pollObserver(s.metrics, s.log)))
	s.rotor = h
}

func (s *Session) endLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.pending > 0 {
		return
	}
	s.pending = 0
	s.rotor.Stop()
	s.rotor = nil
	s.message = ""
}

// Reports returns the log, most recent first.
func (s *Session) Reports() []models.ReportEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ReportEntry, len(s.reports))
	copy(out, s.reports)
	return out
}

// Active is the currently selected symbol, "" before the first selection.
func (s *Session) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Loading reports whether a selection is in flight and the current status line.
func (s *Session) Loading() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0, s.message
}
