package poller

import (
	"context"
	"time"

	"github.com/brizzai/fitdash/internal/fitbit"
	"github.com/brizzai/fitdash/internal/logger"
	"go.uber.org/zap"
)

// Result is the outcome of one poll. Exactly one of Bundle and Err is set.
type Result struct {
	Bundle    *fitbit.Bundle
	Err       error
	FetchedAt time.Time
}

// Sink receives every poll result
type Sink func(Result)

// TokenFunc returns the access token to poll with
type TokenFunc func() (string, bool)

// Poller fetches the dashboard data on a fixed interval until its context ends
type Poller struct {
	fetcher  fitbit.Fetcher
	token    TokenFunc
	interval time.Duration
	now      func() time.Time
	refresh  chan struct{}
}

type Option func(*Poller)

// WithClock replaces time.Now, used to compute today's date
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

func New(fetcher fitbit.Fetcher, token TokenFunc, interval time.Duration, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		token:    token,
		interval: interval,
		now:      time.Now,
		refresh:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh requests an immediate poll. Requests made while one is already
// pending are merged.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run polls immediately and then on every tick, handing each result to sink.
// Fetch errors are delivered and polling continues. Run returns when ctx is done.
func (p *Poller) Run(ctx context.Context, sink Sink) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logger.Debug("Poller started", zap.Duration("interval", p.interval))
	defer logger.Debug("Poller stopped")

	for {
		p.poll(ctx, sink)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.refresh:
			ticker.Reset(p.interval)
		}
	}
}

func (p *Poller) poll(ctx context.Context, sink Sink) {
	if ctx.Err() != nil {
		return
	}

	now := p.now()
	token, ok := p.token()
	if !ok {
		return
	}

	bundle, err := p.fetcher.FetchAll(ctx, token, now)
	if ctx.Err() != nil {
		// Cancelled mid-fetch, the result belongs to a session that is gone
		return
	}
	if err != nil {
		logger.Warn("Failed to fetch dashboard data", zap.Error(err))
		sink(Result{Err: err, FetchedAt: now})
		return
	}
	sink(Result{Bundle: bundle, FetchedAt: now})
}
