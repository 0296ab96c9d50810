package engine

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/genricoloni/spotled/internal/config"
	"github.com/genricoloni/spotled/internal/domain"
	"go.uber.org/zap"
)

// Poller runs the blocking source calls off the render goroutine.
// The engine asks for a poll through a single-slot request channel and
// receives the result through a single-slot snapshot channel where the
// latest snapshot replaces an unread one.
type Poller struct {
	logger    *zap.Logger
	source    domain.PlaybackSource
	timeout   time.Duration
	backoff   *backoff.ExponentialBackOff
	requests  chan struct{}
	snapshots chan domain.Snapshot
	observers []func(domain.Snapshot)
	now       func() time.Time

	// retryAt is only touched by the Run goroutine
	retryAt time.Time
}

// NewPoller creates the poll task for the given source
func NewPoller(logger *zap.Logger, cfg *config.AppConfig, source domain.PlaybackSource) *Poller {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.Polling.MinInterval
	b.MaxInterval = cfg.Polling.MaxBackoff
	b.MaxElapsedTime = 0 // retry forever
	b.Reset()

	return &Poller{
		logger:    logger,
		source:    source,
		timeout:   cfg.Polling.Timeout,
		backoff:   b,
		requests:  make(chan struct{}, 1),
		snapshots: make(chan domain.Snapshot, 1),
		now:       time.Now,
	}
}

// Observe registers fn to be called from the poll goroutine with every snapshot.
// It must be called before Run.
func (p *Poller) Observe(fn func(domain.Snapshot)) {
	p.observers = append(p.observers, fn)
}

// Request asks for a poll, it returns false if one is already queued
func (p *Poller) Request() bool {
	select {
	case p.requests <- struct{}{}:
		return true
	default:
		return false
	}
}

// Snapshots returns the channel delivering poll results
func (p *Poller) Snapshots() <-chan domain.Snapshot {
	return p.snapshots
}

// Run serves poll requests until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Poller started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller stopped")
			return
		case <-p.requests:
		}

		if wait := p.retryAt.Sub(p.now()); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				p.logger.Info("Poller stopped during backoff")
				return
			case <-timer.C:
			}
		}

		snap := p.Poll(ctx)
		if ctx.Err() != nil {
			return
		}
		p.publish(snap)
	}
}

// Poll fetches one snapshot. Every failure is reported as NoPlayback and
// pushes the next attempt back by the current backoff delay.
func (p *Poller) Poll(ctx context.Context) domain.Snapshot {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	snap, err := p.source.FetchSnapshot(fetchCtx)
	if err == nil && snap == nil {
		err = domain.NewSourceError(domain.KindMalformedResponse, errors.New("source returned no snapshot"))
	}
	if err != nil {
		var se *domain.SourceError
		if !errors.As(err, &se) && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			err = domain.NewSourceError(domain.KindNetworkTimeout, err)
		}

		delay := p.backoff.NextBackOff()
		p.retryAt = p.now().Add(delay)
		p.logger.Warn("Playback poll failed, showing nothing playing",
			zap.String("kind", string(domain.KindOf(err))),
			zap.Duration("retryIn", delay),
			zap.Error(err))
		snap = domain.NoPlayback{At: p.now()}
	} else {
		p.backoff.Reset()
		p.retryAt = time.Time{}
	}

	for _, fn := range p.observers {
		fn(snap)
	}
	return snap
}

// publish hands snap to the engine, replacing an unread older snapshot
func (p *Poller) publish(snap domain.Snapshot) {
	select {
	case p.snapshots <- snap:
		return
	default:
	}

	select {
	case <-p.snapshots:
		p.logger.Debug("Dropping unread snapshot")
	default:
	}
	p.snapshots <- snap
}
