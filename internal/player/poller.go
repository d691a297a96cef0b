package player

import (
	"context"
	"time"

	"github.com/nepochemu/ytm/internal/mpv"
	"github.com/rs/zerolog"
)

// maxBackoff caps how far the interval grows while the player is down.
const maxBackoff = 16

// Source yields a snapshot and the state derived from it.
type Source interface {
	Snapshot(ctx context.Context) (*mpv.Snapshot, State)
}

// Update is one poll result.
type Update struct {
	Snapshot *mpv.Snapshot // nil when the player is unreachable
	State    State
	Err      error
}

// Poller reads snapshots at a regular interval.
type Poller struct {
	source   Source
	interval time.Duration
	logger   zerolog.Logger
}

// NewPoller creates a new Poller instance
func NewPoller(source Source, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Poller{
		source:   source,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Run polls until ctx is cancelled, sending every result to updates.
// While the player is unreachable the interval doubles up to 16 times the
// base and drops back as soon as it answers again.
func (p *Poller) Run(ctx context.Context, updates chan<- Update) error {
	p.logger.Debug().Dur("interval", p.interval).Msg("Starting poller")

	interval := p.interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	next := func(state State) {
		want := p.interval
		if state == StateNotRunning {
			want = interval * 2
			if want > p.interval*maxBackoff {
				want = p.interval * maxBackoff
			}
		}
		if want != interval {
			interval = want
			ticker.Reset(interval)
		}
	}

	next(p.poll(ctx, updates))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug().Msg("Poller stopped")
			return ctx.Err()
		case <-ticker.C:
			next(p.poll(ctx, updates))
		}
	}
}

func (p *Poller) poll(ctx context.Context, updates chan<- Update) State {
	snap, state := p.source.Snapshot(ctx)

	update := Update{Snapshot: snap, State: state}
	if state == StateNotRunning {
		update.Err = mpv.ErrEndpointUnavailable
	}

	select {
	case updates <- update:
		p.logger.Debug().Str("state", state.String()).Msg("Poll update")
	case <-ctx.Done():
	}
	return state
}
