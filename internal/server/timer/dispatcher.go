// Package timer drives the dashboard's periodic refresh: a dispatcher ticks
// at the configured interval and fires one timer event per tick through the
// event registry.
package timer

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rasgroup/bagcapturer/internal/logging"
	"github.com/rasgroup/bagcapturer/internal/server/events"
)

// Dispatcher fires events.EventTimer once per interval. The clock is
// injected so tests can advance time deterministically.
type Dispatcher struct {
	registry *events.Registry
	clock    clockwork.Clock
	interval time.Duration
	logger   logging.Logger
	ticks    int64
}

// NewDispatcher constructs a Dispatcher. Intervals below one millisecond are
// clamped to one second to avoid a busy loop on misconfiguration.
func NewDispatcher(registry *events.Registry, clock clockwork.Clock, interval time.Duration, logger logging.Logger) *Dispatcher {
	if interval < time.Millisecond {
		interval = time.Second
	}
	return &Dispatcher{
		registry: registry,
		clock:    clock,
		interval: interval,
		logger:   logger.With("module", "timer"),
	}
}

// Tick fires exactly one timer event and echoes back the tick counter.
func (d *Dispatcher) Tick(ctx context.Context, n int64) int64 {
	d.registry.FireEvent(ctx, events.EventTimer)
	return n
}

// Ticks returns the number of ticks dispatched so far.
func (d *Dispatcher) Ticks() int64 {
	return d.ticks
}

// Run ticks until ctx is cancelled. Every tick fires unconditionally; no
// coalescing or backpressure is applied.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info(ctx, "system timer started", "interval", d.interval.String())

	for {
		select {
		case <-ctx.Done():
			d.logger.Info(ctx, "system timer stopped", "ticks", d.ticks)
			return
		case <-ticker.Chan():
			d.ticks++
			d.Tick(ctx, d.ticks)
		}
	}
}
