// Package watch drives the aggregation pipeline: a poll loop that recomputes
// the snapshot on a fixed interval, and a filesystem watcher that reacts to
// Xcode's build-log writes for lower-latency status changes.
package watch

import (
	"context"
	"time"

	"github.com/Iron-Ham/xcstatus/internal/event"
	"github.com/Iron-Ham/xcstatus/internal/logging"
	"github.com/Iron-Ham/xcstatus/internal/status"
)

// PollLoop recomputes the snapshot on a fixed interval and stores it in the
// cache. Passes are strictly sequential: a slow pass delays the next tick
// rather than piling up concurrent aggregations.
type PollLoop struct {
	Aggregator *status.Aggregator
	Cache      *status.Cache
	Bus        *event.Bus
	Writer     *status.Writer
	Logger     *logging.Logger

	// Interval is the tick period.
	Interval time.Duration
}

// NewPollLoop wires a PollLoop.
func NewPollLoop(agg *status.Aggregator, cache *status.Cache, bus *event.Bus, writer *status.Writer, logger *logging.Logger, interval time.Duration) *PollLoop {
	if logger == nil {
		logger = logging.Nop()
	}
	return &PollLoop{
		Aggregator: agg,
		Cache:      cache,
		Bus:        bus,
		Writer:     writer,
		Logger:     logger.WithComponent("poller"),
		Interval:   interval,
	}
}

// Run polls until ctx is cancelled. The first pass runs immediately so the
// cache is populated before the first tick elapses.
func (p *PollLoop) Run(ctx context.Context) error {
	p.tick(ctx)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one aggregation pass and propagates the result if it changed.
func (p *PollLoop) tick(ctx context.Context) {
	snap := p.Aggregator.ComputeSnapshot(ctx)
	prev := p.Cache.Get()
	if !p.Cache.Set(snap) {
		return
	}

	p.Logger.Debug("status changed",
		"status", snap.BuildStatus,
		"project", snap.ProjectName,
		"errors", snap.ErrorCount)

	if p.Bus != nil {
		p.Bus.Publish(event.NewStatusChangedEvent(snap))
		for _, ev := range event.TransitionEvents(prev, snap) {
			p.Bus.Publish(ev)
		}
	}
	if p.Writer != nil {
		if err := p.Writer.Write(snap); err != nil {
			p.Logger.Warn("persisting status failed", "error", err)
		}
	}
}
