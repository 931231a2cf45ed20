package engine

import (
	"context"
	"log/slog"
	"time"
)

// Ticker is the part of the tracker the engine drives.
type Ticker interface {
	Tick()
}

// Engine ticks the tracker periodically and on demand.
type Engine struct {
	target    Ticker
	scheduler *Scheduler
	interval  time.Duration
	nudge     chan struct{}
	log       *slog.Logger
}

// NewEngine creates an engine ticking target every interval.
func NewEngine(target Ticker, scheduler *Scheduler, interval time.Duration, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		target:    target,
		scheduler: scheduler,
		interval:  interval,
		nudge:     make(chan struct{}, 1),
		log:       logger,
	}
}

// Run ticks until ctx is done, then ticks once more to flush elapsed time.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("tracker engine started", "interval", e.interval)

	// Run immediately on start
	e.target.Tick()

	cancel := e.scheduler.Schedule(e.target.Tick, e.interval)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			e.target.Tick()
			e.log.Info("tracker engine shutting down")
			return nil
		case <-e.nudge:
			e.target.Tick()
		}
	}
}

// Nudge requests an immediate tick, e.g. after resume from suspend.
// Requests made while one is pending are coalesced.
func (e *Engine) Nudge() {
	select {
	case e.nudge <- struct{}{}:
	default:
	}
}
