package engine

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler runs callbacks periodically on a clockwork clock.
type Scheduler struct {
	clock clockwork.Clock
}

func NewScheduler(clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock}
}

// Schedule calls fn every period until the returned cancel func is called.
// Callbacks never overlap. Ticks missed while fn runs are dropped.
func (s *Scheduler) Schedule(fn func(), period time.Duration) (cancel func()) {
	ticker := s.clock.NewTicker(period)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
