package tracker

import (
	"fmt"
	"time"
)

// Mode selects how a running session ends.
type Mode int

const (
	ModeStopwatch Mode = iota
	ModeCountdown
)

func (m Mode) String() string {
	switch m {
	case ModeStopwatch:
		return "stopwatch"
	case ModeCountdown:
		return "countdown"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Session is the running stopwatch or countdown. It is never persisted.
type Session struct {
	ID        string
	Category  string
	Mode      Mode
	StartedAt time.Time
	EndsAt    time.Time // countdown only
	Duration  int64     // countdown length in seconds
	LastTick  time.Time
	Carry     time.Duration // sub-second remainder not yet credited
	Credited  int64
}

// EffectKind identifies what the controller must do with an Effect.
type EffectKind int

const (
	// EffectCredit adds Seconds to Category.
	EffectCredit EffectKind = iota
	// EffectCompleted signals that a countdown of Seconds on Category ran out.
	EffectCompleted
)

// Effect is a side effect produced by a session transition.
type Effect struct {
	Kind     EffectKind
	Category string
	Seconds  int64
}

// SessionState holds at most one running session. The zero value is Idle.
// Every transition returns a new state and leaves the receiver untouched.
type SessionState struct {
	Active *Session
}

// Idle reports whether no session is running.
func (s SessionState) Idle() bool {
	return s.Active == nil
}

// StartStopwatch stops any running session, crediting its time, and starts
// a stopwatch on category.
func (s SessionState) StartStopwatch(id, category string, now time.Time) (SessionState, []Effect) {
	_, effects := s.Stop(now)
	return SessionState{Active: &Session{
		ID:        id,
		Category:  category,
		Mode:      ModeStopwatch,
		StartedAt: now,
		LastTick:  now,
	}}, effects
}

// StartCountdown stops any running session, crediting its time, and starts
// a countdown of seconds on category.
func (s SessionState) StartCountdown(id, category string, seconds int64, now time.Time) (SessionState, []Effect, error) {
	if seconds <= 0 {
		return s, nil, fmt.Errorf("%w: %d seconds", ErrInvalidDuration, seconds)
	}
	_, effects := s.Stop(now)
	return SessionState{Active: &Session{
		ID:        id,
		Category:  category,
		Mode:      ModeCountdown,
		StartedAt: now,
		EndsAt:    now.Add(time.Duration(seconds) * time.Second),
		Duration:  seconds,
		LastTick:  now,
	}}, effects, nil
}

// Tick credits the whole seconds elapsed since the previous tick and
// carries the remainder. A countdown whose deadline has passed credits
// exactly its remaining duration, goes Idle and emits EffectCompleted.
func (s SessionState) Tick(now time.Time) (SessionState, []Effect) {
	if s.Active == nil {
		return s, nil
	}
	sess := *s.Active

	var whole int64
	if now.Before(sess.LastTick) {
		// clock went backwards: restart measurement from here
		sess.Carry = 0
	} else {
		total := now.Sub(sess.LastTick) + sess.Carry
		whole = int64(total / time.Second)
		sess.Carry = total - time.Duration(whole)*time.Second
	}
	sess.LastTick = now

	completed := false
	if sess.Mode == ModeCountdown {
		left := sess.Duration - sess.Credited
		if !now.Before(sess.EndsAt) {
			whole = left
			completed = true
		} else if whole > left {
			whole = left
		}
	}

	var effects []Effect
	if whole > 0 {
		sess.Credited += whole
		effects = append(effects, Effect{Kind: EffectCredit, Category: sess.Category, Seconds: whole})
	}
	if completed {
		effects = append(effects, Effect{Kind: EffectCompleted, Category: sess.Category, Seconds: sess.Duration})
		return SessionState{}, effects
	}
	return SessionState{Active: &sess}, effects
}

// Stop ticks up to now and ends the session. A countdown that is already
// past its deadline completes normally; otherwise no completion is emitted.
func (s SessionState) Stop(now time.Time) (SessionState, []Effect) {
	_, effects := s.Tick(now)
	return SessionState{}, effects
}

// Retarget points a running session at a renamed category.
func (s SessionState) Retarget(oldName, newName string) SessionState {
	if s.Active == nil || s.Active.Category != oldName {
		return s
	}
	sess := *s.Active
	sess.Category = newName
	return SessionState{Active: &sess}
}

// Targets reports whether the running session tracks category.
func (s SessionState) Targets(category string) bool {
	return s.Active != nil && s.Active.Category == category
}

// Remaining returns the whole seconds left on a countdown, rounded up and
// never negative. It is zero for stopwatches and when Idle.
func (s SessionState) Remaining(now time.Time) int64 {
	if s.Active == nil || s.Active.Mode != ModeCountdown {
		return 0
	}
	left := s.Active.EndsAt.Sub(now)
	if left <= 0 {
		return 0
	}
	secs := int64((left + time.Second - 1) / time.Second)
	if secs > s.Active.Duration {
		return s.Active.Duration
	}
	return secs
}

// Elapsed returns the seconds credited so far plus whole seconds pending
// since the last tick.
func (s SessionState) Elapsed(now time.Time) int64 {
	if s.Active == nil {
		return 0
	}
	elapsed := s.Active.Credited
	if now.After(s.Active.LastTick) {
		elapsed += int64((now.Sub(s.Active.LastTick) + s.Active.Carry) / time.Second)
	}
	if s.Active.Mode == ModeCountdown && elapsed > s.Active.Duration {
		elapsed = s.Active.Duration
	}
	return elapsed
}
