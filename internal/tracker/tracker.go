package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Persister stores the current day and rolls finished days into history.
type Persister interface {
	SaveDay(day DayData) error
	// Rollover archives day and returns the fresh day for now. The returned
	// day is usable even when err is non-nil.
	Rollover(day DayData, now time.Time) (fresh DayData, archived bool, err error)
	History() []DayData
	ReplaceHistory(days []DayData) error
}

// Signaler delivers countdown notifications. Implementations are best
// effort and must not block for long.
type Signaler interface {
	CountdownCompleted(category string, seconds int64)
	CountdownRemaining(category string, seconds int64)
}

// Observer receives tracking events, e.g. for metrics.
type Observer interface {
	Credited(category string, seconds int64)
	SessionChanged(active bool)
	DayArchived(day DayData)
}

// Options configures a Tracker. Zero values select defaults.
type Options struct {
	Clock        clockwork.Clock
	Location     *time.Location
	NotifyBefore []time.Duration
	Observer     Observer
	Logger       *slog.Logger
	NewID        func() string
}

// ActiveStatus describes the running session.
type ActiveStatus struct {
	ID        string     `json:"id"`
	Category  string     `json:"category"`
	Mode      string     `json:"mode"`
	StartedAt time.Time  `json:"startedAt"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	Elapsed   int64      `json:"elapsed"`
	Remaining int64      `json:"remaining,omitempty"`
}

// Status is a point-in-time view of the tracker.
type Status struct {
	Date       string                  `json:"date"`
	Categories map[string]CategoryData `json:"categories"`
	Active     *ActiveStatus           `json:"active,omitempty"`
}

type signalKind int

const (
	signalCompleted signalKind = iota
	signalRemaining
)

type signal struct {
	kind     signalKind
	category string
	seconds  int64
}

// Tracker owns the category store, the day key and the single active
// session. All methods are safe for concurrent use; calls are serialized.
type Tracker struct {
	mu         sync.Mutex
	categories *Categories
	date       string
	session    SessionState

	persist  Persister
	signaler Signaler
	observer Observer
	clock    clockwork.Clock
	loc      *time.Location
	log      *slog.Logger
	newID    func() string

	notifyBefore []time.Duration
	warned       map[time.Duration]bool
}

// New creates a tracker resuming day. The day is expected to be current;
// a stale day is rolled over on the first Tick.
func New(day DayData, persist Persister, signaler Signaler, opts Options) *Tracker {
	t := &Tracker{
		categories:   NewCategories(day),
		date:         day.Date,
		persist:      persist,
		signaler:     signaler,
		observer:     opts.Observer,
		clock:        opts.Clock,
		loc:          opts.Location,
		log:          opts.Logger,
		newID:        opts.NewID,
		notifyBefore: opts.NotifyBefore,
		warned:       make(map[time.Duration]bool),
	}
	if t.clock == nil {
		t.clock = clockwork.NewRealClock()
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	if t.newID == nil {
		t.newID = uuid.NewString
	}
	if t.observer == nil {
		t.observer = nopObserver{}
	}
	if t.date == "" {
		t.date = DayKey(t.clock.Now(), t.loc)
	}
	return t
}

// AddCategory creates a category with zero time.
func (t *Tracker) AddCategory(name, color string) error {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	pending, _ = t.catchUpLocked(t.clock.Now())
	if err := t.categories.Add(name, color); err != nil {
		return err
	}
	t.log.Info("category added", "category", name)
	return t.save()
}

// RenameCategory renames a category and repoints the running session.
func (t *Tracker) RenameCategory(oldName, newName, color string) error {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	pending, _ = t.catchUpLocked(t.clock.Now())
	if err := t.categories.Rename(oldName, newName, color); err != nil {
		return err
	}
	t.session = t.session.Retarget(oldName, newName)
	t.log.Info("category renamed", "from", oldName, "to", newName)
	return t.save()
}

// RemoveCategory deletes a category, ending the session that tracks it.
func (t *Tracker) RemoveCategory(name string) error {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	pending, _ = t.catchUpLocked(now)
	if !t.categories.Has(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if t.session.Targets(name) {
		pending = append(pending, t.stopLocked(now)...)
	}
	if err := t.categories.Remove(name); err != nil {
		return err
	}
	t.log.Info("category removed", "category", name)
	return t.save()
}

// StartCategory starts a stopwatch on name, stopping any running session.
func (t *Tracker) StartCategory(name string) error {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	pending, _ = t.catchUpLocked(now)
	if !t.categories.Has(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	state, effects := t.session.StartStopwatch(t.newID(), name, now)
	pending = append(pending, t.apply(effects)...)
	t.begin(state)
	t.log.Info("stopwatch started", "category", name, "session", state.Active.ID)
	return t.save()
}

// StartTimer starts a countdown of seconds on name, stopping any running
// session.
func (t *Tracker) StartTimer(name string, seconds int64) error {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	pending, _ = t.catchUpLocked(now)
	if !t.categories.Has(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	state, effects, err := t.session.StartCountdown(t.newID(), name, seconds, now)
	if err != nil {
		return err
	}
	pending = append(pending, t.apply(effects)...)
	t.begin(state)
	t.log.Info("countdown started", "category", name, "seconds", seconds, "session", state.Active.ID)
	return t.save()
}

// Stop ends the running session, crediting its elapsed time. Stopping when
// idle is a no-op.
func (t *Tracker) Stop() error {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	pending, changed := t.catchUpLocked(now)
	if t.session.Idle() {
		if changed {
			return t.save()
		}
		return nil
	}
	pending = append(pending, t.stopLocked(now)...)
	return t.save()
}

// Tick credits elapsed time to the running session's category and rolls
// the day over when the local date has changed.
func (t *Tracker) Tick() {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	pending, err = t.tickLocked(t.clock.Now())
	if err != nil {
		t.log.Error("failed to persist tick", "error", err)
	}
}

// Snapshot ticks the running session and returns the current day and the
// history as one consistent copy.
func (t *Tracker) Snapshot() (DayData, []DayData, error) {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	pending, err = t.tickLocked(t.clock.Now())
	return t.categories.Snapshot(t.date), t.persist.History(), err
}

// tickLocked catches up with the calendar, credits elapsed time and saves
// when anything changed.
func (t *Tracker) tickLocked(now time.Time) ([]signal, error) {
	pending, changed := t.catchUpLocked(now)
	before := t.categories.Snapshot(t.date).TotalTime()
	pending = append(pending, t.advance(now)...)
	if t.categories.Snapshot(t.date).TotalTime() != before {
		changed = true
	}
	if !changed {
		return pending, nil
	}
	return pending, t.save()
}

// catchUpLocked rolls the day over until t.date is now's date. A running
// session is ticked up to each midnight it crossed, so every finished day
// is archived with only its own time. Day keys sort chronologically; when
// the clock went backwards the day rolls over without a split.
func (t *Tracker) catchUpLocked(now time.Time) (pending []signal, changed bool) {
	for {
		today := DayKey(now, t.loc)
		if today == t.date {
			return pending, changed
		}
		changed = true
		if today < t.date || t.session.Idle() {
			t.rollover(now)
			return pending, changed
		}
		midnight, ok := dayEnd(t.date, t.loc)
		if !ok || !midnight.Before(now) {
			t.rollover(now)
			return pending, changed
		}
		pending = append(pending, t.advance(midnight)...)
		t.rollover(midnight)
	}
}

// dayEnd returns the first midnight after the day keyed date.
func dayEnd(date string, loc *time.Location) (time.Time, bool) {
	start, err := time.ParseInLocation(DayKeyLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc), true
}

// Replace overwrites the current day and, when replaceHistory is set, the
// history. Any running session is stopped first. A current day from an
// earlier date is rolled over immediately.
func (t *Tracker) Replace(current *DayData, history []DayData, replaceHistory bool) error {
	var pending []signal
	defer func() { t.dispatch(pending) }()

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	pending, _ = t.catchUpLocked(now)
	if !t.session.Idle() {
		pending = append(pending, t.stopLocked(now)...)
	}
	if replaceHistory {
		if err := t.persist.ReplaceHistory(history); err != nil {
			return err
		}
	}
	if current != nil {
		t.categories = NewCategories(*current)
		t.date = current.Date
	}
	if DayKey(now, t.loc) != t.date {
		t.rollover(now)
	}
	t.log.Info("data replaced", "current_day", current != nil, "history", replaceHistory)
	return t.save()
}

// Status returns the current day and the running session.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	st := Status{
		Date:       t.date,
		Categories: t.categories.Snapshot(t.date).Categories,
	}
	if sess := t.session.Active; sess != nil {
		active := &ActiveStatus{
			ID:        sess.ID,
			Category:  sess.Category,
			Mode:      sess.Mode.String(),
			StartedAt: sess.StartedAt,
			Elapsed:   t.session.Elapsed(now),
			Remaining: t.session.Remaining(now),
		}
		if sess.Mode == ModeCountdown {
			ends := sess.EndsAt
			active.EndsAt = &ends
		}
		st.Active = active
	}
	return st
}

// Today returns a copy of the current day.
func (t *Tracker) Today() DayData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.categories.Snapshot(t.date)
}

// History returns the archived days, oldest first.
func (t *Tracker) History() []DayData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.persist.History()
}

func (t *Tracker) begin(state SessionState) {
	t.session = state
	t.warned = make(map[time.Duration]bool)
	t.observer.SessionChanged(true)
}

func (t *Tracker) stopLocked(now time.Time) []signal {
	id := ""
	if t.session.Active != nil {
		id = t.session.Active.ID
	}
	state, effects := t.session.Stop(now)
	t.session = state
	t.observer.SessionChanged(false)
	t.log.Info("session stopped", "session", id)
	return t.apply(effects)
}

// advance ticks the session to now and queues heads-up warnings.
func (t *Tracker) advance(now time.Time) []signal {
	wasActive := !t.session.Idle()
	state, effects := t.session.Tick(now)
	t.session = state
	pending := t.apply(effects)
	if wasActive && t.session.Idle() {
		t.observer.SessionChanged(false)
	}

	sess := t.session.Active
	if sess == nil || sess.Mode != ModeCountdown {
		return pending
	}
	remaining := t.session.Remaining(now)
	for _, before := range t.notifyBefore {
		secs := int64(before / time.Second)
		if secs <= 0 || secs >= sess.Duration || t.warned[before] {
			continue
		}
		if remaining > 0 && remaining <= secs {
			t.warned[before] = true
			pending = append(pending, signal{kind: signalRemaining, category: sess.Category, seconds: remaining})
		}
	}
	return pending
}

func (t *Tracker) apply(effects []Effect) []signal {
	var pending []signal
	for _, e := range effects {
		switch e.Kind {
		case EffectCredit:
			if !t.categories.Tick(e.Category, e.Seconds) {
				t.log.Debug("dropped credit for missing category", "category", e.Category, "seconds", e.Seconds)
				continue
			}
			t.observer.Credited(e.Category, e.Seconds)
		case EffectCompleted:
			t.log.Info("countdown completed", "category", e.Category, "seconds", e.Seconds)
			pending = append(pending, signal{kind: signalCompleted, category: e.Category, seconds: e.Seconds})
		}
	}
	return pending
}

func (t *Tracker) rollover(now time.Time) {
	finished := t.categories.Snapshot(t.date)
	fresh, archived, err := t.persist.Rollover(finished, now)
	if err != nil {
		t.log.Error("day rollover could not be persisted", "date", finished.Date, "error", err)
	}
	if archived {
		t.observer.DayArchived(finished)
	}
	t.log.Info("day rolled over", "from", finished.Date, "to", fresh.Date, "archived", archived)
	t.categories = NewCategories(fresh)
	t.date = fresh.Date

	// a session running across midnight keeps its category
	if sess := t.session.Active; sess != nil && !t.categories.Has(sess.Category) {
		if data, ok := finished.Categories[sess.Category]; ok {
			t.categories.items[sess.Category] = CategoryData{Color: data.Color}
		}
	}
}

func (t *Tracker) save() error {
	if err := t.persist.SaveDay(t.categories.Snapshot(t.date)); err != nil {
		if errors.Is(err, ErrStorageUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (t *Tracker) dispatch(pending []signal) {
	if t.signaler == nil {
		return
	}
	for _, s := range pending {
		switch s.kind {
		case signalCompleted:
			t.signaler.CountdownCompleted(s.category, s.seconds)
		case signalRemaining:
			t.signaler.CountdownRemaining(s.category, s.seconds)
		}
	}
}

type nopObserver struct{}

func (nopObserver) Credited(string, int64) {}
func (nopObserver) SessionChanged(bool)    {}
func (nopObserver) DayArchived(DayData)    {}
