package tracker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	saved    []DayData
	history  []DayData
	keep     bool
	failSave bool
}

func (p *memPersister) SaveDay(day DayData) error {
	if p.failSave {
		return errors.New("disk full")
	}
	p.saved = append(p.saved, day.Clone())
	return nil
}

func (p *memPersister) Rollover(day DayData, now time.Time) (DayData, bool, error) {
	archived := day.HasActivity()
	if archived {
		p.history = append(p.history, day.Clone())
	}
	fresh := NewDay(DayKey(now, time.UTC))
	if p.keep {
		for name, c := range day.Categories {
			fresh.Categories[name] = CategoryData{Color: c.Color}
		}
	}
	return fresh, archived, p.SaveDay(fresh)
}

func (p *memPersister) History() []DayData {
	return append([]DayData(nil), p.history...)
}

func (p *memPersister) ReplaceHistory(days []DayData) error {
	p.history = append([]DayData(nil), days...)
	return nil
}

func (p *memPersister) last() DayData {
	return p.saved[len(p.saved)-1]
}

type recordedSignal struct {
	kind     string
	category string
	seconds  int64
}

type recordingSignaler struct {
	signals []recordedSignal
	onFire  func()
}

func (r *recordingSignaler) CountdownCompleted(category string, seconds int64) {
	r.signals = append(r.signals, recordedSignal{"completed", category, seconds})
	if r.onFire != nil {
		r.onFire()
	}
}

func (r *recordingSignaler) CountdownRemaining(category string, seconds int64) {
	r.signals = append(r.signals, recordedSignal{"remaining", category, seconds})
}

type fixture struct {
	tracker  *Tracker
	clock    *clockwork.FakeClock
	persist  *memPersister
	signaler *recordingSignaler
}

func newFixture(t *testing.T, start time.Time, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		clock:    clockwork.NewFakeClockAt(start),
		persist:  &memPersister{keep: true},
		signaler: &recordingSignaler{},
	}
	ids := 0
	opts.Clock = f.clock
	opts.Location = time.UTC
	opts.NewID = func() string {
		ids++
		return fmt.Sprintf("session-%d", ids)
	}
	f.tracker = New(NewDay(DayKey(start, time.UTC)), f.persist, f.signaler, opts)
	return f
}

func (f *fixture) seconds(name string) int64 {
	return f.tracker.Today().Categories[name].Time
}

func TestTracker_StopwatchScenario(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Reading", "#3366ff"))
	require.NoError(t, f.tracker.StartCategory("Reading"))

	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Second)
		f.tracker.Tick()
	}
	require.NoError(t, f.tracker.Stop())

	assert.Equal(t, int64(5), f.seconds("Reading"))
	assert.Equal(t, int64(5), f.persist.last().Categories["Reading"].Time)
	assert.Nil(t, f.tracker.Status().Active)
	assert.Empty(t, f.signaler.signals)

	// stopping again is a no-op
	require.NoError(t, f.tracker.Stop())
}

func TestTracker_CountdownScenario(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.StartTimer("Work", 10))

	st := f.tracker.Status()
	require.NotNil(t, st.Active)
	assert.Equal(t, "countdown", st.Active.Mode)
	assert.Equal(t, "session-1", st.Active.ID)
	require.NotNil(t, st.Active.EndsAt)
	assert.Equal(t, t0.Add(10*time.Second), *st.Active.EndsAt)
	assert.Equal(t, int64(10), st.Active.Remaining)

	// the engine missed every tick until after the deadline
	f.clock.Advance(12 * time.Second)
	f.tracker.Tick()
	f.tracker.Tick()

	assert.Equal(t, int64(10), f.seconds("Work"))
	assert.Equal(t, []recordedSignal{{"completed", "Work", 10}}, f.signaler.signals)
	assert.Nil(t, f.tracker.Status().Active)
}

func TestTracker_DroppedTicksKeepSubSecondTime(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.StartCategory("Work"))

	f.clock.Advance(1500 * time.Millisecond)
	f.tracker.Tick()
	f.clock.Advance(1500 * time.Millisecond)
	f.tracker.Tick()

	assert.Equal(t, int64(3), f.seconds("Work"))
}

func TestTracker_SingleActiveSession(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("A", ""))
	require.NoError(t, f.tracker.AddCategory("B", ""))

	require.NoError(t, f.tracker.StartCategory("A"))
	f.clock.Advance(4 * time.Second)
	require.NoError(t, f.tracker.StartTimer("B", 60))
	f.clock.Advance(2 * time.Second)
	f.tracker.Tick()

	assert.Equal(t, int64(4), f.seconds("A"))
	assert.Equal(t, int64(2), f.seconds("B"))
	assert.Equal(t, "B", f.tracker.Status().Active.Category)
	assert.Empty(t, f.signaler.signals)
}

func TestTracker_StartErrors(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))

	assert.ErrorIs(t, f.tracker.StartCategory("Nope"), ErrNotFound)
	assert.ErrorIs(t, f.tracker.StartTimer("Nope", 10), ErrNotFound)
	assert.ErrorIs(t, f.tracker.StartTimer("Work", 0), ErrInvalidDuration)
	assert.Nil(t, f.tracker.Status().Active)
}

func TestTracker_RenameRepointsSession(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", "#ff0000"))
	require.NoError(t, f.tracker.StartCategory("Work"))

	f.clock.Advance(2 * time.Second)
	f.tracker.Tick()
	require.NoError(t, f.tracker.RenameCategory("Work", "Job", ""))
	f.clock.Advance(3 * time.Second)
	require.NoError(t, f.tracker.Stop())

	today := f.tracker.Today()
	assert.NotContains(t, today.Categories, "Work")
	assert.Equal(t, CategoryData{Time: 5, Color: "#ff0000"}, today.Categories["Job"])
}

func TestTracker_RemoveStopsSession(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.AddCategory("Other", ""))
	require.NoError(t, f.tracker.StartTimer("Work", 5))

	f.clock.Advance(3 * time.Second)
	require.NoError(t, f.tracker.RemoveCategory("Work"))
	assert.ErrorIs(t, f.tracker.RemoveCategory("Work"), ErrNotFound)

	assert.Nil(t, f.tracker.Status().Active)
	assert.NotContains(t, f.tracker.Today().Categories, "Work")

	// nothing fires once the category is gone
	f.clock.Advance(10 * time.Second)
	f.tracker.Tick()
	assert.Empty(t, f.signaler.signals)
	assert.Equal(t, int64(0), f.seconds("Other"))
}

func TestTracker_RemoveOtherCategoryKeepsSession(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.AddCategory("Other", ""))
	require.NoError(t, f.tracker.StartCategory("Work"))

	require.NoError(t, f.tracker.RemoveCategory("Other"))
	require.NotNil(t, f.tracker.Status().Active)
	assert.Equal(t, "Work", f.tracker.Status().Active.Category)
}

func TestTracker_MidnightSplit(t *testing.T) {
	tests := []struct {
		name string
		keep bool
	}{
		{name: "categories kept", keep: true},
		{name: "categories dropped", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Date(2024, 3, 15, 23, 59, 50, 0, time.UTC)
			f := newFixture(t, start, Options{})
			f.persist.keep = tt.keep
			require.NoError(t, f.tracker.AddCategory("Work", "#ff0000"))
			require.NoError(t, f.tracker.AddCategory("Idle", "#00ff00"))
			require.NoError(t, f.tracker.StartCategory("Work"))

			f.clock.Advance(15 * time.Second)
			f.tracker.Tick()

			require.Len(t, f.persist.history, 1)
			archived := f.persist.history[0]
			assert.Equal(t, "2024-03-15", archived.Date)
			assert.Equal(t, int64(10), archived.Categories["Work"].Time)

			today := f.tracker.Today()
			assert.Equal(t, "2024-03-16", today.Date)
			assert.Equal(t, CategoryData{Time: 5, Color: "#ff0000"}, today.Categories["Work"])
			_, hasIdle := today.Categories["Idle"]
			assert.Equal(t, tt.keep, hasIdle)

			st := f.tracker.Status()
			require.NotNil(t, st.Active)
			assert.Equal(t, "Work", st.Active.Category)
			assert.Equal(t, "2024-03-16", f.persist.last().Date)
		})
	}
}

func TestTracker_MultiDayGapArchivesEachDay(t *testing.T) {
	for _, keep := range []bool{true, false} {
		t.Run(fmt.Sprintf("keep=%t", keep), func(t *testing.T) {
			start := time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC)
			f := newFixture(t, start, Options{})
			f.persist.keep = keep
			require.NoError(t, f.tracker.AddCategory("Work", "#ff0000"))
			require.NoError(t, f.tracker.StartCategory("Work"))

			f.clock.Advance(59 * time.Hour)
			f.tracker.Tick()

			require.Len(t, f.persist.history, 3)
			want := []struct {
				date    string
				seconds int64
			}{
				{"2024-03-15", 2 * 3600},
				{"2024-03-16", 86400},
				{"2024-03-17", 86400},
			}
			for i, w := range want {
				day := f.persist.history[i]
				assert.Equal(t, w.date, day.Date)
				assert.Equal(t, w.seconds, day.Categories["Work"].Time)
				assert.LessOrEqual(t, day.TotalTime(), int64(86400))
			}

			today := f.tracker.Today()
			assert.Equal(t, "2024-03-18", today.Date)
			assert.Equal(t, CategoryData{Time: 9 * 3600, Color: "#ff0000"}, today.Categories["Work"])
		})
	}
}

func TestTracker_IdleMultiDayGapSkipsEmptyDays(t *testing.T) {
	start := time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC)
	f := newFixture(t, start, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.StartCategory("Work"))
	f.clock.Advance(time.Hour)
	require.NoError(t, f.tracker.Stop())

	f.clock.Advance(58 * time.Hour)
	f.tracker.Tick()

	require.Len(t, f.persist.history, 1)
	assert.Equal(t, "2024-03-15", f.persist.history[0].Date)
	assert.Equal(t, int64(3600), f.persist.history[0].Categories["Work"].Time)
	assert.Equal(t, "2024-03-18", f.tracker.Today().Date)
}

func TestTracker_MutationsSplitAtMidnight(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Tracker) error
		running bool
	}{
		{name: "stop", mutate: func(tr *Tracker) error { return tr.Stop() }},
		{name: "start other", mutate: func(tr *Tracker) error { return tr.StartCategory("Other") }, running: true},
		{name: "start timer", mutate: func(tr *Tracker) error { return tr.StartTimer("Other", 60) }, running: true},
		{name: "add category", mutate: func(tr *Tracker) error { return tr.AddCategory("New", "") }, running: true},
		{name: "rename other", mutate: func(tr *Tracker) error { return tr.RenameCategory("Other", "Misc", "") }, running: true},
		{name: "remove other", mutate: func(tr *Tracker) error { return tr.RemoveCategory("Other") }, running: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
			f := newFixture(t, start, Options{})
			require.NoError(t, f.tracker.AddCategory("Work", "#ff0000"))
			require.NoError(t, f.tracker.AddCategory("Other", ""))
			require.NoError(t, f.tracker.StartCategory("Work"))

			// no tick between the start and the mutation
			f.clock.Advance(3 * time.Hour)
			require.NoError(t, tt.mutate(f.tracker))

			require.Len(t, f.persist.history, 1)
			assert.Equal(t, "2024-03-15", f.persist.history[0].Date)
			assert.Equal(t, int64(3600), f.persist.history[0].Categories["Work"].Time)

			assert.Equal(t, "2024-03-16", f.tracker.Today().Date)
			assert.Equal(t, int64(2*3600), f.seconds("Work"))
			assert.Equal(t, "2024-03-16", f.persist.last().Date)
			assert.Equal(t, tt.running, f.tracker.Status().Active != nil)
		})
	}
}

func TestTracker_StopWhenIdlePersistsRollover(t *testing.T) {
	start := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	f := newFixture(t, start, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))

	f.clock.Advance(2 * time.Hour)
	require.NoError(t, f.tracker.Stop())

	assert.Equal(t, "2024-03-16", f.tracker.Today().Date)
	assert.Equal(t, "2024-03-16", f.persist.last().Date)
}

func TestTracker_SnapshotIncludesPendingTime(t *testing.T) {
	start := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	f := newFixture(t, start, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.StartCategory("Work"))

	f.clock.Advance(90 * time.Minute)
	today, history, err := f.tracker.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, "2024-03-16", today.Date)
	assert.Equal(t, int64(1800), today.Categories["Work"].Time)
	require.Len(t, history, 1)
	assert.Equal(t, int64(3600), history[0].Categories["Work"].Time)

	// the session keeps running after a snapshot
	require.NotNil(t, f.tracker.Status().Active)
	f.clock.Advance(30 * time.Second)
	require.NoError(t, f.tracker.Stop())
	assert.Equal(t, int64(1830), f.seconds("Work"))
}

func TestTracker_IdleRolloverSkipsEmptyDay(t *testing.T) {
	start := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	f := newFixture(t, start, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))

	f.clock.Advance(2 * time.Hour)
	f.tracker.Tick()

	assert.Empty(t, f.persist.history)
	assert.Equal(t, "2024-03-16", f.tracker.Today().Date)
	assert.Contains(t, f.tracker.Today().Categories, "Work")
}

func TestTracker_HeadsUpOncePerThreshold(t *testing.T) {
	f := newFixture(t, t0, Options{NotifyBefore: []time.Duration{5 * time.Second, 30 * time.Second}})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.StartTimer("Work", 10))

	for i := 0; i < 10; i++ {
		f.clock.Advance(time.Second)
		f.tracker.Tick()
	}

	assert.Equal(t, []recordedSignal{
		{"remaining", "Work", 5},
		{"completed", "Work", 10},
	}, f.signaler.signals)
}

func TestTracker_SignalsDeliveredOutsideLock(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.StartTimer("Work", 1))

	var seen *Status
	f.signaler.onFire = func() {
		st := f.tracker.Status()
		seen = &st
	}
	f.clock.Advance(time.Second)
	f.tracker.Tick()

	require.NotNil(t, seen)
	assert.Nil(t, seen.Active)
	assert.Equal(t, int64(1), seen.Categories["Work"].Time)
}

func TestTracker_StorageFailure(t *testing.T) {
	f := newFixture(t, t0, Options{})
	f.persist.failSave = true

	err := f.tracker.AddCategory("Work", "")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	// the in-memory store keeps the change
	assert.Contains(t, f.tracker.Today().Categories, "Work")
}

func TestTracker_ReplaceRollsStaleDay(t *testing.T) {
	f := newFixture(t, t0, Options{})
	require.NoError(t, f.tracker.AddCategory("Work", ""))
	require.NoError(t, f.tracker.StartCategory("Work"))
	f.clock.Advance(3 * time.Second)

	stale := DayData{Date: "2024-03-10", Categories: map[string]CategoryData{
		"Gym": {Time: 50, Color: "#123456"},
	}}
	older := []DayData{{Date: "2024-03-09", Categories: map[string]CategoryData{"Gym": {Time: 20}}}}
	require.NoError(t, f.tracker.Replace(&stale, older, true))

	assert.Nil(t, f.tracker.Status().Active)
	history := f.tracker.History()
	require.Len(t, history, 2)
	assert.Equal(t, "2024-03-09", history[0].Date)
	assert.Equal(t, "2024-03-10", history[1].Date)

	today := f.tracker.Today()
	assert.Equal(t, "2024-03-15", today.Date)
	assert.Equal(t, CategoryData{Color: "#123456"}, today.Categories["Gym"])
}
