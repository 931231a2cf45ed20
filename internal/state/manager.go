package state

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

const (
	KeyCurrentDay = "current-day"
	KeyHistory    = "history"

	DefaultHistoryLimit = 365
)

// Options configures a Manager.
type Options struct {
	HistoryLimit int
	// KeepCategories carries category names and colors into a new day.
	KeepCategories bool
	Location       *time.Location
	Logger         *slog.Logger
}

// Manager reads and writes the current day and the archived history.
type Manager struct {
	blobs   BlobStore
	opts    Options
	log     *slog.Logger
	mu      sync.Mutex
	history []tracker.DayData
}

// NewManager loads the history. Unreadable history starts empty.
func NewManager(blobs BlobStore, opts Options) *Manager {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	m := &Manager{blobs: blobs, opts: opts, log: opts.Logger}
	if m.log == nil {
		m.log = slog.Default()
	}
	m.history = m.loadHistory()
	return m
}

func (m *Manager) loadHistory() []tracker.DayData {
	data, err := m.blobs.Read(KeyHistory)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			m.log.Warn("history unreadable, starting empty", "error", err)
		}
		return []tracker.DayData{}
	}
	var days []tracker.DayData
	if err := json.Unmarshal(data, &days); err != nil {
		m.log.Warn("history corrupt, starting empty", "error", err)
		return []tracker.DayData{}
	}
	for i := range days {
		if days[i].Categories == nil {
			days[i].Categories = make(map[string]tracker.CategoryData)
		}
	}
	if len(days) > m.opts.HistoryLimit {
		days = days[len(days)-m.opts.HistoryLimit:]
	}
	return days
}

// LoadDay returns the day to resume at now. A stored day from another
// date is archived and replaced by a fresh one.
func (m *Manager) LoadDay(now time.Time) (tracker.DayData, error) {
	today := tracker.DayKey(now, m.opts.Location)

	data, err := m.blobs.Read(KeyCurrentDay)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			m.log.Warn("current day unreadable, starting fresh", "error", err)
		}
		day := tracker.NewDay(today)
		return day, m.SaveDay(day)
	}

	var day tracker.DayData
	if err := json.Unmarshal(data, &day); err != nil || day.Date == "" {
		m.log.Warn("current day corrupt, starting fresh", "error", err)
		fresh := tracker.NewDay(today)
		return fresh, m.SaveDay(fresh)
	}
	if day.Categories == nil {
		day.Categories = make(map[string]tracker.CategoryData)
	}

	if day.Date == today {
		return day, nil
	}
	fresh, _, err := m.Rollover(day, now)
	return fresh, err
}

// SaveDay writes the current day.
func (m *Manager) SaveDay(day tracker.DayData) error {
	data, err := json.MarshalIndent(day, "", "  ")
	if err != nil {
		return err
	}
	return m.blobs.Write(KeyCurrentDay, data)
}

// Rollover archives day and stores a fresh day for now's date.
func (m *Manager) Rollover(day tracker.DayData, now time.Time) (tracker.DayData, bool, error) {
	archived, archiveErr := m.Archive(day)

	fresh := tracker.NewDay(tracker.DayKey(now, m.opts.Location))
	if m.opts.KeepCategories {
		for name, c := range day.Categories {
			fresh.Categories[name] = tracker.CategoryData{Time: 0, Color: c.Color}
		}
	}
	saveErr := m.SaveDay(fresh)
	return fresh, archived, errors.Join(archiveErr, saveErr)
}

// Archive appends day to the history when it has any tracked time,
// evicting the oldest days beyond the limit.
func (m *Manager) Archive(day tracker.DayData) (bool, error) {
	if !day.HasActivity() {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, day.Clone())
	if over := len(m.history) - m.opts.HistoryLimit; over > 0 {
		m.history = append([]tracker.DayData(nil), m.history[over:]...)
	}
	return true, m.writeHistory()
}

// History returns a copy of the archived days, oldest first.
func (m *Manager) History() []tracker.DayData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tracker.DayData, len(m.history))
	for i, d := range m.history {
		out[i] = d.Clone()
	}
	return out
}

// ReplaceHistory overwrites the history, keeping the newest days that fit.
func (m *Manager) ReplaceHistory(days []tracker.DayData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(days) > m.opts.HistoryLimit {
		days = days[len(days)-m.opts.HistoryLimit:]
	}
	m.history = make([]tracker.DayData, len(days))
	for i, d := range days {
		m.history[i] = d.Clone()
	}
	return m.writeHistory()
}

func (m *Manager) writeHistory() error {
	data, err := json.MarshalIndent(m.history, "", "  ")
	if err != nil {
		return err
	}
	return m.blobs.Write(KeyHistory, data)
}
