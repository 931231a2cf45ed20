package tracker

import (
	"sort"
	"time"
)

// DayKeyLayout is the layout of the calendar-day key stored in DayData.Date.
const DayKeyLayout = "2006-01-02"

// CategoryData is the accumulated time and display color of one category.
type CategoryData struct {
	Time  int64  `json:"time"`
	Color string `json:"color"`
}

// DayData is one calendar day of tracked time.
type DayData struct {
	Date       string                  `json:"date"`
	Categories map[string]CategoryData `json:"categories"`
}

// NewDay returns an empty day for the given key.
func NewDay(date string) DayData {
	return DayData{Date: date, Categories: make(map[string]CategoryData)}
}

// DayKey returns the calendar-day key of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayKeyLayout)
}

// DayStart returns local midnight of the day containing t.
func DayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// TotalTime sums the time of every category.
func (d DayData) TotalTime() int64 {
	var total int64
	for _, c := range d.Categories {
		total += c.Time
	}
	return total
}

// HasActivity reports whether any category recorded time.
func (d DayData) HasActivity() bool {
	for _, c := range d.Categories {
		if c.Time > 0 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (d DayData) Clone() DayData {
	out := DayData{Date: d.Date, Categories: make(map[string]CategoryData, len(d.Categories))}
	for name, c := range d.Categories {
		out.Categories[name] = c
	}
	return out
}

// Names returns the category names in sorted order.
func (d DayData) Names() []string {
	names := make([]string, 0, len(d.Categories))
	for name := range d.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
