// Package report summarizes archived days.
package report

import (
	"sort"

	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

// CategoryTotal is one category's time across the summarized days.
type CategoryTotal struct {
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Seconds int64   `json:"seconds"`
	Share   float64 `json:"share"` // fraction of Summary.TotalSeconds
}

// DayTotal is the tracked time of a single day.
type DayTotal struct {
	Date    string `json:"date"`
	Seconds int64  `json:"seconds"`
}

type Summary struct {
	From           string          `json:"from"`
	To             string          `json:"to"`
	Days           []DayTotal      `json:"days"`
	Categories     []CategoryTotal `json:"categories"`
	TotalSeconds   int64           `json:"totalSeconds"`
	ActiveDays     int             `json:"activeDays"`
	AverageSeconds int64           `json:"averageSeconds"` // per active day
	Top            string          `json:"top,omitempty"`
}

// Summarize covers the last days archived days plus today. days <= 0
// covers the whole history. Categories are ordered by time, descending.
func Summarize(history []tracker.DayData, today tracker.DayData, days int) Summary {
	selected := history
	if days > 0 && len(selected) > days {
		selected = selected[len(selected)-days:]
	}
	all := make([]tracker.DayData, 0, len(selected)+1)
	all = append(all, selected...)
	if today.Date != "" {
		all = append(all, today)
	}

	var s Summary
	totals := make(map[string]*CategoryTotal)
	for _, day := range all {
		dayTotal := day.TotalTime()
		s.Days = append(s.Days, DayTotal{Date: day.Date, Seconds: dayTotal})
		s.TotalSeconds += dayTotal
		if dayTotal > 0 {
			s.ActiveDays++
		}
		for name, c := range day.Categories {
			ct, ok := totals[name]
			if !ok {
				ct = &CategoryTotal{Name: name}
				totals[name] = ct
			}
			ct.Seconds += c.Time
			// later days win
			if c.Color != "" {
				ct.Color = c.Color
			}
		}
	}
	if len(all) > 0 {
		s.From = all[0].Date
		s.To = all[len(all)-1].Date
	}

	for _, ct := range totals {
		if s.TotalSeconds > 0 {
			ct.Share = float64(ct.Seconds) / float64(s.TotalSeconds)
		}
		s.Categories = append(s.Categories, *ct)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		a, b := s.Categories[i], s.Categories[j]
		if a.Seconds != b.Seconds {
			return a.Seconds > b.Seconds
		}
		return a.Name < b.Name
	})

	if s.ActiveDays > 0 {
		s.AverageSeconds = s.TotalSeconds / int64(s.ActiveDays)
	}
	if len(s.Categories) > 0 && s.Categories[0].Seconds > 0 {
		s.Top = s.Categories[0].Name
	}
	return s
}
