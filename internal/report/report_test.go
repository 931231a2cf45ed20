package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

func day(date string, cats map[string]int64) tracker.DayData {
	d := tracker.NewDay(date)
	for name, secs := range cats {
		d.Categories[name] = tracker.CategoryData{Time: secs, Color: "#112233"}
	}
	return d
}

func TestSummarize(t *testing.T) {
	history := []tracker.DayData{
		day("2024-03-01", map[string]int64{"Work": 3600}),
		day("2024-03-02", map[string]int64{"Work": 1800, "Reading": 600}),
		day("2024-03-03", map[string]int64{"Reading": 1200}),
	}
	today := day("2024-03-04", map[string]int64{"Work": 0, "Reading": 0})

	t.Run("all days", func(t *testing.T) {
		s := Summarize(history, today, 0)

		assert.Equal(t, "2024-03-01", s.From)
		assert.Equal(t, "2024-03-04", s.To)
		assert.Len(t, s.Days, 4)
		assert.Equal(t, int64(7200), s.TotalSeconds)
		assert.Equal(t, 3, s.ActiveDays)
		assert.Equal(t, int64(2400), s.AverageSeconds)
		assert.Equal(t, "Work", s.Top)

		require.Len(t, s.Categories, 2)
		assert.Equal(t, "Work", s.Categories[0].Name)
		assert.Equal(t, int64(5400), s.Categories[0].Seconds)
		assert.InDelta(t, 0.75, s.Categories[0].Share, 1e-9)
		assert.Equal(t, "Reading", s.Categories[1].Name)
		assert.InDelta(t, 0.25, s.Categories[1].Share, 1e-9)
	})

	t.Run("last day only", func(t *testing.T) {
		s := Summarize(history, today, 1)

		assert.Equal(t, "2024-03-03", s.From)
		assert.Equal(t, int64(1200), s.TotalSeconds)
		assert.Equal(t, "Reading", s.Top)
		assert.Equal(t, 1, s.ActiveDays)
	})
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, tracker.NewDay("2024-03-04"), 7)

	assert.Equal(t, int64(0), s.TotalSeconds)
	assert.Equal(t, 0, s.ActiveDays)
	assert.Equal(t, int64(0), s.AverageSeconds)
	assert.Empty(t, s.Top)
	assert.Equal(t, []DayTotal{{Date: "2024-03-04"}}, s.Days)
}
