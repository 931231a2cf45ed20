// Package exchange encodes and decodes the portable backup format.
package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

// CurrentVersion is the newest snapshot version this build understands.
const CurrentVersion = 1

// Snapshot is the exported document.
type Snapshot struct {
	Version     int               `json:"version"`
	ExportDate  time.Time         `json:"exportDate"`
	CurrentDay  *tracker.DayData  `json:"currentDay"`
	ArchiveData []tracker.DayData `json:"archiveData"`
}

// Imported is the decoded content of a snapshot.
type Imported struct {
	Version       int
	ExportDate    time.Time
	CurrentDay    *tracker.DayData
	HasCurrentDay bool
	Archive       []tracker.DayData
	HasArchive    bool
}

// Export serializes the current day and the history.
func Export(current *tracker.DayData, history []tracker.DayData, now time.Time) ([]byte, error) {
	if history == nil {
		history = []tracker.DayData{}
	}
	snap := Snapshot{
		Version:     CurrentVersion,
		ExportDate:  now.UTC(),
		CurrentDay:  current,
		ArchiveData: history,
	}
	return json.MarshalIndent(snap, "", "  ")
}

// Import decodes a snapshot. Only the fields present in the document are
// flagged for replacement.
func Import(data []byte) (*Imported, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: not a JSON object", tracker.ErrInvalidFormat)
	}

	rawVersion, ok := fields["version"]
	if !ok {
		return nil, fmt.Errorf("%w: missing version", tracker.ErrInvalidFormat)
	}
	var version int
	if err := json.Unmarshal(rawVersion, &version); err != nil || version < 1 {
		return nil, fmt.Errorf("%w: bad version %s", tracker.ErrInvalidFormat, rawVersion)
	}
	if version > CurrentVersion {
		return nil, fmt.Errorf("%w: version %d: %w", tracker.ErrInvalidFormat, version, tracker.ErrUnsupportedVersion)
	}

	out := &Imported{Version: version}
	if raw, ok := fields["exportDate"]; ok && !isNull(raw) {
		// informational only
		_ = json.Unmarshal(raw, &out.ExportDate)
	}

	if raw, ok := fields["currentDay"]; ok && isObject(raw) {
		var day tracker.DayData
		if err := json.Unmarshal(raw, &day); err != nil {
			return nil, fmt.Errorf("%w: currentDay: %w", tracker.ErrInvalidFormat, err)
		}
		if err := validateDay(day); err != nil {
			return nil, fmt.Errorf("currentDay: %w", err)
		}
		if day.Categories == nil {
			day.Categories = make(map[string]tracker.CategoryData)
		}
		out.CurrentDay = &day
		out.HasCurrentDay = true
	}

	if raw, ok := fields["archiveData"]; ok && isArray(raw) {
		var days []tracker.DayData
		if err := json.Unmarshal(raw, &days); err != nil {
			return nil, fmt.Errorf("%w: archiveData: %w", tracker.ErrInvalidFormat, err)
		}
		for i := range days {
			if err := validateDay(days[i]); err != nil {
				return nil, fmt.Errorf("archiveData[%d]: %w", i, err)
			}
			if days[i].Categories == nil {
				days[i].Categories = make(map[string]tracker.CategoryData)
			}
		}
		out.Archive = days
		out.HasArchive = true
	}
	return out, nil
}

func validateDay(day tracker.DayData) error {
	if day.Date == "" {
		return fmt.Errorf("%w: missing date", tracker.ErrInvalidFormat)
	}
	for name, c := range day.Categories {
		if name == "" {
			return fmt.Errorf("%w: empty category name", tracker.ErrInvalidFormat)
		}
		if c.Time < 0 {
			return fmt.Errorf("%w: negative time for %q", tracker.ErrInvalidFormat, name)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
