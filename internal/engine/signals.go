package engine

import (
	"fmt"
	"log/slog"
	"time"
)

// Signals delivers countdown notifications and the completion sound.
// Every delivery is best effort; failures are only logged and recorded.
type Signals struct {
	Notifier Notifier
	Alerter  Alerter
	Sound    string
	Enabled  bool
	// Record, when set, is called with the signal kind and outcome.
	Record func(kind, outcome string)
	Log    *slog.Logger
}

func (s *Signals) CountdownCompleted(category string, seconds int64) {
	if !s.Enabled {
		return
	}
	body := fmt.Sprintf("%s: %s tracked", category, formatTimeRemaining(time.Duration(seconds)*time.Second))
	s.notify("Timer finished", body)

	if s.Alerter == nil {
		return
	}
	outcome := s.Alerter.PlayAlert(s.Sound)
	s.record("alert", outcome.String())
	if outcome == AlertFailed {
		s.logger().Warn("alert sound unavailable", "sound", s.Sound)
	}
}

func (s *Signals) CountdownRemaining(category string, seconds int64) {
	if !s.Enabled {
		return
	}
	body := fmt.Sprintf("%s: %s remaining", category, formatTimeRemaining(time.Duration(seconds)*time.Second))
	s.notify("Timer running out", body)
}

func (s *Signals) notify(title, body string) {
	if s.Notifier == nil {
		return
	}
	outcome := s.Notifier.Notify(title, body)
	s.record("notification", outcome.String())
	s.logger().Info("notification", "title", title, "body", body, "outcome", outcome.String())
}

func (s *Signals) record(kind, outcome string) {
	if s.Record != nil {
		s.Record(kind, outcome)
	}
}

func (s *Signals) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// formatTimeRemaining formats duration into human-readable string
func formatTimeRemaining(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d hour(s) %d minute(s)", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%d minute(s)", minutes)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
