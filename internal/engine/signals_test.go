package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	titles  []string
	bodies  []string
	outcome NotifyOutcome
}

func (r *recordingNotifier) Notify(title, body string) NotifyOutcome {
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, body)
	return r.outcome
}

type recordingAlerter struct {
	sounds  []string
	outcome AlertOutcome
}

func (r *recordingAlerter) PlayAlert(sound string) AlertOutcome {
	r.sounds = append(r.sounds, sound)
	return r.outcome
}

func TestSignals_CountdownCompleted(t *testing.T) {
	n := &recordingNotifier{}
	a := &recordingAlerter{}
	var recorded []string
	s := &Signals{
		Notifier: n,
		Alerter:  a,
		Sound:    "complete",
		Enabled:  true,
		Record:   func(kind, outcome string) { recorded = append(recorded, kind+"/"+outcome) },
	}

	s.CountdownCompleted("Work", 600)

	assert.Equal(t, []string{"Timer finished"}, n.titles)
	assert.Equal(t, []string{"Work: 10 minute(s) tracked"}, n.bodies)
	assert.Equal(t, []string{"complete"}, a.sounds)
	assert.Equal(t, []string{"notification/delivered", "alert/started"}, recorded)
}

func TestSignals_FailuresAreRecorded(t *testing.T) {
	var recorded []string
	s := &Signals{
		Notifier: &recordingNotifier{outcome: Unavailable},
		Alerter:  &recordingAlerter{outcome: AlertFailed},
		Enabled:  true,
		Record:   func(kind, outcome string) { recorded = append(recorded, kind+"/"+outcome) },
	}

	s.CountdownCompleted("Work", 10)
	assert.Equal(t, []string{"notification/unavailable", "alert/failed"}, recorded)
}

func TestSignals_CountdownRemaining(t *testing.T) {
	n := &recordingNotifier{}
	a := &recordingAlerter{}
	s := &Signals{Notifier: n, Alerter: a, Enabled: true}

	s.CountdownRemaining("Reading", 60)

	assert.Equal(t, []string{"Reading: 1 minute(s) remaining"}, n.bodies)
	assert.Empty(t, a.sounds)
}

func TestSignals_Disabled(t *testing.T) {
	n := &recordingNotifier{}
	a := &recordingAlerter{}
	s := &Signals{Notifier: n, Alerter: a, Enabled: false}

	s.CountdownCompleted("Work", 10)
	s.CountdownRemaining("Work", 5)

	assert.Empty(t, n.titles)
	assert.Empty(t, a.sounds)
}
