package engine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRunner struct {
	available map[string]bool
	failing   map[string]bool
	started   [][]string
}

func (f *fakeRunner) lookPath(file string) (string, error) {
	if f.available[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found")
}

func (f *fakeRunner) start(name string, args ...string) error {
	f.started = append(f.started, append([]string{name}, args...))
	if f.failing[name] {
		return errors.New("exec failed")
	}
	return nil
}

func newTestAlerter(f *fakeRunner, bell *bytes.Buffer) *CommandAlerter {
	a := NewCommandAlerter(nil)
	a.LookPath = f.lookPath
	a.Start = f.start
	a.Bell = bell
	return a
}

func TestCommandAlerter_PlayAlert(t *testing.T) {
	tests := []struct {
		name      string
		sound     string
		available map[string]bool
		failing   map[string]bool
		started   [][]string
		bell      string
	}{
		{
			name:      "theme sound",
			sound:     "complete",
			available: map[string]bool{"canberra-gtk-play": true},
			started:   [][]string{{"/usr/bin/canberra-gtk-play", "-i", "complete"}},
		},
		{
			name:      "file falls through to pw-play",
			sound:     "/usr/share/sounds/done.oga",
			available: map[string]bool{"pw-play": true, "aplay": true},
			started:   [][]string{{"/usr/bin/pw-play", "/usr/share/sounds/done.oga"}},
		},
		{
			name:      "failing player tries the next",
			sound:     "done.wav",
			available: map[string]bool{"paplay": true, "aplay": true},
			failing:   map[string]bool{"/usr/bin/paplay": true},
			started: [][]string{
				{"/usr/bin/paplay", "done.wav"},
				{"/usr/bin/aplay", "-q", "done.wav"},
			},
		},
		{
			name:  "no player rings the bell",
			sound: "complete",
			bell:  "\a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeRunner{available: tt.available, failing: tt.failing}
			var bell bytes.Buffer
			a := newTestAlerter(f, &bell)

			assert.Equal(t, AlertStarted, a.PlayAlert(tt.sound))
			assert.Equal(t, tt.started, f.started)
			assert.Equal(t, tt.bell, bell.String())
		})
	}
}

func TestCommandAlerter_NoOutput(t *testing.T) {
	a := newTestAlerter(&fakeRunner{}, nil)
	a.Bell = nil
	assert.Equal(t, AlertFailed, a.PlayAlert("complete"))
}
