package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// AlertOutcome is the result of an alert playback attempt.
type AlertOutcome int

const (
	AlertStarted AlertOutcome = iota
	AlertFailed
)

func (o AlertOutcome) String() string {
	if o == AlertStarted {
		return "started"
	}
	return "failed"
}

// Alerter plays an alert sound.
type Alerter interface {
	PlayAlert(soundRef string) AlertOutcome
}

// CommandAlerter plays sounds with the first available desktop player and
// falls back to the terminal bell.
type CommandAlerter struct {
	Bell     io.Writer
	LookPath func(file string) (string, error)
	Start    func(name string, args ...string) error
	Log      *slog.Logger
}

func NewCommandAlerter(logger *slog.Logger) *CommandAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandAlerter{
		Bell:     os.Stdout,
		LookPath: exec.LookPath,
		Start:    startDetached,
		Log:      logger,
	}
}

// PlayAlert accepts either a sound theme id ("complete") or a file path.
func (a *CommandAlerter) PlayAlert(soundRef string) AlertOutcome {
	for _, cmd := range playerCommands(soundRef) {
		path, err := a.LookPath(cmd[0])
		if err != nil {
			continue
		}
		if err := a.Start(path, cmd[1:]...); err != nil {
			a.Log.Debug("alert player failed", "player", cmd[0], "error", err)
			continue
		}
		return AlertStarted
	}
	if a.Bell != nil {
		if _, err := io.WriteString(a.Bell, "\a"); err == nil {
			return AlertStarted
		}
	}
	return AlertFailed
}

func playerCommands(soundRef string) [][]string {
	if isSoundFile(soundRef) {
		return [][]string{
			{"paplay", soundRef},
			{"pw-play", soundRef},
			{"aplay", "-q", soundRef},
		}
	}
	return [][]string{
		{"canberra-gtk-play", "-i", soundRef},
	}
}

func isSoundFile(ref string) bool {
	if strings.ContainsRune(ref, filepath.Separator) {
		return true
	}
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".oga", ".ogg", ".wav", ".flac":
		return true
	}
	return false
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}
