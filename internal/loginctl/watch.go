package loginctl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	loginPath      = "/org/freedesktop/login1"
	loginInterface = "org.freedesktop.login1.Manager"
	sessionIface   = "org.freedesktop.login1.Session"

	signalPrepareForSleep   = loginInterface + ".PrepareForSleep"
	signalPropertiesChanged = "org.freedesktop.DBus.Properties.PropertiesChanged"
)

// Nudger requests an immediate tracker tick.
type Nudger interface {
	Nudge()
}

// Watch listens for logind suspend/resume and session lock changes on the
// system bus and nudges the engine for each, so elapsed time and a crossed
// midnight are applied right away instead of on the next scheduled tick.
func Watch(ctx context.Context, n Nudger, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(loginPath),
		dbus.WithMatchInterface(loginInterface),
		dbus.WithMatchMember("PrepareForSleep"),
	); err != nil {
		return fmt.Errorf("add match failed: %w", err)
	}

	// watch for property changes (session locked)
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		return fmt.Errorf("add match for PropertiesChanged failed: %w", err)
	}

	c := make(chan *dbus.Signal, 10)
	conn.Signal(c)
	defer conn.RemoveSignal(c)

	for {
		select {
		case sig, ok := <-c:
			if !ok {
				return nil
			}
			handleSignal(sig, n, logger)
		case <-ctx.Done():
			return nil
		}
	}
}

// handleSignal reports whether sig caused a nudge.
func handleSignal(sig *dbus.Signal, n Nudger, logger *slog.Logger) bool {
	if sig == nil {
		return false
	}
	switch sig.Name {
	case signalPrepareForSleep:
		if len(sig.Body) == 0 {
			return false
		}
		sleeping, ok := sig.Body[0].(bool)
		if !ok {
			return false
		}
		if sleeping {
			logger.Info("system is going to sleep")
		} else {
			logger.Info("system has woken up")
		}
		n.Nudge()
		return true

	case signalPropertiesChanged:
		if len(sig.Body) < 2 {
			return false
		}
		iface, ok := sig.Body[0].(string)
		if !ok || iface != sessionIface {
			return false
		}
		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			return false
		}
		val, exists := changed["LockedHint"]
		if !exists {
			return false
		}
		locked, _ := val.Value().(bool)
		logger.Debug("session lock changed", "session", sig.Path, "locked", locked)
		n.Nudge()
		return true
	}
	return false
}
