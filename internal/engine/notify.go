package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsMethod = "org.freedesktop.Notifications.Notify"

	appName = "DayTracker"
)

// NotifyOutcome is the result of a notification attempt.
type NotifyOutcome int

const (
	Delivered NotifyOutcome = iota
	Unavailable
)

func (o NotifyOutcome) String() string {
	if o == Delivered {
		return "delivered"
	}
	return "unavailable"
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, body string) NotifyOutcome
}

// objectSource is satisfied by *dbus.Conn.
type objectSource interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// DBusNotifier sends org.freedesktop.Notifications calls on a session bus.
type DBusNotifier struct {
	bus     objectSource
	expire  time.Duration
	timeout time.Duration
	log     *slog.Logger
}

// NewDBusNotifier uses bus for notifications. A nil bus makes every
// notification Unavailable.
func NewDBusNotifier(bus *dbus.Conn, expire time.Duration, logger *slog.Logger) *DBusNotifier {
	n := &DBusNotifier{expire: expire, timeout: 2 * time.Second, log: logger}
	if bus != nil {
		n.bus = bus
	}
	if n.log == nil {
		n.log = slog.Default()
	}
	return n
}

func (n *DBusNotifier) Notify(title, body string) NotifyOutcome {
	if n.bus == nil {
		return Unavailable
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	obj := n.bus.Object(notificationsDest, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsMethod, 0,
		appName,           // app_name
		uint32(0),         // replaces_id
		"alarm-symbolic",  // app_icon
		title,             // summary
		body,              // body
		[]string{},        // actions
		map[string]dbus.Variant{ // hints
			"urgency": dbus.MakeVariant(byte(1)),
		},
		int32(n.expire/time.Millisecond), // expire_timeout
	)
	if call.Err != nil {
		n.log.Warn("notification not delivered", "title", title, "error", call.Err)
		return Unavailable
	}
	return Delivered
}

// ConnectSessionBus connects to the user's session bus, falling back to the
// systemd user bus socket when DBUS_SESSION_BUS_ADDRESS is unset.
func ConnectSessionBus() (*dbus.Conn, error) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		return dbus.ConnectSessionBus()
	}
	addr, err := sessionBusAddress()
	if err != nil {
		return nil, err
	}
	return dbus.Connect(addr)
}

func sessionBusAddress() (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = fmt.Sprintf("/run/user/%d", os.Getuid())
	}
	socket := filepath.Join(runtimeDir, "bus")
	if _, err := os.Stat(socket); err != nil {
		return "", fmt.Errorf("no session bus: %w", err)
	}
	return "unix:path=" + socket, nil
}
