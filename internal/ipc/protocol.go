package ipc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/DayTracker/internal/exchange"
	"github.com/SoarinFerret/DayTracker/internal/report"
	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

const (
	ObjectPath    = "/io/github/soarinferret/daytracker"
	InterfaceName = "io.github.soarinferret.daytracker.Tracker"
	ServiceName   = "io.github.soarinferret.daytracker"

	errorPrefix = "io.github.soarinferret.daytracker.Error."
)

// D-Bus error names returned by the service.
const (
	ErrNameDuplicateName      = errorPrefix + "DuplicateName"
	ErrNameNotFound           = errorPrefix + "NotFound"
	ErrNameInvalidArgument    = errorPrefix + "InvalidArgument"
	ErrNameInvalidFormat      = errorPrefix + "InvalidFormat"
	ErrNameUnsupportedVersion = errorPrefix + "UnsupportedVersion"
	ErrNameStorageUnavailable = errorPrefix + "StorageUnavailable"
	ErrNameFailed             = errorPrefix + "Failed"
)

// errorNames is ordered: an unsupported version also matches
// ErrInvalidFormat and must be reported as the former.
var errorNames = []struct {
	err  error
	name string
}{
	{tracker.ErrDuplicateName, ErrNameDuplicateName},
	{tracker.ErrNotFound, ErrNameNotFound},
	{tracker.ErrEmptyName, ErrNameInvalidArgument},
	{tracker.ErrInvalidColor, ErrNameInvalidArgument},
	{tracker.ErrInvalidDuration, ErrNameInvalidArgument},
	{tracker.ErrUnsupportedVersion, ErrNameUnsupportedVersion},
	{tracker.ErrInvalidFormat, ErrNameInvalidFormat},
	{tracker.ErrStorageUnavailable, ErrNameStorageUnavailable},
}

// Controller is the tracker surface the service exposes.
type Controller interface {
	AddCategory(name, color string) error
	RenameCategory(oldName, newName, color string) error
	RemoveCategory(name string) error
	StartCategory(name string) error
	StartTimer(name string, seconds int64) error
	Stop() error
	Status() tracker.Status
	Today() tracker.DayData
	History() []tracker.DayData
	Snapshot() (tracker.DayData, []tracker.DayData, error)
	Replace(current *tracker.DayData, history []tracker.DayData, replaceHistory bool) error
}

// TrackerService is exported on the session bus. Every exported method is a
// D-Bus method; structured replies are JSON strings.
type TrackerService struct {
	Tracker Controller
	Clock   clockwork.Clock
	Log     *slog.Logger
}

func (s *TrackerService) AddCategory(name, color string) *dbus.Error {
	return s.result("AddCategory", s.Tracker.AddCategory(name, color))
}

func (s *TrackerService) RenameCategory(oldName, newName, color string) *dbus.Error {
	return s.result("RenameCategory", s.Tracker.RenameCategory(oldName, newName, color))
}

func (s *TrackerService) RemoveCategory(name string) *dbus.Error {
	return s.result("RemoveCategory", s.Tracker.RemoveCategory(name))
}

func (s *TrackerService) StartCategory(name string) *dbus.Error {
	return s.result("StartCategory", s.Tracker.StartCategory(name))
}

func (s *TrackerService) StartTimer(name string, seconds int64) *dbus.Error {
	return s.result("StartTimer", s.Tracker.StartTimer(name, seconds))
}

func (s *TrackerService) Stop() *dbus.Error {
	return s.result("Stop", s.Tracker.Stop())
}

func (s *TrackerService) GetStatus() (string, *dbus.Error) {
	return s.encode("GetStatus", s.Tracker.Status())
}

func (s *TrackerService) GetHistory() (string, *dbus.Error) {
	return s.encode("GetHistory", s.Tracker.History())
}

// GetReport summarizes the last days archived days plus today; 0 means all.
func (s *TrackerService) GetReport(days int32) (string, *dbus.Error) {
	if days < 0 {
		return "", dbus.NewError(ErrNameInvalidArgument, []interface{}{"days must not be negative"})
	}
	today, history := s.snapshot("GetReport")
	return s.encode("GetReport", report.Summarize(history, today, int(days)))
}

func (s *TrackerService) Export() (string, *dbus.Error) {
	today, history := s.snapshot("Export")
	data, err := exchange.Export(&today, history, s.now())
	if err != nil {
		return "", s.result("Export", err)
	}
	return string(data), nil
}

// Import replaces the stored data with a previously exported document.
func (s *TrackerService) Import(data string) *dbus.Error {
	imported, err := exchange.Import([]byte(data))
	if err != nil {
		return s.result("Import", err)
	}
	var current *tracker.DayData
	if imported.HasCurrentDay {
		current = imported.CurrentDay
	}
	err = s.Tracker.Replace(current, imported.Archive, imported.HasArchive)
	if err == nil {
		s.logger().Info("data imported", "version", imported.Version,
			"current_day", imported.HasCurrentDay, "archived_days", len(imported.Archive))
	}
	return s.result("Import", err)
}

func (s *TrackerService) encode(method string, v interface{}) (string, *dbus.Error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", s.result(method, err)
	}
	return string(data), nil
}

func (s *TrackerService) result(method string, err error) *dbus.Error {
	if err == nil {
		return nil
	}
	s.logger().Warn("method failed", "method", method, "error", err)
	return toDBusError(err)
}

// snapshot reads today and the history in one step. A failed save only
// affects durability, so the read still succeeds.
func (s *TrackerService) snapshot(method string) (tracker.DayData, []tracker.DayData) {
	today, history, err := s.Tracker.Snapshot()
	if err != nil {
		s.logger().Warn("snapshot not persisted", "method", method, "error", err)
	}
	return today, history
}

func (s *TrackerService) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *TrackerService) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func toDBusError(err error) *dbus.Error {
	for _, e := range errorNames {
		if errors.Is(err, e.err) {
			return dbus.NewError(e.name, []interface{}{err.Error()})
		}
	}
	return dbus.NewError(ErrNameFailed, []interface{}{err.Error()})
}

// FromDBusError maps a D-Bus error returned by the service back to the
// matching sentinel, keeping the server's message.
func FromDBusError(err error) error {
	var dbusErr dbus.Error
	var dbusErrPtr *dbus.Error
	switch {
	case errors.As(err, &dbusErr):
	case errors.As(err, &dbusErrPtr):
		dbusErr = *dbusErrPtr
	default:
		return err
	}
	msg := dbusErr.Error()
	for _, e := range errorNames {
		if e.name == dbusErr.Name && e.name != ErrNameInvalidArgument {
			return &remoteError{msg: msg, err: e.err}
		}
	}
	return errors.New(msg)
}

type remoteError struct {
	msg string
	err error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.err }
