package ipc

import (
	"context"
	"encoding/json"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/DayTracker/internal/report"
	"github.com/SoarinFerret/DayTracker/internal/tracker"
)

// Client calls a running daemon.
type Client struct {
	obj dbus.BusObject
}

func NewClient(conn *dbus.Conn) *Client {
	return &Client{obj: conn.Object(ServiceName, ObjectPath)}
}

func (c *Client) call(ctx context.Context, method string, out []interface{}, args ...interface{}) error {
	call := c.obj.CallWithContext(ctx, InterfaceName+"."+method, 0, args...)
	if call.Err != nil {
		return FromDBusError(call.Err)
	}
	if len(out) == 0 {
		return nil
	}
	return call.Store(out...)
}

func (c *Client) callJSON(ctx context.Context, method string, v interface{}, args ...interface{}) error {
	var raw string
	if err := c.call(ctx, method, []interface{}{&raw}, args...); err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

func (c *Client) AddCategory(ctx context.Context, name, color string) error {
	return c.call(ctx, "AddCategory", nil, name, color)
}

func (c *Client) RenameCategory(ctx context.Context, oldName, newName, color string) error {
	return c.call(ctx, "RenameCategory", nil, oldName, newName, color)
}

func (c *Client) RemoveCategory(ctx context.Context, name string) error {
	return c.call(ctx, "RemoveCategory", nil, name)
}

func (c *Client) StartCategory(ctx context.Context, name string) error {
	return c.call(ctx, "StartCategory", nil, name)
}

func (c *Client) StartTimer(ctx context.Context, name string, seconds int64) error {
	return c.call(ctx, "StartTimer", nil, name, seconds)
}

func (c *Client) Stop(ctx context.Context) error {
	return c.call(ctx, "Stop", nil)
}

func (c *Client) Status(ctx context.Context) (tracker.Status, error) {
	var st tracker.Status
	err := c.callJSON(ctx, "GetStatus", &st)
	return st, err
}

func (c *Client) History(ctx context.Context) ([]tracker.DayData, error) {
	var days []tracker.DayData
	err := c.callJSON(ctx, "GetHistory", &days)
	return days, err
}

func (c *Client) Report(ctx context.Context, days int) (report.Summary, error) {
	var s report.Summary
	err := c.callJSON(ctx, "GetReport", &s, int32(days))
	return s, err
}

func (c *Client) Export(ctx context.Context) ([]byte, error) {
	var raw string
	if err := c.call(ctx, "Export", []interface{}{&raw}); err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (c *Client) Import(ctx context.Context, data []byte) error {
	return c.call(ctx, "Import", nil, string(data))
}
