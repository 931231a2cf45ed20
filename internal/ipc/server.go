package ipc

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// Serve claims ServiceName on conn, exports svc and blocks until ctx is done.
func Serve(ctx context.Context, conn *dbus.Conn, svc *TrackerService) error {
	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("failed to request name: %s is already owned", ServiceName)
	}
	defer conn.ReleaseName(ServiceName)

	if err := conn.Export(svc, ObjectPath, InterfaceName); err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}
	node := &introspect.Node{
		Name: ObjectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: InterfaceName, Methods: introspect.Methods(svc)},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}
	svc.logger().Info("D-Bus service ready", "name", ServiceName, "path", ObjectPath)

	<-ctx.Done()
	return nil
}
