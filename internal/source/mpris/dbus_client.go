package mpris

import (
	"context"
	"strings"

	"github.com/godbus/dbus/v5"
)

// DBusClient defines the interface for D-Bus operations.
// This abstraction allows us to mock D-Bus interactions in tests.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/genricoloni/spotled/internal/source/mpris DBusClient
type DBusClient interface {
	// Close closes the D-Bus connection
	Close() error

	// ListNames returns all names on the bus
	ListNames(ctx context.Context) ([]string, error)

	// GetProperty retrieves a property from a D-Bus object
	// player: The bus name (e.g., "org.mpris.MediaPlayer2.spotify")
	// path: The object path (e.g., "/org/mpris/MediaPlayer2")
	// prop: The qualified property name (e.g., "org.mpris.MediaPlayer2.Player.Metadata")
	GetProperty(ctx context.Context, player, path, prop string) (dbus.Variant, error)

	// SetProperty writes a property of a D-Bus object
	SetProperty(ctx context.Context, player, path, prop string, value any) error
}

// StdDBusClient is the real implementation using godbus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient creates a real D-Bus client connected to the session bus
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

// Close closes the D-Bus connection
func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

// ListNames returns all names on the bus
func (c *StdDBusClient) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names)
	return names, err
}

// GetProperty retrieves a property from a D-Bus object
func (c *StdDBusClient) GetProperty(ctx context.Context, player, path, prop string) (dbus.Variant, error) {
	iface, name := splitProperty(prop)
	var v dbus.Variant
	err := c.conn.Object(player, dbus.ObjectPath(path)).
		CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, iface, name).
		Store(&v)
	return v, err
}

// SetProperty writes a property of a D-Bus object
func (c *StdDBusClient) SetProperty(ctx context.Context, player, path, prop string, value any) error {
	iface, name := splitProperty(prop)
	return c.conn.Object(player, dbus.ObjectPath(path)).
		CallWithContext(ctx, "org.freedesktop.DBus.Properties.Set", 0, iface, name, dbus.MakeVariant(value)).
		Err
}

// splitProperty splits "iface.Name" at the last dot
func splitProperty(prop string) (iface, name string) {
	i := strings.LastIndex(prop, ".")
	if i < 0 {
		return "", prop
	}
	return prop[:i], prop[i+1:]
}
