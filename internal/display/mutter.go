package display

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	displayConfigDest   = "org.gnome.Mutter.DisplayConfig"
	displayConfigPath   = "/org/gnome/Mutter/DisplayConfig"
	displayConfigMethod = "org.gnome.Mutter.DisplayConfig.GetCurrentState"
	getNameOwnerMethod  = "org.freedesktop.DBus.GetNameOwner"

	modeCurrentProperty = "is-current"
)

type (
	// mutterBus is the slice of mutter's DisplayConfig API the GNOME
	// provider needs; swapped out in tests.
	mutterBus interface {
		Ping() error
		CurrentState(ctx context.Context) ([]mutterMonitor, error)
	}

	// mutterMonitor is a physical monitor normalized from GetCurrentState.
	mutterMonitor struct {
		Connector   string
		Width       int
		Height      int
		RefreshRate float64
		Primary     bool
	}
)

// Wire structures matching GetCurrentState's signature
// (u, a((ssss)a(siiddada{sv})a{sv}), a(iiduba(ssss)a{sv}), a{sv}).
type (
	mutterSpec struct {
		Connector string
		Vendor    string
		Product   string
		Serial    string
	}

	mutterMode struct {
		ID              string
		Width           int32
		Height          int32
		RefreshRate     float64
		PreferredScale  float64
		SupportedScales []float64
		Properties      map[string]dbus.Variant
	}

	mutterPhysical struct {
		Spec       mutterSpec
		Modes      []mutterMode
		Properties map[string]dbus.Variant
	}

	mutterLogical struct {
		X          int32
		Y          int32
		Scale      float64
		Transform  uint32
		Primary    bool
		Monitors   []mutterSpec
		Properties map[string]dbus.Variant
	}
)

// sessionMutter talks to mutter over the session bus, dialing on first use.
type sessionMutter struct {
	conn *dbus.Conn
}

func (m *sessionMutter) connect() (*dbus.Conn, error) {
	if m.conn != nil {
		return m.conn, nil
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	m.conn = conn

	return conn, nil
}

// Ping reports whether mutter currently owns the DisplayConfig name.
func (m *sessionMutter) Ping() error {
	conn, err := m.connect()
	if err != nil {
		return err
	}

	var owner string
	if err := conn.BusObject().Call(getNameOwnerMethod, 0, displayConfigDest).Store(&owner); err != nil {
		return fmt.Errorf("resolving DisplayConfig name owner: %w", err)
	}

	return nil
}

func (m *sessionMutter) CurrentState(ctx context.Context) ([]mutterMonitor, error) {
	conn, err := m.connect()
	if err != nil {
		return nil, err
	}

	var (
		serial   uint32
		physical []mutterPhysical
		logical  []mutterLogical
		props    map[string]dbus.Variant
	)
	obj := conn.Object(displayConfigDest, displayConfigPath)
	call := obj.CallWithContext(ctx, displayConfigMethod, 0)
	if call.Err != nil {
		return nil, fmt.Errorf("calling GetCurrentState: %w", call.Err)
	}
	if err := call.Store(&serial, &physical, &logical, &props); err != nil {
		return nil, fmt.Errorf("decoding GetCurrentState reply: %w", err)
	}

	return normalizeMutterState(physical, logical), nil
}

func normalizeMutterState(physical []mutterPhysical, logical []mutterLogical) []mutterMonitor {
	primaries := make(map[string]bool)
	for _, l := range logical {
		if !l.Primary {
			continue
		}
		for _, spec := range l.Monitors {
			primaries[spec.Connector] = true
		}
	}

	var monitors []mutterMonitor
	for _, p := range physical {
		mode, ok := currentMutterMode(p.Modes)
		if !ok {
			continue
		}
		monitors = append(monitors, mutterMonitor{
			Connector:   p.Spec.Connector,
			Width:       int(mode.Width),
			Height:      int(mode.Height),
			RefreshRate: mode.RefreshRate,
			Primary:     primaries[p.Spec.Connector],
		})
	}

	return monitors
}

func currentMutterMode(modes []mutterMode) (mutterMode, bool) {
	for _, mode := range modes {
		v, ok := mode.Properties[modeCurrentProperty]
		if !ok {
			continue
		}
		if current, ok := v.Value().(bool); ok && current {
			return mode, true
		}
	}

	return mutterMode{}, false
}
