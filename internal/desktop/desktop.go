// Package desktop classifies the running desktop session so the right
// display-state provider can be chosen.
package desktop

import (
	"os"
	"os/exec"
	"strings"
)

// Variant is the detected desktop environment.
type Variant string

const (
	KDE        Variant = "kde"
	GNOME      Variant = "gnome"
	GenericX11 Variant = "x11"
	Unknown    Variant = "unknown"
)

// Session is the display-server type of the running session.
type Session string

const (
	SessionWayland Session = "wayland"
	SessionX11     Session = "x11"
	SessionUnknown Session = "unknown"
)

// Env resolves environment and installed-tool state. The zero value reads the
// real process environment; tests swap the lookup funcs.
type Env struct {
	Getenv   func(string) string
	LookPath func(string) (string, error)
}

func (e Env) getenv(key string) string {
	if e.Getenv != nil {
		return e.Getenv(key)
	}
	return os.Getenv(key)
}

func (e Env) lookPath(name string) (string, error) {
	if e.LookPath != nil {
		return e.LookPath(name)
	}
	return exec.LookPath(name)
}

// Var returns an environment variable through the configured lookup.
func (e Env) Var(key string) string {
	return e.getenv(key)
}

// HasTool reports whether the named binary is on the search path.
func (e Env) HasTool(name string) bool {
	_, err := e.lookPath(name)
	return err == nil
}

// Detect classifies the desktop environment. First match wins:
// KDE session marker, then GNOME desktop identifiers, then xrandr presence
// as a generic X11 signal.
func (e Env) Detect() Variant {
	if e.getenv("KDE_FULL_SESSION") != "" {
		return KDE
	}

	if isGnome(e.getenv("XDG_CURRENT_DESKTOP")) || isGnome(e.getenv("DESKTOP_SESSION")) {
		return GNOME
	}

	if e.HasTool("xrandr") {
		return GenericX11
	}

	return Unknown
}

// SessionType reports whether the session runs on Wayland or X11.
func (e Env) SessionType() Session {
	switch {
	case e.getenv("WAYLAND_DISPLAY") != "", e.getenv("XDG_SESSION_TYPE") == "wayland":
		return SessionWayland
	case e.getenv("DISPLAY") != "", e.getenv("XDG_SESSION_TYPE") == "x11":
		return SessionX11
	default:
		return SessionUnknown
	}
}

// XDG_CURRENT_DESKTOP can hold colon-separated entries like "ubuntu:GNOME".
func isGnome(v string) bool {
	for _, part := range strings.Split(v, ":") {
		if strings.EqualFold(part, "GNOME") {
			return true
		}
	}

	return false
}
