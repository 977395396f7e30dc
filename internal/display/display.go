// Package display normalizes the display state of heterogeneous desktop
// environments into a single record used for compositor argument assembly.
package display

import (
	"context"

	"github.com/gamescope-tools/gamescoperun/internal/desktop"
	"github.com/gamescope-tools/gamescoperun/internal/execx"
)

// State is the normalized display state of a single output.
type State struct {
	Name        string
	Width       int
	Height      int
	RefreshRate float64
	HDR         bool
	VRR         bool
}

// Valid reports whether the record carries usable dimensions.
func (s State) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Provider queries one desktop variant's native tooling for display state.
type Provider interface {
	// Preflight verifies the provider's external dependencies are present.
	Preflight() error

	// Current returns the state of the preferred output, or of the primary/
	// best-ranked output when preferredOutput is empty.
	Current(ctx context.Context, preferredOutput string) (State, error)
}

// For selects the provider for a detected desktop variant.
func For(v desktop.Variant, env desktop.Env, run execx.Runner) (Provider, error) {
	switch v {
	case desktop.KDE:
		return NewKScreen(env, run), nil
	case desktop.GNOME:
		return NewGnome(env, run), nil
	case desktop.GenericX11:
		return NewXRandr(env, run), nil
	default:
		return nil, ErrUnsupportedDesktop
	}
}
