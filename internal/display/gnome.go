package display

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gamescope-tools/gamescoperun/internal/desktop"
	"github.com/gamescope-tools/gamescoperun/internal/execx"
)

const (
	gsettingsBin      = "gsettings"
	mutterSchema      = "org.gnome.mutter"
	mutterFeaturesKey = "experimental-features"

	featureHDR = "hdr"
	featureVRR = "variable-refresh-rate"
)

// Gnome queries display state on GNOME. On a Wayland session it asks mutter's
// DisplayConfig API over the session bus, since xrandr under XWayland reports
// logical rather than physical geometry; elsewhere it parses xrandr. HDR and
// VRR state come from mutter's experimental-features setting.
type Gnome struct {
	env desktop.Env
	run execx.Runner
	bus mutterBus
}

func NewGnome(env desktop.Env, run execx.Runner) *Gnome {
	return &Gnome{env: env, run: run, bus: &sessionMutter{}}
}

func (g *Gnome) Preflight() error {
	if g.env.SessionType() == desktop.SessionWayland && g.busReachable() {
		return nil
	}

	if !g.env.HasTool(xrandrBin) {
		return &MissingDepsError{Missing: []string{xrandrBin}}
	}

	return nil
}

func (g *Gnome) Current(ctx context.Context, preferredOutput string) (State, error) {
	s, ok := g.mutterState(ctx, preferredOutput)
	if !ok {
		out, err := queryXRandr(ctx, g.run, preferredOutput)
		if err != nil {
			return State{}, err
		}
		s = State{
			Name:        out.name,
			Width:       out.width,
			Height:      out.height,
			RefreshRate: out.refreshRate,
		}
	}

	s.HDR, s.VRR = g.experimentalFeatures(ctx)
	return s, nil
}

func (g *Gnome) busReachable() bool {
	return g.bus != nil && g.bus.Ping() == nil
}

// mutterState queries DisplayConfig and selects the preferred, primary or
// first monitor. ok is false whenever the D-Bus path yields nothing, so the
// caller falls back to xrandr.
func (g *Gnome) mutterState(ctx context.Context, preferred string) (State, bool) {
	if g.env.SessionType() != desktop.SessionWayland || g.bus == nil {
		return State{}, false
	}

	monitors, err := g.bus.CurrentState(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("mutter DisplayConfig query failed; falling back to xrandr")
		return State{}, false
	}

	m, ok := selectMutterMonitor(monitors, preferred)
	if !ok || m.Width <= 0 || m.Height <= 0 {
		return State{}, false
	}

	log.Debug().
		Str("output", m.Connector).
		Int("width", m.Width).
		Int("height", m.Height).
		Float64("refresh_rate", m.RefreshRate).
		Msg("mutter display state")

	return State{
		Name:        m.Connector,
		Width:       m.Width,
		Height:      m.Height,
		RefreshRate: m.RefreshRate,
	}, true
}

func selectMutterMonitor(monitors []mutterMonitor, preferred string) (mutterMonitor, bool) {
	if preferred != "" {
		for _, m := range monitors {
			if m.Connector == preferred {
				return m, true
			}
		}
		return mutterMonitor{}, false
	}

	for _, m := range monitors {
		if m.Primary {
			return m, true
		}
	}
	if len(monitors) > 0 {
		return monitors[0], true
	}

	return mutterMonitor{}, false
}

// experimentalFeatures probes mutter's experimental-features setting for the
// HDR and VRR toggles. Both report false when gsettings is not installed or
// the query fails.
func (g *Gnome) experimentalFeatures(ctx context.Context) (hdr, vrr bool) {
	if !g.env.HasTool(gsettingsBin) {
		log.Debug().Msg("gsettings not installed; reporting hdr and vrr disabled")
		return false, false
	}

	out, err := g.run.Output(ctx, gsettingsBin, "get", mutterSchema, mutterFeaturesKey)
	if err != nil {
		log.Debug().Err(err).Msg("gsettings query failed; reporting hdr and vrr disabled")
		return false, false
	}

	features := string(out)
	return strings.Contains(features, "'"+featureHDR+"'"),
		strings.Contains(features, "'"+featureVRR+"'")
}
