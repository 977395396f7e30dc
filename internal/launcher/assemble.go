// Package launcher assembles the final compositor command line and runs it
// with its lifecycle hooks.
package launcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gamescope-tools/gamescoperun/internal/config"
	"github.com/gamescope-tools/gamescoperun/internal/desktop"
	"github.com/gamescope-tools/gamescoperun/internal/display"
	"github.com/gamescope-tools/gamescoperun/internal/execx"
	"github.com/gamescope-tools/gamescoperun/internal/optset"
)

// Compositor flags managed by autodetection.
const (
	FlagWidth  = "-W"
	FlagHeight = "-H"
	FlagOutput = "-O"
	FlagHDR    = "--hdr-enabled"
	FlagVRR    = "--adaptive-sync"
)

// Assemble produces the effective compositor argument set: the configured
// base arguments (or the user's own, which replace them wholesale), merged
// with auto-detected display state. Any failure in a requested autodetect
// feature is fatal; there is no degraded fallback. Under the no-compositor
// profile the display is never queried.
func Assemble(ctx context.Context, cfg *config.Config, env desktop.Env, run execx.Runner, userArgs string) (*optset.Set, error) {
	base := cfg.BaseArgs
	if strings.TrimSpace(userArgs) != "" {
		log.Debug().Str("args", userArgs).Msg("user arguments replace configured base arguments")
		base = userArgs
	}
	args := optset.Parse(base)

	if cfg.Profile == config.ProfileNoCompositor {
		return args, nil
	}
	if !cfg.AutoResolution && !cfg.AutoHDR && !cfg.AutoVRR {
		return args, nil
	}

	variant := env.Detect()
	provider, err := display.For(variant, env, run)
	if err != nil {
		log.Error().Str("desktop", string(variant)).Msg("autodetect requested on an unsupported desktop")
		return nil, fmt.Errorf("selecting display provider: %w", err)
	}

	if err := provider.Preflight(); err != nil {
		log.Error().Err(err).Str("desktop", string(variant)).Msg("display preflight failed")
		return nil, fmt.Errorf("display preflight for %s: %w", variant, err)
	}

	preferred, _ := args.Value(FlagOutput)
	state, err := provider.Current(ctx, preferred)
	if err != nil {
		log.Error().Err(err).Str("desktop", string(variant)).Msg("display query failed")
		return nil, fmt.Errorf("querying display state: %w", err)
	}

	if cfg.AutoResolution {
		if !state.Valid() {
			return nil, &display.MalformedStateError{Output: state.Name, Width: state.Width, Height: state.Height}
		}
		args.Put(FlagWidth, strconv.Itoa(state.Width))
		args.Put(FlagHeight, strconv.Itoa(state.Height))
	}
	if cfg.AutoHDR && state.HDR {
		args.Add(FlagHDR)
	}
	if cfg.AutoVRR && state.VRR {
		args.Add(FlagVRR)
	}

	log.Info().
		Str("output", state.Name).
		Str("args", args.String()).
		Msg("assembled compositor arguments")

	return args, nil
}
