package display

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gamescope-tools/gamescoperun/internal/desktop"
	"github.com/gamescope-tools/gamescoperun/internal/execx"
)

const (
	xrandrBin = "xrandr"

	// fallbackRefreshRate is used when no active-mode marker can be parsed.
	fallbackRefreshRate = 60.0
)

var (
	// geometry token on a connected-output line, e.g. 1920x1080+0+0
	xrandrGeomRe = regexp.MustCompile(`(\d+)x(\d+)\+\d+\+\d+`)

	// refresh rate carrying the current-mode marker, e.g. 59.94* or 60.00*+
	xrandrRateRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\*`)
)

type xrandrOutput struct {
	name        string
	width       int
	height      int
	refreshRate float64
	primary     bool
}

// XRandr queries display state from xrandr's default textual listing. It has
// no way to observe HDR or VRR state, so both always report disabled.
type XRandr struct {
	env desktop.Env
	run execx.Runner
}

func NewXRandr(env desktop.Env, run execx.Runner) *XRandr {
	return &XRandr{env: env, run: run}
}

func (x *XRandr) Preflight() error {
	if !x.env.HasTool(xrandrBin) {
		return &MissingDepsError{Missing: []string{xrandrBin}}
	}

	return nil
}

func (x *XRandr) Current(ctx context.Context, preferredOutput string) (State, error) {
	out, err := queryXRandr(ctx, x.run, preferredOutput)
	if err != nil {
		return State{}, err
	}

	return State{
		Name:        out.name,
		Width:       out.width,
		Height:      out.height,
		RefreshRate: out.refreshRate,
	}, nil
}

func queryXRandr(ctx context.Context, run execx.Runner, preferred string) (xrandrOutput, error) {
	raw, err := run.Output(ctx, xrandrBin)
	if err != nil {
		return xrandrOutput{}, &QueryError{Tool: xrandrBin, Err: err}
	}

	outputs := parseXRandr(string(raw))
	if len(outputs) == 0 {
		return xrandrOutput{}, &QueryError{Tool: xrandrBin, Reason: "no connected outputs"}
	}

	out, err := selectXRandrOutput(outputs, preferred)
	if err != nil {
		return xrandrOutput{}, err
	}

	if out.width <= 0 || out.height <= 0 {
		return xrandrOutput{}, &MalformedStateError{Output: out.name, Width: out.width, Height: out.height}
	}

	log.Debug().
		Str("output", out.name).
		Int("width", out.width).
		Int("height", out.height).
		Float64("refresh_rate", out.refreshRate).
		Bool("primary", out.primary).
		Msg("xrandr display state")

	return out, nil
}

// parseXRandr extracts connected outputs from xrandr's default listing. Each
// connected-output line carries the name, an optional "primary" token and the
// active geometry; the refresh rate comes from the following mode lines,
// where the current mode's rate has a trailing '*'.
func parseXRandr(text string) []xrandrOutput {
	var outputs []xrandrOutput
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] != "connected" {
			continue
		}

		out := xrandrOutput{
			name:        fields[0],
			refreshRate: fallbackRefreshRate,
		}
		for _, f := range fields[2:] {
			if f == "primary" {
				out.primary = true
				break
			}
		}

		if m := xrandrGeomRe.FindStringSubmatch(line); m != nil {
			out.width, _ = strconv.Atoi(m[1])
			out.height, _ = strconv.Atoi(m[2])
		}

		if rate, ok := currentModeRate(lines[i+1:]); ok {
			out.refreshRate = rate
		}

		outputs = append(outputs, out)
	}

	return outputs
}

// currentModeRate scans an output's mode lines (every line up to the next
// output header) for the rate flagged as active.
func currentModeRate(lines []string) (float64, bool) {
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 1 && (fields[1] == "connected" || fields[1] == "disconnected") {
			break
		}

		if m := xrandrRateRe.FindStringSubmatch(line); m != nil {
			rate, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return 0, false
			}
			return rate, true
		}
	}

	return 0, false
}

// selectXRandrOutput prefers an exact name match, then the primary output,
// then the first connected output.
func selectXRandrOutput(outputs []xrandrOutput, preferred string) (xrandrOutput, error) {
	if preferred != "" {
		for _, o := range outputs {
			if o.name == preferred {
				return o, nil
			}
		}
		return xrandrOutput{}, &QueryError{
			Tool:   xrandrBin,
			Reason: fmt.Sprintf("no connected output named %q", preferred),
		}
	}

	for _, o := range outputs {
		if o.primary {
			return o, nil
		}
	}

	return outputs[0], nil
}
