package display

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gamescope-tools/gamescoperun/internal/desktop"
	"github.com/gamescope-tools/gamescoperun/internal/execx"
)

const kscreenBin = "kscreen-doctor"

// vrrPolicy values reported by kscreen: 0 never, 1 always, 2 automatic.
const (
	vrrPolicyNever     = 0
	vrrPolicyAlways    = 1
	vrrPolicyAutomatic = 2
)

type (
	kscreenDoc struct {
		Outputs []kscreenOutput `json:"outputs"`
	}

	kscreenOutput struct {
		Name          string        `json:"name"`
		Enabled       bool          `json:"enabled"`
		Priority      int           `json:"priority"`
		CurrentModeID string        `json:"currentModeId"`
		HDR           bool          `json:"hdr"`
		VRRPolicy     int           `json:"vrrPolicy"`
		Modes         []kscreenMode `json:"modes"`
	}

	kscreenMode struct {
		ID          string      `json:"id"`
		RefreshRate float64     `json:"refreshRate"`
		Size        kscreenSize `json:"size"`
	}

	kscreenSize struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
)

// KScreen queries display state on KDE Plasma via kscreen-doctor.
type KScreen struct {
	env desktop.Env
	run execx.Runner
}

func NewKScreen(env desktop.Env, run execx.Runner) *KScreen {
	return &KScreen{env: env, run: run}
}

func (k *KScreen) Preflight() error {
	var missing []string
	if k.env.Var("KDE_FULL_SESSION") == "" {
		missing = append(missing, "KDE session (KDE_FULL_SESSION not set)")
	}
	if !k.env.HasTool(kscreenBin) {
		missing = append(missing, kscreenBin)
	}

	if len(missing) > 0 {
		return &MissingDepsError{Missing: missing}
	}

	return nil
}

func (k *KScreen) Current(ctx context.Context, preferredOutput string) (State, error) {
	raw, err := k.run.Output(ctx, kscreenBin, "--json")
	if err != nil {
		return State{}, &QueryError{Tool: kscreenBin, Err: err}
	}

	var doc kscreenDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return State{}, &QueryError{Tool: kscreenBin, Reason: fmt.Sprintf("unmarshaling json: %v", err)}
	}
	if len(doc.Outputs) == 0 {
		return State{}, &QueryError{Tool: kscreenBin, Reason: "no outputs reported"}
	}

	out, err := selectKScreenOutput(doc.Outputs, preferredOutput)
	if err != nil {
		return State{}, err
	}

	mode, ok := out.currentMode()
	if !ok {
		return State{}, &QueryError{
			Tool:   kscreenBin,
			Reason: fmt.Sprintf("output %s has no mode matching currentModeId %q", out.Name, out.CurrentModeID),
		}
	}

	if mode.Size.Width <= 0 || mode.Size.Height <= 0 {
		return State{}, &MalformedStateError{Output: out.Name, Width: mode.Size.Width, Height: mode.Size.Height}
	}

	s := State{
		Name:        out.Name,
		Width:       mode.Size.Width,
		Height:      mode.Size.Height,
		RefreshRate: mode.RefreshRate,
		HDR:         out.HDR,
		VRR:         out.VRRPolicy == vrrPolicyAlways || out.VRRPolicy == vrrPolicyAutomatic,
	}
	log.Debug().
		Str("output", s.Name).
		Int("width", s.Width).
		Int("height", s.Height).
		Float64("refresh_rate", s.RefreshRate).
		Bool("hdr", s.HDR).
		Bool("vrr", s.VRR).
		Msg("kscreen display state")

	return s, nil
}

// selectKScreenOutput picks the output to report on: an exact preferred-name
// match, a lone output, or the enabled output with the lowest priority value
// (lower rank is more primary).
func selectKScreenOutput(outputs []kscreenOutput, preferred string) (kscreenOutput, error) {
	if preferred != "" {
		for _, o := range outputs {
			if o.Name == preferred {
				return o, nil
			}
		}
		return kscreenOutput{}, &QueryError{
			Tool:   kscreenBin,
			Reason: fmt.Sprintf("no output named %q", preferred),
		}
	}

	if len(outputs) == 1 {
		return outputs[0], nil
	}

	best := -1
	for i, o := range outputs {
		if !o.Enabled {
			continue
		}
		if best < 0 || o.Priority < outputs[best].Priority {
			best = i
		}
	}
	if best < 0 {
		return kscreenOutput{}, &QueryError{Tool: kscreenBin, Reason: "no enabled outputs"}
	}

	return outputs[best], nil
}

func (o kscreenOutput) currentMode() (kscreenMode, bool) {
	for _, m := range o.Modes {
		if m.ID == o.CurrentModeID {
			return m, true
		}
	}

	return kscreenMode{}, false
}
