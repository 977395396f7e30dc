package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamescope-tools/gamescoperun/internal/desktop"
	"github.com/gamescope-tools/gamescoperun/internal/display"
	"github.com/gamescope-tools/gamescoperun/internal/execx"
)

// newCheckCommand reports what autodetection would see: desktop variant,
// preflight status and the resolved display state. Meant for diagnosing
// missing-dependency failures outside a real launch.
func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Print detected desktop, preflight status and display state",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	env := desktop.Env{}
	variant := env.Detect()

	fmt.Printf("Desktop:  %s\n", variant)
	fmt.Printf("Session:  %s\n", env.SessionType())

	provider, err := display.For(variant, env, execx.System{})
	if err != nil {
		fmt.Printf("Preflight: failed (%v)\n", err)
		return nil
	}

	if err := provider.Preflight(); err != nil {
		fmt.Printf("Preflight: failed (%v)\n", err)
		return nil
	}
	fmt.Println("Preflight: ok")

	state, err := provider.Current(cmd.Context(), "")
	if err != nil {
		fmt.Printf("Display:  query failed (%v)\n", err)
		return nil
	}

	fmt.Printf("Display:  %s %dx%d@%.2f\n", state.Name, state.Width, state.Height, state.RefreshRate)
	fmt.Printf("HDR:      %t\n", state.HDR)
	fmt.Printf("VRR:      %t\n", state.VRR)
	if variant == desktop.GenericX11 {
		fmt.Println("(HDR/VRR cannot be detected over plain xrandr and always read as disabled)")
	}

	return nil
}
