// Package cmd wires the gamescoperun CLI.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gamescope-tools/gamescoperun/internal/config"
	"github.com/gamescope-tools/gamescoperun/internal/desktop"
	"github.com/gamescope-tools/gamescoperun/internal/execx"
	"github.com/gamescope-tools/gamescoperun/internal/launcher"
)

const version = "0.2.0"

// Run executes the CLI and returns the process exit code. A wrapped command's
// own exit status is passed through unchanged.
func Run() int {
	initLogging(os.Getenv("DEBUG") == "true")

	if err := newRootCommand().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		log.Error().Err(err).Msg("gamescoperun failed")
		return 1
	}

	return 0
}

func initLogging(verbose bool) {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// exitError carries a wrapped command's non-zero exit status through cobra.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.code)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gamescoperun [flags] [gamescope args] -- <command> [args...]",
		Short: "Run a command inside the gamescope compositor with per-game defaults",
		Long: `gamescoperun wraps a command (typically Steam's %command%) in the gamescope
compositor. Compositor arguments come from the global config file, a per-app
override layer, and live display autodetection for resolution, HDR and VRR.

Gamescope arguments given on the command line replace the configured ones.

Config files:
  ` + config.DefaultPath() + `
  ` + "(per-app overrides in the apps/ directory next to it)",
		// gamescope args like -W would be eaten by pflag; parsed manually
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               runRoot,
	}
	cmd.AddCommand(newCheckCommand(), newVersionCommand())

	return cmd
}

// rootOptions are the launcher's own flags, scanned out of the tokens before
// the -- separator.
type rootOptions struct {
	configPath string
	verbose    bool
	help       bool
	userArgs   []string
}

func runRoot(cmd *cobra.Command, args []string) error {
	opts, command, err := parseRootArgs(args)
	if err != nil {
		return err
	}
	if opts.help {
		return cmd.Help()
	}
	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if len(command) == 0 {
		_ = cmd.Help()
		return errors.New("missing command to launch (everything after -- is the command)")
	}

	env := desktop.Env{}
	run := execx.System{}

	cfg, err := config.Resolve(env, opts.configPath, command)
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}
	log.Debug().
		Str("profile", string(cfg.Profile)).
		Str("app_id", cfg.AppID).
		Str("base_args", cfg.BaseArgs).
		Msg("configuration resolved")

	gsArgs, err := launcher.Assemble(cmd.Context(), cfg, env, run, strings.Join(opts.userArgs, " "))
	if err != nil {
		return err
	}

	code, err := launcher.Launch(cmd.Context(), cfg, gsArgs, command)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}

	return nil
}

// parseRootArgs splits the raw argument list at the first -- and scans the
// launcher's own flags out of the left half. Remaining left-half tokens are
// user-supplied gamescope arguments. With no separator the whole list is the
// command.
func parseRootArgs(args []string) (rootOptions, []string, error) {
	var opts rootOptions

	before := args
	var command []string
	for i, a := range args {
		if a == "--" {
			before = args[:i]
			command = args[i+1:]
			break
		}
	}
	if command == nil {
		before, command = nil, args
	}

	for i := 0; i < len(before); i++ {
		switch a := before[i]; a {
		case "-c", "--config":
			if i+1 >= len(before) {
				return opts, nil, fmt.Errorf("flag %s requires a value", a)
			}
			i++
			opts.configPath = before[i]
		case "-v", "--verbose":
			opts.verbose = true
		case "-h", "--help":
			opts.help = true
		default:
			opts.userArgs = append(opts.userArgs, a)
		}
	}

	return opts, command, nil
}
