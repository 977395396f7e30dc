package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"

	"github.com/gamescope-tools/gamescoperun/internal/config"
	"github.com/gamescope-tools/gamescoperun/internal/optset"
)

// Launch runs the command, wrapped in the compositor unless the no-compositor
// profile is active, and returns the child's exit code. The pre hook runs
// first and only warns on failure; the post hook runs unconditionally after
// the command exits, even when the launch itself failed.
func Launch(ctx context.Context, cfg *config.Config, args *optset.Set, command []string) (code int, err error) {
	if len(command) == 0 {
		return 0, errors.New("no command to launch")
	}

	env := childEnv(cfg)
	runHook(ctx, "pre", cfg.PreHook, env)
	defer runHook(ctx, "post", cfg.PostHook, env)

	argv := buildArgv(cfg, args, command)
	log.Info().Strs("argv", argv).Msg("launching")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = env

	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return exit.ExitCode(), nil
		}
		return -1, fmt.Errorf("launching %s: %w", argv[0], err)
	}

	return 0, nil
}

// buildArgv produces the final command line. With the compositor active the
// launched command goes after the compositor's own argument separator.
func buildArgv(cfg *config.Config, args *optset.Set, command []string) []string {
	if cfg.Profile == config.ProfileNoCompositor {
		return command
	}

	argv := append([]string{cfg.Binary}, args.Tokens()...)
	argv = append(argv, "--")
	return append(argv, command...)
}

// childEnv extends the process environment with the config layer's
// passthrough exports.
func childEnv(cfg *config.Config) []string {
	env := os.Environ()
	for k, v := range cfg.Exports {
		env = append(env, k+"="+v)
	}

	return env
}

// runHook executes a configured hook snippet through the shell. Hook failures
// never abort the run.
func runHook(ctx context.Context, name, snippet string, env []string) {
	if snippet == "" {
		return
	}

	log.Debug().Str("hook", name).Str("command", snippet).Msg("running hook")
	cmd := exec.CommandContext(ctx, "sh", "-c", snippet)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	cmd.Env = env

	if err := cmd.Run(); err != nil {
		log.Warn().Err(err).Str("hook", name).Msg("hook failed; continuing")
	}
}
