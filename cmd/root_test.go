package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRootArgsSplitsAtDash(t *testing.T) {
	opts, command, err := parseRootArgs([]string{"-W", "1920", "-H", "1080", "--", "steam", "-applaunch", "440"})
	require.NoError(t, err)

	assert.Equal(t, []string{"-W", "1920", "-H", "1080"}, opts.userArgs)
	assert.Equal(t, []string{"steam", "-applaunch", "440"}, command)
}

func TestParseRootArgsNoSeparator(t *testing.T) {
	opts, command, err := parseRootArgs([]string{"steam", "-applaunch", "440"})
	require.NoError(t, err)

	assert.Empty(t, opts.userArgs)
	assert.Equal(t, []string{"steam", "-applaunch", "440"}, command)
}

func TestParseRootArgsLauncherFlags(t *testing.T) {
	opts, command, err := parseRootArgs([]string{"-c", "/tmp/x.conf", "-v", "-f", "--", "steam"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/x.conf", opts.configPath)
	assert.True(t, opts.verbose)
	assert.Equal(t, []string{"-f"}, opts.userArgs)
	assert.Equal(t, []string{"steam"}, command)
}

func TestParseRootArgsConfigNeedsValue(t *testing.T) {
	_, _, err := parseRootArgs([]string{"-c", "--", "steam"})
	require.Error(t, err)
}

func TestParseRootArgsEmpty(t *testing.T) {
	opts, command, err := parseRootArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, opts.userArgs)
	assert.Empty(t, command)
}

func TestParseRootArgsTrailingSeparatorOnly(t *testing.T) {
	_, command, err := parseRootArgs([]string{"--"})
	require.NoError(t, err)
	assert.Empty(t, command)
}
