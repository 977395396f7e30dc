package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamescope-tools/gamescoperun/internal/desktop"
)

func writeLayer(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func envWith(vars map[string]string) desktop.Env {
	return desktop.Env{Getenv: func(k string) string { return vars[k] }}
}

func TestResolveGlobalOnly(t *testing.T) {
	global := filepath.Join(t.TempDir(), "gamescoperun.conf")
	writeLayer(t, global, `
GAMESCOPE_ARGS="-f --mangoapp"
AUTO_RESOLUTION=true
AUTO_HDR=false
MANGOHUD=1
export PROTON_LOG=1
`)

	cfg, err := Resolve(envWith(nil), global, nil)
	require.NoError(t, err)

	assert.Equal(t, ProfileDefault, cfg.Profile)
	assert.Equal(t, "-f --mangoapp", cfg.BaseArgs)
	assert.Equal(t, "gamescope", cfg.Binary)
	assert.True(t, cfg.AutoResolution)
	assert.False(t, cfg.AutoHDR)
	assert.Equal(t, map[string]string{"MANGOHUD": "1", "PROTON_LOG": "1"}, cfg.Exports)
}

func TestResolveAppOverrideMergesByKey(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "gamescoperun.conf")
	writeLayer(t, global, `
GAMESCOPE_ARGS="-f"
AUTO_RESOLUTION=true
MANGOHUD=1
`)
	writeLayer(t, filepath.Join(dir, "apps", "440.conf"), `
GAMESCOPE_ARGS="-b -W 1280 -H 720"
`)

	cfg, err := Resolve(envWith(map[string]string{"SteamAppId": "440"}), global, nil)
	require.NoError(t, err)

	assert.Equal(t, "440", cfg.AppID)
	// overridden by the app layer
	assert.Equal(t, "-b -W 1280 -H 720", cfg.BaseArgs)
	// settings only in the global layer persist
	assert.True(t, cfg.AutoResolution)
	assert.Equal(t, "1", cfg.Exports["MANGOHUD"])
}

func TestResolveAppIDFromCommandToken(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "gamescoperun.conf")
	writeLayer(t, global, `GAMESCOPE_ARGS="-f"`)
	writeLayer(t, filepath.Join(dir, "apps", "620.conf"), `AUTO_VRR=yes`)

	cfg, err := Resolve(envWith(nil), global, []string{"/bin/sh", "-c", "run", "AppId=620"})
	require.NoError(t, err)

	assert.Equal(t, "620", cfg.AppID)
	assert.True(t, cfg.AutoVRR)
}

func TestResolveProfiles(t *testing.T) {
	global := filepath.Join(t.TempDir(), "gamescoperun.conf")
	writeLayer(t, global, `
GAMESCOPE_ARGS="-f"
GAMESCOPE_COMPAT_ARGS="--backend sdl"
`)

	cfg, err := Resolve(envWith(map[string]string{EnvDisable: "1"}), global, nil)
	require.NoError(t, err)
	assert.Equal(t, ProfileNoCompositor, cfg.Profile)
	assert.Empty(t, cfg.BaseArgs)

	cfg, err = Resolve(envWith(map[string]string{EnvCompat: "true"}), global, nil)
	require.NoError(t, err)
	assert.Equal(t, ProfileCompat, cfg.Profile)
	assert.Equal(t, "--backend sdl", cfg.BaseArgs)

	// compat falls back to GAMESCOPE_ARGS when no compat args are set
	writeLayer(t, global, `GAMESCOPE_ARGS="-f"`)
	cfg, err = Resolve(envWith(map[string]string{EnvCompat: "true"}), global, nil)
	require.NoError(t, err)
	assert.Equal(t, "-f", cfg.BaseArgs)
}

func TestResolveNoCompositorDisablesAutodetect(t *testing.T) {
	global := filepath.Join(t.TempDir(), "gamescoperun.conf")
	writeLayer(t, global, `
GAMESCOPE_ARGS="-f"
AUTO_RESOLUTION=true
AUTO_HDR=true
AUTO_VRR=true
`)

	cfg, err := Resolve(envWith(map[string]string{EnvDisable: "1"}), global, nil)
	require.NoError(t, err)

	assert.Equal(t, ProfileNoCompositor, cfg.Profile)
	assert.False(t, cfg.AutoResolution)
	assert.False(t, cfg.AutoHDR)
	assert.False(t, cfg.AutoVRR)
}

func TestResolveMissingLayers(t *testing.T) {
	// an explicitly given global path must exist
	cfg, err := Resolve(envWith(nil), filepath.Join(t.TempDir(), "gamescoperun.conf"), nil)
	require.Error(t, err)

	// absent app override is fine
	dir := t.TempDir()
	global := filepath.Join(dir, "gamescoperun.conf")
	writeLayer(t, global, `GAMESCOPE_ARGS="-f"`)
	cfg, err = Resolve(envWith(map[string]string{"SteamAppId": "999"}), global, nil)
	require.NoError(t, err)
	assert.Equal(t, "-f", cfg.BaseArgs)
}

func TestResolveBinaryOverride(t *testing.T) {
	global := filepath.Join(t.TempDir(), "gamescoperun.conf")
	writeLayer(t, global, `GAMESCOPE_BIN=/opt/gamescope/bin/gamescope`)

	cfg, err := Resolve(envWith(nil), global, nil)
	require.NoError(t, err)
	assert.Equal(t, "/opt/gamescope/bin/gamescope", cfg.Binary)
}
