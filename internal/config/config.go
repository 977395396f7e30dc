// Package config resolves layered gamescoperun configuration: a global layer,
// then a per-app override layer, merged key by key. Layers are shell-style
// KEY=value files parsed as data, never sourced.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/gamescope-tools/gamescoperun/internal/desktop"
)

const (
	appDirName     = "gamescoperun"
	globalFileName = "gamescoperun.conf"
	appsDirName    = "apps"

	defaultBinary = "gamescope"
)

// Recognized configuration keys. Anything else is exported verbatim into the
// launched command's environment.
const (
	KeyArgs       = "GAMESCOPE_ARGS"
	KeyCompatArgs = "GAMESCOPE_COMPAT_ARGS"
	KeyBinary     = "GAMESCOPE_BIN"
	KeyAutoRes    = "AUTO_RESOLUTION"
	KeyAutoHDR    = "AUTO_HDR"
	KeyAutoVRR    = "AUTO_VRR"
	KeyPreHook    = "PRE_HOOK"
	KeyPostHook   = "POST_HOOK"
)

// Environment signals selecting a profile for the run.
const (
	EnvDisable = "GAMESCOPERUN_DISABLE"
	EnvCompat  = "GAMESCOPERUN_COMPAT"
)

// Profile names the base configuration applied before the override layer.
type Profile string

const (
	ProfileDefault      Profile = "default"
	ProfileNoCompositor Profile = "no-compositor"
	ProfileCompat       Profile = "compat"
)

// Config is the effective configuration for a single run.
type Config struct {
	Profile        Profile
	AppID          string
	BaseArgs       string
	Binary         string
	AutoResolution bool
	AutoHDR        bool
	AutoVRR        bool
	PreHook        string
	PostHook       string
	Exports        map[string]string
}

// DefaultPath is the global config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appDirName, globalFileName)
}

// Resolve loads the global layer at globalPath (the default path when empty),
// merges the per-app override layer for the app ID of this run, and applies
// the profile selected by environment signals. command is the command line
// being launched, used for app ID extraction.
func Resolve(env desktop.Env, globalPath string, command []string) (*Config, error) {
	explicit := globalPath != ""
	if !explicit {
		globalPath = DefaultPath()
	}

	layer, err := readLayer(globalPath, explicit)
	if err != nil {
		return nil, err
	}

	appID := detectAppID(env, command)
	if appID != "" {
		overridePath := filepath.Join(filepath.Dir(globalPath), appsDirName, appID+".conf")
		override, err := readLayer(overridePath, false)
		if err != nil {
			return nil, err
		}
		if len(override) > 0 {
			log.Debug().Str("app_id", appID).Str("path", overridePath).Msg("applying app override layer")
		}
		for k, v := range override {
			layer[k] = v
		}
	}

	profile := profileFor(env)
	cfg := &Config{
		Profile:        profile,
		AppID:          appID,
		BaseArgs:       baseArgsFor(profile, layer),
		Binary:         layer[KeyBinary],
		AutoResolution: truthy(layer[KeyAutoRes]),
		AutoHDR:        truthy(layer[KeyAutoHDR]),
		AutoVRR:        truthy(layer[KeyAutoVRR]),
		PreHook:        layer[KeyPreHook],
		PostHook:       layer[KeyPostHook],
		Exports:        exports(layer),
	}
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if profile == ProfileNoCompositor {
		// the command runs bare, so display state is never consulted
		cfg.AutoResolution = false
		cfg.AutoHDR = false
		cfg.AutoVRR = false
	}

	return cfg, nil
}

// readLayer parses one KEY=value file into a map. A missing file is an empty
// layer unless the path was given explicitly.
func readLayer(path string, mustExist bool) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if mustExist {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config layer: %w", err)
	}

	layer, err := godotenv.Unmarshal(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing config layer %s: %w", path, err)
	}

	return layer, nil
}

func profileFor(env desktop.Env) Profile {
	switch {
	case truthy(env.Var(EnvDisable)):
		return ProfileNoCompositor
	case truthy(env.Var(EnvCompat)):
		return ProfileCompat
	default:
		return ProfileDefault
	}
}

func baseArgsFor(profile Profile, layer map[string]string) string {
	switch profile {
	case ProfileNoCompositor:
		return ""
	case ProfileCompat:
		if args, ok := layer[KeyCompatArgs]; ok {
			return args
		}
		return layer[KeyArgs]
	default:
		return layer[KeyArgs]
	}
}

// detectAppID resolves the per-run identifier: Steam's env vars first, then
// an AppId=<n> token inside the launched command.
func detectAppID(env desktop.Env, command []string) string {
	if id := env.Var("SteamAppId"); id != "" {
		return id
	}
	if id := env.Var("STEAM_COMPAT_APP_ID"); id != "" {
		return id
	}

	for _, tok := range command {
		if rest, ok := strings.CutPrefix(tok, "AppId="); ok && rest != "" {
			return rest
		}
	}

	return ""
}

func exports(layer map[string]string) map[string]string {
	reserved := map[string]bool{
		KeyArgs: true, KeyCompatArgs: true, KeyBinary: true,
		KeyAutoRes: true, KeyAutoHDR: true, KeyAutoVRR: true,
		KeyPreHook: true, KeyPostHook: true,
	}

	out := map[string]string{}
	for k, v := range layer {
		if !reserved[k] {
			out[k] = v
		}
	}

	return out
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
