// Package config persists the application-wide and per-game configuration
// documents under the data directory described in spec §6.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agistaris/sigillink/internal/domain"
)

const appDirName = "sigillink"

// AppConfig is the top-level settings document at <base_data_dir>/config.json.
type AppConfig struct {
	ActiveGame domain.GameID `json:"active_game"`
	LinkMethod string        `json:"link_method"`
}

// GameConfig is one game's settings document at <data_dir>/config.json, per
// §6's filesystem layout.
type GameConfig struct {
	GameID        domain.GameID `json:"game_id"`
	GameName      string        `json:"game_name"`
	DataDir       string        `json:"data_dir"`
	GameRoot      string        `json:"game_root"`
	LarianDir     string        `json:"larian_dir"`
	ActiveProfile string        `json:"active_profile"`
}

// BaseDataDir resolves the application's base data directory, honoring
// XDG_DATA_HOME, falling back to ~/.local/share.
func BaseDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", appDirName), nil
}

// DataDirForGame returns the per-game state directory under the base data
// directory, named after the game id.
func DataDirForGame(game domain.GameID) (string, error) {
	base, err := BaseDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, string(game)), nil
}

// LoadOrCreateAppConfig reads <base_data_dir>/config.json, creating it with
// defaults (BG3, symlink) if absent.
func LoadOrCreateAppConfig() (*AppConfig, error) {
	base, err := BaseDataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create app data dir: %w", err)
	}

	path := filepath.Join(base, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read app config: %w", err)
		}
		cfg := &AppConfig{ActiveGame: domain.GameBG3, LinkMethod: domain.LinkSymlink.String()}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse app config: %w", err)
	}
	return &cfg, nil
}

// Save writes c to <base_data_dir>/config.json.
func (c *AppConfig) Save() error {
	base, err := BaseDataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("create app data dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize app config: %w", err)
	}
	return os.WriteFile(filepath.Join(base, "config.json"), data, 0o644)
}

// LoadOrCreateGameConfig reads <data_dir>/config.json for game, creating it
// with auto-detected paths (falling back to empty strings when detection
// fails, per PathNotSet's "deferred status, not a failure" handling) if
// absent.
func LoadOrCreateGameConfig(game domain.GameID, gameName string, detect func() (domain.GamePaths, error)) (*GameConfig, error) {
	dataDir, err := DataDirForGame(game)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create game data dir: %w", err)
	}

	path := filepath.Join(dataDir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read game config: %w", err)
		}

		var paths domain.GamePaths
		if detect != nil {
			if found, detectErr := detect(); detectErr == nil {
				paths = found
			}
		}

		cfg := &GameConfig{
			GameID: game, GameName: gameName, DataDir: dataDir,
			GameRoot: paths.GameRoot, LarianDir: paths.LarianDir, ActiveProfile: "Default",
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg GameConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse game config: %w", err)
	}
	cfg.GameID = game
	cfg.GameName = gameName
	cfg.DataDir = dataDir
	return &cfg, nil
}

// Save writes c to <data_dir>/config.json.
func (c *GameConfig) Save() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create game data dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize game config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.DataDir, "config.json"), data, 0o644)
}

// Paths reconstructs domain.GamePaths from the stored roots, mirroring
// bg3.DetectPaths' derivation of the Data/Mods/PlayerProfiles/modsettings
// subpaths.
func (c *GameConfig) Paths() domain.GamePaths {
	profilesDir := filepath.Join(c.LarianDir, "PlayerProfiles")
	return domain.GamePaths{
		GameRoot:        c.GameRoot,
		DataDir:         filepath.Join(c.GameRoot, "Data"),
		LarianDir:       c.LarianDir,
		LarianModsDir:   filepath.Join(c.LarianDir, "Mods"),
		ProfilesDir:     profilesDir,
		ModSettingsPath: filepath.Join(profilesDir, "Public", "modsettings.lsx"),
	}
}
