package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/storage/config"
)

func TestLoadOrCreateAppConfig_CreatesDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := config.LoadOrCreateAppConfig()
	require.NoError(t, err)
	require.Equal(t, domain.GameBG3, cfg.ActiveGame)

	reloaded, err := config.LoadOrCreateAppConfig()
	require.NoError(t, err)
	require.Equal(t, cfg.ActiveGame, reloaded.ActiveGame)
}

func TestLoadOrCreateGameConfig_RoundTrips(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	detect := func() (domain.GamePaths, error) {
		return domain.GamePaths{GameRoot: "/opt/bg3", LarianDir: "/home/user/larian"}, nil
	}

	cfg, err := config.LoadOrCreateGameConfig(domain.GameBG3, "Baldur's Gate 3", detect)
	require.NoError(t, err)
	require.Equal(t, "/opt/bg3", cfg.GameRoot)
	require.Equal(t, "Default", cfg.ActiveProfile)

	cfg.ActiveProfile = "Hardcore"
	require.NoError(t, cfg.Save())

	reloaded, err := config.LoadOrCreateGameConfig(domain.GameBG3, "Baldur's Gate 3", detect)
	require.NoError(t, err)
	require.Equal(t, "Hardcore", reloaded.ActiveProfile)
}

func TestGameConfig_PathsDerivesSubpaths(t *testing.T) {
	cfg := &config.GameConfig{GameRoot: "/opt/bg3", LarianDir: "/home/user/larian"}
	paths := cfg.Paths()
	require.Equal(t, "/opt/bg3/Data", paths.DataDir)
	require.Equal(t, "/home/user/larian/Mods", paths.LarianModsDir)
	require.Equal(t, "/home/user/larian/PlayerProfiles/Public/modsettings.lsx", paths.ModSettingsPath)
}
