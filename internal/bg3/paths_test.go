package bg3_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/bg3"
)

func TestDetectPaths_WithOverrides(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Data"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))

	larian := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(larian, "PlayerProfiles"), 0o755))

	paths, err := bg3.DetectPaths(root, larian)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "Data"), paths.DataDir)
	require.Equal(t, filepath.Join(larian, "Mods"), paths.LarianModsDir)
	require.Equal(t, filepath.Join(larian, "PlayerProfiles", "Public", "modsettings.lsx"), paths.ModSettingsPath)
}

func TestDetectPaths_RejectsInvalidGameRoot(t *testing.T) {
	root := t.TempDir()
	larian := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(larian, "PlayerProfiles"), 0o755))

	_, err := bg3.DetectPaths(root, larian)
	require.Error(t, err)
}

func TestLooksLikeGameRoot(t *testing.T) {
	dir := t.TempDir()
	require.False(t, bg3.LooksLikeGameRoot(dir))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Data"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.True(t, bg3.LooksLikeGameRoot(dir))
}
