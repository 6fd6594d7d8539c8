package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
)

func TestLoadLibrary_MissingFileCreatesDefaultProfile(t *testing.T) {
	lib, err := core.LoadLibrary(t.TempDir())
	require.NoError(t, err)
	require.Len(t, lib.Profiles, 1)
	require.Equal(t, "Default", lib.Profiles[0].Name)
	require.Equal(t, "Default", lib.ActiveProfile)
}

func TestSaveLoadLibrary_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	lib := &domain.Library{
		Mods: []domain.ModEntry{
			{ID: "a", Name: "Mod A", Source: domain.SourceManaged},
		},
		Profiles:      []domain.Profile{domain.NewProfile("Default")},
		ActiveProfile: "Default",
	}

	require.NoError(t, core.SaveLibrary(dir, lib))
	loaded, err := core.LoadLibrary(dir)
	require.NoError(t, err)
	require.Len(t, loaded.Mods, 1)
	require.Equal(t, "a", loaded.Profiles[0].Order[0].ID)
	require.False(t, loaded.Profiles[0].Order[0].Enabled)
}

func TestLoadLibrary_OrphanedActiveProfileFallsBack(t *testing.T) {
	dir := t.TempDir()
	lib := &domain.Library{
		Profiles:      []domain.Profile{domain.NewProfile("Solo")},
		ActiveProfile: "Ghost",
	}
	require.NoError(t, core.SaveLibrary(dir, lib))

	loaded, err := core.LoadLibrary(dir)
	require.NoError(t, err)
	require.Equal(t, "Solo", loaded.ActiveProfile)
}

func TestLoadLibrary_DuplicateOrderEntriesAreDeduped(t *testing.T) {
	dir := t.TempDir()
	lib := &domain.Library{
		Mods: []domain.ModEntry{{ID: "a", Name: "A"}},
		Profiles: []domain.Profile{{
			Name: "Default",
			Order: []domain.ProfileEntry{
				{ID: "a", Enabled: true},
				{ID: "a", Enabled: false},
			},
		}},
		ActiveProfile: "Default",
	}
	require.NoError(t, core.SaveLibrary(dir, lib))

	loaded, err := core.LoadLibrary(dir)
	require.NoError(t, err)
	require.Len(t, loaded.Profiles[0].Order, 1)
}

func TestLoadLibrary_PathIsLibraryJSON(t *testing.T) {
	dir := t.TempDir()
	lib := &domain.Library{Profiles: []domain.Profile{domain.NewProfile("Default")}, ActiveProfile: "Default"}
	require.NoError(t, core.SaveLibrary(dir, lib))

	_, err := os.Stat(filepath.Join(dir, "library.json"))
	require.NoError(t, err)
}
