package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
)

func baseLibrary() domain.Library {
	return domain.Library{
		Mods: []domain.ModEntry{
			{ID: "a", Name: "Mod A"},
			{ID: "b", Name: "Mod B"},
		},
		Profiles:      []domain.Profile{domain.NewProfile("Default")},
		ActiveProfile: "Default",
	}
}

func TestCreateRenameDeleteProfile(t *testing.T) {
	lib := baseLibrary()

	_, err := core.CreateProfile(&lib, "Alt")
	require.NoError(t, err)
	require.Len(t, lib.Profiles, 2)

	require.NoError(t, core.RenameProfile(&lib, "Alt", "Renamed"))
	_, ok := lib.ProfileByName("Renamed")
	require.True(t, ok)

	require.NoError(t, core.DeleteProfile(&lib, "Renamed"))
	require.Len(t, lib.Profiles, 1)

	require.Error(t, core.DeleteProfile(&lib, "Default"))
}

func TestDuplicateProfile_CopiesOrderAndOverrides(t *testing.T) {
	lib := baseLibrary()
	lib.Profiles[0].Order = []domain.ProfileEntry{{ID: "a", Enabled: true}, {ID: "b", Enabled: false}}
	lib.Profiles[0].FileOverrides = []domain.FileOverride{{Kind: domain.TargetData, RelativePath: "x", ModID: "a"}}

	dup, err := core.DuplicateProfile(&lib, "Default", "Copy")
	require.NoError(t, err)
	require.Equal(t, lib.Profiles[0].Order, dup.Order)
	require.Equal(t, lib.Profiles[0].FileOverrides, dup.FileOverrides)
}

func TestExportImportProfile_RoundTripsByID(t *testing.T) {
	lib := baseLibrary()
	lib.Profiles[0].Order = []domain.ProfileEntry{{ID: "a", Enabled: true}, {ID: "b", Enabled: false}}

	exported, err := core.ExportProfile(lib, domain.GameBG3, "Default")
	require.NoError(t, err)
	data, err := core.MarshalExportedProfile(exported)
	require.NoError(t, err)

	result, err := core.ImportProfile(lib, data, "Imported")
	require.NoError(t, err)
	require.Empty(t, result.UnknownMods)
	require.Len(t, result.Profile.Order, 2)
}

func TestImportProfile_FallsBackToNameMatch(t *testing.T) {
	lib := baseLibrary()
	exported := domain.ExportedProfile{
		GameID: string(domain.GameBG3),
		Name:   "Default",
		Entries: []domain.ExportedProfileEntry{
			{ID: "different-id", Name: "Mod A", Enabled: true},
			{ID: "gone", Name: "Ghost Mod", Enabled: true},
		},
	}
	data, err := core.MarshalExportedProfile(exported)
	require.NoError(t, err)

	result, err := core.ImportProfile(lib, data, "Imported")
	require.NoError(t, err)
	require.Len(t, result.Profile.Order, 2)
	require.Equal(t, "a", result.Profile.Order[0].ID)
	require.Equal(t, []string{"Ghost Mod"}, result.UnknownMods)
}
