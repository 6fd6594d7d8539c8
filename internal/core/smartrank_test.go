package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
)

func TestSmartRank_LargerConflictingModSortsLater(t *testing.T) {
	dataDir := t.TempDir()

	writeModFile(t, dataDir, "small", "Data", "Shared/file.txt", "x")
	writeModFile(t, dataDir, "big", "Data", "Shared/file.txt", "this content is considerably bigger than the other one")

	lib := domain.Library{
		Mods: []domain.ModEntry{
			{ID: "big", Name: "Big", Targets: []domain.InstallTarget{{Kind: domain.TargetData, Dir: "Data"}}},
			{ID: "small", Name: "Small", Targets: []domain.InstallTarget{{Kind: domain.TargetData, Dir: "Data"}}},
		},
	}
	profile := domain.Profile{Order: []domain.ProfileEntry{
		{ID: "big", Enabled: true},
		{ID: "small", Enabled: true},
	}}

	order, report := core.SmartRank(lib, profile, dataDir, t.TempDir())
	require.Equal(t, "small", order[0].ID)
	require.Equal(t, "big", order[1].ID)
	require.Equal(t, 2, report.Moved)
	require.Equal(t, 1, report.Conflicts)
}

func TestSmartRank_AlreadyOptimalOrderIsUnchanged(t *testing.T) {
	dataDir := t.TempDir()
	writeModFile(t, dataDir, "small", "Data", "Shared/file.txt", "x")
	writeModFile(t, dataDir, "big", "Data", "Shared/file.txt", "this content is considerably bigger than the other one")

	lib := domain.Library{
		Mods: []domain.ModEntry{
			{ID: "small", Name: "Small", Targets: []domain.InstallTarget{{Kind: domain.TargetData, Dir: "Data"}}},
			{ID: "big", Name: "Big", Targets: []domain.InstallTarget{{Kind: domain.TargetData, Dir: "Data"}}},
		},
	}
	profile := domain.Profile{Order: []domain.ProfileEntry{
		{ID: "small", Enabled: true},
		{ID: "big", Enabled: true},
	}}

	order, report := core.SmartRank(lib, profile, dataDir, t.TempDir())
	require.Equal(t, "small", order[0].ID)
	require.Equal(t, "big", order[1].ID)
	require.Equal(t, 0, report.Moved)
}

func TestSmartRank_DisabledModCountsAsMissing(t *testing.T) {
	dataDir := t.TempDir()
	lib := domain.Library{
		Mods: []domain.ModEntry{
			{ID: "a", Name: "A", Targets: []domain.InstallTarget{{Kind: domain.TargetData, Dir: "Data"}}},
		},
	}
	profile := domain.Profile{Order: []domain.ProfileEntry{{ID: "a", Enabled: false}}}

	_, report := core.SmartRank(lib, profile, dataDir, t.TempDir())
	require.Equal(t, 1, report.Missing)
}
