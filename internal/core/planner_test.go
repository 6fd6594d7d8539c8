package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
)

func writeModFile(t *testing.T, dataDir, modID, kind, rel, content string) {
	t.Helper()
	path := filepath.Join(dataDir, "mods", modID, kind, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPlan_LastWriterWinsByDefault(t *testing.T) {
	dataDir := t.TempDir()
	gameRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(gameRoot, "Data"), 0o755))

	writeModFile(t, dataDir, "x", "Data", "Shared/file.txt", "from x")
	writeModFile(t, dataDir, "y", "Data", "Shared/file.txt", "from y")

	lib := domain.Library{
		Mods: []domain.ModEntry{
			{ID: "x", Name: "X", Targets: []domain.InstallTarget{{Kind: domain.TargetData}}},
			{ID: "y", Name: "Y", Targets: []domain.InstallTarget{{Kind: domain.TargetData}}},
		},
	}
	profile := domain.Profile{
		Order: []domain.ProfileEntry{
			{ID: "x", Enabled: true},
			{ID: "y", Enabled: true},
		},
	}
	paths := domain.GamePaths{GameRoot: gameRoot, DataDir: filepath.Join(gameRoot, "Data")}

	result, err := core.Plan(core.PlanInput{Library: lib, Profile: profile, Paths: paths, DataDir: dataDir})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, "y", result.Rows[0].WinnerID)
	require.Len(t, result.Conflicts, 1)
	require.False(t, result.Conflicts[0].Overridden)
}

func TestPlan_FileOverrideWins(t *testing.T) {
	dataDir := t.TempDir()
	gameRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(gameRoot, "Data"), 0o755))

	writeModFile(t, dataDir, "x", "Data", "Shared/file.txt", "from x")
	writeModFile(t, dataDir, "y", "Data", "Shared/file.txt", "from y")

	lib := domain.Library{
		Mods: []domain.ModEntry{
			{ID: "x", Name: "X", Targets: []domain.InstallTarget{{Kind: domain.TargetData}}},
			{ID: "y", Name: "Y", Targets: []domain.InstallTarget{{Kind: domain.TargetData}}},
		},
	}
	profile := domain.Profile{
		Order: []domain.ProfileEntry{
			{ID: "x", Enabled: true},
			{ID: "y", Enabled: true},
		},
		FileOverrides: []domain.FileOverride{
			{Kind: domain.TargetData, RelativePath: "Shared/file.txt", ModID: "x"},
		},
	}
	paths := domain.GamePaths{GameRoot: gameRoot, DataDir: filepath.Join(gameRoot, "Data")}

	result, err := core.Plan(core.PlanInput{Library: lib, Profile: profile, Paths: paths, DataDir: dataDir})
	require.NoError(t, err)
	require.Equal(t, "x", result.Rows[0].WinnerID)
	require.True(t, result.Conflicts[0].Overridden)
}

func TestPlan_DisabledModsDoNotContribute(t *testing.T) {
	dataDir := t.TempDir()
	gameRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(gameRoot, "Data"), 0o755))
	writeModFile(t, dataDir, "x", "Data", "only.txt", "x")

	lib := domain.Library{
		Mods: []domain.ModEntry{{ID: "x", Name: "X", Targets: []domain.InstallTarget{{Kind: domain.TargetData}}}},
	}
	profile := domain.Profile{Order: []domain.ProfileEntry{{ID: "x", Enabled: false}}}
	paths := domain.GamePaths{GameRoot: gameRoot, DataDir: filepath.Join(gameRoot, "Data")}

	result, err := core.Plan(core.PlanInput{Library: lib, Profile: profile, Paths: paths, DataDir: dataDir})
	require.NoError(t, err)
	require.Empty(t, result.Rows)
}
