package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
)

func TestCreateBackup_WritesSnapshotAndLastPointer(t *testing.T) {
	dataDir := t.TempDir()
	lib := domain.Library{
		Mods:          []domain.ModEntry{{ID: "a", Name: "A"}},
		Profiles:      []domain.Profile{domain.NewProfile("Default")},
		ActiveProfile: "Default",
	}

	backupDir, err := core.CreateBackup(dataDir, lib, "Baldur's Gate 3", filepath.Join(dataDir, "nope.lsx"), 1000, "manual")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(backupDir, "library.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(backupDir, "meta.json"))
	require.NoError(t, err)

	last, err := core.LoadLastBackup(dataDir)
	require.NoError(t, err)
	require.Equal(t, backupDir, last)
}

func TestRollbackLibrary_RestoresSnapshot(t *testing.T) {
	dataDir := t.TempDir()
	lib := domain.Library{
		Mods:          []domain.ModEntry{{ID: "a", Name: "A"}},
		Profiles:      []domain.Profile{domain.NewProfile("Default")},
		ActiveProfile: "Default",
	}
	_, err := core.CreateBackup(dataDir, lib, "Baldur's Gate 3", "", 2000, "")
	require.NoError(t, err)

	restored, err := core.RollbackLibrary(dataDir)
	require.NoError(t, err)
	require.Len(t, restored.Mods, 1)
}

func TestRollbackLibrary_NoBackupIsError(t *testing.T) {
	_, err := core.RollbackLibrary(t.TempDir())
	require.Error(t, err)
}
