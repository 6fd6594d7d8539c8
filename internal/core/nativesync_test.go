package core_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/nativepak"
)

func newNativeIndex(t *testing.T) *nativepak.Index {
	t.Helper()
	store, err := nativepak.OpenStore(filepath.Join(t.TempDir(), "index.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return nativepak.NewIndex(store)
}

func TestSyncNativePackages_AddsNewModuleAndEnablesByOrder(t *testing.T) {
	modsDir := t.TempDir()
	index := newNativeIndex(t)

	lib := &domain.Library{
		Profiles:      []domain.Profile{{Name: "Default"}},
		ActiveProfile: "Default",
	}

	doc := core.LoadOrderDoc{
		Modules: []core.ModuleNode{
			{UUID: "uuid-a", Folder: "ModA", Name: "Mod A"},
		},
		Order: []string{"uuid-a"},
	}

	result := core.SyncNativePackages(lib, doc, index, modsDir, 5000)
	require.True(t, result.Changed)
	require.Equal(t, 1, result.Added)
	require.Len(t, lib.Mods, 1)
	require.Equal(t, domain.SourceNative, lib.Mods[0].Source)

	profile, ok := lib.ProfileByName("Default")
	require.True(t, ok)
	require.Len(t, profile.Order, 1)
	require.True(t, profile.Order[0].Enabled)
}

func TestSyncNativePackages_EmptyOrderEnablesAllModules(t *testing.T) {
	modsDir := t.TempDir()
	index := newNativeIndex(t)

	lib := &domain.Library{
		Profiles:      []domain.Profile{{Name: "Default"}},
		ActiveProfile: "Default",
	}

	doc := core.LoadOrderDoc{
		Modules: []core.ModuleNode{
			{UUID: "uuid-a", Folder: "ModA", Name: "Mod A"},
			{UUID: "uuid-b", Folder: "ModB", Name: "Mod B"},
		},
	}

	core.SyncNativePackages(lib, doc, index, modsDir, 1000)
	profile, ok := lib.ProfileByName("Default")
	require.True(t, ok)
	for _, e := range profile.Order {
		require.True(t, e.Enabled)
	}
}

func TestSyncNativePackages_SecondPassWithNoChangesIsNoOp(t *testing.T) {
	modsDir := t.TempDir()
	index := newNativeIndex(t)

	lib := &domain.Library{
		Profiles:      []domain.Profile{{Name: "Default"}},
		ActiveProfile: "Default",
	}
	doc := core.LoadOrderDoc{
		Modules: []core.ModuleNode{{UUID: "uuid-a", Folder: "ModA", Name: "Mod A"}},
		Order:   []string{"uuid-a"},
	}

	first := core.SyncNativePackages(lib, doc, index, modsDir, 1000)
	require.True(t, first.Changed)

	second := core.SyncNativePackages(lib, doc, index, modsDir, 1000)
	require.False(t, second.Changed)
	require.Equal(t, 0, second.Added)
}
