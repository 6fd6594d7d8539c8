package filelist_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core/filelist"
)

func TestBuildOrLoad_RebuildsWhenRootModTimeChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	cachePath := filepath.Join(t.TempDir(), "mod.json")

	entries, err := filelist.BuildOrLoad(cachePath, root)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(root, future, future))

	entries2, err := filelist.BuildOrLoad(cachePath, root)
	require.NoError(t, err)
	require.Len(t, entries2, 2)
}

func TestBuildOrLoad_ReusesCacheWhenUnchanged(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	cachePath := filepath.Join(t.TempDir(), "mod.json")

	first, err := filelist.BuildOrLoad(cachePath, root)
	require.NoError(t, err)

	// The first call persisted its listing; the cache file must load and
	// hold exactly what that call returned.
	cached, err := filelist.Load(cachePath)
	require.NoError(t, err)
	require.NotNil(t, cached)
	require.Equal(t, first, cached.Files)
}

func TestLoad_MissingFileReturnsNilNil(t *testing.T) {
	cached, err := filelist.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Nil(t, cached)
}
