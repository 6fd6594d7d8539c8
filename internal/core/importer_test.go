package core_test

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
)

// buildImportPak writes a minimal synthetic LSPK file containing one
// uncompressed meta.lsx entry, mirroring internal/pak's own test helper.
func buildImportPak(t *testing.T, dir, name, metaXML string) string {
	t.Helper()
	metaBytes := []byte(metaXML)

	var pathField [256]byte
	copy(pathField[:], "Mods/Pkg/meta.lsx")

	var entry bytes.Buffer
	entry.Write(pathField[:])
	binary.Write(&entry, binary.LittleEndian, uint32(16))
	binary.Write(&entry, binary.LittleEndian, uint16(0))
	entry.WriteByte(0)
	entry.WriteByte(0)
	binary.Write(&entry, binary.LittleEndian, uint32(len(metaBytes)))
	binary.Write(&entry, binary.LittleEndian, uint32(len(metaBytes)))
	require.Equal(t, 272, entry.Len())

	var compressedTable bytes.Buffer
	zw := zlib.NewWriter(&compressedTable)
	_, err := zw.Write(entry.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var footer bytes.Buffer
	binary.Write(&footer, binary.LittleEndian, uint32(1))
	binary.Write(&footer, binary.LittleEndian, uint32(compressedTable.Len()))
	footer.Write(compressedTable.Bytes())

	var file bytes.Buffer
	file.WriteString("LSPK")
	binary.Write(&file, binary.LittleEndian, uint32(18))
	binary.Write(&file, binary.LittleEndian, uint64(len(metaBytes)))
	file.Write(metaBytes)
	file.Write(footer.Bytes())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0o644))
	return path
}

func importModuleXML(uuid, folder, name string) string {
	return `<save><region id="Config"><node id="root"><children>` +
		`<node id="ModuleInfo">` +
		`<attribute id="UUID" value="` + uuid + `" type="guid"/>` +
		`<attribute id="Name" value="` + name + `" type="LSString"/>` +
		`<attribute id="Folder" value="` + folder + `" type="LSString"/>` +
		`</node></children></node></region></save>`
}

func TestImportPackage_ParsesMetadataAndStages(t *testing.T) {
	dataDir := t.TempDir()
	src := t.TempDir()
	pakPath := buildImportPak(t, src, "Example.pak", importModuleXML("11111111-1111-1111-1111-111111111111", "Example", "Example Mod"))

	imported, err := core.ImportPackage(dataDir, pakPath)
	require.NoError(t, err)
	require.Equal(t, "11111111-1111-1111-1111-111111111111", imported.Mod.ID)
	require.Equal(t, "Example Mod", imported.Mod.Name)
	require.Equal(t, domain.SourceManaged, imported.Mod.Source)

	staged := filepath.Join(dataDir, "mods", imported.Mod.ID, "Example.pak")
	_, statErr := os.Stat(staged)
	require.NoError(t, statErr)
}

func TestImportPackage_UnparsableMetadataFallsBackToOverridePak(t *testing.T) {
	dataDir := t.TempDir()
	src := t.TempDir()
	pakPath := buildImportPak(t, src, "Broken.pak", "not xml at all")

	imported, err := core.ImportPackage(dataDir, pakPath)
	require.ErrorIs(t, err, domain.ErrPackageParseFailed)
	require.Equal(t, domain.TargetData, imported.Mod.Targets[0].Kind)
	require.Contains(t, imported.Mod.ID, "pak-")
}

func TestScanImportRoot_FindsShallowestDataDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Data"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested", "Data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Data", "x.txt"), []byte("x"), 0o644))

	result, err := core.ScanImportRoot(root)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "Data"), result.LooseDirs[domain.TargetData])
}

func TestImportLooseDirs_MovesDirectoriesIntoLibrary(t *testing.T) {
	dataDir := t.TempDir()
	root := t.TempDir()
	dataPath := filepath.Join(root, "Data")
	require.NoError(t, os.MkdirAll(dataPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataPath, "x.txt"), []byte("hello"), 0o644))

	imported, err := core.ImportLooseDirs(dataDir, map[domain.TargetKind]string{domain.TargetData: dataPath}, "My Cool Mod")
	require.NoError(t, err)
	require.Contains(t, imported.Mod.ID, "loose-")
	require.Equal(t, "My Cool Mod", imported.Mod.Name)

	staged := filepath.Join(dataDir, "mods", imported.Mod.ID, "Data", "x.txt")
	data, statErr := os.ReadFile(staged)
	require.NoError(t, statErr)
	require.Equal(t, "hello", string(data))
}

func TestDetectDuplicate_ExactNameMatch(t *testing.T) {
	lib := domain.Library{Mods: []domain.ModEntry{{ID: "a", Name: "Expanded Races"}}}
	candidate := domain.ModEntry{ID: "b", Name: "expanded races"}

	match, found := core.DetectDuplicate(lib, candidate)
	require.True(t, found)
	require.True(t, match.Exact)
	require.Equal(t, "a", match.ExistingID)
}

func TestDetectDuplicate_SimilarLabelMatch(t *testing.T) {
	lib := domain.Library{Mods: []domain.ModEntry{{ID: "a", Name: "Improved UI Overhaul"}}}
	candidate := domain.ModEntry{ID: "b", Name: "Improved UI Overhawl"}

	match, found := core.DetectDuplicate(lib, candidate)
	require.True(t, found)
	require.False(t, match.Exact)
	require.GreaterOrEqual(t, match.Similarity, 0.88)
}

func TestDetectDuplicate_NoMatchForShortOrDifferentLabels(t *testing.T) {
	lib := domain.Library{Mods: []domain.ModEntry{{ID: "a", Name: "Tiny"}}}
	candidate := domain.ModEntry{ID: "b", Name: "Completely Different Name"}

	_, found := core.DetectDuplicate(lib, candidate)
	require.False(t, found)
}

func TestCommitImport_AppendsAndExtendsProfiles(t *testing.T) {
	lib := &domain.Library{
		Profiles:      []domain.Profile{domain.NewProfile("Default")},
		ActiveProfile: "Default",
	}
	staged := []domain.ModEntry{{ID: "new-mod", Name: "New Mod"}}

	core.CommitImport(lib, staged, nil)
	require.Len(t, lib.Mods, 1)
	require.Equal(t, 0, lib.Profiles[0].IndexOf("new-mod"))
	require.False(t, lib.Profiles[0].Order[0].Enabled)
}
