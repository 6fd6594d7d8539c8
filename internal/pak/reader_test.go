package pak_test

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/pak"
)

// buildPackage assembles a minimal synthetic LSPK file with one meta.lsx
// entry (stored uncompressed) so the reader can be exercised without a real
// game package.
func buildPackage(t *testing.T, metaPath string, metaBytes []byte) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.pak")

	var entryPayload bytes.Buffer
	entryPayload.Write(metaBytes)

	var pathField [256]byte
	copy(pathField[:], metaPath)

	var entry bytes.Buffer
	entry.Write(pathField[:])
	binary.Write(&entry, binary.LittleEndian, uint32(16)) // offset lo: body starts at byte 16
	binary.Write(&entry, binary.LittleEndian, uint16(0))  // offset hi
	entry.WriteByte(0)                                     // flags
	entry.WriteByte(0)                                     // compression: none
	binary.Write(&entry, binary.LittleEndian, uint32(len(metaBytes)))
	binary.Write(&entry, binary.LittleEndian, uint32(len(metaBytes)))
	require.Equal(t, 272, entry.Len())

	var indexTable bytes.Buffer
	indexTable.Write(entry.Bytes())

	var compressedTable bytes.Buffer
	zw := zlib.NewWriter(&compressedTable)
	_, err := zw.Write(indexTable.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var footer bytes.Buffer
	binary.Write(&footer, binary.LittleEndian, uint32(1)) // file count
	binary.Write(&footer, binary.LittleEndian, uint32(compressedTable.Len()))
	footer.Write(compressedTable.Bytes())

	var file bytes.Buffer
	file.WriteString("LSPK")
	binary.Write(&file, binary.LittleEndian, uint32(18))
	// footer offset is relative to position 16; body occupies [16,16+len(meta)),
	// footer starts right after.
	footerOffset := uint64(len(metaBytes))
	binary.Write(&file, binary.LittleEndian, footerOffset)
	file.Write(metaBytes)
	file.Write(footer.Bytes())

	require.NoError(t, os.WriteFile(path, file.Bytes(), 0o644))
	return path
}

func TestReader_RoundTripsUncompressedMeta(t *testing.T) {
	metaBytes := []byte("<save><region id=\"Config\"></region></save>")
	path := buildPackage(t, "Mods/TestMod/meta.lsx", metaBytes)

	r, err := pak.Open(path)
	require.NoError(t, err)
	defer r.Close()

	entries, err := r.ReadIndex()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "mods/testmod/meta.lsx", entries[0].Path)

	entry, ok := pak.FindMetaEntry(entries)
	require.True(t, ok)

	data, err := r.ReadEntry(entry)
	require.NoError(t, err)
	require.Equal(t, metaBytes, data)
}

func TestReader_RejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.pak")
	require.NoError(t, os.WriteFile(path, []byte("NOPE0000000000000000"), 0o644))

	_, err := pak.Open(path)
	require.Error(t, err)
}

func TestReader_RejectsOldVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.pak")

	var buf bytes.Buffer
	buf.WriteString("LSPK")
	binary.Write(&buf, binary.LittleEndian, uint32(7))
	binary.Write(&buf, binary.LittleEndian, uint64(0))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err := pak.Open(path)
	require.Error(t, err)
}

func TestReadMetaLSX_NoMetaEntry(t *testing.T) {
	path := buildPackage(t, "Public/Other/Story.txt", []byte("not metadata"))

	_, err := pak.ReadMetaLSX(path)
	require.Error(t, err)
}
