// Package pak implements a bit-exact reader for the LSPK binary package
// format: a magic-prefixed container with a compressed file index in its
// footer and deflate/lz4/zstd-compressed entries.
package pak

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/agistaris/sigillink/internal/domain"
)

const (
	magic           = "LSPK"
	minVersion      = 18
	headerFixedSize = 16 // magic(4) + version(4) + footer offset(8)
	entrySize       = 272
)

// CompressionCode is the low nibble of an index entry's compression byte.
type CompressionCode byte

const (
	CompressionNone CompressionCode = 0
	CompressionZlib CompressionCode = 1
	CompressionLZ4  CompressionCode = 2
	CompressionZstd CompressionCode = 3
)

func compressionOf(flagByte byte) CompressionCode {
	switch flagByte & 0x0f {
	case 0:
		return CompressionNone
	case 1:
		return CompressionZlib
	case 2:
		return CompressionLZ4
	default:
		return CompressionZstd
	}
}

// IndexEntry is one decoded 272-byte footer entry.
type IndexEntry struct {
	Path             string
	Offset           uint64
	Flags            byte
	Compression      CompressionCode
	CompressedSize   uint32
	DecompressedSize uint32
}

// Reader reads a single .pak file's index and entry payloads.
type Reader struct {
	f       *os.File
	version uint32
}

// Open validates the LSPK header and returns a Reader positioned to read
// the index on demand.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	header := make([]byte, headerFixedSize)
	if _, err := io.ReadFull(f, header); err != nil {
		f.Close()
		return nil, fmt.Errorf("read package header: %w", err)
	}
	if string(header[:4]) != magic {
		f.Close()
		return nil, domain.ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(header[4:8])
	if version < minVersion {
		f.Close()
		return nil, fmt.Errorf("%w: version %d", domain.ErrUnsupportedVersion, version)
	}
	footerOffset := binary.LittleEndian.Uint64(header[8:16])

	// Footer offset is relative to file start, added to the current
	// 16-byte header position (spec.md §4.1); the absolute footer
	// position is therefore 16+footerOffset.
	if _, err := f.Seek(int64(headerFixedSize)+int64(footerOffset), io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek package footer: %w", err)
	}

	return &Reader{f: f, version: version}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ReadIndex reads the footer and decodes every index entry. The file cursor
// must be at the footer position, as left by Open.
func (r *Reader) ReadIndex() ([]IndexEntry, error) {
	var fileCount, tableLen uint32
	if err := binary.Read(r.f, binary.LittleEndian, &fileCount); err != nil {
		return nil, fmt.Errorf("read file count: %w", err)
	}
	if err := binary.Read(r.f, binary.LittleEndian, &tableLen); err != nil {
		return nil, fmt.Errorf("read table length: %w", err)
	}

	compressed := make([]byte, tableLen)
	if _, err := io.ReadFull(r.f, compressed); err != nil {
		return nil, fmt.Errorf("read compressed index table: %w", err)
	}

	table, err := decompressZlib(compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress index table: %w", err)
	}

	want := int(fileCount) * entrySize
	if len(table) < want {
		return nil, fmt.Errorf("index table too short: got %d bytes, want %d", len(table), want)
	}

	entries := make([]IndexEntry, 0, fileCount)
	for i := 0; i < int(fileCount); i++ {
		raw := table[i*entrySize : (i+1)*entrySize]
		entries = append(entries, decodeEntry(raw))
	}
	return entries, nil
}

func decodeEntry(raw []byte) IndexEntry {
	pathRaw := raw[0:256]
	nul := bytes.IndexByte(pathRaw, 0)
	if nul < 0 {
		nul = len(pathRaw)
	}
	path := normalizePath(string(pathRaw[:nul]))

	offsetLo := binary.LittleEndian.Uint32(raw[256:260])
	offsetHi := binary.LittleEndian.Uint16(raw[260:262])
	flags := raw[262]
	compByte := raw[263]
	compressedSize := binary.LittleEndian.Uint32(raw[264:268])
	decompressedSize := binary.LittleEndian.Uint32(raw[268:272])

	offset := (uint64(offsetHi)<<32 | uint64(offsetLo)) & ((1 << 52) - 1)

	return IndexEntry{
		Path:             path,
		Offset:           offset,
		Flags:            flags,
		Compression:      compressionOf(compByte),
		CompressedSize:   compressedSize,
		DecompressedSize: decompressedSize,
	}
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	return strings.ToLower(p)
}

// FindMetaEntry applies the §4.1 selection rule: prefer a path ending
// "/meta.lsx" whose ancestors include "/mods/"; else the first "/meta.lsx"
// (bare "meta.lsx" also matches).
func FindMetaEntry(entries []IndexEntry) (IndexEntry, bool) {
	var fallback *IndexEntry
	for i := range entries {
		e := &entries[i]
		if e.Path != "meta.lsx" && !strings.HasSuffix(e.Path, "/meta.lsx") {
			continue
		}
		if strings.Contains(e.Path, "/mods/") {
			return *e, true
		}
		if fallback == nil {
			fallback = e
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return IndexEntry{}, false
}

// ReadEntry reads and decompresses the bytes for a single index entry. If
// decompression via the declared code fails, it retries with the alternate
// block compressor (some packages mis-tag lz4/zstd), per §4.1.
func (r *Reader) ReadEntry(e IndexEntry) ([]byte, error) {
	compressed := make([]byte, e.CompressedSize)
	if _, err := r.f.ReadAt(compressed, int64(e.Offset)); err != nil {
		return nil, fmt.Errorf("read entry %q payload: %w", e.Path, err)
	}

	data, err := decompress(e.Compression, compressed, int(e.DecompressedSize))
	if err == nil {
		return data, nil
	}

	// Fallback: try the other block compressor (lz4<->zstd mistagging).
	alt := CompressionLZ4
	if e.Compression == CompressionLZ4 {
		alt = CompressionZstd
	}
	if data2, err2 := decompress(alt, compressed, int(e.DecompressedSize)); err2 == nil {
		return data2, nil
	}
	return nil, fmt.Errorf("decompress entry %q: %w", e.Path, err)
}

func decompress(code CompressionCode, compressed []byte, decompressedSize int) ([]byte, error) {
	switch code {
	case CompressionNone:
		return compressed, nil
	case CompressionZlib:
		return decompressZlib(compressed)
	case CompressionLZ4:
		out := make([]byte, decompressedSize)
		n, err := lz4.UncompressBlock(compressed, out)
		if err != nil {
			return nil, err
		}
		return out[:n], nil
	default:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(compressed, make([]byte, 0, decompressedSize))
	}
}

func decompressZlib(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// ReadMetaLSX is the full Package Reader contract: given a path, return the
// decoded meta.lsx bytes, or domain.ErrNoMetaEntry if no package index
// carries one.
func ReadMetaLSX(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entries, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("read package index: %w", err)
	}

	entry, ok := FindMetaEntry(entries)
	if !ok {
		return nil, domain.ErrNoMetaEntry
	}
	return r.ReadEntry(entry)
}
