package metadata

import (
	"os"

	"github.com/agistaris/sigillink/internal/pak"
)

// ReadMetaLSXFile reads a standalone meta.lsx file from disk and parses it.
func ReadMetaLSXFile(path string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, err
	}
	return ParseMetaLSX(data), nil
}

// ReadMetaLSXFromPak opens a .pak file, locates its embedded meta.lsx entry
// via the Package Reader, and parses it.
func ReadMetaLSXFromPak(path string) (Meta, error) {
	data, err := pak.ReadMetaLSX(path)
	if err != nil {
		return Meta{}, err
	}
	return ParseMetaLSX(data), nil
}
