package domain

import "errors"

var (
	ErrModNotFound        = errors.New("mod not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrGamePathsNotSet    = errors.New("game paths not configured")
	ErrNotRecognized      = errors.New("path is neither a package nor a known loose layout")
	ErrDuplicateDetected  = errors.New("duplicate mod detected")
	ErrPackageParseFailed = errors.New("package metadata could not be parsed")
	ErrLinkFailed         = errors.New("link operation failed")
	ErrDirIsDestination   = errors.New("destination exists as a directory")
	ErrBackupFailed       = errors.New("backup failed")
	ErrInvalidMagic       = errors.New("not an LSPK package")
	ErrUnsupportedVersion = errors.New("unsupported package version")
	ErrNoMetaEntry        = errors.New("no meta.lsx entry in package index")
)
