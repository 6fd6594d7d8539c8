package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agistaris/sigillink/internal/domain"
)

// BackupMeta accompanies a backup snapshot with the context that produced
// it.
type BackupMeta struct {
	Timestamp int64  `json:"timestamp"`
	Reason    string `json:"reason,omitempty"`
	Game      string `json:"game"`
	Profile   string `json:"profile"`
}

type lastBackup struct {
	Path      string `json:"path"`
	Timestamp int64  `json:"timestamp"`
}

// CreateBackup snapshots library.json, the current deploy manifest, and the
// game's load-order config to <data_dir>/backups/backup-<timestamp>/, then
// updates the backups/last.json pointer. Per §4.8 step 1, backup failure is
// fatal to the deploy that requested it.
func CreateBackup(dataDir string, lib domain.Library, gameName string, modSettingsPath string, timestamp int64, reason string) (string, error) {
	backupRoot := filepath.Join(dataDir, "backups")
	if err := os.MkdirAll(backupRoot, 0o755); err != nil {
		return "", fmt.Errorf("%w: create backups dir: %v", domain.ErrBackupFailed, err)
	}

	backupDir := filepath.Join(backupRoot, fmt.Sprintf("backup-%d", timestamp))
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create backup dir: %v", domain.ErrBackupFailed, err)
	}

	libraryJSON, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: serialize library: %v", domain.ErrBackupFailed, err)
	}
	if err := os.WriteFile(filepath.Join(backupDir, "library.json"), libraryJSON, 0o644); err != nil {
		return "", fmt.Errorf("%w: write library backup: %v", domain.ErrBackupFailed, err)
	}

	manifestPath := filepath.Join(dataDir, "deploy_manifest.json")
	copyIfExists(manifestPath, filepath.Join(backupDir, "deploy_manifest.json"))
	copyIfExists(modSettingsPath, filepath.Join(backupDir, "modsettings.lsx"))

	meta := BackupMeta{Timestamp: timestamp, Reason: reason, Game: gameName, Profile: lib.ActiveProfile}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: serialize backup meta: %v", domain.ErrBackupFailed, err)
	}
	if err := os.WriteFile(filepath.Join(backupDir, "meta.json"), metaJSON, 0o644); err != nil {
		return "", fmt.Errorf("%w: write backup meta: %v", domain.ErrBackupFailed, err)
	}

	last := lastBackup{Path: backupDir, Timestamp: timestamp}
	lastJSON, err := json.MarshalIndent(last, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: serialize last backup pointer: %v", domain.ErrBackupFailed, err)
	}
	if err := os.WriteFile(filepath.Join(backupRoot, "last.json"), lastJSON, 0o644); err != nil {
		return "", fmt.Errorf("%w: write last backup pointer: %v", domain.ErrBackupFailed, err)
	}

	return backupDir, nil
}

func copyIfExists(src, dst string) {
	data, err := os.ReadFile(src)
	if err != nil {
		return
	}
	_ = os.WriteFile(dst, data, 0o644)
}

// LoadLastBackup returns the most recent backup directory recorded in
// backups/last.json, or "" if there is none or it no longer exists on disk.
func LoadLastBackup(dataDir string) (string, error) {
	path := filepath.Join(dataDir, "backups", "last.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read last backup pointer: %w", err)
	}

	var last lastBackup
	if err := json.Unmarshal(data, &last); err != nil {
		return "", fmt.Errorf("parse last backup pointer: %w", err)
	}
	if _, err := os.Stat(last.Path); err != nil {
		return "", nil
	}
	return last.Path, nil
}

// LoadBackupLibrary reads the library.json snapshot from a backup
// directory, for rollback (§8, S4).
func LoadBackupLibrary(backupDir string) (*domain.Library, error) {
	data, err := os.ReadFile(filepath.Join(backupDir, "library.json"))
	if err != nil {
		return nil, fmt.Errorf("read backup library: %w", err)
	}
	var lib domain.Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse backup library: %w", err)
	}
	return &lib, nil
}

// RollbackLibrary restores lib from the most recent backup, per §8 S4:
// rollback replaces the library with the backup's snapshot, without
// creating a further backup.
func RollbackLibrary(dataDir string) (*domain.Library, error) {
	backupDir, err := LoadLastBackup(dataDir)
	if err != nil {
		return nil, err
	}
	if backupDir == "" {
		return nil, fmt.Errorf("no backup available to roll back to")
	}
	return LoadBackupLibrary(backupDir)
}
