package nativepak

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store persists the native package directory caches across process
// restarts, keyed by directory path and invalidated by directory mtime.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS native_pak_dirs (
	dir TEXT PRIMARY KEY,
	mod_time INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS native_pak_filenames (
	dir TEXT NOT NULL,
	full_path TEXT NOT NULL,
	normalized_stem TEXT NOT NULL,
	PRIMARY KEY (dir, full_path)
);
CREATE TABLE IF NOT EXISTS native_pak_meta (
	dir TEXT NOT NULL,
	full_path TEXT NOT NULL,
	size INTEGER NOT NULL,
	mod_time INTEGER NOT NULL,
	uuid_key TEXT NOT NULL,
	folder_key TEXT NOT NULL,
	name_key TEXT NOT NULL,
	PRIMARY KEY (dir, full_path)
);
`

// OpenStore opens (creating if absent) a sqlite-backed cache database at
// path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open native package cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate native package cache: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DirModTime returns the cached mtime recorded for dir, if any.
func (s *Store) DirModTime(dir string) (int64, bool) {
	var modTime int64
	err := s.db.QueryRow(`SELECT mod_time FROM native_pak_dirs WHERE dir = ?`, dir).Scan(&modTime)
	if err != nil {
		return 0, false
	}
	return modTime, true
}

// SetDirModTime records a refreshed mtime and clears stale filename/meta
// rows for dir, ready for the caller to repopulate them.
func (s *Store) SetDirModTime(dir string, modTime int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO native_pak_dirs (dir, mod_time) VALUES (?, ?)
		ON CONFLICT (dir) DO UPDATE SET mod_time = excluded.mod_time`, dir, modTime); err != nil {
		return fmt.Errorf("upsert dir mod time: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM native_pak_filenames WHERE dir = ?`, dir); err != nil {
		return fmt.Errorf("clear stale filename rows: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM native_pak_meta WHERE dir = ?`, dir); err != nil {
		return fmt.Errorf("clear stale meta rows: %w", err)
	}
	return tx.Commit()
}

// PutFilenameEntries replaces the filename index rows for dir.
func (s *Store) PutFilenameEntries(dir string, entries []FilenameEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO native_pak_filenames (dir, full_path, normalized_stem) VALUES (?, ?, ?)
		ON CONFLICT (dir, full_path) DO UPDATE SET normalized_stem = excluded.normalized_stem`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(dir, e.FullPath, e.NormalizedStem); err != nil {
			return fmt.Errorf("upsert filename entry: %w", err)
		}
	}
	return tx.Commit()
}

// FilenameEntries returns the cached filename index rows for dir.
func (s *Store) FilenameEntries(dir string) ([]FilenameEntry, error) {
	rows, err := s.db.Query(`SELECT full_path, normalized_stem FROM native_pak_filenames WHERE dir = ?`, dir)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FilenameEntry
	for rows.Next() {
		var e FilenameEntry
		if err := rows.Scan(&e.FullPath, &e.NormalizedStem); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PutMetaEntries replaces the metadata index rows for dir.
func (s *Store) PutMetaEntries(dir string, entries []MetaEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO native_pak_meta (dir, full_path, size, mod_time, uuid_key, folder_key, name_key)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (dir, full_path) DO UPDATE SET
			size = excluded.size, mod_time = excluded.mod_time,
			uuid_key = excluded.uuid_key, folder_key = excluded.folder_key, name_key = excluded.name_key`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(dir, e.FullPath, e.Size, e.ModTime, e.UUIDKey, e.FolderKey, e.NameKey); err != nil {
			return fmt.Errorf("upsert meta entry: %w", err)
		}
	}
	return tx.Commit()
}

// MetaEntries returns the cached metadata index rows for dir.
func (s *Store) MetaEntries(dir string) ([]MetaEntry, error) {
	rows, err := s.db.Query(`SELECT full_path, size, mod_time, uuid_key, folder_key, name_key FROM native_pak_meta WHERE dir = ?`, dir)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MetaEntry
	for rows.Next() {
		var e MetaEntry
		if err := rows.Scan(&e.FullPath, &e.Size, &e.ModTime, &e.UUIDKey, &e.FolderKey, &e.NameKey); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
