// Package filelist caches the per-mod file listing (the "sigillink index")
// so the Planner and Smart Ranker can skip a full directory walk when a
// mod's on-disk content hasn't changed since the last scan.
package filelist

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const cacheVersion = 1

// Entry is one file under a mod's install root.
type Entry struct {
	RelativePath string `json:"relative_path"`
	Size         int64  `json:"size"`
	ModTime      int64  `json:"mod_time"`
}

// Cache is the on-disk representation of one mod's file listing.
type Cache struct {
	Version     int     `json:"version"`
	RootModTime int64   `json:"root_mod_time"`
	Files       []Entry `json:"files"`
}

// Load reads a cache file, returning (nil, nil) if it is absent or was
// written by an older cacheVersion rather than treating either as an error —
// both simply mean "rebuild".
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read file list cache: %w", err)
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, nil
	}
	if cache.Version != cacheVersion {
		return nil, nil
	}
	return &cache, nil
}

// Save writes cache to path, creating parent directories as needed.
func Save(path string, cache *Cache) error {
	cache.Version = cacheVersion

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal file list cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create file list cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file list cache: %w", err)
	}
	return nil
}

// Walk lists every regular file under root, relative to root, with
// forward-slash separators regardless of host OS.
func Walk(root string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			RelativePath: filepath.ToSlash(rel),
			Size:         info.Size(),
			ModTime:      info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk mod directory: %w", err)
	}
	return entries, nil
}

// BuildOrLoad returns the file listing for root, reusing cachePath's cache
// when root's mtime matches, and rebuilding (then persisting) otherwise.
func BuildOrLoad(cachePath, root string) ([]Entry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat mod root: %w", err)
	}
	rootModTime := info.ModTime().Unix()

	if cached, err := Load(cachePath); err == nil && cached != nil && cached.RootModTime == rootModTime {
		return cached.Files, nil
	}

	entries, err := Walk(root)
	if err != nil {
		return nil, err
	}

	cache := &Cache{RootModTime: rootModTime, Files: entries}
	if err := Save(cachePath, cache); err != nil {
		return nil, err
	}
	return entries, nil
}
