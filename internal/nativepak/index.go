// Package nativepak builds and caches a fingerprint-keyed index of the
// packages the game itself manages (subscription installs) in its user
// directory, and resolves a PackageInfo to its on-disk file.
package nativepak

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/metadata"
)

// FilenameEntry is one *.pak file in a native directory, with its
// normalized stem for name-based matching.
type FilenameEntry struct {
	FullPath       string
	NormalizedStem string
}

// MetaEntry is one *.pak file's package-metadata fingerprint.
type MetaEntry struct {
	FullPath  string
	Size      int64
	ModTime   int64
	UUIDKey   string
	FolderKey string
	NameKey   string
}

// Index wraps the persistent cache store with directory-mtime invalidated
// builders and the two-stage resolution algorithm.
type Index struct {
	store *Store
}

// NewIndex wraps store in an Index.
func NewIndex(store *Store) *Index {
	return &Index{store: store}
}

// NormalizePakKey strips non-alphanumerics and lowercases, the key used
// throughout matching (filenames, uuid/folder/name candidates alike).
func NormalizePakKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func dirModTime(dir string) (int64, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, err
	}
	return info.ModTime().Unix(), nil
}

// FilenameIndex returns the cached {path, normalized stem} pairs for every
// *.pak in dir, rebuilding when the directory's mtime has changed since the
// last build.
func (idx *Index) FilenameIndex(dir string) ([]FilenameEntry, error) {
	modTime, err := dirModTime(dir)
	if err != nil {
		return nil, err
	}
	if cached, ok := idx.store.DirModTime(dir); ok && cached == modTime {
		if entries, err := idx.store.FilenameEntries(dir); err == nil && entries != nil {
			return entries, nil
		}
	}

	entries, err := scanFilenames(dir)
	if err != nil {
		return nil, err
	}
	if err := idx.store.SetDirModTime(dir, modTime); err != nil {
		return nil, err
	}
	if err := idx.store.PutFilenameEntries(dir, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanFilenames(dir string) ([]FilenameEntry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pak"))
	if err != nil {
		return nil, err
	}
	entries := make([]FilenameEntry, 0, len(matches))
	for _, m := range matches {
		stem := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		entries = append(entries, FilenameEntry{FullPath: m, NormalizedStem: NormalizePakKey(stem)})
	}
	return entries, nil
}

// MetaIndex returns the cached metadata fingerprints for every *.pak in
// dir, reusing entries whose (size, modTime) is unchanged and only
// re-reading metadata for new or changed files.
func (idx *Index) MetaIndex(dir string) ([]MetaEntry, error) {
	modTime, err := dirModTime(dir)
	if err != nil {
		return nil, err
	}
	cached, hasCache := idx.store.DirModTime(dir)
	var previous []MetaEntry
	if hasCache {
		previous, _ = idx.store.MetaEntries(dir)
	}
	if hasCache && cached == modTime && previous != nil {
		return previous, nil
	}

	prevBySize := make(map[string]MetaEntry, len(previous))
	for _, e := range previous {
		prevBySize[e.FullPath] = e
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.pak"))
	if err != nil {
		return nil, err
	}

	entries := make([]MetaEntry, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		size := info.Size()
		mtime := info.ModTime().Unix()

		if prev, ok := prevBySize[m]; ok && prev.Size == size && prev.ModTime == mtime {
			entries = append(entries, prev)
			continue
		}

		meta, err := metadata.ReadMetaLSXFromPak(m)
		if err != nil {
			continue
		}
		entries = append(entries, MetaEntry{
			FullPath:  m,
			Size:      size,
			ModTime:   mtime,
			UUIDKey:   NormalizePakKey(meta.Module.UUID),
			FolderKey: NormalizePakKey(meta.Module.Folder),
			NameKey:   NormalizePakKey(meta.Module.Name),
		})
	}

	if err := idx.store.SetDirModTime(dir, modTime); err != nil {
		return nil, err
	}
	if err := idx.store.PutMetaEntries(dir, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Resolve finds the on-disk file for info within dir, preferring the
// metadata index and falling back to filename-based scoring (§4.3).
func (idx *Index) Resolve(info domain.PackageInfo, dir string) (string, bool) {
	if path, ok := idx.resolveByMeta(info, dir); ok {
		return path, true
	}
	return idx.resolveByFilename(info, dir)
}

func (idx *Index) resolveByMeta(info domain.PackageInfo, dir string) (string, bool) {
	entries, err := idx.MetaIndex(dir)
	if err != nil {
		return "", false
	}

	uuidKey := NormalizePakKey(info.UUID)
	folderKey := NormalizePakKey(info.Folder)
	nameKey := NormalizePakKey(info.Name)

	for _, e := range entries {
		if uuidKey != "" && e.UUIDKey == uuidKey {
			return idx.recheckMetaMatch(e, dir)
		}
	}

	best, ok := pickBestMetaMatch(entries, folderKey, nameKey)
	if !ok {
		return "", false
	}
	return idx.recheckMetaMatch(best, dir)
}

// recheckMetaMatch re-verifies that the candidate's on-disk (size, modTime)
// still matches the index before accepting it; on mismatch, it forces one
// refresh and retries.
func (idx *Index) recheckMetaMatch(candidate MetaEntry, dir string) (string, bool) {
	info, err := os.Stat(candidate.FullPath)
	if err != nil {
		return "", false
	}
	if info.Size() == candidate.Size && info.ModTime().Unix() == candidate.ModTime {
		return candidate.FullPath, true
	}

	// Force refresh and retry once.
	if err := idx.store.SetDirModTime(dir, 0); err != nil {
		return "", false
	}
	entries, err := idx.MetaIndex(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.FullPath == candidate.FullPath {
			refreshed, err := os.Stat(e.FullPath)
			if err == nil && refreshed.Size() == e.Size {
				return e.FullPath, true
			}
		}
	}
	return "", false
}

func pickBestMetaMatch(entries []MetaEntry, folderKey, nameKey string) (MetaEntry, bool) {
	type scored struct {
		entry MetaEntry
		score int
	}
	var candidates []scored
	for _, e := range entries {
		folderMatch := 0
		if folderKey != "" && e.FolderKey == folderKey {
			folderMatch = 1
		}
		nameMatch := 0
		if nameKey != "" && e.NameKey == nameKey {
			nameMatch = 1
		}
		if folderMatch == 0 && nameMatch == 0 {
			continue
		}
		candidates = append(candidates, scored{entry: e, score: 2*folderMatch + nameMatch})
	}
	if len(candidates) == 0 {
		return MetaEntry{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].entry.ModTime != candidates[j].entry.ModTime {
			return candidates[i].entry.ModTime > candidates[j].entry.ModTime
		}
		return candidates[i].entry.FullPath < candidates[j].entry.FullPath
	})
	return candidates[0].entry, true
}

// Filename-matching scoring tiers, decreasing by key specificity (uuid
// prefixes, then folder, then folder-base, then name) and by match quality
// (exact, starts-with, contains) within each key.
const (
	scoreUUIDFullExact   = 120
	scoreUUIDFullPrefix  = 100
	scoreUUIDFullContain = 80

	scoreUUID16Exact   = 95
	scoreUUID16Prefix  = 80
	scoreUUID16Contain = 60

	scoreUUID8Exact   = 70
	scoreUUID8Prefix  = 55
	scoreUUID8Contain = 35

	scoreFolderExact   = 90
	scoreFolderPrefix  = 70
	scoreFolderContain = 50

	scoreFolderBaseExact   = 75
	scoreFolderBasePrefix  = 55
	scoreFolderBaseContain = 35

	scoreNameExact   = 85
	scoreNamePrefix  = 65
	scoreNameContain = 45
)

func (idx *Index) resolveByFilename(info domain.PackageInfo, dir string) (string, bool) {
	entries, err := idx.FilenameIndex(dir)
	if err != nil {
		return "", false
	}

	uuidKey := NormalizePakKey(info.UUID)
	var uuid16, uuid8 string
	if len(uuidKey) >= 16 {
		uuid16 = uuidKey[:16]
	}
	if len(uuidKey) >= 8 {
		uuid8 = uuidKey[:8]
	}
	folderKey := NormalizePakKey(info.Folder)
	folderBase := folderKey
	if i := strings.IndexByte(info.Folder, '_'); i >= 0 {
		folderBase = NormalizePakKey(info.Folder[:i])
	}
	nameKey := NormalizePakKey(info.Name)

	type scored struct {
		entry FilenameEntry
		score int
		diff  int
	}
	var best *scored

	for _, e := range entries {
		score := 0
		score += matchDetail(e.NormalizedStem, uuidKey, scoreUUIDFullExact, scoreUUIDFullPrefix, scoreUUIDFullContain)
		score += matchDetail(e.NormalizedStem, uuid16, scoreUUID16Exact, scoreUUID16Prefix, scoreUUID16Contain)
		score += matchDetail(e.NormalizedStem, uuid8, scoreUUID8Exact, scoreUUID8Prefix, scoreUUID8Contain)
		score += matchDetail(e.NormalizedStem, folderKey, scoreFolderExact, scoreFolderPrefix, scoreFolderContain)
		score += matchDetail(e.NormalizedStem, folderBase, scoreFolderBaseExact, scoreFolderBasePrefix, scoreFolderBaseContain)
		score += matchDetail(e.NormalizedStem, nameKey, scoreNameExact, scoreNamePrefix, scoreNameContain)

		if score == 0 {
			continue
		}

		diff := len(e.NormalizedStem) - len(folderKey)
		if diff < 0 {
			diff = -diff
		}

		if best == nil || score > best.score || (score == best.score && diff < best.diff) {
			best = &scored{entry: e, score: score, diff: diff}
		}
	}

	if best == nil {
		return "", false
	}
	return best.entry.FullPath, true
}

// matchDetail scores one candidate key against a normalized filename stem
// with three tiers: exact, starts-with, contains.
func matchDetail(stem, needle string, exact, prefix, contains int) int {
	if needle == "" {
		return 0
	}
	if stem == needle {
		return exact
	}
	if strings.HasPrefix(stem, needle) {
		return prefix
	}
	if strings.Contains(stem, needle) {
		return contains
	}
	return 0
}
