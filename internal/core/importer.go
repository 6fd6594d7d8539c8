package core

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/metadata"
)

// looseDirNames are the loose-payload directory kinds the scanner looks
// for, per §4.4.
var looseDirNames = map[string]domain.TargetKind{
	"data":      domain.TargetData,
	"generated": domain.TargetGenerated,
	"bin":       domain.TargetBin,
}

// scanResult is the payload-scan output for one import root.
type scanResult struct {
	Packages  []string // absolute .pak paths
	LooseDirs map[domain.TargetKind]string
}

// ScanImportRoot walks root once, collecting every *.pak file and the
// shallowest Data/Generated/bin directory of each kind (with Public used as
// a last-resort Generated surrogate when not already nested under a
// Generated or Data parent), per §4.4's payload scan. A bare Script
// Extender drop (dwrite.dll, bink2w64.dll, ScriptExtenderSettings.json, or
// anything matching *scriptextender*/*bg3se* sitting directly at root) is
// treated as a bin payload at the root itself when no other payload kind
// was found, so importing an extracted BG3SE zip doesn't silently produce
// nothing to install.
func ScanImportRoot(root string) (scanResult, error) {
	result := scanResult{LooseDirs: map[domain.TargetKind]string{}}
	depths := map[domain.TargetKind]int{}
	publicCandidate := ""
	publicDepth := -1
	rootBinMarker := false

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if isIgnoredRelPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			name := strings.ToLower(d.Name())
			depth := len(splitPathParts(rel))
			if kind, ok := looseDirNames[name]; ok {
				if existing, has := depths[kind]; !has || depth < existing {
					depths[kind] = depth
					result.LooseDirs[kind] = path
				}
				return nil
			}
			if name == "public" {
				if publicDepth == -1 || depth < publicDepth {
					publicDepth = depth
					publicCandidate = path
				}
			}
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), ".pak") {
			result.Packages = append(result.Packages, path)
		}
		if depth := len(splitPathParts(rel)); depth == 1 && isBinRootFile(d.Name()) {
			rootBinMarker = true
		}
		return nil
	})
	if err != nil {
		return scanResult{}, fmt.Errorf("scan import root: %w", err)
	}

	_, hasData := result.LooseDirs[domain.TargetData]
	_, hasGenerated := result.LooseDirs[domain.TargetGenerated]
	_, hasBin := result.LooseDirs[domain.TargetBin]
	if !hasBin && rootBinMarker && len(result.Packages) == 0 && !hasData && !hasGenerated && publicCandidate == "" {
		result.LooseDirs[domain.TargetBin] = root
		hasBin = true
	}

	if !hasGenerated && publicCandidate != "" {
		if !underAny(publicCandidate, result.LooseDirs) {
			result.LooseDirs[domain.TargetGenerated] = publicCandidate
		}
	}

	sort.Strings(result.Packages)
	return result, nil
}

// isBinRootFile reports whether name is a recognizable Script Extender
// marker file, used to detect a bare BG3SE drop with no Data/Generated/bin
// wrapper directory.
func isBinRootFile(name string) bool {
	lower := strings.ToLower(name)
	switch lower {
	case "dwrite.dll", "bink2w64.dll", "scriptextendersettings.json":
		return true
	}
	return strings.Contains(lower, "scriptextender") || strings.Contains(lower, "bg3se")
}

func underAny(path string, dirs map[domain.TargetKind]string) bool {
	for _, d := range dirs {
		if d == path {
			continue
		}
		if rel, err := filepath.Rel(d, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// ImportedMod is one mod staged by the importer, ready for duplicate
// detection and commit.
type ImportedMod struct {
	Mod        domain.ModEntry
	StagedDirs []string // absolute library subfolders already populated on disk
}

// ImportPackage reads a .pak file's embedded metadata and stages it into
// <data_dir>/mods/<id>/<folder>.pak. On metadata-parse failure it falls
// back to an override-pak import treating the file as a Data-target
// resource, per §4.4; that fallback still returns a staged ImportedMod, but
// wraps domain.ErrPackageParseFailed in the returned error so the caller can
// log it as a warning rather than treat the import as failed.
func ImportPackage(dataDir, pakPath string) (ImportedMod, error) {
	meta, err := metadata.ReadMetaLSXFromPak(pakPath)
	if err != nil || meta.Module.UUID == "" {
		return importOverridePak(dataDir, pakPath)
	}

	info := domain.PackageInfo{
		UUID: meta.Module.UUID, Name: meta.Module.Name, Folder: meta.Module.Folder,
		Version: meta.Module.Version, MD5: meta.Module.MD5, Author: meta.Module.Author,
		Description: meta.Module.Description, ModuleType: meta.Module.ModuleType,
	}

	id := info.UUID
	destDir := filepath.Join(dataDir, "mods", id)
	destFile := info.Folder + ".pak"
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return ImportedMod{}, fmt.Errorf("create mod dir: %w", err)
	}
	if err := copyPreservingTimes(pakPath, filepath.Join(destDir, destFile)); err != nil {
		return ImportedMod{}, fmt.Errorf("stage package: %w", err)
	}

	fileCreated, fileModified, err := statTimes(pakPath)
	if err != nil {
		return ImportedMod{}, err
	}
	created, modified := domain.ResolveTimes(meta.CreatedAt, fileCreated, fileModified)

	mod := domain.ModEntry{
		ID: id, Name: info.Name, CreatedAt: created, ModifiedAt: modified,
		Source:  domain.SourceManaged,
		Targets: []domain.InstallTarget{{Kind: domain.TargetPackage, File: destFile, Info: info}},
	}
	return ImportedMod{Mod: mod, StagedDirs: []string{destDir}}, nil
}

func importOverridePak(dataDir, pakPath string) (ImportedMod, error) {
	fileCreated, fileModified, err := statTimes(pakPath)
	if err != nil {
		return ImportedMod{}, err
	}
	id := "pak-" + contentHash(pakPath, fileModified)
	destDir := filepath.Join(dataDir, "mods", id, "Data")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return ImportedMod{}, fmt.Errorf("create override-pak dir: %w", err)
	}
	destFile := filepath.Join(destDir, filepath.Base(pakPath))
	if err := copyPreservingTimes(pakPath, destFile); err != nil {
		return ImportedMod{}, fmt.Errorf("stage override pak: %w", err)
	}

	created, modified := domain.ResolveTimes(nil, fileCreated, fileModified)
	mod := domain.ModEntry{
		ID: id, Name: domain.CleanSourceLabel(strings.TrimSuffix(filepath.Base(pakPath), filepath.Ext(pakPath))),
		CreatedAt: created, ModifiedAt: modified, Source: domain.SourceManaged,
		Targets: []domain.InstallTarget{{Kind: domain.TargetData, Dir: "Data"}},
	}
	return ImportedMod{Mod: mod, StagedDirs: []string{filepath.Join(dataDir, "mods", id)}}, fmt.Errorf("%w: %s", domain.ErrPackageParseFailed, pakPath)
}

// ImportLooseDirs moves (or copies, on overlap) the scanned loose
// directories into <data_dir>/mods/loose-<hash>/{Data,Generated,bin}, per
// §4.4's loose-file import.
func ImportLooseDirs(dataDir string, dirs map[domain.TargetKind]string, sourceLabel string) (ImportedMod, error) {
	if len(dirs) == 0 {
		return ImportedMod{}, fmt.Errorf("no loose directories to import")
	}

	var keys []domain.TargetKind
	for k := range dirs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var refPath string
	for _, k := range keys {
		refPath = dirs[k]
		break
	}
	_, fileModified, err := statTimes(refPath)
	if err != nil {
		return ImportedMod{}, err
	}

	id := "loose-" + contentHash(refPath, fileModified)
	modRoot := filepath.Join(dataDir, "mods", id)
	if err := os.MkdirAll(modRoot, 0o755); err != nil {
		return ImportedMod{}, fmt.Errorf("create loose mod dir: %w", err)
	}

	canMove := !overlapping(dirs)
	var targets []domain.InstallTarget
	var minCreated, maxModified *int64

	for _, kind := range keys {
		src := dirs[kind]
		subdirName := looseSubdirName(kind)
		dst := filepath.Join(modRoot, subdirName)

		if hasIgnoredDescendant(src) {
			canMove = false
		}
		var moveErr error
		if canMove {
			moveErr = os.Rename(src, dst)
		}
		if !canMove || moveErr != nil {
			if err := copyDirPreservingTimes(src, dst); err != nil {
				return ImportedMod{}, fmt.Errorf("stage loose dir %s: %w", src, err)
			}
		}

		targets = append(targets, domain.InstallTarget{Kind: kind, Dir: subdirName})
		c, m, err := statTimes(dst)
		if err == nil {
			minCreated = earlier(minCreated, c)
			maxModified = later(maxModified, m)
		}
	}

	created, modified := domain.ResolveTimes(nil, minCreated, maxModified)
	label := domain.CleanSourceLabel(sourceLabel)
	mod := domain.ModEntry{
		ID: id, Name: label, CreatedAt: created, ModifiedAt: modified,
		Source: domain.SourceManaged, Targets: targets,
	}
	if label != "" {
		mod.SourceLabel = &label
	}
	return ImportedMod{Mod: mod, StagedDirs: []string{modRoot}}, nil
}

func looseSubdirName(kind domain.TargetKind) string {
	switch kind {
	case domain.TargetData:
		return "Data"
	case domain.TargetGenerated:
		return "Generated"
	case domain.TargetBin:
		return "bin"
	default:
		return string(kind)
	}
}

func overlapping(dirs map[domain.TargetKind]string) bool {
	var paths []string
	for _, d := range dirs {
		paths = append(paths, d)
	}
	for i := range paths {
		for j := range paths {
			if i == j {
				continue
			}
			if rel, err := filepath.Rel(paths[i], paths[j]); err == nil && !strings.HasPrefix(rel, "..") {
				return true
			}
		}
	}
	return false
}

func hasIgnoredDescendant(root string) bool {
	found := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if isIgnoredRelPath(rel) {
			found = true
		}
		return nil
	})
	return found
}

// DuplicateMatch describes how a staged mod collides with an existing one.
type DuplicateMatch struct {
	ExistingID string
	Exact      bool
	Similarity float64
}

// DetectDuplicate compares a staged mod's name/label against the library,
// per §4.4: exact case-insensitive name match, or normalized-label
// Levenshtein similarity >= 0.88 with both labels at least 6 characters
// after normalization.
func DetectDuplicate(lib domain.Library, candidate domain.ModEntry) (DuplicateMatch, bool) {
	candidateLabel := candidate.Name
	if candidate.SourceLabel != nil {
		candidateLabel = *candidate.SourceLabel
	}
	candidateNorm := domain.NormalizeLabel(candidateLabel)

	for _, existing := range lib.Mods {
		if strings.EqualFold(strings.TrimSpace(existing.Name), strings.TrimSpace(candidate.Name)) {
			return DuplicateMatch{ExistingID: existing.ID, Exact: true, Similarity: 1}, true
		}

		existingLabel := existing.Name
		if existing.SourceLabel != nil {
			existingLabel = *existing.SourceLabel
		}
		existingNorm := domain.NormalizeLabel(existingLabel)
		if len(candidateNorm) < 6 || len(existingNorm) < 6 {
			continue
		}
		sim := levenshteinSimilarity(candidateNorm, existingNorm)
		if sim >= 0.88 {
			return DuplicateMatch{ExistingID: existing.ID, Exact: false, Similarity: sim}, true
		}
	}
	return DuplicateMatch{}, false
}

// levenshteinSimilarity computes 1 - (edit_distance / max(len(a), len(b))).
func levenshteinSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	dist := levenshteinDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}

func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = minInt(del, minInt(ins, sub))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CommitImport appends staged mods to lib (replacing an existing mod of the
// same id when overwrite is requested), extends every profile's order, and
// prunes dangling overrides, per §4.4's commit step.
func CommitImport(lib *domain.Library, staged []domain.ModEntry, overwriteIDs map[string]bool) {
	byID := make(map[string]int, len(lib.Mods))
	for i, m := range lib.Mods {
		byID[m.ID] = i
	}

	for _, mod := range staged {
		if idx, exists := byID[mod.ID]; exists {
			if overwriteIDs[mod.ID] {
				lib.Mods[idx] = mod
			}
			continue
		}
		lib.Mods = append(lib.Mods, mod)
		byID[mod.ID] = len(lib.Mods) - 1
	}

	lib.EnsureModsInProfiles()
}

func statTimes(path string) (*int64, *int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	mtime := info.ModTime().Unix()
	return &mtime, &mtime, nil
}

func earlier(a, b *int64) *int64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b < *a {
		return b
	}
	return a
}

func later(a, b *int64) *int64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b > *a {
		return b
	}
	return a
}

func contentHash(path string, mtime *int64) string {
	h := sha1.New()
	io.WriteString(h, path)
	if mtime != nil {
		fmt.Fprintf(h, ":%d", *mtime)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func copyPreservingTimes(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func copyDirPreservingTimes(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return relErr
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyPreservingTimes(path, target)
	})
}
