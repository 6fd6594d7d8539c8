package core

import (
	"fmt"
	"path/filepath"

	"github.com/agistaris/sigillink/internal/core/filelist"
	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/pak"
)

// rankGroup orders Loose ahead of Package, matching §4.9's "group (Loose
// before Package)" sort key.
type rankGroup int

const (
	rankGroupLoose rankGroup = iota
	rankGroupPackage
)

type rankItem struct {
	id            string
	enabled       bool
	group         rankGroup
	filePaths     map[string]struct{}
	fileCount     int
	totalBytes    int64
	hasConflicts  bool
	hasScanData   bool
	originalIndex int
}

// SmartRankReport summarizes one smart-rank pass (§4.9).
type SmartRankReport struct {
	Moved     int
	Missing   int
	Conflicts int
	Total     int
	Warnings  []string
}

// SmartRank proposes a reordering of profile.Order so mods whose files will
// be overridden sit earlier and mods with large/unique payloads sit later.
func SmartRank(lib domain.Library, profile domain.Profile, dataDir, larianModsDir string) ([]domain.ProfileEntry, SmartRankReport) {
	byID := lib.IndexByID()

	var items []rankItem
	var warnings []string
	missing := 0

	for index, entry := range profile.Order {
		mod, ok := byID[entry.ID]
		if !ok {
			continue
		}

		group := rankGroupPackage
		if mod.HasTargetKind(domain.TargetData) || mod.HasTargetKind(domain.TargetGenerated) || mod.HasTargetKind(domain.TargetBin) {
			group = rankGroupLoose
		}

		item := rankItem{id: entry.ID, enabled: entry.Enabled, group: group, originalIndex: index, filePaths: map[string]struct{}{}}

		files, totalBytes, err := scanModFiles(mod, dataDir, larianModsDir, group)
		if err != nil {
			missing++
			warnings = append(warnings, fmt.Sprintf("smart rank scan failed for %s: %v", mod.DisplayName(), err))
		} else if len(files) == 0 {
			missing++
			warnings = append(warnings, fmt.Sprintf("smart rank scan empty for %s", mod.DisplayName()))
		} else {
			for _, f := range files {
				item.filePaths[f] = struct{}{}
			}
			item.hasScanData = true
			item.totalBytes = totalBytes
		}
		item.fileCount = len(item.filePaths)
		items = append(items, item)
	}

	conflicts := markConflicts(items)

	sortRankItems(items)

	entryByID := make(map[string]domain.ProfileEntry, len(profile.Order))
	for _, e := range profile.Order {
		entryByID[e.ID] = e
	}
	newOrder := make([]domain.ProfileEntry, 0, len(items))
	for _, item := range items {
		newOrder = append(newOrder, entryByID[item.id])
	}

	moved := 0
	for i := range profile.Order {
		if i >= len(newOrder) || profile.Order[i].ID != newOrder[i].ID {
			moved++
		}
	}

	return newOrder, SmartRankReport{
		Moved:     moved,
		Missing:   missing,
		Conflicts: conflicts,
		Total:     len(profile.Order),
		Warnings:  warnings,
	}
}

func markConflicts(items []rankItem) int {
	conflicts := 0
	for _, group := range []rankGroup{rankGroupLoose, rankGroupPackage} {
		pathCounts := map[string]int{}
		for i := range items {
			if items[i].group != group || !items[i].enabled || !items[i].hasScanData {
				continue
			}
			for path := range items[i].filePaths {
				pathCounts[path]++
			}
		}
		for _, c := range pathCounts {
			if c > 1 {
				conflicts++
			}
		}
		for i := range items {
			if items[i].group != group {
				continue
			}
			if !items[i].enabled || !items[i].hasScanData {
				items[i].hasConflicts = false
				continue
			}
			for path := range items[i].filePaths {
				if pathCounts[path] > 1 {
					items[i].hasConflicts = true
					break
				}
			}
		}
	}
	return conflicts
}

func sortRankItems(items []rankItem) {
	less := func(i, j int) bool {
		a, b := items[i], items[j]
		if a.group != b.group {
			return a.group < b.group
		}
		if a.enabled != b.enabled {
			return a.enabled
		}
		if a.hasScanData != b.hasScanData {
			return a.hasScanData
		}
		if a.hasConflicts != b.hasConflicts {
			return a.hasConflicts
		}
		if a.totalBytes != b.totalBytes {
			return a.totalBytes < b.totalBytes
		}
		if a.fileCount != b.fileCount {
			return a.fileCount < b.fileCount
		}
		return a.originalIndex < b.originalIndex
	}
	insertionSortRank(items, less)
}

// insertionSortRank is a stable sort over the small per-profile item list;
// used instead of sort.Slice so the comparator above reads top-to-bottom as
// the tie-break chain it is.
func insertionSortRank(items []rankItem, less func(i, j int) bool) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func scanModFiles(mod domain.ModEntry, dataDir, larianModsDir string, group rankGroup) ([]string, int64, error) {
	if group == rankGroupPackage {
		return scanPackageFiles(mod, dataDir, larianModsDir)
	}
	return scanLooseFiles(mod, dataDir)
}

func scanPackageFiles(mod domain.ModEntry, dataDir, larianModsDir string) ([]string, int64, error) {
	var paths []string
	var totalBytes int64
	found := false

	for _, t := range mod.Targets {
		if t.Kind != domain.TargetPackage {
			continue
		}
		var pakPath string
		if mod.IsNative() {
			pakPath = filepath.Join(larianModsDir, t.Info.Folder+".pak")
		} else {
			pakPath = filepath.Join(dataDir, "mods", mod.ID, t.File)
		}

		r, err := pak.Open(pakPath)
		if err != nil {
			continue
		}
		entries, err := r.ReadIndex()
		r.Close()
		if err != nil {
			continue
		}
		found = true
		for _, e := range entries {
			paths = append(paths, "pkg:"+e.Path)
			totalBytes += int64(e.DecompressedSize)
		}
	}

	if !found {
		return nil, 0, fmt.Errorf("pak file missing")
	}
	return paths, totalBytes, nil
}

func scanLooseFiles(mod domain.ModEntry, dataDir string) ([]string, int64, error) {
	var keys []string
	var totalBytes int64
	modRoot := filepath.Join(dataDir, "mods", mod.ID)

	for _, t := range mod.Targets {
		var prefix string
		switch t.Kind {
		case domain.TargetData:
			prefix = "data:"
		case domain.TargetGenerated:
			prefix = "generated:"
		case domain.TargetBin:
			prefix = "bin:"
		default:
			continue
		}

		root := filepath.Join(modRoot, t.Dir)
		cachePath := filepath.Join(modRoot, "_meta", string(t.Kind)+"-filelist.json")
		files, err := filelist.BuildOrLoad(cachePath, root)
		if err != nil {
			continue
		}
		for _, f := range files {
			keys = append(keys, prefix+f.RelativePath)
			totalBytes += f.Size
		}
	}
	return keys, totalBytes, nil
}
