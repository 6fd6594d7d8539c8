package core

import (
	"sort"

	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/nativepak"
)

// NativeSyncResult reports what a reconciliation pass changed, per §4.10.
type NativeSyncResult struct {
	Changed     bool
	Added       int
	Renamed     int
	Reordered   bool
	Warnings    []string
}

// SyncNativePackages reconciles lib's Native-sourced mods against the
// game's load-order config: it refreshes on-disk filenames and timestamps
// for mods already in the library, synthesizes new Native mods for config
// modules the library doesn't know about yet, and rewrites the active
// profile's package order to track the config's order. It mutates lib in
// place and returns whether anything changed; a no-op pass (the steady
// state for property 8 in §8) leaves lib untouched.
func SyncNativePackages(lib *domain.Library, doc LoadOrderDoc, index *nativepak.Index, larianModsDir string, now int64) NativeSyncResult {
	result := NativeSyncResult{}
	snapshot := doc.Snapshot()

	// Open Question (§9): an empty ModOrder alongside a non-empty module
	// set means every installed native package is enabled.
	allEnabled := len(snapshot.Order) == 0 && len(snapshot.Modules) > 0
	enabled := make(map[string]struct{}, len(snapshot.Order))
	for _, uuid := range snapshot.Order {
		enabled[uuid] = struct{}{}
	}

	byUUID := make(map[string]int, len(lib.Mods))
	for i, m := range lib.Mods {
		if !m.IsNative() {
			continue
		}
		for _, t := range m.Targets {
			if t.Kind == domain.TargetPackage {
				byUUID[t.Info.UUID] = i
			}
		}
	}

	for _, info := range snapshot.Modules {
		idx, ok := byUUID[info.UUID]
		if !ok {
			continue
		}
		mod := &lib.Mods[idx]
		changed := refreshNativeMod(mod, info, index, larianModsDir, now)
		if changed {
			result.Changed = true
			result.Renamed++
		}
	}

	existingUUIDs := make(map[string]struct{}, len(byUUID))
	for uuid := range byUUID {
		existingUUIDs[uuid] = struct{}{}
	}
	for _, info := range snapshot.Modules {
		if _, ok := existingUUIDs[info.UUID]; ok {
			continue
		}
		mod := synthesizeNativeMod(info, index, larianModsDir, now)
		lib.Mods = append(lib.Mods, mod)
		result.Added++
		result.Changed = true
	}

	if result.Added > 0 {
		lib.EnsureModsInProfiles()
	}

	if reconcileActiveProfileOrder(lib, snapshot.Order, enabled, allEnabled) {
		result.Changed = true
		result.Reordered = true
	}

	return result
}

func refreshNativeMod(mod *domain.ModEntry, info domain.PackageInfo, index *nativepak.Index, larianModsDir string, now int64) bool {
	changed := false
	for i, t := range mod.Targets {
		if t.Kind != domain.TargetPackage {
			continue
		}
		if path, ok := index.Resolve(info, larianModsDir); ok {
			if t.Info.Folder != info.Folder {
				changed = true
			}
			mod.Targets[i].Info = info
			mod.Targets[i].File = path
		} else {
			mod.Targets[i].Info = info
		}
	}

	created, modified := domain.ResolveTimes(nil, mod.CreatedAt, mod.ModifiedAt)
	if modified != nil && (mod.ModifiedAt == nil || *modified > *mod.ModifiedAt) {
		mod.ModifiedAt = modified
		changed = true
	}
	if created != nil && mod.CreatedAt == nil {
		mod.CreatedAt = created
		changed = true
	}
	_ = now
	return changed
}

func synthesizeNativeMod(info domain.PackageInfo, index *nativepak.Index, larianModsDir string, now int64) domain.ModEntry {
	path, _ := index.Resolve(info, larianModsDir)
	return domain.ModEntry{
		ID:        info.UUID,
		Name:      info.Name,
		AddedAt:   now,
		CreatedAt: &now,
		ModifiedAt: &now,
		Source:    domain.SourceNative,
		Targets: []domain.InstallTarget{
			{Kind: domain.TargetPackage, File: path, Info: info},
		},
	}
}

// reconcileActiveProfileOrder rewrites the active profile's Order so that
// loose-only entries keep their current relative order ahead of packages,
// and packages follow the config's order (unknown-to-config packages
// appended in current order). enabled membership drives each package
// entry's Enabled flag.
func reconcileActiveProfileOrder(lib *domain.Library, configOrder []string, enabled map[string]struct{}, allEnabled bool) bool {
	profileIdx := -1
	for i, p := range lib.Profiles {
		if p.Name == lib.ActiveProfile {
			profileIdx = i
			break
		}
	}
	if profileIdx < 0 {
		return false
	}
	profile := &lib.Profiles[profileIdx]

	byID := lib.IndexByID()
	var loose []domain.ProfileEntry
	packageRank := make(map[string]int, len(configOrder))
	for i, uuid := range configOrder {
		packageRank[uuid] = i
	}

	type pkgEntry struct {
		entry domain.ProfileEntry
		uuid  string
		rank  int
		seq   int
	}
	var packages []pkgEntry

	for seq, e := range profile.Order {
		mod, ok := byID[e.ID]
		if !ok {
			continue
		}
		if mod.HasTargetKind(domain.TargetPackage) {
			uuid := packageUUID(mod)
			rank, known := packageRank[uuid]
			if !known {
				rank = len(configOrder) + seq
			}
			packages = append(packages, pkgEntry{entry: e, uuid: uuid, rank: rank, seq: seq})
		} else {
			loose = append(loose, e)
		}
	}

	sort.SliceStable(packages, func(i, j int) bool { return packages[i].rank < packages[j].rank })

	var rebuilt []domain.ProfileEntry
	rebuilt = append(rebuilt, loose...)
	for _, p := range packages {
		_, shouldEnable := enabled[p.uuid]
		p.entry.Enabled = shouldEnable || allEnabled
		rebuilt = append(rebuilt, p.entry)
	}

	if profileEntriesEqual(profile.Order, rebuilt) {
		return false
	}
	profile.Order = rebuilt
	return true
}

func packageUUID(mod domain.ModEntry) string {
	for _, t := range mod.Targets {
		if t.Kind == domain.TargetPackage {
			return t.Info.UUID
		}
	}
	return ""
}

func profileEntriesEqual(a, b []domain.ProfileEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
