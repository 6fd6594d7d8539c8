package core

import (
	"path/filepath"
	"sort"

	"github.com/agistaris/sigillink/internal/core/filelist"
	"github.com/agistaris/sigillink/internal/domain"
)

var ignoredPathParts = map[string]struct{}{
	"__macosx":    {},
	".ds_store":   {},
	"thumbs.db":   {},
	".git":        {},
	".svn":        {},
	".vscode":     {},
}

func isIgnoredRelPath(rel string) bool {
	for _, part := range splitPathParts(rel) {
		if _, ok := ignoredPathParts[normalizeIgnoreKey(part)]; ok {
			return true
		}
	}
	return false
}

func splitPathParts(rel string) []string {
	clean := filepath.ToSlash(rel)
	var parts []string
	start := 0
	for i := 0; i <= len(clean); i++ {
		if i == len(clean) || clean[i] == '/' {
			if i > start {
				parts = append(parts, clean[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

func normalizeIgnoreKey(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// destRootFor returns the destination root directory for a target kind,
// per §4.7's (game_root, data_dir_inside_game, user_dir_with_packages)
// triple, extended with the Generated/bin subdirectories.
func destRootFor(kind domain.TargetKind, paths domain.GamePaths) string {
	switch kind {
	case domain.TargetData:
		return paths.DataDir
	case domain.TargetGenerated:
		return filepath.Join(paths.DataDir, "Generated")
	case domain.TargetBin:
		return filepath.Join(paths.GameRoot, "bin")
	default:
		return ""
	}
}

// planCandidate is one file a mod contributes toward a destination path,
// before winner selection.
type planCandidate struct {
	Source       string
	DestRoot     string
	Dest         string
	ModID        string
	ModName      string
	Kind         domain.TargetKind
	Order        int
	RelativePath string
}

// PlanInput bundles everything the Planner needs.
type PlanInput struct {
	Library  domain.Library
	Profile  domain.Profile
	Paths    domain.GamePaths
	DataDir  string // <data_dir>, root of mods/<id>/...
}

// PlanResult is the Planner's output: concrete placements plus the
// conflicts they resolved.
type PlanResult struct {
	Rows      []domain.LoosePlanRow
	Conflicts []domain.ConflictEntry
}

// Plan runs the Conflict/Deploy Planner (§4.7) over in.Profile's enabled
// mods.
func Plan(in PlanInput) (PlanResult, error) {
	byID := in.Library.IndexByID()

	byDest := make(map[string][]planCandidate)
	var destOrder []string

	for order, entry := range in.Profile.Order {
		if !entry.Enabled {
			continue
		}
		mod, ok := byID[entry.ID]
		if !ok {
			continue
		}

		for _, kind := range []domain.TargetKind{domain.TargetData, domain.TargetGenerated, domain.TargetBin} {
			if !mod.IsTargetEnabled(kind) {
				continue
			}
			root := destRootFor(kind, in.Paths)
			if root == "" {
				continue
			}
			modSubdir := filepath.Join(in.DataDir, "mods", mod.ID, looseSubdirName(kind))
			cachePath := filepath.Join(in.DataDir, "mods", mod.ID, "_meta", string(kind)+"-filelist.json")

			files, err := filelist.BuildOrLoad(cachePath, modSubdir)
			if err != nil {
				continue // absent subdirectory for this kind; not an error
			}

			for _, f := range files {
				if isIgnoredRelPath(f.RelativePath) {
					continue
				}
				dest := filepath.Join(root, filepath.FromSlash(f.RelativePath))
				cand := planCandidate{
					Source:       filepath.Join(modSubdir, filepath.FromSlash(f.RelativePath)),
					DestRoot:     root,
					Dest:         dest,
					ModID:        mod.ID,
					ModName:      mod.DisplayName(),
					Kind:         kind,
					Order:        order,
					RelativePath: f.RelativePath,
				}
				if _, seen := byDest[dest]; !seen {
					destOrder = append(destOrder, dest)
				}
				byDest[dest] = append(byDest[dest], cand)
			}
		}
	}

	var rows []domain.LoosePlanRow
	var conflicts []domain.ConflictEntry

	for _, dest := range destOrder {
		cands := byDest[dest]
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].Order != cands[j].Order {
				return cands[i].Order < cands[j].Order
			}
			return cands[i].ModID < cands[j].ModID
		})

		defaultWinner := cands[len(cands)-1]
		winner := defaultWinner

		if override, ok := in.Profile.FileOverrideFor(defaultWinner.Kind, defaultWinner.RelativePath); ok {
			for _, c := range cands {
				if c.ModID == override.ModID {
					winner = c
					break
				}
			}
		}

		rows = append(rows, domain.LoosePlanRow{
			Source:       winner.Source,
			Dest:         winner.Dest,
			DestRoot:     winner.DestRoot,
			Kind:         winner.Kind,
			WinnerID:     winner.ModID,
			WinnerName:   winner.ModName,
			RelativePath: winner.RelativePath,
			Order:        winner.Order,
		})

		if len(cands) > 1 {
			var candidates []domain.ConflictCandidate
			for _, c := range cands {
				candidates = append(candidates, domain.ConflictCandidate{ModID: c.ModID, ModName: c.ModName})
			}
			conflicts = append(conflicts, domain.ConflictEntry{
				Kind:          defaultWinner.Kind,
				RelativePath:  defaultWinner.RelativePath,
				Candidates:    candidates,
				DefaultWinner: defaultWinner.ModID,
				Winner:        winner.ModID,
				Overridden:    winner.ModID != defaultWinner.ModID,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Order != rows[j].Order {
			return rows[i].Order < rows[j].Order
		}
		return rows[i].Dest < rows[j].Dest
	})
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].RelativePath < conflicts[j].RelativePath
	})

	return PlanResult{Rows: rows, Conflicts: conflicts}, nil
}
