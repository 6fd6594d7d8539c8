package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agistaris/sigillink/internal/domain"
)

const libraryFileName = "library.json"
const defaultProfileName = "Default"

// LoadLibrary reads <dataDir>/library.json, creating a fresh library with a
// single Default profile if the file is absent. Invariants L1-L4 are
// enforced by construction on every load.
func LoadLibrary(dataDir string) (*domain.Library, error) {
	path := filepath.Join(dataDir, libraryFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lib := &domain.Library{
				Profiles:      []domain.Profile{domain.NewProfile(defaultProfileName)},
				ActiveProfile: defaultProfileName,
			}
			return lib, nil
		}
		return nil, fmt.Errorf("read library: %w", err)
	}

	var lib domain.Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse library: %w", err)
	}

	enforceLibraryInvariants(&lib)
	return &lib, nil
}

// SaveLibrary writes lib to <dataDir>/library.json as pretty JSON. Per
// §4.5 this write is not staged through a temp file — atomicity for
// persisted state lives at the manifest/deploy layer, not here.
func SaveLibrary(dataDir string, lib *domain.Library) error {
	enforceLibraryInvariants(lib)

	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal library: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, libraryFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write library: %w", err)
	}
	return nil
}

// enforceLibraryInvariants restores L1-L4:
//   L1: every profile's order contains exactly the library's mod id set,
//       with no duplicates.
//   L2: file_overrides reference only extant mods.
//   L3: active_profile names an extant profile.
//   L4: a missing/orphaned active_profile falls back to the first profile.
func enforceLibraryInvariants(lib *domain.Library) {
	if len(lib.Profiles) == 0 {
		lib.Profiles = []domain.Profile{domain.NewProfile(defaultProfileName)}
	}

	ids := lib.ModIDs()
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	for i := range lib.Profiles {
		dedupeProfileOrder(&lib.Profiles[i])
		lib.Profiles[i].EnsureMods(ids)
		pruneUnknownOrder(&lib.Profiles[i], known)
	}

	if lib.ActiveProfileIndex() == -1 {
		lib.ActiveProfile = lib.Profiles[0].Name
	}
}

func dedupeProfileOrder(p *domain.Profile) {
	seen := make(map[string]struct{}, len(p.Order))
	out := p.Order[:0:0]
	for _, e := range p.Order {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	p.Order = out
}

func pruneUnknownOrder(p *domain.Profile, known map[string]struct{}) {
	out := p.Order[:0:0]
	for _, e := range p.Order {
		if _, ok := known[e.ID]; ok {
			out = append(out, e)
		}
	}
	p.Order = out
}
