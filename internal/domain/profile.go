package domain

// ProfileEntry is one mod's position and enable state in a profile's load
// order. Order within Profile.Order is load order: first entry loads first,
// last entry wins conflicts by default.
type ProfileEntry struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// FileOverride pins the winner for a single destination path, identified by
// target kind and path relative to that target's root.
type FileOverride struct {
	Kind         TargetKind `json:"kind"`
	RelativePath string     `json:"relative_path"`
	ModID        string     `json:"mod_id"`
}

// Profile is an ordered list of mod references plus per-destination-file
// overrides.
type Profile struct {
	Name          string         `json:"name"`
	Order         []ProfileEntry `json:"order"`
	FileOverrides []FileOverride `json:"file_overrides"`
}

// NewProfile creates an empty profile with the given name.
func NewProfile(name string) Profile {
	return Profile{Name: name, Order: []ProfileEntry{}, FileOverrides: []FileOverride{}}
}

// IndexOf returns the position of modID in Order, or -1.
func (p Profile) IndexOf(modID string) int {
	for i, e := range p.Order {
		if e.ID == modID {
			return i
		}
	}
	return -1
}

// EnsureMods appends any id in modIDs missing from Order as a disabled
// entry, and prunes FileOverrides referencing ids outside modIDs.
func (p *Profile) EnsureMods(modIDs []string) {
	known := make(map[string]struct{}, len(modIDs))
	for _, id := range modIDs {
		known[id] = struct{}{}
		if p.IndexOf(id) == -1 {
			p.Order = append(p.Order, ProfileEntry{ID: id, Enabled: false})
		}
	}

	filtered := p.FileOverrides[:0:0]
	for _, o := range p.FileOverrides {
		if _, ok := known[o.ModID]; ok {
			filtered = append(filtered, o)
		}
	}
	p.FileOverrides = filtered
}

// MoveUp swaps entry i with i-1 when in range.
func (p *Profile) MoveUp(i int) {
	if i <= 0 || i >= len(p.Order) {
		return
	}
	p.Order[i], p.Order[i-1] = p.Order[i-1], p.Order[i]
}

// MoveDown swaps entry i with i+1 when in range.
func (p *Profile) MoveDown(i int) {
	if i < 0 || i+1 >= len(p.Order) {
		return
	}
	p.Order[i], p.Order[i+1] = p.Order[i+1], p.Order[i]
}

// FileOverrideFor looks up an override for (kind, relativePath).
func (p Profile) FileOverrideFor(kind TargetKind, relativePath string) (FileOverride, bool) {
	for _, o := range p.FileOverrides {
		if o.Kind == kind && o.RelativePath == relativePath {
			return o, true
		}
	}
	return FileOverride{}, false
}

// ExportedProfile is the YAML-serializable shape used for profile
// export/import (share between installs of the same game).
type ExportedProfile struct {
	GameID        string                   `yaml:"game_id"`
	Name          string                   `yaml:"name"`
	Entries       []ExportedProfileEntry   `yaml:"entries"`
	FileOverrides []ExportedFileOverride   `yaml:"file_overrides,omitempty"`
}

// ExportedProfileEntry names a mod by id and by its display name, so an
// importer can fall back to matching by name when ids don't line up across
// libraries.
type ExportedProfileEntry struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// ExportedFileOverride is the YAML-friendly form of FileOverride, keyed by
// mod name rather than id so it resolves across libraries.
type ExportedFileOverride struct {
	Kind         TargetKind `yaml:"kind"`
	RelativePath string     `yaml:"relative_path"`
	ModName      string     `yaml:"mod_name"`
}
