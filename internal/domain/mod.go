// Package domain holds the plain-value types shared across the mod-manager
// core: mods, install targets, profiles, the library, and deploy artifacts.
// Every worker receives a deep copy of these values; none of them carry
// behavior that reaches back into shared state.
package domain

// ModSource distinguishes a mod whose payload the library owns (Managed)
// from one installed by the game itself and only referenced by identity
// (Native).
type ModSource string

const (
	SourceManaged ModSource = "managed"
	SourceNative  ModSource = "native"
)

// TargetKind is the destination category for a portion of a mod's payload.
type TargetKind string

const (
	TargetPackage   TargetKind = "package"
	TargetData      TargetKind = "data"
	TargetGenerated TargetKind = "generated"
	TargetBin       TargetKind = "bin"
)

// PackageInfo holds the attributes read from a package's embedded metadata.
type PackageInfo struct {
	UUID          string
	Name          string
	Folder        string
	Version       uint64
	MD5           string
	PublishHandle uint64
	Author        string
	Description   string
	ModuleType    string
}

// InstallTarget is a tagged variant over the four target kinds. Exactly one
// of the kind-specific fields is meaningful, selected by Kind.
type InstallTarget struct {
	Kind TargetKind

	// Package-kind fields.
	File string      `json:"file,omitempty"`
	Info PackageInfo `json:"info,omitempty"`

	// Data/Generated/Bin-kind field: the relative subdirectory name inside
	// the library-managed mod directory.
	Dir string `json:"dir,omitempty"`
}

// TargetOverride flips the default "all targets enabled" rule for a single
// target kind on a single mod.
type TargetOverride struct {
	Kind    TargetKind `json:"kind"`
	Enabled bool       `json:"enabled"`
}

// ModEntry is the canonical library unit.
type ModEntry struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	CreatedAt       *int64           `json:"created_at,omitempty"`
	ModifiedAt      *int64           `json:"modified_at,omitempty"`
	AddedAt         int64            `json:"added_at"`
	Targets         []InstallTarget  `json:"targets"`
	TargetOverrides []TargetOverride `json:"target_overrides,omitempty"`
	SourceLabel     *string          `json:"source_label,omitempty"`
	Source          ModSource        `json:"source"`
}

// IsNative reports whether the mod's payload is owned by the game itself.
func (m ModEntry) IsNative() bool {
	return m.Source == SourceNative
}

// HasTargetKind reports whether the mod carries a target of the given kind.
func (m ModEntry) HasTargetKind(kind TargetKind) bool {
	for _, t := range m.Targets {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

// IsTargetEnabled reports whether a target kind present on the mod is
// enabled, defaulting to true unless an explicit TargetOverride disables it.
func (m ModEntry) IsTargetEnabled(kind TargetKind) bool {
	if !m.HasTargetKind(kind) {
		return false
	}
	for _, o := range m.TargetOverrides {
		if o.Kind == kind {
			return o.Enabled
		}
	}
	return true
}

// DisplayType summarizes the mod's target kinds as e.g. "Pak+Data".
func (m ModEntry) DisplayType() string {
	var hasPak, hasGenerated, hasData, hasBin bool
	for _, t := range m.Targets {
		switch t.Kind {
		case TargetPackage:
			hasPak = true
		case TargetGenerated:
			hasGenerated = true
		case TargetData:
			hasData = true
		case TargetBin:
			hasBin = true
		}
	}
	var kinds []string
	if hasPak {
		kinds = append(kinds, "Pak")
	}
	if hasGenerated {
		kinds = append(kinds, "Generated")
	}
	if hasData {
		kinds = append(kinds, "Data")
	}
	if hasBin {
		kinds = append(kinds, "Bin")
	}
	if len(kinds) == 0 {
		return "Unknown"
	}
	out := kinds[0]
	for _, k := range kinds[1:] {
		out += "+" + k
	}
	return out
}

// DisplayName returns the cleaned source label when present and non-empty
// after cleaning, falling back to the stored Name.
func (m ModEntry) DisplayName() string {
	if m.SourceLabel != nil {
		cleaned := CleanSourceLabel(*m.SourceLabel)
		if cleaned != "" {
			return cleaned
		}
	}
	return m.Name
}
