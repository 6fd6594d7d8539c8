package domain

// ConflictCandidate is one mod competing to produce a destination path.
type ConflictCandidate struct {
	ModID   string
	ModName string
}

// ConflictEntry is computed fresh on every plan; it is never persisted.
type ConflictEntry struct {
	Kind         TargetKind
	RelativePath string
	Candidates   []ConflictCandidate // in profile order
	DefaultWinner string
	Winner       string
	Overridden   bool
}

// LoosePlanRow is one concrete file placement decision produced by the
// Conflict/Deploy Planner.
type LoosePlanRow struct {
	Source       string
	Dest         string
	DestRoot     string
	Kind         TargetKind
	WinnerID     string
	WinnerName   string
	RelativePath string
	Order        int
}

// DeployedFile is one entry in the persisted deploy manifest.
type DeployedFile struct {
	Path    string     `json:"path"`
	ModID   string      `json:"mod_id"`
	ModName string      `json:"mod_name"`
	Kind    TargetKind  `json:"kind"`
}

// DeployManifest is the persisted record of a deploy's destinations, used to
// compute the next deploy's teardown set.
type DeployManifest struct {
	LooseFiles []DeployedFile `json:"loose_files"`
	Packages   []DeployedFile `json:"packages"`
}

// LinkModeSummary is the aggregate label reported for a deploy: "none" when
// nothing was linked, "hardlink"/"symlink" when every destination used the
// same mode, "mixed" otherwise.
type LinkModeSummary string

const (
	LinkModeNone     LinkModeSummary = "none"
	LinkModeHardlink LinkModeSummary = "hardlink"
	LinkModeSymlink  LinkModeSummary = "symlink"
	LinkModeMixed    LinkModeSummary = "mixed"
)

// DeployReport is returned to the caller after a deploy completes.
type DeployReport struct {
	Packages       int
	LooseTargets   int
	TotalFiles     int
	Overridden     int
	RemovedOnTeardown int
	LinkMode       LinkModeSummary
	Warnings       []string
}
