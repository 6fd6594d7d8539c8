package domain

// Library is the full persisted state this core owns: the mod set, the
// named profiles, and which profile is active. Invariants L1-L4 (see
// package core's library store) are enforced on every load and every save.
type Library struct {
	Mods          []ModEntry `json:"mods"`
	Profiles      []Profile  `json:"profiles"`
	ActiveProfile string     `json:"active_profile"`
}

// IndexByID returns the mod set keyed by id.
func (l Library) IndexByID() map[string]ModEntry {
	out := make(map[string]ModEntry, len(l.Mods))
	for _, m := range l.Mods {
		out[m.ID] = m
	}
	return out
}

// ModIDs returns the library's mod ids in stored order.
func (l Library) ModIDs() []string {
	ids := make([]string, len(l.Mods))
	for i, m := range l.Mods {
		ids[i] = m.ID
	}
	return ids
}

// ActiveProfileIndex returns the index of ActiveProfile within Profiles, or
// -1 if not found.
func (l Library) ActiveProfileIndex() int {
	for i, p := range l.Profiles {
		if p.Name == l.ActiveProfile {
			return i
		}
	}
	return -1
}

// ProfileByName returns the named profile and whether it was found.
func (l Library) ProfileByName(name string) (Profile, bool) {
	for _, p := range l.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// EnsureModsInProfiles extends every profile's order to cover every library
// mod id, per Invariant L1.
func (l *Library) EnsureModsInProfiles() {
	ids := l.ModIDs()
	for i := range l.Profiles {
		l.Profiles[i].EnsureMods(ids)
	}
}
