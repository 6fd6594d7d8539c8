package core

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agistaris/sigillink/internal/domain"
)

// CreateProfile appends a new empty profile to lib, seeded with every
// library mod id disabled, and returns it. Fails if name is already taken.
func CreateProfile(lib *domain.Library, name string) (*domain.Profile, error) {
	if _, ok := lib.ProfileByName(name); ok {
		return nil, fmt.Errorf("profile %q already exists", name)
	}
	p := domain.NewProfile(name)
	p.EnsureMods(lib.ModIDs())
	lib.Profiles = append(lib.Profiles, p)
	return &lib.Profiles[len(lib.Profiles)-1], nil
}

// RenameProfile renames the profile named from to to, updating
// ActiveProfile if it pointed at the renamed profile.
func RenameProfile(lib *domain.Library, from, to string) error {
	if _, ok := lib.ProfileByName(to); ok {
		return fmt.Errorf("profile %q already exists", to)
	}
	for i := range lib.Profiles {
		if lib.Profiles[i].Name == from {
			lib.Profiles[i].Name = to
			if lib.ActiveProfile == from {
				lib.ActiveProfile = to
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, from)
}

// DuplicateProfile copies the named profile's order and overrides under a
// new name.
func DuplicateProfile(lib *domain.Library, name, newName string) (*domain.Profile, error) {
	src, ok := lib.ProfileByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	if _, ok := lib.ProfileByName(newName); ok {
		return nil, fmt.Errorf("profile %q already exists", newName)
	}

	dup := domain.Profile{
		Name:          newName,
		Order:         append([]domain.ProfileEntry(nil), src.Order...),
		FileOverrides: append([]domain.FileOverride(nil), src.FileOverrides...),
	}
	lib.Profiles = append(lib.Profiles, dup)
	return &lib.Profiles[len(lib.Profiles)-1], nil
}

// DeleteProfile removes the named profile. Deleting the last remaining
// profile is refused — a library always has at least one.
func DeleteProfile(lib *domain.Library, name string) error {
	if len(lib.Profiles) <= 1 {
		return fmt.Errorf("cannot delete the only remaining profile")
	}
	for i, p := range lib.Profiles {
		if p.Name == name {
			lib.Profiles = append(lib.Profiles[:i], lib.Profiles[i+1:]...)
			if lib.ActiveProfile == name {
				lib.ActiveProfile = lib.Profiles[0].Name
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
}

// ExportProfile converts a profile to its YAML-serializable shape, keyed by
// mod name so it can be imported into a different library.
func ExportProfile(lib domain.Library, gameID domain.GameID, name string) (domain.ExportedProfile, error) {
	p, ok := lib.ProfileByName(name)
	if !ok {
		return domain.ExportedProfile{}, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}

	byID := lib.IndexByID()
	out := domain.ExportedProfile{GameID: string(gameID), Name: p.Name}
	for _, e := range p.Order {
		mod, ok := byID[e.ID]
		if !ok {
			continue
		}
		out.Entries = append(out.Entries, domain.ExportedProfileEntry{
			ID:      e.ID,
			Name:    mod.Name,
			Enabled: e.Enabled,
		})
	}
	for _, o := range p.FileOverrides {
		mod, ok := byID[o.ModID]
		if !ok {
			continue
		}
		out.FileOverrides = append(out.FileOverrides, domain.ExportedFileOverride{
			Kind:         o.Kind,
			RelativePath: o.RelativePath,
			ModName:      mod.Name,
		})
	}
	return out, nil
}

// MarshalExportedProfile serializes an exported profile to YAML.
func MarshalExportedProfile(exported domain.ExportedProfile) ([]byte, error) {
	data, err := yaml.Marshal(exported)
	if err != nil {
		return nil, fmt.Errorf("marshal exported profile: %w", err)
	}
	return data, nil
}

// ImportResult reports which exported entries could not be resolved against
// the target library.
type ImportResult struct {
	Profile      domain.Profile
	UnknownMods  []string
}

// ImportProfile parses YAML data produced by MarshalExportedProfile and
// builds a profile against lib, matching each entry first by id, then by
// case-insensitive name. Entries that match neither are reported in
// UnknownMods and skipped. Library mods the export does not name are then
// appended disabled, so the profile covers the whole library.
func ImportProfile(lib domain.Library, data []byte, profileName string) (ImportResult, error) {
	var exported domain.ExportedProfile
	if err := yaml.Unmarshal(data, &exported); err != nil {
		return ImportResult{}, fmt.Errorf("parse exported profile: %w", err)
	}

	byID := lib.IndexByID()
	byName := make(map[string]string, len(lib.Mods)) // lowercase name -> id
	for _, m := range lib.Mods {
		byName[strings.ToLower(m.Name)] = m.ID
	}

	name := profileName
	if name == "" {
		name = exported.Name
	}
	result := ImportResult{Profile: domain.NewProfile(name)}

	for _, e := range exported.Entries {
		id := e.ID
		if _, ok := byID[id]; !ok {
			if resolved, ok := byName[strings.ToLower(e.Name)]; ok {
				id = resolved
			} else {
				result.UnknownMods = append(result.UnknownMods, e.Name)
				continue
			}
		}
		result.Profile.Order = append(result.Profile.Order, domain.ProfileEntry{ID: id, Enabled: e.Enabled})
	}

	for _, o := range exported.FileOverrides {
		id := ""
		if resolved, ok := byName[strings.ToLower(o.ModName)]; ok {
			id = resolved
		} else {
			continue
		}
		result.Profile.FileOverrides = append(result.Profile.FileOverrides, domain.FileOverride{
			Kind:         o.Kind,
			RelativePath: o.RelativePath,
			ModID:        id,
		})
	}

	result.Profile.EnsureMods(lib.ModIDs())
	return result, nil
}
