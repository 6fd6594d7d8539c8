package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/linker"
)

// DeployOptions configures one deploy run (§4.8).
type DeployOptions struct {
	Backup bool
	Reason string
}

// Deployer executes the full deploy sequence against one game's resolved
// paths and library-managed mod directory.
type Deployer struct {
	DataDir  string
	Paths    domain.GamePaths
	GameName string
}

// Deploy runs the sequence described in §4.8, steps 1-7, returning a
// DeployReport. It refuses to run if paths are unset, and undoes
// already-linked loose destinations in reverse order if any link fails.
func (d *Deployer) Deploy(lib *domain.Library, timestamp int64, opts DeployOptions) (domain.DeployReport, error) {
	if d.Paths.GameRoot == "" || d.Paths.DataDir == "" || d.Paths.LarianModsDir == "" {
		return domain.DeployReport{}, domain.ErrGamePathsNotSet
	}

	if opts.Backup {
		if _, err := CreateBackup(d.DataDir, *lib, d.GameName, d.Paths.ModSettingsPath, timestamp, opts.Reason); err != nil {
			return domain.DeployReport{}, err
		}
	}

	profile, ok := lib.ProfileByName(lib.ActiveProfile)
	if !ok {
		return domain.DeployReport{}, domain.ErrProfileNotFound
	}

	removed, err := d.teardown()
	if err != nil {
		return domain.DeployReport{}, err
	}

	linkModes, err := linker.NewResolver(d.DataDir)
	if err != nil {
		return domain.DeployReport{}, err
	}

	byID := lib.IndexByID()

	packageFiles, warnings, err := d.installPackages(lib.ModIDs(), byID, profile, linkModes)
	if err != nil {
		return domain.DeployReport{}, err
	}

	planResult, err := Plan(PlanInput{Library: *lib, Profile: profile, Paths: d.Paths, DataDir: d.DataDir})
	if err != nil {
		return domain.DeployReport{}, err
	}
	looseFiles, err := d.installLoose(planResult.Rows, linkModes)
	if err != nil {
		return domain.DeployReport{}, err
	}

	if err := d.updateLoadOrder(lib.ModIDs(), byID, profile); err != nil {
		return domain.DeployReport{}, err
	}

	manifest := domain.DeployManifest{LooseFiles: looseFiles, Packages: packageFiles}
	if err := writeManifestAtomic(d.DataDir, manifest); err != nil {
		return domain.DeployReport{}, err
	}

	overridden := 0
	for _, c := range planResult.Conflicts {
		if c.Overridden {
			overridden++
		}
	}

	return domain.DeployReport{
		Packages:          len(packageFiles),
		LooseTargets:      len(looseFiles),
		TotalFiles:        len(packageFiles) + len(looseFiles),
		Overridden:        overridden,
		RemovedOnTeardown: removed,
		LinkMode:          linkModes.Summary(),
		Warnings:          warnings,
	}, nil
}

// teardown loads the previous manifest and deletes every recorded
// destination that still sits under the configured roots.
func (d *Deployer) teardown() (int, error) {
	path := filepath.Join(d.DataDir, "deploy_manifest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read previous manifest: %w", err)
	}

	var manifest domain.DeployManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return 0, fmt.Errorf("parse previous manifest: %w", err)
	}

	roots := []string{d.Paths.GameRoot, d.Paths.DataDir}
	removed := 0
	for _, f := range manifest.LooseFiles {
		if removeIfUnderRoots(f.Path, roots) {
			removed++
		}
	}
	for _, f := range manifest.Packages {
		if removeIfUnderRoots(f.Path, []string{d.Paths.LarianModsDir}) {
			removed++
		}
	}
	return removed, nil
}

func removeIfUnderRoots(path string, roots []string) bool {
	for _, root := range roots {
		if root == "" {
			continue
		}
		if strings.HasPrefix(path, root) {
			if err := os.Remove(path); err == nil || os.IsNotExist(err) {
				return err == nil
			}
			return false
		}
	}
	return false
}

// installPackages links every enabled mod's Package target to
// <larian_mods_dir>/<folder>.pak, per §4.8 step 4. Disabled mods'
// packages do not get destinations here (but still appear in the
// load-order config's Mods list, per the Open Question #1 distinction).
func (d *Deployer) installPackages(orderedIDs []string, byID map[string]domain.ModEntry, profile domain.Profile, modes *linker.Resolver) ([]domain.DeployedFile, []string, error) {
	var deployed []domain.DeployedFile
	var warnings []string
	var created []string

	for _, entry := range profile.Order {
		if !entry.Enabled {
			continue
		}
		mod, ok := byID[entry.ID]
		if !ok {
			continue
		}
		for _, t := range mod.Targets {
			if t.Kind != domain.TargetPackage || !mod.IsTargetEnabled(domain.TargetPackage) {
				continue
			}

			if mod.IsNative() {
				// Native packages already live at their destination, managed by
				// the game's own subscription install — sigillink never links
				// them and must not record them in the manifest, or the next
				// deploy's teardown would delete a file it never created.
				continue
			}

			src := filepath.Join(d.DataDir, "mods", mod.ID, t.File)
			dst := filepath.Join(d.Paths.LarianModsDir, t.Info.Folder+".pak")

			if info, statErr := os.Lstat(dst); statErr == nil && info.IsDir() {
				d.undoCreated(created)
				return nil, nil, fmt.Errorf("%w: %s", domain.ErrDirIsDestination, dst)
			}

			l, err := modes.For(d.Paths.LarianModsDir)
			if err != nil {
				d.undoCreated(created)
				return nil, nil, err
			}
			if err := l.Deploy(src, dst); err != nil {
				d.undoCreated(created)
				return nil, nil, fmt.Errorf("%w: %s -> %s: %v", domain.ErrLinkFailed, src, dst, err)
			}
			created = append(created, dst)
			deployed = append(deployed, domain.DeployedFile{Path: dst, ModID: mod.ID, ModName: mod.DisplayName(), Kind: domain.TargetPackage})
		}
	}

	return deployed, warnings, nil
}

// installLoose links the Planner's rows to their destinations, undoing in
// reverse on any failure (§4.8 step 5).
func (d *Deployer) installLoose(rows []domain.LoosePlanRow, modes *linker.Resolver) ([]domain.DeployedFile, error) {
	var deployed []domain.DeployedFile
	var created []string

	for _, row := range rows {
		l, err := modes.For(row.DestRoot)
		if err != nil {
			d.undoCreated(created)
			return nil, err
		}

		if err := l.Deploy(row.Source, row.Dest); err != nil {
			d.undoCreated(created)
			return nil, fmt.Errorf("%w: (%s, %s, %s): %v", domain.ErrLinkFailed, row.DestRoot, row.Source, row.Dest, err)
		}
		created = append(created, row.Dest)
		deployed = append(deployed, domain.DeployedFile{Path: row.Dest, ModID: row.WinnerID, ModName: row.WinnerName, Kind: row.Kind})
	}

	return deployed, nil
}

func (d *Deployer) undoCreated(created []string) {
	for i := len(created) - 1; i >= 0; i-- {
		_ = os.Remove(created[i])
	}
}

// updateLoadOrder rewrites the game's load-order config (§4.8 step 6):
// every package-carrying mod in the profile is listed in Mods, while the
// enabled subset (in profile order) defines ModOrder.
func (d *Deployer) updateLoadOrder(orderedIDs []string, byID map[string]domain.ModEntry, profile domain.Profile) error {
	existing, err := ReadLoadOrder(d.Paths.ModSettingsPath)
	if err != nil {
		return err
	}

	var installed []domain.PackageInfo
	var enabledOrder []string
	for _, entry := range profile.Order {
		mod, ok := byID[entry.ID]
		if !ok || !mod.HasTargetKind(domain.TargetPackage) {
			continue
		}
		for _, t := range mod.Targets {
			if t.Kind != domain.TargetPackage {
				continue
			}
			installed = append(installed, t.Info)
			if entry.Enabled {
				enabledOrder = append(enabledOrder, t.Info.UUID)
			}
		}
	}

	rebuilt := BuildLoadOrder(existing, installed, enabledOrder)
	return WriteLoadOrder(d.Paths.ModSettingsPath, rebuilt)
}

func writeManifestAtomic(dataDir string, manifest domain.DeployManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal deploy manifest: %w", err)
	}
	path := filepath.Join(dataDir, "deploy_manifest.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write deploy manifest temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize deploy manifest: %w", err)
	}
	return nil
}
