// Package bg3 locates Baldur's Gate 3's installation and Larian user-data
// directories on a Steam/Proton Linux setup, and names the game's
// structural constants (app id, base module set).
package bg3

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agistaris/sigillink/internal/domain"
)

const (
	GameName    = "Baldur's Gate 3"
	steamAppID  = "1086940"
)

// DetectPaths resolves GamePaths, honoring explicit overrides for the game
// root and the Larian data directory. Either override bypasses
// auto-detection for that half of the pair.
func DetectPaths(gameRootOverride, larianDirOverride string) (domain.GamePaths, error) {
	gameRoot := gameRootOverride
	if gameRoot == "" {
		found, err := findGameRoot()
		if err != nil || found == "" {
			return domain.GamePaths{}, fmt.Errorf("locate BG3 game directory: %w", err)
		}
		gameRoot = found
	}

	larianDir := larianDirOverride
	if larianDir == "" {
		found := findLarianDir()
		if found == "" {
			return domain.GamePaths{}, fmt.Errorf("locate BG3 Larian data directory")
		}
		larianDir = found
	}

	if !LooksLikeGameRoot(gameRoot) {
		return domain.GamePaths{}, fmt.Errorf("invalid game root: expected Data/ and bin/ in %s", gameRoot)
	}
	if !LooksLikeLarianDir(larianDir) {
		return domain.GamePaths{}, fmt.Errorf("invalid Larian data dir: expected PlayerProfiles/ in %s", larianDir)
	}

	profilesDir := filepath.Join(larianDir, "PlayerProfiles")
	return domain.GamePaths{
		GameRoot:        gameRoot,
		DataDir:         filepath.Join(gameRoot, "Data"),
		LarianDir:       larianDir,
		LarianModsDir:   filepath.Join(larianDir, "Mods"),
		ProfilesDir:     profilesDir,
		ModSettingsPath: filepath.Join(profilesDir, "Public", "modsettings.lsx"),
	}, nil
}

func findGameRoot() (string, error) {
	home, ok := homeDir()
	if !ok {
		return "", nil
	}

	var candidates []string
	candidates = append(candidates, filepath.Join(home, ".local/share/Steam"))
	candidates = append(candidates, filepath.Join(home, ".steam/steam"))

	var libraries []string
	for _, base := range candidates {
		vdf := filepath.Join(base, "steamapps/libraryfolders.vdf")
		if _, err := os.Stat(vdf); err == nil {
			if paths, err := parseSteamLibraryPaths(vdf); err == nil {
				libraries = append(libraries, paths...)
			}
		}
		libraries = append(libraries, base)
	}

	for _, lib := range libraries {
		for _, folder := range []string{"Baldurs Gate 3", "Baldur's Gate 3"} {
			candidate := filepath.Join(lib, "steamapps/common", folder)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", nil
}

func findLarianDir() string {
	home, ok := homeDir()
	if !ok {
		return ""
	}

	native := filepath.Join(home, ".local/share/Larian Studios", GameName)
	if _, err := os.Stat(native); err == nil {
		return native
	}

	proton := filepath.Join(home,
		".local/share/Steam/steamapps/compatdata", steamAppID,
		"pfx/drive_c/users/steamuser/AppData/Local/Larian Studios", GameName)
	if _, err := os.Stat(proton); err == nil {
		return proton
	}

	return ""
}

// parseSteamLibraryPaths extracts every "path" value from a Steam
// libraryfolders.vdf, following the teacher's line-oriented VDF scan
// (internal/source/steam/vdf.go) rather than a full tree parse, since only
// top-level "path" keys are needed here.
func parseSteamLibraryPaths(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read libraryfolders.vdf: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "\"path\"") {
			continue
		}
		parts := strings.Split(line, "\"")
		if len(parts) >= 4 {
			paths = append(paths, strings.ReplaceAll(parts[3], `\\`, `\`))
		}
	}
	return paths, nil
}

func homeDir() (string, bool) {
	home := os.Getenv("HOME")
	return home, home != ""
}

// LooksLikeGameRoot reports whether path contains the Data/ and bin/
// subdirectories every BG3 install has.
func LooksLikeGameRoot(path string) bool {
	return isDir(filepath.Join(path, "Data")) && isDir(filepath.Join(path, "bin"))
}

// LooksLikeLarianDir reports whether path contains PlayerProfiles/.
func LooksLikeLarianDir(path string) bool {
	return isDir(filepath.Join(path, "PlayerProfiles"))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
