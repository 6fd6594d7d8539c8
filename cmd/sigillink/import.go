package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a package or loose mod directory into the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	env, err := loadGameEnv()
	if err != nil {
		return err
	}

	path := args[0]
	var staged core.ImportedMod

	if strings.EqualFold(filepath.Ext(path), ".pak") {
		staged, err = core.ImportPackage(env.dataDir, path)
		if err != nil {
			return fmt.Errorf("import package: %w", err)
		}
	} else {
		scan, scanErr := core.ScanImportRoot(path)
		if scanErr != nil {
			return fmt.Errorf("scan import root: %w", scanErr)
		}
		for _, pakPath := range scan.Packages {
			imported, impErr := core.ImportPackage(env.dataDir, pakPath)
			if impErr != nil {
				fmt.Printf("warning: %v\n", impErr)
			}
			if match, found := core.DetectDuplicate(*env.lib, imported.Mod); found {
				fmt.Printf("possible duplicate of %s (similarity %.2f)\n", match.ExistingID, match.Similarity)
			}
			core.CommitImport(env.lib, []domain.ModEntry{imported.Mod}, nil)
		}
		if len(scan.LooseDirs) == 0 && len(scan.Packages) == 0 {
			return fmt.Errorf("%w: %s", domain.ErrNotRecognized, path)
		}
		if len(scan.LooseDirs) > 0 {
			staged, err = core.ImportLooseDirs(env.dataDir, scan.LooseDirs, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("import loose directories: %w", err)
			}
		}
	}

	if staged.Mod.ID != "" {
		if match, found := core.DetectDuplicate(*env.lib, staged.Mod); found {
			fmt.Printf("possible duplicate of %s (similarity %.2f)\n", match.ExistingID, match.Similarity)
		}
		core.CommitImport(env.lib, []domain.ModEntry{staged.Mod}, nil)
		fmt.Printf("imported %q as %s\n", staged.Mod.Name, staged.Mod.ID)
	}

	return env.save()
}
