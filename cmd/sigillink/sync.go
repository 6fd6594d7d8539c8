package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agistaris/sigillink/internal/core"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the library against the game's subscription-installed packages",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	env, err := loadGameEnv()
	if err != nil {
		return err
	}
	if err := env.requirePaths(); err != nil {
		return err
	}

	index, closeIndex, err := env.nativeIndex()
	if err != nil {
		return err
	}
	defer closeIndex()

	doc, err := core.ReadLoadOrder(env.paths.ModSettingsPath)
	if err != nil {
		return fmt.Errorf("read load order: %w", err)
	}

	result := core.SyncNativePackages(env.lib, doc, index, env.paths.LarianModsDir, nowUnix())
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Printf("added %d, renamed %d, reordered=%v\n", result.Added, result.Renamed, result.Reordered)
	if !result.Changed {
		fmt.Println("no changes")
		return nil
	}
	return env.save()
}
