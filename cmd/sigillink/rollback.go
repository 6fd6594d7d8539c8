package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agistaris/sigillink/internal/core"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore the library from the most recent pre-deploy backup",
	RunE:  runRollback,
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, args []string) error {
	env, err := loadGameEnv()
	if err != nil {
		return err
	}

	restored, err := core.RollbackLibrary(env.dataDir)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	env.lib = restored
	fmt.Println("library restored from the last backup; run deploy to apply it")
	return env.save()
}
