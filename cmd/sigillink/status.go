package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active profile and its mod order",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := loadGameEnv()
	if err != nil {
		return err
	}
	profile, err := env.activeProfile()
	if err != nil {
		return err
	}

	byID := env.lib.IndexByID()
	fmt.Printf("game root:   %s\n", env.paths.GameRoot)
	fmt.Printf("larian dir:  %s\n", env.paths.LarianDir)
	fmt.Printf("profile:     %s (%d entries)\n\n", profile.Name, len(profile.Order))

	for i, entry := range profile.Order {
		mod, ok := byID[entry.ID]
		name := entry.ID
		if ok {
			name = mod.Name
		}
		mark := " "
		if entry.Enabled {
			mark = "*"
		}
		fmt.Printf("%3d [%s] %s\n", i+1, mark, name)
	}
	return nil
}
