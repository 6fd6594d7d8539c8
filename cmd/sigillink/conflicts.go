package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agistaris/sigillink/internal/core"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Run the conflict/deploy planner without deploying, and list overrides",
	RunE:  runConflicts,
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	env, err := loadGameEnv()
	if err != nil {
		return err
	}
	if err := env.requirePaths(); err != nil {
		return err
	}
	profile, err := env.activeProfile()
	if err != nil {
		return err
	}

	result, err := core.Plan(core.PlanInput{Library: *env.lib, Profile: profile, Paths: env.paths, DataDir: env.dataDir})
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	if len(result.Conflicts) == 0 {
		fmt.Println("no conflicts")
		return nil
	}
	for _, c := range result.Conflicts {
		var losers []string
		for _, cand := range c.Candidates {
			if cand.ModID != c.Winner {
				losers = append(losers, cand.ModID)
			}
		}
		fmt.Printf("%v/%s: %s wins over %v\n", c.Kind, c.RelativePath, c.Winner, losers)
	}
	return nil
}
