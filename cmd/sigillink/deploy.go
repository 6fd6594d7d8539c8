package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agistaris/sigillink/internal/core"
)

var deployReason string

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the active profile's enabled mods into the game directory",
	RunE:  runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deployReason, "reason", "manual deploy", "reason recorded in the pre-deploy backup")
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	env, err := loadGameEnv()
	if err != nil {
		return err
	}
	if err := env.requirePaths(); err != nil {
		return err
	}

	deployer := core.Deployer{DataDir: env.dataDir, Paths: env.paths, GameName: string(env.cfg.GameID)}
	report, err := deployer.Deploy(env.lib, nowUnix(), core.DeployOptions{Backup: true, Reason: deployReason})
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	fmt.Printf("deployed %d package(s), %d loose target(s), %d file(s) total (%d overridden)\n",
		report.Packages, report.LooseTargets, report.TotalFiles, report.Overridden)
	fmt.Printf("link mode: %s\n", report.LinkMode)
	if report.RemovedOnTeardown > 0 {
		fmt.Printf("removed %d stale file(s) from the previous deploy\n", report.RemovedOnTeardown)
	}
	for _, w := range report.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return env.save()
}
