package main

import (
	"github.com/spf13/cobra"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive status shell",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	env, err := loadGameEnv()
	if err != nil {
		return err
	}

	deployer := core.Deployer{DataDir: env.dataDir, Paths: env.paths, GameName: string(env.cfg.GameID)}

	orch := core.NewOrchestrator(
		func(req core.ImportRequest) ([]domain.ModEntry, error) {
			imported, err := core.ImportPackage(env.dataDir, req.Path)
			if err != nil {
				return nil, err
			}
			core.CommitImport(env.lib, []domain.ModEntry{imported.Mod}, nil)
			return []domain.ModEntry{imported.Mod}, env.save()
		},
		func() (domain.DeployReport, error) {
			report, err := deployer.Deploy(env.lib, nowUnix(), core.DeployOptions{Backup: true, Reason: "tui deploy"})
			if err != nil {
				return report, err
			}
			return report, env.save()
		},
		func() (core.PlanResult, error) {
			profile, err := env.activeProfile()
			if err != nil {
				return core.PlanResult{}, err
			}
			return core.Plan(core.PlanInput{Library: *env.lib, Profile: profile, Paths: env.paths, DataDir: env.dataDir})
		},
	)
	defer orch.Close()

	profile, _ := env.activeProfile()
	return tui.Run(orch, env.cfg.GameName, profile.Name)
}
