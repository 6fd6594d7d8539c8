package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agistaris/sigillink/internal/core"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage load-order profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new empty profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadGameEnv()
		if err != nil {
			return err
		}
		if _, err := core.CreateProfile(env.lib, args[0]); err != nil {
			return err
		}
		return env.save()
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadGameEnv()
		if err != nil {
			return err
		}
		if _, ok := env.lib.ProfileByName(args[0]); !ok {
			return fmt.Errorf("profile %q not found", args[0])
		}
		env.lib.ActiveProfile = args[0]
		return env.save()
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadGameEnv()
		if err != nil {
			return err
		}
		if err := core.DeleteProfile(env.lib, args[0]); err != nil {
			return err
		}
		return env.save()
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadGameEnv()
		if err != nil {
			return err
		}
		for _, p := range env.lib.Profiles {
			mark := " "
			if p.Name == env.lib.ActiveProfile {
				mark = "*"
			}
			fmt.Printf("[%s] %s\n", mark, p.Name)
		}
		return nil
	},
}

var profileExportPath string

var profileExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a profile to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadGameEnv()
		if err != nil {
			return err
		}
		exported, err := core.ExportProfile(*env.lib, env.cfg.GameID, args[0])
		if err != nil {
			return err
		}
		data, err := core.MarshalExportedProfile(exported)
		if err != nil {
			return err
		}
		if profileExportPath == "" {
			profileExportPath = args[0] + ".yaml"
		}
		return os.WriteFile(profileExportPath, data, 0o644)
	},
}

var profileImportAs string

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a profile exported by another library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadGameEnv()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		result, err := core.ImportProfile(*env.lib, data, profileImportAs)
		if err != nil {
			return err
		}
		env.lib.Profiles = append(env.lib.Profiles, result.Profile)
		for _, unknown := range result.UnknownMods {
			fmt.Printf("warning: no match for %q, skipped\n", unknown)
		}
		return env.save()
	},
}

func init() {
	profileExportCmd.Flags().StringVarP(&profileExportPath, "output", "o", "", "output file (default: <name>.yaml)")
	profileImportCmd.Flags().StringVar(&profileImportAs, "as", "Imported", "name for the imported profile")

	profileCmd.AddCommand(profileCreateCmd, profileUseCmd, profileDeleteCmd, profileListCmd, profileExportCmd, profileImportCmd)
	rootCmd.AddCommand(profileCmd)
}
