package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agistaris/sigillink/internal/bg3"
	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
	"github.com/agistaris/sigillink/internal/nativepak"
	"github.com/agistaris/sigillink/internal/storage/config"
)

var (
	version = "0.1.0"

	gameRootFlag   string
	larianDirFlag  string
	profileFlag    string
	jsonOutput     bool
)

var rootCmd = &cobra.Command{
	Use:           "sigillink",
	Short:         "Terminal mod manager for Baldur's Gate 3",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&gameRootFlag, "game-root", "", "override the detected game install directory")
	rootCmd.PersistentFlags().StringVar(&larianDirFlag, "larian-dir", "", "override the detected Larian Studios directory")
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "profile for status, conflicts and tui (default: active profile); deploy and sync use the active profile")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print errors as JSON")
}

// Execute runs the root command. Exit codes: 0 success, 1 error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// gameEnv bundles the state every subcommand needs: the resolved paths, the
// on-disk library, and the directories config/library persistence lives
// under.
type gameEnv struct {
	dataDir string
	paths   domain.GamePaths
	cfg     *config.GameConfig
	lib     *domain.Library
}

func loadGameEnv() (*gameEnv, error) {
	app, err := config.LoadOrCreateAppConfig()
	if err != nil {
		return nil, err
	}

	gameCfg, err := config.LoadOrCreateGameConfig(app.ActiveGame, "Baldur's Gate 3", func() (domain.GamePaths, error) {
		return bg3.DetectPaths(gameRootFlag, larianDirFlag)
	})
	if err != nil {
		return nil, err
	}
	if gameRootFlag != "" {
		gameCfg.GameRoot = gameRootFlag
	}
	if larianDirFlag != "" {
		gameCfg.LarianDir = larianDirFlag
	}

	lib, err := core.LoadLibrary(gameCfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}

	return &gameEnv{dataDir: gameCfg.DataDir, paths: gameCfg.Paths(), cfg: gameCfg, lib: lib}, nil
}

func (e *gameEnv) save() error {
	if err := e.cfg.Save(); err != nil {
		return err
	}
	return core.SaveLibrary(e.dataDir, e.lib)
}

func (e *gameEnv) activeProfile() (domain.Profile, error) {
	name := profileFlag
	if name == "" {
		name = e.lib.ActiveProfile
	}
	p, ok := e.lib.ProfileByName(name)
	if !ok {
		return domain.Profile{}, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	return p, nil
}

func (e *gameEnv) nativeIndex() (*nativepak.Index, func() error, error) {
	storePath := filepath.Join(e.dataDir, "nativepak.db")
	store, err := nativepak.OpenStore(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open native package index: %w", err)
	}
	return nativepak.NewIndex(store), store.Close, nil
}

var errNoGamePaths = errors.New("game paths are not set; pass --game-root and --larian-dir, or let auto-detection run once")

func (e *gameEnv) requirePaths() error {
	if e.paths.GameRoot == "" || e.paths.LarianDir == "" {
		return errNoGamePaths
	}
	return nil
}

func main() {
	Execute()
}
