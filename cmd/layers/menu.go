package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-layers/internal/platform/tui"
	"github.com/vovakirdan/tui-layers/internal/registry"
	"github.com/vovakirdan/tui-layers/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick scenes from an interactive menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to open a scene.
Leaving a scene returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Open scene
  Tab          - Run history
  Q            - Quit

Examples:
  layers menu
  layers menu --fps 30
  layers menu --db ./runs.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}
	logger, closeLog := viewerLogger()
	defer closeLog()

	cfg := runtimeConfig()
	for {
		menuResult, err := tui.RunMenu(cfg)
		if err != nil {
			return err
		}
		cfg = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsRuns {
			goBack, err := tui.RunRunboard(store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				return err
			}
			if !goBack {
				return nil
			}
			continue
		}

		s, err := registry.Create(menuResult.SceneID)
		if err != nil {
			return err
		}
		model, err := tui.Run(s, cfg, tui.ViewerOptions{
			Config: appConfig,
			Store:  store,
			Source: "viewer",
			Logger: logger,
		})
		if err != nil {
			return err
		}
		if model.IsQuitting() {
			return nil
		}
	}
}
