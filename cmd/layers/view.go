package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-layers/internal/config"
	"github.com/vovakirdan/tui-layers/internal/platform/tui"
	"github.com/vovakirdan/tui-layers/internal/storage"
)

var viewCmd = &cobra.Command{
	Use:   "view <scene|file>",
	Short: "Watch and interact with a scene",
	Long: `Open a scene in the terminal viewer. The world is drawn from above;
colors show the height of each surface and ramps are shaded by slope.

Controls:
  W/A/S/D, arrows  - Push the player body
  Space            - Jump (only while standing on something)
  X                - Shockwave: knock nearby bodies away
  N                - Drop a crate
  L                - Toggle layer slice, [ and ] move the slice
  + / -            - Zoom
  P, .             - Pause, single step while paused
  R                - Restart the scene
  Ctrl+S           - Save a text screenshot
  Esc/B, Q         - Back, quit

Simulator diagnostics are written to ~/.layers/layers.log.

Examples:
  layers view ramp
  layers view bridge --preset heavy --fps 30
  layers view ./my-scene.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func runView(_ *cobra.Command, args []string) error {
	s, err := loadScene(args[0])
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		store = nil
	}
	logger, closeLog := viewerLogger()
	defer closeLog()

	model, runErr := tui.Run(s, runtimeConfig(), tui.ViewerOptions{
		Config: appConfig,
		Store:  store,
		Source: "viewer",
		Logger: logger,
	})

	if store != nil {
		store.Close()
	}
	if runErr != nil {
		return runErr
	}
	if id := model.SavedRunID(); id != "" {
		fmt.Printf("Recorded as run %s\n", id)
	}
	return nil
}

// viewerLogger returns a logger appending to ~/.layers/layers.log. The
// terminal belongs to the viewer, so nothing may be logged to stderr.
func viewerLogger() (*log.Logger, func()) {
	path := filepath.Join(config.UserDir(), "layers.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "viewer",
		Level:           log.GetLevel(),
	})
	return logger, func() { f.Close() }
}
