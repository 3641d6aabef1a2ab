// layers is a layered 2.5D physics simulator for the terminal.
//
// Usage:
//
//	layers list              - List available scenes
//	layers run <scene>       - Run a scene headlessly and record the result
//	layers view <scene>      - Watch and interact with a scene
//	layers menu              - Pick scenes interactively
//	layers serve             - Start SSH server for remote viewing
//	layers runs [scene]      - Show recorded runs
//	layers config            - Print the effective configuration
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for spawned bodies
//	--db <path>         - Set database path (default: ~/.layers/runs.db)
//	--config <path>     - Load physics.yaml from this path
//	--preset <name>     - Apply a physics preset: floaty, normal, heavy
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-layers/internal/config"

	// Import scenes to register them
	_ "github.com/vovakirdan/tui-layers/internal/scenes"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagPreset   string
	flagLogLevel string

	// appConfig is loaded once before any subcommand runs.
	appConfig config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "layers",
	Short: "Layers - a layered 2.5D physics sandbox in your terminal",
	Long: `Layers simulates boxes and ramps stacked on discrete height layers and
draws them top-down in the terminal.

Available commands:
  list     - Show all available scenes
  run      - Run a scene headlessly
  view     - Watch a scene and interact with it
  menu     - Interactive scene picker
  serve    - Start SSH server for remote viewing
  runs     - View recorded runs
  config   - Print the effective configuration

Examples:
  layers list
  layers run falling --ticks 300
  layers view ramp --preset floaty
  layers view ./my-scene.yaml
  layers serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.layers/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to physics.yaml")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Physics preset: floaty, normal, heavy")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
}

// setup configures logging and loads the configuration.
func setup(_ *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetLevel(level)
	log.SetReportTimestamp(level == log.DebugLevel)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagPreset != "" {
		preset, err := config.ParsePreset(flagPreset)
		if err != nil {
			return err
		}
		config.ApplyPreset(&cfg, preset)
	}
	if err := cfg.Physics.Validate(); err != nil {
		return err
	}
	appConfig = cfg
	log.Debug("configuration loaded", "gravity", cfg.Physics.Gravity, "preset", flagPreset)
	return nil
}
