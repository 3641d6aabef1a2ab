package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-layers/internal/config"
)

var flagConfigDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying --config and --preset.

A physics.yaml is looked up in this order:
  1. the --config path
  2. ~/.layers/configs/physics.yaml
  3. ./configs/physics.yaml
  4. the built-in defaults

Examples:
  layers config
  layers config --preset heavy
  layers config --defaults > ~/.layers/configs/physics.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefaults, "defaults", false, "Print the built-in defaults file instead")
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagConfigDefaults {
		_, err := os.Stdout.Write(config.DefaultYAML())
		return err
	}
	out, err := yaml.Marshal(appConfig)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
