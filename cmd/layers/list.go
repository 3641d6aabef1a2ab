package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-layers/internal/registry"
	"github.com/vovakirdan/tui-layers/internal/scene"
)

var flagListDir string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenes",
	Long: `Shows the built-in scenes, or the scene files found in a directory.

Examples:
  layers list
  layers list --dir ./scenes`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListDir, "dir", "", "List scene files in this directory instead")
}

func runList(_ *cobra.Command, _ []string) error {
	var infos []registry.SceneInfo
	if flagListDir != "" {
		scenes, err := scene.NewLoader(flagListDir).LoadAll()
		if err != nil {
			return err
		}
		for _, s := range scenes {
			infos = append(infos, registry.SceneInfo{ID: s.FilePath, Title: s.Name, Bodies: len(s.Bodies)})
		}
	} else {
		infos = registry.List()
	}

	if len(infos) == 0 {
		fmt.Println("No scenes available.")
		return nil
	}

	fmt.Println("Available scenes:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, s := range infos {
		maxIDLen = max(maxIDLen, len(s.ID))
	}

	fmt.Printf("  %-*s  %6s  %s\n", maxIDLen, "ID", "Bodies", "Title")
	fmt.Printf("  %-*s  %6s  %s\n", maxIDLen, "--", "------", "-----")
	for _, s := range infos {
		fmt.Printf("  %-*s  %6d  %s\n", maxIDLen, s.ID, s.Bodies, s.Title)
	}

	fmt.Println()
	fmt.Println("Run 'layers view <id>' to watch a scene.")
	return nil
}
