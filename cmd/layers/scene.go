package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/vovakirdan/tui-layers/internal/core"
	"github.com/vovakirdan/tui-layers/internal/registry"
	"github.com/vovakirdan/tui-layers/internal/scene"
)

// loadScene resolves arg as a registered scene ID first and as a scene file
// second.
func loadScene(arg string) (*scene.Scene, error) {
	if registry.Exists(arg) {
		return registry.Create(arg)
	}
	if _, err := os.Stat(arg); err == nil {
		return scene.LoadPath(arg)
	}
	return nil, fmt.Errorf("unknown scene %q (run 'layers list' to see available scenes)", arg)
}

// runtimeConfig sizes the session to the terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW, cfg.ScreenH = w, h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}
