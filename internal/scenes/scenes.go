// Package scenes bundles the built-in scene files and registers them with the
// registry. Import it for side effects.
package scenes

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/vovakirdan/tui-layers/internal/registry"
	"github.com/vovakirdan/tui-layers/internal/scene"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// FS returns the embedded scene files.
func FS() fs.FS {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return sub
}

func init() {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		panic(fmt.Sprintf("scenes: %v", err))
	}
	for _, e := range entries {
		name := e.Name()
		id := strings.TrimSuffix(name, path.Ext(name))
		registry.Register(id, fileFactory(path.Join("builtin", name)))
	}
}

// fileFactory parses the embedded file on every call so each caller gets an
// independent scene.
func fileFactory(file string) registry.Factory {
	return func() (*scene.Scene, error) {
		data, err := builtinFS.ReadFile(file)
		if err != nil {
			return nil, err
		}
		s, err := scene.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		s.FilePath = "builtin:" + path.Base(file)
		return s, nil
	}
}
