// Package registry provides a global registry of scene factories.
// Scene packages register themselves in init() functions, allowing the CLI
// and the viewer to discover scenes without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-layers/internal/scene"
)

// SceneInfo contains metadata about a registered scene.
type SceneInfo struct {
	ID          string
	Title       string
	Description string
	Bodies      int
}

// Factory returns a fresh copy of a scene. Each call must return an
// independent value so callers can build several worlds from it.
type Factory func() (*scene.Scene, error)

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]SceneInfo)
	mu        sync.RWMutex
)

// Register adds a scene factory to the registry.
// Panics if a scene with the same ID is already registered or the factory
// cannot produce its scene.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scene %q already registered", id))
	}

	s, err := f()
	if err != nil {
		panic(fmt.Sprintf("registry: scene %q: %v", id, err))
	}
	factories[id] = f
	infos[id] = SceneInfo{
		ID:          id,
		Title:       s.Name,
		Description: s.Description,
		Bodies:      len(s.Bodies),
	}
}

// List returns information about all registered scenes, sorted by ID.
func List() []SceneInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SceneInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create returns a new copy of the scene with the given ID.
func Create(id string) (*scene.Scene, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown scene %q", id)
	}
	return f()
}

// Exists checks if a scene with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
