// Package scene provides scene loading and world construction.
// A scene file lists the bodies of a layered world and may override
// selected physics parameters.
package scene

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/tui-layers/internal/scene/formats"
)

// Scene represents a complete scene definition.
type Scene struct {
	ID          string
	Name        string
	Description string
	Ticks       int // suggested run length, 0 = caller decides
	Physics     formats.Overrides
	Bodies      []formats.YAMLBody
	Metadata    map[string]string
	FilePath    string
}

// Parse parses and validates a YAML scene.
func Parse(data []byte) (*Scene, error) {
	parsed, err := formats.ParseYAML(data)
	if err != nil {
		return nil, err
	}
	s := fromFormat(parsed)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Marshal encodes the scene as YAML.
func (s *Scene) Marshal() ([]byte, error) {
	return formats.MarshalYAML(formats.Scene{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Ticks:       s.Ticks,
		Physics:     s.Physics,
		Bodies:      s.Bodies,
		Metadata:    s.Metadata,
	})
}

func fromFormat(p formats.Scene) *Scene {
	return &Scene{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Ticks:       p.Ticks,
		Physics:     p.Physics,
		Bodies:      p.Bodies,
		Metadata:    p.Metadata,
	}
}

// Loader handles loading scenes from a directory tree or any fs.FS.
type Loader struct {
	fsys fs.FS
	root string
}

// NewLoader creates a loader reading from a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{fsys: os.DirFS(root), root: root}
}

// NewFSLoader creates a loader reading from fsys, such as an embed.FS.
func NewFSLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// LoadAll recursively scans and loads all scene files.
// Invalid files are skipped. Scenes are sorted by ID.
func (l *Loader) LoadAll() ([]*Scene, error) {
	var scenes []*Scene

	err := fs.WalkDir(l.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		s, err := l.LoadFile(path)
		if err != nil {
			// Skip invalid files
			return nil
		}
		scenes = append(scenes, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.root, err)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes, nil
}

// LoadFile loads a single scene file. path is relative to the loader root.
func (l *Loader) LoadFile(path string) (*Scene, error) {
	data, err := fs.ReadFile(l.fsys, filepath.ToSlash(path))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !isSupportedExtension(ext) {
		return nil, fmt.Errorf("unsupported extension: %s", ext)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", path, err)
	}
	s.FilePath = filepath.Join(l.root, path)
	return s, nil
}

// LoadByID loads a specific scene by ID.
func (l *Loader) LoadByID(id string) (*Scene, error) {
	scenes, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, s := range scenes {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("scene not found: %s", id)
}

// ListIDs returns all scene IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	scenes, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(scenes))
	for i, s := range scenes {
		ids[i] = s.ID
	}
	return ids, nil
}

// LoadPath loads a scene file from an arbitrary path on disk.
func LoadPath(path string) (*Scene, error) {
	return NewLoader(filepath.Dir(path)).LoadFile(filepath.Base(path))
}

func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
