// Package formats provides scene file parsers.
package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLScene represents the YAML structure of a scene file.
type YAMLScene struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Ticks       int               `yaml:"ticks,omitempty"`
	Physics     Overrides         `yaml:"physics,omitempty"`
	Bodies      []YAMLBody        `yaml:"bodies"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// Overrides replaces selected world parameters for one scene.
// Nil fields keep the configured value.
type Overrides struct {
	Gravity         *float64 `yaml:"gravity,omitempty"`
	EnergyDecrease  *float64 `yaml:"energy_decrease,omitempty"`
	GroundTolerance *float64 `yaml:"ground_tolerance,omitempty"`
	LayerBand       *float64 `yaml:"layer_band,omitempty"`
	StepAllowance   *float64 `yaml:"step_allowance,omitempty"`
	MaxVelocity     *float64 `yaml:"max_velocity,omitempty"`
}

// YAMLBody is one body entry. Vectors are [x, y, z]; size is
// [width, height, depth]. Rotation is in degrees.
type YAMLBody struct {
	Name         string    `yaml:"name"`
	Size         []float64 `yaml:"size"`
	Position     []float64 `yaml:"position"`
	Velocity     []float64 `yaml:"velocity,omitempty"`
	Mass         float64   `yaml:"mass,omitempty"`
	Friction     float64   `yaml:"friction,omitempty"`
	MaxVelocity  float64   `yaml:"max_velocity,omitempty"`
	Rotation     float64   `yaml:"rotation,omitempty"`
	Distribution string    `yaml:"distribution,omitempty"`
	Static       bool      `yaml:"static,omitempty"`
	Immaterial   bool      `yaml:"immaterial,omitempty"`
	Player       bool      `yaml:"player,omitempty"`
	Repeat       *Repeat   `yaml:"repeat,omitempty"`
}

// Repeat expands one body entry into a row of copies, each offset by Step
// from the previous one. Names get a numeric suffix.
type Repeat struct {
	Count int       `yaml:"count"`
	Step  []float64 `yaml:"step"`
}

// Scene represents a parsed scene ready for validation.
type Scene struct {
	ID          string
	Name        string
	Description string
	Ticks       int
	Physics     Overrides
	Bodies      []YAMLBody
	Metadata    map[string]string
}

// ParseYAML parses a YAML scene file and expands repeated bodies.
func ParseYAML(data []byte) (Scene, error) {
	var ys YAMLScene
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return Scene{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	scene := Scene{
		ID:          ys.ID,
		Name:        ys.Name,
		Description: ys.Description,
		Ticks:       ys.Ticks,
		Physics:     ys.Physics,
		Metadata:    ys.Metadata,
	}
	if scene.Name == "" {
		scene.Name = scene.ID
	}

	for _, b := range ys.Bodies {
		expanded, err := expand(b)
		if err != nil {
			return Scene{}, err
		}
		scene.Bodies = append(scene.Bodies, expanded...)
	}
	return scene, nil
}

// MarshalYAML encodes a scene back into the file format.
func MarshalYAML(s Scene) ([]byte, error) {
	return yaml.Marshal(YAMLScene{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Ticks:       s.Ticks,
		Physics:     s.Physics,
		Bodies:      s.Bodies,
		Metadata:    s.Metadata,
	})
}

func expand(b YAMLBody) ([]YAMLBody, error) {
	if b.Repeat == nil {
		return []YAMLBody{b}, nil
	}
	r := *b.Repeat
	if r.Count < 1 {
		return nil, fmt.Errorf("body %q: repeat count must be positive, got %d", b.Name, r.Count)
	}
	if len(r.Step) != 3 || len(b.Position) != 3 {
		return nil, fmt.Errorf("body %q: repeat needs a 3 component step and position", b.Name)
	}

	out := make([]YAMLBody, 0, r.Count)
	for i := 0; i < r.Count; i++ {
		c := b
		c.Repeat = nil
		c.Position = []float64{
			b.Position[0] + r.Step[0]*float64(i),
			b.Position[1] + r.Step[1]*float64(i),
			b.Position[2] + r.Step[2]*float64(i),
		}
		if b.Name != "" {
			c.Name = fmt.Sprintf("%s-%d", b.Name, i+1)
		}
		// Only the first copy can be the player.
		c.Player = b.Player && i == 0
		out = append(out, c)
	}
	return out, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
