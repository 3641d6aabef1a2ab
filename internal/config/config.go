// Package config provides YAML-based simulator configuration loading and
// physics presets for the layers tools.
package config

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-layers/internal/physics"
)

// Config is the full configuration file.
type Config struct {
	Physics PhysicsConfig `yaml:"physics"`
	Viewer  ViewerConfig  `yaml:"viewer"`
}

// PhysicsConfig holds the world parameters handed to the simulator.
// All values are per tick.
type PhysicsConfig struct {
	Gravity         float64 `yaml:"gravity"`
	EnergyDecrease  float64 `yaml:"energy_decrease"`
	GroundTolerance float64 `yaml:"ground_tolerance"`
	LayerBand       float64 `yaml:"layer_band"`
	StepAllowance   float64 `yaml:"step_allowance"` // applied to ramps built from scene files
	MaxVelocity     float64 `yaml:"max_velocity"`   // 0 = unlimited
}

// ViewerConfig holds parameters of the interactive viewer.
type ViewerConfig struct {
	CellSize           float64 `yaml:"cell_size"`  // world units per terminal column
	PushSpeed          float64 `yaml:"push_speed"` // velocity added per key press
	JumpSpeed          float64 `yaml:"jump_speed"`
	ShockwaveRadius    float64 `yaml:"shockwave_radius"`
	ShockwaveMagnitude float64 `yaml:"shockwave_magnitude"`
	SpawnEvery         int     `yaml:"spawn_every"` // ticks between spawned crates, 0 = off
}

// Options converts the physics section into simulator options.
func (p PhysicsConfig) Options() []physics.Option {
	return []physics.Option{
		physics.WithGravity(p.Gravity),
		physics.WithEnergyDecrease(p.EnergyDecrease),
		physics.WithTuning(physics.Tuning{
			GroundTolerance: p.GroundTolerance,
			LayerBand:       p.LayerBand,
		}),
	}
}

// Validate reports values the simulator cannot work with.
func (p PhysicsConfig) Validate() error {
	switch {
	case p.Gravity < 0:
		return fmt.Errorf("config: gravity must not be negative, got %v", p.Gravity)
	case p.EnergyDecrease < 0 || p.EnergyDecrease > 1:
		return fmt.Errorf("config: energy_decrease must be within [0, 1], got %v", p.EnergyDecrease)
	case p.GroundTolerance < 0:
		return fmt.Errorf("config: ground_tolerance must not be negative, got %v", p.GroundTolerance)
	case p.LayerBand < 0:
		return fmt.Errorf("config: layer_band must not be negative, got %v", p.LayerBand)
	case p.StepAllowance < 0:
		return fmt.Errorf("config: step_allowance must not be negative, got %v", p.StepAllowance)
	case p.MaxVelocity < 0:
		return fmt.Errorf("config: max_velocity must not be negative, got %v", p.MaxVelocity)
	}
	return nil
}

// Preset represents a named physics feel.
type Preset string

const (
	PresetFloaty Preset = "floaty"
	PresetNormal Preset = "normal"
	PresetHeavy  Preset = "heavy"
)

// Presets lists the known presets in display order.
func Presets() []Preset {
	return []Preset{PresetFloaty, PresetNormal, PresetHeavy}
}

// ParsePreset parses a preset name, case-insensitively.
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Presets() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("config: unknown preset %q", s)
}

// ApplyPreset modifies the physics section based on a preset.
// Normal restores the default gravity and damping.
func ApplyPreset(cfg *Config, preset Preset) {
	def := DefaultPhysics()
	switch preset {
	case PresetFloaty:
		cfg.Physics.Gravity = def.Gravity / 2
		cfg.Physics.EnergyDecrease = 0.2
	case PresetNormal:
		cfg.Physics.Gravity = def.Gravity
		cfg.Physics.EnergyDecrease = def.EnergyDecrease
	case PresetHeavy:
		cfg.Physics.Gravity = def.Gravity * 2
		cfg.Physics.EnergyDecrease = 0.8
	}
}
