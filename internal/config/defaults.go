package config

import (
	_ "embed"

	"github.com/vovakirdan/tui-layers/internal/physics"
)

//go:embed defaults/physics.yaml
var defaultPhysicsYAML []byte

// DefaultPhysics returns the built-in world parameters.
func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Gravity:         physics.DefaultGravity,
		EnergyDecrease:  physics.DefaultEnergyDecrease,
		GroundTolerance: physics.DefaultGroundTolerance,
		LayerBand:       physics.DefaultLayerBand,
		StepAllowance:   physics.DefaultStepAllowance,
		MaxVelocity:     0,
	}
}

// DefaultViewer returns the built-in viewer parameters.
func DefaultViewer() ViewerConfig {
	return ViewerConfig{
		CellSize:           4,
		PushSpeed:          0.6,
		JumpSpeed:          4,
		ShockwaveRadius:    40,
		ShockwaveMagnitude: 6,
		SpawnEvery:         0,
	}
}

// Default returns the hard-coded configuration.
func Default() Config {
	return Config{
		Physics: DefaultPhysics(),
		Viewer:  DefaultViewer(),
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultPhysicsYAML
}
