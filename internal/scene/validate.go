package scene

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-layers/internal/physics"
	"github.com/vovakirdan/tui-layers/internal/scene/formats"
)

// ValidationError contains details about validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validation error codes.
const (
	CodeMissingID        = "MISSING_ID"
	CodeNoBodies         = "NO_BODIES"
	CodeBadVector        = "BAD_VECTOR"
	CodeBadSize          = "BAD_SIZE"
	CodeBadMass          = "BAD_MASS"
	CodeBadDistribution  = "BAD_DISTRIBUTION"
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeMultiplePlayers  = "MULTIPLE_PLAYERS"
	CodeStaticPlayer     = "STATIC_PLAYER"
	CodeBadPhysics       = "BAD_PHYSICS"
	CodeNegativeDuration = "NEGATIVE_TICKS"
)

// Validate checks a scene for everything Build relies on.
// Checks:
//   - id present, at least one body
//   - vectors have three finite components, sizes are positive
//   - distribution names are known
//   - body names are unique, at most one player which is not static
func (s *Scene) Validate() error {
	if s.ID == "" {
		return ValidationError{Code: CodeMissingID, Message: "scene has no id"}
	}
	if s.Ticks < 0 {
		return ValidationError{Code: CodeNegativeDuration, Message: fmt.Sprintf("ticks = %d", s.Ticks)}
	}
	if len(s.Bodies) == 0 {
		return ValidationError{Code: CodeNoBodies, Message: fmt.Sprintf("scene %s has no bodies", s.ID)}
	}
	if err := validateOverrides(s.Physics); err != nil {
		return err
	}

	names := make(map[string]bool)
	players := 0
	for i, b := range s.Bodies {
		label := b.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if err := validateBody(label, b); err != nil {
			return err
		}
		if b.Name != "" {
			if names[b.Name] {
				return ValidationError{Code: CodeDuplicateName, Message: fmt.Sprintf("body name %q used twice", b.Name)}
			}
			names[b.Name] = true
		}
		if b.Player {
			players++
			if b.Static {
				return ValidationError{Code: CodeStaticPlayer, Message: fmt.Sprintf("player %s is static", label)}
			}
		}
	}
	if players > 1 {
		return ValidationError{Code: CodeMultiplePlayers, Message: fmt.Sprintf("%d bodies marked as player", players)}
	}
	return nil
}

func validateBody(label string, b formats.YAMLBody) error {
	if err := checkVector(label, "size", b.Size, true); err != nil {
		return err
	}
	for _, s := range b.Size {
		if s <= 0 {
			return ValidationError{Code: CodeBadSize, Message: fmt.Sprintf("body %s: size must be positive, got %v", label, b.Size)}
		}
	}
	if err := checkVector(label, "position", b.Position, true); err != nil {
		return err
	}
	if err := checkVector(label, "velocity", b.Velocity, false); err != nil {
		return err
	}
	if b.Mass < 0 || !finite(b.Mass) {
		return ValidationError{Code: CodeBadMass, Message: fmt.Sprintf("body %s: mass %v", label, b.Mass)}
	}
	if _, ok := physics.ParseDepthDistribution(b.Distribution); !ok {
		return ValidationError{Code: CodeBadDistribution, Message: fmt.Sprintf("body %s: unknown distribution %q", label, b.Distribution)}
	}
	return nil
}

func checkVector(label, field string, v []float64, required bool) error {
	if len(v) == 0 && !required {
		return nil
	}
	if len(v) != 3 {
		return ValidationError{Code: CodeBadVector, Message: fmt.Sprintf("body %s: %s needs 3 components, got %d", label, field, len(v))}
	}
	for _, c := range v {
		if !finite(c) {
			return ValidationError{Code: CodeBadVector, Message: fmt.Sprintf("body %s: %s is not finite", label, field)}
		}
	}
	return nil
}

func validateOverrides(o formats.Overrides) error {
	for name, v := range map[string]*float64{
		"gravity":          o.Gravity,
		"energy_decrease":  o.EnergyDecrease,
		"ground_tolerance": o.GroundTolerance,
		"layer_band":       o.LayerBand,
		"step_allowance":   o.StepAllowance,
		"max_velocity":     o.MaxVelocity,
	} {
		if v != nil && (*v < 0 || !finite(*v)) {
			return ValidationError{Code: CodeBadPhysics, Message: fmt.Sprintf("%s override %v", name, *v)}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
