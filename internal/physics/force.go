package physics

import "github.com/go-gl/mathgl/mgl64"

// Force is a velocity change queued against a body. Forces live for exactly
// one tick: they are applied during the next Update and then discarded.
type Force struct {
	Target   *Body
	Velocity mgl64.Vec3
}

// sumForces adds up the velocity of every force aimed at target.
func sumForces(forces []Force, target *Body) mgl64.Vec3 {
	var total mgl64.Vec3
	for _, f := range forces {
		if f.Target == target {
			total = total.Add(f.Velocity)
		}
	}
	return total
}
