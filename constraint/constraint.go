// Package constraint implements the sequential impulse solver shared by
// contacts and joints.
//
// Every constraint goes through three phases each step:
//  1. InitializeConstraints: compute effective masses and warm start with
//     the impulses accumulated during the previous step
//  2. SolveVelocityConstraints: run once per velocity iteration, applying
//     clamped impulses until the relative velocities satisfy the constraints
//  3. SolvePositionConstraints: run once per position iteration after the
//     positions were integrated, removing the remaining drift
//
// References:
//   - Catto: "Iterative Dynamics with Temporal Coherence" (2005)
//   - Catto: "Modeling and Solving Constraints" (GDC 2009)
package constraint

import (
	"math"

	"github.com/akmonengine/lamina/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Solvable is a constraint that the sequential impulse solver can drive.
type Solvable interface {
	InitializeConstraints(step *TimeStep, settings *Settings)
	SolveVelocityConstraints(step *TimeStep, settings *Settings)
	// SolvePositionConstraints returns true once the position error is
	// within the linear and angular tolerances
	SolvePositionConstraints(step *TimeStep, settings *Settings) bool
}

// MixFriction combines the friction coefficients of two materials
func MixFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}

// MixRestitution combines the restitution coefficients: if one bounces, the
// contact bounces.
func MixRestitution(a, b float64) float64 {
	return math.Max(a, b)
}

// ApplyImpulse applies impulse to A and B at the arms rA and rB, negatively on
// A and positively on B. Unlike RigidBody.ApplyImpulse it leaves the rest
// state of the bodies alone.
func ApplyImpulse(a, b *actor.RigidBody, impulse, rA, rB mgl64.Vec2) {
	a.LinearVelocity = a.LinearVelocity.Sub(impulse.Mul(a.InverseMass()))
	a.AngularVelocity -= a.InverseInertia() * actor.Cross(rA, impulse)
	b.LinearVelocity = b.LinearVelocity.Add(impulse.Mul(b.InverseMass()))
	b.AngularVelocity += b.InverseInertia() * actor.Cross(rB, impulse)
}
