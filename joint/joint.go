// Package joint implements constraints between two bodies driven by the
// sequential impulse solver of the constraint package.
//
// A joint lives across steps: its accumulated impulses are kept from one
// step to the next and used to warm start the solver. Setters changing a
// joint parameter wake up both bodies.
package joint

import (
	"errors"
	"fmt"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrNilBody is returned when a joint is created without one of its bodies.
	ErrNilBody = errors.New("joint: nil body")
	// ErrSameBody is returned when both bodies of a joint are the same.
	ErrSameBody = errors.New("joint: same body")
	// ErrInvalidValue is returned by setters given a value out of range.
	ErrInvalidValue = errors.New("joint: invalid value")
)

// Joint is a constraint between two bodies.
type Joint interface {
	constraint.Solvable

	BodyA() *actor.RigidBody
	BodyB() *actor.RigidBody

	// IsCollisionAllowed reports whether the two bodies still collide
	IsCollisionAllowed() bool
	SetCollisionAllowed(flag bool)

	// ReactionForce returns the force applied to B during the last step
	ReactionForce(invDt float64) mgl64.Vec2
	// ReactionTorque returns the torque applied to B during the last step
	ReactionTorque(invDt float64) float64
}

// pairedBody holds the two bodies of a joint.
type pairedBody struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody

	collisionAllowed bool
}

func newPairedBody(a, b *actor.RigidBody) (pairedBody, error) {
	if a == nil || b == nil {
		return pairedBody{}, ErrNilBody
	}
	if a == b {
		return pairedBody{}, ErrSameBody
	}
	return pairedBody{bodyA: a, bodyB: b}, nil
}

func (p *pairedBody) BodyA() *actor.RigidBody { return p.bodyA }

func (p *pairedBody) BodyB() *actor.RigidBody { return p.bodyB }

func (p *pairedBody) IsCollisionAllowed() bool { return p.collisionAllowed }

func (p *pairedBody) SetCollisionAllowed(flag bool) {
	if p.collisionAllowed != flag {
		p.collisionAllowed = flag
		p.wake()
	}
}

// wake takes both bodies out of rest, after a parameter changed
func (p *pairedBody) wake() {
	p.bodyA.SetAtRest(false)
	p.bodyB.SetAtRest(false)
}

// applyImpulse applies linear and angular impulses to A negatively and to B
// positively, at the arms rA and rB.
func (p *pairedBody) applyImpulse(linear mgl64.Vec2, angular float64, rA, rB mgl64.Vec2) {
	a, b := p.bodyA, p.bodyB
	a.LinearVelocity = a.LinearVelocity.Sub(linear.Mul(a.InverseMass()))
	a.AngularVelocity -= a.InverseInertia() * (actor.Cross(rA, linear) + angular)
	b.LinearVelocity = b.LinearVelocity.Add(linear.Mul(b.InverseMass()))
	b.AngularVelocity += b.InverseInertia() * (actor.Cross(rB, linear) + angular)
}

// pointMass returns the inverse mass matrix of the point constraint joining
// the arms rA and rB, J = [-I -skew(rA) I skew(rB)].
func (p *pairedBody) pointMass(rA, rB mgl64.Vec2) mgl64.Mat2 {
	mA, mB := p.bodyA.InverseMass(), p.bodyB.InverseMass()
	iA, iB := p.bodyA.InverseInertia(), p.bodyB.InverseInertia()

	k11 := mA + mB + iA*rA.Y()*rA.Y() + iB*rB.Y()*rB.Y()
	k12 := -iA*rA.X()*rA.Y() - iB*rB.X()*rB.Y()
	k22 := mA + mB + iA*rA.X()*rA.X() + iB*rB.X()*rB.X()

	return actor.InvertMat2(mgl64.Mat2{k11, k12, k12, k22})
}

// angularEffectiveMass returns 1/(iA+iB), or 0 when both bodies cannot rotate
func (p *pairedBody) angularEffectiveMass() float64 {
	k := p.bodyA.InverseInertia() + p.bodyB.InverseInertia()
	if k <= actor.Epsilon {
		return 0
	}
	return 1 / k
}

// clampLength limits the length of v to maxLength
func clampLength(v mgl64.Vec2, maxLength float64) mgl64.Vec2 {
	if v.LenSqr() > maxLength*maxLength {
		return actor.Normalized(v).Mul(maxLength)
	}
	return v
}

func nonNegative(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidValue, name, value)
	}
	return nil
}
