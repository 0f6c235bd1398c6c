package joint

import (
	"fmt"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultFrictionMaxForce  = 10.0
	DefaultFrictionMaxTorque = 0.25
)

// FrictionJoint slows down the relative motion of two bodies at an anchor
// point, with a bounded force and torque. It is typically used with a static
// body A to give top-down friction to body B.
type FrictionJoint struct {
	pairedBody

	localAnchorA mgl64.Vec2
	localAnchorB mgl64.Vec2

	maxForce  float64
	maxTorque float64

	linearImpulse  mgl64.Vec2
	angularImpulse float64

	rA          mgl64.Vec2
	rB          mgl64.Vec2
	linearMass  mgl64.Mat2
	angularMass float64
}

// NewFrictionJoint creates a friction joint at a world anchor shared by a and b.
func NewFrictionJoint(a, b *actor.RigidBody, anchor mgl64.Vec2) (*FrictionJoint, error) {
	paired, err := newPairedBody(a, b)
	if err != nil {
		return nil, fmt.Errorf("friction joint: %w", err)
	}

	return &FrictionJoint{
		pairedBody:   paired,
		localAnchorA: a.LocalPoint(anchor),
		localAnchorB: b.LocalPoint(anchor),
		maxForce:     DefaultFrictionMaxForce,
		maxTorque:    DefaultFrictionMaxTorque,
	}, nil
}

func (j *FrictionJoint) InitializeConstraints(step *constraint.TimeStep, settings *constraint.Settings) {
	a, b := j.bodyA, j.bodyB
	j.rA = a.Transform.Rotate(j.localAnchorA.Sub(a.LocalCenter()))
	j.rB = b.Transform.Rotate(j.localAnchorB.Sub(b.LocalCenter()))

	j.linearMass = j.pointMass(j.rA, j.rB)
	j.angularMass = j.angularEffectiveMass()

	if !settings.WarmStart {
		j.linearImpulse = mgl64.Vec2{}
		j.angularImpulse = 0
		return
	}
	ratio := step.DeltaTimeRatio()
	j.linearImpulse = j.linearImpulse.Mul(ratio)
	j.angularImpulse *= ratio
	j.applyImpulse(j.linearImpulse, j.angularImpulse, j.rA, j.rB)
}

func (j *FrictionJoint) SolveVelocityConstraints(step *constraint.TimeStep, settings *constraint.Settings) {
	a, b := j.bodyA, j.bodyB
	h := step.DeltaTime()

	// ========== Angular ==========
	impulse := -j.angularMass * (b.AngularVelocity - a.AngularVelocity)

	maxImpulse := h * j.maxTorque
	old := j.angularImpulse
	j.angularImpulse = mgl64.Clamp(old+impulse, -maxImpulse, maxImpulse)
	j.applyImpulse(mgl64.Vec2{}, j.angularImpulse-old, j.rA, j.rB)

	// ========== Linear ==========
	vA := a.LinearVelocity.Add(actor.CrossSV(a.AngularVelocity, j.rA))
	vB := b.LinearVelocity.Add(actor.CrossSV(b.AngularVelocity, j.rB))
	linear := j.linearMass.Mul2x1(vB.Sub(vA)).Mul(-1)

	oldLinear := j.linearImpulse
	j.linearImpulse = clampLength(oldLinear.Add(linear), h*j.maxForce)
	j.applyImpulse(j.linearImpulse.Sub(oldLinear), 0, j.rA, j.rB)
}

// SolvePositionConstraints does nothing, friction has no position error.
func (j *FrictionJoint) SolvePositionConstraints(step *constraint.TimeStep, settings *constraint.Settings) bool {
	return true
}

func (j *FrictionJoint) ReactionForce(invDt float64) mgl64.Vec2 {
	return j.linearImpulse.Mul(invDt)
}

func (j *FrictionJoint) ReactionTorque(invDt float64) float64 {
	return j.angularImpulse * invDt
}

// Anchor returns the anchor on A in world space
func (j *FrictionJoint) Anchor() mgl64.Vec2 {
	return j.bodyA.WorldPoint(j.localAnchorA)
}

func (j *FrictionJoint) MaxForce() float64 {
	return j.maxForce
}

func (j *FrictionJoint) SetMaxForce(force float64) error {
	if err := nonNegative("max force", force); err != nil {
		return err
	}
	if j.maxForce != force {
		j.maxForce = force
		j.wake()
	}
	return nil
}

func (j *FrictionJoint) MaxTorque() float64 {
	return j.maxTorque
}

func (j *FrictionJoint) SetMaxTorque(torque float64) error {
	if err := nonNegative("max torque", torque); err != nil {
		return err
	}
	if j.maxTorque != torque {
		j.maxTorque = torque
		j.wake()
	}
	return nil
}
