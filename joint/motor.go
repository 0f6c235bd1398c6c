package joint

import (
	"fmt"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultMotorCorrectionFactor = 0.3
	DefaultMotorMaxForce         = 1000.0
	DefaultMotorMaxTorque        = 1000.0
)

// MotorJoint drives body B toward a position and an angle relative to body A,
// with a bounded force and torque. The targets are reached with velocities
// only: the joint has no position phase.
type MotorJoint struct {
	pairedBody

	// linearTarget is the wanted position of B's origin, in A's local space
	linearTarget mgl64.Vec2
	// angularTarget is the wanted angle of B minus the angle of A
	angularTarget float64

	correctionFactor float64
	maxForce         float64
	maxTorque        float64

	linearImpulse  mgl64.Vec2
	angularImpulse float64

	rA           mgl64.Vec2
	rB           mgl64.Vec2
	linearMass   mgl64.Mat2
	angularMass  float64
	linearError  mgl64.Vec2
	angularError float64
}

// NewMotorJoint creates a motor joint holding b at its current position and
// angle relative to a.
func NewMotorJoint(a, b *actor.RigidBody) (*MotorJoint, error) {
	paired, err := newPairedBody(a, b)
	if err != nil {
		return nil, fmt.Errorf("motor joint: %w", err)
	}

	return &MotorJoint{
		pairedBody:       paired,
		linearTarget:     a.LocalPoint(b.Transform.Position),
		angularTarget:    actor.NormalizeAngle(b.Transform.Angle() - a.Transform.Angle()),
		correctionFactor: DefaultMotorCorrectionFactor,
		maxForce:         DefaultMotorMaxForce,
		maxTorque:        DefaultMotorMaxTorque,
	}, nil
}

func (j *MotorJoint) InitializeConstraints(step *constraint.TimeStep, settings *constraint.Settings) {
	a, b := j.bodyA, j.bodyB

	j.rA = a.Transform.Rotate(j.linearTarget.Sub(a.LocalCenter()))
	j.rB = b.Transform.Rotate(b.LocalCenter().Mul(-1))

	j.linearMass = j.pointMass(j.rA, j.rB)
	j.angularMass = j.angularEffectiveMass()

	j.linearError = b.WorldCenter().Add(j.rB).Sub(a.WorldCenter().Add(j.rA))
	j.angularError = actor.NormalizeAngle(b.Transform.Angle() - a.Transform.Angle() - j.angularTarget)

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

func (j *MotorJoint) SolveVelocityConstraints(step *constraint.TimeStep, settings *constraint.Settings) {
	a, b := j.bodyA, j.bodyB
	dt := step.DeltaTime()
	invDt := step.InverseDeltaTime()

	// ========== Angular ==========
	cdot := b.AngularVelocity - a.AngularVelocity + invDt*j.correctionFactor*j.angularError
	impulse := -j.angularMass * cdot

	maxImpulse := j.maxTorque * dt
	old := j.angularImpulse
	j.angularImpulse = mgl64.Clamp(old+impulse, -maxImpulse, maxImpulse)
	j.applyImpulse(mgl64.Vec2{}, j.angularImpulse-old, j.rA, j.rB)

	// ========== Linear ==========
	vA := a.LinearVelocity.Add(actor.CrossSV(a.AngularVelocity, j.rA))
	vB := b.LinearVelocity.Add(actor.CrossSV(b.AngularVelocity, j.rB))
	linearCdot := vB.Sub(vA).Add(j.linearError.Mul(invDt * j.correctionFactor))
	linear := j.linearMass.Mul2x1(linearCdot).Mul(-1)

	oldLinear := j.linearImpulse
	j.linearImpulse = clampLength(oldLinear.Add(linear), j.maxForce*dt)
	j.applyImpulse(j.linearImpulse.Sub(oldLinear), 0, j.rA, j.rB)
}

// SolvePositionConstraints does nothing, the error is removed by the velocity phase.
func (j *MotorJoint) SolvePositionConstraints(step *constraint.TimeStep, settings *constraint.Settings) bool {
	return true
}

func (j *MotorJoint) ReactionForce(invDt float64) mgl64.Vec2 {
	return j.linearImpulse.Mul(invDt)
}

func (j *MotorJoint) ReactionTorque(invDt float64) float64 {
	return j.angularImpulse * invDt
}

// LinearTarget returns the wanted position of B's origin in A's local space
func (j *MotorJoint) LinearTarget() mgl64.Vec2 {
	return j.linearTarget
}

func (j *MotorJoint) SetLinearTarget(target mgl64.Vec2) {
	if j.linearTarget != target {
		j.linearTarget = target
		j.wake()
	}
}

// AngularTarget returns the wanted angle of B relative to A
func (j *MotorJoint) AngularTarget() float64 {
	return j.angularTarget
}

func (j *MotorJoint) SetAngularTarget(target float64) {
	target = actor.NormalizeAngle(target)
	if j.angularTarget != target {
		j.angularTarget = target
		j.wake()
	}
}

func (j *MotorJoint) CorrectionFactor() float64 {
	return j.correctionFactor
}

// SetCorrectionFactor sets the fraction of the error removed per step, in [0, 1].
func (j *MotorJoint) SetCorrectionFactor(factor float64) error {
	if factor < 0 || factor > 1 {
		return fmt.Errorf("%w: correction factor must be in [0, 1], got %v", ErrInvalidValue, factor)
	}
	if j.correctionFactor != factor {
		j.correctionFactor = factor
		j.wake()
	}
	return nil
}

func (j *MotorJoint) MaxForce() float64 {
	return j.maxForce
}

func (j *MotorJoint) SetMaxForce(force float64) error {
	if err := nonNegative("max force", force); err != nil {
		return err
	}
	if j.maxForce != force {
		j.maxForce = force
		j.wake()
	}
	return nil
}

func (j *MotorJoint) MaxTorque() float64 {
	return j.maxTorque
}

func (j *MotorJoint) SetMaxTorque(torque float64) error {
	if err := nonNegative("max torque", torque); err != nil {
		return err
	}
	if j.maxTorque != torque {
		j.maxTorque = torque
		j.wake()
	}
	return nil
}
