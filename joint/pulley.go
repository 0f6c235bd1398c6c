package joint

import (
	"fmt"
	"math"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// PulleyJoint hangs two bodies from a rope running over two fixed pulley
// anchors. The rope length lA + lB is kept constant, lA and lB being the
// distances from each pulley anchor to its body anchor. The ratio only
// scales the impulse on B, so that A's side moves ratio times faster.
//
// With slack enabled the rope only pulls: the accumulated impulse stays
// non-negative and only a rope longer than Length is corrected, the bodies
// being free to come closer to their pulleys.
type PulleyJoint struct {
	pairedBody

	pulleyAnchorA mgl64.Vec2
	pulleyAnchorB mgl64.Vec2
	localAnchorA  mgl64.Vec2
	localAnchorB  mgl64.Vec2

	ratio        float64
	length       float64
	slackEnabled bool

	impulse float64

	// rope directions, from the pulley anchors to the body anchors
	nA         mgl64.Vec2
	nB         mgl64.Vec2
	invK       float64
	overLength bool
}

// NewPulleyJoint creates a pulley joint with a ratio of 1. The pulley anchors
// and the body anchors are given in world space, and the rope length is
// taken from the current configuration.
func NewPulleyJoint(a, b *actor.RigidBody, pulleyAnchorA, pulleyAnchorB, bodyAnchorA, bodyAnchorB mgl64.Vec2) (*PulleyJoint, error) {
	paired, err := newPairedBody(a, b)
	if err != nil {
		return nil, fmt.Errorf("pulley joint: %w", err)
	}

	j := &PulleyJoint{
		pairedBody:    paired,
		pulleyAnchorA: pulleyAnchorA,
		pulleyAnchorB: pulleyAnchorB,
		localAnchorA:  a.LocalPoint(bodyAnchorA),
		localAnchorB:  b.LocalPoint(bodyAnchorB),
		ratio:         1,
	}
	j.length = j.CurrentLength()
	return j, nil
}

// axes returns the arms of the body anchors and the rope directions with
// their lengths. A direction shorter than 10 LinearTolerance is zeroed, the
// rope being too close to its pulley to give a reliable axis.
func (j *PulleyJoint) axes(settings *constraint.Settings) (rA, rB mgl64.Vec2, lA, lB float64) {
	a, b := j.bodyA, j.bodyB
	rA = a.Transform.Rotate(j.localAnchorA.Sub(a.LocalCenter()))
	rB = b.Transform.Rotate(j.localAnchorB.Sub(b.LocalCenter()))

	j.nA, lA = actor.NormalizedLen(a.WorldCenter().Add(rA).Sub(j.pulleyAnchorA))
	j.nB, lB = actor.NormalizedLen(b.WorldCenter().Add(rB).Sub(j.pulleyAnchorB))

	minLength := 10 * settings.LinearTolerance
	if lA <= minLength {
		j.nA = mgl64.Vec2{}
	}
	if lB <= minLength {
		j.nB = mgl64.Vec2{}
	}
	return rA, rB, lA, lB
}

// pulleyMass returns the inverse of the mass seen along the rope, B's side
// being scaled by ratio
func (j *PulleyJoint) pulleyMass(rA, rB mgl64.Vec2, ratio float64) float64 {
	a, b := j.bodyA, j.bodyB
	rnA := actor.Cross(rA, j.nA)
	rnB := actor.Cross(rB, j.nB)
	pmA := a.InverseMass() + a.InverseInertia()*rnA*rnA
	pmB := b.InverseMass() + b.InverseInertia()*rnB*rnB

	k := pmA + ratio*ratio*pmB
	if k <= actor.Epsilon {
		return 0
	}
	return 1 / k
}

// pull applies the rope impulse: both bodies are pulled toward their pulley
func (j *PulleyJoint) pull(impulse float64, rA, rB mgl64.Vec2) {
	a, b := j.bodyA, j.bodyB
	jA := j.nA.Mul(-impulse)
	jB := j.nB.Mul(-impulse * j.ratio)

	a.LinearVelocity = a.LinearVelocity.Add(jA.Mul(a.InverseMass()))
	a.AngularVelocity += a.InverseInertia() * actor.Cross(rA, jA)
	b.LinearVelocity = b.LinearVelocity.Add(jB.Mul(b.InverseMass()))
	b.AngularVelocity += b.InverseInertia() * actor.Cross(rB, jB)
}

func (j *PulleyJoint) InitializeConstraints(step *constraint.TimeStep, settings *constraint.Settings) {
	rA, rB, lA, lB := j.axes(settings)

	j.overLength = lA+lB > j.length || !j.slackEnabled
	if !j.overLength {
		j.impulse = 0
		return
	}

	j.invK = j.pulleyMass(rA, rB, j.ratio)

	if !settings.WarmStart {
		j.impulse = 0
		return
	}
	j.impulse *= step.DeltaTimeRatio()
	j.pull(j.impulse, rA, rB)
}

func (j *PulleyJoint) SolveVelocityConstraints(step *constraint.TimeStep, settings *constraint.Settings) {
	if !j.overLength {
		return
	}
	a, b := j.bodyA, j.bodyB
	rA := a.Transform.Rotate(j.localAnchorA.Sub(a.LocalCenter()))
	rB := b.Transform.Rotate(j.localAnchorB.Sub(b.LocalCenter()))

	vA := a.LinearVelocity.Add(actor.CrossSV(a.AngularVelocity, rA))
	vB := b.LinearVelocity.Add(actor.CrossSV(b.AngularVelocity, rB))

	// rate of change of the rope length
	cdot := j.nA.Dot(vA) + j.ratio*j.nB.Dot(vB)
	impulse := j.invK * cdot

	old := j.impulse
	j.impulse = old + impulse
	if j.slackEnabled {
		// a rope only pulls
		j.impulse = math.Max(j.impulse, 0)
	}
	j.pull(j.impulse-old, rA, rB)
}

// SolvePositionConstraints restores the rope length by moving the bodies
// along the rope, the ratio left out. Returns true once the length error is
// within LinearTolerance.
func (j *PulleyJoint) SolvePositionConstraints(step *constraint.TimeStep, settings *constraint.Settings) bool {
	if !j.overLength {
		return true
	}
	a, b := j.bodyA, j.bodyB
	rA, rB, lA, lB := j.axes(settings)
	invK := j.pulleyMass(rA, rB, 1)

	c := j.length - lA - lB
	if j.slackEnabled {
		c = math.Min(c, 0)
	}
	impulse := -invK * c

	jA := j.nA.Mul(-impulse)
	jB := j.nB.Mul(-impulse)
	constraint.CorrectPosition(a, jA.Mul(a.InverseMass()), a.InverseInertia()*actor.Cross(rA, jA))
	constraint.CorrectPosition(b, jB.Mul(b.InverseMass()), b.InverseInertia()*actor.Cross(rB, jB))

	return math.Abs(c) < settings.LinearTolerance
}

// ReactionForce returns the rope tension on B
func (j *PulleyJoint) ReactionForce(invDt float64) mgl64.Vec2 {
	return j.nB.Mul(-j.impulse * j.ratio * invDt)
}

// ReactionTorque is always 0, a rope cannot transmit a torque
func (j *PulleyJoint) ReactionTorque(invDt float64) float64 {
	return 0
}

// AnchorA returns the body anchor of A in world space
func (j *PulleyJoint) AnchorA() mgl64.Vec2 {
	return j.bodyA.WorldPoint(j.localAnchorA)
}

// AnchorB returns the body anchor of B in world space
func (j *PulleyJoint) AnchorB() mgl64.Vec2 {
	return j.bodyB.WorldPoint(j.localAnchorB)
}

func (j *PulleyJoint) PulleyAnchorA() mgl64.Vec2 {
	return j.pulleyAnchorA
}

func (j *PulleyJoint) PulleyAnchorB() mgl64.Vec2 {
	return j.pulleyAnchorB
}

// Length returns the rope length to keep
func (j *PulleyJoint) Length() float64 {
	return j.length
}

// SetLength changes the rope length, which must not be negative
func (j *PulleyJoint) SetLength(length float64) error {
	if err := nonNegative("length", length); err != nil {
		return err
	}
	if j.length != length {
		j.length = length
		j.wake()
	}
	return nil
}

// CurrentLength returns the rope length of the current configuration,
// CurrentLengthA() + CurrentLengthB().
func (j *PulleyJoint) CurrentLength() float64 {
	return j.CurrentLengthA() + j.CurrentLengthB()
}

// CurrentLengthA returns the distance from the first pulley anchor to A's anchor
func (j *PulleyJoint) CurrentLengthA() float64 {
	return j.AnchorA().Sub(j.pulleyAnchorA).Len()
}

// CurrentLengthB returns the distance from the second pulley anchor to B's anchor
func (j *PulleyJoint) CurrentLengthB() float64 {
	return j.AnchorB().Sub(j.pulleyAnchorB).Len()
}

func (j *PulleyJoint) Ratio() float64 {
	return j.ratio
}

// SetRatio sets the block-and-tackle ratio, which must be positive. A ratio
// above 1 makes the rope on A's side move faster than on B's side. Neither
// Length nor CurrentLength depend on it.
func (j *PulleyJoint) SetRatio(ratio float64) error {
	if ratio <= 0 {
		return fmt.Errorf("%w: ratio must be positive, got %v", ErrInvalidValue, ratio)
	}
	if j.ratio != ratio {
		j.ratio = ratio
		j.wake()
	}
	return nil
}

func (j *PulleyJoint) IsSlackEnabled() bool {
	return j.slackEnabled
}

// SetSlackEnabled lets the rope go slack instead of acting as a rigid rod
func (j *PulleyJoint) SetSlackEnabled(flag bool) {
	if j.slackEnabled != flag {
		j.slackEnabled = flag
		j.wake()
	}
}
