package constraint

import (
	"math"

	"github.com/akmonengine/lamina/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// maxConditionNumber bounds the condition number of the 2x2 block matrix.
// Above it the two contact points are too close to be solved together.
const maxConditionNumber = 1000.0

// ContactSolver solves every contact constraint of a step with sequential
// impulses. Both points of a two point manifold are solved together by the
// block solver.
type ContactSolver struct {
	Constraints []*ContactConstraint
}

// InitializeConstraints computes the effective masses and the restitution
// bias of every contact, then applies the warm start impulses scaled by the
// time step ratio.
func (s *ContactSolver) InitializeConstraints(step *TimeStep, settings *Settings) {
	ratio := step.DeltaTimeRatio()

	for _, cc := range s.Constraints {
		if cc.Sensor {
			continue
		}
		cc.initialize(settings)

		for i := range cc.Contacts {
			c := &cc.Contacts[i]
			if !settings.WarmStart || c.ignored {
				c.NormalImpulse, c.TangentImpulse = 0, 0
				continue
			}
			c.NormalImpulse *= ratio
			c.TangentImpulse *= ratio

			impulse := cc.Normal.Mul(c.NormalImpulse).Add(cc.Tangent.Mul(c.TangentImpulse))
			ApplyImpulse(cc.BodyA, cc.BodyB, impulse, c.rA, c.rB)
		}
	}
}

func (cc *ContactConstraint) initialize(settings *Settings) {
	a, b := cc.BodyA, cc.BodyB
	mA, mB := a.InverseMass(), b.InverseMass()
	iA, iB := a.InverseInertia(), b.InverseInertia()
	centerA, centerB := a.WorldCenter(), b.WorldCenter()

	for i := range cc.Contacts {
		c := &cc.Contacts[i]
		c.ignored = false
		c.rA = c.Point.Sub(centerA)
		c.rB = c.Point.Sub(centerB)

		rnA := actor.Cross(c.rA, cc.Normal)
		rnB := actor.Cross(c.rB, cc.Normal)
		c.normalMass = inverseMass(mA + mB + iA*rnA*rnA + iB*rnB*rnB)

		rtA := actor.Cross(c.rA, cc.Tangent)
		rtB := actor.Cross(c.rB, cc.Tangent)
		c.tangentMass = inverseMass(mA + mB + iA*rtA*rtA + iB*rtB*rtB)

		c.velocityBias = 0
		rvn := cc.relativeVelocity(c).Dot(cc.Normal)
		if rvn < -settings.RestitutionVelocity {
			c.velocityBias = -cc.Restitution * rvn
		}
	}

	cc.blockSolve = false
	if len(cc.Contacts) != 2 {
		return
	}

	c1, c2 := &cc.Contacts[0], &cc.Contacts[1]
	rn1A := actor.Cross(c1.rA, cc.Normal)
	rn1B := actor.Cross(c1.rB, cc.Normal)
	rn2A := actor.Cross(c2.rA, cc.Normal)
	rn2B := actor.Cross(c2.rB, cc.Normal)

	k11 := mA + mB + iA*rn1A*rn1A + iB*rn1B*rn1B
	k22 := mA + mB + iA*rn2A*rn2A + iB*rn2B*rn2B
	k12 := mA + mB + iA*rn1A*rn2A + iB*rn1B*rn2B

	if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
		cc.k = mgl64.Mat2{k11, k12, k12, k22}
		cc.normalMass = actor.InvertMat2(cc.k)
		cc.blockSolve = true
	} else {
		// the points are redundant, keep the first one only
		c2.ignored = true
	}
}

// SolveVelocityConstraints solves friction first, so that the friction
// bound uses the normal impulse of the previous iteration, then the normal
// impulses, which must stay non negative.
func (s *ContactSolver) SolveVelocityConstraints(step *TimeStep, settings *Settings) {
	for _, cc := range s.Constraints {
		if cc.Sensor {
			continue
		}

		// ========== Friction ==========
		for i := range cc.Contacts {
			c := &cc.Contacts[i]
			if c.ignored {
				continue
			}

			vt := cc.relativeVelocity(c).Dot(cc.Tangent)
			lambda := -c.tangentMass * vt

			maxFriction := cc.Friction * c.NormalImpulse
			impulse := mgl64.Clamp(c.TangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = impulse - c.TangentImpulse
			c.TangentImpulse = impulse

			ApplyImpulse(cc.BodyA, cc.BodyB, cc.Tangent.Mul(lambda), c.rA, c.rB)
		}

		// ========== Normal ==========
		if cc.blockSolve {
			cc.solveBlock()
			continue
		}
		for i := range cc.Contacts {
			c := &cc.Contacts[i]
			if c.ignored {
				continue
			}

			vn := cc.relativeVelocity(c).Dot(cc.Normal)
			lambda := -c.normalMass * (vn - c.velocityBias)

			impulse := math.Max(c.NormalImpulse+lambda, 0)
			lambda = impulse - c.NormalImpulse
			c.NormalImpulse = impulse

			ApplyImpulse(cc.BodyA, cc.BodyB, cc.Normal.Mul(lambda), c.rA, c.rB)
		}
	}
}

// solveBlock solves both normal impulses at once as a linear complementarity
// problem: vn = K*x + b with x >= 0, vn >= 0 and x*vn = 0. The four
// combinations of active contacts are tried in turn.
func (cc *ContactConstraint) solveBlock() {
	c1, c2 := &cc.Contacts[0], &cc.Contacts[1]

	accumulated := mgl64.Vec2{c1.NormalImpulse, c2.NormalImpulse}
	vn1 := cc.relativeVelocity(c1).Dot(cc.Normal)
	vn2 := cc.relativeVelocity(c2).Dot(cc.Normal)

	b := mgl64.Vec2{vn1 - c1.velocityBias, vn2 - c2.velocityBias}
	b = b.Sub(cc.k.Mul2x1(accumulated))

	// both contacts active: vn = 0
	x := cc.normalMass.Mul2x1(b).Mul(-1)
	if x.X() >= 0 && x.Y() >= 0 {
		cc.applyBlock(x, accumulated)
		return
	}

	// only the first contact active: x2 = 0, vn1 = 0
	x = mgl64.Vec2{-c1.normalMass * b.X(), 0}
	vn2 = cc.k.At(1, 0)*x.X() + b.Y()
	if x.X() >= 0 && vn2 >= 0 {
		cc.applyBlock(x, accumulated)
		return
	}

	// only the second contact active: x1 = 0, vn2 = 0
	x = mgl64.Vec2{0, -c2.normalMass * b.Y()}
	vn1 = cc.k.At(0, 1)*x.Y() + b.X()
	if x.Y() >= 0 && vn1 >= 0 {
		cc.applyBlock(x, accumulated)
		return
	}

	// no contact active: x = 0
	x = mgl64.Vec2{}
	if b.X() >= 0 && b.Y() >= 0 {
		cc.applyBlock(x, accumulated)
	}
}

func (cc *ContactConstraint) applyBlock(x, accumulated mgl64.Vec2) {
	c1, c2 := &cc.Contacts[0], &cc.Contacts[1]
	d := x.Sub(accumulated)

	ApplyImpulse(cc.BodyA, cc.BodyB, cc.Normal.Mul(d.X()), c1.rA, c1.rB)
	ApplyImpulse(cc.BodyA, cc.BodyB, cc.Normal.Mul(d.Y()), c2.rA, c2.rB)

	c1.NormalImpulse = x.X()
	c2.NormalImpulse = x.Y()
}

// SolvePositionConstraints pushes the bodies apart along the normal, as
// positions, removing a Baumgarte fraction of the penetration beyond
// LinearTolerance. Returns true once no contact penetrates by more than
// three times LinearTolerance.
func (s *ContactSolver) SolvePositionConstraints(step *TimeStep, settings *Settings) bool {
	minSeparation := 0.0

	for _, cc := range s.Constraints {
		if cc.Sensor {
			continue
		}
		a, b := cc.BodyA, cc.BodyB
		mA, mB := a.InverseMass(), b.InverseMass()
		iA, iB := a.InverseInertia(), b.InverseInertia()

		for i := range cc.Contacts {
			c := &cc.Contacts[i]
			if c.ignored {
				continue
			}

			centerA, centerB := a.WorldCenter(), b.WorldCenter()
			rA := a.WorldPoint(c.localA).Sub(centerA)
			rB := b.WorldPoint(c.localB).Sub(centerB)

			// current separation, negative when penetrating
			d := centerB.Add(rB).Sub(centerA.Add(rA))
			separation := d.Dot(cc.Normal) - c.Depth
			minSeparation = math.Min(minSeparation, separation)

			correction := mgl64.Clamp(settings.Baumgarte*(separation+settings.LinearTolerance), -settings.MaxLinearCorrection, 0)

			rnA := actor.Cross(rA, cc.Normal)
			rnB := actor.Cross(rB, cc.Normal)
			k := mA + mB + iA*rnA*rnA + iB*rnB*rnB
			if k <= actor.Epsilon {
				continue
			}

			impulse := cc.Normal.Mul(-correction / k)

			CorrectPosition(a, impulse.Mul(-mA), -iA*actor.Cross(rA, impulse))
			CorrectPosition(b, impulse.Mul(mB), iB*actor.Cross(rB, impulse))
		}
	}

	return minSeparation >= -3*settings.LinearTolerance
}

// CorrectPosition moves a body during the position iterations, leaving static
// bodies untouched.
func CorrectPosition(rb *actor.RigidBody, translation mgl64.Vec2, rotation float64) {
	if rb.IsStatic() {
		return
	}
	rb.Translate(translation)
	if rotation != 0 {
		rb.RotateAboutCenter(rotation)
	}
}

func inverseMass(k float64) float64 {
	if k <= actor.Epsilon {
		return 0
	}
	return 1.0 / k
}
