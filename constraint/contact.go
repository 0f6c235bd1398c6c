package constraint

import (
	"fmt"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/epa"
	"github.com/go-gl/mathgl/mgl64"
)

// Contact is one point of a contact constraint, with the impulses
// accumulated on it during the step.
type Contact struct {
	ID    epa.ManifoldPointID
	Point mgl64.Vec2
	Depth float64

	NormalImpulse  float64
	TangentImpulse float64

	// the contact point in the local space of each body
	localA mgl64.Vec2
	localB mgl64.Vec2

	// arms from the world centers of mass, refreshed at initialization
	rA mgl64.Vec2
	rB mgl64.Vec2

	normalMass   float64
	tangentMass  float64
	velocityBias float64

	ignored bool
}

// IsIgnored reports whether the block solver dropped this contact because
// the two points of the manifold were redundant.
func (c *Contact) IsIgnored() bool {
	return c.ignored
}

// ContactConstraint keeps two overlapping bodies apart along the manifold
// normal, with Coulomb friction along the tangent.
type ContactConstraint struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody

	// Normal points from A toward B
	Normal  mgl64.Vec2
	Tangent mgl64.Vec2

	Contacts []Contact

	Friction    float64
	Restitution float64

	// Sensor constraints are reported but never solved
	Sensor bool

	// block solver data, only used with two contacts
	k          mgl64.Mat2
	normalMass mgl64.Mat2
	blockSolve bool
}

// NewContactConstraint creates the constraint for a manifold between a and b.
func NewContactConstraint(a, b *actor.RigidBody, manifold epa.Manifold) (*ContactConstraint, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: contact constraint body", actor.ErrNilArgument)
	}

	cc := &ContactConstraint{
		BodyA:       a,
		BodyB:       b,
		Normal:      manifold.Normal,
		Tangent:     actor.RightPerp(manifold.Normal),
		Contacts:    make([]Contact, len(manifold.Points)),
		Friction:    MixFriction(a.Material.Friction, b.Material.Friction),
		Restitution: MixRestitution(a.Material.Restitution, b.Material.Restitution),
		Sensor:      a.Sensor || b.Sensor,
	}
	for i, p := range manifold.Points {
		cc.Contacts[i] = Contact{
			ID:     p.ID,
			Point:  p.Point,
			Depth:  p.Depth,
			localA: a.LocalPoint(p.Point),
			localB: b.LocalPoint(p.Point),
		}
	}
	return cc, nil
}

// WarmStartFrom copies the accumulated impulses of the matching contacts of
// the previous step. Contacts match on their id, vertex contacts also need
// to be within WarmStartDistance of each other.
func (cc *ContactConstraint) WarmStartFrom(previous *ContactConstraint, settings *Settings) {
	if previous == nil || !settings.WarmStart {
		return
	}

	maxDistanceSqr := settings.WarmStartDistance * settings.WarmStartDistance
	for i := range cc.Contacts {
		c := &cc.Contacts[i]
		for _, old := range previous.Contacts {
			if old.ID != c.ID {
				continue
			}
			if c.ID == epa.DistanceID && old.Point.Sub(c.Point).LenSqr() > maxDistanceSqr {
				continue
			}
			c.NormalImpulse = old.NormalImpulse
			c.TangentImpulse = old.TangentImpulse
			break
		}
	}
}

// NormalImpulse returns the sum of the normal impulses of all contacts
func (cc *ContactConstraint) NormalImpulse() float64 {
	var total float64
	for _, c := range cc.Contacts {
		total += c.NormalImpulse
	}
	return total
}

// relativeVelocity returns the velocity of B relative to A at the contact.
func (cc *ContactConstraint) relativeVelocity(c *Contact) mgl64.Vec2 {
	a, b := cc.BodyA, cc.BodyB
	vA := a.LinearVelocity.Add(actor.CrossSV(a.AngularVelocity, c.rA))
	vB := b.LinearVelocity.Add(actor.CrossSV(b.AngularVelocity, c.rB))
	return vB.Sub(vA)
}
