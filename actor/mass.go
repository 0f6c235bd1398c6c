package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MassType restricts how a body reacts to impulses
type MassType int

const (
	// MassNormal bodies respond to linear and angular impulses
	MassNormal MassType = iota
	// MassInfinite bodies never move under impulses
	MassInfinite
	// MassFixedLinearVelocity bodies only rotate under impulses
	MassFixedLinearVelocity
	// MassFixedAngularVelocity bodies only translate under impulses
	MassFixedAngularVelocity
)

// Mass holds the mass properties of a shape or body, Center being in local space.
type Mass struct {
	Center  mgl64.Vec2
	Mass    float64
	Inertia float64
	Type    MassType

	invMass    float64
	invInertia float64
}

// NewMass creates normal mass data. A non positive mass and inertia gives an infinite mass.
func NewMass(center mgl64.Vec2, mass, inertia float64) Mass {
	m := Mass{Center: center, Mass: math.Max(mass, 0), Inertia: math.Max(inertia, 0)}
	if m.Mass <= Epsilon && m.Inertia <= Epsilon {
		m.Type = MassInfinite
	}
	m.updateInverses()
	return m
}

// InfiniteMass creates mass data for an immovable body
func InfiniteMass(center mgl64.Vec2) Mass {
	return Mass{Center: center, Type: MassInfinite}
}

// WithType returns a copy restricted to the given type
func (m Mass) WithType(t MassType) Mass {
	m.Type = t
	m.updateInverses()
	return m
}

func (m *Mass) updateInverses() {
	m.invMass, m.invInertia = 0, 0
	if m.Mass > Epsilon {
		m.invMass = 1.0 / m.Mass
	}
	if m.Inertia > Epsilon {
		m.invInertia = 1.0 / m.Inertia
	}

	switch m.Type {
	case MassInfinite:
		m.invMass, m.invInertia = 0, 0
	case MassFixedLinearVelocity:
		m.invMass = 0
	case MassFixedAngularVelocity:
		m.invInertia = 0
	}
}

// InverseMass returns 1/mass, 0 for infinite or linearly fixed masses
func (m Mass) InverseMass() float64 { return m.invMass }

// InverseInertia returns 1/inertia, 0 for infinite or angularly fixed masses
func (m Mass) InverseInertia() float64 { return m.invInertia }

// IsInfinite reports whether impulses cannot move the body at all
func (m Mass) IsInfinite() bool {
	return m.Type == MassInfinite
}

// CombineMasses merges the mass of several shapes that share the same local frame.
// The resulting inertia is taken about the combined center.
func CombineMasses(masses []Mass) Mass {
	if len(masses) == 0 {
		return InfiniteMass(mgl64.Vec2{})
	}
	if len(masses) == 1 {
		return masses[0]
	}

	var total float64
	var center mgl64.Vec2
	for _, m := range masses {
		total += m.Mass
		center = center.Add(m.Center.Mul(m.Mass))
	}
	if total > Epsilon {
		center = center.Mul(1.0 / total)
	}

	var inertia float64
	for _, m := range masses {
		d := m.Center.Sub(center)
		inertia += m.Inertia + m.Mass*d.LenSqr()
	}

	return NewMass(center, total, inertia)
}
