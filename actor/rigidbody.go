package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

type Material struct {
	Density     float64
	Friction    float64
	Restitution float64 // 0 = no rebound, 1 = perfect restitution

	LinearDamping  float64
	AngularDamping float64
}

// DefaultMaterial has unit density and a moderate friction
func DefaultMaterial() Material {
	return Material{Density: 1, Friction: 0.2}
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	Transform Transform

	LinearVelocity  mgl64.Vec2 // m/s
	AngularVelocity float64    // rad/s

	GravityScale float64

	force  mgl64.Vec2
	torque float64

	// Sensor bodies report contacts but are never pushed by them
	Sensor bool

	atRest     bool
	atRestTime float64
	// AtRestDetection lets the world put the body to rest when it stops moving
	AtRestDetection bool

	Material Material
	BodyType BodyType
	Mass     Mass

	Shape Shape
	aabb  AABB
}

// NewRigidBody creates a body at transform. Dynamic bodies take their mass
// from the shape and the material density, static bodies get an infinite mass.
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, material Material) (*RigidBody, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: rigid body shape", ErrNilArgument)
	}

	rb := &RigidBody{
		Transform:       transform,
		Shape:           shape,
		BodyType:        bodyType,
		Material:        material,
		GravityScale:    1,
		AtRestDetection: true,
	}

	if bodyType == BodyTypeStatic {
		rb.Mass = InfiniteMass(shape.Center())
	} else {
		rb.Mass = shape.CreateMass(material.Density)
	}
	rb.aabb = shape.ComputeAABB(transform)

	return rb, nil
}

// IsStatic reports whether the body can never move
func (rb *RigidBody) IsStatic() bool {
	return rb.BodyType == BodyTypeStatic || rb.Mass.IsInfinite()
}

// InverseMass returns 0 for static bodies
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType == BodyTypeStatic {
		return 0
	}
	return rb.Mass.InverseMass()
}

// InverseInertia returns 0 for static bodies
func (rb *RigidBody) InverseInertia() float64 {
	if rb.BodyType == BodyTypeStatic {
		return 0
	}
	return rb.Mass.InverseInertia()
}

// LocalCenter returns the center of mass in local space
func (rb *RigidBody) LocalCenter() mgl64.Vec2 {
	return rb.Mass.Center
}

// WorldCenter returns the center of mass in world space
func (rb *RigidBody) WorldCenter() mgl64.Vec2 {
	return rb.Transform.Apply(rb.Mass.Center)
}

// WorldPoint maps a local point to world space
func (rb *RigidBody) WorldPoint(local mgl64.Vec2) mgl64.Vec2 {
	return rb.Transform.Apply(local)
}

// LocalPoint maps a world point to local space
func (rb *RigidBody) LocalPoint(world mgl64.Vec2) mgl64.Vec2 {
	return rb.Transform.ApplyInverse(world)
}

// VelocityAt returns the velocity of a world point attached to the body
func (rb *RigidBody) VelocityAt(point mgl64.Vec2) mgl64.Vec2 {
	return rb.LinearVelocity.Add(CrossSV(rb.AngularVelocity, point.Sub(rb.WorldCenter())))
}

// Translate moves the body without touching its velocity
func (rb *RigidBody) Translate(delta mgl64.Vec2) {
	rb.Transform.Translate(delta)
}

// RotateAboutCenter rotates the body around its world center of mass
func (rb *RigidBody) RotateAboutCenter(angle float64) {
	rb.Transform.RotateAbout(angle, rb.WorldCenter())
}

// IsAtRest reports whether the body has been put to rest
func (rb *RigidBody) IsAtRest() bool {
	return rb.atRest
}

// SetAtRest puts the body to rest, clearing its velocities and forces, or wakes it up
func (rb *RigidBody) SetAtRest(flag bool) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.atRest = flag
	rb.atRestTime = 0
	if flag {
		rb.LinearVelocity = mgl64.Vec2{}
		rb.AngularVelocity = 0
		rb.ClearForces()
	}
}

// UpdateAtRest accumulates the time spent below the velocity thresholds and
// puts the body to rest once it reaches minTime. It returns true when the
// body has just been put to rest.
func (rb *RigidBody) UpdateAtRest(dt, maxLinearVelocity, maxAngularVelocity, minTime float64) bool {
	if rb.BodyType == BodyTypeStatic || rb.atRest || !rb.AtRestDetection {
		return false
	}
	if rb.LinearVelocity.LenSqr() > maxLinearVelocity*maxLinearVelocity ||
		math.Abs(rb.AngularVelocity) > maxAngularVelocity {
		rb.atRestTime = 0
		return false
	}

	rb.atRestTime += dt
	if rb.atRestTime >= minTime {
		rb.SetAtRest(true)
		return true
	}
	return false
}

// ApplyForce applies a force at the center of mass for the next step
func (rb *RigidBody) ApplyForce(force mgl64.Vec2) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.SetAtRest(false)
	rb.force = rb.force.Add(force)
}

// ApplyForceAt applies a force at a world point, producing a torque as well
func (rb *RigidBody) ApplyForceAt(force, point mgl64.Vec2) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.SetAtRest(false)
	rb.force = rb.force.Add(force)
	rb.torque += Cross(point.Sub(rb.WorldCenter()), force)
}

// ApplyTorque applies a torque for the next step
func (rb *RigidBody) ApplyTorque(torque float64) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.SetAtRest(false)
	rb.torque += torque
}

// ApplyImpulse changes the velocities immediately, as if impulse hit point
func (rb *RigidBody) ApplyImpulse(impulse, point mgl64.Vec2) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.SetAtRest(false)
	rb.LinearVelocity = rb.LinearVelocity.Add(impulse.Mul(rb.InverseMass()))
	rb.AngularVelocity += rb.InverseInertia() * Cross(point.Sub(rb.WorldCenter()), impulse)
}

// ClearForces resets the accumulated force and torque
func (rb *RigidBody) ClearForces() {
	rb.force = mgl64.Vec2{}
	rb.torque = 0
}

// IntegrateVelocity applies gravity, accumulated forces and damping over dt
func (rb *RigidBody) IntegrateVelocity(dt float64, gravity mgl64.Vec2) {
	if rb.BodyType == BodyTypeStatic || rb.atRest {
		return
	}

	invMass := rb.InverseMass()
	if invMass > 0 {
		acceleration := gravity.Mul(rb.GravityScale).Add(rb.force.Mul(invMass))
		rb.LinearVelocity = rb.LinearVelocity.Add(acceleration.Mul(dt))
	}
	rb.AngularVelocity += rb.InverseInertia() * rb.torque * dt

	if rb.Material.LinearDamping != 0 {
		rb.LinearVelocity = rb.LinearVelocity.Mul(mgl64.Clamp(1-dt*rb.Material.LinearDamping, 0, 1))
	}
	if rb.Material.AngularDamping != 0 {
		rb.AngularVelocity *= mgl64.Clamp(1-dt*rb.Material.AngularDamping, 0, 1)
	}

	rb.ClearForces()
}

// IntegratePosition moves the body by its velocities, clamping the motion to
// maxTranslation and maxRotation per step.
func (rb *RigidBody) IntegratePosition(dt, maxTranslation, maxRotation float64) {
	if rb.BodyType == BodyTypeStatic || rb.atRest {
		return
	}

	translation := rb.LinearVelocity.Mul(dt)
	if translation.LenSqr() > maxTranslation*maxTranslation {
		rb.LinearVelocity = rb.LinearVelocity.Mul(maxTranslation / translation.Len())
		translation = rb.LinearVelocity.Mul(dt)
	}

	rotation := rb.AngularVelocity * dt
	if math.Abs(rotation) > maxRotation {
		rb.AngularVelocity = math.Copysign(maxRotation, rb.AngularVelocity) / dt
		rotation = rb.AngularVelocity * dt
	}

	rb.Transform.Translate(translation)
	rb.RotateAboutCenter(rotation)
}

// ComputeAABB refreshes the cached world bounds
func (rb *RigidBody) ComputeAABB() AABB {
	rb.aabb = rb.Shape.ComputeAABB(rb.Transform)
	return rb.aabb
}

// AABB returns the bounds computed by the last ComputeAABB
func (rb *RigidBody) AABB() AABB {
	return rb.aabb
}

// SupportWorld returns the world point of the body farthest along direction
func (rb *RigidBody) SupportWorld(direction mgl64.Vec2) mgl64.Vec2 {
	return rb.Shape.Support(direction, rb.Transform)
}

// Contains reports whether a world point lies inside the body
func (rb *RigidBody) Contains(point mgl64.Vec2) bool {
	return rb.Shape.Contains(point, rb.Transform)
}
