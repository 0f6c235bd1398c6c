package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCircleBody(t *testing.T, position mgl64.Vec2, bodyType BodyType) *RigidBody {
	t.Helper()
	circle, err := NewCircle(1)
	require.NoError(t, err)
	rb, err := NewRigidBody(NewTransformAt(position, 0), circle, bodyType, DefaultMaterial())
	require.NoError(t, err)
	return rb
}

func TestMass(t *testing.T) {
	t.Run("types", func(t *testing.T) {
		m := NewMass(mgl64.Vec2{}, 2, 0.5)
		tests := []struct {
			name       string
			massType   MassType
			invMass    float64
			invInertia float64
		}{
			{"normal", MassNormal, 0.5, 2},
			{"infinite", MassInfinite, 0, 0},
			{"fixed linear velocity", MassFixedLinearVelocity, 0, 2},
			{"fixed angular velocity", MassFixedAngularVelocity, 0.5, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				typed := m.WithType(tt.massType)
				assert.Equal(t, tt.invMass, typed.InverseMass())
				assert.Equal(t, tt.invInertia, typed.InverseInertia())
				assert.Equal(t, tt.massType == MassInfinite, typed.IsInfinite())
			})
		}
	})

	t.Run("zero mass is infinite", func(t *testing.T) {
		assert.True(t, NewMass(mgl64.Vec2{}, 0, 0).IsInfinite())
		assert.True(t, InfiniteMass(mgl64.Vec2{1, 1}).IsInfinite())
	})

	t.Run("combine", func(t *testing.T) {
		m := CombineMasses([]Mass{
			NewMass(mgl64.Vec2{-1, 0}, 1, 0.5),
			NewMass(mgl64.Vec2{1, 0}, 1, 0.5),
		})
		assertVec(t, mgl64.Vec2{}, m.Center, 1e-12)
		assert.InDelta(t, 2.0, m.Mass, 1e-12)
		assert.InDelta(t, 3.0, m.Inertia, 1e-12)

		assert.True(t, CombineMasses(nil).IsInfinite())
	})
}

func TestNewRigidBody(t *testing.T) {
	_, err := NewRigidBody(NewTransform(), nil, BodyTypeDynamic, DefaultMaterial())
	assert.ErrorIs(t, err, ErrNilArgument)

	dynamic := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)
	assert.InDelta(t, math.Pi, dynamic.Mass.Mass, 1e-12)
	assert.InDelta(t, 1/math.Pi, dynamic.InverseMass(), 1e-12)
	assert.False(t, dynamic.IsStatic())
	assert.Equal(t, AABB{Min: mgl64.Vec2{-1, -1}, Max: mgl64.Vec2{1, 1}}, dynamic.AABB())

	static := newCircleBody(t, mgl64.Vec2{}, BodyTypeStatic)
	assert.True(t, static.IsStatic())
	assert.Equal(t, 0.0, static.InverseMass())
	assert.Equal(t, 0.0, static.InverseInertia())
}

func TestRigidBodyImpulses(t *testing.T) {
	rb := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)

	rb.ApplyImpulse(mgl64.Vec2{math.Pi, 0}, mgl64.Vec2{0, 1})
	assertVec(t, mgl64.Vec2{1, 0}, rb.LinearVelocity, 1e-12)
	assert.InDelta(t, -2.0, rb.AngularVelocity, 1e-12)

	// the top of the circle moves with v + w × r
	assertVec(t, mgl64.Vec2{3, 0}, rb.VelocityAt(mgl64.Vec2{0, 1}), 1e-12)

	static := newCircleBody(t, mgl64.Vec2{}, BodyTypeStatic)
	static.ApplyImpulse(mgl64.Vec2{1, 0}, mgl64.Vec2{})
	static.ApplyForce(mgl64.Vec2{1, 0})
	static.IntegrateVelocity(1, mgl64.Vec2{0, -10})
	assert.Equal(t, mgl64.Vec2{}, static.LinearVelocity)
}

func TestRigidBodyIntegration(t *testing.T) {
	t.Run("gravity and forces", func(t *testing.T) {
		rb := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)
		rb.ApplyForce(mgl64.Vec2{math.Pi, 0})
		rb.IntegrateVelocity(0.1, mgl64.Vec2{0, -10})
		assertVec(t, mgl64.Vec2{0.1, -1}, rb.LinearVelocity, 1e-12)

		// forces only last one step
		rb.IntegrateVelocity(0.1, mgl64.Vec2{})
		assertVec(t, mgl64.Vec2{0.1, -1}, rb.LinearVelocity, 1e-12)
	})

	t.Run("torque at a point", func(t *testing.T) {
		rb := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)
		rb.ApplyForceAt(mgl64.Vec2{0, 1}, mgl64.Vec2{1, 0})
		rb.IntegrateVelocity(1, mgl64.Vec2{})
		assert.InDelta(t, 2/math.Pi, rb.AngularVelocity, 1e-12)
	})

	t.Run("damping", func(t *testing.T) {
		rb := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)
		rb.Material.LinearDamping = 1
		rb.Material.AngularDamping = 2
		rb.LinearVelocity = mgl64.Vec2{1, 0}
		rb.AngularVelocity = 1
		rb.IntegrateVelocity(0.1, mgl64.Vec2{})
		assertVec(t, mgl64.Vec2{0.9, 0}, rb.LinearVelocity, 1e-12)
		assert.InDelta(t, 0.8, rb.AngularVelocity, 1e-12)
	})

	t.Run("position is clamped", func(t *testing.T) {
		rb := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)
		rb.LinearVelocity = mgl64.Vec2{100, 0}
		rb.AngularVelocity = 100
		rb.IntegratePosition(0.1, 2, math.Pi/2)
		assertVec(t, mgl64.Vec2{2, 0}, rb.Transform.Position, 1e-12)
		assertVec(t, mgl64.Vec2{20, 0}, rb.LinearVelocity, 1e-12)
		assert.InDelta(t, math.Pi/2, rb.Transform.Angle(), 1e-12)
		assert.InDelta(t, 5*math.Pi, rb.AngularVelocity, 1e-9)
	})

	t.Run("rotation keeps the center of mass", func(t *testing.T) {
		square, err := NewPolygon(mgl64.Vec2{1, 1}, mgl64.Vec2{3, 1}, mgl64.Vec2{3, 2}, mgl64.Vec2{1, 2})
		require.NoError(t, err)
		rb, err := NewRigidBody(NewTransformAt(mgl64.Vec2{5, 0}, 0), square, BodyTypeDynamic, DefaultMaterial())
		require.NoError(t, err)

		before := rb.WorldCenter()
		rb.RotateAboutCenter(math.Pi / 3)
		assertVec(t, before, rb.WorldCenter(), 1e-12)

		local := mgl64.Vec2{0.5, -0.25}
		assertVec(t, local, rb.LocalPoint(rb.WorldPoint(local)), 1e-12)
	})
}

func TestRigidBodyAtRest(t *testing.T) {
	rb := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)
	maxLinear, maxAngular := 0.01, 0.05

	assert.False(t, rb.UpdateAtRest(0.2, maxLinear, maxAngular, 0.5))
	assert.False(t, rb.UpdateAtRest(0.2, maxLinear, maxAngular, 0.5))
	assert.True(t, rb.UpdateAtRest(0.2, maxLinear, maxAngular, 0.5))
	assert.True(t, rb.IsAtRest())

	// bodies at rest do not integrate
	rb.IntegrateVelocity(1, mgl64.Vec2{0, -10})
	assert.Equal(t, mgl64.Vec2{}, rb.LinearVelocity)

	rb.ApplyForce(mgl64.Vec2{1, 0})
	assert.False(t, rb.IsAtRest())

	t.Run("moving resets the timer", func(t *testing.T) {
		rb := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)
		assert.False(t, rb.UpdateAtRest(0.4, maxLinear, maxAngular, 0.5))
		rb.LinearVelocity = mgl64.Vec2{1, 0}
		assert.False(t, rb.UpdateAtRest(0.4, maxLinear, maxAngular, 0.5))
		rb.LinearVelocity = mgl64.Vec2{}
		assert.False(t, rb.UpdateAtRest(0.4, maxLinear, maxAngular, 0.5))
		assert.False(t, rb.IsAtRest())
	})

	t.Run("detection disabled", func(t *testing.T) {
		rb := newCircleBody(t, mgl64.Vec2{}, BodyTypeDynamic)
		rb.AtRestDetection = false
		assert.False(t, rb.UpdateAtRest(1, maxLinear, maxAngular, 0.5))
	})
}

func TestRigidBodyQueries(t *testing.T) {
	rb := newCircleBody(t, mgl64.Vec2{3, 0}, BodyTypeDynamic)
	rb.Translate(mgl64.Vec2{0, 1})
	// the cached AABB is the one computed at construction
	assert.Equal(t, AABB{Min: mgl64.Vec2{2, -1}, Max: mgl64.Vec2{4, 1}}, rb.AABB())
	assert.Equal(t, AABB{Min: mgl64.Vec2{2, 0}, Max: mgl64.Vec2{4, 2}}, rb.ComputeAABB())

	assertVec(t, mgl64.Vec2{4, 1}, rb.SupportWorld(mgl64.Vec2{1, 0}), 1e-12)
	assert.True(t, rb.Contains(mgl64.Vec2{3.5, 1}))
	assert.False(t, rb.Contains(mgl64.Vec2{0, 0}))
}
