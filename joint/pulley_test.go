package joint

import (
	"testing"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gravity = mgl64.Vec2{0, -9.8}

// pulleySetup hangs a box of mass 2 and a box of mass 1 on a rope of length
// 10, going over pulleys at (-2, 5) and (2, 5).
func pulleySetup(t *testing.T) (*actor.RigidBody, *actor.RigidBody, *PulleyJoint) {
	t.Helper()
	a := createBox(t, mgl64.Vec2{-2, 0}, actor.BodyTypeDynamic, 2)
	b := createBox(t, mgl64.Vec2{2, 0}, actor.BodyTypeDynamic, 1)
	j, err := NewPulleyJoint(a, b,
		mgl64.Vec2{-2, 5}, mgl64.Vec2{2, 5},
		a.WorldCenter(), b.WorldCenter())
	require.NoError(t, err)
	return a, b, j
}

func TestNewPulleyJoint(t *testing.T) {
	_, _, j := pulleySetup(t)

	assert.InDelta(t, 10, j.Length(), 1e-12)
	assert.InDelta(t, 5, j.CurrentLengthA(), 1e-12)
	assert.InDelta(t, 5, j.CurrentLengthB(), 1e-12)
	assert.Equal(t, 1.0, j.Ratio())
	assert.False(t, j.IsSlackEnabled())
	assert.False(t, j.IsCollisionAllowed())
	assert.Equal(t, mgl64.Vec2{-2, 5}, j.PulleyAnchorA())
	assert.Equal(t, mgl64.Vec2{2, 5}, j.PulleyAnchorB())
	assert.InDelta(t, -2, j.AnchorA().X(), 1e-12)
	assert.InDelta(t, 2, j.AnchorB().X(), 1e-12)
}

func TestPulleyJointSetters(t *testing.T) {
	tests := []struct {
		name    string
		set     func(j *PulleyJoint) error
		wantErr bool
	}{
		{"zero length", func(j *PulleyJoint) error { return j.SetLength(0) }, false},
		{"longer rope", func(j *PulleyJoint) error { return j.SetLength(12) }, false},
		{"negative length", func(j *PulleyJoint) error { return j.SetLength(-1) }, true},
		{"ratio", func(j *PulleyJoint) error { return j.SetRatio(2) }, false},
		{"zero ratio", func(j *PulleyJoint) error { return j.SetRatio(0) }, true},
		{"negative ratio", func(j *PulleyJoint) error { return j.SetRatio(-1) }, true},
		{"slack", func(j *PulleyJoint) error { j.SetSlackEnabled(true); return nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, j := pulleySetup(t)
			a.SetAtRest(true)
			b.SetAtRest(true)

			err := tt.set(j)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				assert.True(t, a.IsAtRest())
				assert.True(t, b.IsAtRest())
				return
			}
			require.NoError(t, err)
			assert.False(t, a.IsAtRest())
			assert.False(t, b.IsAtRest())
		})
	}
}

func TestPulleyJointKeepsRopeLength(t *testing.T) {
	a, b, j := pulleySetup(t)
	settings := constraint.DefaultSettings()

	for s := 0; s < 60; s++ {
		simulate(1, gravity, []*actor.RigidBody{a, b}, j)
		assert.InDelta(t, j.Length(), j.CurrentLength(), settings.LinearTolerance, "step %d", s)
	}

	// the heavier body goes down and lifts the lighter one
	assert.Less(t, a.Transform.Position.Y(), 0.0)
	assert.Greater(t, b.Transform.Position.Y(), 0.0)
	assert.InDelta(t, -a.Transform.Position.Y(), b.Transform.Position.Y(), 1e-6)
	assert.Greater(t, j.ReactionForce(60).Y(), 0.0, "the rope pulls B up")
	assert.Zero(t, j.ReactionTorque(60))
}

func TestPulleyJointRatio(t *testing.T) {
	tests := []struct {
		name    string
		gravity mgl64.Vec2
		moves   bool
	}{
		{"at rest", mgl64.Vec2{}, false},
		{"under gravity", gravity, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, j := pulleySetup(t)
			require.NoError(t, j.SetRatio(2))
			settings := constraint.DefaultSettings()

			// the ratio does not change the rope length
			assert.InDelta(t, 10, j.Length(), 1e-12)
			assert.InDelta(t, 10, j.CurrentLength(), 1e-12)

			for s := 0; s < 30; s++ {
				simulate(1, tt.gravity, []*actor.RigidBody{a, b}, j)
				assert.InDelta(t, j.Length(), j.CurrentLengthA()+j.CurrentLengthB(), settings.LinearTolerance, "step %d", s)
			}

			if !tt.moves {
				assert.InDelta(t, 0, a.Transform.Position.Y(), 1e-12)
				assert.InDelta(t, 0, b.Transform.Position.Y(), 1e-12)
				return
			}
			// A pulls on a ratio 2 rope: it goes down, B goes up
			assert.Less(t, a.Transform.Position.Y(), 0.0)
			assert.Greater(t, b.Transform.Position.Y(), 0.0)
		})
	}
}

func TestPulleyJointSlack(t *testing.T) {
	a, b, j := pulleySetup(t)
	j.SetSlackEnabled(true)
	require.NoError(t, j.SetLength(12))

	simulate(1, gravity, []*actor.RigidBody{a, b}, j)

	dt := constraint.DefaultSettings().StepFrequency
	// the rope is loose: both bodies fall freely
	assert.InDelta(t, -9.8*dt, a.LinearVelocity.Y(), 1e-12)
	assert.InDelta(t, -9.8*dt, b.LinearVelocity.Y(), 1e-12)
	assert.Zero(t, j.ReactionForce(60).Len())
}

func TestPulleyJointSlackRopeOnlyPulls(t *testing.T) {
	a, b, j := pulleySetup(t)
	j.SetSlackEnabled(true)
	require.NoError(t, j.SetLength(9))

	// both bodies move up, shortening the rope
	a.LinearVelocity = mgl64.Vec2{0, 1}
	b.LinearVelocity = mgl64.Vec2{0, 1}

	settings := constraint.DefaultSettings()
	step := constraint.NewTimeStep(settings.StepFrequency)
	j.InitializeConstraints(&step, &settings)
	for i := 0; i < settings.VelocityIterations; i++ {
		j.SolveVelocityConstraints(&step, &settings)
		assert.GreaterOrEqual(t, j.ReactionForce(1).Y(), 0.0)
	}

	assert.InDelta(t, 1, a.LinearVelocity.Y(), 1e-12)
	assert.InDelta(t, 1, b.LinearVelocity.Y(), 1e-12)
}
