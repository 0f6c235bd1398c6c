package joint

import (
	"math"
	"testing"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// motorSetup anchors a dynamic unit circle at (2, 0) to a static circle at the origin
func motorSetup(t *testing.T) (*actor.RigidBody, *actor.RigidBody, *MotorJoint) {
	t.Helper()
	a := createCircle(t, mgl64.Vec2{}, actor.BodyTypeStatic)
	b := createCircle(t, mgl64.Vec2{2, 0}, actor.BodyTypeDynamic)
	j, err := NewMotorJoint(a, b)
	require.NoError(t, err)
	return a, b, j
}

func TestNewMotorJoint(t *testing.T) {
	a := createCircle(t, mgl64.Vec2{1, 1}, actor.BodyTypeStatic)
	b := createCircle(t, mgl64.Vec2{2, 0}, actor.BodyTypeDynamic)
	b.Transform.SetAngle(0.5)

	j, err := NewMotorJoint(a, b)
	require.NoError(t, err)

	assert.InDelta(t, 1, j.LinearTarget().X(), 1e-12)
	assert.InDelta(t, -1, j.LinearTarget().Y(), 1e-12)
	assert.InDelta(t, 0.5, j.AngularTarget(), 1e-12)
	assert.Equal(t, DefaultMotorCorrectionFactor, j.CorrectionFactor())
	assert.Equal(t, DefaultMotorMaxForce, j.MaxForce())
	assert.Equal(t, DefaultMotorMaxTorque, j.MaxTorque())
}

func TestMotorJointSetters(t *testing.T) {
	tests := []struct {
		name    string
		set     func(j *MotorJoint) error
		wantErr bool
	}{
		{"correction factor 0", func(j *MotorJoint) error { return j.SetCorrectionFactor(0) }, false},
		{"correction factor 1", func(j *MotorJoint) error { return j.SetCorrectionFactor(1) }, false},
		{"negative correction factor", func(j *MotorJoint) error { return j.SetCorrectionFactor(-0.1) }, true},
		{"correction factor above 1", func(j *MotorJoint) error { return j.SetCorrectionFactor(1.1) }, true},
		{"zero max force", func(j *MotorJoint) error { return j.SetMaxForce(0) }, false},
		{"negative max force", func(j *MotorJoint) error { return j.SetMaxForce(-1) }, true},
		{"zero max torque", func(j *MotorJoint) error { return j.SetMaxTorque(0) }, false},
		{"negative max torque", func(j *MotorJoint) error { return j.SetMaxTorque(-1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b, j := motorSetup(t)
			b.SetAtRest(true)

			err := tt.set(j)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				assert.True(t, b.IsAtRest(), "a rejected value must not wake the body")
				return
			}
			require.NoError(t, err)
			assert.False(t, b.IsAtRest())
		})
	}
}

func TestMotorJointTargetsWakeBodies(t *testing.T) {
	_, b, j := motorSetup(t)

	b.SetAtRest(true)
	j.SetLinearTarget(j.LinearTarget())
	assert.True(t, b.IsAtRest(), "the same target must not wake the body")

	j.SetLinearTarget(mgl64.Vec2{3, 0})
	assert.False(t, b.IsAtRest())

	b.SetAtRest(true)
	j.SetAngularTarget(2*math.Pi + 0.5)
	assert.False(t, b.IsAtRest())
	assert.InDelta(t, 0.5, j.AngularTarget(), 1e-12)
}

func TestMotorJointAtTarget(t *testing.T) {
	a, b, j := motorSetup(t)

	simulate(60, mgl64.Vec2{}, []*actor.RigidBody{a, b}, j)

	assert.InDelta(t, 2, b.Transform.Position.X(), 1e-12)
	assert.InDelta(t, 0, b.Transform.Position.Y(), 1e-12)
	assert.InDelta(t, 0, j.ReactionForce(60).Len(), 1e-12)
	assert.InDelta(t, 0, j.ReactionTorque(60), 1e-12)
}

func TestMotorJointConvergesToTarget(t *testing.T) {
	a, b, j := motorSetup(t)
	j.SetLinearTarget(mgl64.Vec2{3, 0})
	j.SetAngularTarget(0.5)

	simulate(300, mgl64.Vec2{}, []*actor.RigidBody{a, b}, j)

	assert.InDelta(t, 3, b.Transform.Position.X(), 1e-3)
	assert.InDelta(t, 0, b.Transform.Position.Y(), 1e-3)
	assert.InDelta(t, 0.5, b.Transform.Angle(), 1e-3)
	assert.InDelta(t, 0, b.LinearVelocity.Len(), 1e-2)
	assert.InDelta(t, 0, j.ReactionForce(1).Len(), 1e-3)
	assert.InDelta(t, 0, j.ReactionTorque(1), 1e-3)
}

func TestMotorJointImpulseClamp(t *testing.T) {
	_, b, j := motorSetup(t)
	require.NoError(t, j.SetMaxForce(1))
	require.NoError(t, j.SetMaxTorque(0.5))
	j.SetLinearTarget(mgl64.Vec2{50, 20})
	j.SetAngularTarget(3)

	settings := constraint.DefaultSettings()
	step := constraint.NewTimeStep(settings.StepFrequency)
	invDt := step.InverseDeltaTime()

	for s := 0; s < 10; s++ {
		j.InitializeConstraints(&step, &settings)
		for i := 0; i < settings.VelocityIterations; i++ {
			j.SolveVelocityConstraints(&step, &settings)

			assert.LessOrEqual(t, j.ReactionForce(invDt).Len(), 1+1e-9)
			assert.LessOrEqual(t, math.Abs(j.ReactionTorque(invDt)), 0.5+1e-9)
		}
		b.IntegratePosition(step.DeltaTime(), settings.MaxTranslation, settings.MaxRotation)
	}

	// the motor pushed as hard as it could toward the target
	assert.InDelta(t, 1, j.ReactionForce(invDt).Len(), 1e-9)
	assert.InDelta(t, 0.5, j.ReactionTorque(invDt), 1e-9)
}
