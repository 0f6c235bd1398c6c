package epa

import (
	"testing"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions

func circle(t testing.TB, radius float64) actor.Shape {
	c, err := actor.NewCircle(radius)
	require.NoError(t, err)
	return c
}

func box(t testing.TB, width, height float64) actor.Shape {
	r, err := actor.NewRectangle(width, height)
	require.NoError(t, err)
	return r
}

func at(x, y float64) actor.Transform {
	return actor.NewTransformAt(mgl64.Vec2{x, y}, 0)
}

func assertVec(t *testing.T, expected, actual mgl64.Vec2, delta float64) {
	t.Helper()
	assert.InDelta(t, expected.X(), actual.X(), delta, "x of %v", actual)
	assert.InDelta(t, expected.Y(), actual.Y(), delta, "y of %v", actual)
}

// detect runs GJK and returns the simplex EPA starts from
func detect(t testing.TB, ms gjk.MinkowskiSum) *gjk.Simplex {
	simplex := &gjk.Simplex{}
	require.True(t, gjk.NewDetector().Detect(ms.A, ms.TxA, ms.B, ms.TxB, simplex), "shapes must overlap")
	return simplex
}

func TestSolverPenetration(t *testing.T) {
	tests := []struct {
		name   string
		ms     gjk.MinkowskiSum
		normal mgl64.Vec2
		depth  float64
		delta  float64
	}{
		{
			name:   "boxes along x",
			ms:     gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: box(t, 2, 2), TxB: at(1.5, 0)},
			normal: mgl64.Vec2{1, 0},
			depth:  0.5,
			delta:  1e-7,
		},
		{
			name:   "box below",
			ms:     gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: box(t, 2, 2), TxB: at(0, -1.7)},
			normal: mgl64.Vec2{0, -1},
			depth:  0.3,
			delta:  1e-7,
		},
		{
			name:   "offset boxes",
			ms:     gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: box(t, 2, 2), TxB: at(1.5, 0.3)},
			normal: mgl64.Vec2{1, 0},
			depth:  0.5,
			delta:  1e-7,
		},
		{
			name:   "circles",
			ms:     gjk.MinkowskiSum{A: circle(t, 1), TxA: at(0, 0), B: circle(t, 1), TxB: at(1.5, 0)},
			normal: mgl64.Vec2{1, 0},
			depth:  0.5,
			delta:  1e-4,
		},
		{
			name:   "circle on box",
			ms:     gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: circle(t, 1), TxB: at(0, 1.8)},
			normal: mgl64.Vec2{0, 1},
			depth:  0.2,
			delta:  1e-4,
		},
		{
			name:   "box under circle",
			ms:     gjk.MinkowskiSum{A: circle(t, 1), TxA: at(0, 1.8), B: box(t, 2, 2), TxB: at(0, 0)},
			normal: mgl64.Vec2{0, -1},
			depth:  0.2,
			delta:  1e-4,
		},
	}

	solver := NewSolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pen, ok := solver.Penetration(tt.ms, detect(t, tt.ms))
			require.True(t, ok)

			assertVec(t, tt.normal, pen.Normal, tt.delta)
			assert.InDelta(t, tt.depth, pen.Depth, tt.delta)
			assert.InDelta(t, 1.0, pen.Normal.Len(), 1e-9)
		})
	}
}

func TestPenetrationSeparatesShapes(t *testing.T) {
	tests := []struct {
		name string
		ms   gjk.MinkowskiSum
	}{
		{"boxes", gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: box(t, 2, 2), TxB: at(1.2, 0.7)}},
		{"rotated box", gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: box(t, 1, 3), TxB: actor.NewTransformAt(mgl64.Vec2{1.4, 0.5}, 0.4)}},
		{"circles", gjk.MinkowskiSum{A: circle(t, 1), TxA: at(0, 0), B: circle(t, 0.5), TxB: at(0.8, -0.9)}},
		{"circle and box", gjk.MinkowskiSum{A: circle(t, 1), TxA: at(0, 0), B: box(t, 2, 1), TxB: at(1.5, 0.4)}},
	}

	solver := NewSolver()
	detector := gjk.NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pen, ok := solver.Penetration(tt.ms, detect(t, tt.ms))
			require.True(t, ok)
			require.Greater(t, pen.Depth, 0.0)

			moved := func(distance float64) actor.Transform {
				tx := tt.ms.TxB
				tx.Translate(pen.Normal.Mul(distance))
				return tx
			}

			simplex := &gjk.Simplex{}
			assert.False(t, detector.Detect(tt.ms.A, tt.ms.TxA, tt.ms.B, moved(pen.Depth+1e-3), simplex),
				"moving B past the depth separates the shapes")
			assert.True(t, detector.Detect(tt.ms.A, tt.ms.TxA, tt.ms.B, moved(pen.Depth-1e-3), simplex),
				"moving B short of the depth keeps them overlapping")

			sep, ok := detector.Distance(tt.ms.A, tt.ms.TxA, tt.ms.B, moved(pen.Depth+0.01))
			require.True(t, ok)
			assert.InDelta(t, 0.01, sep.Distance, 1e-4)
		})
	}
}

func TestSolverSegmentSimplex(t *testing.T) {
	solver := NewSolver()

	t.Run("overlapping shapes are completed", func(t *testing.T) {
		ms := gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: box(t, 2, 2), TxB: at(1.5, 0)}
		simplex := &gjk.Simplex{Count: 2}
		simplex.Points[0].Point = mgl64.Vec2{0, -2}
		simplex.Points[1].Point = mgl64.Vec2{0, 2}

		pen, ok := solver.Penetration(ms, simplex)
		require.True(t, ok)
		assertVec(t, mgl64.Vec2{1, 0}, pen.Normal, 1e-7)
		assert.InDelta(t, 0.5, pen.Depth, 1e-7)
	})

	t.Run("touching shapes have no penetration", func(t *testing.T) {
		ms := gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: box(t, 2, 2), TxB: at(2, 0)}
		simplex := &gjk.Simplex{Count: 2}
		simplex.Points[0].Point = mgl64.Vec2{0, -2}
		simplex.Points[1].Point = mgl64.Vec2{0, 2}

		_, err := solver.Solve(ms, simplex)
		assert.ErrorIs(t, err, ErrDegenerateSimplex)

		_, ok := solver.Penetration(ms, simplex)
		assert.False(t, ok)
	})

	t.Run("single point", func(t *testing.T) {
		ms := gjk.MinkowskiSum{A: box(t, 2, 2), TxA: at(0, 0), B: box(t, 2, 2), TxB: at(1, 0)}
		simplex := &gjk.Simplex{Count: 1}

		_, err := solver.Solve(ms, simplex)
		assert.ErrorIs(t, err, ErrDegenerateSimplex)
	})
}

func TestSolverMaxIterations(t *testing.T) {
	ms := gjk.MinkowskiSum{A: circle(t, 1), TxA: at(0, 0), B: circle(t, 1), TxB: at(1.5, 0)}
	solver := &Solver{MaxIterations: 1, DistanceEpsilon: DefaultDistanceEpsilon}

	pen, err := solver.Solve(ms, detect(t, ms))
	assert.ErrorIs(t, err, ErrNotConverged)
	assert.Greater(t, pen.Depth, 0.0)

	estimate, ok := solver.Penetration(ms, detect(t, ms))
	assert.True(t, ok, "the best estimate is still a penetration")
	assert.Equal(t, pen, estimate)
}

func BenchmarkSolver_Boxes(b *testing.B) {
	ms := gjk.MinkowskiSum{A: box(b, 2, 2), TxA: at(0, 0), B: box(b, 2, 2), TxB: actor.NewTransformAt(mgl64.Vec2{1.5, 0.5}, 0.3)}
	simplex := detect(b, ms)
	solver := NewSolver()
	for b.Loop() {
		solver.Penetration(ms, simplex)
	}
}

func BenchmarkSolver_Circles(b *testing.B) {
	ms := gjk.MinkowskiSum{A: circle(b, 1), TxA: at(0, 0), B: circle(b, 1), TxB: at(1.5, 0.2)}
	simplex := detect(b, ms)
	solver := NewSolver()
	for b.Loop() {
		solver.Penetration(ms, simplex)
	}
}
