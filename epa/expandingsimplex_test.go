package epa

import (
	"math"
	"testing"

	"github.com/akmonengine/lamina/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(vs ...mgl64.Vec2) []gjk.MinkowskiPoint {
	out := make([]gjk.MinkowskiPoint, len(vs))
	for i, v := range vs {
		out[i] = gjk.MinkowskiPoint{Point: v}
	}
	return out
}

func minDistance(s *ExpandingSimplex) float64 {
	d := math.Inf(1)
	for _, e := range s.edges {
		d = math.Min(d, e.Distance)
	}
	return d
}

func TestNewExpandingSimplex(t *testing.T) {
	t.Run("counter-clockwise triangle", func(t *testing.T) {
		s, err := NewExpandingSimplex(points(
			mgl64.Vec2{-1, -1}, mgl64.Vec2{2, -1}, mgl64.Vec2{0, 2},
		))
		require.NoError(t, err)

		assert.Equal(t, 1, s.Winding())
		assert.Equal(t, 3, s.Size())

		closest := s.ClosestEdge()
		assert.InDelta(t, 2/math.Sqrt(10), closest.Distance, 1e-12)
		assertVec(t, mgl64.Vec2{-3 / math.Sqrt(10), 1 / math.Sqrt(10)}, closest.Normal, 1e-12)
	})

	t.Run("clockwise triangle has the same outward normals", func(t *testing.T) {
		s, err := NewExpandingSimplex(points(
			mgl64.Vec2{0, 2}, mgl64.Vec2{2, -1}, mgl64.Vec2{-1, -1},
		))
		require.NoError(t, err)

		assert.Equal(t, -1, s.Winding())
		closest := s.ClosestEdge()
		assert.InDelta(t, 2/math.Sqrt(10), closest.Distance, 1e-12)
		assertVec(t, mgl64.Vec2{-3 / math.Sqrt(10), 1 / math.Sqrt(10)}, closest.Normal, 1e-12)
	})

	t.Run("ties go to the first edge", func(t *testing.T) {
		s, err := NewExpandingSimplex(points(
			mgl64.Vec2{-1, -1}, mgl64.Vec2{1, -1}, mgl64.Vec2{1, 1}, mgl64.Vec2{-1, 1},
		))
		require.NoError(t, err)

		closest := s.ClosestEdge()
		assert.Equal(t, 1.0, closest.Distance)
		assert.Equal(t, mgl64.Vec2{-1, -1}, closest.Point1.Point)
		assertVec(t, mgl64.Vec2{0, -1}, closest.Normal, 1e-12)
	})

	degenerate := []struct {
		name   string
		points []gjk.MinkowskiPoint
	}{
		{"empty", nil},
		{"segment", points(mgl64.Vec2{-1, 0}, mgl64.Vec2{1, 0})},
		{"collinear", points(mgl64.Vec2{-1, 0}, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0})},
		{"same point", points(mgl64.Vec2{1, 1}, mgl64.Vec2{1, 1}, mgl64.Vec2{1, 1})},
		{"duplicate point", points(mgl64.Vec2{-1, -1}, mgl64.Vec2{1, -1}, mgl64.Vec2{1, -1}, mgl64.Vec2{0, 1})},
	}
	for _, tt := range degenerate {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewExpandingSimplex(tt.points)
			assert.ErrorIs(t, err, ErrDegenerateSimplex)
			assert.Nil(t, s)
		})
	}
}

func TestExpandingSimplexExpand(t *testing.T) {
	s, err := NewExpandingSimplex(points(
		mgl64.Vec2{-1, -1}, mgl64.Vec2{2, -1}, mgl64.Vec2{0, 2},
	))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		size := s.Size()
		closest := s.ClosestEdge()
		require.Equal(t, minDistance(s), closest.Distance, "closest edge is the minimum")

		s.Expand(gjk.MinkowskiPoint{Point: closest.Normal.Mul(3)})

		require.Equal(t, size+1, s.Size(), "expand %d", i)
		require.Equal(t, minDistance(s), s.ClosestEdge().Distance)
	}
}

func TestExpandingSimplexExpandOnEndpoint(t *testing.T) {
	s, err := NewExpandingSimplex(points(
		mgl64.Vec2{-1, -1}, mgl64.Vec2{1, -1}, mgl64.Vec2{0, 1},
	))
	require.NoError(t, err)

	closest := s.ClosestEdge()
	s.Expand(closest.Point1)

	// the zero length half is dropped
	assert.Equal(t, 3, s.Size())
}

func TestExpandingSimplexReset(t *testing.T) {
	s, err := NewExpandingSimplex(points(
		mgl64.Vec2{-1, -1}, mgl64.Vec2{2, -1}, mgl64.Vec2{0, 2},
	))
	require.NoError(t, err)
	s.Expand(gjk.MinkowskiPoint{Point: mgl64.Vec2{-3, 1}})

	require.NoError(t, s.Reset(points(
		mgl64.Vec2{-1, -1}, mgl64.Vec2{1, -1}, mgl64.Vec2{1, 1}, mgl64.Vec2{-1, 1},
	)))
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, 1.0, s.ClosestEdge().Distance)

	err = s.Reset(points(mgl64.Vec2{0, 0}))
	assert.ErrorIs(t, err, ErrDegenerateSimplex)
	assert.Equal(t, 0, s.Size())
}
