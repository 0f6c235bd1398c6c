// Package epa implements the Expanding Polytope Algorithm for computing
// penetration depth, and the clipping of contact manifolds.
//
// EPA is run after GJK detects a collision to determine:
//   - Penetration depth (how far shapes overlap)
//   - Contact normal (direction to separate shapes)
//
// The algorithm expands a polygon (starting from GJK's final simplex) toward
// the boundary of the Minkowski difference, finding the edge closest to the
// origin, which gives the Minimum Translation Vector (MTV) to separate the
// shapes. The contact points are then found by clipping the features of both
// shapes along that normal (see ClippingSolver).
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"fmt"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations limits the expansion of the simplex. Polygons
	// converge in a handful of iterations, curved shapes need more.
	DefaultMaxIterations = 100

	// DefaultDistanceEpsilon defines when EPA has converged: the new support
	// point improves the closest edge distance by less than this threshold.
	DefaultDistanceEpsilon = gjk.DefaultDistanceEpsilon
)

// ErrNotConverged is returned along with the best estimate when the
// iteration cap is reached.
var ErrNotConverged = errors.New("epa: not converged")

// Penetration is the normal and depth found by EPA. The normal points from A toward B.
type Penetration = gjk.Penetration

// Solver runs EPA with its own tolerances.
type Solver struct {
	MaxIterations   int
	DistanceEpsilon float64
}

// NewSolver creates a solver with the default tolerances
func NewSolver() *Solver {
	return &Solver{
		MaxIterations:   DefaultMaxIterations,
		DistanceEpsilon: DefaultDistanceEpsilon,
	}
}

// Penetration computes the penetration of the two shapes of ms, starting
// from the simplex left by gjk.Detector.Detect. When the iteration cap is
// reached the best estimate is still returned. Returns false when the simplex
// is degenerate, which means the shapes only touch.
func (s *Solver) Penetration(ms gjk.MinkowskiSum, simplex *gjk.Simplex) (Penetration, bool) {
	penetration, err := s.Solve(ms, simplex)
	if err != nil && !errors.Is(err, ErrNotConverged) {
		return Penetration{}, false
	}
	return penetration, true
}

// Solve is Penetration with the failure reason: ErrDegenerateSimplex when no
// penetration exists, ErrNotConverged when the returned penetration is only
// the best estimate.
//
// Algorithm overview:
//  1. Complete a segment simplex into a triangle
//  2. Build the expanding simplex from the triangle
//  3. Find the edge closest to the origin
//  4. Get the support point along the edge normal
//  5. If the support point is not beyond the edge -> converged
//  6. Otherwise, split the edge at the support point and repeat from 3
func (s *Solver) Solve(ms gjk.MinkowskiSum, simplex *gjk.Simplex) (Penetration, error) {
	var points [3]gjk.MinkowskiPoint
	count := copy(points[:], simplex.Slice())

	switch count {
	case 3:
	case 2:
		third, ok := s.completeSegment(ms, points[0], points[1])
		if !ok {
			return Penetration{}, fmt.Errorf("%w: shapes are touching", ErrDegenerateSimplex)
		}
		points[2] = third
		count = 3
	default:
		return Penetration{}, fmt.Errorf("%w: %d points", ErrDegenerateSimplex, count)
	}

	es := expandingSimplexPool.Get().(*ExpandingSimplex)
	defer expandingSimplexPool.Put(es)

	if err := es.Reset(points[:count]); err != nil {
		return Penetration{}, err
	}

	edge := es.ClosestEdge()
	depth := edge.Distance
	for i := 0; i < s.MaxIterations; i++ {
		edge = es.ClosestEdge()
		p := ms.Support(edge.Normal)
		depth = p.Point.Dot(edge.Normal)

		if depth-edge.Distance < s.DistanceEpsilon {
			return Penetration{Normal: edge.Normal, Depth: depth}, nil
		}
		es.Expand(p)
	}

	return Penetration{Normal: edge.Normal, Depth: depth},
		fmt.Errorf("%w after %d iterations", ErrNotConverged, s.MaxIterations)
}

// completeSegment finds a third point for a segment simplex going through
// the origin. The Minkowski difference must extend on both sides of the
// segment, otherwise the origin is on its boundary.
func (s *Solver) completeSegment(ms gjk.MinkowskiSum, a, b gjk.MinkowskiPoint) (gjk.MinkowskiPoint, bool) {
	ab := b.Point.Sub(a.Point)
	if actor.IsZero(ab) {
		return gjk.MinkowskiPoint{}, false
	}

	var best gjk.MinkowskiPoint
	var bestExtent float64
	for _, direction := range [2]mgl64.Vec2{actor.LeftPerp(ab), actor.RightPerp(ab)} {
		direction = actor.Normalized(direction)
		p := ms.Support(direction)
		extent := p.Point.Sub(a.Point).Dot(direction)
		if extent <= s.DistanceEpsilon {
			return gjk.MinkowskiPoint{}, false
		}
		if extent > bestExtent {
			best, bestExtent = p, extent
		}
	}
	return best, true
}
