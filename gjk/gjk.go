// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for 2D
// collision detection.
//
// GJK works on the Minkowski difference of two convex shapes: the shapes
// overlap exactly when the difference contains the origin. The algorithm
// builds a simplex (point, segment, triangle) of support points, moving it
// toward the origin until it either encloses it or cannot get any closer.
//
// Three queries are provided:
//   - Detect: boolean overlap, leaving the enclosing triangle for EPA
//   - Distance: closest points, normal and distance of separated shapes
//   - Raycast: first hit of a ray on a convex shape
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Ray Casting against General Convex Objects with Application to
//     Continuous Collision Detection" (2004)
package gjk

import (
	"math"
	"sync"

	"github.com/akmonengine/lamina/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations bounds every query loop
	DefaultMaxIterations = 30

	// DefaultDistanceEpsilon is the square root of the float64 machine epsilon.
	// Distance stops when a new support point improves the closest feature by
	// less than this; Raycast stops when the squared gap to the shape falls below it.
	DefaultDistanceEpsilon = 1.4901161193847656e-08
)

// MinkowskiPoint is a point of the Minkowski difference A - B together with
// the two support points it comes from.
type MinkowskiPoint struct {
	SupportA mgl64.Vec2
	SupportB mgl64.Vec2
	Point    mgl64.Vec2
}

// MinkowskiSum is the Minkowski difference of two placed convex shapes. The
// shapes and transforms are only read.
type MinkowskiSum struct {
	A   actor.Shape
	TxA actor.Transform
	B   actor.Shape
	TxB actor.Transform
}

// Support computes a support point in the Minkowski difference (A - B):
// furthestPoint(A, direction) - furthestPoint(B, -direction).
//
// This is the fundamental query that makes GJK work for any convex shape:
// shapes only need a support function, not their full geometry.
func (m MinkowskiSum) Support(direction mgl64.Vec2) MinkowskiPoint {
	a := m.A.Support(direction, m.TxA)
	b := m.B.Support(direction.Mul(-1), m.TxB)
	return MinkowskiPoint{SupportA: a, SupportB: b, Point: a.Sub(b)}
}

// Simplex represents a set of 1-3 points in the Minkowski difference.
// Size progression: 1 point -> 2 points (segment) -> 3 points (triangle).
// Points[Count-1] is always the most recent support point.
type Simplex struct {
	Points [3]MinkowskiPoint
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

// Slice returns the active points
func (s *Simplex) Slice() []MinkowskiPoint {
	return s.Points[:s.Count]
}

func (s *Simplex) push(p MinkowskiPoint) {
	s.Points[s.Count] = p
	s.Count++
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// Separation describes two disjoint shapes: Normal is the unit vector from A
// toward B, PointA and PointB the closest points on each shape.
type Separation struct {
	Normal   mgl64.Vec2
	Distance float64
	PointA   mgl64.Vec2
	PointB   mgl64.Vec2
}

// Penetration describes two overlapping shapes: moving B by Normal*Depth
// leaves the shapes touching. Normal points from A toward B.
type Penetration struct {
	Normal mgl64.Vec2
	Depth  float64
}

// Detector runs the GJK queries with its own tolerances.
type Detector struct {
	MaxIterations   int
	DistanceEpsilon float64
}

// NewDetector creates a detector with the default tolerances
func NewDetector() *Detector {
	return &Detector{
		MaxIterations:   DefaultMaxIterations,
		DistanceEpsilon: DefaultDistanceEpsilon,
	}
}

// initialDirection points from the center of A toward the center of B.
func initialDirection(ms MinkowskiSum) mgl64.Vec2 {
	return ms.TxB.Apply(ms.B.Center()).Sub(ms.TxA.Apply(ms.A.Center()))
}

// Detect performs collision detection between two placed convex shapes.
//
// Algorithm overview:
//  1. Start with the direction from A's center toward B's center
//  2. Get the first support point in the Minkowski difference
//  3. Search toward the origin from the closest simplex feature
//  4. If a new support point does not pass the origin -> no collision
//  5. If the triangle encloses the origin -> collision
//
// Touching shapes (origin on the boundary of the difference) are reported as
// separated. On overlap the simplex holds the enclosing triangle, which EPA
// uses as its initial polytope.
func (d *Detector) Detect(a actor.Shape, txA actor.Transform, b actor.Shape, txB actor.Transform, simplex *Simplex) bool {
	ms := MinkowskiSum{A: a, TxA: txA, B: b, TxB: txB}
	simplex.Reset()

	direction := initialDirection(ms)
	if actor.IsZero(direction) {
		direction = mgl64.Vec2{1, 0}
	}

	simplex.push(ms.Support(direction))
	if simplex.Points[0].Point.Dot(direction) <= 0 {
		return false
	}
	direction = simplex.Points[0].Point.Mul(-1)

	for i := 0; i < d.MaxIterations; i++ {
		p := ms.Support(direction)

		// The new point does not pass the origin in the search direction:
		// the origin cannot be reached.
		if p.Point.Dot(direction) <= 0 {
			return false
		}

		simplex.push(p)
		if containsOrigin(simplex, &direction) {
			return true
		}
	}
	return false
}

// containsOrigin reduces the simplex to the feature closest to the origin and
// updates the search direction. Only a triangle can contain the origin.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec2) bool {
	switch simplex.Count {
	case 2:
		line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	}
	return false
}

// line sets the direction perpendicular to the segment, toward the origin.
// When the origin lies on the segment's line, any perpendicular will do.
func line(simplex *Simplex, direction *mgl64.Vec2) {
	a := simplex.Points[1].Point
	b := simplex.Points[0].Point
	ab := b.Sub(a)
	ao := a.Mul(-1)

	*direction = actor.TripleProduct(ab, ao, ab)
	if actor.IsZero(*direction) {
		*direction = actor.LeftPerp(ab)
	}
}

// triangle tests the Voronoi regions of the two edges adjacent to the newest
// point A (the region beyond BC was already excluded by the previous search).
//
// Collinear or duplicate points are filtered first: the oldest point is
// dropped and the segment case runs instead, so the region tests never work
// on a zero area triangle.
func triangle(simplex *Simplex, direction *mgl64.Vec2) bool {
	a := simplex.Points[2].Point
	b := simplex.Points[1].Point
	c := simplex.Points[0].Point

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	if math.Abs(actor.Cross(ab, ac)) <= actor.Epsilon {
		simplex.Points[0] = simplex.Points[1]
		simplex.Points[1] = simplex.Points[2]
		simplex.Count = 2
		line(simplex, direction)
		return false
	}

	// Region AC: drop B
	acPerp := actor.TripleProduct(ab, ac, ac)
	if acPerp.Dot(ao) >= 0 {
		simplex.Points[1] = simplex.Points[2]
		simplex.Count = 2
		*direction = acPerp
		return false
	}

	// Region AB: drop C
	abPerp := actor.TripleProduct(ac, ab, ab)
	if abPerp.Dot(ao) >= 0 {
		simplex.Points[0] = simplex.Points[1]
		simplex.Points[1] = simplex.Points[2]
		simplex.Count = 2
		*direction = abPerp
		return false
	}

	// The origin is inside the triangle
	return true
}
