package gjk

import (
	"github.com/akmonengine/lamina/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Distance computes the separation of two disjoint convex shapes.
//
// The simplex is kept as a segment [a, b] of the Minkowski difference. Each
// iteration takes the point of the segment closest to the origin, finds a new
// support point c toward the origin, and replaces a or b by c, keeping the
// half closest to the origin. The loop stops when c does not make progress
// beyond DistanceEpsilon, or after MaxIterations.
//
// Returns false when the shapes overlap or touch (including concentric
// shapes), in which case the separation is meaningless.
func (d *Detector) Distance(a actor.Shape, txA actor.Transform, b actor.Shape, txB actor.Transform) (Separation, bool) {
	ms := MinkowskiSum{A: a, TxA: txA, B: b, TxB: txB}

	direction := initialDirection(ms)
	if actor.IsZero(direction) {
		return Separation{}, false
	}

	p1 := ms.Support(direction)
	p2 := ms.Support(direction.Mul(-1))
	direction = actor.ClosestPointOnSegment(mgl64.Vec2{}, p2.Point, p1.Point)

	var c MinkowskiPoint
	for i := 0; i < d.MaxIterations; i++ {
		direction = direction.Mul(-1)
		if direction.LenSqr() <= actor.Epsilon {
			// the origin lies on the segment
			return Separation{}, false
		}

		c = ms.Support(direction)
		if triangleContainsOrigin(p1.Point, p2.Point, c.Point) {
			return Separation{}, false
		}

		// no progress toward the origin: [p1, p2] is the closest feature
		if c.Point.Dot(direction)-p1.Point.Dot(direction) < d.DistanceEpsilon {
			return separation(p1, p2, c, direction), true
		}

		q1 := actor.ClosestPointOnSegment(mgl64.Vec2{}, p1.Point, c.Point)
		q2 := actor.ClosestPointOnSegment(mgl64.Vec2{}, c.Point, p2.Point)
		if q1.LenSqr() < q2.LenSqr() {
			p2 = c
			direction = q1
		} else {
			p1 = c
			direction = q2
		}
	}

	return separation(p1, p2, c, direction.Mul(-1)), true
}

// separation builds the result from the final segment and search direction.
func separation(p1, p2, c MinkowskiPoint, direction mgl64.Vec2) Separation {
	normal := actor.Normalized(direction)
	pointA, pointB := closestPoints(p1, p2)
	return Separation{
		Normal:   normal,
		Distance: -c.Point.Dot(normal),
		PointA:   pointA,
		PointB:   pointB,
	}
}

// closestPoints recovers the closest points on A and B from the barycentric
// coordinates of the origin's projection on the segment [p1, p2].
func closestPoints(p1, p2 MinkowskiPoint) (mgl64.Vec2, mgl64.Vec2) {
	l := p2.Point.Sub(p1.Point)
	if actor.IsZero(l) {
		return p1.SupportA, p1.SupportB
	}

	lambda2 := -l.Dot(p1.Point) / l.Dot(l)
	switch {
	case lambda2 > 1:
		return p2.SupportA, p2.SupportB
	case lambda2 < 0:
		return p1.SupportA, p1.SupportB
	}

	lambda1 := 1 - lambda2
	pointA := p1.SupportA.Mul(lambda1).Add(p2.SupportA.Mul(lambda2))
	pointB := p1.SupportB.Mul(lambda1).Add(p2.SupportB.Mul(lambda2))
	return pointA, pointB
}

// triangleContainsOrigin reports whether the origin is strictly inside the
// triangle abc, whatever its winding.
func triangleContainsOrigin(a, b, c mgl64.Vec2) bool {
	sa := actor.Cross(a, b)
	sb := actor.Cross(b, c)
	sc := actor.Cross(c, a)
	return sa*sb > 0 && sa*sc > 0
}
