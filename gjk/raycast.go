package gjk

import (
	"math"

	"github.com/akmonengine/lamina/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Raycast casts a ray against a convex shape.
//
// The ray is advanced along its direction: x = start + lambda*r. Each
// iteration takes a support point p in the search direction; when the shape
// lies entirely ahead of x along that direction, x jumps forward to the
// supporting line through p. A segment simplex of support points tracks the
// part of the shape closest to x and gives the next search direction. The
// loop ends once x lies on the shape within DistanceEpsilon.
//
// A maxLength <= 0 means the ray is unbounded. Returns false when the ray
// starts inside the shape, points away from it, or hits beyond maxLength.
func (d *Detector) Raycast(ray actor.Ray, maxLength float64, shape actor.Shape, transform actor.Transform) (actor.Raycast, bool) {
	if shape.Contains(ray.Start, transform) {
		return actor.Raycast{}, false
	}

	lengthCheck := maxLength > 0
	r := ray.Direction
	x := ray.Start
	var lambda float64
	var normal mgl64.Vec2

	// simplex of support points, count in [0, 2]
	var a, b mgl64.Vec2
	count := 0

	direction := transform.Apply(shape.Center()).Sub(x)
	distanceSqr := math.MaxFloat64
	for iterations := 0; distanceSqr > d.DistanceEpsilon; iterations++ {
		if iterations == d.MaxIterations {
			return actor.Raycast{}, false
		}

		p := shape.Support(direction, transform)
		w := x.Sub(p)

		if dw := direction.Dot(w); dw > 0 {
			dr := direction.Dot(r)
			if dr >= 0 {
				// the shape is behind the supporting line and the ray moves away
				return actor.Raycast{}, false
			}
			lambda -= dw / dr
			if lengthCheck && lambda > maxLength {
				return actor.Raycast{}, false
			}
			x = ray.PointAt(lambda)
			normal = direction
		}

		switch count {
		case 0:
			a = p
			count = 1
			direction = direction.Mul(-1)
		case 1:
			b = p
			count = 2
			ab := b.Sub(a)
			direction = actor.TripleProduct(ab, x.Sub(a), ab)
		default:
			q1 := actor.ClosestPointOnSegment(x, a, p)
			q2 := actor.ClosestPointOnSegment(x, p, b)
			d1 := q1.Sub(x).LenSqr()
			d2 := q2.Sub(x).LenSqr()
			if d1 < d2 {
				b = p
				distanceSqr = d1
			} else {
				a = p
				distanceSqr = d2
			}
			ab := b.Sub(a)
			direction = actor.TripleProduct(ab, x.Sub(a), ab)
		}
	}

	return actor.Raycast{
		Point:    x,
		Normal:   actor.Normalized(normal),
		Distance: lambda,
	}, true
}
