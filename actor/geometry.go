package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// clipTolerance keeps points lying on a clipping edge on the inside
const clipTolerance = 1e-9

// Winding returns twice the signed area of the closed polyline: positive for
// counter-clockwise points, negative for clockwise ones, zero when degenerate.
func Winding(points ...mgl64.Vec2) (float64, error) {
	if len(points) < 2 {
		return 0, fmt.Errorf("%w: winding needs at least 2 points, got %d", ErrNilArgument, len(points))
	}
	var area float64
	for i, p := range points {
		area += Cross(p, points[(i+1)%len(points)])
	}
	return area, nil
}

// ReverseWinding reverses the order of points in place
func ReverseWinding(points []mgl64.Vec2) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

// AverageCenter returns the mean of the points
func AverageCenter(points ...mgl64.Vec2) (mgl64.Vec2, error) {
	if len(points) == 0 {
		return mgl64.Vec2{}, fmt.Errorf("%w: no points to average", ErrNilArgument)
	}
	var sum mgl64.Vec2
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points))), nil
}

// AreaWeightedCenter returns the centroid of the polygon area. Degenerate
// polygons fall back to the average center.
func AreaWeightedCenter(points ...mgl64.Vec2) (mgl64.Vec2, error) {
	ref, err := AverageCenter(points...)
	if err != nil {
		return mgl64.Vec2{}, err
	}
	if len(points) < 3 {
		return ref, nil
	}

	var area float64
	var center mgl64.Vec2
	for i, p := range points {
		e1 := p.Sub(ref)
		e2 := points[(i+1)%len(points)].Sub(ref)
		a := 0.5 * Cross(e1, e2)
		area += a
		center = center.Add(e1.Add(e2).Mul(a / 3.0))
	}
	if math.Abs(area) <= Epsilon {
		return ref, nil
	}
	return center.Mul(1.0 / area).Add(ref), nil
}

// RotationRadius returns the largest distance from center to the vertices
func RotationRadius(center mgl64.Vec2, vertices ...mgl64.Vec2) float64 {
	var r2 float64
	for _, v := range vertices {
		r2 = math.Max(r2, v.Sub(center).LenSqr())
	}
	return math.Sqrt(r2)
}

// CounterClockwiseEdgeNormals returns the outward unit normals of a
// counter-clockwise polygon, one per edge vertices[i] -> vertices[i+1].
func CounterClockwiseEdgeNormals(vertices ...mgl64.Vec2) ([]mgl64.Vec2, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: no vertices", ErrNilArgument)
	}
	normals := make([]mgl64.Vec2, len(vertices))
	for i, v := range vertices {
		normals[i] = Normalized(RightPerp(vertices[(i+1)%len(vertices)].Sub(v)))
	}
	return normals, nil
}

// NewUnitCirclePolygon creates a regular polygon with count vertices on a
// circle of the given radius, the first one at angle theta.
func NewUnitCirclePolygon(count int, radius, theta float64) (*Polygon, error) {
	if count < 3 {
		return nil, fmt.Errorf("%w: regular polygon needs at least 3 vertices, got %d", ErrInvalidShape, count)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("%w: regular polygon radius must be positive, got %v", ErrInvalidShape, radius)
	}
	vertices := make([]mgl64.Vec2, count)
	step := 2 * math.Pi / float64(count)
	for i := range vertices {
		angle := theta + step*float64(i)
		vertices[i] = mgl64.Vec2{radius * math.Cos(angle), radius * math.Sin(angle)}
	}
	return NewPolygon(vertices...)
}

// Intersection returns the convex polygon shared by two polygons, in world
// space. It returns nil when they are disjoint or only touch along an edge or
// at a vertex. When the second polygon lies inside the first and no transform
// is applied, the second polygon itself is returned.
//
// Algorithm (Sutherland-Hodgman):
//  1. Place both polygons in world space
//  2. Clip the second polygon by the inner half plane of each edge of the first
//  3. Drop consecutive duplicates produced by vertices lying on edges
//  4. Reject results with fewer than three vertices or no area
func Intersection(p1 *Polygon, transform1 Transform, p2 *Polygon, transform2 Transform) *Polygon {
	if p1 == nil || p2 == nil {
		return nil
	}

	clipper := p1.WorldVertices(transform1)
	output := p2.WorldVertices(transform2)
	clipped := false

	for i, a := range clipper {
		if len(output) == 0 {
			break
		}
		b := clipper[(i+1)%len(clipper)]
		edge := b.Sub(a)

		input := output
		output = make([]mgl64.Vec2, 0, len(input)+1)
		for j, c := range input {
			d := input[(j+1)%len(input)]
			sc := Cross(edge, c.Sub(a))
			sd := Cross(edge, d.Sub(a))
			cIn := sc >= -clipTolerance
			dIn := sd >= -clipTolerance

			switch {
			case cIn && dIn:
				output = append(output, d)
			case cIn:
				output = append(output, c.Add(d.Sub(c).Mul(sc/(sc-sd))))
				clipped = true
			case dIn:
				output = append(output, c.Add(d.Sub(c).Mul(sc/(sc-sd))), d)
				clipped = true
			default:
				clipped = true
			}
		}
	}

	if !clipped {
		if transform2.IsIdentity() {
			return p2
		}
		result, err := NewPolygon(output...)
		if err != nil {
			return nil
		}
		return result
	}

	output = removeDuplicates(output)
	if len(output) < 3 {
		return nil
	}
	if area, _ := Winding(output...); area <= Epsilon {
		return nil
	}

	result, err := NewPolygon(output...)
	if err != nil {
		return nil
	}
	return result
}

// removeDuplicates drops consecutive points closer than clipTolerance, the
// last point being compared with the first one too.
func removeDuplicates(points []mgl64.Vec2) []mgl64.Vec2 {
	out := points[:0]
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Sub(p).LenSqr() <= clipTolerance*clipTolerance {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Sub(out[len(out)-1]).LenSqr() <= clipTolerance*clipTolerance {
		out = out[:len(out)-1]
	}
	return out
}
