package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ellipse is centered on the origin with its width along the local x axis
type Ellipse struct {
	a float64 // semi axis along x
	b float64 // semi axis along y
}

// NewEllipse creates an ellipse fitting in a width x height box
func NewEllipse(width, height float64) (*Ellipse, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: ellipse must have a positive size, got %vx%v", ErrInvalidShape, width, height)
	}
	return &Ellipse{a: width * 0.5, b: height * 0.5}, nil
}

func (e *Ellipse) Center() mgl64.Vec2 { return mgl64.Vec2{} }
func (e *Ellipse) Radius() float64    { return math.Max(e.a, e.b) }

// ellipseSupport is the point of the ellipse x²/a² + y²/b² = 1 farthest along local.
func ellipseSupport(a, b float64, local mgl64.Vec2) mgl64.Vec2 {
	x := a * a * local[0]
	y := b * b * local[1]
	den := math.Sqrt(x*local[0] + y*local[1])
	if den <= Epsilon {
		return mgl64.Vec2{}
	}
	return mgl64.Vec2{x / den, y / den}
}

func (e *Ellipse) Support(direction mgl64.Vec2, transform Transform) mgl64.Vec2 {
	return transform.Apply(ellipseSupport(e.a, e.b, transform.InverseRotate(direction)))
}

func (e *Ellipse) Feature(direction mgl64.Vec2, transform Transform) Feature {
	return NewPointFeature(e.Support(direction, transform), 0)
}

func (e *Ellipse) Project(axis mgl64.Vec2, transform Transform) Interval {
	return projectSupport(e, axis, transform)
}

func (e *Ellipse) ComputeAABB(transform Transform) AABB {
	c, s := transform.Cos, transform.Sin
	half := mgl64.Vec2{
		math.Sqrt(e.a*e.a*c*c + e.b*e.b*s*s),
		math.Sqrt(e.a*e.a*s*s + e.b*e.b*c*c),
	}
	return AABB{Min: transform.Position.Sub(half), Max: transform.Position.Add(half)}
}

func (e *Ellipse) CreateMass(density float64) Mass {
	mass := density * math.Pi * e.a * e.b
	return NewMass(mgl64.Vec2{}, mass, mass*(e.a*e.a+e.b*e.b)*0.25)
}

func (e *Ellipse) Contains(point mgl64.Vec2, transform Transform) bool {
	local := transform.ApplyInverse(point)
	x := local[0] / e.a
	y := local[1] / e.b
	return x*x+y*y <= 1
}

// HalfEllipse is the upper half of an ellipse: the flat side lies on the local
// x axis from (-width/2, 0) to (width/2, 0) and the curve rises to (0, height).
type HalfEllipse struct {
	a      float64
	b      float64
	center mgl64.Vec2
	radius float64
}

// NewHalfEllipse creates a half ellipse of the given width and height
func NewHalfEllipse(width, height float64) (*HalfEllipse, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: half ellipse must have a positive size, got %vx%v", ErrInvalidShape, width, height)
	}
	h := &HalfEllipse{a: width * 0.5, b: height}
	h.center = mgl64.Vec2{0, 4 * h.b / (3 * math.Pi)}

	// the farthest point from the centroid is on the arc or at a corner
	const samples = 64
	for i := 0; i <= samples; i++ {
		t := math.Pi * float64(i) / samples
		p := mgl64.Vec2{h.a * math.Cos(t), h.b * math.Sin(t)}
		h.radius = math.Max(h.radius, p.Sub(h.center).Len())
	}
	return h, nil
}

func (h *HalfEllipse) Center() mgl64.Vec2 { return h.center }
func (h *HalfEllipse) Radius() float64    { return h.radius }

func (h *HalfEllipse) localSupport(local mgl64.Vec2) (mgl64.Vec2, int) {
	if local[1] > 0 {
		return ellipseSupport(h.a, h.b, local), 2
	}
	if local[0] > 0 {
		return mgl64.Vec2{h.a, 0}, 1
	}
	return mgl64.Vec2{-h.a, 0}, 0
}

func (h *HalfEllipse) Support(direction mgl64.Vec2, transform Transform) mgl64.Vec2 {
	p, _ := h.localSupport(transform.InverseRotate(direction))
	return transform.Apply(p)
}

// Feature returns the flat side when direction points mostly below it
func (h *HalfEllipse) Feature(direction mgl64.Vec2, transform Transform) Feature {
	local := transform.InverseRotate(direction)
	if local[1] < 0 && -local[1] > math.Abs(local[0]) {
		v1 := PointFeature{Point: transform.Apply(mgl64.Vec2{-h.a, 0}), Index: 0}
		v2 := PointFeature{Point: transform.Apply(mgl64.Vec2{h.a, 0}), Index: 1}
		return NewEdgeFeature(v1, v2, farthestOf(v1, v2, direction), 0)
	}
	p, index := h.localSupport(local)
	return NewPointFeature(transform.Apply(p), index)
}

func (h *HalfEllipse) Project(axis mgl64.Vec2, transform Transform) Interval {
	return projectSupport(h, axis, transform)
}

func (h *HalfEllipse) ComputeAABB(transform Transform) AABB {
	return aabbSupport(h, transform)
}

func (h *HalfEllipse) CreateMass(density float64) Mass {
	mass := density * math.Pi * h.a * h.b * 0.5
	// the half ellipse has the same inertia per unit mass about the flat side center as the full one
	inertia := mass*(h.a*h.a+h.b*h.b)*0.25 - mass*h.center.LenSqr()
	return NewMass(h.center, mass, inertia)
}

func (h *HalfEllipse) Contains(point mgl64.Vec2, transform Transform) bool {
	local := transform.ApplyInverse(point)
	if local[1] < 0 {
		return false
	}
	x := local[0] / h.a
	y := local[1] / h.b
	return x*x+y*y <= 1
}
