package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// convexityTolerance absorbs the rounding of nearly collinear vertices
const convexityTolerance = 1e-9

// Polygon is a convex polygon with counter-clockwise vertices in local space.
// normals[i] is the outward unit normal of the edge vertices[i] -> vertices[i+1].
type Polygon struct {
	vertices []mgl64.Vec2
	normals  []mgl64.Vec2
	center   mgl64.Vec2
	radius   float64
}

// NewPolygon validates the vertices and creates the polygon. The vertices must
// be at least three, distinct, convex and wound counter-clockwise.
func NewPolygon(vertices ...mgl64.Vec2) (*Polygon, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: polygon vertices", ErrNilArgument)
	}
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidShape, len(vertices))
	}

	n := len(vertices)
	var sign float64
	for i := range n {
		p0 := vertices[i]
		p1 := vertices[(i+1)%n]
		p2 := vertices[(i+2)%n]

		if p1.Sub(p0).LenSqr() <= Epsilon*Epsilon {
			return nil, fmt.Errorf("%w: polygon vertices %d and %d are coincident", ErrInvalidShape, i, (i+1)%n)
		}

		c := Cross(p1.Sub(p0), p2.Sub(p1))
		if c < -convexityTolerance {
			return nil, fmt.Errorf("%w: polygon must be convex and counter-clockwise (vertex %d)", ErrInvalidShape, (i+1)%n)
		}
		sign += c
	}
	if sign <= 0 {
		return nil, fmt.Errorf("%w: polygon has no area", ErrInvalidShape)
	}

	verts := make([]mgl64.Vec2, n)
	copy(verts, vertices)
	normals, _ := CounterClockwiseEdgeNormals(verts...)
	center, _ := AreaWeightedCenter(verts...)

	return &Polygon{
		vertices: verts,
		normals:  normals,
		center:   center,
		radius:   RotationRadius(center, verts...),
	}, nil
}

// Vertices returns the local vertices. The slice must not be modified.
func (p *Polygon) Vertices() []mgl64.Vec2 { return p.vertices }

// Normals returns the local edge normals. The slice must not be modified.
func (p *Polygon) Normals() []mgl64.Vec2 { return p.normals }

func (p *Polygon) Center() mgl64.Vec2 { return p.center }
func (p *Polygon) Radius() float64    { return p.radius }

// WorldVertices returns a copy of the vertices placed by transform
func (p *Polygon) WorldVertices(transform Transform) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = transform.Apply(v)
	}
	return out
}

// farthestVertex returns the index of the first vertex with the maximum
// projection on a local direction.
func (p *Polygon) farthestVertex(localDirection mgl64.Vec2) int {
	index := 0
	best := p.vertices[0].Dot(localDirection)
	for i := 1; i < len(p.vertices); i++ {
		if d := p.vertices[i].Dot(localDirection); d > best {
			best, index = d, i
		}
	}
	return index
}

func (p *Polygon) Support(direction mgl64.Vec2, transform Transform) mgl64.Vec2 {
	local := transform.InverseRotate(direction)
	return transform.Apply(p.vertices[p.farthestVertex(local)])
}

// Feature returns the edge adjacent to the farthest vertex whose normal is the
// most aligned with direction.
func (p *Polygon) Feature(direction mgl64.Vec2, transform Transform) Feature {
	local := transform.InverseRotate(direction)
	n := len(p.vertices)

	i := p.farthestVertex(local)
	prev := (i + n - 1) % n
	next := (i + 1) % n

	maximum := PointFeature{Point: transform.Apply(p.vertices[i]), Index: i}
	if p.normals[i].Dot(local) >= p.normals[prev].Dot(local) {
		return NewEdgeFeature(maximum, PointFeature{Point: transform.Apply(p.vertices[next]), Index: next}, maximum, i)
	}
	return NewEdgeFeature(PointFeature{Point: transform.Apply(p.vertices[prev]), Index: prev}, maximum, maximum, prev)
}

func (p *Polygon) Project(axis mgl64.Vec2, transform Transform) Interval {
	axis = Normalized(axis)
	v := transform.Apply(p.vertices[0]).Dot(axis)
	interval := Interval{Min: v, Max: v}
	for _, vertex := range p.vertices[1:] {
		v = transform.Apply(vertex).Dot(axis)
		if v < interval.Min {
			interval.Min = v
		} else if v > interval.Max {
			interval.Max = v
		}
	}
	return interval
}

func (p *Polygon) ComputeAABB(transform Transform) AABB {
	return aabbOf(p.WorldVertices(transform)...)
}

// CreateMass integrates the polygon as a fan of triangles around the vertex average
func (p *Polygon) CreateMass(density float64) Mass {
	ref, _ := AverageCenter(p.vertices...)
	n := len(p.vertices)

	var area, inertia float64
	var center mgl64.Vec2
	for i := range n {
		e1 := p.vertices[i].Sub(ref)
		e2 := p.vertices[(i+1)%n].Sub(ref)
		d := Cross(e1, e2)
		triangleArea := 0.5 * d

		area += triangleArea
		center = center.Add(e1.Add(e2).Mul(triangleArea / 3.0))
		inertia += d / 12.0 * (e1.Dot(e1) + e1.Dot(e2) + e2.Dot(e2))
	}
	if area <= Epsilon {
		return InfiniteMass(ref)
	}
	center = center.Mul(1.0 / area)

	mass := density * area
	inertia = density*inertia - mass*center.LenSqr()
	return NewMass(center.Add(ref), mass, inertia)
}

func (p *Polygon) Contains(point mgl64.Vec2, transform Transform) bool {
	local := transform.ApplyInverse(point)
	n := len(p.vertices)
	for i := range n {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		if Cross(b.Sub(a), local.Sub(a)) < 0 {
			return false
		}
	}
	return true
}

func (p *Polygon) Axes(foci []mgl64.Vec2, transform Transform) []mgl64.Vec2 {
	axes := make([]mgl64.Vec2, 0, len(p.normals)+len(foci))
	for _, n := range p.normals {
		axes = append(axes, transform.Rotate(n))
	}
	if len(foci) > 0 {
		axes = append(axes, fociAxes(foci, p.WorldVertices(transform))...)
	}
	return axes
}

// Foci returns nil: a polygon has no curved part
func (p *Polygon) Foci(Transform) []mgl64.Vec2 { return nil }

// Rectangle is an axis aligned box in local space, centered on the origin.
type Rectangle struct {
	*Polygon
	width  float64
	height float64
}

// NewRectangle creates a width x height rectangle centered on the origin
func NewRectangle(width, height float64) (*Rectangle, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: rectangle must have a positive size, got %vx%v", ErrInvalidShape, width, height)
	}
	w2, h2 := width*0.5, height*0.5
	polygon, err := NewPolygon(
		mgl64.Vec2{-w2, -h2},
		mgl64.Vec2{w2, -h2},
		mgl64.Vec2{w2, h2},
		mgl64.Vec2{-w2, h2},
	)
	if err != nil {
		return nil, err
	}
	return &Rectangle{Polygon: polygon, width: width, height: height}, nil
}

func (r *Rectangle) Width() float64  { return r.width }
func (r *Rectangle) Height() float64 { return r.height }

// Project uses the half extents instead of walking the vertices
func (r *Rectangle) Project(axis mgl64.Vec2, transform Transform) Interval {
	axis = Normalized(axis)
	c := transform.Apply(r.center).Dot(axis)
	ux := transform.Rotate(mgl64.Vec2{1, 0})
	uy := transform.Rotate(mgl64.Vec2{0, 1})
	extent := r.width*0.5*math.Abs(ux.Dot(axis)) + r.height*0.5*math.Abs(uy.Dot(axis))
	return Interval{Min: c - extent, Max: c + extent}
}

func (r *Rectangle) CreateMass(density float64) Mass {
	mass := density * r.width * r.height
	return NewMass(r.center, mass, mass*(r.width*r.width+r.height*r.height)/12.0)
}

// NewTriangle creates a triangle, reordering the points counter-clockwise if needed
func NewTriangle(p1, p2, p3 mgl64.Vec2) (*Polygon, error) {
	if Cross(p2.Sub(p1), p3.Sub(p1)) < 0 {
		p2, p3 = p3, p2
	}
	return NewPolygon(p1, p2, p3)
}
