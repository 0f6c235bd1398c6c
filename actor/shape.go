package actor

import "github.com/go-gl/mathgl/mgl64"

// Shape is the interface that all convex collision shapes implement.
// Shapes are immutable and described in local space; every query takes the
// transform placing the shape in the world and never modifies the shape itself,
// so one shape can be shared by several bodies.
type Shape interface {
	// Center returns the center of mass in local space
	Center() mgl64.Vec2
	// Radius returns the maximum distance from the center to any point of the shape
	Radius() float64
	// Support returns the world point of the shape farthest along direction
	Support(direction mgl64.Vec2, transform Transform) mgl64.Vec2
	// Feature returns the world point or edge farthest along direction, used for clipping
	Feature(direction mgl64.Vec2, transform Transform) Feature
	// Project returns the extent of the shape along a unit axis
	Project(axis mgl64.Vec2, transform Transform) Interval
	ComputeAABB(transform Transform) AABB
	CreateMass(density float64) Mass
	Contains(point mgl64.Vec2, transform Transform) bool
}

// SATShape is implemented by shapes with a finite set of separating axes.
type SATShape interface {
	Shape
	// Axes returns the world axes to test, including one per focus of the other shape
	Axes(foci []mgl64.Vec2, transform Transform) []mgl64.Vec2
	// Foci returns the world centers of the curved parts of the shape
	Foci(transform Transform) []mgl64.Vec2
}

// FeatureKind tells a vertex feature from an edge feature
type FeatureKind int

const (
	FeaturePoint FeatureKind = iota
	FeatureEdge
)

// PointFeature is a world point together with the index of the vertex it comes from
type PointFeature struct {
	Point mgl64.Vec2
	Index int
}

// Feature is the part of a shape that is farthest in a direction. For an
// edge, Vertex1 -> Vertex2 follows the counter-clockwise winding of the shape
// and Max is the endpoint farthest in the queried direction. For a point,
// Vertex1 and Max both hold the point.
type Feature struct {
	Kind    FeatureKind
	Vertex1 PointFeature
	Vertex2 PointFeature
	Max     PointFeature
	Index   int
}

// NewPointFeature creates a vertex feature
func NewPointFeature(point mgl64.Vec2, index int) Feature {
	pf := PointFeature{Point: point, Index: index}
	return Feature{Kind: FeaturePoint, Vertex1: pf, Vertex2: pf, Max: pf, Index: index}
}

// NewEdgeFeature creates an edge feature
func NewEdgeFeature(vertex1, vertex2, max PointFeature, index int) Feature {
	return Feature{Kind: FeatureEdge, Vertex1: vertex1, Vertex2: vertex2, Max: max, Index: index}
}

// Edge returns Vertex2 - Vertex1
func (f Feature) Edge() mgl64.Vec2 {
	return f.Vertex2.Point.Sub(f.Vertex1.Point)
}

// projectSupport projects any shape on an axis through its support function.
func projectSupport(s Shape, axis mgl64.Vec2, transform Transform) Interval {
	axis = Normalized(axis)
	return Interval{
		Min: s.Support(axis.Mul(-1), transform).Dot(axis),
		Max: s.Support(axis, transform).Dot(axis),
	}
}

// aabbSupport bounds a shape with its support points along the world axes.
func aabbSupport(s Shape, transform Transform) AABB {
	return AABB{
		Min: mgl64.Vec2{s.Support(mgl64.Vec2{-1, 0}, transform).X(), s.Support(mgl64.Vec2{0, -1}, transform).Y()},
		Max: mgl64.Vec2{s.Support(mgl64.Vec2{1, 0}, transform).X(), s.Support(mgl64.Vec2{0, 1}, transform).Y()},
	}
}

// fociAxes returns, for each focus, the axis from the nearest of points to it.
func fociAxes(foci []mgl64.Vec2, points []mgl64.Vec2) []mgl64.Vec2 {
	axes := make([]mgl64.Vec2, 0, len(foci))
	for _, f := range foci {
		closest := points[0]
		best := f.Sub(closest).LenSqr()
		for _, p := range points[1:] {
			if d := f.Sub(p).LenSqr(); d < best {
				best, closest = d, p
			}
		}
		if axis := Normalized(f.Sub(closest)); !IsZero(axis) {
			axes = append(axes, axis)
		}
	}
	return axes
}
