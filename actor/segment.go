package actor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// segmentContainsTolerance is how far from the line a point may lie and still be on the segment
const segmentContainsTolerance = 1e-9

// Segment is a line segment between two local points
type Segment struct {
	vertices [2]mgl64.Vec2
	normal   mgl64.Vec2
	length   float64
}

// NewSegment creates a segment between two distinct points
func NewSegment(p1, p2 mgl64.Vec2) (*Segment, error) {
	edge, length := NormalizedLen(p2.Sub(p1))
	if length == 0 {
		return nil, fmt.Errorf("%w: segment points are coincident", ErrInvalidShape)
	}
	return &Segment{
		vertices: [2]mgl64.Vec2{p1, p2},
		normal:   RightPerp(edge),
		length:   length,
	}, nil
}

func (s *Segment) Center() mgl64.Vec2 { return s.vertices[0].Add(s.vertices[1]).Mul(0.5) }
func (s *Segment) Radius() float64    { return s.length * 0.5 }
func (s *Segment) Length() float64    { return s.length }

// Point1 and Point2 return the local end points
func (s *Segment) Point1() mgl64.Vec2 { return s.vertices[0] }
func (s *Segment) Point2() mgl64.Vec2 { return s.vertices[1] }

func (s *Segment) Support(direction mgl64.Vec2, transform Transform) mgl64.Vec2 {
	local := transform.InverseRotate(direction)
	if s.vertices[1].Dot(local) > s.vertices[0].Dot(local) {
		return transform.Apply(s.vertices[1])
	}
	return transform.Apply(s.vertices[0])
}

// Feature always returns the segment as an edge, oriented so that its outward
// normal faces direction.
func (s *Segment) Feature(direction mgl64.Vec2, transform Transform) Feature {
	local := transform.InverseRotate(direction)
	p1 := PointFeature{Point: transform.Apply(s.vertices[0]), Index: 0}
	p2 := PointFeature{Point: transform.Apply(s.vertices[1]), Index: 1}

	maximum := p1
	if s.vertices[1].Dot(local) > s.vertices[0].Dot(local) {
		maximum = p2
	}
	if s.normal.Dot(local) >= 0 {
		return NewEdgeFeature(p1, p2, maximum, 0)
	}
	return NewEdgeFeature(p2, p1, maximum, 1)
}

func (s *Segment) Project(axis mgl64.Vec2, transform Transform) Interval {
	return projectSupport(s, axis, transform)
}

func (s *Segment) ComputeAABB(transform Transform) AABB {
	return aabbOf(transform.Apply(s.vertices[0]), transform.Apply(s.vertices[1]))
}

// CreateMass treats the segment as a thin rod
func (s *Segment) CreateMass(density float64) Mass {
	mass := density * s.length
	return NewMass(s.Center(), mass, mass*s.length*s.length/12.0)
}

func (s *Segment) Contains(point mgl64.Vec2, transform Transform) bool {
	local := transform.ApplyInverse(point)
	closest := ClosestPointOnSegment(local, s.vertices[0], s.vertices[1])
	return closest.Sub(local).LenSqr() <= segmentContainsTolerance*segmentContainsTolerance
}

func (s *Segment) Axes(foci []mgl64.Vec2, transform Transform) []mgl64.Vec2 {
	axes := []mgl64.Vec2{
		transform.Rotate(s.normal),
		transform.Rotate(LeftPerp(s.normal)),
	}
	if len(foci) > 0 {
		axes = append(axes, fociAxes(foci, []mgl64.Vec2{
			transform.Apply(s.vertices[0]),
			transform.Apply(s.vertices[1]),
		})...)
	}
	return axes
}

// Foci returns nil: a segment has no curved part
func (s *Segment) Foci(Transform) []mgl64.Vec2 { return nil }
