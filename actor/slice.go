package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Slice is a circular sector with its apex on the local origin, opening
// symmetrically around the local x axis.
type Slice struct {
	sliceRadius float64
	alpha       float64 // half of the opening angle
	vertices    [3]mgl64.Vec2
	normals     [2]mgl64.Vec2 // outward normals of apex->vertex1 and vertex2->apex
	center      mgl64.Vec2
	radius      float64
}

// NewSlice creates a slice of the given radius and opening angle theta in (0, π]
func NewSlice(radius, theta float64) (*Slice, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: slice radius must be positive, got %v", ErrInvalidShape, radius)
	}
	if theta <= 0 || theta > math.Pi {
		return nil, fmt.Errorf("%w: slice angle must be in (0, π], got %v", ErrInvalidShape, theta)
	}

	alpha := theta * 0.5
	s := &Slice{sliceRadius: radius, alpha: alpha}
	s.vertices = [3]mgl64.Vec2{
		{},
		{radius * math.Cos(-alpha), radius * math.Sin(-alpha)},
		{radius * math.Cos(alpha), radius * math.Sin(alpha)},
	}
	s.normals = [2]mgl64.Vec2{
		Normalized(RightPerp(s.vertices[1])),
		Normalized(RightPerp(s.vertices[2].Mul(-1))),
	}
	s.center = mgl64.Vec2{2 * radius * math.Sin(alpha) / (3 * alpha), 0}
	s.radius = math.Max(s.center.Len(), math.Max(s.vertices[1].Sub(s.center).Len(), radius-s.center.X()))
	return s, nil
}

func (s *Slice) Center() mgl64.Vec2 { return s.center }
func (s *Slice) Radius() float64    { return s.radius }

// SliceRadius returns the radius of the arc
func (s *Slice) SliceRadius() float64 { return s.sliceRadius }

// Theta returns the opening angle
func (s *Slice) Theta() float64 { return s.alpha * 2 }

// localSupport returns the farthest local point and its index, 3 meaning the arc.
func (s *Slice) localSupport(local mgl64.Vec2) (mgl64.Vec2, int) {
	index := 0
	best := s.vertices[0].Dot(local)
	for i := 1; i < 3; i++ {
		if d := s.vertices[i].Dot(local); d > best {
			best, index = d, i
		}
	}

	n := Normalized(local)
	if !IsZero(n) && math.Abs(math.Atan2(n[1], n[0])) <= s.alpha {
		arc := n.Mul(s.sliceRadius)
		if arc.Dot(local) > best {
			return arc, 3
		}
	}
	return s.vertices[index], index
}

func (s *Slice) Support(direction mgl64.Vec2, transform Transform) mgl64.Vec2 {
	p, _ := s.localSupport(transform.InverseRotate(direction))
	return transform.Apply(p)
}

// Feature returns a point on the arc, or the straight side best facing direction
func (s *Slice) Feature(direction mgl64.Vec2, transform Transform) Feature {
	local := transform.InverseRotate(direction)
	p, index := s.localSupport(local)
	if index == 3 {
		return NewPointFeature(transform.Apply(p), index)
	}

	apex := PointFeature{Point: transform.Apply(s.vertices[0]), Index: 0}
	if s.normals[0].Dot(local) >= s.normals[1].Dot(local) {
		v := PointFeature{Point: transform.Apply(s.vertices[1]), Index: 1}
		return NewEdgeFeature(apex, v, farthestOf(apex, v, direction), 0)
	}
	v := PointFeature{Point: transform.Apply(s.vertices[2]), Index: 2}
	return NewEdgeFeature(v, apex, farthestOf(v, apex, direction), 2)
}

func (s *Slice) Project(axis mgl64.Vec2, transform Transform) Interval {
	return projectSupport(s, axis, transform)
}

func (s *Slice) ComputeAABB(transform Transform) AABB {
	return aabbSupport(s, transform)
}

// CreateMass uses the sector inertia about the apex, moved to the centroid
func (s *Slice) CreateMass(density float64) Mass {
	r := s.sliceRadius
	mass := density * s.alpha * r * r
	inertia := mass*r*r*0.5 - mass*s.center.LenSqr()
	return NewMass(s.center, mass, inertia)
}

func (s *Slice) Contains(point mgl64.Vec2, transform Transform) bool {
	local := transform.ApplyInverse(point)
	l := local.Len()
	if l > s.sliceRadius {
		return false
	}
	if l <= Epsilon {
		return true
	}
	return math.Abs(math.Atan2(local[1], local[0])) <= s.alpha
}
