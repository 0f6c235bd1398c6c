package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Circle is a disk centered on the local origin
type Circle struct {
	radius float64
}

// NewCircle creates a circle with a strictly positive radius
func NewCircle(radius float64) (*Circle, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: circle radius must be positive, got %v", ErrInvalidShape, radius)
	}
	return &Circle{radius: radius}, nil
}

func (c *Circle) Center() mgl64.Vec2 { return mgl64.Vec2{} }
func (c *Circle) Radius() float64    { return c.radius }

func (c *Circle) Support(direction mgl64.Vec2, transform Transform) mgl64.Vec2 {
	return transform.Position.Add(Normalized(direction).Mul(c.radius))
}

func (c *Circle) Feature(direction mgl64.Vec2, transform Transform) Feature {
	return NewPointFeature(c.Support(direction, transform), 0)
}

func (c *Circle) Project(axis mgl64.Vec2, transform Transform) Interval {
	p := Normalized(axis).Dot(transform.Position)
	return Interval{Min: p - c.radius, Max: p + c.radius}
}

func (c *Circle) ComputeAABB(transform Transform) AABB {
	r := mgl64.Vec2{c.radius, c.radius}
	return AABB{Min: transform.Position.Sub(r), Max: transform.Position.Add(r)}
}

func (c *Circle) CreateMass(density float64) Mass {
	mass := density * math.Pi * c.radius * c.radius
	return NewMass(mgl64.Vec2{}, mass, mass*c.radius*c.radius*0.5)
}

func (c *Circle) Contains(point mgl64.Vec2, transform Transform) bool {
	return point.Sub(transform.Position).LenSqr() <= c.radius*c.radius
}

func (c *Circle) Axes(foci []mgl64.Vec2, transform Transform) []mgl64.Vec2 {
	return fociAxes(foci, []mgl64.Vec2{transform.Position})
}

func (c *Circle) Foci(transform Transform) []mgl64.Vec2 {
	return []mgl64.Vec2{transform.Position}
}
