package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half line starting at Start along a unit Direction
type Ray struct {
	Start     mgl64.Vec2
	Direction mgl64.Vec2
}

// NewRay creates a ray, normalizing direction. The zero direction is rejected.
func NewRay(start, direction mgl64.Vec2) (Ray, error) {
	d := Normalized(direction)
	if IsZero(d) {
		return Ray{}, fmt.Errorf("%w: ray direction is the zero vector", ErrInvalidShape)
	}
	return Ray{Start: start, Direction: d}, nil
}

// NewRayAt creates a ray from an angle in radians
func NewRayAt(start mgl64.Vec2, angle float64) Ray {
	return Ray{Start: start, Direction: mgl64.Vec2{math.Cos(angle), math.Sin(angle)}}
}

// Angle returns the direction of the ray in radians
func (r Ray) Angle() float64 {
	return math.Atan2(r.Direction[1], r.Direction[0])
}

// PointAt returns Start + Direction*distance
func (r Ray) PointAt(distance float64) mgl64.Vec2 {
	return r.Start.Add(r.Direction.Mul(distance))
}

// Raycast is the result of a ray hitting a shape
type Raycast struct {
	Point    mgl64.Vec2
	Normal   mgl64.Vec2
	Distance float64
}
