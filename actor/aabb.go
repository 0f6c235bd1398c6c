package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec2) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y()
}

// Overlaps checks if two AABBs overlap, touching boxes included
func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y()
}

// Union returns the smallest box containing both
func (a AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec2{math.Min(a.Min.X(), other.Min.X()), math.Min(a.Min.Y(), other.Min.Y())},
		Max: mgl64.Vec2{math.Max(a.Max.X(), other.Max.X()), math.Max(a.Max.Y(), other.Max.Y())},
	}
}

// Expand grows the box by margin on every side
func (a AABB) Expand(margin float64) AABB {
	m := mgl64.Vec2{margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

func (a AABB) Width() float64  { return a.Max.X() - a.Min.X() }
func (a AABB) Height() float64 { return a.Max.Y() - a.Min.Y() }

// aabbOf computes the bounds of a set of points.
func aabbOf(points ...mgl64.Vec2) AABB {
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min[0] = math.Min(box.Min[0], p[0])
		box.Min[1] = math.Min(box.Min[1], p[1])
		box.Max[0] = math.Max(box.Max[0], p[0])
		box.Max[1] = math.Max(box.Max[1], p[1])
	}
	return box
}

// AxisAlignedBounds is a rectangular region of the world, centered on its
// translation. Bodies whose AABB leaves it are reported as out of bounds.
type AxisAlignedBounds struct {
	bounds      AABB
	translation mgl64.Vec2
}

// NewAxisAlignedBounds creates world bounds of the given size centered on the origin
func NewAxisAlignedBounds(width, height float64) (*AxisAlignedBounds, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: bounds must have a positive size, got %vx%v", ErrInvalidShape, width, height)
	}
	w2, h2 := width*0.5, height*0.5
	return &AxisAlignedBounds{bounds: AABB{Min: mgl64.Vec2{-w2, -h2}, Max: mgl64.Vec2{w2, h2}}}, nil
}

// Translate shifts the bounds
func (b *AxisAlignedBounds) Translate(delta mgl64.Vec2) {
	b.translation = b.translation.Add(delta)
}

// Translation returns the current center
func (b *AxisAlignedBounds) Translation() mgl64.Vec2 {
	return b.translation
}

// Bounds returns the region in world space
func (b *AxisAlignedBounds) Bounds() AABB {
	return AABB{Min: b.bounds.Min.Add(b.translation), Max: b.bounds.Max.Add(b.translation)}
}

// IsOutside reports whether the box no longer overlaps the bounds at all
func (b *AxisAlignedBounds) IsOutside(box AABB) bool {
	return !b.Bounds().Overlaps(box)
}
