package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// capsuleEdgeFeatureTolerance is the largest |axis·direction| for which the
// flat side of a capsule is reported as an edge feature.
const capsuleEdgeFeatureTolerance = 0.02

// Capsule is a rectangle with two half circle caps, centered on the origin and
// elongated along its local x axis (or y when taller than wide).
type Capsule struct {
	width     float64
	height    float64
	capRadius float64
	axis      mgl64.Vec2
	foci      [2]mgl64.Vec2
}

// NewCapsule creates a capsule fitting in a width x height box. A square box
// is rejected, a circle must be used instead.
func NewCapsule(width, height float64) (*Capsule, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: capsule must have a positive size, got %vx%v", ErrInvalidShape, width, height)
	}
	if math.Abs(width-height) <= Epsilon {
		return nil, fmt.Errorf("%w: capsule width and height must differ, use a circle", ErrInvalidShape)
	}

	c := &Capsule{width: width, height: height, axis: mgl64.Vec2{1, 0}}
	major := width
	if height > width {
		c.axis = mgl64.Vec2{0, 1}
		major = height
		c.capRadius = width * 0.5
	} else {
		c.capRadius = height * 0.5
	}
	h := major*0.5 - c.capRadius
	c.foci = [2]mgl64.Vec2{c.axis.Mul(-h), c.axis.Mul(h)}
	return c, nil
}

func (c *Capsule) Center() mgl64.Vec2 { return mgl64.Vec2{} }
func (c *Capsule) Radius() float64    { return math.Max(c.width, c.height) * 0.5 }

// CapRadius returns the radius of the caps
func (c *Capsule) CapRadius() float64 { return c.capRadius }

func (c *Capsule) localSupport(local mgl64.Vec2) (mgl64.Vec2, int) {
	local = Normalized(local)
	index := 0
	if c.foci[1].Dot(local) > c.foci[0].Dot(local) {
		index = 1
	}
	return c.foci[index].Add(local.Mul(c.capRadius)), index
}

func (c *Capsule) Support(direction mgl64.Vec2, transform Transform) mgl64.Vec2 {
	p, _ := c.localSupport(transform.InverseRotate(direction))
	return transform.Apply(p)
}

func (c *Capsule) Feature(direction mgl64.Vec2, transform Transform) Feature {
	local := Normalized(transform.InverseRotate(direction))

	if math.Abs(c.axis.Dot(local)) > capsuleEdgeFeatureTolerance {
		p, index := c.localSupport(local)
		return NewPointFeature(transform.Apply(p), index)
	}

	side := RightPerp(c.axis).Mul(c.capRadius)
	if side.Dot(local) >= 0 {
		v1 := PointFeature{Point: transform.Apply(c.foci[0].Add(side)), Index: 0}
		v2 := PointFeature{Point: transform.Apply(c.foci[1].Add(side)), Index: 1}
		return NewEdgeFeature(v1, v2, farthestOf(v1, v2, direction), 0)
	}
	v1 := PointFeature{Point: transform.Apply(c.foci[1].Sub(side)), Index: 2}
	v2 := PointFeature{Point: transform.Apply(c.foci[0].Sub(side)), Index: 3}
	return NewEdgeFeature(v1, v2, farthestOf(v1, v2, direction), 1)
}

func (c *Capsule) Project(axis mgl64.Vec2, transform Transform) Interval {
	return projectSupport(c, axis, transform)
}

func (c *Capsule) ComputeAABB(transform Transform) AABB {
	r := mgl64.Vec2{c.capRadius, c.capRadius}
	box := aabbOf(transform.Apply(c.foci[0]), transform.Apply(c.foci[1]))
	return AABB{Min: box.Min.Sub(r), Max: box.Max.Add(r)}
}

// CreateMass sums the rectangular body and the two half disks
func (c *Capsule) CreateMass(density float64) Mass {
	r := c.capRadius
	length := c.foci[1].Sub(c.foci[0]).Len()

	rectMass := density * length * 2 * r
	rectInertia := rectMass * (length*length + 4*r*r) / 12.0

	halfMass := density * math.Pi * r * r * 0.5
	centroid := 4 * r / (3 * math.Pi)
	// each half disk about its own centroid, then moved out to its offset from the center
	halfInertia := halfMass*r*r*0.5 - halfMass*centroid*centroid
	offset := length*0.5 + centroid
	capsInertia := 2 * (halfInertia + halfMass*offset*offset)

	return NewMass(mgl64.Vec2{}, rectMass+2*halfMass, rectInertia+capsInertia)
}

func (c *Capsule) Contains(point mgl64.Vec2, transform Transform) bool {
	local := transform.ApplyInverse(point)
	closest := ClosestPointOnSegment(local, c.foci[0], c.foci[1])
	return closest.Sub(local).LenSqr() <= c.capRadius*c.capRadius
}

func (c *Capsule) Axes(foci []mgl64.Vec2, transform Transform) []mgl64.Vec2 {
	axis := transform.Rotate(c.axis)
	axes := []mgl64.Vec2{axis, LeftPerp(axis)}
	if len(foci) > 0 {
		axes = append(axes, fociAxes(foci, c.Foci(transform))...)
	}
	return axes
}

func (c *Capsule) Foci(transform Transform) []mgl64.Vec2 {
	return []mgl64.Vec2{transform.Apply(c.foci[0]), transform.Apply(c.foci[1])}
}

// farthestOf returns whichever point lies farther along direction, the first on ties.
func farthestOf(a, b PointFeature, direction mgl64.Vec2) PointFeature {
	if b.Point.Dot(direction) > a.Point.Dot(direction) {
		return b
	}
	return a
}
