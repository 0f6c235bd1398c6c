package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform places a shape in the world: a rotation stored as its cosine and
// sine, followed by a translation.
type Transform struct {
	Position mgl64.Vec2
	Cos      float64
	Sin      float64
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{Cos: 1}
}

// NewTransformAt creates a transform at the given position and angle in radians
func NewTransformAt(position mgl64.Vec2, angle float64) Transform {
	return Transform{Position: position, Cos: math.Cos(angle), Sin: math.Sin(angle)}
}

// Angle returns the rotation in (-π, π]
func (t Transform) Angle() float64 {
	return math.Atan2(t.Sin, t.Cos)
}

// Rotation returns the rotation part as a column-major matrix
func (t Transform) Rotation() mgl64.Mat2 {
	return mgl64.Mat2{t.Cos, t.Sin, -t.Sin, t.Cos}
}

// IsIdentity reports whether the transform leaves points unchanged
func (t Transform) IsIdentity() bool {
	return t.Position == (mgl64.Vec2{}) && t.Cos == 1 && t.Sin == 0
}

// Apply maps a local point to world space
func (t Transform) Apply(p mgl64.Vec2) mgl64.Vec2 {
	return t.Rotate(p).Add(t.Position)
}

// ApplyInverse maps a world point to local space
func (t Transform) ApplyInverse(p mgl64.Vec2) mgl64.Vec2 {
	return t.InverseRotate(p.Sub(t.Position))
}

// Rotate applies only the rotation, for directions and arms
func (t Transform) Rotate(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{t.Cos*v[0] - t.Sin*v[1], t.Sin*v[0] + t.Cos*v[1]}
}

// InverseRotate applies the inverse rotation
func (t Transform) InverseRotate(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{t.Cos*v[0] + t.Sin*v[1], -t.Sin*v[0] + t.Cos*v[1]}
}

// Translate moves the transform by delta
func (t *Transform) Translate(delta mgl64.Vec2) {
	t.Position = t.Position.Add(delta)
}

// SetAngle replaces the rotation, keeping the translation
func (t *Transform) SetAngle(angle float64) {
	t.Cos = math.Cos(angle)
	t.Sin = math.Sin(angle)
}

// RotateAbout rotates the whole transform by angle around a world point
func (t *Transform) RotateAbout(angle float64, point mgl64.Vec2) {
	c := math.Cos(angle)
	s := math.Sin(angle)

	cos := c*t.Cos - s*t.Sin
	sin := s*t.Cos + c*t.Sin
	// renormalize to keep the pair on the unit circle after many small rotations
	l := math.Hypot(cos, sin)
	t.Cos, t.Sin = cos/l, sin/l

	d := t.Position.Sub(point)
	t.Position = mgl64.Vec2{c*d[0] - s*d[1], s*d[0] + c*d[1]}.Add(point)
}
