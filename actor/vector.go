package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the threshold under which lengths, determinants and effective
// masses are treated as zero.
const Epsilon = 1e-12

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// CrossVS returns v × s, where s is a scalar along the z axis.
func CrossVS(v mgl64.Vec2, s float64) mgl64.Vec2 {
	return mgl64.Vec2{s * v[1], -s * v[0]}
}

// CrossSV returns s × v, where s is a scalar along the z axis.
// For an angular velocity w and an arm r this is the tangential velocity w × r.
func CrossSV(s float64, v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-s * v[1], s * v[0]}
}

// LeftPerp rotates v by +90°.
func LeftPerp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v[1], v[0]}
}

// RightPerp rotates v by -90°. For an edge of a counter-clockwise polygon it
// points outward.
func RightPerp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{v[1], -v[0]}
}

// Normalized returns the unit vector of v, or the zero vector when v is too
// short to be normalized.
func Normalized(v mgl64.Vec2) mgl64.Vec2 {
	n, _ := NormalizedLen(v)
	return n
}

// NormalizedLen returns the unit vector of v along with its length.
func NormalizedLen(v mgl64.Vec2) (mgl64.Vec2, float64) {
	l := v.Len()
	if l <= Epsilon {
		return mgl64.Vec2{}, 0
	}
	return v.Mul(1.0 / l), l
}

// TripleProduct returns (a × b) × c, which is b(a·c) - a(b·c).
func TripleProduct(a, b, c mgl64.Vec2) mgl64.Vec2 {
	ac := a.Dot(c)
	bc := b.Dot(c)
	return b.Mul(ac).Sub(a.Mul(bc))
}

// IsZero reports whether v is shorter than Epsilon.
func IsZero(v mgl64.Vec2) bool {
	return v.LenSqr() <= Epsilon*Epsilon
}

// NormalizeAngle wraps an angle into (-π, π].
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle <= -math.Pi {
		angle += 2 * math.Pi
	} else if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

// InvertMat2 inverts a 2x2 matrix. Singular or near singular matrices give the
// zero matrix so that the constraint using it contributes nothing.
func InvertMat2(m mgl64.Mat2) mgl64.Mat2 {
	det := m.Det()
	if math.Abs(det) <= Epsilon {
		return mgl64.Mat2{}
	}
	invDet := 1.0 / det
	return mgl64.Mat2{
		invDet * m[3], -invDet * m[1],
		-invDet * m[2], invDet * m[0],
	}
}

// ClosestPointOnSegment returns the point of the segment [a, b] nearest to p.
func ClosestPointOnSegment(p, a, b mgl64.Vec2) mgl64.Vec2 {
	ab := b.Sub(a)
	lenSqr := ab.LenSqr()
	if lenSqr <= Epsilon*Epsilon {
		return a
	}
	t := mgl64.Clamp(p.Sub(a).Dot(ab)/lenSqr, 0, 1)
	return a.Add(ab.Mul(t))
}
