package actor

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// compareMinXY orders points by x, then by y
func compareMinXY(p, q mgl64.Vec2) int {
	if c := cmp.Compare(p.X(), q.X()); c != 0 {
		return c
	}
	return cmp.Compare(p.Y(), q.Y())
}

// ConvexHull returns the convex hull of the points, counter-clockwise,
// starting from the point with the smallest x (then y). Duplicated and
// collinear points are dropped. The input is left untouched.
//
// Algorithm (monotone chain):
//  1. Sort the points by x then y
//  2. Build the lower chain left to right, dropping right turns
//  3. Build the upper chain right to left the same way
//  4. Join both chains, their end points being shared
func ConvexHull(points ...mgl64.Vec2) ([]mgl64.Vec2, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to wrap", ErrNilArgument)
	}

	sorted := slices.Clone(points)
	slices.SortFunc(sorted, compareMinXY)
	sorted = slices.CompactFunc(sorted, func(p, q mgl64.Vec2) bool {
		return p.Sub(q).LenSqr() <= Epsilon*Epsilon
	})
	if len(sorted) < 3 {
		return nil, fmt.Errorf("%w: hull needs at least 3 distinct points, got %d", ErrInvalidShape, len(sorted))
	}

	hull := make([]mgl64.Vec2, 0, 2*len(sorted))
	turnsLeft := func(p mgl64.Vec2, minSize int) bool {
		n := len(hull)
		return n < minSize || Cross(hull[n-1].Sub(hull[n-2]), p.Sub(hull[n-1])) > Epsilon
	}

	for _, p := range sorted {
		for !turnsLeft(p, 2) {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for !turnsLeft(p, lower) {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// the last point closes the loop on the first one
	hull = hull[:len(hull)-1]

	if len(hull) < 3 {
		return nil, fmt.Errorf("%w: points are collinear", ErrInvalidShape)
	}
	return hull, nil
}

// NewHullPolygon creates the polygon wrapping the points
func NewHullPolygon(points ...mgl64.Vec2) (*Polygon, error) {
	hull, err := ConvexHull(points...)
	if err != nil {
		return nil, err
	}
	return NewPolygon(hull...)
}
