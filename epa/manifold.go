package epa

import (
	"math"

	"github.com/akmonengine/lamina/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ManifoldPointID identifies a contact point from one step to the next, so
// that the solver can warm start it with the impulses of the previous step.
// Two points generated by the same features compare equal.
type ManifoldPointID struct {
	ReferenceEdge  int
	IncidentEdge   int
	IncidentVertex int
	// Flipped is true when the reference edge belongs to shape B
	Flipped bool
}

// DistanceID is the id of the single point produced by a vertex feature.
var DistanceID = ManifoldPointID{ReferenceEdge: -1, IncidentEdge: -1, IncidentVertex: -1}

// ManifoldPoint is a contact point in world space with its penetration depth
type ManifoldPoint struct {
	ID    ManifoldPointID
	Point mgl64.Vec2
	Depth float64
}

// Manifold holds the 1 or 2 contact points of two overlapping shapes.
// Normal points from A toward B.
type Manifold struct {
	Normal mgl64.Vec2
	Points []ManifoldPoint
}

// ClippingSolver builds contact manifolds by clipping the incident edge
// against the side planes of the reference edge.
type ClippingSolver struct{}

// Manifold computes the contact points of two shapes overlapping along pen.
//
// Algorithm overview:
//  1. Find the feature of A farthest along the normal, and of B along -normal
//  2. If either is a vertex, it is the only contact point
//  3. The edge most perpendicular to the normal is the reference edge, the
//     other one the incident edge
//  4. Clip the incident edge against both ends of the reference edge
//  5. Keep the clipped points lying behind the reference edge
//
// Returns false when clipping leaves no point.
func (ClippingSolver) Manifold(pen Penetration, a actor.Shape, txA actor.Transform, b actor.Shape, txB actor.Transform) (Manifold, bool) {
	normal := pen.Normal

	featureA := a.Feature(normal, txA)
	if featureA.Kind == actor.FeaturePoint {
		return pointManifold(normal, featureA.Max.Point, pen.Depth), true
	}
	featureB := b.Feature(normal.Mul(-1), txB)
	if featureB.Kind == actor.FeaturePoint {
		return pointManifold(normal, featureB.Max.Point, pen.Depth), true
	}

	reference, incident := featureA, featureB
	flipped := false
	if math.Abs(actor.Normalized(featureA.Edge()).Dot(normal)) > math.Abs(actor.Normalized(featureB.Edge()).Dot(normal)) {
		reference, incident = featureB, featureA
		flipped = true
	}

	refEdge := actor.Normalized(reference.Edge())
	if actor.IsZero(refEdge) {
		return Manifold{}, false
	}

	o1 := refEdge.Dot(reference.Vertex1.Point)
	clip1, count := clip(incident.Vertex1, incident.Vertex2, refEdge, o1)
	if count < 2 {
		return Manifold{}, false
	}

	o2 := refEdge.Dot(reference.Vertex2.Point)
	clip2, count := clip(clip1[0], clip1[1], refEdge.Mul(-1), -o2)
	if count < 2 {
		return Manifold{}, false
	}

	// outward normal of the reference edge, edges being counter-clockwise
	frontNormal := actor.RightPerp(refEdge)
	frontOffset := frontNormal.Dot(reference.Max.Point)

	manifold := Manifold{
		Normal: normal,
		Points: make([]ManifoldPoint, 0, 2),
	}
	for _, vertex := range clip2[:count] {
		depth := frontOffset - frontNormal.Dot(vertex.Point)
		if depth < 0 {
			continue
		}
		manifold.Points = append(manifold.Points, ManifoldPoint{
			ID: ManifoldPointID{
				ReferenceEdge:  reference.Index,
				IncidentEdge:   incident.Index,
				IncidentVertex: vertex.Index,
				Flipped:        flipped,
			},
			Point: vertex.Point,
			Depth: depth,
		})
	}

	if len(manifold.Points) == 0 {
		return Manifold{}, false
	}
	return manifold, true
}

func pointManifold(normal, point mgl64.Vec2, depth float64) Manifold {
	return Manifold{
		Normal: normal,
		Points: []ManifoldPoint{{ID: DistanceID, Point: point, Depth: depth}},
	}
}

// clip keeps the part of the segment [v1, v2] where n·p >= o. A point created
// by the cut takes the index of the vertex it replaces.
func clip(v1, v2 actor.PointFeature, n mgl64.Vec2, o float64) ([2]actor.PointFeature, int) {
	var points [2]actor.PointFeature
	count := 0

	d1 := n.Dot(v1.Point) - o
	d2 := n.Dot(v2.Point) - o

	if d1 >= 0 {
		points[count] = v1
		count++
	}
	if d2 >= 0 {
		points[count] = v2
		count++
	}

	if d1*d2 < 0 {
		u := d1 / (d1 - d2)
		p := v1.Point.Add(v2.Point.Sub(v1.Point).Mul(u))
		index := v1.Index
		if d1 > 0 {
			index = v2.Index
		}
		points[count] = actor.PointFeature{Point: p, Index: index}
		count++
	}

	return points, count
}
