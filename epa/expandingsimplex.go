package epa

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateSimplex is returned when the initial points do not span an area.
var ErrDegenerateSimplex = errors.New("epa: degenerate simplex")

// Small initial capacity for the edge heap, it grows with the expansions
const expandingSimplexInitialCapacity = 8

// Edge is an edge of the expanding simplex, with its outward unit normal and
// its distance to the origin.
type Edge struct {
	Point1   gjk.MinkowskiPoint
	Point2   gjk.MinkowskiPoint
	Normal   mgl64.Vec2
	Distance float64

	// insertion order, breaks distance ties
	seq int
}

// edgeHeap is a binary min-heap of edges ordered by distance to the origin.
type edgeHeap []Edge

func (h edgeHeap) Len() int { return len(h) }

func (h edgeHeap) Less(i, j int) bool {
	if h[i].Distance != h[j].Distance {
		return h[i].Distance < h[j].Distance
	}
	return h[i].seq < h[j].seq
}

func (h edgeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *edgeHeap) Push(x any) {
	*h = append(*h, x.(Edge))
}

func (h *edgeHeap) Pop() any {
	old := *h
	n := len(old)
	edge := old[n-1]
	*h = old[:n-1]
	return edge
}

// ExpandingSimplex is a convex polygon inside the Minkowski difference that
// encloses the origin. Its edges are kept in a heap so that the edge closest
// to the origin is always at hand.
type ExpandingSimplex struct {
	edges   edgeHeap
	winding int
	seq     int
}

// expandingSimplexPool recycles the edge buffers between EPA runs.
var expandingSimplexPool = sync.Pool{
	New: func() interface{} {
		return &ExpandingSimplex{
			edges: make(edgeHeap, 0, expandingSimplexInitialCapacity),
		}
	},
}

// NewExpandingSimplex builds the simplex from a convex polygon of at least
// three points, in either winding.
func NewExpandingSimplex(points []gjk.MinkowskiPoint) (*ExpandingSimplex, error) {
	s := &ExpandingSimplex{
		edges: make(edgeHeap, 0, max(len(points), expandingSimplexInitialCapacity)),
	}
	if err := s.Reset(points); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rebuilds the simplex from points, reusing its buffers.
func (s *ExpandingSimplex) Reset(points []gjk.MinkowskiPoint) error {
	s.edges = s.edges[:0]
	s.seq = 0
	s.winding = 0

	if len(points) < 3 {
		return fmt.Errorf("%w: %d points", ErrDegenerateSimplex, len(points))
	}

	s.winding = winding(points)
	if s.winding == 0 {
		return fmt.Errorf("%w: zero area", ErrDegenerateSimplex)
	}

	for i := range points {
		p1 := points[i]
		p2 := points[(i+1)%len(points)]
		if actor.IsZero(p2.Point.Sub(p1.Point)) {
			s.edges = s.edges[:0]
			return fmt.Errorf("%w: duplicate point %v", ErrDegenerateSimplex, p1.Point)
		}
		s.edges = append(s.edges, s.newEdge(p1, p2))
	}
	heap.Init(&s.edges)

	return nil
}

// winding returns 1 for counter-clockwise points, -1 for clockwise ones and 0
// when they do not enclose any area.
func winding(points []gjk.MinkowskiPoint) int {
	var area float64
	for i := range points {
		area += actor.Cross(points[i].Point, points[(i+1)%len(points)].Point)
	}
	switch {
	case math.Abs(area) <= actor.Epsilon:
		return 0
	case area > 0:
		return 1
	default:
		return -1
	}
}

func (s *ExpandingSimplex) newEdge(p1, p2 gjk.MinkowskiPoint) Edge {
	e := p2.Point.Sub(p1.Point)
	var normal mgl64.Vec2
	if s.winding > 0 {
		normal = actor.Normalized(actor.RightPerp(e))
	} else {
		normal = actor.Normalized(actor.LeftPerp(e))
	}

	edge := Edge{
		Point1:   p1,
		Point2:   p2,
		Normal:   normal,
		Distance: math.Abs(p1.Point.Dot(normal)),
		seq:      s.seq,
	}
	s.seq++
	return edge
}

// ClosestEdge returns the edge closest to the origin
func (s *ExpandingSimplex) ClosestEdge() Edge {
	return s.edges[0]
}

// Expand replaces the closest edge by the two edges joining its endpoints to
// point. A split edge of zero length is not kept.
func (s *ExpandingSimplex) Expand(point gjk.MinkowskiPoint) {
	edge := heap.Pop(&s.edges).(Edge)

	if !actor.IsZero(point.Point.Sub(edge.Point1.Point)) {
		heap.Push(&s.edges, s.newEdge(edge.Point1, point))
	}
	if !actor.IsZero(edge.Point2.Point.Sub(point.Point)) {
		heap.Push(&s.edges, s.newEdge(point, edge.Point2))
	}
}

// Size returns the number of edges
func (s *ExpandingSimplex) Size() int {
	return len(s.edges)
}

// Winding returns 1 for a counter-clockwise simplex and -1 for a clockwise one.
func (s *ExpandingSimplex) Winding() int {
	return s.winding
}
