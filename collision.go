package lamina

import (
	"errors"
	"log/slog"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/epa"
	"github.com/akmonengine/lamina/gjk"
	"github.com/akmonengine/lamina/sat"
)

// Collision is a pair of overlapping bodies with their contact manifold
type Collision struct {
	BodyA    *actor.RigidBody
	BodyB    *actor.RigidBody
	Manifold epa.Manifold
}

// CollisionDetector runs the narrow phase on the pairs of the broad phase.
//
// The penetration of a pair is found by GJK followed by EPA. When UseSAT is
// set, pairs of shapes with a finite set of separating axes (polygons,
// circles, segments, capsules) use SAT instead. The manifold is then built
// by clipping the features of both shapes.
type CollisionDetector struct {
	GJK      *gjk.Detector
	EPA      *epa.Solver
	SAT      sat.Detector
	Clipping epa.ClippingSolver
	UseSAT   bool
}

// NewCollisionDetector creates a detector using GJK and EPA with their
// default tolerances.
func NewCollisionDetector() *CollisionDetector {
	return &CollisionDetector{
		GJK: gjk.NewDetector(),
		EPA: epa.NewSolver(),
	}
}

// Collide computes the manifold of two bodies. The manifold normal points
// from a toward b. logger receives a warning when EPA stops on its iteration
// cap, in which case its best estimate is used.
func (cd *CollisionDetector) Collide(a, b *actor.RigidBody, logger *slog.Logger) (epa.Manifold, bool) {
	penetration, ok := cd.penetration(a, b, logger)
	if !ok {
		return epa.Manifold{}, false
	}
	return cd.Clipping.Manifold(penetration, a.Shape, a.Transform, b.Shape, b.Transform)
}

func (cd *CollisionDetector) penetration(a, b *actor.RigidBody, logger *slog.Logger) (gjk.Penetration, bool) {
	if cd.UseSAT {
		satA, okA := a.Shape.(actor.SATShape)
		satB, okB := b.Shape.(actor.SATShape)
		if okA && okB {
			return cd.SAT.Detect(satA, a.Transform, satB, b.Transform)
		}
	}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !cd.GJK.Detect(a.Shape, a.Transform, b.Shape, b.Transform, simplex) {
		return gjk.Penetration{}, false
	}

	ms := gjk.MinkowskiSum{A: a.Shape, TxA: a.Transform, B: b.Shape, TxB: b.Transform}
	penetration, err := cd.EPA.Solve(ms, simplex)
	switch {
	case errors.Is(err, epa.ErrNotConverged):
		logger.Warn("EPA did not converge, using its best estimate",
			slog.Float64("depth", penetration.Depth),
			slog.String("error", err.Error()))
	case err != nil:
		// the shapes only touch
		return gjk.Penetration{}, false
	}
	return penetration, penetration.Depth > 0
}

// NarrowPhase runs Collide on every pair, fanned out over workersCount
// goroutines. The collisions are returned in the order of the pairs.
func (cd *CollisionDetector) NarrowPhase(pairs []Pair, workersCount int, logger *slog.Logger) []Collision {
	results := make([]Collision, len(pairs))
	found := make([]bool, len(pairs))

	task(workersCount, pairs, func(i int, pair Pair) {
		manifold, ok := cd.Collide(pair.BodyA, pair.BodyB, logger)
		if !ok {
			return
		}
		results[i] = Collision{BodyA: pair.BodyA, BodyB: pair.BodyB, Manifold: manifold}
		found[i] = true
	})

	n := 0
	for i := range results {
		if found[i] {
			results[n] = results[i]
			n++
		}
	}
	return results[:n]
}
