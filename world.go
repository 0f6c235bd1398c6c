// Package lamina is a 2D rigid body physics engine.
//
// A World holds bodies and joints and advances them with Step. Each step
// runs the classic sequential impulse pipeline:
//  1. integrate the velocities (gravity, forces, damping)
//  2. broad phase: a uniform spatial grid finds the pairs of overlapping AABBs
//  3. narrow phase: GJK and EPA (or SAT) give the penetration, clipping the manifold
//  4. contact constraints are warm started with the impulses of the previous step
//  5. solver: velocity iterations, position integration, position iterations
//  6. at rest detection, then the buffered events are sent to the listeners
package lamina

import (
	"log/slog"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
	"github.com/akmonengine/lamina/joint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_WORKERS   = 1
	DEFAULT_CELL_SIZE = 2.0
	DEFAULT_NUM_CELLS = 1024
)

// EarthGravity is the default gravity, in m/s²
var EarthGravity = mgl64.Vec2{0, -9.8}

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	Joints []joint.Joint
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec2
	Settings constraint.Settings
	// Workers is the number of goroutines used by the broad and narrow phases
	Workers int

	Grid      *SpatialGrid
	Collision *CollisionDetector
	// Bounds is optional, bodies leaving it are reported by OUT_OF_BOUNDS events
	Bounds *actor.AxisAlignedBounds

	Events Events
	Logger *slog.Logger

	step        constraint.TimeStep
	stepped     bool
	accumulator float64

	// contacts of the previous step, for warm starting
	contacts map[pairKey]*constraint.ContactConstraint
}

// NewWorld creates a world with the default settings and the earth gravity
func NewWorld() *World {
	return &World{
		Gravity:   EarthGravity,
		Settings:  constraint.DefaultSettings(),
		Workers:   DEFAULT_WORKERS,
		Grid:      NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_NUM_CELLS),
		Collision: NewCollisionDetector(),
		Events:    NewEvents(),
		Logger:    slog.Default(),
		contacts:  make(map[pairKey]*constraint.ContactConstraint),
	}
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	if body == nil {
		return
	}
	body.ComputeAABB()
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world, along with its joints and
// its contacts.
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}

	n := 0
	for _, j := range w.Joints {
		if j.BodyA() == body || j.BodyB() == body {
			continue
		}
		w.Joints[n] = j
		n++
	}
	clear(w.Joints[n:])
	w.Joints = w.Joints[:n]

	for pair := range w.contacts {
		if pair.contains(body) {
			delete(w.contacts, pair)
		}
	}
	w.Events.forget(body)
}

// AddJoint adds a joint to the world. Both bodies must be in the world.
func (w *World) AddJoint(j joint.Joint) {
	if j == nil {
		return
	}
	w.Joints = append(w.Joints, j)
}

// RemoveJoint removes a joint from the world and wakes its bodies
func (w *World) RemoveJoint(j joint.Joint) {
	for i, other := range w.Joints {
		if other == j {
			w.Joints = append(w.Joints[:i], w.Joints[i+1:]...)
			j.BodyA().SetAtRest(false)
			j.BodyB().SetAtRest(false)
			return
		}
	}
}

// Update advances the world by elapsed seconds in fixed steps of
// Settings.StepFrequency. The time left over is kept for the next call.
// Returns the number of steps taken, 0 when StepFrequency is not positive.
func (w *World) Update(elapsed float64) int {
	if !(w.Settings.StepFrequency > 0) {
		w.init()
		w.Logger.Warn("update skipped, step frequency must be positive", slog.Float64("step_frequency", w.Settings.StepFrequency))
		return 0
	}
	if !(elapsed > 0) {
		return 0
	}
	w.accumulator += elapsed
	steps := 0
	for w.accumulator >= w.Settings.StepFrequency {
		w.Step(w.Settings.StepFrequency)
		w.accumulator -= w.Settings.StepFrequency
		steps++
	}
	return steps
}

// Step advances the world by dt seconds
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.init()
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	if w.stepped {
		w.step.Update(dt)
	} else {
		w.step = constraint.NewTimeStep(dt)
		w.stepped = true
	}

	// Phase 1: velocities
	w.integrateVelocity(dt)

	// Phase 2.0: Collision pair finding - Broad phase
	pairs := w.broadPhase()

	// Phase 2.1: Collision pair finding - narrow phase
	collisions := w.Collision.NarrowPhase(pairs, w.Workers, w.Logger)

	// Phase 3: contact constraints, warm started from the previous step
	constraints := w.contactConstraints(collisions)
	w.wakeTouchedBodies(constraints)

	// Phase 4: Solver
	w.solve(dt, constraints)

	// Phase 5: rest
	if w.Settings.AtRestDetection {
		w.updateAtRest(dt)
	}

	w.Logger.Debug("step",
		slog.Float64("dt", dt),
		slog.Int("pairs", len(pairs)),
		slog.Int("contacts", len(constraints)),
		slog.Int("joints", len(w.Joints)))

	w.Events.recordContacts(constraints)
	w.Events.processRestEvents(w.Bodies)
	w.Events.processBoundsEvents(w.Bounds, w.Bodies)
	w.Events.flush()
}

// init fills the fields left empty when the world was not created by NewWorld
func (w *World) init() {
	if w.Grid == nil {
		w.Grid = NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_NUM_CELLS)
	}
	if w.Collision == nil {
		w.Collision = NewCollisionDetector()
	}
	if w.Logger == nil {
		w.Logger = slog.Default()
	}
	if w.contacts == nil {
		w.contacts = make(map[pairKey]*constraint.ContactConstraint)
	}
	w.Events.init()
}

func (w *World) integrateVelocity(dt float64) {
	task(w.Workers, w.Bodies, func(_ int, body *actor.RigidBody) {
		body.IntegrateVelocity(dt, w.Gravity)
	})
}

func (w *World) broadPhase() []Pair {
	w.Grid.Clear()
	for i, body := range w.Bodies {
		body.ComputeAABB()
		w.Grid.Insert(i, body)
	}
	w.Grid.SortCells()

	var filter PairFilter
	if len(w.Joints) > 0 {
		jointed := make(map[pairKey]bool)
		for _, j := range w.Joints {
			if !j.IsCollisionAllowed() {
				jointed[makePairKey(j.BodyA(), j.BodyB())] = true
			}
		}
		filter = func(a, b *actor.RigidBody) bool {
			return !jointed[makePairKey(a, b)]
		}
	}

	return w.Grid.FindPairsParallel(w.Bodies, w.Workers, filter)
}

// contactConstraints creates the constraints of the step, copying the
// impulses of the matching contacts of the previous step. The contacts of
// pairs at rest are kept as they are.
func (w *World) contactConstraints(collisions []Collision) []*constraint.ContactConstraint {
	constraints := make([]*constraint.ContactConstraint, 0, len(collisions))
	contacts := make(map[pairKey]*constraint.ContactConstraint, len(collisions))

	for _, c := range collisions {
		cc, err := constraint.NewContactConstraint(c.BodyA, c.BodyB, c.Manifold)
		if err != nil {
			w.Logger.Error("invalid contact", slog.String("error", err.Error()))
			continue
		}

		key := makePairKey(c.BodyA, c.BodyB)
		if previous, ok := w.contacts[key]; ok && previous.BodyA == cc.BodyA {
			cc.WarmStartFrom(previous, &w.Settings)
		}
		contacts[key] = cc
		constraints = append(constraints, cc)
	}

	for key, previous := range w.contacts {
		if _, ok := contacts[key]; !ok && !isActive(previous.BodyA, previous.BodyB) {
			contacts[key] = previous
		}
	}
	w.contacts = contacts

	return constraints
}

// wakeTouchedBodies wakes the bodies at rest touched by a moving body, or
// jointed to one.
func (w *World) wakeTouchedBodies(constraints []*constraint.ContactConstraint) {
	for _, cc := range constraints {
		if cc.Sensor {
			continue
		}
		wakePair(cc.BodyA, cc.BodyB)
	}
	for _, j := range w.Joints {
		wakePair(j.BodyA(), j.BodyB())
	}
}

func wakePair(a, b *actor.RigidBody) {
	if a.IsAtRest() && !b.IsAtRest() && !b.IsStatic() {
		a.SetAtRest(false)
	}
	if b.IsAtRest() && !a.IsAtRest() && !a.IsStatic() {
		b.SetAtRest(false)
	}
}

// isActive reports whether a or b can move: a constraint between two
// bodies that are static or at rest has nothing to do.
func isActive(a, b *actor.RigidBody) bool {
	return (!a.IsStatic() && !a.IsAtRest()) || (!b.IsStatic() && !b.IsAtRest())
}

func (w *World) solve(dt float64, constraints []*constraint.ContactConstraint) {
	contacts := &constraint.ContactSolver{Constraints: make([]*constraint.ContactConstraint, 0, len(constraints))}
	for _, cc := range constraints {
		if !cc.Sensor && isActive(cc.BodyA, cc.BodyB) {
			contacts.Constraints = append(contacts.Constraints, cc)
		}
	}
	joints := make([]joint.Joint, 0, len(w.Joints))
	for _, j := range w.Joints {
		if isActive(j.BodyA(), j.BodyB()) {
			joints = append(joints, j)
		}
	}

	step, settings := &w.step, &w.Settings

	contacts.InitializeConstraints(step, settings)
	for _, j := range joints {
		j.InitializeConstraints(step, settings)
	}

	for i := 0; i < settings.VelocityIterations; i++ {
		for _, j := range joints {
			j.SolveVelocityConstraints(step, settings)
		}
		contacts.SolveVelocityConstraints(step, settings)
	}

	task(w.Workers, w.Bodies, func(_ int, body *actor.RigidBody) {
		body.IntegratePosition(dt, settings.MaxTranslation, settings.MaxRotation)
	})

	for i := 0; i < settings.PositionIterations; i++ {
		solved := contacts.SolvePositionConstraints(step, settings)
		for _, j := range joints {
			solved = j.SolvePositionConstraints(step, settings) && solved
		}
		if solved {
			break
		}
	}

	for _, body := range w.Bodies {
		body.ComputeAABB()
	}
}

// updateAtRest puts to rest the bodies which stayed slow for long enough.
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) updateAtRest(dt float64) {
	s := &w.Settings
	for _, body := range w.Bodies {
		body.UpdateAtRest(dt, s.AtRestLinearVelocity, s.AtRestAngularVelocity, s.AtRestTime)
	}
}
