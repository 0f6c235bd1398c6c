package lamina

import (
	"unsafe"

	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
)

const (
	CONTACT_BEGIN EventType = iota
	CONTACT_PERSIST
	CONTACT_END
	SENSOR_BEGIN
	SENSOR_END
	ON_SLEEP
	ON_WAKE
	OUT_OF_BOUNDS
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	ptrA := uintptr(unsafe.Pointer(bodyA))
	ptrB := uintptr(unsafe.Pointer(bodyB))

	if ptrB < ptrA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

func (k pairKey) contains(body *actor.RigidBody) bool {
	return k.bodyA == body || k.bodyB == body
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Contact events carry the solved constraint: its normal, points and the
// impulses applied during the step.
type ContactBeginEvent struct {
	Constraint *constraint.ContactConstraint
}

func (e ContactBeginEvent) Type() EventType { return CONTACT_BEGIN }

type ContactPersistEvent struct {
	Constraint *constraint.ContactConstraint
}

func (e ContactPersistEvent) Type() EventType { return CONTACT_PERSIST }

type ContactEndEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e ContactEndEvent) Type() EventType { return CONTACT_END }

// Sensor events
type SensorBeginEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e SensorBeginEvent) Type() EventType { return SENSOR_BEGIN }

type SensorEndEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e SensorEndEvent) Type() EventType { return SENSOR_END }

// Sleep/Wake events
type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// OutOfBoundsEvent is sent once when a body leaves the world bounds
type OutOfBoundsEvent struct {
	Body *actor.RigidBody
}

func (e OutOfBoundsEvent) Type() EventType { return OUT_OF_BOUNDS }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Begin/Persist/End detection. The order slices
	// keep the events in the order the pairs were found.
	previousPairs map[pairKey]*constraint.ContactConstraint
	currentPairs  map[pairKey]*constraint.ContactConstraint
	previousOrder []pairKey
	currentOrder  []pairKey

	restStates map[*actor.RigidBody]bool
	outside    map[*actor.RigidBody]bool
}

func NewEvents() Events {
	return Events{
		listeners:     make(map[EventType][]EventListener),
		buffer:        make([]Event, 0, 256),
		previousPairs: make(map[pairKey]*constraint.ContactConstraint),
		currentPairs:  make(map[pairKey]*constraint.ContactConstraint),
		restStates:    make(map[*actor.RigidBody]bool),
		outside:       make(map[*actor.RigidBody]bool),
	}
}

// init makes the zero value usable
func (e *Events) init() {
	if e.listeners == nil {
		*e = NewEvents()
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContacts stores the contacts of the current step
func (e *Events) recordContacts(constraints []*constraint.ContactConstraint) {
	for _, c := range constraints {
		pair := makePairKey(c.BodyA, c.BodyB)
		if _, ok := e.currentPairs[pair]; !ok {
			e.currentOrder = append(e.currentOrder, pair)
		}
		e.currentPairs[pair] = c
	}
}

// processContactEvents compares current and previous pairs to detect Begin/Persist/End
func (e *Events) processContactEvents() {
	for _, pair := range e.currentOrder {
		c := e.currentPairs[pair]
		_, persisting := e.previousPairs[pair]

		switch {
		case c.Sensor && !persisting:
			e.buffer = append(e.buffer, SensorBeginEvent{BodyA: c.BodyA, BodyB: c.BodyB})
		case c.Sensor:
			// sensors only report when the overlap begins and ends
		case persisting:
			e.buffer = append(e.buffer, ContactPersistEvent{Constraint: c})
		default:
			e.buffer = append(e.buffer, ContactBeginEvent{Constraint: c})
		}
	}

	for _, pair := range e.previousOrder {
		if _, ok := e.currentPairs[pair]; ok {
			continue
		}
		c := e.previousPairs[pair]
		// a pair at rest is skipped by the broad phase, the contact still holds
		if !isActive(c.BodyA, c.BodyB) {
			e.recordContacts([]*constraint.ContactConstraint{c})
			continue
		}
		if c.Sensor {
			e.buffer = append(e.buffer, SensorEndEvent{BodyA: c.BodyA, BodyB: c.BodyB})
		} else {
			e.buffer = append(e.buffer, ContactEndEvent{BodyA: c.BodyA, BodyB: c.BodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousPairs, e.currentPairs = e.currentPairs, e.previousPairs
	e.previousOrder, e.currentOrder = e.currentOrder, e.previousOrder[:0]
	clear(e.currentPairs)
}

func (e *Events) processRestEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		trackedState, exists := e.restStates[body]
		if !exists {
			e.restStates[body] = body.IsAtRest()
			continue
		}

		if !trackedState && body.IsAtRest() {
			e.buffer = append(e.buffer, SleepEvent{Body: body})
			e.restStates[body] = true
		} else if trackedState && !body.IsAtRest() {
			e.buffer = append(e.buffer, WakeEvent{Body: body})
			e.restStates[body] = false
		}
	}
}

// processBoundsEvents reports the bodies that just left the bounds
func (e *Events) processBoundsEvents(bounds *actor.AxisAlignedBounds, bodies []*actor.RigidBody) {
	if bounds == nil {
		return
	}
	for _, body := range bodies {
		outside := bounds.IsOutside(body.AABB())
		if outside && !e.outside[body] {
			e.buffer = append(e.buffer, OutOfBoundsEvent{Body: body})
		}
		if outside {
			e.outside[body] = true
		} else {
			delete(e.outside, body)
		}
	}
}

// forget drops every state kept about body
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.restStates, body)
	delete(e.outside, body)

	n := 0
	for _, pair := range e.previousOrder {
		if pair.contains(body) {
			delete(e.previousPairs, pair)
			continue
		}
		e.previousOrder[n] = pair
		n++
	}
	e.previousOrder = e.previousOrder[:n]
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processContactEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
