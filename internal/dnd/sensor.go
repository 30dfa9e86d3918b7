package dnd

import "math"

// DefaultActivationDistance is how far the pointer must travel after a
// press before a drag starts. Shorter gestures are clicks.
const DefaultActivationDistance = 5

// PointerSensor turns raw press/move/release events into session calls.
type PointerSensor struct {
	session  *Session
	distance float64

	pressed   bool
	activated bool
	sourceID  string
	origin    Point
}

// NewPointerSensor creates a sensor driving s. A non-positive distance uses
// DefaultActivationDistance.
func NewPointerSensor(s *Session, distance float64) *PointerSensor {
	if distance <= 0 {
		distance = DefaultActivationDistance
	}
	return &PointerSensor{session: s, distance: distance}
}

// Down records a press. draggableID is empty when the press is not on a drag
// source.
func (ps *PointerSensor) Down(draggableID string, p Point) {
	ps.pressed = true
	ps.activated = false
	ps.sourceID = draggableID
	ps.origin = p
}

// Move forwards pointer motion, starting the drag once the activation
// distance is reached. A drag cancelled with Escape is not restarted until
// the pointer is released.
func (ps *PointerSensor) Move(p Point) {
	if !ps.pressed {
		return
	}
	if ps.activated {
		ps.session.Move(p)
		return
	}
	if ps.sourceID == "" || math.Hypot(p.X-ps.origin.X, p.Y-ps.origin.Y) < ps.distance {
		return
	}

	ps.activated = true
	if err := ps.session.Start(ps.sourceID, p); err != nil {
		ps.session.log.Debug("drag not started", "draggable", ps.sourceID, "error", err)
		return
	}
}

// Up ends the gesture. It returns the drag outcome, and clicked is true when
// the press never became a drag.
func (ps *PointerSensor) Up(p Point) (outcome State, clicked bool) {
	if !ps.pressed {
		return StateIdle, false
	}
	wasDrag := ps.activated
	ps.pressed = false
	ps.activated = false
	ps.sourceID = ""

	if !wasDrag {
		return StateIdle, true
	}
	return ps.session.Release(p), false
}

// Key forwards a key press to the session.
func (ps *PointerSensor) Key(key string) bool {
	return ps.session.HandleKey(key)
}

// Pressed reports whether a press is being tracked.
func (ps *PointerSensor) Pressed() bool { return ps.pressed }

