package dnd

import (
	"errors"
	"log/slog"
)

// State is the drag session state.
type State int

// Session states. Dropped and Cancelled are only observable from inside
// hooks; every completed drag settles back in Idle.
const (
	StateIdle State = iota
	StateDragging
	StateDropped
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateDropped:
		return "dropped"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CancelReason says why a drag ended without a drop.
type CancelReason int

const (
	ReasonNone CancelReason = iota
	ReasonEscape
	ReasonNoTarget
)

func (r CancelReason) String() string {
	switch r {
	case ReasonEscape:
		return "escape"
	case ReasonNoTarget:
		return "no target"
	default:
		return "none"
	}
}

var (
	// ErrNotIdle is returned when a drag starts while another is active.
	ErrNotIdle = errors.New("dnd: drag already in progress")
	// ErrUnknownDraggable is returned when starting a drag on an
	// unregistered source.
	ErrUnknownDraggable = errors.New("dnd: unknown draggable")
)

// DragStartEvent is passed to Hooks.OnDragStart.
type DragStartEvent struct {
	DraggableID string
	Payload     any
	Pointer     Point
}

// DragOverEvent is passed to Hooks.OnDragOver when the hovered target
// changes. OverID is empty when the pointer left every target.
type DragOverEvent struct {
	DraggableID string
	Payload     any
	OverID      string
}

// DropEvent is passed to Hooks.OnDrop exactly once per successful drop.
type DropEvent struct {
	DraggableID string
	Payload     any
	DroppableID string
	Target      any
}

// DragEndEvent is passed to Hooks.OnDragEnd after every drag.
type DragEndEvent struct {
	DraggableID string
	Payload     any
	Outcome     State
	Reason      CancelReason
	DroppableID string
}

// Hooks are optional session callbacks. They run synchronously on the
// caller's goroutine.
type Hooks struct {
	OnDragStart func(DragStartEvent)
	OnDragOver  func(DragOverEvent)
	OnDrop      func(DropEvent)
	OnDragEnd   func(DragEndEvent)
}

// Option configures a Session.
type Option func(*Session)

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(s *Session) { s.hooks = h }
}

// WithAutoScroll binds an auto-scroller to the drag lifecycle: it starts when
// dragging begins and stops when the session returns to idle.
func WithAutoScroll(a *AutoScroller) Option {
	return func(s *Session) { s.scroller = a }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session is the drag state machine: Idle → Dragging → {Dropped, Cancelled}
// → Idle.
type Session struct {
	state      State
	draggables map[string]*Draggable
	droppables map[string]*Droppable
	seq        uint64

	activeID    string
	payload     any
	overID      string
	pointer     Point
	pointerDown bool
	cancelled   bool

	hooks    Hooks
	scroller *AutoScroller
	log      *slog.Logger
}

// NewSession creates an idle session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		draggables: make(map[string]*Draggable),
		droppables: make(map[string]*Droppable),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scroller != nil {
		s.scroller.afterScroll = s.Refresh
	}
	return s
}

// SetHooks replaces the lifecycle hooks.
func (s *Session) SetHooks(h Hooks) { s.hooks = h }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool { return s.state == StateDragging }

// Pointer returns the last pointer position seen by the session.
func (s *Session) Pointer() Point { return s.pointer }

// PointerDown reports whether the pointer that started the current or last
// drag is still pressed.
func (s *Session) PointerDown() bool { return s.pointerDown }

// ListScrollSuspended reports whether scrollable lists should ignore their
// own scroll handling so they do not fight the auto-scroller.
func (s *Session) ListScrollSuspended() bool {
	return s.state == StateDragging && s.pointerDown
}

// Cancelled reports whether the last drag was cancelled with Escape and the
// pointer has not been released since.
func (s *Session) Cancelled() bool { return s.cancelled }

// Active returns the id and payload of the active drag.
func (s *Session) Active() (id string, payload any, ok bool) {
	if s.state != StateDragging {
		return "", nil, false
	}
	return s.activeID, s.payload, true
}

// Over returns the droppable currently under the drag.
func (s *Session) Over() (*Droppable, bool) {
	if s.state != StateDragging || s.overID == "" {
		return nil, false
	}
	d, ok := s.droppables[s.overID]
	return d, ok
}

// Start begins dragging a registered draggable. The payload is captured now,
// so re-registering or removing the source mid-drag does not affect it.
func (s *Session) Start(draggableID string, p Point) error {
	if s.state != StateIdle {
		return ErrNotIdle
	}
	d, ok := s.draggables[draggableID]
	if !ok {
		return ErrUnknownDraggable
	}

	s.state = StateDragging
	s.activeID = d.id
	s.payload = d.payload
	s.overID = ""
	s.pointer = p
	s.pointerDown = true
	s.cancelled = false

	s.log.Debug("drag started", "draggable", d.id)
	if s.hooks.OnDragStart != nil {
		s.hooks.OnDragStart(DragStartEvent{DraggableID: d.id, Payload: d.payload, Pointer: p})
	}
	if s.scroller != nil {
		s.scroller.Start(s.Pointer)
	}
	s.Refresh()
	return nil
}

// Move updates the pointer position during a drag.
func (s *Session) Move(p Point) {
	if s.state != StateDragging {
		return
	}
	s.pointer = p
	s.Refresh()
}

// Refresh re-resolves the hovered target against live rectangles. The
// auto-scroller calls it after every scroll step.
func (s *Session) Refresh() {
	if s.state != StateDragging {
		return
	}
	s.setOver(s.resolve())
}

func (s *Session) resolve() string {
	id, _ := ResolveCollision(PointerRect(s.pointer), s.candidates(s.payload))
	return id
}

func (s *Session) setOver(id string) {
	if id == s.overID {
		return
	}
	s.overID = id
	if s.hooks.OnDragOver != nil {
		s.hooks.OnDragOver(DragOverEvent{DraggableID: s.activeID, Payload: s.payload, OverID: id})
	}
}

// Release ends the drag at p. A release over an accepting droppable drops
// (OnDrop fires once); anything else cancels. The returned state is the
// outcome; the session itself is Idle again when Release returns. A release
// after an Escape cancel only clears the latch.
func (s *Session) Release(p Point) State {
	s.pointerDown = false
	if s.state != StateDragging {
		s.cancelled = false
		return StateIdle
	}

	s.pointer = p
	overID := s.resolve()
	if overID == "" {
		s.finish(StateCancelled, ReasonNoTarget, "")
		return StateCancelled
	}
	s.finish(StateDropped, ReasonNone, overID)
	return StateDropped
}

// Cancel aborts an active drag without invoking any operation. It reports
// whether a drag was cancelled; calling it while idle is a no-op.
func (s *Session) Cancel() bool {
	if s.state != StateDragging {
		return false
	}
	s.cancelled = true
	s.finish(StateCancelled, ReasonEscape, "")
	return true
}

// HandleKey cancels the active drag on Escape and reports whether the key
// was consumed.
func (s *Session) HandleKey(key string) bool {
	switch key {
	case "esc", "escape", "Escape":
		return s.Cancel()
	}
	return false
}

func (s *Session) finish(outcome State, reason CancelReason, overID string) {
	if s.scroller != nil {
		s.scroller.Stop()
	}

	end := DragEndEvent{
		DraggableID: s.activeID,
		Payload:     s.payload,
		Outcome:     outcome,
		Reason:      reason,
		DroppableID: overID,
	}

	s.state = outcome
	defer func() {
		s.state = StateIdle
		s.activeID = ""
		s.payload = nil
		s.overID = ""
		s.log.Debug("drag ended", "draggable", end.DraggableID, "outcome", outcome, "reason", reason, "target", overID)
		if s.hooks.OnDragEnd != nil {
			s.hooks.OnDragEnd(end)
		}
	}()

	if outcome == StateDropped && s.hooks.OnDrop != nil {
		d := s.droppables[overID]
		s.hooks.OnDrop(DropEvent{
			DraggableID: end.DraggableID,
			Payload:     end.Payload,
			DroppableID: overID,
			Target:      d.cfg.Target,
		})
	}
}
