package dnd

// Draggable is a registered drag source carrying an opaque payload.
type Draggable struct {
	id      string
	payload any
	session *Session
}

// ID returns the draggable's identifier.
func (d *Draggable) ID() string { return d.id }

// Payload returns what the draggable carries.
func (d *Draggable) Payload() any { return d.payload }

// IsActive reports whether this draggable is the one being dragged.
func (d *Draggable) IsActive() bool {
	return d.session.state == StateDragging && d.session.activeID == d.id
}

// DroppableConfig describes a drop target.
type DroppableConfig struct {
	ID string
	// Target is the descriptor handed to the drop hook.
	Target any
	// Measure returns the target's current rectangle. It is called on every
	// collision check, never cached.
	Measure func() Rect
	// Accepts filters payloads; nil accepts everything.
	Accepts func(payload any) bool
	// Disabled targets are skipped by collision.
	Disabled bool
}

// Droppable is a registered drop target.
type Droppable struct {
	cfg     DroppableConfig
	seq     uint64
	session *Session
}

// ID returns the droppable's identifier.
func (d *Droppable) ID() string { return d.cfg.ID }

// Target returns the descriptor the droppable was registered with.
func (d *Droppable) Target() any { return d.cfg.Target }

// Rect measures the droppable now.
func (d *Droppable) Rect() Rect { return d.cfg.Measure() }

// IsOver reports whether a drag is currently hovering this droppable.
func (d *Droppable) IsOver() bool {
	return d.session.state == StateDragging && d.session.overID == d.cfg.ID
}

func (d *Droppable) accepts(payload any) bool {
	return !d.cfg.Disabled && (d.cfg.Accepts == nil || d.cfg.Accepts(payload))
}

// RegisterDraggable registers (or replaces) a drag source.
func (s *Session) RegisterDraggable(id string, payload any) *Draggable {
	d := &Draggable{id: id, payload: payload, session: s}
	s.draggables[id] = d
	return d
}

// RegisterDroppable registers a drop target. Registering an existing ID
// replaces it and moves it to the end of the registration order.
func (s *Session) RegisterDroppable(cfg DroppableConfig) *Droppable {
	if cfg.Measure == nil {
		cfg.Measure = func() Rect { return Rect{} }
	}
	s.seq++
	d := &Droppable{cfg: cfg, seq: s.seq, session: s}
	s.droppables[cfg.ID] = d
	return d
}

// UnregisterDraggable removes a drag source. An active drag keeps the
// payload it captured at start.
func (s *Session) UnregisterDraggable(id string) {
	delete(s.draggables, id)
}

// UnregisterDroppable removes a drop target.
func (s *Session) UnregisterDroppable(id string) {
	delete(s.droppables, id)
	if s.overID == id {
		s.setOver("")
	}
}

// ResetDroppables removes every drop target. Hosts that lay out from scratch
// on each render call it before re-registering in paint order; the hovered
// target is re-resolved on the next pointer event.
func (s *Session) ResetDroppables() {
	s.droppables = make(map[string]*Droppable)
}

// Droppable looks up a registered drop target.
func (s *Session) Droppable(id string) (*Droppable, bool) {
	d, ok := s.droppables[id]
	return d, ok
}

// Draggable looks up a registered drag source.
func (s *Session) Draggable(id string) (*Draggable, bool) {
	d, ok := s.draggables[id]
	return d, ok
}

// candidates measures every droppable that accepts payload.
func (s *Session) candidates(payload any) []Candidate {
	out := make([]Candidate, 0, len(s.droppables))
	for _, d := range s.droppables {
		if !d.accepts(payload) {
			continue
		}
		out = append(out, Candidate{ID: d.cfg.ID, Rect: d.cfg.Measure(), Seq: d.seq})
	}
	return out
}
