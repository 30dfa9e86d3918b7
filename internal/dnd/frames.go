package dnd

// FrameScheduler runs callbacks on the host's next frame. The returned
// function cancels the request; calling it after the frame ran is a no-op.
type FrameScheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// ManualFrames is a FrameScheduler pumped explicitly by the host loop (or a
// test) through Step.
type ManualFrames struct {
	next    uint64
	pending map[uint64]func()
	order   []uint64
}

// NewManualFrames returns an empty scheduler.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{pending: make(map[uint64]func())}
}

// RequestFrame queues fn for the next Step.
func (m *ManualFrames) RequestFrame(fn func()) func() {
	m.next++
	id := m.next
	m.pending[id] = fn
	m.order = append(m.order, id)
	return func() { delete(m.pending, id) }
}

// Step runs the callbacks queued before the call, in request order, and
// returns how many ran. Callbacks requested during the step wait for the
// next one.
func (m *ManualFrames) Step() int {
	order := m.order
	m.order = nil
	ran := 0
	for _, id := range order {
		fn, ok := m.pending[id]
		if !ok {
			continue
		}
		delete(m.pending, id)
		fn()
		ran++
	}
	return ran
}

// Pending returns the number of queued callbacks.
func (m *ManualFrames) Pending() int {
	return len(m.pending)
}
