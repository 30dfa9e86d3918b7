// Package swipe recognises horizontal swipe gestures that reveal a row's
// action panel. Rows sharing a RevealContext are mutually exclusive: at most
// one of them is revealed at a time.
package swipe

import (
	"log/slog"
	"math"
	"time"
)

// Defaults.
const (
	DefaultActionsWidth      = 120
	DefaultLockThreshold     = 5
	DefaultResistance        = 0.3
	DefaultVelocityThreshold = 0.5 // px/ms
	DefaultSnapDuration      = 250 * time.Millisecond
)

// Config tunes the recognizer. Zero fields take the defaults.
type Config struct {
	// ActionsWidth is the width of the action panel; a revealed row sits at
	// offset -ActionsWidth.
	ActionsWidth float64
	// LockThreshold is the movement after which the gesture commits to
	// horizontal or vertical.
	LockThreshold float64
	// Resistance scales movement beyond the open or closed bounds.
	Resistance float64
	// VelocityThreshold (px/ms) above which direction alone decides.
	VelocityThreshold float64
	SnapDuration      time.Duration
}

func (c Config) withDefaults() Config {
	if c.ActionsWidth <= 0 {
		c.ActionsWidth = DefaultActionsWidth
	}
	if c.LockThreshold <= 0 {
		c.LockThreshold = DefaultLockThreshold
	}
	if c.Resistance <= 0 {
		c.Resistance = DefaultResistance
	}
	if c.VelocityThreshold <= 0 {
		c.VelocityThreshold = DefaultVelocityThreshold
	}
	if c.SnapDuration <= 0 {
		c.SnapDuration = DefaultSnapDuration
	}
	return c
}

// Phase is the per-gesture recognizer state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTracking
	PhaseHorizontal
	PhaseVertical
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTracking:
		return "tracking"
	case PhaseHorizontal:
		return "horizontal"
	case PhaseVertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// RevealContext owns the reveal state for a list of rows.
type RevealContext struct {
	cfg      Config
	rows     map[string]*Row
	revealed string
	disabled bool
	now      func() time.Time
	log      *slog.Logger

	// OnReveal is called when a row becomes revealed.
	OnReveal func(rowID string)
}

// NewRevealContext creates an empty context.
func NewRevealContext(cfg Config) *RevealContext {
	return &RevealContext{
		cfg:  cfg.withDefaults(),
		rows: make(map[string]*Row),
		now:  time.Now,
		log:  slog.Default(),
	}
}

// Config returns the effective configuration.
func (c *RevealContext) Config() Config { return c.cfg }

// Row returns the recognizer for id, creating it on first use.
func (c *RevealContext) Row(id string) *Row {
	if r, ok := c.rows[id]; ok {
		return r
	}
	r := &Row{id: id, ctx: c}
	c.rows[id] = r
	return r
}

// Remove forgets a row, e.g. when the item left the list.
func (c *RevealContext) Remove(id string) {
	delete(c.rows, id)
	if c.revealed == id {
		c.revealed = ""
	}
}

// Retain forgets every row for which keep returns false.
func (c *RevealContext) Retain(keep func(id string) bool) {
	for id := range c.rows {
		if !keep(id) {
			c.Remove(id)
		}
	}
}

// Revealed returns the id of the revealed row, or "".
func (c *RevealContext) Revealed() string { return c.revealed }

// Reveal opens row id and closes any other revealed row.
func (c *RevealContext) Reveal(id string) {
	c.Row(id).snap(true)
}

// Close closes row id if it is revealed.
func (c *RevealContext) Close(id string) {
	if r, ok := c.rows[id]; ok {
		r.snap(false)
	}
}

// CloseAll closes the revealed row, if any.
func (c *RevealContext) CloseAll() {
	if c.revealed != "" {
		c.Close(c.revealed)
	}
}

// SetDisabled turns recognition of new gestures off or on. A gesture already
// being tracked runs to completion.
func (c *RevealContext) SetDisabled(disabled bool) { c.disabled = disabled }

// Disabled reports whether new gestures are ignored.
func (c *RevealContext) Disabled() bool { return c.disabled }

func (c *RevealContext) setRevealed(id string) {
	if c.revealed == id {
		return
	}
	if prev, ok := c.rows[c.revealed]; ok && c.revealed != "" {
		prev.settle(0)
	}
	c.revealed = id
	c.log.Debug("row revealed", "row", id)
	if c.OnReveal != nil {
		c.OnReveal(id)
	}
}

// Row is one swipeable row.
type Row struct {
	id  string
	ctx *RevealContext

	phase     Phase
	startX    float64
	startY    float64
	startTime time.Time
	baseline  float64
	deltaX    float64

	offset    float64
	animating bool
	animFrom  float64
	animStart time.Time
}

// ID returns the row id.
func (r *Row) ID() string { return r.id }

// Phase returns the recognizer phase of the current gesture.
func (r *Row) Phase() Phase { return r.phase }

// Offset returns the row's resting or tracked offset: 0 closed,
// -ActionsWidth revealed.
func (r *Row) Offset() float64 { return r.offset }

// Animating reports whether the row should transition to Offset rather than
// jump to it. Tracking disables the transition.
func (r *Row) Animating() bool { return r.animating }

// IsRevealed reports whether this row is the context's revealed row.
func (r *Row) IsRevealed() bool { return r.ctx.revealed == r.id }

// DisplayOffset returns the offset to draw at time now, easing towards
// Offset during a snap.
func (r *Row) DisplayOffset(now time.Time) float64 {
	if !r.animating {
		return r.offset
	}
	t := float64(now.Sub(r.animStart)) / float64(r.ctx.cfg.SnapDuration)
	if t >= 1 {
		return r.offset
	}
	return r.animFrom + (r.offset-r.animFrom)*EaseOutCubic(max(t, 0))
}

// EaseOutCubic is the snap easing curve.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// TouchStart begins a gesture. It is ignored while the context is disabled.
func (r *Row) TouchStart(x, y float64, at time.Time) {
	if r.ctx.disabled {
		return
	}
	r.phase = PhaseTracking
	r.startX, r.startY = x, y
	r.startTime = at
	r.deltaX = 0
	r.baseline = 0
	if r.IsRevealed() {
		r.baseline = -r.ctx.cfg.ActionsWidth
	}
	r.offset = r.baseline
	r.animating = false
}

// TouchMove tracks the gesture and reports whether the host should suppress
// page scrolling for this event.
func (r *Row) TouchMove(x, y float64) bool {
	switch r.phase {
	case PhaseTracking:
		dx, dy := x-r.startX, y-r.startY
		r.deltaX = dx
		lock := r.ctx.cfg.LockThreshold
		if math.Abs(dx) < lock && math.Abs(dy) < lock {
			return false
		}
		// Diagonal movement counts as a scroll.
		if math.Abs(dx) > math.Abs(dy) {
			r.phase = PhaseHorizontal
		} else {
			r.phase = PhaseVertical
			return false
		}
		fallthrough
	case PhaseHorizontal:
		r.deltaX = x - r.startX
		r.offset = r.rubberBand(r.baseline + r.deltaX)
		return true
	default:
		return false
	}
}

func (r *Row) rubberBand(raw float64) float64 {
	w, k := r.ctx.cfg.ActionsWidth, r.ctx.cfg.Resistance
	switch {
	case raw > 0:
		return raw * k
	case raw < -w:
		return -w + (raw+w)*k
	default:
		return raw
	}
}

// TouchEnd finishes the gesture at time at and snaps the row. A fast swipe is
// decided by its direction; a slow one by whether the row is more than half
// open.
func (r *Row) TouchEnd(at time.Time) {
	phase := r.phase
	r.phase = PhaseIdle
	if phase != PhaseHorizontal {
		if phase != PhaseIdle {
			r.settle(r.baseline)
		}
		return
	}

	elapsed := float64(at.Sub(r.startTime)) / float64(time.Millisecond)
	elapsed = max(elapsed, 1)
	velocity := math.Abs(r.deltaX) / elapsed

	var reveal bool
	if velocity > r.ctx.cfg.VelocityThreshold {
		reveal = r.deltaX < 0
	} else {
		reveal = -r.offset > r.ctx.cfg.ActionsWidth/2
	}
	r.snap(reveal)
}

// TapAction runs an action from the revealed panel and closes the row.
func (r *Row) TapAction(action func()) {
	if action != nil {
		action()
	}
	r.snap(false)
}

// TapContent handles a tap on the row's main content. While revealed the tap
// only closes the row; otherwise open runs. It reports whether open ran.
func (r *Row) TapContent(open func()) bool {
	if r.IsRevealed() {
		r.snap(false)
		return false
	}
	if open != nil {
		open()
	}
	return true
}

func (r *Row) snap(reveal bool) {
	if reveal {
		r.settle(-r.ctx.cfg.ActionsWidth)
		r.ctx.setRevealed(r.id)
		return
	}
	r.settle(0)
	if r.IsRevealed() {
		r.ctx.revealed = ""
	}
}

func (r *Row) settle(target float64) {
	r.animFrom = r.offset
	r.animStart = r.ctx.now()
	r.offset = target
	r.animating = true
	r.phase = PhaseIdle
}
