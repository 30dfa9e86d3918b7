package dnd

// Viewport is a vertically scrollable region.
type Viewport interface {
	// Bounds is the visible area in pointer coordinates.
	Bounds() Rect
	ScrollTop() float64
	// ScrollHeight is the full content height.
	ScrollHeight() float64
	SetScrollTop(top float64)
}

// Auto-scroll defaults.
const (
	DefaultEdgeThreshold = 80
	DefaultMaxSpeed      = 20
)

// AutoScrollConfig tunes the auto-scroller. Zero fields take the defaults.
type AutoScrollConfig struct {
	// EdgeThreshold is the height of the top and bottom bands.
	EdgeThreshold float64
	// MaxSpeed is the scroll distance per frame at the very edge.
	MaxSpeed float64
}

// AutoScroller scrolls a viewport while the pointer sits in its top or
// bottom band, faster the closer it is to the edge.
type AutoScroller struct {
	viewport Viewport
	frames   FrameScheduler
	cfg      AutoScrollConfig

	pointer func() Point
	cancel  func()
	running bool

	// OnScroll is called with the applied delta after each scroll step.
	OnScroll    func(delta float64)
	afterScroll func()
}

// NewAutoScroller creates a stopped auto-scroller.
func NewAutoScroller(v Viewport, frames FrameScheduler, cfg AutoScrollConfig) *AutoScroller {
	if cfg.EdgeThreshold <= 0 {
		cfg.EdgeThreshold = DefaultEdgeThreshold
	}
	if cfg.MaxSpeed <= 0 {
		cfg.MaxSpeed = DefaultMaxSpeed
	}
	return &AutoScroller{viewport: v, frames: frames, cfg: cfg}
}

// Running reports whether the frame loop is active.
func (a *AutoScroller) Running() bool { return a.running }

// Start begins the frame loop, reading the pointer through fn each frame.
// Starting a running scroller only swaps the pointer source.
func (a *AutoScroller) Start(pointer func() Point) {
	a.pointer = pointer
	if a.running {
		return
	}
	a.running = true
	a.schedule()
}

// Stop ends the frame loop and cancels the pending frame. It is idempotent.
func (a *AutoScroller) Stop() {
	a.running = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *AutoScroller) schedule() {
	a.cancel = a.frames.RequestFrame(a.frame)
}

func (a *AutoScroller) frame() {
	a.cancel = nil
	if !a.running {
		return
	}
	a.Step(a.pointer())
	// A hook may have restarted the loop during Step; that restart already
	// scheduled the next frame.
	if a.running && a.cancel == nil {
		a.schedule()
	}
}

// Speed returns the signed per-frame scroll speed for p: negative scrolls
// up, positive down, zero outside both bands or outside the viewport's
// horizontal extent.
func (a *AutoScroller) Speed(p Point) float64 {
	b := a.viewport.Bounds()
	if b.Empty() || p.X < b.X || p.X >= b.Right() {
		return 0
	}

	th := min(a.cfg.EdgeThreshold, b.H/2)
	if th <= 0 {
		return 0
	}
	if dist := p.Y - b.Y; dist < th {
		return -a.speedAt(dist, th)
	}
	if dist := b.Bottom() - p.Y; dist < th {
		return a.speedAt(dist, th)
	}
	return 0
}

func (a *AutoScroller) speedAt(dist, th float64) float64 {
	depth := (th - max(dist, 0)) / th
	return a.cfg.MaxSpeed * depth
}

// Step applies one frame of scrolling for p and returns the delta actually
// applied after clamping to the content bounds.
func (a *AutoScroller) Step(p Point) float64 {
	speed := a.Speed(p)
	if speed == 0 {
		return 0
	}

	maxTop := a.viewport.ScrollHeight() - a.viewport.Bounds().H
	if maxTop <= 0 {
		return 0
	}

	top := a.viewport.ScrollTop()
	next := min(max(top+speed, 0), maxTop)
	delta := next - top
	if delta == 0 {
		return 0
	}

	a.viewport.SetScrollTop(next)
	if a.OnScroll != nil {
		a.OnScroll(delta)
	}
	if a.afterScroll != nil {
		a.afterScroll()
	}
	return delta
}
