package dnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViewport struct {
	bounds  Rect
	top     float64
	content float64
}

func (v *fakeViewport) Bounds() Rect             { return v.bounds }
func (v *fakeViewport) ScrollTop() float64       { return v.top }
func (v *fakeViewport) ScrollHeight() float64    { return v.content }
func (v *fakeViewport) SetScrollTop(top float64) { v.top = top }

func newScroller(content float64) (*AutoScroller, *fakeViewport, *ManualFrames) {
	vp := &fakeViewport{bounds: Rect{X: 0, Y: 0, W: 200, H: 400}, content: content}
	frames := NewManualFrames()
	return NewAutoScroller(vp, frames, AutoScrollConfig{}), vp, frames
}

func TestAutoScrollSpeed(t *testing.T) {
	a, _, _ := newScroller(1000)

	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"middle", Point{X: 100, Y: 200}, 0},
		{"top edge", Point{X: 100, Y: 0}, -DefaultMaxSpeed},
		{"half into top band", Point{X: 100, Y: 40}, -DefaultMaxSpeed / 2},
		{"bottom edge", Point{X: 100, Y: 399}, DefaultMaxSpeed * 79.0 / 80},
		{"quarter into bottom band", Point{X: 100, Y: 340}, DefaultMaxSpeed / 4},
		{"above viewport", Point{X: 100, Y: -30}, -DefaultMaxSpeed},
		{"beside viewport", Point{X: 250, Y: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, a.Speed(tt.p), 1e-9)
		})
	}
}

func TestAutoScrollCloserIsFaster(t *testing.T) {
	a, _, _ := newScroller(1000)
	assert.Greater(t, a.Speed(Point{X: 10, Y: 390}), a.Speed(Point{X: 10, Y: 350}))
	assert.Less(t, a.Speed(Point{X: 10, Y: 5}), a.Speed(Point{X: 10, Y: 60}))
}

func TestAutoScrollClamps(t *testing.T) {
	a, vp, _ := newScroller(1000)

	assert.Equal(t, 0.0, a.Step(Point{X: 10, Y: 0}), "already at the start")

	vp.top = 595
	assert.Equal(t, 5.0, a.Step(Point{X: 10, Y: 399.99}))
	assert.Equal(t, 600.0, vp.top)
	assert.Equal(t, 0.0, a.Step(Point{X: 10, Y: 399.99}), "already at the end")
}

func TestAutoScrollWithoutOverflow(t *testing.T) {
	a, vp, _ := newScroller(300)
	assert.Equal(t, 0.0, a.Step(Point{X: 10, Y: 399}))
	assert.Equal(t, 0.0, vp.top)
}

func TestAutoScrollFrameLoop(t *testing.T) {
	a, vp, frames := newScroller(1000)
	pointer := Point{X: 10, Y: 399}

	var deltas []float64
	a.OnScroll = func(d float64) { deltas = append(deltas, d) }

	a.Start(func() Point { return pointer })
	a.Start(func() Point { return pointer })
	assert.Equal(t, 1, frames.Pending(), "second start does not double the loop")

	for i := 0; i < 3; i++ {
		require.Equal(t, 1, frames.Step())
	}
	assert.Len(t, deltas, 3)
	assert.Greater(t, vp.top, 0.0)

	a.Stop()
	a.Stop()
	assert.False(t, a.Running())
	assert.Equal(t, 0, frames.Pending(), "stop cancels the pending frame")
	assert.Equal(t, 0, frames.Step())
}

func TestSessionDrivesAutoScroll(t *testing.T) {
	a, vp, frames := newScroller(1000)
	rec := &recorder{}
	s := NewSession(WithHooks(rec.hooks()), WithAutoScroll(a))
	s.RegisterDraggable("item", nil)
	s.RegisterDroppable(DroppableConfig{
		ID:      "bag:far",
		Measure: func() Rect { return Rect{X: 0, Y: 500 - vp.top, W: 200, H: 100} },
	})

	require.NoError(t, s.Start("item", Point{X: 10, Y: 399}))
	assert.True(t, a.Running())

	// Keep scrolling until the far target slides under the pointer.
	for i := 0; i < 100 && len(rec.overs) == 0; i++ {
		frames.Step()
	}
	require.Equal(t, []string{"bag:far"}, rec.overs)

	s.HandleKey("esc")
	assert.False(t, a.Running())
	assert.Equal(t, 0, frames.Pending())
}

func TestAutoScrollRestartFromHook(t *testing.T) {
	a, vp, frames := newScroller(1000)
	var s *Session
	restarts := 0
	s = NewSession(WithAutoScroll(a), WithHooks(Hooks{
		OnDragOver: func(DragOverEvent) {
			restarts++
			a.Stop()
			a.Start(s.Pointer)
		},
	}))
	s.RegisterDraggable("item", nil)
	s.RegisterDroppable(DroppableConfig{
		ID:      "bag:far",
		Measure: func() Rect { return Rect{X: 0, Y: 500 - vp.top, W: 200, H: 100} },
	})

	require.NoError(t, s.Start("item", Point{X: 10, Y: 399}))
	for i := 0; i < 100 && restarts == 0; i++ {
		frames.Step()
	}
	require.Equal(t, 1, restarts)
	assert.Equal(t, 1, frames.Pending(), "one frame loop after the restart")

	before := vp.top
	frames.Step()
	assert.LessOrEqual(t, vp.top-before, float64(DefaultMaxSpeed))
}
