package swipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

// swipe performs a horizontal gesture on r from x=200 by dx over d ms.
func swipe(r *Row, dx float64, d int) {
	r.TouchStart(200, 50, t0)
	r.TouchMove(200+dx/2, 50)
	r.TouchMove(200+dx, 50)
	r.TouchEnd(ms(d))
}

func TestVelocityRule(t *testing.T) {
	tests := []struct {
		name   string
		dx     float64
		ms     int
		reveal bool
	}{
		{"fast short swipe left reveals", -10, 5, true},
		{"slow swipe past half reveals", -70, 600, true},
		{"slow swipe under half closes", -40, 600, false},
		{"fast swipe right closes", 10, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewRevealContext(Config{ActionsWidth: 120})
			r := ctx.Row("a")
			swipe(r, tt.dx, tt.ms)

			assert.Equal(t, tt.reveal, r.IsRevealed())
			if tt.reveal {
				assert.Equal(t, -120.0, r.Offset())
			} else {
				assert.Equal(t, 0.0, r.Offset())
			}
			assert.True(t, r.Animating(), "snap is animated")
		})
	}
}

func TestFastSwipeRightClosesRevealedRow(t *testing.T) {
	ctx := NewRevealContext(Config{})
	r := ctx.Row("a")
	ctx.Reveal("a")
	require.True(t, r.IsRevealed())

	swipe(r, 12, 5)
	assert.False(t, r.IsRevealed())
	assert.Equal(t, "", ctx.Revealed())
}

func TestMutualExclusion(t *testing.T) {
	ctx := NewRevealContext(Config{})
	a, b := ctx.Row("a"), ctx.Row("b")

	var revealed []string
	ctx.OnReveal = func(id string) { revealed = append(revealed, id) }

	swipe(a, -80, 100)
	require.True(t, a.IsRevealed())

	swipe(b, -80, 100)
	assert.True(t, b.IsRevealed())
	assert.False(t, a.IsRevealed())
	assert.Equal(t, 0.0, a.Offset())
	assert.Equal(t, "b", ctx.Revealed())
	assert.Equal(t, []string{"a", "b"}, revealed)
}

func TestRubberBand(t *testing.T) {
	ctx := NewRevealContext(Config{ActionsWidth: 120, Resistance: 0.3})
	r := ctx.Row("a")

	r.TouchStart(200, 0, t0)
	r.TouchMove(200-220, 0)
	assert.InDelta(t, -120-100*0.3, r.Offset(), 1e-9, "past fully open")
	assert.False(t, r.Animating(), "tracking is not animated")

	r.TouchMove(250, 0)
	assert.InDelta(t, 50*0.3, r.Offset(), 1e-9, "past fully closed")

	for _, x := range []float64{-1000, -300, 0, 150, 400, 2000} {
		r.TouchMove(x, 0)
		raw := x - 200
		switch {
		case raw > 0:
			assert.LessOrEqual(t, r.Offset(), 0.3*raw)
		case raw < -120:
			assert.GreaterOrEqual(t, r.Offset(), -120+0.3*(raw+120))
		}
	}
}

func TestBaselineFromRevealedRow(t *testing.T) {
	ctx := NewRevealContext(Config{ActionsWidth: 120})
	r := ctx.Row("a")
	ctx.Reveal("a")

	r.TouchStart(100, 0, t0)
	r.TouchMove(130, 0)
	assert.Equal(t, -90.0, r.Offset())

	// Slow drag leaves it 90px open, past half: stays revealed.
	r.TouchEnd(ms(800))
	assert.True(t, r.IsRevealed())
}

func TestDirectionLock(t *testing.T) {
	ctx := NewRevealContext(Config{})
	r := ctx.Row("a")

	r.TouchStart(0, 0, t0)
	assert.False(t, r.TouchMove(3, 2), "below threshold")
	assert.Equal(t, PhaseTracking, r.Phase())

	assert.False(t, r.TouchMove(6, 6), "diagonal is a scroll")
	assert.Equal(t, PhaseVertical, r.Phase())

	// Once vertical, horizontal motion is ignored.
	assert.False(t, r.TouchMove(-100, 6))
	assert.Equal(t, 0.0, r.Offset())
	r.TouchEnd(ms(50))
	assert.False(t, r.IsRevealed())

	r.TouchStart(0, 0, t0)
	assert.True(t, r.TouchMove(-8, 2))
	assert.Equal(t, PhaseHorizontal, r.Phase())
}

func TestDisabledIgnoresNewGestures(t *testing.T) {
	ctx := NewRevealContext(Config{})
	r := ctx.Row("a")

	ctx.SetDisabled(true)
	swipe(r, -100, 50)
	assert.False(t, r.IsRevealed())
	assert.Equal(t, PhaseIdle, r.Phase())

	// Disabling mid-gesture lets the current gesture finish.
	ctx.SetDisabled(false)
	r.TouchStart(200, 0, t0)
	r.TouchMove(100, 0)
	ctx.SetDisabled(true)
	r.TouchEnd(ms(50))
	assert.True(t, r.IsRevealed())
}

func TestTaps(t *testing.T) {
	ctx := NewRevealContext(Config{})
	r := ctx.Row("a")

	opened := 0
	open := func() { opened++ }

	assert.True(t, r.TapContent(open))
	assert.Equal(t, 1, opened)

	ctx.Reveal("a")
	assert.False(t, r.TapContent(open), "first tap only dismisses")
	assert.Equal(t, 1, opened)
	assert.False(t, r.IsRevealed())

	ctx.Reveal("a")
	acted := false
	r.TapAction(func() { acted = true })
	assert.True(t, acted)
	assert.False(t, r.IsRevealed())
}

func TestDisplayOffsetEases(t *testing.T) {
	ctx := NewRevealContext(Config{ActionsWidth: 100, SnapDuration: 100 * time.Millisecond})
	ctx.now = func() time.Time { return t0 }
	r := ctx.Row("a")
	ctx.Reveal("a")

	assert.Equal(t, 0.0, r.DisplayOffset(t0))
	mid := r.DisplayOffset(ms(50))
	assert.Less(t, mid, -50.0, "ease-out is past halfway at half time")
	assert.Greater(t, mid, -100.0)
	assert.Equal(t, -100.0, r.DisplayOffset(ms(100)))
}

func TestRemoveRevealedRow(t *testing.T) {
	ctx := NewRevealContext(Config{})
	ctx.Reveal("a")
	ctx.Remove("a")
	assert.Equal(t, "", ctx.Revealed())
	ctx.CloseAll()
}

func TestRetain(t *testing.T) {
	ctx := NewRevealContext(Config{})
	keep := ctx.Row("keep")
	ctx.Row("gone")
	ctx.Reveal("gone")

	ctx.Retain(func(id string) bool { return id == "keep" })
	assert.Len(t, ctx.rows, 1)
	assert.Same(t, keep, ctx.Row("keep"))
	assert.Equal(t, "", ctx.Revealed())
}
