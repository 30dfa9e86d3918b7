package dnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerSensorActivationDistance(t *testing.T) {
	s, rec := newBoard(t)
	ps := NewPointerSensor(s, 0)

	ps.Down("item:socks", Point{X: 300, Y: 10})
	ps.Move(Point{X: 303, Y: 10})
	assert.Equal(t, StateIdle, s.State(), "below threshold")

	ps.Move(Point{X: 150, Y: 20})
	assert.Equal(t, StateDragging, s.State())

	outcome, clicked := ps.Up(Point{X: 150, Y: 20})
	assert.Equal(t, StateDropped, outcome)
	assert.False(t, clicked)
	require.Len(t, rec.drops, 1)
}

func TestPointerSensorClick(t *testing.T) {
	s, rec := newBoard(t)
	ps := NewPointerSensor(s, 5)

	ps.Down("item:socks", Point{X: 10, Y: 10})
	ps.Move(Point{X: 12, Y: 12})
	outcome, clicked := ps.Up(Point{X: 12, Y: 12})

	assert.True(t, clicked)
	assert.Equal(t, StateIdle, outcome)
	assert.Empty(t, rec.starts)
}

func TestPointerSensorNoRestartAfterEscape(t *testing.T) {
	s, rec := newBoard(t)
	ps := NewPointerSensor(s, 5)

	ps.Down("item:socks", Point{X: 300, Y: 10})
	ps.Move(Point{X: 250, Y: 10})
	require.True(t, ps.Key("esc"))

	ps.Move(Point{X: 150, Y: 20})
	assert.Equal(t, StateIdle, s.State())

	outcome, clicked := ps.Up(Point{X: 150, Y: 20})
	assert.Equal(t, StateIdle, outcome)
	assert.False(t, clicked)
	assert.Empty(t, rec.drops)
	assert.Len(t, rec.starts, 1)
}

func TestPointerSensorPressOutsideSource(t *testing.T) {
	s, _ := newBoard(t)
	ps := NewPointerSensor(s, 5)

	ps.Down("", Point{X: 0, Y: 0})
	ps.Move(Point{X: 100, Y: 100})
	assert.Equal(t, StateIdle, s.State())

	_, clicked := ps.Up(Point{X: 100, Y: 100})
	assert.True(t, clicked)
}
