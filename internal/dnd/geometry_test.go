package dnd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}

	assert.Equal(t, Rect{X: 5, Y: 5, W: 5, H: 5}, a.Intersect(Rect{X: 5, Y: 5, W: 10, H: 10}))
	assert.True(t, a.Intersect(Rect{X: 10, Y: 0, W: 5, H: 5}).Empty(), "touching edges do not overlap")
	assert.True(t, a.Intersect(Rect{X: 20, Y: 20, W: 5, H: 5}).Empty())
	assert.Equal(t, 0.0, Rect{W: -1, H: 4}.Area())
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}

	assert.True(t, r.Contains(Point{X: 10, Y: 10}))
	assert.True(t, r.Contains(Point{X: 14.9, Y: 14.9}))
	assert.False(t, r.Contains(Point{X: 15, Y: 12}))
	assert.False(t, r.Contains(Point{X: 9, Y: 12}))
}

func TestResolveCollision(t *testing.T) {
	bag := Candidate{ID: "bag", Rect: Rect{X: 0, Y: 0, W: 100, H: 300}, Seq: 1}
	kit := Candidate{ID: "kit", Rect: Rect{X: 10, Y: 50, W: 80, H: 40}, Seq: 2}
	other := Candidate{ID: "other", Rect: Rect{X: 200, Y: 0, W: 100, H: 300}, Seq: 3}

	tests := []struct {
		name    string
		pointer Point
		want    string
		wantOK  bool
	}{
		{"outer only", Point{X: 50, Y: 200}, "bag", true},
		{"nested target wins tie", Point{X: 50, Y: 60}, "kit", true},
		{"second column", Point{X: 250, Y: 10}, "other", true},
		{"gap between columns", Point{X: 150, Y: 10}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ResolveCollision(PointerRect(tt.pointer), []Candidate{bag, kit, other})
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestResolveCollisionNoCandidates(t *testing.T) {
	id, ok := ResolveCollision(PointerRect(Point{X: 1, Y: 1}), nil)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestResolveCollisionLargestOverlapWins(t *testing.T) {
	pointer := Rect{X: 0, Y: 0, W: 10, H: 10}
	small := Candidate{ID: "small", Rect: Rect{X: 8, Y: 0, W: 10, H: 10}, Seq: 5}
	large := Candidate{ID: "large", Rect: Rect{X: -5, Y: 0, W: 10, H: 10}, Seq: 1}

	id, ok := ResolveCollision(pointer, []Candidate{small, large})
	assert.True(t, ok)
	assert.Equal(t, "large", id, "overlap area beats registration order")
}

func TestResolveCollisionOrderIndependent(t *testing.T) {
	pointer := Rect{X: 40, Y: 40, W: 20, H: 20}
	candidates := []Candidate{
		{ID: "a", Rect: Rect{X: 0, Y: 0, W: 100, H: 100}, Seq: 1},
		{ID: "b", Rect: Rect{X: 30, Y: 30, W: 40, H: 40}, Seq: 2},
		{ID: "c", Rect: Rect{X: 45, Y: 45, W: 5, H: 5}, Seq: 3},
		{ID: "d", Rect: Rect{X: 0, Y: 0, W: 100, H: 100}, Seq: 4},
	}

	want, ok := ResolveCollision(pointer, candidates)
	assert.True(t, ok)
	assert.Equal(t, "d", want, "full overlap tie goes to the later registration")

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := append([]Candidate(nil), candidates...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, _ := ResolveCollision(pointer, shuffled)
		assert.Equal(t, want, got)
	}
}
