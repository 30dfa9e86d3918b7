// Package dnd is a renderer-independent drag-and-drop engine.
//
// A host registers draggables (payloads) and droppables (targets with a live
// measure function), feeds pointer and key events into a Session through a
// PointerSensor, and receives drop and lifecycle hooks. Collision is resolved
// against rectangles measured at event time, so targets that move while the
// AutoScroller scrolls their viewport are always hit-tested where they are.
//
// The engine is not safe for concurrent use; all calls are expected to come
// from the host's event loop.
package dnd

// Point is a pointer position in host coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. Y grows downwards.
type Rect struct {
	X, Y, W, H float64
}

// PointerSize is the side of the square hit box placed around the pointer.
const PointerSize = 1

// PointerRect returns the hit box centred on p.
func PointerRect(p Point) Rect {
	return Rect{X: p.X - PointerSize/2.0, Y: p.Y - PointerSize/2.0, W: PointerSize, H: PointerSize}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Area returns the area of r, or 0 for an empty rectangle.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// Bottom returns the bottom edge of r.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Right returns the right edge of r.
func (r Rect) Right() float64 { return r.X + r.W }

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Intersect returns the overlap of r and o. The result is empty when they do
// not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Translate returns r moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Candidate is a droppable rectangle considered by ResolveCollision. Seq is
// the registration order; later registrations have higher values.
type Candidate struct {
	ID   string
	Rect Rect
	Seq  uint64
}

// ResolveCollision returns the candidate under the pointer rectangle. Only
// candidates whose rectangle overlaps the pointer are considered; the largest
// overlap wins and equal overlaps go to the most recently registered
// candidate, which favours inner targets drawn on top of outer ones. The
// result does not depend on the order of candidates. ok is false when
// nothing overlaps.
func ResolveCollision(pointer Rect, candidates []Candidate) (id string, ok bool) {
	var (
		bestArea float64
		bestSeq  uint64
	)
	for _, c := range candidates {
		area := pointer.Intersect(c.Rect).Area()
		if area <= 0 {
			continue
		}
		better := !ok ||
			area > bestArea ||
			(area == bestArea && c.Seq > bestSeq) ||
			(area == bestArea && c.Seq == bestSeq && c.ID > id)
		if better {
			id, bestArea, bestSeq, ok = c.ID, area, c.Seq, true
		}
	}
	return id, ok
}
