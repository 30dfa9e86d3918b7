package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/erazemk/packzen/internal/dnd"
	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/packing"
)

// Screen geometry, in cells.
const (
	titleRows   = 1
	statusRows  = 1
	sourceWidth = 28
	minColWidth = 22
)

type lineKind int

const (
	lineCategory lineKind = iota
	lineItem
	lineContainer
	lineChild
)

// line is one row of a bag column below its header.
type line struct {
	kind lineKind
	text string
	item model.TripItem
}

func (l line) hasItem() bool { return l.kind != lineCategory }

// column is the laid-out content of one bag.
type column struct {
	x, w  int
	group packing.BagGroup
	lines []line
	// spans maps a container id to its first and last line index.
	spans map[string][2]int
}

// sourceLine is a row in the source pane: a heading or a payload.
type sourceLine struct {
	heading string
	payload packing.Payload
}

// layout lays the view out into columns and re-registers every draggable
// and droppable in paint order: bag columns first, then the containers
// inside them, so containers win collision ties.
func (m *Model) layout() {
	view := m.board.View()
	m.cols = m.cols[:0]

	boardW := max(m.width-sourceWidth, 0)
	n := len(view.Bags)
	colW := minColWidth
	if n > 0 {
		colW = max(boardW/n, minColWidth)
	}
	for i, g := range view.Bags {
		c := column{x: sourceWidth + i*colW, w: colW, group: g, spans: make(map[string][2]int)}
		if c.x >= m.width {
			break
		}
		c.w = min(colW, m.width-c.x)
		for _, cg := range g.Categories {
			c.lines = append(c.lines, line{kind: lineCategory, text: strings.TrimSpace(cg.Icon + " " + cg.Name)})
			for _, it := range cg.Items {
				if cont, ok := view.Containers[it.ID]; ok {
					start := len(c.lines)
					c.lines = append(c.lines, line{kind: lineContainer, item: it,
						text: fmt.Sprintf("▣ %s (%d/%d)", it.Name, cont.Packed, cont.Count)})
					for _, child := range cont.Items {
						c.lines = append(c.lines, line{kind: lineChild, item: child, text: "  " + itemText(child)})
					}
					c.spans[it.ID] = [2]int{start, len(c.lines) - 1}
					continue
				}
				c.lines = append(c.lines, line{kind: lineItem, item: it, text: itemText(it)})
			}
		}
		m.cols = append(m.cols, c)
	}

	m.src = m.src[:0]
	var items []model.TripItem
	if snap := m.board.Snapshot(); snap != nil {
		items = snap.Items
	}
	heading := false
	for _, mi := range m.masters {
		p := packing.MasterPayload(mi)
		if !packing.Eligible(p, items) {
			continue
		}
		if !heading {
			m.src = append(m.src, sourceLine{heading: "My items"})
			heading = true
		}
		m.src = append(m.src, sourceLine{payload: p})
	}
	if len(m.templates) > 0 {
		m.src = append(m.src, sourceLine{heading: "Catalog"})
		for _, t := range m.templates {
			m.src = append(m.src, sourceLine{payload: packing.TemplatePayload(t)})
		}
	}

	m.clampScroll()
	m.register()
}

func itemText(it model.TripItem) string {
	box := "[ ]"
	switch {
	case it.Packed:
		box = "[x]"
	case it.Skipped:
		box = "[-]"
	}
	s := box + " " + it.Name
	if it.Quantity > 1 {
		s += fmt.Sprintf(" ×%d", it.Quantity)
	}
	return s
}

func (m *Model) register() {
	session := m.board.Session()
	session.ResetDroppables()

	seen := make(map[string]bool, len(m.dragIDs))
	for ci := range m.cols {
		c := &m.cols[ci]
		colRect := dnd.Rect{X: float64(c.x), Y: titleRows, W: float64(c.w), H: float64(m.bodyHeight())}
		m.board.RegisterTarget(packing.BagTarget(c.group.ID()), func() dnd.Rect { return colRect })
		for _, l := range c.lines {
			if l.hasItem() {
				seen[m.board.RegisterItem(l.item).ID()] = true
			}
		}
	}
	view := m.board.View()
	for ci := range m.cols {
		c := &m.cols[ci]
		for _, cg := range view.ContainersIn(&c.group) {
			span, ok := c.spans[cg.Container.ID]
			if !ok {
				continue
			}
			x, w := c.x, c.w
			m.board.RegisterTarget(packing.ContainerTarget(cg.Container), func() dnd.Rect {
				return m.lineRect(x, w, span[0], span[1])
			})
		}
	}
	for _, s := range m.src {
		if s.heading == "" {
			seen[m.board.RegisterSource(s.payload).ID()] = true
		}
	}

	for id := range m.dragIDs {
		if !seen[id] {
			session.UnregisterDraggable(id)
		}
	}
	m.dragIDs = seen
}

// lineRect is the on-screen rectangle of lines first..last of a column,
// clipped to the scrolled items area.
func (m *Model) lineRect(x, w, first, last int) dnd.Rect {
	top := float64(m.itemsTop()) + float64(first) - m.scrollRow()
	r := dnd.Rect{X: float64(x), Y: top, W: float64(w), H: float64(last - first + 1)}
	return r.Intersect(m.itemsRect())
}

func (m *Model) bodyHeight() int {
	return max(m.height-titleRows-statusRows, 0)
}

// itemsTop is the first screen row below the sticky bag headers.
func (m *Model) itemsTop() int { return titleRows + 1 }

func (m *Model) itemsHeight() int { return max(m.bodyHeight()-1, 0) }

func (m *Model) itemsRect() dnd.Rect {
	return dnd.Rect{
		X: sourceWidth,
		Y: float64(m.itemsTop()),
		W: float64(max(m.width-sourceWidth, 0)),
		H: float64(m.itemsHeight()),
	}
}

func (m *Model) contentHeight() int {
	h := 0
	for _, c := range m.cols {
		h = max(h, len(c.lines))
	}
	return h
}

// scrollRow is the scroll offset snapped to whole rows.
func (m *Model) scrollRow() float64 { return float64(int(m.scroll)) }

func (m *Model) clampScroll() {
	maxTop := float64(max(m.contentHeight()-m.itemsHeight(), 0))
	m.scroll = min(max(m.scroll, 0), maxTop)
	m.srcScroll = min(max(m.srcScroll, 0), max(len(m.src)-m.bodyHeight(), 0))
}

// boardViewport exposes the bag columns' shared vertical scroll to the
// auto-scroller.
type boardViewport struct{ m *Model }

func (v boardViewport) Bounds() dnd.Rect       { return v.m.itemsRect() }
func (v boardViewport) ScrollTop() float64     { return v.m.scroll }
func (v boardViewport) ScrollHeight() float64  { return float64(v.m.contentHeight()) }
func (v boardViewport) SetScrollTop(t float64) { v.m.scroll = t }

// hitKind says what is under a cell.
type hitKind int

const (
	hitNone hitKind = iota
	hitBagHeader
	hitContainer
	hitItem
	hitSource
	hitAction
)

type hit struct {
	kind    hitKind
	target  packing.Target
	item    model.TripItem
	payload packing.Payload
	// action is the revealed panel button index for hitAction.
	action int
}

// draggableID returns the id a press on h may start dragging.
func (h hit) draggableID() string {
	switch h.kind {
	case hitItem, hitContainer:
		return packing.TripItemPayload(h.item).DraggableID()
	case hitSource:
		return h.payload.DraggableID()
	}
	return ""
}

// hitTest resolves the cell at (x, y).
func (m *Model) hitTest(x, y int) hit {
	if y < titleRows || y >= titleRows+m.bodyHeight() {
		return hit{}
	}
	if x < sourceWidth {
		i := y - titleRows + m.srcScroll
		if i >= 0 && i < len(m.src) && m.src[i].heading == "" {
			return hit{kind: hitSource, payload: m.src[i].payload}
		}
		return hit{}
	}

	for _, c := range m.cols {
		if x < c.x || x >= c.x+c.w {
			continue
		}
		if y == titleRows {
			return hit{kind: hitBagHeader, target: packing.BagTarget(c.group.ID())}
		}
		i := y - m.itemsTop() + int(m.scrollRow())
		if i < 0 || i >= len(c.lines) || !c.lines[i].hasItem() {
			return hit{}
		}
		l := c.lines[i]
		if l.item.ID == m.board.Reveal().Revealed() {
			if n := x - (c.x + c.w - actionsWidth); n >= 0 {
				return hit{kind: hitAction, item: l.item, action: n * len(rowActions) / actionsWidth}
			}
		}
		if l.kind == lineContainer {
			return hit{kind: hitContainer, item: l.item, target: packing.ContainerTarget(l.item)}
		}
		return hit{kind: hitItem, item: l.item}
	}
	return hit{}
}

// fit pads or truncates s to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	for lipgloss.Width(s) > w {
		r := []rune(s)
		s = string(r[:len(r)-1])
	}
	return s + strings.Repeat(" ", w-lipgloss.Width(s))
}

// dropLeft removes n cells from the start of s.
func dropLeft(s string, n int) string {
	for n > 0 && s != "" {
		r := []rune(s)
		n -= lipgloss.Width(string(r[0]))
		s = string(r[1:])
	}
	return s
}
