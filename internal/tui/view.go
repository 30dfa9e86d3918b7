package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/packing"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	overStyle     = lipgloss.NewStyle().Background(lipgloss.Color("24"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	itemStyle     = lipgloss.NewStyle()
	packedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
	draggedStyle  = lipgloss.NewStyle().Faint(true)
	sourceHead    = lipgloss.NewStyle().Bold(true).Underline(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	flashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	packBtnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("71"))
	dropBtnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160"))
)

const helpText = "drag: move  click header: target  right-drag: actions  u: undo  r: refresh  q: quit"

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}

	rows := make([]string, 0, m.height)
	rows = append(rows, titleStyle.Render(fit(m.title(), m.width)))

	now := m.now()
	over, hasOver := m.overTarget()
	for y := titleRows; y < titleRows+m.bodyHeight(); y++ {
		var b strings.Builder
		b.WriteString(m.sourceCell(y))
		for _, c := range m.cols {
			if y == titleRows {
				b.WriteString(m.headerCell(c, over, hasOver))
				continue
			}
			b.WriteString(m.lineCell(c, y, now, over, hasOver))
		}
		rows = append(rows, b.String())
	}

	rows = append(rows, m.statusLine())
	return strings.Join(rows, "\n")
}

func (m *Model) title() string {
	name := m.opts.Title
	if snap := m.board.Snapshot(); snap != nil && snap.Trip != nil {
		name = snap.Trip.Name
	}
	if !m.loaded {
		return " " + name
	}
	p := m.board.View().Progress
	s := fmt.Sprintf(" %s  %d/%d packed (%d%%)", name, p.Packed, p.Total-p.Skipped, p.Percent())
	if t, ok := m.board.Selection().Target(); ok {
		s += "  → " + m.targetName(t)
	}
	return s
}

func (m *Model) targetName(t packing.Target) string {
	view := m.board.View()
	if t.IsContainer() {
		if cg, ok := view.Containers[*t.ContainerID]; ok {
			return cg.Container.Name
		}
	}
	if g := view.Bag(t.BagID); g != nil {
		return g.Name()
	}
	return "?"
}

func (m *Model) overTarget() (packing.Target, bool) {
	d, ok := m.board.Session().Over()
	if !ok {
		return packing.Target{}, false
	}
	t, ok := d.Target().(packing.Target)
	return t, ok
}

func (m *Model) sourceCell(y int) string {
	w := sourceWidth - 1
	i := y - titleRows + m.srcScroll
	text, style := "", itemStyle
	if i >= 0 && i < len(m.src) {
		s := m.src[i]
		if s.heading != "" {
			text, style = s.heading, sourceHead
		} else {
			text, style = "+ "+s.payload.Label(), sourceStyle
			if d, ok := m.board.Session().Draggable(s.payload.DraggableID()); ok && d.IsActive() {
				style = draggedStyle
			}
		}
	}
	return style.Render(fit(text, w)) + dividerStyle.Render("│")
}

func (m *Model) headerCell(c column, over packing.Target, hasOver bool) string {
	t := packing.BagTarget(c.group.ID())
	p := c.group.Progress
	text := fmt.Sprintf("%s %d/%d", c.group.Name(), p.Packed, p.Total-p.Skipped)

	style := headerStyle
	switch {
	case hasOver && over.Equal(t):
		style = overStyle.Bold(true)
	case m.board.Selection().IsSelected(t):
		style = selectedStyle
	}
	return style.Render(fit(text, c.w-1)) + " "
}

func (m *Model) lineCell(c column, y int, now time.Time, over packing.Target, hasOver bool) string {
	i := y - m.itemsTop() + int(m.scrollRow())
	if i < 0 || i >= len(c.lines) {
		return strings.Repeat(" ", c.w)
	}
	l := c.lines[i]
	w := c.w - 1

	style := itemStyle
	switch {
	case l.kind == lineCategory:
		style = categoryStyle
	case l.item.Packed:
		style = packedStyle
	}
	if l.hasItem() {
		if d, ok := m.board.Session().Draggable(packing.TripItemPayload(l.item).DraggableID()); ok && d.IsActive() {
			style = draggedStyle
		}
	}
	if hasOver && m.inOverSpan(c, i, over) {
		style = overStyle
	}
	if l.kind == lineContainer && m.board.Selection().IsSelected(packing.ContainerTarget(l.item)) {
		style = selectedStyle
	}

	text := fit(l.text, w)
	if !l.hasItem() {
		return style.Render(text) + " "
	}

	off := int(math.Round(m.board.Reveal().Row(l.item.ID).DisplayOffset(now)))
	switch {
	case off < 0:
		shift := min(-off, actionsWidth, w)
		return style.Render(fit(dropLeft(text, shift), w-shift)) + actionPanel(l.item, shift) + " "
	case off > 0:
		shift := min(off, w)
		return strings.Repeat(" ", shift) + style.Render(fit(text, w-shift)) + " "
	}
	return style.Render(text) + " "
}

// inOverSpan reports whether line i of c belongs to the hovered container.
func (m *Model) inOverSpan(c column, i int, over packing.Target) bool {
	if !over.IsContainer() {
		return false
	}
	span, ok := c.spans[*over.ContainerID]
	return ok && i >= span[0] && i <= span[1]
}

// actionPanel renders the left shift cells of a row's action panel.
func actionPanel(it model.TripItem, shift int) string {
	half := actionsWidth / 2
	label := " ✓ Pack"
	if it.Packed {
		label = " ↺ Unpack"
	}
	pack := fit(label, half)
	drop := fit(" ✗ Remove", actionsWidth-half)
	if shift <= half {
		return packBtnStyle.Render(fit(pack, shift))
	}
	return packBtnStyle.Render(pack) + dropBtnStyle.Render(fit(drop, shift-half))
}

func (m *Model) statusLine() string {
	if o, ok := m.board.DragOverlay(); ok {
		s := "Moving " + o.Label
		if t, over := m.overTarget(); over {
			s += " → " + m.targetName(t)
		}
		return flashStyle.Render(fit(s, m.width))
	}
	if m.flash != "" {
		return flashStyle.Render(fit(m.flash, m.width))
	}
	if m.loadErr != nil && !m.loaded {
		return flashStyle.Render(fit(m.loadErr.Error(), m.width))
	}
	return statusStyle.Render(fit(helpText, m.width))
}
