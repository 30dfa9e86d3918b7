package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/erazemk/packzen/internal/dnd"
	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/packing"
	"github.com/erazemk/packzen/internal/swipe"
)

// Swipe panel geometry, in cells.
const actionsWidth = 16

type rowAction int

const (
	actionTogglePacked rowAction = iota
	actionRemove
)

var rowActions = []rowAction{actionTogglePacked, actionRemove}

type fetchedMsg struct {
	f   packing.Fetched
	err error
}

type libraryMsg struct {
	templates []model.CatalogTemplate
	masters   []model.MasterItem
	err       error
}

// opDoneMsg carries a finished board operation back to the UI goroutine.
type opDoneMsg struct {
	r    packing.Result
	err  error
	done func(packing.Result, error)
}

type frameMsg struct{}

type flashDoneMsg struct{ seq int }

// Model is the bubbletea model. It owns the board and every piece of
// interaction state; all of it is touched only from Update.
type Model struct {
	ctx      context.Context
	opts     Options
	log      *slog.Logger
	board    *packing.Board
	frames   *dnd.ManualFrames
	scroller *dnd.AutoScroller
	now      func() time.Time
	tick     func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	width, height int
	scroll        float64
	srcScroll     int
	cols          []column
	src           []sourceLine
	dragIDs       map[string]bool

	templates []model.CatalogTemplate
	masters   []model.MasterItem
	loaded    bool
	loadErr   error

	press    hit
	swiping  *swipe.Row
	pending  []tea.Cmd
	ticking  bool
	flash    string
	flashSeq int
}

// New builds the model. Nothing is loaded until the program runs Init.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Model{
		ctx:     ctx,
		opts:    opts,
		log:     opts.Logger.With("component", "tui"),
		frames:  dnd.NewManualFrames(),
		now:     time.Now,
		tick:    tea.Tick,
		dragIDs: make(map[string]bool),
	}
	m.scroller = dnd.NewAutoScroller(boardViewport{m}, m.frames, dnd.AutoScrollConfig{
		EdgeThreshold: 2,
		MaxSpeed:      1,
	})
	m.board = packing.NewBoard(packing.Config{
		Ops:      opts.Trip,
		Source:   opts.Trip,
		Runner:   m.run,
		Scroller: m.scroller,
		Swipe: swipe.Config{
			ActionsWidth:      actionsWidth,
			LockThreshold:     1,
			VelocityThreshold: 0.02,
			SnapDuration:      150 * time.Millisecond,
		},
		ActivationDistance: 1,
		Hooks: packing.Hooks{
			OnDragStart: func(packing.Payload) { m.startFrames() },
			OnError:     func(err error) { m.showFlash(errorText(err)) },
			OnChange:    func(packing.Result) { m.queue(m.fetchCmd()) },
		},
		Logger: opts.Logger,
	})
	return m
}

// Board exposes the underlying board.
func (m *Model) Board() *packing.Board { return m.board }

// run is the board's Runner: ops execute as commands and their results are
// delivered back through Update.
func (m *Model) run(op packing.Op, done func(packing.Result, error)) {
	ctx := m.ctx
	m.queue(func() tea.Msg {
		r, err := op(ctx)
		return opDoneMsg{r: r, err: err, done: done}
	})
}

func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

func (m *Model) drain() tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

func (m *Model) fetchCmd() tea.Cmd {
	ctx, board := m.ctx, m.board
	return func() tea.Msg {
		f, err := board.Fetch(ctx)
		return fetchedMsg{f: f, err: err}
	}
}

func (m *Model) libraryCmd() tea.Cmd {
	lib := m.opts.Library
	if lib == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		templates, err := lib.Catalog(ctx, "")
		if err != nil {
			return libraryMsg{err: err}
		}
		masters, err := lib.ListMasterItems(ctx)
		return libraryMsg{templates: templates, masters: masters, err: err}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.libraryCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case tea.KeyMsg:
		if quit := m.handleKey(msg); quit {
			return m, tea.Quit
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case fetchedMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			m.showFlash(errorText(msg.err))
			break
		}
		m.loadErr = nil
		if m.board.Apply(msg.f) {
			m.loaded = true
			m.layout()
		}

	case libraryMsg:
		if msg.err != nil {
			m.showFlash(errorText(msg.err))
			break
		}
		m.templates, m.masters = msg.templates, msg.masters
		m.layout()

	case opDoneMsg:
		msg.done(msg.r, msg.err)

	case frameMsg:
		m.ticking = false
		m.frames.Step()
		if m.animating() {
			m.startFrames()
		}

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
	}
	return m, m.drain()
}

// animating reports whether another frame is needed: the auto-scroller is
// running or a swipe snap is still easing.
func (m *Model) animating() bool {
	if m.scroller.Running() || m.frames.Pending() > 0 {
		return true
	}
	if id := m.board.Reveal().Revealed(); id != "" && m.settling(id) {
		return true
	}
	return m.swiping != nil && m.settling(m.swiping.ID())
}

func (m *Model) settling(rowID string) bool {
	r := m.board.Reveal().Row(rowID)
	return r.Animating() && r.DisplayOffset(m.now()) != r.Offset()
}

func (m *Model) startFrames() {
	if m.ticking {
		return
	}
	m.ticking = true
	m.queue(m.tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} }))
}

func (m *Model) showFlash(s string) {
	m.flashSeq++
	m.flash = s
	seq := m.flashSeq
	m.queue(m.tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} }))
}

func errorText(err error) string {
	switch {
	case errors.Is(err, packing.ErrNoTarget):
		return "Select a bag or container first"
	case errors.Is(err, packing.ErrNothingToUndo):
		return "Nothing to undo"
	case errors.Is(err, packing.ErrUnsupported):
		return "Not supported by this trip"
	}
	return err.Error()
}

func (m *Model) handleKey(msg tea.KeyMsg) (quit bool) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return true
	case "esc":
		switch {
		case m.board.Sensor().Key(key):
			m.showFlash("Drag cancelled")
		case m.board.Reveal().Revealed() != "":
			m.board.Reveal().CloseAll()
			m.startFrames()
		default:
			m.board.ClearTarget()
		}
	case "u":
		if err := m.board.UndoLastMove(); err != nil {
			m.showFlash(errorText(err))
		}
	case "r":
		m.queue(m.fetchCmd())
		m.queue(m.libraryCmd())
	}
	return false
}

func cellPoint(x, y int) dnd.Point {
	return dnd.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := cellPoint(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		m.wheel(msg)
		return
	case tea.MouseButtonRight:
		m.handleSwipe(msg)
		return
	}
	if m.swiping != nil && msg.Action != tea.MouseActionPress {
		m.handleSwipe(msg)
		return
	}

	sensor := m.board.Sensor()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.press = m.hitTest(msg.X, msg.Y)
		sensor.Down(m.press.draggableID(), p)
	case tea.MouseActionMotion:
		sensor.Move(p)
	case tea.MouseActionRelease:
		if _, clicked := sensor.Up(p); clicked {
			m.click(m.press)
		}
		m.press = hit{}
	}
}

func (m *Model) wheel(msg tea.MouseMsg) {
	delta := 1
	if msg.Button == tea.MouseButtonWheelUp {
		delta = -1
	}
	if msg.X < sourceWidth {
		m.srcScroll += delta
	} else {
		// The auto-scroller owns the board while a pointer is down.
		if m.board.Session().ListScrollSuspended() {
			return
		}
		m.scroll = m.scrollRow() + float64(delta)
	}
	m.clampScroll()
	m.board.Session().Refresh()
}

// click handles a press that never became a drag.
func (m *Model) click(h hit) {
	reveal := m.board.Reveal()
	switch h.kind {
	case hitBagHeader:
		m.toggleTarget(h.target)
	case hitSource:
		if err := m.board.AddToSelectedTarget(h.payload); err != nil {
			m.showFlash(errorText(err))
		}
	case hitAction:
		reveal.Row(h.item.ID).TapAction(func() { m.rowAction(h.item, rowActions[h.action]) })
		m.startFrames()
	case hitContainer:
		if reveal.Row(h.item.ID).TapContent(func() { m.toggleTarget(h.target) }) {
			return
		}
		m.startFrames()
	case hitItem:
		if !reveal.Row(h.item.ID).TapContent(nil) {
			m.startFrames()
		}
	}
}

func (m *Model) toggleTarget(t packing.Target) {
	sel := m.board.Selection()
	if sel.IsSelected(t) {
		m.board.ClearTarget()
		return
	}
	m.board.SelectTarget(t.BagID, t.ContainerID)
}

func (m *Model) rowAction(it model.TripItem, a rowAction) {
	switch a {
	case actionTogglePacked:
		if err := m.board.TogglePacked(it); err != nil {
			m.showFlash(errorText(err))
		}
	case actionRemove:
		m.board.Remove(it.ID)
	}
}

// handleSwipe drives the swipe recognizer with the right mouse button.
func (m *Model) handleSwipe(msg tea.MouseMsg) {
	x, y := float64(msg.X), float64(msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		h := m.hitTest(msg.X, msg.Y)
		if h.kind != hitItem && h.kind != hitContainer && h.kind != hitAction {
			return
		}
		if m.board.Session().Dragging() {
			return
		}
		row := m.board.Reveal().Row(h.item.ID)
		row.TouchStart(x, y, m.now())
		if row.Phase() == swipe.PhaseTracking {
			m.swiping = row
		}
	case tea.MouseActionMotion:
		if m.swiping != nil {
			m.swiping.TouchMove(x, y)
		}
	case tea.MouseActionRelease:
		if m.swiping != nil {
			m.swiping.TouchEnd(m.now())
			m.swiping = nil
			m.startFrames()
		}
	}
}
