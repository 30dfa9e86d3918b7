package packing

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/erazemk/packzen/internal/dnd"
	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/swipe"
)

// Op is a persistence call started by an interaction.
type Op func(ctx context.Context) (Result, error)

// Runner executes ops. It must call done on the board's goroutine, either
// inline or by posting back to the host loop.
type Runner func(op Op, done func(Result, error))

// InlineRunner runs ops synchronously with ctx.
func InlineRunner(ctx context.Context) Runner {
	return func(op Op, done func(Result, error)) {
		done(op(ctx))
	}
}

// Hooks let the host observe the board. All are optional.
type Hooks struct {
	OnDragStart   func(p Payload)
	OnDragEnd     func(p Payload, outcome dnd.State)
	OnSwipeReveal func(itemID string)
	// OnError receives failed operations for a non-blocking notification.
	OnError func(err error)
	// OnChange is called after an operation succeeded; hosts refetch.
	OnChange func(r Result)
}

// Config configures a Board.
type Config struct {
	Ops    Operations
	Source Source
	// Runner defaults to InlineRunner(context.Background()).
	Runner   Runner
	Scroller *dnd.AutoScroller
	Swipe    swipe.Config
	// ActivationDistance for the pointer sensor; 0 uses the default.
	ActivationDistance float64
	Hooks              Hooks
	Logger             *slog.Logger
}

// Board ties the drag session, swipe reveal, click-to-target selection and
// grouped view of one trip together. It is not safe for concurrent use,
// except Fetch which may run on any goroutine.
type Board struct {
	ops       Operations
	source    Source
	run       Runner
	actions   *Actions
	session   *dnd.Session
	sensor    *dnd.PointerSensor
	reveal    *swipe.RevealContext
	selection *Selection
	hooks     Hooks
	log       *slog.Logger

	snap     *model.Snapshot
	view     View
	issued   atomic.Uint64
	applied  uint64
	lastMove *model.Move
}

// NewBoard wires a board. Nothing is loaded until Refresh or Apply.
func NewBoard(cfg Config) *Board {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = InlineRunner(context.Background())
	}

	b := &Board{
		ops:    cfg.Ops,
		source: cfg.Source,
		run:    cfg.Runner,
		hooks:  cfg.Hooks,
		log:    cfg.Logger,
		view:   BuildView(nil, nil, nil),
	}
	b.actions = NewActions(cfg.Ops, cfg.Logger)
	b.selection = NewSelection(b.actions)
	b.reveal = swipe.NewRevealContext(cfg.Swipe)
	b.reveal.OnReveal = cfg.Hooks.OnSwipeReveal

	opts := []dnd.Option{
		dnd.WithLogger(cfg.Logger),
		dnd.WithHooks(dnd.Hooks{
			OnDragStart: b.dragStarted,
			OnDrop:      b.dropped,
			OnDragEnd:   b.dragEnded,
		}),
	}
	if cfg.Scroller != nil {
		opts = append(opts, dnd.WithAutoScroll(cfg.Scroller))
	}
	b.session = dnd.NewSession(opts...)
	b.sensor = dnd.NewPointerSensor(b.session, cfg.ActivationDistance)
	return b
}

// Session returns the drag session.
func (b *Board) Session() *dnd.Session { return b.session }

// Sensor returns the pointer sensor feeding the session.
func (b *Board) Sensor() *dnd.PointerSensor { return b.sensor }

// Reveal returns the swipe reveal context shared by the item rows.
func (b *Board) Reveal() *swipe.RevealContext { return b.reveal }

// Selection returns the click-to-target model.
func (b *Board) Selection() *Selection { return b.selection }

// View returns the grouped view of the last applied snapshot.
func (b *Board) View() *View { return &b.view }

// Snapshot returns the last applied snapshot, or nil.
func (b *Board) Snapshot() *model.Snapshot { return b.snap }

// LastMove returns the move UndoLastMove would revert.
func (b *Board) LastMove() *model.Move { return b.lastMove }

// Fetched is a loaded snapshot tagged with its request order.
type Fetched struct {
	seq  uint64
	Snap *model.Snapshot
}

// Fetch loads the trip. It may run off the board's goroutine; hand the
// result to Apply.
func (b *Board) Fetch(ctx context.Context) (Fetched, error) {
	seq := b.issued.Add(1)
	snap, err := b.source.Snapshot(ctx)
	if err != nil {
		return Fetched{}, fmt.Errorf("load trip: %w", err)
	}
	return Fetched{seq: seq, Snap: snap}, nil
}

// Apply installs a fetched snapshot and regroups. A result older than the
// one already applied is dropped, so the last refetch issued wins. It
// reports whether the snapshot was applied.
func (b *Board) Apply(f Fetched) bool {
	if f.Snap == nil || f.seq < b.applied {
		return false
	}
	b.applied = f.seq
	b.snap = f.Snap
	b.view = BuildView(f.Snap.Items, f.Snap.Bags, f.Snap.Categories)
	b.prune()
	return true
}

// Refresh fetches and applies in one step.
func (b *Board) Refresh(ctx context.Context) error {
	f, err := b.Fetch(ctx)
	if err != nil {
		return err
	}
	b.Apply(f)
	return nil
}

// prune drops transient state that points at things no longer in the trip.
func (b *Board) prune() {
	present := make(map[string]bool, len(b.snap.Items))
	for _, it := range b.snap.Items {
		present[it.ID] = true
	}
	b.reveal.Retain(func(id string) bool { return present[id] })

	t, ok := b.selection.Target()
	if !ok {
		return
	}
	if t.IsContainer() {
		if _, found := b.view.Containers[*t.ContainerID]; !found {
			b.selection.ClearTarget()
		}
		return
	}
	if b.view.Bag(t.BagID) == nil {
		b.selection.ClearTarget()
	}
}

// RegisterItem makes a trip item draggable.
func (b *Board) RegisterItem(it model.TripItem) *dnd.Draggable {
	return b.RegisterSource(TripItemPayload(it))
}

// RegisterSource makes any payload draggable.
func (b *Board) RegisterSource(p Payload) *dnd.Draggable {
	return b.session.RegisterDraggable(p.DraggableID(), p)
}

// RegisterTarget makes a bag or container a drop target measured by
// measure. Register inner targets after the outer ones they sit in.
func (b *Board) RegisterTarget(t Target, measure func() dnd.Rect) *dnd.Droppable {
	return b.session.RegisterDroppable(dnd.DroppableConfig{
		ID:      t.DroppableID(),
		Target:  t,
		Measure: measure,
		Accepts: func(payload any) bool {
			p, ok := payload.(Payload)
			return ok && Accepts(p, t) == nil
		},
	})
}

// CancelActiveDrag aborts a drag in progress without any operation.
func (b *Board) CancelActiveDrag() bool {
	return b.session.Cancel()
}

// Overlay describes the label following the pointer during a drag.
type Overlay struct {
	Label    string
	Category string
	At       dnd.Point
	OverID   string
}

// DragOverlay returns the overlay for the active drag.
func (b *Board) DragOverlay() (Overlay, bool) {
	_, payload, ok := b.session.Active()
	if !ok {
		return Overlay{}, false
	}
	p, _ := payload.(Payload)
	o := Overlay{Label: p.Label(), Category: p.Category(), At: b.session.Pointer()}
	if d, over := b.session.Over(); over {
		o.OverID = d.ID()
	}
	return o, true
}

func (b *Board) dragStarted(e dnd.DragStartEvent) {
	b.reveal.CloseAll()
	b.reveal.SetDisabled(true)
	if p, ok := e.Payload.(Payload); ok && b.hooks.OnDragStart != nil {
		b.hooks.OnDragStart(p)
	}
}

func (b *Board) dragEnded(e dnd.DragEndEvent) {
	b.reveal.SetDisabled(false)
	if p, ok := e.Payload.(Payload); ok && b.hooks.OnDragEnd != nil {
		b.hooks.OnDragEnd(p, e.Outcome)
	}
}

func (b *Board) dropped(e dnd.DropEvent) {
	p, ok := e.Payload.(Payload)
	t, ok2 := e.Target.(Target)
	if !ok || !ok2 {
		b.log.Debug("drop ignored", "draggable", e.DraggableID, "target", e.DroppableID)
		return
	}
	b.Drop(p, t)
}

// Drop commits p onto t. Invalid combinations are ignored silently.
func (b *Board) Drop(p Payload, t Target) {
	if err := Accepts(p, t); err != nil {
		b.log.Debug("drop rejected", "payload", p.DraggableID(), "target", t.DroppableID(), "error", err)
		return
	}
	b.exec(func(ctx context.Context) (Result, error) {
		return b.actions.Drop(ctx, p, t)
	})
}

// SelectTarget makes a bag or container the click-to-add target.
func (b *Board) SelectTarget(bagID, containerID *string) {
	b.selection.SelectTarget(bagID, containerID)
}

// ClearTarget clears the click-to-add target.
func (b *Board) ClearTarget() {
	b.selection.ClearTarget()
}

// AddToSelectedTarget adds a master item or template to the selected
// target.
func (b *Board) AddToSelectedTarget(p Payload) error {
	op, err := b.selection.addOp(p)
	if err != nil {
		return err
	}
	b.exec(op)
	return nil
}

// Remove removes an item from the trip and closes its row.
func (b *Board) Remove(itemID string) {
	b.reveal.Close(itemID)
	b.exec(func(ctx context.Context) (Result, error) {
		return b.actions.Remove(ctx, itemID)
	})
}

// TogglePacked flips an item's packed flag.
func (b *Board) TogglePacked(it model.TripItem) error {
	setter, ok := b.ops.(PackedSetter)
	if !ok {
		return ErrUnsupported
	}
	b.exec(func(ctx context.Context) (Result, error) {
		updated, err := setter.SetPacked(ctx, it, !it.Packed)
		if err != nil {
			return Result{}, fmt.Errorf("update %q: %w", it.Name, err)
		}
		return Result{Updated: updated}, nil
	})
	return nil
}

// UndoLastMove reverts the last move committed from this board.
func (b *Board) UndoLastMove() error {
	if b.lastMove == nil {
		return ErrNothingToUndo
	}
	undoer, ok := b.ops.(Undoer)
	if !ok {
		return ErrUnsupported
	}

	mv := b.lastMove
	b.lastMove = nil
	b.exec(func(ctx context.Context) (Result, error) {
		it, err := undoer.UndoMove(ctx, mv.ID)
		if err != nil {
			return Result{}, fmt.Errorf("undo move: %w", err)
		}
		return Result{Updated: it}, nil
	})
	return nil
}

func (b *Board) exec(op Op) {
	b.run(op, b.complete)
}

func (b *Board) complete(r Result, err error) {
	if err != nil {
		b.log.Warn("packing operation failed", "error", err)
		if b.hooks.OnError != nil {
			b.hooks.OnError(err)
		}
		return
	}
	if r.Move != nil {
		b.lastMove = r.Move
	}
	if b.hooks.OnChange != nil {
		b.hooks.OnChange(r)
	}
}
