package packing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/packzen/internal/model"
)

// Result describes what a committed operation did.
type Result struct {
	// Move is the recorded move; nil for adds and no-op moves.
	Move *model.Move
	// Created is the trip item created by an add.
	Created *model.TripItem
	// Updated is the item changed by an undo or a packed toggle.
	Updated *model.TripItem
	// Removed is the id of a removed item.
	Removed string
}

// Actions maps drops to persistence operations. Drag-and-drop and
// click-to-target both go through Drop.
type Actions struct {
	ops Operations
	log *slog.Logger
}

// NewActions creates the dispatcher. A nil logger uses slog.Default.
func NewActions(ops Operations, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Actions{ops: ops, log: logger}
}

// Drop performs exactly one operation chosen by payload kind and target
// kind: move to bag, move to container, or add a master item or template to
// the bag or container.
func (a *Actions) Drop(ctx context.Context, p Payload, t Target) (Result, error) {
	if err := Accepts(p, t); err != nil {
		return Result{}, err
	}

	switch p.Kind {
	case PayloadTripItem:
		var (
			mv  *model.Move
			err error
		)
		if t.IsContainer() {
			mv, err = a.ops.MoveItemToContainer(ctx, p.Item.ID, *t.ContainerID)
		} else {
			mv, err = a.ops.MoveItemToBag(ctx, p.Item.ID, t.BagID)
		}
		if err != nil {
			return Result{}, fmt.Errorf("move %q: %w", p.Item.Name, err)
		}
		a.log.Debug("item moved", "item", p.Item.ID, "target", t.DroppableID(), "recorded", mv != nil)
		return Result{Move: mv}, nil

	case PayloadMasterItem:
		it, err := a.ops.AddMasterItemToTrip(ctx, p.Master, t.BagID, t.ContainerID)
		if err != nil {
			return Result{}, fmt.Errorf("add %q: %w", p.Master.Name, err)
		}
		a.log.Debug("master item added", "master", p.Master.ID, "item", it.ID, "target", t.DroppableID())
		return Result{Created: it}, nil

	case PayloadTemplate:
		it, err := a.ops.AddCatalogTemplateToTrip(ctx, p.Template, t.BagID, t.ContainerID)
		if err != nil {
			return Result{}, fmt.Errorf("add %q: %w", p.Template.Name, err)
		}
		a.log.Debug("template added", "template", p.Template.ID, "item", it.ID, "target", t.DroppableID())
		return Result{Created: it}, nil
	}
	return Result{}, fmt.Errorf("%w: unknown payload", ErrInvalidDrop)
}

// Remove removes an item from the trip.
func (a *Actions) Remove(ctx context.Context, itemID string) (Result, error) {
	if err := a.ops.RemoveItemFromTrip(ctx, itemID); err != nil {
		return Result{}, fmt.Errorf("remove item: %w", err)
	}
	return Result{Removed: itemID}, nil
}
