package packing

import (
	"context"
	"errors"

	"github.com/erazemk/packzen/internal/model"
)

// Operations is the persistence contract the board relies on. Moves return
// the recorded move, or nil when the item was already there.
type Operations interface {
	// MoveItemToBag is idempotent; a nil bag means "no bag". The item
	// leaves any container.
	MoveItemToBag(ctx context.Context, itemID string, bagID *string) (*model.Move, error)
	// MoveItemToContainer fails unless containerID is a container of the
	// same trip. The item adopts the container's bag.
	MoveItemToContainer(ctx context.Context, itemID, containerID string) (*model.Move, error)
	AddMasterItemToTrip(ctx context.Context, master model.MasterItem, bagID, containerID *string) (*model.TripItem, error)
	AddCatalogTemplateToTrip(ctx context.Context, tmpl model.CatalogTemplate, bagID, containerID *string) (*model.TripItem, error)
	RemoveItemFromTrip(ctx context.Context, itemID string) error
}

// Source loads the trip shown on a board.
type Source interface {
	Snapshot(ctx context.Context) (*model.Snapshot, error)
}

// Undoer reverts a recorded move.
type Undoer interface {
	UndoMove(ctx context.Context, moveID string) (*model.TripItem, error)
}

// PackedSetter updates an item's packed flag.
type PackedSetter interface {
	SetPacked(ctx context.Context, it model.TripItem, packed bool) (*model.TripItem, error)
}

var (
	// ErrInvalidDrop is returned when a payload cannot go to a target.
	ErrInvalidDrop = errors.New("packing: invalid drop")
	// ErrNoTarget is returned by AddToSelectedTarget without a selection.
	ErrNoTarget = errors.New("packing: no target selected")
	// ErrNothingToUndo is returned when no move is remembered.
	ErrNothingToUndo = errors.New("packing: nothing to undo")
	// ErrUnsupported is returned when the operations lack a capability.
	ErrUnsupported = errors.New("packing: operation not supported")
)
