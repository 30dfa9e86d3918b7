package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/id"
	"github.com/erazemk/packzen/internal/model"
)

// MoveFilter narrows ListMoves.
type MoveFilter struct {
	ItemID        string
	IncludeUndone bool
	Limit         uint64
}

const moveColumns = `m.id, m.trip_id, m.item_id, m.from_bag_id, m.from_container_id,
	m.to_bag_id, m.to_container_id, m.moved_at, m.moved_by, m.undone_at, COALESCE(ti.name, '')`

const moveFrom = `moves m LEFT JOIN trip_items ti ON ti.id = m.item_id`

func scanMove(row interface{ Scan(...any) error }) (*model.Move, error) {
	m := &model.Move{}
	err := row.Scan(&m.ID, &m.TripID, &m.ItemID, &m.FromBagID, &m.FromContainerID,
		&m.ToBagID, &m.ToContainerID, &m.MovedAt, &m.MovedBy, &m.UndoneAt, &m.ItemName)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MoveItemToBag places an item directly in a bag, or in no bag when bagID is
// nil, taking it out of any container.
func MoveItemToBag(ctx context.Context, db *sql.DB, itemID string, bagID, movedBy *string) (*model.TripItem, *model.Move, error) {
	return MoveItem(ctx, db, itemID, bagID, nil, movedBy)
}

// MoveItemToContainer places an item inside a container of the same trip.
// The item takes on the container's bag; its category is not touched.
func MoveItemToContainer(ctx context.Context, db *sql.DB, itemID, containerID string, movedBy *string) (*model.TripItem, *model.Move, error) {
	return MoveItem(ctx, db, itemID, nil, &containerID, movedBy)
}

// MoveItem changes an item's location and records the move. Moving an item
// to where it already is succeeds without recording anything; the returned
// move is nil in that case.
func MoveItem(ctx context.Context, db *sql.DB, itemID string, bagID, containerID, movedBy *string) (*model.TripItem, *model.Move, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getTripItem(ctx, tx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domainerrors.NotFoundf("item %s not found", itemID)
	}

	toBag, err := resolveTarget(ctx, tx, item, bagID, containerID)
	if err != nil {
		return nil, nil, err
	}

	if model.SameRef(item.ContainerItemID, containerID) && model.SameRef(item.BagID, toBag) {
		return item, nil, nil
	}

	if err := relocate(ctx, tx, item, toBag, containerID); err != nil {
		return nil, nil, err
	}

	moveID, err := id.Generate(id.PrefixMove)
	if err != nil {
		return nil, nil, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO moves (id, trip_id, item_id, from_bag_id, from_container_id, to_bag_id, to_container_id, moved_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		moveID, item.TripID, item.ID, item.BagID, item.ContainerItemID, toBag, containerID, movedBy,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("recording move: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing move: %w", err)
	}

	moved, err := GetTripItem(ctx, db, itemID)
	if err != nil {
		return nil, nil, err
	}
	move, err := GetMove(ctx, db, moveID)
	if err != nil {
		return nil, nil, err
	}
	return moved, move, nil
}

// GetMove returns a recorded move by ID.
func GetMove(ctx context.Context, db *sql.DB, moveID string) (*model.Move, error) {
	return getMove(ctx, db, moveID)
}

func getMove(ctx context.Context, q dbtx, moveID string) (*model.Move, error) {
	m, err := scanMove(q.QueryRowContext(ctx,
		`SELECT `+moveColumns+` FROM `+moveFrom+` WHERE m.id = ?`, moveID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting move: %w", err)
	}
	return m, nil
}

// ListMoves returns a trip's move history, newest first.
func ListMoves(ctx context.Context, db *sql.DB, tripID string, f MoveFilter) ([]model.Move, error) {
	qb := psql.Select(moveColumns).
		From(moveFrom).
		Where(sq.Eq{"m.trip_id": tripID}).
		OrderBy("m.moved_at DESC", "m.rowid DESC")

	if f.ItemID != "" {
		qb = qb.Where(sq.Eq{"m.item_id": f.ItemID})
	}
	if !f.IncludeUndone {
		qb = qb.Where(sq.Eq{"m.undone_at": nil})
	}
	if f.Limit > 0 {
		qb = qb.Limit(f.Limit)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building move query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing moves: %w", err)
	}
	defer rows.Close()

	var moves []model.Move
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning move: %w", err)
		}
		moves = append(moves, *m)
	}
	return moves, rows.Err()
}

// UndoMove puts the moved item back where the move found it. The item must
// still be where the move left it, and the original location must still be
// a valid destination.
func UndoMove(ctx context.Context, db *sql.DB, moveID string) (*model.TripItem, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := getMove(ctx, tx, moveID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domainerrors.NotFoundf("move %s not found", moveID)
	}
	if m.UndoneAt != nil {
		return nil, domainerrors.Conflictf("move %s was already undone", moveID)
	}

	item, err := getTripItem(ctx, tx, m.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domainerrors.NotFoundf("item %s no longer exists", m.ItemID)
	}
	if !model.SameRef(item.BagID, m.ToBagID) || !model.SameRef(item.ContainerItemID, m.ToContainerID) {
		return nil, domainerrors.Conflictf("%q has been moved since", item.Name)
	}

	toBag, err := resolveTarget(ctx, tx, item, m.FromBagID, m.FromContainerID)
	if err != nil {
		return nil, err
	}
	if err := relocate(ctx, tx, item, toBag, m.FromContainerID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE moves SET undone_at = CURRENT_TIMESTAMP WHERE id = ?`, moveID); err != nil {
		return nil, fmt.Errorf("marking move undone: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing undo: %w", err)
	}
	return GetTripItem(ctx, db, item.ID)
}
