package store

import (
	"context"
	"database/sql"
	"fmt"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/id"
	"github.com/erazemk/packzen/internal/model"
)

const bagColumns = `id, trip_id, name, type, color, sort_order`

func scanBag(row interface{ Scan(...any) error }) (*model.Bag, error) {
	b := &model.Bag{}
	if err := row.Scan(&b.ID, &b.TripID, &b.Name, &b.Type, &b.Color, &b.SortOrder); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBag appends a bag to a trip. The bag is placed after the existing ones.
func CreateBag(ctx context.Context, db *sql.DB, tripID, name, bagType, color string) (*model.Bag, error) {
	bagID, err := id.Generate(id.PrefixBag)
	if err != nil {
		return nil, err
	}
	if bagType == "" {
		bagType = model.BagTypeCustom
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO bags (id, trip_id, name, type, color, sort_order)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM bags WHERE trip_id = ?))`,
		bagID, tripID, name, bagType, color, tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating bag: %w", err)
	}

	return GetBag(ctx, db, bagID)
}

// GetBag returns a bag by ID.
func GetBag(ctx context.Context, db *sql.DB, bagID string) (*model.Bag, error) {
	return getBag(ctx, db, bagID)
}

func getBag(ctx context.Context, q dbtx, bagID string) (*model.Bag, error) {
	b, err := scanBag(q.QueryRowContext(ctx, `SELECT `+bagColumns+` FROM bags WHERE id = ?`, bagID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bag: %w", err)
	}
	return b, nil
}

// ListBags returns a trip's bags in display order.
func ListBags(ctx context.Context, db *sql.DB, tripID string) ([]model.Bag, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+bagColumns+` FROM bags WHERE trip_id = ? ORDER BY sort_order, name`, tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bags: %w", err)
	}
	defer rows.Close()

	var bags []model.Bag
	for rows.Next() {
		b, err := scanBag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bag: %w", err)
		}
		bags = append(bags, *b)
	}
	return bags, rows.Err()
}

// UpdateBag updates a bag's details and position.
func UpdateBag(ctx context.Context, db *sql.DB, bagID, name, bagType, color string, sortOrder int) (*model.Bag, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE bags SET name = ?, type = ?, color = ?, sort_order = ? WHERE id = ?`,
		name, bagType, color, sortOrder, bagID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating bag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domainerrors.NotFoundf("bag %s not found", bagID)
	}
	return GetBag(ctx, db, bagID)
}

// DeleteBag removes a bag. Its items, including those inside its containers,
// end up with no bag.
func DeleteBag(ctx context.Context, db *sql.DB, bagID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM bags WHERE id = ?`, bagID)
	if err != nil {
		return fmt.Errorf("deleting bag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainerrors.NotFoundf("bag %s not found", bagID)
	}
	return nil
}
