package store

import (
	"context"
	"database/sql"
	"fmt"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/id"
	"github.com/erazemk/packzen/internal/model"
)

const tripColumns = `id, user_id, name, destination, start_date, end_date, created_at, deleted_at`

func scanTrip(row interface{ Scan(...any) error }) (*model.Trip, error) {
	t := &model.Trip{}
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Destination, &t.StartDate, &t.EndDate, &t.CreatedAt, &t.DeletedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTrip creates a trip owned by userID.
func CreateTrip(ctx context.Context, db *sql.DB, userID, name, destination, startDate, endDate string) (*model.Trip, error) {
	tripID, err := id.Generate(id.PrefixTrip)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO trips (id, user_id, name, destination, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?)`,
		tripID, userID, name, destination, startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("creating trip: %w", err)
	}

	return GetTrip(ctx, db, tripID)
}

// GetTrip returns a non-deleted trip by ID.
func GetTrip(ctx context.Context, db *sql.DB, tripID string) (*model.Trip, error) {
	t, err := scanTrip(db.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = ? AND deleted_at IS NULL`, tripID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting trip: %w", err)
	}
	return t, nil
}

// ListTrips returns a user's non-deleted trips, soonest first.
func ListTrips(ctx context.Context, db *sql.DB, userID string) ([]model.Trip, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trips
		 WHERE user_id = ? AND deleted_at IS NULL
		 ORDER BY start_date, name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing trips: %w", err)
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trip: %w", err)
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

// UpdateTrip updates a trip's details.
func UpdateTrip(ctx context.Context, db *sql.DB, tripID, name, destination, startDate, endDate string) (*model.Trip, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE trips SET name = ?, destination = ?, start_date = ?, end_date = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		name, destination, startDate, endDate, tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating trip: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domainerrors.NotFoundf("trip %s not found", tripID)
	}
	return GetTrip(ctx, db, tripID)
}

// DeleteTrip soft-deletes a trip.
func DeleteTrip(ctx context.Context, db *sql.DB, tripID string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE trips SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		tripID,
	)
	if err != nil {
		return fmt.Errorf("deleting trip: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainerrors.NotFoundf("trip %s not found", tripID)
	}
	return nil
}

// GetSnapshot returns the trip with its bags, the owner's categories and all
// trip items.
func GetSnapshot(ctx context.Context, db *sql.DB, tripID string) (*model.Snapshot, error) {
	trip, err := GetTrip(ctx, db, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, nil
	}

	bags, err := ListBags(ctx, db, tripID)
	if err != nil {
		return nil, err
	}
	categories, err := ListCategories(ctx, db, trip.UserID)
	if err != nil {
		return nil, err
	}
	items, err := ListTripItems(ctx, db, tripID, TripItemFilter{})
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{Trip: trip, Bags: bags, Categories: categories, Items: items}
	if snap.Bags == nil {
		snap.Bags = []model.Bag{}
	}
	if snap.Categories == nil {
		snap.Categories = []model.Category{}
	}
	if snap.Items == nil {
		snap.Items = []model.TripItem{}
	}
	return snap, nil
}
