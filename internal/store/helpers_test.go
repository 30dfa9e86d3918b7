package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/packzen/internal/db"
	"github.com/erazemk/packzen/internal/model"
)

// fixture is a trip with two bags owned by one user.
type fixture struct {
	db      *sql.DB
	user    *model.User
	trip    *model.Trip
	carryOn *model.Bag
	checked *model.Bag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "traveler", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	trip, err := CreateTrip(ctx, database, user.ID, "Lisbon", "Portugal", "2026-11-01", "2026-11-08")
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	carryOn, err := CreateBag(ctx, database, trip.ID, "Carry-on", model.BagTypeCarryOn, "teal")
	if err != nil {
		t.Fatalf("CreateBag: %v", err)
	}
	checked, err := CreateBag(ctx, database, trip.ID, "Checked", model.BagTypeChecked, "")
	if err != nil {
		t.Fatalf("CreateBag: %v", err)
	}

	return &fixture{db: database, user: user, trip: trip, carryOn: carryOn, checked: checked}
}

func (f *fixture) item(t *testing.T, name string, isContainer bool, bagID, containerID *string) *model.TripItem {
	t.Helper()
	it, err := CreateTripItem(context.Background(), f.db, NewTripItem{
		TripID:          f.trip.ID,
		Name:            name,
		IsContainer:     isContainer,
		BagID:           bagID,
		ContainerItemID: containerID,
	})
	if err != nil {
		t.Fatalf("CreateTripItem(%s): %v", name, err)
	}
	return it
}
