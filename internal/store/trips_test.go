package store

import (
	"context"
	"testing"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/model"
)

func TestTripLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trips, err := ListTrips(ctx, f.db, f.user.ID)
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(trips) != 1 || trips[0].Name != "Lisbon" {
		t.Fatalf("expected the Lisbon trip, got %v", trips)
	}

	updated, err := UpdateTrip(ctx, f.db, f.trip.ID, "Porto", "Portugal", "2026-11-02", "2026-11-09")
	if err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	if updated.Name != "Porto" {
		t.Errorf("expected 'Porto', got %q", updated.Name)
	}

	if err := DeleteTrip(ctx, f.db, f.trip.ID); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	got, _ := GetTrip(ctx, f.db, f.trip.ID)
	if got != nil {
		t.Error("expected deleted trip to be hidden")
	}
	if err := DeleteTrip(ctx, f.db, f.trip.ID); !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	CreateCategory(ctx, f.db, f.user.ID, "Clothing", "shirt")
	f.item(t, "Socks", false, nil, nil)
	f.item(t, "Kit", true, &f.carryOn.ID, nil)

	snap, err := GetSnapshot(ctx, f.db, f.trip.ID)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if snap.Trip.ID != f.trip.ID {
		t.Errorf("expected trip %s, got %s", f.trip.ID, snap.Trip.ID)
	}
	if len(snap.Bags) != 2 || snap.Bags[0].Name != "Carry-on" {
		t.Errorf("expected bags in creation order, got %v", snap.Bags)
	}
	if len(snap.Categories) != 1 {
		t.Errorf("expected 1 category, got %d", len(snap.Categories))
	}
	if len(snap.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(snap.Items))
	}

	missing, err := GetSnapshot(ctx, f.db, "trip-missing")
	if err != nil || missing != nil {
		t.Errorf("expected nil snapshot for missing trip, got %v, %v", missing, err)
	}
}

func TestBagSortOrderAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if f.carryOn.SortOrder != 0 || f.checked.SortOrder != 1 {
		t.Errorf("expected sort orders 0 and 1, got %d and %d", f.carryOn.SortOrder, f.checked.SortOrder)
	}

	if _, err := UpdateBag(ctx, f.db, f.checked.ID, "Checked", model.BagTypeChecked, "#336699", -1); err != nil {
		t.Fatalf("UpdateBag: %v", err)
	}
	bags, _ := ListBags(ctx, f.db, f.trip.ID)
	if bags[0].ID != f.checked.ID {
		t.Errorf("expected reordered bag first, got %s", bags[0].Name)
	}

	kit := f.item(t, "Kit", true, &f.checked.ID, nil)
	brush := f.item(t, "Toothbrush", false, nil, &kit.ID)

	if err := DeleteBag(ctx, f.db, f.checked.ID); err != nil {
		t.Fatalf("DeleteBag: %v", err)
	}

	for _, id := range []string{kit.ID, brush.ID} {
		it, _ := GetTripItem(ctx, f.db, id)
		if it.BagID != nil {
			t.Errorf("expected %s to have no bag after bag deletion, got %v", it.Name, *it.BagID)
		}
	}
	it, _ := GetTripItem(ctx, f.db, brush.ID)
	if model.StrVal(it.ContainerItemID) != kit.ID {
		t.Error("expected toothbrush to stay in its container")
	}
}
