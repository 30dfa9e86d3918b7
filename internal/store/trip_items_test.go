package store

import (
	"context"
	"testing"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/model"
)

func TestCreateTripItemInContainerAdoptsBag(t *testing.T) {
	f := newFixture(t)

	kit := f.item(t, "Kit", true, &f.carryOn.ID, nil)
	// The requested bag is ignored in favour of the container's.
	brush := f.item(t, "Toothbrush", false, &f.checked.ID, &kit.ID)

	if model.StrVal(brush.BagID) != f.carryOn.ID {
		t.Errorf("expected container's bag %s, got %v", f.carryOn.ID, model.StrVal(brush.BagID))
	}
	if model.StrVal(brush.ContainerItemID) != kit.ID {
		t.Errorf("expected container %s, got %v", kit.ID, model.StrVal(brush.ContainerItemID))
	}
	if brush.Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", brush.Quantity)
	}
}

func TestCreateTripItemRejectsBadTargets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kit := f.item(t, "Kit", true, nil, nil)
	socks := f.item(t, "Socks", false, nil, nil)

	otherTrip, _ := CreateTrip(ctx, f.db, f.user.ID, "Oslo", "", "", "")
	otherBag, _ := CreateBag(ctx, f.db, otherTrip.ID, "Backpack", model.BagTypePersonal, "")

	tests := []struct {
		name string
		in   NewTripItem
		want error
	}{
		{"empty name", NewTripItem{TripID: f.trip.ID}, domainerrors.ErrValidation},
		{"negative quantity", NewTripItem{TripID: f.trip.ID, Name: "x", Quantity: -2}, domainerrors.ErrValidation},
		{"missing trip", NewTripItem{TripID: "trip-missing", Name: "x"}, domainerrors.ErrNotFound},
		{"missing bag", NewTripItem{TripID: f.trip.ID, Name: "x", BagID: model.StrPtr("bag-missing")}, domainerrors.ErrNotFound},
		{"bag of another trip", NewTripItem{TripID: f.trip.ID, Name: "x", BagID: &otherBag.ID}, domainerrors.ErrValidation},
		{"non-container target", NewTripItem{TripID: f.trip.ID, Name: "x", ContainerItemID: &socks.ID}, domainerrors.ErrValidation},
		{"nested container", NewTripItem{TripID: f.trip.ID, Name: "Pouch", IsContainer: true, ContainerItemID: &kit.ID}, domainerrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateTripItem(ctx, f.db, tt.in)
			if !domainerrors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestListTripItemsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kit := f.item(t, "Kit", true, &f.carryOn.ID, nil)
	f.item(t, "Toothbrush", false, nil, &kit.ID)
	f.item(t, "Socks", false, nil, nil)
	f.item(t, "Sweater", false, &f.checked.ID, nil)

	tests := []struct {
		name   string
		filter TripItemFilter
		want   int
	}{
		{"all", TripItemFilter{}, 4},
		{"carry-on", TripItemFilter{BagID: &f.carryOn.ID}, 2},
		{"no bag", TripItemFilter{NoBag: true}, 1},
		{"in kit", TripItemFilter{ContainerID: &kit.ID}, 1},
		{"search", TripItemFilter{Search: "S"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ListTripItems(ctx, f.db, f.trip.ID, tt.filter)
			if err != nil {
				t.Fatalf("ListTripItems: %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("expected %d items, got %d", tt.want, len(items))
			}
		})
	}

	packed := true
	items, _ := ListTripItems(ctx, f.db, f.trip.ID, TripItemFilter{Packed: &packed})
	if len(items) != 0 {
		t.Errorf("expected no packed items, got %d", len(items))
	}
}

func TestUpdateTripItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kit := f.item(t, "Kit", true, &f.carryOn.ID, nil)
	f.item(t, "Toothbrush", false, nil, &kit.ID)

	_, err := UpdateTripItem(ctx, f.db, kit.ID, TripItemUpdate{Name: "Kit", Quantity: 1, IsContainer: false})
	if !domainerrors.Is(err, domainerrors.ErrConflict) {
		t.Errorf("expected conflict when un-containering a non-empty container, got %v", err)
	}

	got, err := UpdateTripItem(ctx, f.db, kit.ID, TripItemUpdate{Name: "Wash bag", Quantity: 1, Packed: true, IsContainer: true})
	if err != nil {
		t.Fatalf("UpdateTripItem: %v", err)
	}
	if !got.Packed || got.Name != "Wash bag" {
		t.Errorf("unexpected item after update: %+v", got)
	}
	if model.StrVal(got.BagID) != f.carryOn.ID {
		t.Error("expected update to leave location alone")
	}
}

func TestDeleteContainerReleasesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kit := f.item(t, "Kit", true, &f.carryOn.ID, nil)
	brush := f.item(t, "Toothbrush", false, nil, &kit.ID)

	if err := DeleteTripItem(ctx, f.db, kit.ID); err != nil {
		t.Fatalf("DeleteTripItem: %v", err)
	}

	got, _ := GetTripItem(ctx, f.db, brush.ID)
	if got == nil {
		t.Fatal("expected contained item to survive")
	}
	if got.ContainerItemID != nil {
		t.Error("expected contained item to be released")
	}
	if model.StrVal(got.BagID) != f.carryOn.ID {
		t.Errorf("expected released item to stay in the container's bag, got %v", model.StrVal(got.BagID))
	}

	if err := DeleteTripItem(ctx, f.db, kit.ID); !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAddMasterItemToTripAllowsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, _ := CreateCategory(ctx, f.db, f.user.ID, "Clothing", "")
	m, _ := CreateMasterItem(ctx, f.db, f.user.ID, MasterItemInput{Name: "Socks", CategoryID: &cat.ID, DefaultQuantity: 3})

	for range 2 {
		it, err := AddMasterItemToTrip(ctx, f.db, f.trip.ID, m.ID, &f.checked.ID, nil)
		if err != nil {
			t.Fatalf("AddMasterItemToTrip: %v", err)
		}
		if it.Quantity != 3 || it.CategoryName != "Clothing" || model.StrVal(it.MasterItemID) != m.ID {
			t.Errorf("unexpected trip item %+v", it)
		}
	}

	items, _ := ListTripItems(ctx, f.db, f.trip.ID, TripItemFilter{})
	if len(items) != 2 {
		t.Errorf("expected 2 trip items, got %d", len(items))
	}

	other, _ := CreateUser(ctx, f.db, "other", "hash", model.RoleUser)
	foreign, _ := CreateMasterItem(ctx, f.db, other.ID, MasterItemInput{Name: "Not mine"})
	if _, err := AddMasterItemToTrip(ctx, f.db, f.trip.ID, foreign.ID, nil, nil); !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Errorf("expected not found for another user's master item, got %v", err)
	}
}

func TestAddCatalogTemplateToTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kit := f.item(t, "Kit", true, &f.checked.ID, nil)
	tmpl := model.CatalogTemplate{ID: "toothpaste", Name: "Toothpaste", Category: "Toiletries", Icon: "tube", Quantity: 1}

	it, err := AddCatalogTemplateToTrip(ctx, f.db, f.trip.ID, tmpl, nil, &kit.ID)
	if err != nil {
		t.Fatalf("AddCatalogTemplateToTrip: %v", err)
	}
	if it.CategoryName != "Toiletries" || it.CategoryIcon != "tube" {
		t.Errorf("expected template category, got %q %q", it.CategoryName, it.CategoryIcon)
	}
	if model.StrVal(it.BagID) != f.checked.ID {
		t.Errorf("expected container's bag, got %v", model.StrVal(it.BagID))
	}

	// The category is reused on the second add.
	if _, err := AddCatalogTemplateToTrip(ctx, f.db, f.trip.ID, tmpl, nil, nil); err != nil {
		t.Fatalf("AddCatalogTemplateToTrip: %v", err)
	}
	cats, _ := ListCategories(ctx, f.db, f.user.ID)
	if len(cats) != 1 {
		t.Errorf("expected 1 category, got %d", len(cats))
	}
}
