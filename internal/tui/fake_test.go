package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/erazemk/packzen/internal/model"
)

// memTrip is an in-memory trip and library.
type memTrip struct {
	trip      model.Trip
	bags      []model.Bag
	items     []model.TripItem
	masters   []model.MasterItem
	templates []model.CatalogTemplate
	calls     []string
	fail      error
	moves     int
}

func strp(s string) *string { return &s }

func newMemTrip() *memTrip {
	return &memTrip{
		trip: model.Trip{ID: "t1", Name: "Lisbon"},
		bags: []model.Bag{
			{ID: "b2", TripID: "t1", Name: "Checked", SortOrder: 1},
			{ID: "b1", TripID: "t1", Name: "Carry-on"},
		},
		items: []model.TripItem{
			{ID: "i1", TripID: "t1", Name: "Socks", Quantity: 1},
			{ID: "i2", TripID: "t1", Name: "Kit", Quantity: 1, IsContainer: true, BagID: strp("b1")},
			{ID: "i3", TripID: "t1", Name: "Toothbrush", Quantity: 1, BagID: strp("b1"), ContainerItemID: strp("i2")},
		},
		masters:   []model.MasterItem{{ID: "m1", Name: "Hat", DefaultQuantity: 1}},
		templates: []model.CatalogTemplate{{ID: "tpl-sunscreen", Name: "Sunscreen", Category: "Toiletries", Quantity: 1}},
	}
}

func (f *memTrip) find(id string) *model.TripItem {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i]
		}
	}
	return nil
}

func (f *memTrip) Snapshot(context.Context) (*model.Snapshot, error) {
	trip := f.trip
	return &model.Snapshot{Trip: &trip, Bags: slices.Clone(f.bags), Items: slices.Clone(f.items)}, nil
}

func (f *memTrip) record(call string) error {
	f.calls = append(f.calls, call)
	return f.fail
}

func (f *memTrip) newMove(it *model.TripItem) *model.Move {
	f.moves++
	return &model.Move{ID: fmt.Sprintf("mv%d", f.moves), ItemID: it.ID, ToBagID: it.BagID, ToContainerID: it.ContainerItemID}
}

func (f *memTrip) MoveItemToBag(_ context.Context, itemID string, bagID *string) (*model.Move, error) {
	to := "none"
	if bagID != nil {
		to = *bagID
	}
	if err := f.record("moveToBag:" + itemID + "->" + to); err != nil {
		return nil, err
	}
	it := f.find(itemID)
	it.BagID, it.ContainerItemID = bagID, nil
	return f.newMove(it), nil
}

func (f *memTrip) MoveItemToContainer(_ context.Context, itemID, containerID string) (*model.Move, error) {
	if err := f.record("moveToContainer:" + itemID + "->" + containerID); err != nil {
		return nil, err
	}
	it := f.find(itemID)
	it.BagID, it.ContainerItemID = f.find(containerID).BagID, &containerID
	return f.newMove(it), nil
}

func (f *memTrip) add(name string, bagID, containerID *string) *model.TripItem {
	if containerID != nil {
		bagID = f.find(*containerID).BagID
	}
	it := model.TripItem{ID: fmt.Sprintf("n%d", len(f.items)+1), TripID: "t1", Name: name, Quantity: 1, BagID: bagID, ContainerItemID: containerID}
	f.items = append(f.items, it)
	return &it
}

func (f *memTrip) AddMasterItemToTrip(_ context.Context, m model.MasterItem, bagID, containerID *string) (*model.TripItem, error) {
	if err := f.record("addMaster:" + m.ID); err != nil {
		return nil, err
	}
	it := f.add(m.Name, bagID, containerID)
	f.find(it.ID).MasterItemID = &m.ID
	return it, nil
}

func (f *memTrip) AddCatalogTemplateToTrip(_ context.Context, t model.CatalogTemplate, bagID, containerID *string) (*model.TripItem, error) {
	if err := f.record("addTemplate:" + t.ID); err != nil {
		return nil, err
	}
	return f.add(t.Name, bagID, containerID), nil
}

func (f *memTrip) RemoveItemFromTrip(_ context.Context, itemID string) error {
	if err := f.record("remove:" + itemID); err != nil {
		return err
	}
	f.items = slices.DeleteFunc(f.items, func(it model.TripItem) bool { return it.ID == itemID })
	return nil
}

func (f *memTrip) SetPacked(_ context.Context, it model.TripItem, packed bool) (*model.TripItem, error) {
	if err := f.record(fmt.Sprintf("packed:%s=%t", it.ID, packed)); err != nil {
		return nil, err
	}
	stored := f.find(it.ID)
	stored.Packed = packed
	out := *stored
	return &out, nil
}

func (f *memTrip) UndoMove(_ context.Context, moveID string) (*model.TripItem, error) {
	if err := f.record("undo:" + moveID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *memTrip) Catalog(context.Context, string) ([]model.CatalogTemplate, error) {
	return f.templates, nil
}

func (f *memTrip) ListMasterItems(context.Context) ([]model.MasterItem, error) {
	return f.masters, nil
}
