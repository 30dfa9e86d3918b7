package packing

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/erazemk/packzen/internal/model"
)

// memOps is an in-memory trip honouring the persistence contract.
type memOps struct {
	bags  []model.Bag
	cats  []model.Category
	items []model.TripItem
	moves []model.Move
	calls []string
	fail  error
	next  int
}

func (m *memOps) nextID(prefix string) string {
	m.next++
	return fmt.Sprintf("%s%d", prefix, m.next)
}

func (m *memOps) find(id string) (int, bool) {
	i := slices.IndexFunc(m.items, func(it model.TripItem) bool { return it.ID == id })
	return i, i >= 0
}

func (m *memOps) Snapshot(context.Context) (*model.Snapshot, error) {
	return &model.Snapshot{
		Bags:       slices.Clone(m.bags),
		Categories: slices.Clone(m.cats),
		Items:      slices.Clone(m.items),
	}, nil
}

func (m *memOps) relocate(i int, bagID, containerID *string) *model.Move {
	it := &m.items[i]
	if model.SameRef(it.BagID, bagID) && model.SameRef(it.ContainerItemID, containerID) {
		return nil
	}
	mv := model.Move{
		ID:              m.nextID("m"),
		ItemID:          it.ID,
		FromBagID:       it.BagID,
		FromContainerID: it.ContainerItemID,
		ToBagID:         bagID,
		ToContainerID:   containerID,
	}
	it.BagID, it.ContainerItemID = bagID, containerID
	if it.IsContainer {
		for j := range m.items {
			if model.StrVal(m.items[j].ContainerItemID) == it.ID {
				m.items[j].BagID = bagID
			}
		}
	}
	m.moves = append(m.moves, mv)
	return &mv
}

func (m *memOps) MoveItemToBag(_ context.Context, itemID string, bagID *string) (*model.Move, error) {
	m.calls = append(m.calls, "moveToBag:"+itemID+"->"+model.StrVal(bagID))
	if m.fail != nil {
		return nil, m.fail
	}
	i, ok := m.find(itemID)
	if !ok {
		return nil, errors.New("item not found")
	}
	return m.relocate(i, bagID, nil), nil
}

func (m *memOps) MoveItemToContainer(_ context.Context, itemID, containerID string) (*model.Move, error) {
	m.calls = append(m.calls, "moveToContainer:"+itemID+"->"+containerID)
	if m.fail != nil {
		return nil, m.fail
	}
	i, ok := m.find(itemID)
	c, ok2 := m.find(containerID)
	if !ok || !ok2 || !m.items[c].IsContainer {
		return nil, errors.New("not a container")
	}
	id := containerID
	return m.relocate(i, m.items[c].BagID, &id), nil
}

func (m *memOps) add(name string, isContainer bool, bagID, containerID *string) *model.TripItem {
	if containerID != nil {
		if c, ok := m.find(*containerID); ok {
			bagID = m.items[c].BagID
		}
	}
	it := model.TripItem{ID: m.nextID("i"), Name: name, Quantity: 1, IsContainer: isContainer, BagID: bagID, ContainerItemID: containerID}
	m.items = append(m.items, it)
	return &it
}

func (m *memOps) AddMasterItemToTrip(_ context.Context, master model.MasterItem, bagID, containerID *string) (*model.TripItem, error) {
	m.calls = append(m.calls, "addMaster:"+master.ID)
	if m.fail != nil {
		return nil, m.fail
	}
	it := m.add(master.Name, master.IsContainer, bagID, containerID)
	id := master.ID
	m.items[len(m.items)-1].MasterItemID = &id
	it.MasterItemID = &id
	return it, nil
}

func (m *memOps) AddCatalogTemplateToTrip(_ context.Context, tmpl model.CatalogTemplate, bagID, containerID *string) (*model.TripItem, error) {
	m.calls = append(m.calls, "addTemplate:"+tmpl.ID)
	if m.fail != nil {
		return nil, m.fail
	}
	return m.add(tmpl.Name, tmpl.IsContainer, bagID, containerID), nil
}

func (m *memOps) RemoveItemFromTrip(_ context.Context, itemID string) error {
	m.calls = append(m.calls, "remove:"+itemID)
	i, ok := m.find(itemID)
	if !ok {
		return errors.New("item not found")
	}
	m.items = slices.Delete(m.items, i, i+1)
	return nil
}

func (m *memOps) UndoMove(_ context.Context, moveID string) (*model.TripItem, error) {
	m.calls = append(m.calls, "undo:"+moveID)
	for _, mv := range m.moves {
		if mv.ID != moveID {
			continue
		}
		i, ok := m.find(mv.ItemID)
		if !ok {
			return nil, errors.New("item not found")
		}
		m.relocate(i, mv.FromBagID, mv.FromContainerID)
		it := m.items[i]
		return &it, nil
	}
	return nil, errors.New("move not found")
}

func (m *memOps) SetPacked(_ context.Context, item model.TripItem, packed bool) (*model.TripItem, error) {
	m.calls = append(m.calls, fmt.Sprintf("packed:%s=%t", item.ID, packed))
	i, ok := m.find(item.ID)
	if !ok {
		return nil, errors.New("item not found")
	}
	m.items[i].Packed = packed
	it := m.items[i]
	return &it, nil
}

func (m *memOps) item(id string) model.TripItem {
	i, _ := m.find(id)
	return m.items[i]
}

// scenario is the two-bag trip used across the package tests.
func scenario() *memOps {
	b1 := "b1"
	i2 := "i2"
	return &memOps{
		bags: []model.Bag{
			{ID: "b2", Name: "Checked", SortOrder: 1},
			{ID: "b1", Name: "Carry-on", SortOrder: 0},
		},
		cats: []model.Category{{ID: "c-toil", Name: "Toiletries", Icon: "🧴"}},
		items: []model.TripItem{
			{ID: "i1", Name: "Socks", Quantity: 3},
			{ID: "i2", Name: "Kit", Quantity: 1, IsContainer: true, BagID: &b1, CategoryID: model.StrPtr("c-toil")},
			{ID: "i3", Name: "Toothbrush", Quantity: 1, ContainerItemID: &i2, BagID: &b1, CategoryID: model.StrPtr("c-toil"), Packed: true},
		},
		next: 100,
	}
}
