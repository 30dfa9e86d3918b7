package packing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/packzen/internal/model"
)

func TestDropMatrix(t *testing.T) {
	m := scenario()
	kit := ContainerTarget(m.item("i2"))
	b2 := BagTarget(model.StrPtr("b2"))
	tmpl := model.CatalogTemplate{ID: "sunscreen", Name: "Sunscreen"}
	master := model.MasterItem{ID: "mst1", Name: "Hat"}

	tests := []struct {
		name    string
		payload Payload
		target  Target
		call    string
	}{
		{"item to bag", TripItemPayload(m.item("i1")), b2, "moveToBag:i1->b2"},
		{"item to no bag", TripItemPayload(m.item("i3")), BagTarget(nil), "moveToBag:i3->"},
		{"item to container", TripItemPayload(m.item("i1")), kit, "moveToContainer:i1->i2"},
		{"template to bag", TemplatePayload(tmpl), b2, "addTemplate:sunscreen"},
		{"template to container", TemplatePayload(tmpl), kit, "addTemplate:sunscreen"},
		{"master to bag", MasterPayload(master), b2, "addMaster:mst1"},
		{"master to container", MasterPayload(master), kit, "addMaster:mst1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := scenario()
			_, err := NewActions(ops, nil).Drop(t.Context(), tt.payload, tt.target)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.call}, ops.calls, "exactly one operation")
		})
	}
}

func TestDropIntoContainerAdoptsItsBag(t *testing.T) {
	ops := scenario()
	res, err := NewActions(ops, nil).Drop(t.Context(), TemplatePayload(model.CatalogTemplate{ID: "floss", Name: "Floss"}), ContainerTarget(ops.item("i2")))
	require.NoError(t, err)
	require.NotNil(t, res.Created)
	assert.Equal(t, "b1", model.StrVal(res.Created.BagID))
	assert.Equal(t, "i2", model.StrVal(res.Created.ContainerItemID))
}

func TestDropRejections(t *testing.T) {
	ops := scenario()
	a := NewActions(ops, nil)
	kit := ContainerTarget(ops.item("i2"))

	tests := []struct {
		name    string
		payload Payload
	}{
		{"container into container", TripItemPayload(ops.item("i2"))},
		{"container template into container", TemplatePayload(model.CatalogTemplate{ID: "cube", IsContainer: true})},
		{"empty payload", Payload{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Drop(t.Context(), tt.payload, kit)
			assert.ErrorIs(t, err, ErrInvalidDrop)
		})
	}

	self := TripItemPayload(model.TripItem{ID: "i2", Name: "Kit"})
	assert.ErrorIs(t, Accepts(self, kit), ErrInvalidDrop)
	assert.Empty(t, ops.calls, "rejected drops never reach the collaborator")
}

func TestRedropOnSameBagIsIdempotent(t *testing.T) {
	ops := scenario()
	a := NewActions(ops, nil)
	before := build(ops)

	res, err := a.Drop(t.Context(), TripItemPayload(ops.item("i2")), BagTarget(model.StrPtr("b1")))
	require.NoError(t, err)
	assert.Nil(t, res.Move)
	assert.Equal(t, []string{"moveToBag:i2->b1"}, ops.calls)
	assert.Equal(t, before, build(ops))
}

func TestDropPropagatesFailure(t *testing.T) {
	ops := scenario()
	ops.fail = errors.New("offline")

	_, err := NewActions(ops, nil).Drop(t.Context(), TripItemPayload(ops.item("i1")), BagTarget(nil))
	assert.ErrorContains(t, err, "offline")
	assert.ErrorContains(t, err, "Socks")
}

func TestSelection(t *testing.T) {
	ops := scenario()
	s := NewSelection(NewActions(ops, nil))
	tmpl := TemplatePayload(model.CatalogTemplate{ID: "hat", Name: "Hat"})

	_, err := s.AddToSelectedTarget(t.Context(), tmpl)
	assert.ErrorIs(t, err, ErrNoTarget)

	var changes []bool
	s.OnChange = func(_ Target, selected bool) { changes = append(changes, selected) }

	s.SelectTarget(model.StrPtr("b1"), nil)
	s.SelectTarget(model.StrPtr("b1"), model.StrPtr("i2"))
	got, ok := s.Target()
	require.True(t, ok)
	assert.Equal(t, "container:i2", got.DroppableID(), "a new selection replaces the old one")
	assert.True(t, s.IsSelected(ContainerTarget(ops.item("i2"))))

	res, err := s.AddToSelectedTarget(t.Context(), tmpl)
	require.NoError(t, err)
	assert.Equal(t, "i2", model.StrVal(res.Created.ContainerItemID))

	_, err = s.AddToSelectedTarget(t.Context(), TripItemPayload(ops.item("i1")))
	assert.ErrorIs(t, err, ErrInvalidDrop)

	s.ClearTarget()
	s.ClearTarget()
	_, ok = s.Target()
	assert.False(t, ok)
	assert.Equal(t, []bool{true, true, false}, changes)
}

func TestSelectionNoBagTarget(t *testing.T) {
	ops := scenario()
	s := NewSelection(NewActions(ops, nil))
	s.SelectTarget(nil, nil)

	res, err := s.AddToSelectedTarget(t.Context(), MasterPayload(model.MasterItem{ID: "m", Name: "Jacket"}))
	require.NoError(t, err)
	assert.Nil(t, res.Created.BagID)
}

func TestEligible(t *testing.T) {
	ops := scenario()
	master := model.MasterItem{ID: "mst1", Name: "Hat"}

	assert.True(t, Eligible(MasterPayload(master), ops.items))
	assert.True(t, Eligible(TemplatePayload(model.CatalogTemplate{ID: "x"}), ops.items))
	assert.False(t, Eligible(TripItemPayload(ops.item("i1")), ops.items))

	_, err := ops.AddMasterItemToTrip(t.Context(), master, nil, nil)
	require.NoError(t, err)
	assert.False(t, Eligible(MasterPayload(master), ops.items))
}

func TestTargetEqual(t *testing.T) {
	assert.True(t, BagTarget(nil).Equal(BagTarget(nil)))
	assert.False(t, BagTarget(nil).Equal(BagTarget(model.StrPtr("b1"))))
	c := Target{BagID: model.StrPtr("b1"), ContainerID: model.StrPtr("i2")}
	assert.True(t, c.Equal(Target{ContainerID: model.StrPtr("i2")}))
	assert.False(t, c.Equal(BagTarget(model.StrPtr("b1"))))
	assert.Equal(t, "bag:none", BagTarget(nil).DroppableID())
}
