package packing

import (
	"context"
	"fmt"

	"github.com/erazemk/packzen/internal/model"
)

// Selection is the click-to-target model: at most one bag or container is
// the target for one-tap adds.
type Selection struct {
	actions  *Actions
	target   Target
	selected bool

	// OnChange is called after the target is set or cleared.
	OnChange func(t Target, selected bool)
}

// NewSelection creates an empty selection that adds through actions.
func NewSelection(actions *Actions) *Selection {
	return &Selection{actions: actions}
}

// SelectTarget makes (bagID, containerID) the target, replacing any previous
// one. Both nil selects the "no bag" group.
func (s *Selection) SelectTarget(bagID, containerID *string) {
	s.target = Target{BagID: bagID, ContainerID: containerID}
	s.selected = true
	if s.OnChange != nil {
		s.OnChange(s.target, true)
	}
}

// ClearTarget removes the selection. Add affordances should hide.
func (s *Selection) ClearTarget() {
	if !s.selected {
		return
	}
	s.target = Target{}
	s.selected = false
	if s.OnChange != nil {
		s.OnChange(Target{}, false)
	}
}

// Target returns the selected target.
func (s *Selection) Target() (Target, bool) {
	return s.target, s.selected
}

// IsSelected reports whether t is the selected target.
func (s *Selection) IsSelected(t Target) bool {
	return s.selected && s.target.Equal(t)
}

// AddToSelectedTarget adds a master item or template to the selected
// target through the same path as a drop.
func (s *Selection) AddToSelectedTarget(ctx context.Context, p Payload) (Result, error) {
	op, err := s.addOp(p)
	if err != nil {
		return Result{}, err
	}
	return op(ctx)
}

// addOp validates p against the current target and returns the add bound
// to that target, so a later selection change does not redirect it.
func (s *Selection) addOp(p Payload) (Op, error) {
	if !s.selected {
		return nil, ErrNoTarget
	}
	if p.Kind == PayloadTripItem {
		return nil, fmt.Errorf("%w: %q is already in the trip", ErrInvalidDrop, p.Item.Name)
	}
	t := s.target
	if err := Accepts(p, t); err != nil {
		return nil, err
	}
	return func(ctx context.Context) (Result, error) {
		return s.actions.Drop(ctx, p, t)
	}, nil
}

// Eligible reports whether a source row offers the one-tap add: templates
// always, master items only while not already in the trip.
func Eligible(p Payload, items []model.TripItem) bool {
	switch p.Kind {
	case PayloadTemplate:
		return true
	case PayloadMasterItem:
		for _, it := range items {
			if it.MasterItemID != nil && *it.MasterItemID == p.Master.ID {
				return false
			}
		}
		return true
	default:
		return false
	}
}
