package packing

import (
	"fmt"

	"github.com/erazemk/packzen/internal/model"
)

// PayloadKind is what is being dragged or added.
type PayloadKind int

const (
	PayloadTripItem PayloadKind = iota + 1
	PayloadMasterItem
	PayloadTemplate
)

// Payload is a drag source: an item already in the trip, or a master item
// or catalog template to add.
type Payload struct {
	Kind     PayloadKind
	Item     model.TripItem
	Master   model.MasterItem
	Template model.CatalogTemplate
}

// TripItemPayload wraps an item already in the trip.
func TripItemPayload(it model.TripItem) Payload {
	return Payload{Kind: PayloadTripItem, Item: it}
}

// MasterPayload wraps a master item.
func MasterPayload(m model.MasterItem) Payload {
	return Payload{Kind: PayloadMasterItem, Master: m}
}

// TemplatePayload wraps a catalog template.
func TemplatePayload(t model.CatalogTemplate) Payload {
	return Payload{Kind: PayloadTemplate, Template: t}
}

// DraggableID is the id the payload registers under.
func (p Payload) DraggableID() string {
	switch p.Kind {
	case PayloadTripItem:
		return "item:" + p.Item.ID
	case PayloadMasterItem:
		return "master:" + p.Master.ID
	case PayloadTemplate:
		return "template:" + p.Template.ID
	default:
		return ""
	}
}

// Label is the name shown in the drag overlay.
func (p Payload) Label() string {
	switch p.Kind {
	case PayloadTripItem:
		return p.Item.Name
	case PayloadMasterItem:
		return p.Master.Name
	case PayloadTemplate:
		return p.Template.Name
	default:
		return ""
	}
}

// Category is the category shown in the drag overlay, if known.
func (p Payload) Category() string {
	switch p.Kind {
	case PayloadTripItem:
		return p.Item.CategoryName
	case PayloadTemplate:
		return p.Template.Category
	default:
		return ""
	}
}

// IsContainer reports whether the payload is, or would create, a container.
func (p Payload) IsContainer() bool {
	switch p.Kind {
	case PayloadTripItem:
		return p.Item.IsContainer
	case PayloadMasterItem:
		return p.Master.IsContainer
	case PayloadTemplate:
		return p.Template.IsContainer
	default:
		return false
	}
}

// Target is a drop destination: a bag (nil for "no bag") or a container.
type Target struct {
	BagID       *string
	ContainerID *string
}

// BagTarget targets a bag; nil is the virtual "no bag" group.
func BagTarget(bagID *string) Target {
	return Target{BagID: bagID}
}

// ContainerTarget targets a container item. The bag is the container's.
func ContainerTarget(c model.TripItem) Target {
	id := c.ID
	return Target{BagID: c.BagID, ContainerID: &id}
}

// IsContainer reports whether the target is a container.
func (t Target) IsContainer() bool { return t.ContainerID != nil }

// DroppableID is the id the target registers under.
func (t Target) DroppableID() string {
	if t.ContainerID != nil {
		return "container:" + *t.ContainerID
	}
	if t.BagID == nil {
		return "bag:none"
	}
	return "bag:" + *t.BagID
}

// Equal compares two targets.
func (t Target) Equal(o Target) bool {
	if t.IsContainer() || o.IsContainer() {
		return model.SameRef(t.ContainerID, o.ContainerID)
	}
	return model.SameRef(t.BagID, o.BagID)
}

// Accepts checks whether p may be dropped on t. Containers hold leaf items
// only, and an item cannot go into itself.
func Accepts(p Payload, t Target) error {
	if p.Kind == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidDrop)
	}
	if !t.IsContainer() {
		return nil
	}
	if p.IsContainer() {
		return fmt.Errorf("%w: containers cannot be nested", ErrInvalidDrop)
	}
	if p.Kind == PayloadTripItem && p.Item.ID == *t.ContainerID {
		return fmt.Errorf("%w: an item cannot contain itself", ErrInvalidDrop)
	}
	return nil
}
