package model

import "time"

// Move records a change of an item's location within a trip.
type Move struct {
	ID              string     `json:"id"`
	TripID          string     `json:"trip_id"`
	ItemID          string     `json:"item_id"`
	FromBagID       *string    `json:"from_bag_id,omitempty"`
	FromContainerID *string    `json:"from_container_id,omitempty"`
	ToBagID         *string    `json:"to_bag_id,omitempty"`
	ToContainerID   *string    `json:"to_container_id,omitempty"`
	MovedAt         time.Time  `json:"moved_at"`
	MovedBy         *string    `json:"moved_by,omitempty"`
	UndoneAt        *time.Time `json:"undone_at,omitempty"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// Snapshot is everything a client needs to render one trip.
type Snapshot struct {
	Trip       *Trip      `json:"trip"`
	Bags       []Bag      `json:"bags"`
	Categories []Category `json:"categories"`
	Items      []TripItem `json:"items"`
}

// StrPtr returns a pointer to s, or nil when s is empty.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal dereferences p, returning "" for nil.
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// SameRef reports whether two optional ids reference the same thing.
func SameRef(a, b *string) bool {
	return StrVal(a) == StrVal(b)
}
