package model

import "time"

// MasterItem is a reusable item definition in a user's personal list.
type MasterItem struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Notes           string    `json:"notes,omitempty"`
	CategoryID      *string   `json:"category_id,omitempty"`
	DefaultQuantity int       `json:"default_quantity"`
	IsContainer     bool      `json:"is_container"`
	ImageMime       string    `json:"image_mime,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TripItem is an item packed (or to be packed) for a trip.
//
// BagID nil means the item is worn or not in any bag. An item with a
// ContainerItemID sits inside that container and shares its bag.
type TripItem struct {
	ID              string    `json:"id"`
	TripID          string    `json:"trip_id"`
	MasterItemID    *string   `json:"master_item_id,omitempty"`
	Name            string    `json:"name"`
	Notes           string    `json:"notes,omitempty"`
	Quantity        int       `json:"quantity"`
	Packed          bool      `json:"packed"`
	Skipped         bool      `json:"skipped"`
	IsContainer     bool      `json:"is_container"`
	ContainerItemID *string   `json:"container_item_id,omitempty"`
	BagID           *string   `json:"bag_id,omitempty"`
	CategoryID      *string   `json:"category_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
	CategoryIcon string `json:"category_icon,omitempty"`
}

// CatalogTemplate is a built-in item definition from the static catalog.
type CatalogTemplate struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Quantity    int    `json:"quantity" yaml:"quantity"`
	IsContainer bool   `json:"is_container,omitempty" yaml:"is_container,omitempty"`
}
