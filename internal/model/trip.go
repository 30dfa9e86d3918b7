package model

import "time"

// Trip groups the bags and items packed for one journey.
type Trip struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Destination string     `json:"destination,omitempty"`
	StartDate   string     `json:"start_date,omitempty"`
	EndDate     string     `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Bag is a top-level packing destination within a trip.
type Bag struct {
	ID        string `json:"id"`
	TripID    string `json:"trip_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Color     string `json:"color,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// Bag types.
const (
	BagTypeCarryOn  = "carry_on"
	BagTypeChecked  = "checked"
	BagTypePersonal = "personal"
	BagTypeCustom   = "custom"
)

// NoBagName labels the virtual bag holding items that are worn or not packed.
const NoBagName = "Wearing / No Bag"

// PaletteColors are the named bag colors.
var PaletteColors = []string{"red", "orange", "yellow", "green", "teal", "blue", "purple", "pink", "gray", "black"}

// IsPaletteColor reports whether c is one of the named palette colors.
func IsPaletteColor(c string) bool {
	for _, p := range PaletteColors {
		if p == c {
			return true
		}
	}
	return false
}

// Category classifies items. Categories belong to a user and are shared across trips.
type Category struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// UncategorizedName labels items without a category.
const UncategorizedName = "Uncategorized"
