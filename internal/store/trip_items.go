package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/id"
	"github.com/erazemk/packzen/internal/model"
)

// NewTripItem describes a trip item to create. When ContainerItemID is set
// the item lands in that container and BagID is ignored.
type NewTripItem struct {
	TripID          string
	MasterItemID    *string
	Name            string
	Notes           string
	Quantity        int
	Packed          bool
	Skipped         bool
	IsContainer     bool
	CategoryID      *string
	BagID           *string
	ContainerItemID *string
}

// TripItemUpdate holds the non-location fields of a trip item.
type TripItemUpdate struct {
	Name        string
	Notes       string
	Quantity    int
	Packed      bool
	Skipped     bool
	IsContainer bool
	CategoryID  *string
}

// TripItemFilter narrows ListTripItems. Zero value lists everything.
type TripItemFilter struct {
	BagID       *string
	NoBag       bool
	ContainerID *string
	Packed      *bool
	Search      string
}

const tripItemColumns = `ti.id, ti.trip_id, ti.master_item_id, ti.name, ti.notes, ti.quantity,
	ti.packed, ti.skipped, ti.is_container, ti.container_item_id, ti.bag_id, ti.category_id,
	ti.created_at, COALESCE(c.name, ''), COALESCE(c.icon, '')`

const tripItemFrom = `trip_items ti LEFT JOIN categories c ON c.id = ti.category_id`

func scanTripItem(row interface{ Scan(...any) error }) (*model.TripItem, error) {
	it := &model.TripItem{}
	err := row.Scan(&it.ID, &it.TripID, &it.MasterItemID, &it.Name, &it.Notes, &it.Quantity,
		&it.Packed, &it.Skipped, &it.IsContainer, &it.ContainerItemID, &it.BagID, &it.CategoryID,
		&it.CreatedAt, &it.CategoryName, &it.CategoryIcon)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// GetTripItem returns a trip item by ID with its category joined.
func GetTripItem(ctx context.Context, db *sql.DB, itemID string) (*model.TripItem, error) {
	return getTripItem(ctx, db, itemID)
}

func getTripItem(ctx context.Context, q dbtx, itemID string) (*model.TripItem, error) {
	it, err := scanTripItem(q.QueryRowContext(ctx,
		`SELECT `+tripItemColumns+` FROM `+tripItemFrom+` WHERE ti.id = ?`, itemID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting trip item: %w", err)
	}
	return it, nil
}

// ListTripItems returns a trip's items sorted by name.
func ListTripItems(ctx context.Context, db *sql.DB, tripID string, f TripItemFilter) ([]model.TripItem, error) {
	qb := psql.Select(tripItemColumns).
		From(tripItemFrom).
		Where(sq.Eq{"ti.trip_id": tripID}).
		OrderBy("ti.name", "ti.id")

	switch {
	case f.BagID != nil:
		qb = qb.Where(sq.Eq{"ti.bag_id": *f.BagID})
	case f.NoBag:
		qb = qb.Where(sq.Eq{"ti.bag_id": nil})
	}
	if f.ContainerID != nil {
		qb = qb.Where(sq.Eq{"ti.container_item_id": *f.ContainerID})
	}
	if f.Packed != nil {
		qb = qb.Where(sq.Eq{"ti.packed": *f.Packed})
	}
	if f.Search != "" {
		qb = qb.Where(sq.Like{"ti.name": "%" + f.Search + "%"})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building trip item query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing trip items: %w", err)
	}
	defer rows.Close()

	var items []model.TripItem
	for rows.Next() {
		it, err := scanTripItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trip item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// CreateTripItem adds an item to a trip at the requested location.
func CreateTripItem(ctx context.Context, db *sql.DB, in NewTripItem) (*model.TripItem, error) {
	if in.Name == "" {
		return nil, domainerrors.Validation("item name is required")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, domainerrors.Validation("quantity must be positive")
	}

	itemID, err := id.Generate(id.PrefixItem)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ownerID, err := tripOwner(ctx, tx, in.TripID)
	if err != nil {
		return nil, err
	}
	if err := checkCategoryOwner(ctx, tx, ownerID, in.CategoryID); err != nil {
		return nil, err
	}

	target := &model.TripItem{TripID: in.TripID, IsContainer: in.IsContainer}
	bagID, err := resolveTarget(ctx, tx, target, in.BagID, in.ContainerItemID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO trip_items (id, trip_id, master_item_id, name, notes, quantity, packed, skipped,
		                         is_container, container_item_id, bag_id, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		itemID, in.TripID, in.MasterItemID, in.Name, in.Notes, in.Quantity, in.Packed, in.Skipped,
		in.IsContainer, in.ContainerItemID, bagID, in.CategoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating trip item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing trip item: %w", err)
	}
	return GetTripItem(ctx, db, itemID)
}

// UpdateTripItem updates a trip item's details. Location is changed only
// through MoveItem.
func UpdateTripItem(ctx context.Context, db *sql.DB, itemID string, in TripItemUpdate) (*model.TripItem, error) {
	if in.Name == "" {
		return nil, domainerrors.Validation("item name is required")
	}
	if in.Quantity <= 0 {
		return nil, domainerrors.Validation("quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getTripItem(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domainerrors.NotFoundf("item %s not found", itemID)
	}

	switch {
	case item.IsContainer && !in.IsContainer:
		n, err := countContained(ctx, tx, itemID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, domainerrors.Conflictf("container %q still holds %d items", item.Name, n)
		}
	case !item.IsContainer && in.IsContainer && item.ContainerItemID != nil:
		return nil, domainerrors.Validation("containers cannot be nested")
	}

	ownerID, err := tripOwner(ctx, tx, item.TripID)
	if err != nil {
		return nil, err
	}
	if err := checkCategoryOwner(ctx, tx, ownerID, in.CategoryID); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE trip_items SET name = ?, notes = ?, quantity = ?, packed = ?, skipped = ?,
		                       is_container = ?, category_id = ?
		 WHERE id = ?`,
		in.Name, in.Notes, in.Quantity, in.Packed, in.Skipped, in.IsContainer, in.CategoryID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating trip item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing trip item update: %w", err)
	}
	return GetTripItem(ctx, db, itemID)
}

// DeleteTripItem removes an item from its trip. Items inside a removed
// container stay in the container's bag.
func DeleteTripItem(ctx context.Context, db *sql.DB, itemID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getTripItem(ctx, tx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domainerrors.NotFoundf("item %s not found", itemID)
	}

	if item.IsContainer {
		_, err = tx.ExecContext(ctx,
			`UPDATE trip_items SET container_item_id = NULL, bag_id = ? WHERE container_item_id = ?`,
			item.BagID, itemID,
		)
		if err != nil {
			return fmt.Errorf("releasing contained items: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_items WHERE id = ?`, itemID); err != nil {
		return fmt.Errorf("deleting trip item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing trip item delete: %w", err)
	}
	return nil
}

// AddMasterItemToTrip copies a master item into a trip at the given location.
// Adding the same master item twice creates two trip items.
func AddMasterItemToTrip(ctx context.Context, db *sql.DB, tripID, masterID string, bagID, containerID *string) (*model.TripItem, error) {
	m, err := GetMasterItem(ctx, db, masterID)
	if err != nil {
		return nil, err
	}
	trip, err := GetTrip(ctx, db, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domainerrors.NotFoundf("trip %s not found", tripID)
	}
	if m == nil || m.UserID != trip.UserID {
		return nil, domainerrors.NotFoundf("master item %s not found", masterID)
	}

	return CreateTripItem(ctx, db, NewTripItem{
		TripID:          tripID,
		MasterItemID:    &m.ID,
		Name:            m.Name,
		Notes:           m.Notes,
		Quantity:        m.DefaultQuantity,
		IsContainer:     m.IsContainer,
		CategoryID:      m.CategoryID,
		BagID:           bagID,
		ContainerItemID: containerID,
	})
}

// AddCatalogTemplateToTrip creates a trip item from a built-in template,
// creating the template's category for the trip owner when missing.
func AddCatalogTemplateToTrip(ctx context.Context, db *sql.DB, tripID string, tmpl model.CatalogTemplate, bagID, containerID *string) (*model.TripItem, error) {
	trip, err := GetTrip(ctx, db, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domainerrors.NotFoundf("trip %s not found", tripID)
	}

	var catID *string
	if tmpl.Category != "" {
		cat, err := EnsureCategory(ctx, db, trip.UserID, tmpl.Category, tmpl.Icon)
		if err != nil {
			return nil, err
		}
		catID = &cat.ID
	}

	return CreateTripItem(ctx, db, NewTripItem{
		TripID:          tripID,
		Name:            tmpl.Name,
		Quantity:        tmpl.Quantity,
		IsContainer:     tmpl.IsContainer,
		CategoryID:      catID,
		BagID:           bagID,
		ContainerItemID: containerID,
	})
}

func tripOwner(ctx context.Context, q dbtx, tripID string) (string, error) {
	var userID string
	err := q.QueryRowContext(ctx,
		`SELECT user_id FROM trips WHERE id = ? AND deleted_at IS NULL`, tripID,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", domainerrors.NotFoundf("trip %s not found", tripID)
	}
	if err != nil {
		return "", fmt.Errorf("getting trip owner: %w", err)
	}
	return userID, nil
}

func countContained(ctx context.Context, q dbtx, containerID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trip_items WHERE container_item_id = ?`, containerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting contained items: %w", err)
	}
	return n, nil
}

// resolveTarget validates a destination for item and returns the bag the item
// ends up in. A container destination wins over bagID.
func resolveTarget(ctx context.Context, q dbtx, item *model.TripItem, bagID, containerID *string) (*string, error) {
	if containerID != nil {
		if item.ID != "" && *containerID == item.ID {
			return nil, domainerrors.Validation("an item cannot contain itself")
		}
		c, err := getTripItem(ctx, q, *containerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domainerrors.NotFoundf("container %s not found", *containerID)
		}
		if c.TripID != item.TripID {
			return nil, domainerrors.Validation("container belongs to another trip")
		}
		if !c.IsContainer {
			return nil, domainerrors.Validationf("%q is not a container", c.Name)
		}
		if item.IsContainer {
			return nil, domainerrors.Validation("containers cannot be nested")
		}
		return c.BagID, nil
	}

	if bagID != nil {
		b, err := getBag(ctx, q, *bagID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, domainerrors.NotFoundf("bag %s not found", *bagID)
		}
		if b.TripID != item.TripID {
			return nil, domainerrors.Validation("bag belongs to another trip")
		}
		return bagID, nil
	}

	return nil, nil
}

// relocate writes a new location for item. Items inside a container follow
// it to its new bag.
func relocate(ctx context.Context, q dbtx, item *model.TripItem, bagID, containerID *string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE trip_items SET bag_id = ?, container_item_id = ? WHERE id = ?`,
		bagID, containerID, item.ID,
	)
	if err != nil {
		return fmt.Errorf("moving item: %w", err)
	}

	if item.IsContainer {
		_, err = q.ExecContext(ctx,
			`UPDATE trip_items SET bag_id = ? WHERE container_item_id = ?`,
			bagID, item.ID,
		)
		if err != nil {
			return fmt.Errorf("moving contained items: %w", err)
		}
	}
	return nil
}
