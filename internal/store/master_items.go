package store

import (
	"context"
	"database/sql"
	"fmt"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/id"
	"github.com/erazemk/packzen/internal/model"
)

// MasterItemInput holds the editable fields of a master item.
type MasterItemInput struct {
	Name            string
	Notes           string
	CategoryID      *string
	DefaultQuantity int
	IsContainer     bool
}

const masterItemColumns = `id, user_id, name, notes, category_id, default_quantity, is_container,
	COALESCE(image_mime, ''), created_at, updated_at`

func scanMasterItem(row interface{ Scan(...any) error }) (*model.MasterItem, error) {
	m := &model.MasterItem{}
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Notes, &m.CategoryID, &m.DefaultQuantity,
		&m.IsContainer, &m.ImageMime, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMasterItem adds an item to a user's master list.
func CreateMasterItem(ctx context.Context, db *sql.DB, userID string, in MasterItemInput) (*model.MasterItem, error) {
	if in.DefaultQuantity <= 0 {
		in.DefaultQuantity = 1
	}
	if err := checkCategoryOwner(ctx, db, userID, in.CategoryID); err != nil {
		return nil, err
	}

	masterID, err := id.Generate(id.PrefixMaster)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO master_items (id, user_id, name, notes, category_id, default_quantity, is_container)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		masterID, userID, in.Name, in.Notes, in.CategoryID, in.DefaultQuantity, in.IsContainer,
	)
	if err != nil {
		return nil, fmt.Errorf("creating master item: %w", err)
	}

	return GetMasterItem(ctx, db, masterID)
}

// GetMasterItem returns a master item by ID.
func GetMasterItem(ctx context.Context, db *sql.DB, masterID string) (*model.MasterItem, error) {
	m, err := scanMasterItem(db.QueryRowContext(ctx,
		`SELECT `+masterItemColumns+` FROM master_items WHERE id = ?`, masterID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting master item: %w", err)
	}
	return m, nil
}

// ListMasterItems returns a user's master items sorted by name.
func ListMasterItems(ctx context.Context, db *sql.DB, userID string) ([]model.MasterItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+masterItemColumns+` FROM master_items WHERE user_id = ? ORDER BY name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing master items: %w", err)
	}
	defer rows.Close()

	var items []model.MasterItem
	for rows.Next() {
		m, err := scanMasterItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning master item: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// UpdateMasterItem replaces a master item's editable fields. Trip items
// created from it earlier are left as they are.
func UpdateMasterItem(ctx context.Context, db *sql.DB, masterID string, in MasterItemInput) (*model.MasterItem, error) {
	existing, err := GetMasterItem(ctx, db, masterID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domainerrors.NotFoundf("master item %s not found", masterID)
	}
	if in.DefaultQuantity <= 0 {
		in.DefaultQuantity = 1
	}
	if err := checkCategoryOwner(ctx, db, existing.UserID, in.CategoryID); err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE master_items
		 SET name = ?, notes = ?, category_id = ?, default_quantity = ?, is_container = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		in.Name, in.Notes, in.CategoryID, in.DefaultQuantity, in.IsContainer, masterID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating master item: %w", err)
	}
	return GetMasterItem(ctx, db, masterID)
}

// DeleteMasterItem removes a master item. Trip items keep their copy.
func DeleteMasterItem(ctx context.Context, db *sql.DB, masterID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM master_items WHERE id = ?`, masterID)
	if err != nil {
		return fmt.Errorf("deleting master item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainerrors.NotFoundf("master item %s not found", masterID)
	}
	return nil
}

// SetMasterItemImage stores a master item's photo.
func SetMasterItemImage(ctx context.Context, db *sql.DB, masterID string, image []byte, mime string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE master_items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, masterID,
	)
	if err != nil {
		return fmt.Errorf("setting master item image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainerrors.NotFoundf("master item %s not found", masterID)
	}
	return nil
}

// GetMasterItemImage returns a master item's photo and its MIME type.
// Both are empty when no photo was uploaded.
func GetMasterItemImage(ctx context.Context, db *sql.DB, masterID string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM master_items WHERE id = ?`, masterID,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting master item image: %w", err)
	}
	return image, mime.String, nil
}

func checkCategoryOwner(ctx context.Context, q dbtx, userID string, catID *string) error {
	if catID == nil {
		return nil
	}
	c, err := getCategory(ctx, q, *catID)
	if err != nil {
		return err
	}
	if c == nil || c.UserID != userID {
		return domainerrors.Validationf("category %s does not exist", *catID)
	}
	return nil
}
