package store

import (
	"context"
	"database/sql"
	"fmt"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/id"
	"github.com/erazemk/packzen/internal/model"
)

const categoryColumns = `id, user_id, name, icon, sort_order`

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	c := &model.Category{}
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.SortOrder); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCategory creates a category for a user. Names are unique per user.
func CreateCategory(ctx context.Context, db *sql.DB, userID, name, icon string) (*model.Category, error) {
	return createCategory(ctx, db, userID, name, icon)
}

func createCategory(ctx context.Context, q dbtx, userID, name, icon string) (*model.Category, error) {
	catID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, err
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, icon, sort_order)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories WHERE user_id = ?))`,
		catID, userID, name, icon, userID,
	)
	if isUniqueViolation(err) {
		return nil, domainerrors.Conflictf("category %q already exists", name)
	}
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	return getCategory(ctx, q, catID)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db *sql.DB, catID string) (*model.Category, error) {
	return getCategory(ctx, db, catID)
}

func getCategory(ctx context.Context, q dbtx, catID string) (*model.Category, error) {
	c, err := scanCategory(q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, catID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// GetCategoryByName returns a user's category with the given name.
func GetCategoryByName(ctx context.Context, db *sql.DB, userID, name string) (*model.Category, error) {
	return getCategoryByName(ctx, db, userID, name)
}

func getCategoryByName(ctx context.Context, q dbtx, userID, name string) (*model.Category, error) {
	c, err := scanCategory(q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND name = ?`, userID, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category by name: %w", err)
	}
	return c, nil
}

// EnsureCategory returns the user's category named name, creating it if needed.
func EnsureCategory(ctx context.Context, db *sql.DB, userID, name, icon string) (*model.Category, error) {
	c, err := GetCategoryByName(ctx, db, userID, name)
	if err != nil || c != nil {
		return c, err
	}

	c, err = CreateCategory(ctx, db, userID, name, icon)
	if domainerrors.Is(err, domainerrors.ErrConflict) {
		// Created concurrently.
		return GetCategoryByName(ctx, db, userID, name)
	}
	return c, err
}

// ListCategories returns a user's categories in display order.
func ListCategories(ctx context.Context, db *sql.DB, userID string) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY sort_order, name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

// UpdateCategory renames a category and changes its icon and position.
func UpdateCategory(ctx context.Context, db *sql.DB, catID, name, icon string, sortOrder int) (*model.Category, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, sort_order = ? WHERE id = ?`,
		name, icon, sortOrder, catID,
	)
	if isUniqueViolation(err) {
		return nil, domainerrors.Conflictf("category %q already exists", name)
	}
	if err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domainerrors.NotFoundf("category %s not found", catID)
	}
	return GetCategory(ctx, db, catID)
}

// DeleteCategory removes a category. Items that used it become uncategorized.
func DeleteCategory(ctx context.Context, db *sql.DB, catID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, catID)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainerrors.NotFoundf("category %s not found", catID)
	}
	return nil
}
