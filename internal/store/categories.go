package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shopadmin/internal/model"
)

// ErrCategoryInUse is returned when deleting a category that products
// still reference.
var ErrCategoryInUse = errors.New("category is referenced by products")

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, db *sql.DB, name string) (*model.Category, error) {
	result, err := db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID, or nil if it does not exist.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	cat := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = ?`, id,
	).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return cat, nil
}

// GetCategoryByName returns a category by exact name, or nil.
func GetCategoryByName(ctx context.Context, db *sql.DB, name string) (*model.Category, error) {
	cat := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE name = ?`, name,
	).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category by name: %w", err)
	}
	return cat, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// UpdateCategory renames a category.
func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name string) error {
	_, err := db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category. Deletion is denied with
// ErrCategoryInUse while any product references it.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = ?`, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("counting category references: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

// ResolveCategoryNames maps category names to IDs with case-sensitive
// exact matching. Names that resolve to nothing are dropped; resolving
// none of them returns an empty slice, which the filter treats as an empty
// result rather than a failure.
func ResolveCategoryNames(ctx context.Context, db *sql.DB, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}

	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}
	query := `SELECT id FROM categories WHERE name IN (` +
		strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ") + `)`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("resolving category names: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning category id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
