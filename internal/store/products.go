package store

import (
	"context"
	"database/sql"
	"fmt"

	"shopadmin/internal/model"
)

const productColumns = `p.id, p.name, p.description, p.price, p.stock, p.category_id,
	       c.name, c.created_at, p.created_at, p.updated_at`

// CreateProduct inserts a product and its ordered image refs in one
// transaction and returns the stored record.
func CreateProduct(ctx context.Context, db *sql.DB, p model.Product) (*model.Product, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO products (name, description, price, stock, category_id) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price.InexactFloat64(), p.Stock, p.CategoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting product id: %w", err)
	}

	if err := insertImageRefs(ctx, tx, id, p.ImageRefs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing product: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// GetProduct returns a product with its category and image refs, or nil if
// it does not exist.
func GetProduct(ctx context.Context, db *sql.DB, id int64) (*model.Product, error) {
	p := model.Product{Category: &model.Category{}}
	err := db.QueryRowContext(ctx,
		`SELECT `+productColumns+`
		 FROM products p JOIN categories c ON c.id = p.category_id
		 WHERE p.id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
		&p.Category.Name, &p.Category.CreatedAt, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	p.Category.ID = p.CategoryID

	refs, err := getImageRefs(ctx, db, id)
	if err != nil {
		return nil, err
	}
	p.ImageRefs = refs
	return &p, nil
}

// UpdateProduct overwrites a product's metadata and image refs in one
// transaction. The refs replace the previous set wholesale, in the order
// given.
func UpdateProduct(ctx context.Context, db *sql.DB, id int64, p model.Product) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, price = ?, stock = ?, category_id = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Name, p.Description, p.Price.InexactFloat64(), p.Stock, p.CategoryID, id,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = ?`, id); err != nil {
		return fmt.Errorf("clearing image refs: %w", err)
	}
	if err := insertImageRefs(ctx, tx, id, p.ImageRefs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing product update: %w", err)
	}
	return nil
}

// DeleteProduct removes a product; its image ref rows go with it via the
// foreign key cascade. The files behind the refs are the lifecycle
// manager's concern.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

func insertImageRefs(ctx context.Context, tx *sql.Tx, productID int64, refs []string) error {
	for i, ref := range refs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_images (product_id, position, ref) VALUES (?, ?, ?)`,
			productID, i, ref,
		); err != nil {
			return fmt.Errorf("inserting image ref: %w", err)
		}
	}
	return nil
}

func getImageRefs(ctx context.Context, db *sql.DB, productID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT ref FROM product_images WHERE product_id = ? ORDER BY position`, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting image refs: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scanning image ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
