package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"shopadmin/internal/db"
	"shopadmin/internal/model"
)

func createTestCategory(t *testing.T, database *sql.DB, name string) *model.Category {
	t.Helper()
	cat, err := CreateCategory(context.Background(), database, name)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return cat
}

func testProduct(categoryID int64, name string, price string, refs ...string) model.Product {
	return model.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       3,
		CategoryID:  categoryID,
		ImageRefs:   refs,
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	cat := createTestCategory(t, database, "Lighting")

	product, err := CreateProduct(ctx, database, testProduct(cat.ID, "Lamp", "19.99", "/uploads/a.jpg", "/uploads/b.jpg"))
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.Name != "Lamp" {
		t.Errorf("expected name 'Lamp', got %q", product.Name)
	}
	if !product.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("expected price 19.99, got %s", product.Price)
	}
	if product.Category == nil || product.Category.Name != "Lighting" {
		t.Errorf("expected resolved category 'Lighting', got %+v", product.Category)
	}
	if len(product.ImageRefs) != 2 || product.ImageRefs[0] != "/uploads/a.jpg" || product.ImageRefs[1] != "/uploads/b.jpg" {
		t.Errorf("expected refs in insertion order, got %v", product.ImageRefs)
	}
}

func TestGetProductMissing(t *testing.T) {
	database := db.NewTestDB(t)

	product, err := GetProduct(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product != nil {
		t.Errorf("expected nil for missing product, got %+v", product)
	}
}

func TestUpdateProductReplacesRefs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	cat := createTestCategory(t, database, "Lighting")

	product, _ := CreateProduct(ctx, database, testProduct(cat.ID, "Lamp", "19.99", "/uploads/a.jpg", "/uploads/b.jpg"))

	updated := testProduct(cat.ID, "Lamp v2", "24.99", "/uploads/b.jpg", "/uploads/c.jpg")
	if err := UpdateProduct(ctx, database, product.ID, updated); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	got, _ := GetProduct(ctx, database, product.ID)
	if got.Name != "Lamp v2" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
	if len(got.ImageRefs) != 2 || got.ImageRefs[0] != "/uploads/b.jpg" || got.ImageRefs[1] != "/uploads/c.jpg" {
		t.Errorf("expected refs replaced in order, got %v", got.ImageRefs)
	}
}

func TestDeleteProductCascadesRefs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	cat := createTestCategory(t, database, "Lighting")

	product, _ := CreateProduct(ctx, database, testProduct(cat.ID, "Lamp", "19.99", "/uploads/a.jpg"))
	if err := DeleteProduct(ctx, database, product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}

	got, _ := GetProduct(ctx, database, product.ID)
	if got != nil {
		t.Errorf("expected product gone, got %+v", got)
	}

	var count int
	database.QueryRow(`SELECT COUNT(*) FROM product_images WHERE product_id = ?`, product.ID).Scan(&count)
	if count != 0 {
		t.Errorf("expected image ref rows cascaded away, got %d", count)
	}
}
