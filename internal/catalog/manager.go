// Package catalog owns the product write path. The Manager keeps a
// product's image refs and the files behind them in step across creates,
// edits and deletes. Metadata and files are not written transactionally:
// ingestion failures abort a write before metadata is touched, while file
// deletions are best-effort and never block a metadata update, so a failed
// delete can leave an orphaned file behind.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"shopadmin/internal/assets"
	"shopadmin/internal/imaging"
	"shopadmin/internal/model"
	"shopadmin/internal/store"
)

// Manager reconciles product records with the asset store.
type Manager struct {
	DB     *sql.DB
	Assets *assets.Store
}

// ProductInput is the metadata part of a product write.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  int64
}

// Upload is one file attached to a product write.
type Upload struct {
	MIME string
	Data io.Reader
}

// validate checks the metadata fields and that the category exists. It
// runs before any side effect so bad input never leaves files behind.
func (in ProductInput) validate(ctx context.Context, db *sql.DB) error {
	if in.Name == "" || in.Description == "" {
		return Errf(KindValidation, "missing required fields: name, description, price, stock, or category")
	}
	if in.Price.IsNegative() {
		return Errf(KindValidation, "price must not be negative")
	}
	if in.Stock < 0 {
		return Errf(KindValidation, "stock must not be negative")
	}

	cat, err := store.GetCategory(ctx, db, in.CategoryID)
	if err != nil {
		return wrap(KindStorage, err, "checking category")
	}
	if cat == nil {
		return Errf(KindValidation, "unknown category %d", in.CategoryID)
	}
	return nil
}

// Create validates the input, ingests the uploads and persists the
// product. Any ingestion failure aborts the write before metadata is
// persisted; files ingested earlier in the same batch are not rolled back.
func (m *Manager) Create(ctx context.Context, in ProductInput, uploads []Upload) (*model.Product, error) {
	if err := in.validate(ctx, m.DB); err != nil {
		return nil, err
	}
	if len(uploads) > model.MaxImages {
		return nil, Errf(KindLimitExceeded, "a product can hold at most %d images", model.MaxImages)
	}

	refs, err := m.ingest(uploads)
	if err != nil {
		return nil, err
	}

	created, err := store.CreateProduct(ctx, m.DB, model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		ImageRefs:   refs,
	})
	if err != nil {
		return nil, wrap(KindStorage, err, "saving product")
	}
	return created, nil
}

// Update reconciles a product against an edit: refs listed in removeRefs
// are dropped and their files deleted best-effort, uploads are ingested
// and appended in upload order, and the metadata is persisted. The image
// cap is checked before anything is touched.
//
// Concurrent updates to the same product are last-write-wins: the losing
// write's metadata is overwritten and its freshly ingested files become
// unreferenced orphans. Accepted for this workload.
func (m *Manager) Update(ctx context.Context, id int64, in ProductInput, uploads []Upload, removeRefs []string) (*model.Product, error) {
	current, err := store.GetProduct(ctx, m.DB, id)
	if err != nil {
		return nil, wrap(KindStorage, err, "loading product")
	}
	if current == nil {
		return nil, Errf(KindNotFound, "product %d not found", id)
	}

	if err := in.validate(ctx, m.DB); err != nil {
		return nil, err
	}

	// Only refs the product actually holds may be removed.
	held := make(map[string]bool, len(current.ImageRefs))
	for _, ref := range current.ImageRefs {
		held[ref] = true
	}
	removed := make(map[string]bool, len(removeRefs))
	for _, ref := range removeRefs {
		if !held[ref] {
			return nil, Errf(KindValidation, "image %q does not belong to product %d", ref, id)
		}
		removed[ref] = true
	}

	var retained []string
	for _, ref := range current.ImageRefs {
		if !removed[ref] {
			retained = append(retained, ref)
		}
	}

	if len(retained)+len(uploads) > model.MaxImages {
		return nil, Errf(KindLimitExceeded, "a product can hold at most %d images", model.MaxImages)
	}

	// Best-effort file deletion: a file that is already gone or cannot be
	// deleted must not block the metadata update.
	for _, ref := range removeRefs {
		if err := m.Assets.Remove(ref); err != nil {
			slog.Warn("could not delete stored image", "ref", ref, "error", err)
		}
	}

	ingested, err := m.ingest(uploads)
	if err != nil {
		return nil, err
	}

	err = store.UpdateProduct(ctx, m.DB, id, model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		ImageRefs:   append(retained, ingested...),
	})
	if err != nil {
		return nil, wrap(KindStorage, err, "saving product")
	}

	return store.GetProduct(ctx, m.DB, id)
}

// Delete removes a product and, best-effort, every file its refs point
// to. File deletion failures are logged and never block the metadata
// delete, so Delete stays idempotent with respect to missing files.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	current, err := store.GetProduct(ctx, m.DB, id)
	if err != nil {
		return wrap(KindStorage, err, "loading product")
	}
	if current == nil {
		return Errf(KindNotFound, "product %d not found", id)
	}

	for _, ref := range current.ImageRefs {
		if err := m.Assets.Remove(ref); err != nil {
			slog.Warn("could not delete stored image", "ref", ref, "error", err)
		}
	}

	if err := store.DeleteProduct(ctx, m.DB, id); err != nil {
		return wrap(KindStorage, err, "deleting product")
	}
	return nil
}

// ingest runs each upload through the imaging pipeline and persists the
// result, returning public refs in upload order.
func (m *Manager) ingest(uploads []Upload) ([]string, error) {
	var refs []string
	for _, u := range uploads {
		result, err := imaging.Process(u.MIME, u.Data)
		if err != nil {
			if errors.Is(err, imaging.ErrUnsupportedMedia) {
				return nil, wrap(KindInvalidMediaType, err, "a file that is not an image was uploaded")
			}
			return nil, wrap(KindStorage, err, "processing image")
		}

		ref, err := m.Assets.Save(result.Data)
		if err != nil {
			return nil, wrap(KindStorage, err, "storing image")
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
