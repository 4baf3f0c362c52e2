package api

import (
	"database/sql"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"shopadmin/internal/assets"
	"shopadmin/internal/catalog"
	"shopadmin/internal/model"
	"shopadmin/internal/store"
)

// maxUploadBytes bounds a whole multipart product write: up to five
// images plus the form fields.
const maxUploadBytes = 32 << 20

// ProductsHandler handles product endpoints.
type ProductsHandler struct {
	DB      *sql.DB
	Catalog *catalog.Manager
}

// Filter handles GET /products/filter.
func (h *ProductsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := store.NewProductQuery()

	var priceRange store.PriceRange
	if min := params.Get("min"); min != "" {
		d, err := decimal.NewFromString(min)
		if err != nil {
			jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid minimum price value")
			return
		}
		priceRange.Min = &d
	}
	if max := params.Get("max"); max != "" {
		d, err := decimal.NewFromString(max)
		if err != nil {
			jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid maximum price value")
			return
		}
		priceRange.Max = &d
	}
	if priceRange.Min != nil || priceRange.Max != nil {
		query.Where(priceRange)
	}

	if names := splitNames(params.Get("categories")); len(names) > 0 {
		ids, err := store.ResolveCategoryNames(r.Context(), h.DB, names)
		if err != nil {
			slog.Error("resolving category names", "error", err)
			jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to resolve categories")
			return
		}
		// Unresolved names are dropped; none resolving means an empty
		// result, not a failure.
		query.Where(store.CategoryIn{IDs: ids})
	}

	if search := params.Get("search"); strings.TrimSpace(search) != "" {
		query.Where(store.TextMatch{Text: search})
	}

	switch sort := params.Get("sort"); sort {
	case "":
	case string(store.SortPriceAsc):
		query.SortByPrice(store.SortPriceAsc)
	case string(store.SortPriceDesc):
		query.SortByPrice(store.SortPriceDesc)
	default:
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, `invalid sort option, use "asc" or "desc"`)
		return
	}

	products, err := store.FilterProducts(r.Context(), h.DB, query)
	if err != nil {
		slog.Error("filtering products", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to fetch products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	for i := range products {
		products[i].ImageRefs = assets.Normalize(products[i].ImageRefs)
	}
	jsonResponse(w, http.StatusOK, products)
}

// Get handles GET /products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid product id")
		return
	}

	product, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting product", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to fetch product")
		return
	}
	if product == nil {
		jsonError(w, http.StatusNotFound, catalog.KindNotFound, "product not found")
		return
	}

	product.ImageRefs = assets.Normalize(product.ImageRefs)
	jsonResponse(w, http.StatusOK, product)
}

// Create handles POST /products (multipart).
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, uploads, _, closeUploads, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}
	defer closeUploads()

	product, err := h.Catalog.Create(r.Context(), input, uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, product)
}

// Update handles PUT /products/{id} (multipart).
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid product id")
		return
	}

	input, uploads, removeRefs, closeUploads, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}
	defer closeUploads()

	product, err := h.Catalog.Update(r.Context(), id, input, uploads, removeRefs)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, product)
}

// Delete handles DELETE /products/{id}.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid product id")
		return
	}

	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// parseMultipart reads a product write form: metadata fields, attached
// image files ("images") and refs marked for removal ("deletedImages").
// On failure it writes the error response and returns ok=false. The
// returned close function releases the opened upload files.
func (h *ProductsHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (catalog.ProductInput, []catalog.Upload, []string, func(), bool) {
	var input catalog.ProductInput
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "file too large or invalid multipart form")
		return input, nil, nil, noop, false
	}

	form := r.MultipartForm
	name := formValue(form, "name")
	description := formValue(form, "description")
	priceStr := formValue(form, "price")
	stockStr := formValue(form, "stock")
	categoryStr := formValue(form, "category")
	if name == "" || description == "" || priceStr == "" || stockStr == "" || categoryStr == "" {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation,
			"missing required fields: name, description, price, stock, or category")
		return input, nil, nil, noop, false
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid price value")
		return input, nil, nil, noop, false
	}
	stock, err := strconv.Atoi(stockStr)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid stock value")
		return input, nil, nil, noop, false
	}
	categoryID, err := strconv.ParseInt(categoryStr, 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid category id")
		return input, nil, nil, noop, false
	}

	input = catalog.ProductInput{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		CategoryID:  categoryID,
	}

	var uploads []catalog.Upload
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, header := range form.File["images"] {
		file, err := header.Open()
		if err != nil {
			closeAll()
			slog.Error("opening uploaded file", "error", err)
			jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to read upload")
			return input, nil, nil, noop, false
		}
		opened = append(opened, file)
		uploads = append(uploads, catalog.Upload{
			MIME: header.Header.Get("Content-Type"),
			Data: file,
		})
	}

	return input, uploads, form.Value["deletedImages"], closeAll, true
}

func formValue(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// splitNames splits a comma-separated list, trimming whitespace and
// dropping empties.
func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
