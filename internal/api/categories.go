package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shopadmin/internal/catalog"
	"shopadmin/internal/model"
	"shopadmin/internal/store"
)

// CategoriesHandler handles category CRUD endpoints.
type CategoriesHandler struct {
	DB *sql.DB
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List handles GET /categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing categories", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Create handles POST /categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "name required")
		return
	}

	existing, err := store.GetCategoryByName(r.Context(), h.DB, req.Name)
	if err != nil {
		slog.Error("checking category name", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to create category")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, catalog.KindConflict, "category name already exists")
		return
	}

	category, err := store.CreateCategory(r.Context(), h.DB, req.Name)
	if err != nil {
		slog.Error("creating category", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to create category")
		return
	}
	jsonResponse(w, http.StatusCreated, category)
}

// Get handles GET /categories/{id}.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid category id")
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting category", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to fetch category")
		return
	}
	if category == nil {
		jsonError(w, http.StatusNotFound, catalog.KindNotFound, "category not found")
		return
	}
	jsonResponse(w, http.StatusOK, category)
}

// Update handles PUT /categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "name required")
		return
	}

	existing, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting category", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to update category")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, catalog.KindNotFound, "category not found")
		return
	}

	if err := store.UpdateCategory(r.Context(), h.DB, id, req.Name); err != nil {
		slog.Error("updating category", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to update category")
		return
	}

	category, _ := store.GetCategory(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, category)
}

// Delete handles DELETE /categories/{id}. Deletion is denied while
// products still reference the category.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid category id")
		return
	}

	existing, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting category", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to delete category")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, catalog.KindNotFound, "category not found")
		return
	}

	if err := store.DeleteCategory(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrCategoryInUse) {
			jsonError(w, http.StatusConflict, catalog.KindConflict, "category is referenced by products")
			return
		}
		slog.Error("deleting category", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to delete category")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
