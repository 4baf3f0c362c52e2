package api

import (
	"database/sql"
	"net/http"

	"shopadmin/internal/assets"
	"shopadmin/internal/catalog"
)

// NewRouter creates the router with all endpoints registered. Stored
// images are served statically under the asset store's public prefix.
func NewRouter(db *sql.DB, assetStore *assets.Store) http.Handler {
	mux := http.NewServeMux()

	productsHandler := &ProductsHandler{
		DB:      db,
		Catalog: &catalog.Manager{DB: db, Assets: assetStore},
	}
	categoriesHandler := &CategoriesHandler{DB: db}
	announcementsHandler := &AnnouncementsHandler{DB: db}

	// Products. The literal /filter pattern wins over the {id} wildcard.
	mux.HandleFunc("GET /products/filter", productsHandler.Filter)
	mux.HandleFunc("GET /products/{id}", productsHandler.Get)
	mux.HandleFunc("POST /products", productsHandler.Create)
	mux.HandleFunc("PUT /products/{id}", productsHandler.Update)
	mux.HandleFunc("DELETE /products/{id}", productsHandler.Delete)

	// Categories.
	mux.HandleFunc("GET /categories", categoriesHandler.List)
	mux.HandleFunc("POST /categories", categoriesHandler.Create)
	mux.HandleFunc("GET /categories/{id}", categoriesHandler.Get)
	mux.HandleFunc("PUT /categories/{id}", categoriesHandler.Update)
	mux.HandleFunc("DELETE /categories/{id}", categoriesHandler.Delete)

	// Announcements.
	mux.HandleFunc("GET /announcements", announcementsHandler.List)
	mux.HandleFunc("POST /announcements", announcementsHandler.Create)
	mux.HandleFunc("GET /announcements/{id}", announcementsHandler.Get)
	mux.HandleFunc("PUT /announcements/{id}", announcementsHandler.Update)
	mux.HandleFunc("DELETE /announcements/{id}", announcementsHandler.Delete)

	// Stored images.
	prefix := assetStore.PublicPrefix + "/"
	mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(assetStore.Root))))

	return mux
}
