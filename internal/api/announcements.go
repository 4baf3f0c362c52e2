package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"shopadmin/internal/catalog"
	"shopadmin/internal/model"
	"shopadmin/internal/store"
)

// AnnouncementsHandler handles announcement CRUD endpoints.
type AnnouncementsHandler struct {
	DB *sql.DB
}

type announcementRequest struct {
	Title   string `json:"title"`
	Header  string `json:"header"`
	Content string `json:"content"`
	Color   string `json:"color"`
	Visible bool   `json:"visible"`
}

func (req announcementRequest) validate() bool {
	return req.Title != "" && req.Header != "" && req.Content != "" && req.Color != ""
}

// List handles GET /announcements. With ?visible=true only visible
// announcements are returned (the storefront's view).
func (h *AnnouncementsHandler) List(w http.ResponseWriter, r *http.Request) {
	visibleOnly := r.URL.Query().Get("visible") == "true"
	announcements, err := store.ListAnnouncements(r.Context(), h.DB, visibleOnly)
	if err != nil {
		slog.Error("listing announcements", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to list announcements")
		return
	}
	if announcements == nil {
		announcements = []model.Announcement{}
	}
	jsonResponse(w, http.StatusOK, announcements)
}

// Create handles POST /announcements.
func (h *AnnouncementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid request body")
		return
	}
	if !req.validate() {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "title, header, content and color required")
		return
	}

	announcement, err := store.CreateAnnouncement(r.Context(), h.DB, model.Announcement{
		Title:   req.Title,
		Header:  req.Header,
		Content: req.Content,
		Color:   req.Color,
		Visible: req.Visible,
	})
	if err != nil {
		slog.Error("creating announcement", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to create announcement")
		return
	}
	jsonResponse(w, http.StatusCreated, announcement)
}

// Get handles GET /announcements/{id}.
func (h *AnnouncementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid announcement id")
		return
	}

	announcement, err := store.GetAnnouncement(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting announcement", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to fetch announcement")
		return
	}
	if announcement == nil {
		jsonError(w, http.StatusNotFound, catalog.KindNotFound, "announcement not found")
		return
	}
	jsonResponse(w, http.StatusOK, announcement)
}

// Update handles PUT /announcements/{id}.
func (h *AnnouncementsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid announcement id")
		return
	}

	var req announcementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid request body")
		return
	}
	if !req.validate() {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "title, header, content and color required")
		return
	}

	existing, err := store.GetAnnouncement(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting announcement", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to update announcement")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, catalog.KindNotFound, "announcement not found")
		return
	}

	err = store.UpdateAnnouncement(r.Context(), h.DB, id, model.Announcement{
		Title:   req.Title,
		Header:  req.Header,
		Content: req.Content,
		Color:   req.Color,
		Visible: req.Visible,
	})
	if err != nil {
		slog.Error("updating announcement", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to update announcement")
		return
	}

	announcement, _ := store.GetAnnouncement(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, announcement)
}

// Delete handles DELETE /announcements/{id}.
func (h *AnnouncementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, catalog.KindValidation, "invalid announcement id")
		return
	}

	existing, err := store.GetAnnouncement(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting announcement", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to delete announcement")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, catalog.KindNotFound, "announcement not found")
		return
	}

	if err := store.DeleteAnnouncement(r.Context(), h.DB, id); err != nil {
		slog.Error("deleting announcement", "error", err)
		jsonError(w, http.StatusInternalServerError, catalog.KindStorage, "failed to delete announcement")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "announcement deleted"})
}
