package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shopadmin/internal/catalog"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// jsonError writes a JSON error response carrying a machine-checkable
// kind alongside the human message.
func jsonError(w http.ResponseWriter, status int, kind catalog.Kind, message string) {
	jsonResponse(w, status, map[string]string{
		"error": message,
		"kind":  string(kind),
	})
}

// kindStatus maps error kinds to HTTP status codes.
var kindStatus = map[catalog.Kind]int{
	catalog.KindValidation:       http.StatusBadRequest,
	catalog.KindNotFound:         http.StatusNotFound,
	catalog.KindInvalidMediaType: http.StatusBadRequest,
	catalog.KindLimitExceeded:    http.StatusBadRequest,
	catalog.KindConflict:         http.StatusConflict,
	catalog.KindStorage:          http.StatusInternalServerError,
}

// writeError maps a catalog error to an HTTP response. Only the
// user-facing message leaves the server; causes are logged.
func writeError(w http.ResponseWriter, err error) {
	kind := catalog.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := "internal error"
	var ce *catalog.Error
	if errors.As(err, &ce) {
		message = ce.Message
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "kind", kind, "error", err)
		message = "internal error"
	}
	jsonError(w, status, kind, message)
}
