package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/newsgpt/newsgpt/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// errorHandlers maps the error taxonomy to HTTP statuses, first match wins.
var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrValidation, http.StatusBadRequest),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
	sentinelHandler(domain.ErrUpstream, http.StatusInternalServerError),
	sentinelHandler(domain.ErrStore, http.StatusInternalServerError),
}

func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, err.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
