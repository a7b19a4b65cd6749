package handlers

import (
	"net/http"
	"time"
)

// NewHealthHandler returns GET /health handler. Liveness only; model
// correctness is not probed here.
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
