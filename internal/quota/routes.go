package quota

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the quota status endpoint on the given router.
func RegisterRoutes(r chi.Router, t *Tracker) {
	r.Get("/api/quota", statusHandler(t))
}

func statusHandler(t *Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(t.Status())
	}
}
