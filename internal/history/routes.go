package history

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts game history endpoints on the given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/domains/{domain}/games", recentGamesHandler(store))
	r.Get("/api/domains/{domain}/entities", entitiesHandler(store))
}

func recentGamesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := strings.ToLower(chi.URLParam(r, "domain"))
		result, err := store.Recent(r.Context(), domain, queryLimit(r, 20))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if result == nil {
			result = []GameRecord{}
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func entitiesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := strings.ToLower(chi.URLParam(r, "domain"))
		result, err := store.Candidates(r.Context(), domain, queryLimit(r, 20))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if result == nil {
			result = []Outcome{}
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func queryLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
