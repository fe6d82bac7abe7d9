package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRecentAndEntities(t *testing.T) {
	store, qs := setupTestStore(t)
	ctx := context.Background()

	asked := seedGame(t, qs, "animal",
		[]string{"Is it a mammal?", "Does it roar?", "Is it wild?"},
		[]string{"yes", "yes", "yes"})
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.ApplyResult(ctx, Result{
		GameID:      "g1",
		Domain:      "animal",
		Correct:     true,
		Guessed:     "Lion",
		StartedAt:   start,
		CompletedAt: start.Add(time.Minute),
		Asked:       asked,
	}))

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/domains/Animal/games", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var games []GameRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&games))
	require.Len(t, games, 1)
	assert.Equal(t, "g1", games[0].ID)
	assert.Equal(t, 3, games[0].QuestionsCount)

	req = httptest.NewRequest(http.MethodGet, "/api/domains/animal/entities?limit=5", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var entities []Outcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entities))
	require.Len(t, entities, 1)
	assert.Equal(t, "Lion", entities[0].Entity)

	req = httptest.NewRequest(http.MethodGet, "/api/domains/food/games", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
