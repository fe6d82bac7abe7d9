package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (chi.Router, *harness) {
	t.Helper()
	h := newHarness(t, &fakeGenerator{guess: "Lion"}, WithMinQuestions(2))
	r := chi.NewRouter()
	RegisterRoutes(r, h.engine)
	return r, h
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHTTPGameFlow(t *testing.T) {
	r, _ := setupRouter(t)

	rec := do(t, r, http.MethodPost, "/api/games", map[string]string{"domain": "Animal"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var started startGameResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&started))
	assert.Equal(t, "animal", started.Domain)
	base := "/api/games/" + started.SessionID

	for i := 1; i <= 2; i++ {
		rec = do(t, r, http.MethodGet, base+"/question", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var q Question
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&q))
		assert.Equal(t, i, q.Number)

		rec = do(t, r, http.MethodPost, base+"/answer", answerRequest{QuestionID: q.ID, Answer: "yes"})
		require.Equal(t, http.StatusOK, rec.Code)
		var res AnswerResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, i, res.QuestionsAsked)
		assert.Equal(t, i == 2, res.ShouldGuess)
	}

	rec = do(t, r, http.MethodGet, base+"/guess", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var g Guess
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&g))
	assert.Equal(t, "Lion", g.Entity)

	rec = do(t, r, http.MethodPost, base+"/result", resultRequest{WasCorrect: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, base+"/question", nil)
	assert.Equal(t, http.StatusGone, rec.Code)

	rec = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var s Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, StatusCompleted, s.Status)
}

func TestHTTPErrors(t *testing.T) {
	r, _ := setupRouter(t)

	rec := do(t, r, http.MethodPost, "/api/games", map[string]string{"domain": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/games/missing/question", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/games", map[string]string{"domain": "food"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var started startGameResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&started))
	base := "/api/games/" + started.SessionID

	rec = do(t, r, http.MethodGet, base+"/guess", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodGet, base+"/question", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var q Question
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&q))

	rec = do(t, r, http.MethodPost, base+"/answer", answerRequest{QuestionID: q.ID, Answer: "banana"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, base+"/answer", bytes.NewBufferString("{"))
	raw := httptest.NewRecorder()
	r.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrSessionNotFound, http.StatusNotFound},
		{ErrSessionClosed, http.StatusGone},
		{fmt.Errorf("x: %w", ErrInvalidAnswer), http.StatusBadRequest},
		{ErrInvalidResult, http.StatusBadRequest},
		{ErrInvalidDomain, http.StatusBadRequest},
		{ErrInvalidState, http.StatusConflict},
		{ErrGeneratorUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}
