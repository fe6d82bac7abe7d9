package game

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// RegisterRoutes mounts game endpoints on the given router.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Post("/api/games", startGameHandler(engine))
	r.Get("/api/games/{id}", getSessionHandler(engine))
	r.Delete("/api/games/{id}", abandonHandler(engine))
	r.Get("/api/games/{id}/question", nextQuestionHandler(engine))
	r.Post("/api/games/{id}/answer", submitAnswerHandler(engine))
	r.Get("/api/games/{id}/guess", makeGuessHandler(engine))
	r.Post("/api/games/{id}/result", submitResultHandler(engine))
}

type startGameRequest struct {
	Domain string `json:"domain"`
}

type startGameResponse struct {
	SessionID string `json:"session_id"`
	Domain    string `json:"domain"`
	Status    Status `json:"status"`
}

type answerRequest struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
}

type resultRequest struct {
	WasCorrect   bool   `json:"was_correct"`
	ActualEntity string `json:"actual_entity"`
}

type resultResponse struct {
	SessionID string `json:"session_id"`
	Status    Status `json:"status"`
	Correct   bool   `json:"correct"`
}

func startGameHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		s, err := engine.StartGame(r.Context(), req.Domain)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, startGameResponse{SessionID: s.ID, Domain: s.Domain, Status: s.Status})
	}
}

func getSessionHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := engine.Session(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func abandonHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := engine.Abandon(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func nextQuestionHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := engine.NextQuestion(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func submitAnswerHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		res, err := engine.SubmitAnswer(r.Context(), chi.URLParam(r, "id"), req.QuestionID, req.Answer)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func makeGuessHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := engine.MakeGuess(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func submitResultHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		s, err := engine.SubmitResult(r.Context(), chi.URLParam(r, "id"), req.WasCorrect, req.ActualEntity)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resultResponse{SessionID: s.ID, Status: s.Status, Correct: req.WasCorrect})
	}
}

// StatusCode maps engine errors onto HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, ErrInvalidAnswer), errors.Is(err, ErrInvalidResult), errors.Is(err, ErrInvalidDomain):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := StatusCode(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("game request failed")
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
