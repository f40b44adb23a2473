package aggregator

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quiz-companion/internal/domain"
)

// Handler exposes the sync protocol over HTTP: POST /v1/answers applies a
// batch of uploads, GET /v1/scoreboard serves aggregates.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Register wires the handler's routes into the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/answers", h.handleAnswers)
	mux.HandleFunc("/v1/scoreboard", h.handleScoreboard)
}

type answersRequest struct {
	Answers []domain.AnswerUpload `json:"answers"`
}

type answersResponse struct {
	Results []domain.PushResult `json:"results"`
}

func (h *Handler) handleAnswers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	results := make([]domain.PushResult, len(req.Answers))
	for i, up := range req.Answers {
		err := h.store.Upsert(r.Context(), up)
		switch {
		case err == nil:
			results[i] = domain.PushResult{Status: domain.PushAccepted}
		default:
			var reject *RejectError
			if errors.As(err, &reject) {
				results[i] = domain.PushResult{Status: domain.PushRejected, Reason: reject.Reason}
				continue
			}
			log.Printf("upsert submission for %s: %v", up.QuizUUID, err)
			http.Error(w, "storage failure", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, answersResponse{Results: results})
}

func (h *Handler) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	quizUUID := r.URL.Query().Get("quiz_uuid")
	if quizUUID == "" {
		http.Error(w, "missing quiz_uuid", http.StatusBadRequest)
		return
	}

	board, err := h.store.Scoreboard(r.Context(), quizUUID)
	if err != nil {
		log.Printf("scoreboard for %s: %v", quizUUID, err)
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}
	writeJSON(w, board)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
