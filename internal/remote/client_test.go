package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-companion/internal/domain"
)

func TestPushAnswers(t *testing.T) {
	ctx := context.Background()
	var gotPath, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")

		var req struct {
			Answers []domain.AnswerUpload `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		results := make([]domain.PushResult, len(req.Answers))
		for i, a := range req.Answers {
			if a.QuizUUID == "" {
				results[i] = domain.PushResult{Status: domain.PushRejected, Reason: "missing quiz uuid"}
				continue
			}
			results[i] = domain.PushResult{Status: domain.PushAccepted}
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	uploads := []domain.AnswerUpload{
		{ProfileUUID: "p-1", QuizUUID: "q-1", Selection: domain.SingleSelection(0), SubmittedAt: time.Now()},
		{ProfileUUID: "p-1", QuizUUID: "", Selection: domain.SingleSelection(1), SubmittedAt: time.Now()},
	}

	results, err := client.PushAnswers(ctx, uploads)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if gotPath != "/v1/answers" {
		t.Fatalf("posted to %q", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type %q", gotContentType)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != domain.PushAccepted {
		t.Fatalf("first result: %+v", results[0])
	}
	if results[1].Status != domain.PushRejected || results[1].Reason == "" {
		t.Fatalf("second result: %+v", results[1])
	}
}

func TestPushAnswersServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.PushAnswers(context.Background(), []domain.AnswerUpload{{QuizUUID: "q-1"}})
	if !errors.Is(err, domain.ErrSyncUnavailable) {
		t.Fatalf("expected sync-unavailable, got %v", err)
	}
}

func TestPushAnswersTimeout(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client := NewClient(server.URL, 50*time.Millisecond)
	_, err := client.PushAnswers(context.Background(), []domain.AnswerUpload{{QuizUUID: "q-1"}})
	if !errors.Is(err, domain.ErrSyncUnavailable) {
		t.Fatalf("expected sync-unavailable on timeout, got %v", err)
	}
}

func TestFetchScoreboard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scoreboard" {
			t.Errorf("fetched %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("quiz_uuid"); got != "q-1" {
			t.Errorf("quiz_uuid %q", got)
		}
		json.NewEncoder(w).Encode(domain.Scoreboard{
			QuizUUID:    "q-1",
			Respondents: 7,
			Counts:      map[string]int{"0": 5, "1": 2},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	board, err := client.FetchScoreboard(context.Background(), "q-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if board.Respondents != 7 || board.Counts["0"] != 5 {
		t.Fatalf("unexpected board: %+v", board)
	}
}

func TestFetchScoreboardBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.FetchScoreboard(context.Background(), "q-1"); !errors.Is(err, domain.ErrSyncUnavailable) {
		t.Fatalf("expected sync-unavailable, got %v", err)
	}
}
