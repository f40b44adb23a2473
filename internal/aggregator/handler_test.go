package aggregator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-companion/internal/domain"
	"quiz-companion/internal/remote"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(newTestStore(t)).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// The client and the handler share one wire contract; exercising them
// against each other catches drift on either side.
func TestPushAndScoreboardRoundTrip(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)
	client := remote.NewClient(server.URL, time.Second)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	results, err := client.PushAnswers(ctx, []domain.AnswerUpload{
		upload("p-1", "q-1", domain.SingleSelection(1), at),
		upload("p-2", "q-1", domain.SingleSelection(1), at),
		upload("p-3", "", domain.SingleSelection(0), at),
	})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Status != domain.PushAccepted || results[1].Status != domain.PushAccepted {
		t.Fatalf("valid uploads not accepted: %+v", results)
	}
	if results[2].Status != domain.PushRejected || results[2].Reason != "missing quiz_uuid" {
		t.Fatalf("malformed upload result: %+v", results[2])
	}

	board, err := client.FetchScoreboard(ctx, "q-1")
	if err != nil {
		t.Fatalf("fetch scoreboard: %v", err)
	}
	if board.QuizUUID != "q-1" || board.Respondents != 2 || board.Counts["1"] != 2 {
		t.Fatalf("unexpected board: %+v", board)
	}
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/v1/answers")
	if err != nil {
		t.Fatalf("get answers: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET on answers: status %d", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/v1/answers", "application/json", nil)
	if err != nil {
		t.Fatalf("post empty body: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty body: status %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/v1/scoreboard")
	if err != nil {
		t.Fatalf("get scoreboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing quiz_uuid: status %d", resp.StatusCode)
	}
}
