// Package remote implements the HTTP client side of the sync protocol.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quiz-companion/internal/domain"
)

type pushRequest struct {
	Answers []domain.AnswerUpload `json:"answers"`
}

type pushResponse struct {
	Results []domain.PushResult `json:"results"`
}

// Client talks JSON over HTTP to the aggregation service. Every call is
// bounded by the configured timeout; a timeout or transport error surfaces
// as domain.ErrSyncUnavailable so callers retry instead of hanging.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) PushAnswers(ctx context.Context, uploads []domain.AnswerUpload) ([]domain.PushResult, error) {
	body, err := json.Marshal(pushRequest{Answers: uploads})
	if err != nil {
		return nil, fmt.Errorf("encode push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/answers", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post answers: %v: %w", err, domain.ErrSyncUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post answers: status %d: %w", resp.StatusCode, domain.ErrSyncUnavailable)
	}

	var decoded pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode push response: %v: %w", err, domain.ErrSyncUnavailable)
	}
	return decoded.Results, nil
}

func (c *Client) FetchScoreboard(ctx context.Context, quizUUID string) (domain.Scoreboard, error) {
	endpoint := c.baseURL + "/v1/scoreboard?quiz_uuid=" + url.QueryEscape(quizUUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Scoreboard{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Scoreboard{}, fmt.Errorf("get scoreboard: %v: %w", err, domain.ErrSyncUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Scoreboard{}, fmt.Errorf("get scoreboard: status %d: %w", resp.StatusCode, domain.ErrSyncUnavailable)
	}

	var board domain.Scoreboard
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return domain.Scoreboard{}, fmt.Errorf("decode scoreboard: %v: %w", err, domain.ErrSyncUnavailable)
	}
	return board, nil
}
