// Package http is the host bridge: the boundary the interactive front-end
// talks to. It serves display plans, accepts answer events, and relays
// explicit sync requests. The bridge never initiates sync on its own.
package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-companion/internal/app"
	"quiz-companion/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	engine   *app.SyncEngine // nil when no remote is configured
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, engine *app.SyncEngine) *WSHandler {
	return &WSHandler{
		service: service,
		engine:  engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type planPayload struct {
	Source    string `json:"source,omitempty"`
	Group     *int   `json:"group,omitempty"`
	Container string `json:"container,omitempty"`
}

type answerPayload struct {
	Source    string           `json:"source,omitempty"`
	QuizUUID  string           `json:"quizUuid,omitempty"`
	QuizIndex *int             `json:"quizIndex,omitempty"`
	Selection domain.Selection `json:"selection"`
}

type recordedPayload struct {
	QuizUUID  string           `json:"quizUuid,omitempty"`
	Score     float64          `json:"score"`
	Correct   bool             `json:"correct"`
	SyncState domain.SyncState `json:"syncState"`
	// LocalOnly marks answers for quizzes without a UUID: kept in the
	// ledger, never pushed.
	LocalOnly bool `json:"localOnly,omitempty"`
}

type scoreboardPayload struct {
	QuizUUID string `json:"quizUuid"`
}

// ServeWS upgrades the connection and serves bridge requests one at a time.
// The protocol is strictly request/response, so a single writer suffices.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		reply := h.dispatch(r, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

func (h *WSHandler) dispatch(r *http.Request, inbound inboundMessage) outboundMessage {
	switch inbound.Type {
	case "plan":
		var payload planPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid plan payload")
		}
		plan, err := h.service.Select(r.Context(), app.SelectRequest{
			Source:    payload.Source,
			Group:     payload.Group,
			Container: payload.Container,
		})
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage{Type: "plan", Payload: plan}

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid answer payload")
		}
		index := -1
		if payload.QuizIndex != nil {
			index = *payload.QuizIndex
		}
		ans, err := h.service.RecordFor(r.Context(), payload.Source, payload.QuizUUID, index, payload.Selection)
		if err != nil && !app.IsMissingIdentity(err) {
			return errorMessage(err.Error())
		}
		return outboundMessage{Type: "recorded", Payload: recordedPayload{
			QuizUUID:  ans.QuizUUID,
			Score:     ans.Score,
			Correct:   ans.Score == 1,
			SyncState: ans.SyncState,
			LocalOnly: app.IsMissingIdentity(err),
		}}

	case "sync":
		if h.engine == nil {
			return errorMessage("no sync endpoint configured")
		}
		report, err := h.engine.Push(r.Context())
		if err != nil {
			// Pending answers survive for the next attempt; tell the
			// front-end instead of failing hard.
			log.Printf("bridge sync push: %v", err)
		}
		return outboundMessage{Type: "syncReport", Payload: report}

	case "scoreboard":
		if h.engine == nil {
			return errorMessage("no sync endpoint configured")
		}
		var payload scoreboardPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid scoreboard payload")
		}
		board, err := h.engine.Pull(r.Context(), payload.QuizUUID)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage{Type: "scoreboard", Payload: board}

	default:
		return errorMessage("unsupported message type")
	}
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}
