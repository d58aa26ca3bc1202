package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

const sendQueueSize = 16

// Handler upgrades HTTP requests to websockets and dispatches inbound
// game events into the service.
type Handler struct {
	hub      *Hub
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, service *app.GameService) *Handler {
	return &Handler{
		hub:     hub,
		service: service,
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

type joinPayload struct {
	GameCode   string `json:"gameCode"`
	PlayerName string `json:"playerName"`
}

type answerPayload struct {
	GameCode string `json:"gameCode"`
	Answer   *int   `json:"answer"`
}

// ServeWS runs one connection: mint an opaque handle, register it with
// the hub, then loop over inbound events until the socket dies. The
// implicit disconnect at the end mirrors every explicit event.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	id := domain.ConnID(uuid.NewString())
	c := &client{id: id, conn: conn, send: make(chan envelope, sendQueueSize)}
	h.hub.add(c)
	go c.writePump()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(id, inbound)
	}

	h.service.Disconnect(id)
	h.hub.remove(id)
}

func (h *Handler) dispatch(id domain.ConnID, inbound inboundMessage) {
	switch inbound.Type {
	case app.EventJoinGame:
		var payload joinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.GameCode == "" || payload.PlayerName == "" {
			h.hub.SendTo(id, app.EventError, "game code and player name are required")
			return
		}
		if err := h.service.Join(id, payload.GameCode, payload.PlayerName); err != nil {
			h.hub.SendTo(id, app.EventError, err.Error())
		}

	case app.EventAdminJoin:
		code, ok := h.codePayload(id, inbound.Payload)
		if !ok {
			return
		}
		if err := h.service.AttachObserver(id, code); err != nil {
			h.hub.SendTo(id, app.EventError, err.Error())
		}

	case app.EventStartGame:
		code, ok := h.codePayload(id, inbound.Payload)
		if !ok {
			return
		}
		if err := h.service.Start(code); err != nil {
			h.hub.SendTo(id, app.EventError, err.Error())
		}

	case app.EventAnswer:
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Answer == nil {
			h.hub.SendTo(id, app.EventError, "answer is required")
			return
		}
		if err := h.service.SubmitAnswer(id, *payload.Answer); err != nil {
			h.hub.SendTo(id, app.EventError, err.Error())
		}

	case app.EventNextQuestion:
		code, ok := h.codePayload(id, inbound.Payload)
		if !ok {
			return
		}
		// Admin-only event with no reply channel; failures are logged.
		if err := h.service.Advance(code); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrNoActiveQuestion) {
				log.Printf("next-question for %s ignored: %v", code, err)
				return
			}
			h.hub.SendTo(id, app.EventError, err.Error())
		}

	default:
		h.hub.SendTo(id, app.EventError, "unsupported message type")
	}
}

// codePayload decodes events whose payload is a bare game code string.
func (h *Handler) codePayload(id domain.ConnID, raw json.RawMessage) (string, bool) {
	var code string
	if err := json.Unmarshal(raw, &code); err != nil || code == "" {
		h.hub.SendTo(id, app.EventError, "game code is required")
		return "", false
	}
	return code, true
}
