package service

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/docqa/docqa-be/types"
)

// WebSocketService answers document questions over a websocket, one
// request at a time per connection.
type WebSocketService struct {
	documents *DocumentService
	upgrader  websocket.Upgrader
}

func NewWebSocketService(documents *DocumentService) *WebSocketService {
	return &WebSocketService{
		documents: documents,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketAsk:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}
			var payload types.WebsocketAskPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}

			res, err := s.documents.Ask(r.Context(), payload.DocumentID, payload.Question)
			if err != nil {
				slog.Warn("websocket ask failed", "document_id", payload.DocumentID, "error", err)
				s.writeError(conn, err.Error())
				continue
			}
			if err := conn.WriteJSON(types.WebsocketResponse{
				Type: types.TypeWebsocketAsk,
				Payload: types.WebsocketAskResponse{
					Answer:   res.Answer,
					Provider: res.Provider,
				},
			}); err != nil {
				slog.Warn("websocket write error", "error", err)
			}

		case types.TypeWebsocketPing:
			if err := conn.WriteJSON(types.WebsocketResponse{
				Type: types.TypeWebsocketPong,
			}); err != nil {
				slog.Warn("websocket write error", "error", err)
			}

		default:
			s.writeError(conn, "unknown message type")
		}
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(types.WebsocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebsocketErrorResponse{Message: message},
	}); err != nil {
		slog.Warn("websocket write error", "error", err)
	}
}
