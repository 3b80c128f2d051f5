package handlers

import (
	"log/slog"
	"net/http"

	"github.com/courtside-dev/bracket-engine/ws"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: сверять Origin со списком доверенных доменов фронтенда.
		return true
	},
}

type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs - GET /ws/stops/{stopID}. Подписывает клиента на события этапа:
// обновления матчей, регенерацию, конфликты продвижения.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	stopID, err := urlParamInt(r, "stopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "stop_id", stopID, "error", err)
		return
	}

	client := &ws.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: ws.StopRoom(stopID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
