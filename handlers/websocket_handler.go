package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AndrijanaDejkovic/SnookerProject/realtime"
	"github.com/AndrijanaDejkovic/SnookerProject/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub         *realtime.Hub
	simulations services.SimulationService
	logger      *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, simulations services.SimulationService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, simulations: simulations, logger: logger}
}

// ServeWs подключает зрителя к комнате матча.
// Клиент подключается к /ws/matches/{matchID}; подключение — это join,
// закрытие соединения — leave.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		http.Error(w, "Missing matchID", http.StatusBadRequest)
		return
	}

	// Проверяем, что матч существует, до апгрейда соединения.
	if _, err := h.simulations.GetLiveMatch(r.Context(), matchID); err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("failed to look up match for websocket",
			slog.String("match_id", matchID), slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP-ошибку клиенту.
		h.logger.Error("failed to upgrade connection",
			slog.String("match_id", matchID), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: matchID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
