package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/hub"
	"github.com/BuzzLyutic/task-sync/internal/repo"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler держит websocket-подписки: полный снапшот при подключении и после
// каждого изменения коллекции
type WSHandler struct {
	repo   repo.TaskRepository
	hub    *hub.Hub
	logger *zap.Logger
}

func NewWSHandler(taskRepo repo.TaskRepository, h *hub.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		repo:   taskRepo,
		hub:    h,
		logger: logger,
	}
}

func (h *WSHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ticks, cancel := h.hub.Subscribe()
	defer cancel()

	// Клиент снапшоты только читает; читаем в фоне, чтобы заметить разрыв
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.push(r.Context(), conn); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-disconnected:
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			if err := h.push(r.Context(), conn); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) push(ctx context.Context, conn *websocket.Conn) error {
	snapshot, err := h.repo.Snapshot(ctx)
	if err != nil {
		h.logger.Error("build snapshot", zap.Error(err))
		return err
	}
	return conn.WriteJSON(snapshot)
}
