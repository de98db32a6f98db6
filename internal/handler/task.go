package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/hub"
	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/repo"
	"github.com/BuzzLyutic/task-sync/pkg/respond"
)

type TaskHandler struct {
	repo   repo.TaskRepository
	hub    *hub.Hub
	logger *zap.Logger
}

func NewTaskHandler(taskRepo repo.TaskRepository, h *hub.Hub, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		repo:   taskRepo,
		hub:    h,
		logger: logger,
	}
}

// Put пишет запись целиком по ключу. Длины полей сервер намеренно не
// проверяет - границы соблюдает клиент.
func (h *TaskHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respond.Error(w, r, http.StatusBadRequest, "empty task id")
		return
	}

	var rec model.TaskRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.repo.Put(r.Context(), id, rec); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	h.hub.Notify()
	respond.NoContent(w)
}

func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.repo.Merge(r.Context(), id, fields); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	h.hub.Notify()
	respond.NoContent(w)
}

// Delete всегда отвечает 204: удаление несуществующего id - успех
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	h.hub.Notify()
	respond.NoContent(w)
}

// Snapshot отдает полную коллекцию одним чтением
func (h *TaskHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.repo.Snapshot(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, snapshot)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
