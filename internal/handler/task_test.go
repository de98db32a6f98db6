package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/hub"
	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/tests"
)

func setupTaskHandler() (*TaskHandler, *tests.MemoryTaskRepo, *hub.Hub) {
	taskRepo := tests.NewMemoryTaskRepo()
	changeHub := hub.New(zap.NewNop())
	return NewTaskHandler(taskRepo, changeHub, zap.NewNop()), taskRepo, changeHub
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTaskHandler_Put(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		body     string
		wantCode int
	}{
		{
			name:     "successful put",
			id:       "t1",
			body:     `{"title":"Buy milk","priority":"high","ownerId":"user-a","createdAt":"2026-08-30T12:00:00Z"}`,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "invalid json",
			id:       "t1",
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
		{
			// длины полей сервер не проверяет
			name:     "overlong title accepted",
			id:       "t2",
			body:     `{"title":"` + string(bytes.Repeat([]byte("x"), 300)) + `","ownerId":"user-a"}`,
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, taskRepo, _ := setupTaskHandler()

			req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+tt.id, bytes.NewReader([]byte(tt.body)))
			req = withURLParam(req, "id", tt.id)

			w := httptest.NewRecorder()
			handler.Put(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusNoContent {
				snapshot, _ := taskRepo.Snapshot(context.Background())
				_, ok := snapshot[tt.id]
				assert.True(t, ok)
			}
		})
	}
}

func TestTaskHandler_PutNotifiesSubscribers(t *testing.T) {
	handler, _, changeHub := setupTaskHandler()

	ticks, cancel := changeHub.Subscribe()
	defer cancel()

	req := httptest.NewRequest(http.MethodPut, "/api/tasks/t1", bytes.NewReader([]byte(`{"title":"x","ownerId":"user-a"}`)))
	req = withURLParam(req, "id", "t1")
	w := httptest.NewRecorder()
	handler.Put(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	select {
	case <-ticks:
	default:
		t.Fatal("expected a change notification")
	}
}

func TestTaskHandler_Patch(t *testing.T) {
	handler, taskRepo, _ := setupTaskHandler()
	taskRepo.Put(context.Background(), "t1", model.TaskRecord{
		Title: "original", Description: "keep me", OwnerID: "user-a", Priority: "low",
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/t1", bytes.NewReader([]byte(`{"title":"renamed"}`)))
	req = withURLParam(req, "id", "t1")
	w := httptest.NewRecorder()
	handler.Patch(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)

	snapshot, _ := taskRepo.Snapshot(context.Background())
	rec := snapshot["t1"]
	assert.Equal(t, "renamed", rec.Title)
	assert.Equal(t, "keep me", rec.Description, "нетронутые поля не меняются")
	assert.Equal(t, "low", rec.Priority)
}

func TestTaskHandler_PatchMissingIDIsNoop(t *testing.T) {
	handler, taskRepo, _ := setupTaskHandler()

	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/ghost", bytes.NewReader([]byte(`{"title":"x"}`)))
	req = withURLParam(req, "id", "ghost")
	w := httptest.NewRecorder()
	handler.Patch(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	snapshot, _ := taskRepo.Snapshot(context.Background())
	assert.Empty(t, snapshot)
}

func TestTaskHandler_Delete(t *testing.T) {
	handler, taskRepo, _ := setupTaskHandler()
	taskRepo.Put(context.Background(), "t1", model.TaskRecord{Title: "doomed", OwnerID: "user-a"})

	deleteOnce := func() int {
		req := httptest.NewRequest(http.MethodDelete, "/api/tasks/t1", nil)
		req = withURLParam(req, "id", "t1")
		w := httptest.NewRecorder()
		handler.Delete(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, deleteOnce())
	// повторное удаление - тоже успех
	assert.Equal(t, http.StatusNoContent, deleteOnce())

	snapshot, _ := taskRepo.Snapshot(context.Background())
	assert.Empty(t, snapshot)
}

func TestTaskHandler_Snapshot(t *testing.T) {
	handler, taskRepo, _ := setupTaskHandler()
	taskRepo.Put(context.Background(), "t1", model.TaskRecord{Title: "one", OwnerID: "user-a"})
	taskRepo.Put(context.Background(), "t2", model.TaskRecord{Title: "two", OwnerID: "user-b"})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()
	handler.Snapshot(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var snapshot map[string]model.TaskRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snapshot))
	assert.Len(t, snapshot, 2)
	assert.Equal(t, "one", snapshot["t1"].Title)
}
