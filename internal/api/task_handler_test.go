package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgoodall/taskly-api/internal/api"
	"github.com/rgoodall/taskly-api/internal/api/shared"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/mocks"
	"github.com/rgoodall/taskly-api/internal/service"
)

func withUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, shared.UserIDContextKey, id)
}

func newTaskHandler(t *testing.T, taskStore *mocks.MockTaskStore) *api.TaskHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc, err := service.NewTaskService(taskStore, logger)
	require.NoError(t, err)
	return api.NewTaskHandler(svc)
}

func seedTasks(t *testing.T, taskStore *mocks.MockTaskStore, userID uuid.UUID, titles ...string) []*domain.Task {
	t.Helper()
	tasks := make([]*domain.Task, 0, len(titles))
	for _, title := range titles {
		task, err := domain.NewTask(userID, title, "details for "+title, domain.TaskStatusPending)
		require.NoError(t, err)
		require.NoError(t, taskStore.Create(context.Background(), task))
		tasks = append(tasks, task)
	}
	return tasks
}

func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	return r.WithContext(withUserID(r.Context(), userID))
}

func withTaskID(r *http.Request, taskID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", taskID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestTaskList(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("paginates with envelope", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		seedTasks(t, taskStore, userID,
			"One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine")
		handler := newTaskHandler(t, taskStore)

		w := httptest.NewRecorder()
		handler.List(w, authedRequest(http.MethodGet, "/tasks/", nil, userID))

		require.Equal(t, http.StatusOK, w.Code)

		var page api.PaginatedTasksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 9, page.Count)
		assert.Len(t, page.Results, 7)
		require.NotNil(t, page.Next)
		assert.Contains(t, *page.Next, "page=2")
		assert.Nil(t, page.Previous)
	})

	t.Run("page size is capped", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		seedTasks(t, taskStore, userID,
			"One", "Two", "Three", "Four", "Five", "Six",
			"Seven", "Eight", "Nine", "Ten", "Eleven", "Twelve")
		handler := newTaskHandler(t, taskStore)

		w := httptest.NewRecorder()
		handler.List(w, authedRequest(http.MethodGet, "/tasks/?page_size=100", nil, userID))

		require.Equal(t, http.StatusOK, w.Code)

		var page api.PaginatedTasksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Len(t, page.Results, 10)
	})

	t.Run("search and excluded owners", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		seedTasks(t, taskStore, userID, "Groceries run", "Write report")
		seedTasks(t, taskStore, uuid.New(), "Groceries for someone else")
		handler := newTaskHandler(t, taskStore)

		w := httptest.NewRecorder()
		handler.List(w, authedRequest(http.MethodGet, "/tasks/?search=groceries", nil, userID))

		require.Equal(t, http.StatusOK, w.Code)

		var page api.PaginatedTasksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Len(t, page.Results, 1)
		assert.Equal(t, "Groceries run", page.Results[0].Title)
	})

	t.Run("out of range page is empty", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		seedTasks(t, taskStore, userID, "Only one")
		handler := newTaskHandler(t, taskStore)

		w := httptest.NewRecorder()
		handler.List(w, authedRequest(http.MethodGet, "/tasks/?page=5", nil, userID))

		require.Equal(t, http.StatusOK, w.Code)

		var page api.PaginatedTasksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Count)
		assert.Empty(t, page.Results)
	})

	t.Run("unknown ordering field", func(t *testing.T) {
		t.Parallel()
		handler := newTaskHandler(t, mocks.NewMockTaskStore())

		w := httptest.NewRecorder()
		handler.List(w, authedRequest(http.MethodGet, "/tasks/?ordering=priority", nil, userID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()
		handler := newTaskHandler(t, mocks.NewMockTaskStore())

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/tasks/", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTaskCreate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		handler := newTaskHandler(t, taskStore)

		payload, err := json.Marshal(map[string]string{
			"title":       "Water plants",
			"description": "Front garden first",
			"status":      "Pending",
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		handler.Create(w, authedRequest(http.MethodPost, "/tasks/", payload, userID))

		require.Equal(t, http.StatusCreated, w.Code)

		var created api.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "Water plants", created.Title)
		assert.Equal(t, "Pending", created.Status)
		assert.NotEqual(t, uuid.Nil, created.ID)
		require.Contains(t, taskStore.Tasks, created.ID)
		assert.Equal(t, userID, taskStore.Tasks[created.ID].UserID)
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()
		handler := newTaskHandler(t, mocks.NewMockTaskStore())

		payload, err := json.Marshal(map[string]string{
			"title":       "Water plants",
			"description": "Front garden first",
			"status":      "Started",
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		handler.Create(w, authedRequest(http.MethodPost, "/tasks/", payload, userID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()
		handler := newTaskHandler(t, mocks.NewMockTaskStore())

		payload, err := json.Marshal(map[string]string{
			"description": "No title given",
			"status":      "Pending",
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		handler.Create(w, authedRequest(http.MethodPost, "/tasks/", payload, userID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskGet(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := seedTasks(t, taskStore, userID, "Read book")[0]
		handler := newTaskHandler(t, taskStore)

		r := withTaskID(authedRequest(http.MethodGet, "/tasks/"+task.ID.String()+"/", nil, userID), task.ID.String())
		w := httptest.NewRecorder()
		handler.Get(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var got api.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, task.ID, got.ID)
	})

	t.Run("another user's task", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := seedTasks(t, taskStore, uuid.New(), "Private task")[0]
		handler := newTaskHandler(t, taskStore)

		r := withTaskID(authedRequest(http.MethodGet, "/tasks/"+task.ID.String()+"/", nil, userID), task.ID.String())
		w := httptest.NewRecorder()
		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Task not found or not yours", decodeBody(t, w)["error"])
	})

	t.Run("malformed task ID", func(t *testing.T) {
		t.Parallel()
		handler := newTaskHandler(t, mocks.NewMockTaskStore())

		r := withTaskID(authedRequest(http.MethodGet, "/tasks/42/", nil, userID), "42")
		w := httptest.NewRecorder()
		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Task not found or not yours", decodeBody(t, w)["error"])
	})
}

func TestTaskUpdate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("full replace", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := seedTasks(t, taskStore, userID, "Draft email")[0]
		handler := newTaskHandler(t, taskStore)

		payload, err := json.Marshal(map[string]string{
			"title":       "Send email",
			"description": "To the whole team",
			"status":      "Completed",
		})
		require.NoError(t, err)

		r := withTaskID(authedRequest(http.MethodPut, "/tasks/"+task.ID.String()+"/", payload, userID), task.ID.String())
		w := httptest.NewRecorder()
		handler.Update(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var updated api.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "Send email", updated.Title)
		assert.Equal(t, "Completed", updated.Status)
		assert.Equal(t, domain.TaskStatusCompleted, taskStore.Tasks[task.ID].Status)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()
		handler := newTaskHandler(t, mocks.NewMockTaskStore())

		payload, err := json.Marshal(map[string]string{
			"title":       "Send email",
			"description": "To the whole team",
			"status":      "Completed",
		})
		require.NoError(t, err)

		missing := uuid.New().String()
		r := withTaskID(authedRequest(http.MethodPut, "/tasks/"+missing+"/", payload, userID), missing)
		w := httptest.NewRecorder()
		handler.Update(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Task not found or not yours", decodeBody(t, w)["error"])
	})

	t.Run("partial payload rejected", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := seedTasks(t, taskStore, userID, "Draft email")[0]
		handler := newTaskHandler(t, taskStore)

		payload, err := json.Marshal(map[string]string{"title": "Send email"})
		require.NoError(t, err)

		r := withTaskID(authedRequest(http.MethodPut, "/tasks/"+task.ID.String()+"/", payload, userID), task.ID.String())
		w := httptest.NewRecorder()
		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Draft email", taskStore.Tasks[task.ID].Title)
	})
}

func TestTaskDelete(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success returns empty 204", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := seedTasks(t, taskStore, userID, "Old chore")[0]
		handler := newTaskHandler(t, taskStore)

		r := withTaskID(authedRequest(http.MethodDelete, "/tasks/"+task.ID.String()+"/", nil, userID), task.ID.String())
		w := httptest.NewRecorder()
		handler.Delete(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.NotContains(t, taskStore.Tasks, task.ID)
	})

	t.Run("another user's task survives", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task := seedTasks(t, taskStore, uuid.New(), "Private task")[0]
		handler := newTaskHandler(t, taskStore)

		r := withTaskID(authedRequest(http.MethodDelete, "/tasks/"+task.ID.String()+"/", nil, userID), task.ID.String())
		w := httptest.NewRecorder()
		handler.Delete(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, taskStore.Tasks, task.ID)
	})
}
