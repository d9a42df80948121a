package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/rgoodall/taskly-api/internal/api/shared"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/service"
)

// TaskHandler handles task CRUD and listing API requests. All routes require
// authentication; the owning user comes from the request context.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// List handles the GET /tasks/ endpoint. Results are scoped to the calling
// user, filtered by search, ordered, and paginated into the standard page
// envelope.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	query := r.URL.Query()
	params := service.TaskListParams{
		Ordering: query.Get("ordering"),
		Search:   query.Get("search"),
		Page:     parseIntParam(query.Get("page")),
		PageSize: parseIntParam(query.Get("page_size")),
	}

	page, err := h.taskService.ListTasks(r.Context(), userID, params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	results := make([]TaskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		results = append(results, NewTaskResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PaginatedTasksResponse{
		Count:    page.Total,
		Next:     pageLink(r.URL, page, page.Page+1, page.HasNext()),
		Previous: pageLink(r.URL, page, page.Page-1, page.HasPrevious()),
		Results:  results,
	})
}

// Create handles the POST /tasks/ endpoint.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, req.Title, req.Description, domain.TaskStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// Get handles the GET /tasks/{id}/ endpoint.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		// A malformed ID can never name an owned task.
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found or not yours")
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles the PUT /tasks/{id}/ endpoint as a full-field replace.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found or not yours")
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), userID, taskID, req.Title, req.Description, domain.TaskStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles the DELETE /tasks/{id}/ endpoint.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found or not yours")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseIntParam parses a positive integer query parameter. Missing or
// malformed values yield zero so the service applies its defaults.
func parseIntParam(value string) int {
	if value == "" {
		return 0
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// pageLink builds the absolute-path URL for a neighboring page of the
// current listing, preserving the other query parameters. Returns nil when
// there is no such page.
func pageLink(current *url.URL, page *service.TaskPage, target int, exists bool) *string {
	if !exists {
		return nil
	}

	link := *current
	query := link.Query()
	query.Set("page", strconv.Itoa(target))
	query.Set("page_size", strconv.Itoa(page.PageSize))
	link.RawQuery = query.Encode()

	s := link.String()
	return &s
}
