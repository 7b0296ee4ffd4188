package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dayslot/core/internal/application/services"
	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/domain/schedule"
	"github.com/dayslot/core/internal/infrastructure/logger"
	"github.com/dayslot/core/internal/ports"
)

// TodoHandler handles day-planner task requests
type TodoHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(taskService *services.TaskService, logger *logger.Logger) *TodoHandler {
	return &TodoHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// DayResponse is a day's task list. ReadOnly reports whether the whole day is
// in the past, in which case the client should not offer add/edit controls.
type DayResponse struct {
	Date     schedule.Date    `json:"date_ymd"`
	ReadOnly bool             `json:"read_only"`
	Tasks    []*entities.Task `json:"tasks"`
}

// SessionResponse wraps the current editing session, if any.
type SessionResponse struct {
	Editing bool               `json:"editing"`
	Session *ports.EditSession `json:"session,omitempty"`
}

// List returns the tasks scheduled for a day
func (h *TodoHandler) List(c echo.Context) error {
	userID := getUserIDFromContext(c)

	date, err := schedule.ParseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	tasks, err := h.taskService.List(c.Request().Context(), userID, date)
	if err != nil {
		h.logger.Error("Listing tasks failed", "error", err, "user_id", userID, "date", date)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, DayResponse{
		Date:     date,
		ReadOnly: date < schedule.DateOf(schedule.SystemClock{}.Now()),
		Tasks:    tasks,
	})
}

// Create schedules a new task
func (h *TodoHandler) Create(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req ports.SaveTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Create(c.Request().Context(), userID, req)
	if err != nil {
		h.logger.Warn("Task creation failed", "error", err, "user_id", userID)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// Update saves an edited task. Requires a prior BeginEdit for the same task.
func (h *TodoHandler) Update(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	var req ports.SaveTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Update(c.Request().Context(), userID, taskID, req)
	if err != nil {
		h.logger.Warn("Task update failed", "error", err, "user_id", userID, "task_id", taskID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// Delete soft-deletes a task. The body carries the confirmation flag and,
// on the list-row quick path, the row's own schedule snapshot.
func (h *TodoHandler) Delete(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	var req ports.DeleteTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.taskService.SoftDelete(c.Request().Context(), userID, taskID, req); err != nil {
		h.logger.Warn("Task deletion failed", "error", err, "user_id", userID, "task_id", taskID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}

// BeginEdit opens an editing session for a task and returns its current state
func (h *TodoHandler) BeginEdit(c echo.Context) error {
	userID := getUserIDFromContext(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	task, err := h.taskService.BeginEdit(c.Request().Context(), userID, taskID)
	if err != nil {
		h.logger.Warn("Opening edit session failed", "error", err, "user_id", userID, "task_id", taskID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// GetSession returns the caller's editing session, if one is open
func (h *TodoHandler) GetSession(c echo.Context) error {
	userID := getUserIDFromContext(c)

	session, ok := h.taskService.Session(userID)
	if !ok {
		return c.JSON(http.StatusOK, SessionResponse{Editing: false})
	}

	return c.JSON(http.StatusOK, SessionResponse{Editing: true, Session: &session})
}

// ResetSession abandons the caller's editing session
func (h *TodoHandler) ResetSession(c echo.Context) error {
	userID := getUserIDFromContext(c)

	h.taskService.ResetSession(userID)

	return c.JSON(http.StatusOK, MessageResponse{Message: "Edit cancelled"})
}
