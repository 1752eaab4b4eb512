package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mizutanik/tasktree-api/internal/dto"
	apierrors "github.com/mizutanik/tasktree-api/internal/errors"
	"github.com/mizutanik/tasktree-api/internal/middleware"
	"github.com/mizutanik/tasktree-api/internal/services"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a new task owned by the current user.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Name                 string         `json:"name" binding:"required"`
		Description          string         `json:"description"`
		StartDate            string         `json:"startDate" binding:"required"`
		CompletionPercentage *int           `json:"completionPercentage"`
		ParentID             *uint64        `json:"parentId"`
		UserID               *uint64        `json:"userId"`
		CustomFields         map[string]any `json:"customFields"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	startDate, err := parseStartDate(req.StartDate)
	if err != nil {
		apierrors.BadRequest(c, "startDate must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		return
	}

	completion := 0
	if req.CompletionPercentage != nil {
		completion = *req.CompletionPercentage
	}

	task, err := h.taskService.CreateTask(user, services.CreateTaskInput{
		Name:                 req.Name,
		Description:          req.Description,
		StartDate:            startDate,
		CompletionPercentage: completion,
		ParentID:             req.ParentID,
		AssigneeID:           req.UserID,
		CustomFields:         req.CustomFields,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns the full task forest as a flat list.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a single task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial patch to a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Name                 *string        `json:"name"`
		Description          *string        `json:"description"`
		StartDate            *string        `json:"startDate"`
		CompletionPercentage *int           `json:"completionPercentage"`
		ParentID             *uint64        `json:"parentId"`
		UserID               *uint64        `json:"userId"`
		CustomFields         map[string]any `json:"customFields"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Name:                 req.Name,
		Description:          req.Description,
		CompletionPercentage: req.CompletionPercentage,
		ParentID:             req.ParentID,
		AssigneeID:           req.UserID,
		CustomFields:         req.CustomFields,
	}

	if req.StartDate != nil {
		startDate, err := parseStartDate(*req.StartDate)
		if err != nil {
			apierrors.BadRequest(c, "startDate must be an RFC 3339 timestamp or a YYYY-MM-DD date")
			return
		}
		input.StartDate = &startDate
	}

	task, err := h.taskService.UpdateTask(user, taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(user, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted",
	})
}

// parseStartDate normalizes the two accepted client formats to an instant.
func parseStartDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func taskIDParam(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNameRequired),
		errors.Is(err, services.ErrTaskNameEmpty),
		errors.Is(err, services.ErrCompletionOutOfRange),
		errors.Is(err, services.ErrParentCycle):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrParentNotFound),
		errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskHasChildren):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
