package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue    TaskQueue
	defaults tasks.Defaults
}

func NewTasksController(queue TaskQueue, defaults tasks.Defaults) *TasksController {
	return &TasksController{queue: queue, defaults: defaults}
}

// RunTaskRequest overrides the configured parameter of a task. RetentionDays
// applies to the cleanup tasks and Count to the daily-reads rotation.
type RunTaskRequest struct {
	RetentionDays int `json:"retention_days" binding:"min=0"`
	Count         int `json:"count" binding:"min=0"`
}

// ListTaskTypes handles GET /api/admin/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"task_types": tasks.Types(),
	})
}

// GetTaskStatus handles GET /api/admin/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}

// RunTask handles POST /api/admin/tasks/:id/run
// The :id segment names a task type here; gin requires one wildcard name per
// path position. The body is optional.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("id")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	override := req.RetentionDays
	if req.Count > 0 {
		override = req.Count
	}

	task, err := tasks.Build(taskType, tc.defaults, override)
	if errors.Is(err, tasks.ErrUnknownTaskType) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "build task")
		return
	}

	id, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": id,
		"type":    taskType,
		"message": "task enqueued",
	})
}
