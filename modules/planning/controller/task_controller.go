package controller

import (
	"wedsync-api/core/controller"
	"wedsync-api/core/errors"
	"wedsync-api/core/middleware"
	"wedsync-api/core/params"
	"wedsync-api/modules/planning/dto"
	"wedsync-api/modules/planning/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TaskController struct {
	controller.BaseController
	taskService      service.TaskService
	projectorService service.ProjectorService
}

func NewTaskController(taskService service.TaskService, projectorService service.ProjectorService) *TaskController {
	return &TaskController{
		BaseController:   controller.NewBaseController(),
		taskService:      taskService,
		projectorService: projectorService,
	}
}

// GetTasks lists the tenant's planning tasks
// GET /api/v1/private/planning/tasks
func (c *TaskController) GetTasks(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	page, appErr := c.taskService.GetTasks(ctx.Request().Context(), tenantID, params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, page, "Tasks retrieved")
}

// CreateTask creates a task and re-projects deadline events
// POST /api/v1/private/planning/tasks
func (c *TaskController) CreateTask(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	var req dto.CreateTaskRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if req.Title == "" {
		return c.BadRequest(errors.ErrInvalidInput, "title is required")
	}

	task, appErr := c.taskService.CreateTask(ctx.Request().Context(), tenantID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, task, "Task created")
}

// UpdateTask edits a task and re-projects deadline events
// PUT /api/v1/private/planning/tasks/:id
func (c *TaskController) UpdateTask(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid task id")
	}

	var req dto.UpdateTaskRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	task, appErr := c.taskService.UpdateTask(ctx.Request().Context(), tenantID, id, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, task, "Task updated")
}

// DeleteTask removes a task and retires its deadline event
// DELETE /api/v1/private/planning/tasks/:id
func (c *TaskController) DeleteTask(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid task id")
	}

	if appErr := c.taskService.DeleteTask(ctx.Request().Context(), tenantID, id); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Task deleted")
}

// Reproject forces a full projection pass for the tenant
// POST /api/v1/private/planning/tasks/reproject
func (c *TaskController) Reproject(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	result, appErr := c.projectorService.ProjectTasksToEvents(ctx.Request().Context(), tenantID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Projection completed")
}
