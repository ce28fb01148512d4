package service

import (
	"context"
	"time"

	coredto "wedsync-api/core/dto"
	"wedsync-api/core/errors"
	"wedsync-api/core/logger"
	"wedsync-api/core/params"
	"wedsync-api/modules/planning/dto"
	"wedsync-api/modules/planning/entity"
	"wedsync-api/modules/planning/repository"

	"github.com/google/uuid"
)

// TaskService is the CRUD surface for planning tasks. Every mutation
// re-runs the projector so the derived deadline events stay current.
type TaskService interface {
	GetTasks(ctx context.Context, tenantID uuid.UUID, p params.QueryParams) (*coredto.Pagination[dto.TaskResponse], *errors.AppError)
	CreateTask(ctx context.Context, tenantID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, *errors.AppError)
	UpdateTask(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, *errors.AppError)
	DeleteTask(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) *errors.AppError
}

type taskService struct {
	tasks     repository.TaskRepository
	projector ProjectorService
}

func NewTaskService(tasks repository.TaskRepository, projector ProjectorService) TaskService {
	return &taskService{tasks: tasks, projector: projector}
}

func (s *taskService) GetTasks(ctx context.Context, tenantID uuid.UUID, p params.QueryParams) (*coredto.Pagination[dto.TaskResponse], *errors.AppError) {
	tasks, total, err := s.tasks.GetTasksPage(ctx, tenantID, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load tasks", err)
	}

	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, toTaskResponse(&tasks[i]))
	}

	totalPages := total / p.PageSize
	if total%p.PageSize != 0 {
		totalPages++
	}
	return &coredto.Pagination[dto.TaskResponse]{
		Items:      items,
		TotalItems: total,
		TotalPages: totalPages,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (s *taskService) CreateTask(ctx context.Context, tenantID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, *errors.AppError) {
	dueDate, appErr := parseDueDate(req.DueDate)
	if appErr != nil {
		return nil, appErr
	}

	task := &entity.Task{
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Status:      entity.TaskStatusOpen,
	}
	if _, err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create task", err)
	}

	s.reproject(ctx, tenantID)
	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) UpdateTask(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, *errors.AppError) {
	task, err := s.tasks.GetTaskByID(ctx, id, tenantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load task", err)
	}
	if task == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "task not found", nil)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else {
			dueDate, appErr := parseDueDate(req.DueDate)
			if appErr != nil {
				return nil, appErr
			}
			task.DueDate = dueDate
		}
	}
	if req.Status != nil {
		if *req.Status != entity.TaskStatusOpen && *req.Status != entity.TaskStatusCompleted {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid task status", nil)
		}
		task.Status = *req.Status
	}

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update task", err)
	}

	s.reproject(ctx, tenantID)
	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) DeleteTask(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) *errors.AppError {
	task, err := s.tasks.GetTaskByID(ctx, id, tenantID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to load task", err)
	}
	if task == nil {
		return errors.NewAppError(errors.ErrNotFound, "task not found", nil)
	}

	if err := s.tasks.DeleteTask(ctx, id, tenantID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete task", err)
	}

	s.reproject(ctx, tenantID)
	return nil
}

// reproject keeps task mutations usable even when projection fails; the
// next mutation or scheduled sync retries it.
func (s *taskService) reproject(ctx context.Context, tenantID uuid.UUID) {
	if _, appErr := s.projector.ProjectTasksToEvents(ctx, tenantID); appErr != nil {
		logger.Warn("TaskService:reproject:Error", "tenant_id", tenantID, "error", appErr)
	}
}

func parseDueDate(raw *string) (*time.Time, *errors.AppError) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		// Date-only form is accepted for all-day deadlines.
		t, err = time.Parse("2006-01-02", *raw)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid due_date format", err)
		}
	}
	return &t, nil
}

func toTaskResponse(task *entity.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
