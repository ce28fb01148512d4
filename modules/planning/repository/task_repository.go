package repository

import (
	"context"
	"database/sql"

	"wedsync-api/core/database"
	"wedsync-api/core/logger"
	"wedsync-api/core/params"
	"wedsync-api/modules/planning/entity"

	"github.com/google/uuid"
)

type TaskRepository interface {
	GetTasksByTenant(ctx context.Context, tenantID uuid.UUID) ([]entity.Task, error)
	GetTasksPage(ctx context.Context, tenantID uuid.UUID, p params.QueryParams) ([]entity.Task, int, error)
	GetTaskByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*entity.Task, error)
	CreateTask(ctx context.Context, task *entity.Task) (*entity.Task, error)
	UpdateTask(ctx context.Context, task *entity.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

type taskRepository struct {
	db database.Database
}

func NewTaskRepository(db database.Database) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetTasksByTenant(ctx context.Context, tenantID uuid.UUID) ([]entity.Task, error) {
	var tasks []entity.Task
	query := `
		SELECT * FROM tasks
		WHERE tenant_id = $1
		ORDER BY due_date NULLS LAST, created_at
	`
	if err := r.db.SelectContext(ctx, &tasks, query, tenantID); err != nil {
		logger.Error("TaskRepository:GetTasksByTenant:Error", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) GetTasksPage(ctx context.Context, tenantID uuid.UUID, p params.QueryParams) ([]entity.Task, int, error) {
	search := "%" + p.Search + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks WHERE tenant_id = $1 AND title ILIKE $2`
	if err := r.db.GetContext(ctx, &total, countQuery, tenantID, search); err != nil {
		logger.Error("TaskRepository:GetTasksPage:CountError", "error", err, "tenant_id", tenantID)
		return nil, 0, err
	}

	var tasks []entity.Task
	query := `
		SELECT * FROM tasks
		WHERE tenant_id = $1 AND title ILIKE $2
		ORDER BY due_date NULLS LAST, created_at
		LIMIT $3 OFFSET $4
	`
	if err := r.db.SelectContext(ctx, &tasks, query, tenantID, search, p.PageSize, p.Offset()); err != nil {
		logger.Error("TaskRepository:GetTasksPage:Error", "error", err, "tenant_id", tenantID)
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *taskRepository) GetTaskByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*entity.Task, error) {
	var task entity.Task
	query := `SELECT * FROM tasks WHERE id = $1 AND tenant_id = $2`
	err := r.db.GetContext(ctx, &task, query, id, tenantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("TaskRepository:GetTaskByID:Error", "error", err, "id", id, "tenant_id", tenantID)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) CreateTask(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	query := `
		INSERT INTO tasks (tenant_id, title, description, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		task.TenantID, task.Title, task.Description, task.DueDate, task.Status,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		logger.Error("TaskRepository:CreateTask:Error", "error", err, "tenant_id", task.TenantID)
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) UpdateTask(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, status = $4, updated_at = NOW()
		WHERE id = $5 AND tenant_id = $6
	`
	return r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.DueDate, task.Status, task.ID, task.TenantID,
	)
}

func (r *taskRepository) DeleteTask(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND tenant_id = $2`
	return r.db.ExecContext(ctx, query, id, tenantID)
}
