package repository

import (
	"context"

	"wedsync-api/core/database"
	"wedsync-api/core/logger"
	"wedsync-api/modules/calendar/entity"

	"github.com/google/uuid"
)

type SyncLogRepository interface {
	CreateLog(ctx context.Context, log *entity.SyncLog) error
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]entity.SyncLog, error)
}

type syncLogRepository struct {
	db database.Database
}

func NewSyncLogRepository(db database.Database) SyncLogRepository {
	return &syncLogRepository{db: db}
}

func (r *syncLogRepository) CreateLog(ctx context.Context, log *entity.SyncLog) error {
	query := `
		INSERT INTO sync_logs (tenant_id, run_id, ran_at, pushed, pulled, deleted, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		log.TenantID, log.RunID, log.RanAt, log.Pushed, log.Pulled, log.Deleted, log.Errors,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		logger.Error("SyncLogRepository:CreateLog:Error", "error", err, "tenant_id", log.TenantID)
		return err
	}
	return nil
}

func (r *syncLogRepository) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]entity.SyncLog, error) {
	var logs []entity.SyncLog
	query := `
		SELECT * FROM sync_logs
		WHERE tenant_id = $1
		ORDER BY ran_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &logs, query, tenantID, limit); err != nil {
		logger.Error("SyncLogRepository:ListRecent:Error", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return logs, nil
}
