package repository

import (
	"context"
	"database/sql"
	"time"

	"wedsync-api/core/database"
	"wedsync-api/core/logger"
	"wedsync-api/modules/calendar/entity"

	"github.com/google/uuid"
)

type ConnectionRepository interface {
	GetConnection(ctx context.Context, tenantID uuid.UUID) (*entity.CalendarConnection, error)
	CreateConnection(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error)
	UpdateConnection(ctx context.Context, conn *entity.CalendarConnection) error
	UpdateLastSynced(ctx context.Context, tenantID uuid.UUID, at time.Time) error
	SetNeedsReauth(ctx context.Context, tenantID uuid.UUID, needsReauth bool) error
	ListSyncEnabled(ctx context.Context) ([]entity.CalendarConnection, error)
	DeleteConnection(ctx context.Context, tenantID uuid.UUID) error
}

type connectionRepository struct {
	db database.Database
}

func NewConnectionRepository(db database.Database) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) GetConnection(ctx context.Context, tenantID uuid.UUID) (*entity.CalendarConnection, error) {
	var conn entity.CalendarConnection
	query := `SELECT * FROM calendar_connections WHERE tenant_id = $1`
	err := r.db.GetContext(ctx, &conn, query, tenantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ConnectionRepository:GetConnection:Error", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) CreateConnection(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error) {
	query := `
		INSERT INTO calendar_connections (tenant_id, provider, google_calendar_id, calendar_name, account_email, sync_enabled, needs_reauth)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		conn.TenantID, conn.Provider, conn.GoogleCalendarID, conn.CalendarName,
		conn.AccountEmail, conn.SyncEnabled, conn.NeedsReauth,
	).Scan(&conn.ID, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		logger.Error("ConnectionRepository:CreateConnection:Error", "error", err, "tenant_id", conn.TenantID)
		return nil, err
	}
	return conn, nil
}

func (r *connectionRepository) UpdateConnection(ctx context.Context, conn *entity.CalendarConnection) error {
	query := `
		UPDATE calendar_connections
		SET google_calendar_id = $1, calendar_name = $2, account_email = $3,
		    sync_enabled = $4, needs_reauth = $5, updated_at = NOW()
		WHERE tenant_id = $6
	`
	return r.db.ExecContext(ctx, query,
		conn.GoogleCalendarID, conn.CalendarName, conn.AccountEmail,
		conn.SyncEnabled, conn.NeedsReauth, conn.TenantID,
	)
}

func (r *connectionRepository) UpdateLastSynced(ctx context.Context, tenantID uuid.UUID, at time.Time) error {
	query := `
		UPDATE calendar_connections
		SET last_synced_at = $1, updated_at = NOW()
		WHERE tenant_id = $2
	`
	return r.db.ExecContext(ctx, query, at, tenantID)
}

func (r *connectionRepository) SetNeedsReauth(ctx context.Context, tenantID uuid.UUID, needsReauth bool) error {
	query := `
		UPDATE calendar_connections
		SET needs_reauth = $1, updated_at = NOW()
		WHERE tenant_id = $2
	`
	return r.db.ExecContext(ctx, query, needsReauth, tenantID)
}

func (r *connectionRepository) ListSyncEnabled(ctx context.Context) ([]entity.CalendarConnection, error) {
	var connections []entity.CalendarConnection
	query := `SELECT * FROM calendar_connections WHERE sync_enabled = true ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &connections, query); err != nil {
		logger.Error("ConnectionRepository:ListSyncEnabled:Error", "error", err)
		return nil, err
	}
	return connections, nil
}

func (r *connectionRepository) DeleteConnection(ctx context.Context, tenantID uuid.UUID) error {
	query := `DELETE FROM calendar_connections WHERE tenant_id = $1`
	return r.db.ExecContext(ctx, query, tenantID)
}
