package repository

import (
	"context"
	"database/sql"

	"wedsync-api/core/database"
	"wedsync-api/core/logger"
	"wedsync-api/modules/calendar/entity"

	"github.com/google/uuid"
)

type EventRepository interface {
	GetEventsByTenant(ctx context.Context, tenantID uuid.UUID) ([]entity.CalendarEvent, error)
	GetEventByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*entity.CalendarEvent, error)
	GetEventByTaskID(ctx context.Context, tenantID uuid.UUID, taskID uuid.UUID) (*entity.CalendarEvent, error)
	ListDeleted(ctx context.Context, tenantID uuid.UUID) ([]entity.CalendarEvent, error)
	CreateEvent(ctx context.Context, ev *entity.CalendarEvent) (*entity.CalendarEvent, error)
	UpdateEvent(ctx context.Context, ev *entity.CalendarEvent) error
	// MarkSynced assigns the provider id and flips the status to synced in
	// one statement; the two must never be observable apart.
	MarkSynced(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, googleEventID string) error
	SoftDeleteEvent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	HardDeleteEvent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

type eventRepository struct {
	db database.Database
}

func NewEventRepository(db database.Database) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetEventsByTenant(ctx context.Context, tenantID uuid.UUID) ([]entity.CalendarEvent, error) {
	var events []entity.CalendarEvent
	query := `
		SELECT * FROM calendar_events
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY start_time
	`
	if err := r.db.SelectContext(ctx, &events, query, tenantID); err != nil {
		logger.Error("EventRepository:GetEventsByTenant:Error", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) GetEventByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*entity.CalendarEvent, error) {
	var ev entity.CalendarEvent
	query := `SELECT * FROM calendar_events WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &ev, query, id, tenantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetEventByID:Error", "error", err, "id", id, "tenant_id", tenantID)
		return nil, err
	}
	return &ev, nil
}

func (r *eventRepository) GetEventByTaskID(ctx context.Context, tenantID uuid.UUID, taskID uuid.UUID) (*entity.CalendarEvent, error) {
	var ev entity.CalendarEvent
	query := `SELECT * FROM calendar_events WHERE tenant_id = $1 AND task_id = $2 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &ev, query, tenantID, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetEventByTaskID:Error", "error", err, "tenant_id", tenantID, "task_id", taskID)
		return nil, err
	}
	return &ev, nil
}

// ListDeleted returns rows the tenant has deleted locally whose removal
// may still need to propagate to the provider.
func (r *eventRepository) ListDeleted(ctx context.Context, tenantID uuid.UUID) ([]entity.CalendarEvent, error) {
	var events []entity.CalendarEvent
	query := `SELECT * FROM calendar_events WHERE tenant_id = $1 AND deleted_at IS NOT NULL`
	if err := r.db.SelectContext(ctx, &events, query, tenantID); err != nil {
		logger.Error("EventRepository:ListDeleted:Error", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) CreateEvent(ctx context.Context, ev *entity.CalendarEvent) (*entity.CalendarEvent, error) {
	query := `
		INSERT INTO calendar_events (
			tenant_id, title, description, location, start_time, end_time, all_day,
			category, color, vendor_id, task_id, sync_status, google_event_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		ev.TenantID, ev.Title, ev.Description, ev.Location, ev.StartTime, ev.EndTime, ev.AllDay,
		ev.Category, ev.Color, ev.VendorID, ev.TaskID, ev.SyncStatus, ev.GoogleEventID,
	).Scan(&ev.ID, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		logger.Error("EventRepository:CreateEvent:Error", "error", err, "tenant_id", ev.TenantID)
		return nil, err
	}
	return ev, nil
}

func (r *eventRepository) UpdateEvent(ctx context.Context, ev *entity.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $1, description = $2, location = $3, start_time = $4, end_time = $5,
		    all_day = $6, category = $7, color = $8, sync_status = $9, updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11
	`
	return r.db.ExecContext(ctx, query,
		ev.Title, ev.Description, ev.Location, ev.StartTime, ev.EndTime,
		ev.AllDay, ev.Category, ev.Color, ev.SyncStatus, ev.ID, ev.TenantID,
	)
}

func (r *eventRepository) MarkSynced(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, googleEventID string) error {
	query := `
		UPDATE calendar_events
		SET sync_status = $1, google_event_id = $2, updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4
	`
	return r.db.ExecContext(ctx, query, entity.SyncStatusSynced, googleEventID, id, tenantID)
}

func (r *eventRepository) SoftDeleteEvent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	query := `
		UPDATE calendar_events
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	return r.db.ExecContext(ctx, query, id, tenantID)
}

func (r *eventRepository) HardDeleteEvent(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	query := `DELETE FROM calendar_events WHERE id = $1 AND tenant_id = $2`
	return r.db.ExecContext(ctx, query, id, tenantID)
}
