package entity

import (
	"time"

	"wedsync-api/core/entity"

	"github.com/google/uuid"
)

// CalendarConnection records a tenant's link to the dedicated provider
// calendar. One per tenant; created during the OAuth callback flow.
type CalendarConnection struct {
	entity.BaseEntity
	TenantID         uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	Provider         string     `db:"provider" json:"provider"`
	GoogleCalendarID string     `db:"google_calendar_id" json:"google_calendar_id"`
	CalendarName     string     `db:"calendar_name" json:"calendar_name"`
	AccountEmail     *string    `db:"account_email" json:"account_email,omitempty"`
	LastSyncedAt     *time.Time `db:"last_synced_at" json:"last_synced_at,omitempty"`
	SyncEnabled      bool       `db:"sync_enabled" json:"sync_enabled"`
	NeedsReauth      bool       `db:"needs_reauth" json:"needs_reauth"`
}

func (CalendarConnection) TableName() string {
	return "calendar_connections"
}
