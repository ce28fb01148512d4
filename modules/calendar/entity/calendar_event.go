package entity

import (
	"time"

	"wedsync-api/core/entity"

	"github.com/google/uuid"
)

// Sync status values. local = never synced; pending = synced before, now
// locally dirty; synced = believed consistent with the remote copy.
const (
	SyncStatusLocal   = "local"
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
)

// Event categories.
const (
	CategoryVendor      = "vendor"
	CategoryDeadline    = "deadline"
	CategoryAppointment = "appointment"
	CategoryMilestone   = "milestone"
	CategoryPersonal    = "personal"
	CategoryOther       = "other"
)

// CalendarEvent is the tenant-owned calendar row. GoogleEventID is the
// join key with the remote copy; it is non-null once the event has been
// pushed or pulled at least once. DeletedAt marks a tenant delete that
// still has to propagate to the provider.
type CalendarEvent struct {
	entity.BaseEntity
	TenantID      uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	Title         string     `db:"title" json:"title"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Location      *string    `db:"location" json:"location,omitempty"`
	StartTime     time.Time  `db:"start_time" json:"start_time"`
	EndTime       *time.Time `db:"end_time" json:"end_time,omitempty"`
	AllDay        bool       `db:"all_day" json:"all_day"`
	Category      string     `db:"category" json:"category"`
	Color         *string    `db:"color" json:"color,omitempty"`
	VendorID      *uuid.UUID `db:"vendor_id" json:"vendor_id,omitempty"`
	TaskID        *uuid.UUID `db:"task_id" json:"task_id,omitempty"`
	SyncStatus    string     `db:"sync_status" json:"sync_status"`
	GoogleEventID *string    `db:"google_event_id" json:"google_event_id,omitempty"`
	DeletedAt     *time.Time `db:"deleted_at" json:"-"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// IsDirty reports whether the event has local changes the remote copy has
// not seen yet.
func (e *CalendarEvent) IsDirty() bool {
	return e.SyncStatus == SyncStatusLocal || e.SyncStatus == SyncStatusPending
}
