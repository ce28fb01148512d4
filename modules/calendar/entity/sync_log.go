package entity

import (
	"time"

	"wedsync-api/core/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SyncLog summarizes one sync run. Append-only, never mutated.
type SyncLog struct {
	entity.BaseEntity
	TenantID uuid.UUID      `db:"tenant_id" json:"tenant_id"`
	RunID    string         `db:"run_id" json:"run_id"`
	RanAt    time.Time      `db:"ran_at" json:"ran_at"`
	Pushed   int            `db:"pushed" json:"pushed"`
	Pulled   int            `db:"pulled" json:"pulled"`
	Deleted  int            `db:"deleted" json:"deleted"`
	Errors   pq.StringArray `db:"errors" json:"errors"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
