package entity

import (
	"time"

	"wedsync-api/core/entity"

	"github.com/google/uuid"
)

// Task statuses
const (
	TaskStatusOpen      = "open"
	TaskStatusCompleted = "completed"
)

// Task is a planning checklist item. A task with a due date is projected
// into an all-day deadline event on the tenant's calendar.
type Task struct {
	TenantID    uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	Status      string     `db:"status" json:"status"`

	entity.BaseEntity
}

func (Task) TableName() string {
	return "tasks"
}
