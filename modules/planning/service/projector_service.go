package service

import (
	"context"
	"time"

	"wedsync-api/core/errors"
	"wedsync-api/core/logger"
	calendarentity "wedsync-api/modules/calendar/entity"
	calendarrepository "wedsync-api/modules/calendar/repository"
	"wedsync-api/modules/planning/entity"
	"wedsync-api/modules/planning/repository"

	"github.com/google/uuid"
)

// ProjectorService maintains the derived deadline events: every task with
// a due date owns exactly one all-day calendar event, keyed by task id.
type ProjectorService interface {
	ProjectTasksToEvents(ctx context.Context, tenantID uuid.UUID) (*ProjectionResult, *errors.AppError)
}

type ProjectionResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

type projectorService struct {
	tasks  repository.TaskRepository
	events calendarrepository.EventRepository
}

func NewProjectorService(tasks repository.TaskRepository, events calendarrepository.EventRepository) ProjectorService {
	return &projectorService{tasks: tasks, events: events}
}

// ProjectTasksToEvents is idempotent: running it twice against unchanged
// tasks performs no writes on the second pass. It only edits events it
// owns (those carrying a task id); the sync engine picks up the resulting
// local/pending rows on its next run.
func (s *projectorService) ProjectTasksToEvents(ctx context.Context, tenantID uuid.UUID) (*ProjectionResult, *errors.AppError) {
	tasks, err := s.tasks.GetTasksByTenant(ctx, tenantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load tasks", err)
	}
	events, err := s.events.GetEventsByTenant(ctx, tenantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load events", err)
	}

	byTaskID := map[uuid.UUID]*calendarentity.CalendarEvent{}
	for i := range events {
		if events[i].TaskID != nil {
			byTaskID[*events[i].TaskID] = &events[i]
		}
	}

	result := &ProjectionResult{}
	live := map[uuid.UUID]bool{}

	for i := range tasks {
		task := &tasks[i]
		ev := byTaskID[task.ID]

		if task.DueDate == nil || task.Status == entity.TaskStatusCompleted {
			// No deadline to show; retire the derived event if one exists.
			if ev != nil {
				if err := s.retireEvent(ctx, ev); err != nil {
					return nil, errors.NewAppError(errors.ErrInternalServer, "failed to remove deadline event", err)
				}
				result.Removed++
			}
			continue
		}

		live[task.ID] = true
		due := task.DueDate.UTC().Truncate(24 * time.Hour)

		if ev == nil {
			taskID := task.ID
			_, err := s.events.CreateEvent(ctx, &calendarentity.CalendarEvent{
				TenantID:    tenantID,
				Title:       task.Title,
				Description: task.Description,
				StartTime:   due,
				AllDay:      true,
				Category:    calendarentity.CategoryDeadline,
				TaskID:      &taskID,
				SyncStatus:  calendarentity.SyncStatusLocal,
			})
			if err != nil {
				return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create deadline event", err)
			}
			result.Created++
			continue
		}

		if ev.Title == task.Title && ev.StartTime.Equal(due) && strPtrEqual(ev.Description, task.Description) {
			continue
		}

		ev.Title = task.Title
		ev.Description = task.Description
		ev.StartTime = due
		ev.AllDay = true
		if ev.GoogleEventID != nil {
			// Already pushed once: the edit has to reach the provider.
			ev.SyncStatus = calendarentity.SyncStatusPending
		}
		if err := s.events.UpdateEvent(ctx, ev); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update deadline event", err)
		}
		result.Updated++
	}

	// Orphaned derived events: their task was deleted.
	for taskID, ev := range byTaskID {
		if live[taskID] {
			continue
		}
		if _, stillExists := taskByID(tasks, taskID); stillExists {
			continue
		}
		if err := s.retireEvent(ctx, ev); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to remove orphaned deadline event", err)
		}
		result.Removed++
	}

	logger.Info("ProjectorService:ProjectTasksToEvents:Done",
		"tenant_id", tenantID,
		"created", result.Created,
		"updated", result.Updated,
		"removed", result.Removed,
	)
	return result, nil
}

// retireEvent soft-deletes a pushed event so the sync engine propagates
// the removal; a never-pushed event can go immediately.
func (s *projectorService) retireEvent(ctx context.Context, ev *calendarentity.CalendarEvent) error {
	if ev.GoogleEventID == nil {
		return s.events.HardDeleteEvent(ctx, ev.ID, ev.TenantID)
	}
	return s.events.SoftDeleteEvent(ctx, ev.ID, ev.TenantID)
}

func taskByID(tasks []entity.Task, id uuid.UUID) (*entity.Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], true
		}
	}
	return nil, false
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
