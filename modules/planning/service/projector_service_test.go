package service

import (
	"context"
	"testing"
	"time"

	"wedsync-api/core/params"
	calendarentity "wedsync-api/modules/calendar/entity"
	"wedsync-api/modules/planning/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*entity.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uuid.UUID]*entity.Task{}}
}

func (f *fakeTaskRepo) add(task *entity.Task) *entity.Task {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	f.tasks[task.ID] = task
	return task
}

func (f *fakeTaskRepo) GetTasksByTenant(_ context.Context, tenantID uuid.UUID) ([]entity.Task, error) {
	var out []entity.Task
	for _, task := range f.tasks {
		if task.TenantID == tenantID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) GetTasksPage(ctx context.Context, tenantID uuid.UUID, _ params.QueryParams) ([]entity.Task, int, error) {
	tasks, err := f.GetTasksByTenant(ctx, tenantID)
	return tasks, len(tasks), err
}

func (f *fakeTaskRepo) GetTaskByID(_ context.Context, id uuid.UUID, _ uuid.UUID) (*entity.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) CreateTask(_ context.Context, task *entity.Task) (*entity.Task, error) {
	return f.add(task), nil
}

func (f *fakeTaskRepo) UpdateTask(_ context.Context, task *entity.Task) error {
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) DeleteTask(_ context.Context, id uuid.UUID, _ uuid.UUID) error {
	delete(f.tasks, id)
	return nil
}

type fakeEventRepo struct {
	events  map[uuid.UUID]*calendarentity.CalendarEvent
	creates int
	updates int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[uuid.UUID]*calendarentity.CalendarEvent{}}
}

func (f *fakeEventRepo) GetEventsByTenant(_ context.Context, tenantID uuid.UUID) ([]calendarentity.CalendarEvent, error) {
	var out []calendarentity.CalendarEvent
	for _, ev := range f.events {
		if ev.TenantID == tenantID && ev.DeletedAt == nil {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetEventByID(_ context.Context, id uuid.UUID, _ uuid.UUID) (*calendarentity.CalendarEvent, error) {
	ev, ok := f.events[id]
	if !ok || ev.DeletedAt != nil {
		return nil, nil
	}
	copied := *ev
	return &copied, nil
}

func (f *fakeEventRepo) GetEventByTaskID(_ context.Context, tenantID uuid.UUID, taskID uuid.UUID) (*calendarentity.CalendarEvent, error) {
	for _, ev := range f.events {
		if ev.TenantID == tenantID && ev.TaskID != nil && *ev.TaskID == taskID && ev.DeletedAt == nil {
			copied := *ev
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) ListDeleted(_ context.Context, tenantID uuid.UUID) ([]calendarentity.CalendarEvent, error) {
	var out []calendarentity.CalendarEvent
	for _, ev := range f.events {
		if ev.TenantID == tenantID && ev.DeletedAt != nil {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) CreateEvent(_ context.Context, ev *calendarentity.CalendarEvent) (*calendarentity.CalendarEvent, error) {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	f.events[ev.ID] = ev
	f.creates++
	return ev, nil
}

func (f *fakeEventRepo) UpdateEvent(_ context.Context, ev *calendarentity.CalendarEvent) error {
	copied := *ev
	f.events[ev.ID] = &copied
	f.updates++
	return nil
}

func (f *fakeEventRepo) MarkSynced(_ context.Context, id uuid.UUID, _ uuid.UUID, googleEventID string) error {
	ev := f.events[id]
	ev.SyncStatus = calendarentity.SyncStatusSynced
	ev.GoogleEventID = &googleEventID
	return nil
}

func (f *fakeEventRepo) SoftDeleteEvent(_ context.Context, id uuid.UUID, _ uuid.UUID) error {
	now := time.Now()
	f.events[id].DeletedAt = &now
	return nil
}

func (f *fakeEventRepo) HardDeleteEvent(_ context.Context, id uuid.UUID, _ uuid.UUID) error {
	delete(f.events, id)
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }

func TestProjectTasksToEvents_CreatesAllDayDeadlineEvent(t *testing.T) {
	tenantID := uuid.New()
	tasks := newFakeTaskRepo()
	events := newFakeEventRepo()
	task := tasks.add(&entity.Task{
		TenantID: tenantID,
		Title:    "Book the venue",
		DueDate:  timePtr(time.Date(2026, 5, 1, 16, 45, 0, 0, time.UTC)),
		Status:   entity.TaskStatusOpen,
	})

	svc := NewProjectorService(tasks, events)
	result, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)

	require.Nil(t, appErr)
	assert.Equal(t, 1, result.Created)

	ev, err := events.GetEventByTaskID(context.Background(), tenantID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "Book the venue", ev.Title)
	assert.True(t, ev.AllDay)
	assert.Equal(t, calendarentity.CategoryDeadline, ev.Category)
	assert.Equal(t, calendarentity.SyncStatusLocal, ev.SyncStatus)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), ev.StartTime)
}

func TestProjectTasksToEvents_IsIdempotent(t *testing.T) {
	tenantID := uuid.New()
	tasks := newFakeTaskRepo()
	events := newFakeEventRepo()
	tasks.add(&entity.Task{
		TenantID: tenantID,
		Title:    "Order flowers",
		DueDate:  timePtr(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)),
		Status:   entity.TaskStatusOpen,
	})

	svc := NewProjectorService(tasks, events)
	_, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	result, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	assert.Zero(t, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Removed)
	assert.Equal(t, 1, events.creates, "second pass performs no writes")
	assert.Zero(t, events.updates)
}

func TestProjectTasksToEvents_PushedEventFlipsToPending(t *testing.T) {
	tenantID := uuid.New()
	tasks := newFakeTaskRepo()
	events := newFakeEventRepo()
	task := tasks.add(&entity.Task{
		TenantID: tenantID,
		Title:    "Order flowers",
		DueDate:  timePtr(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)),
		Status:   entity.TaskStatusOpen,
	})

	svc := NewProjectorService(tasks, events)
	_, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	// Simulate the sync engine pushing the derived event.
	ev, _ := events.GetEventByTaskID(context.Background(), tenantID, task.ID)
	require.NoError(t, events.MarkSynced(context.Background(), ev.ID, tenantID, "gcal-11"))

	// The due date moves.
	task.DueDate = timePtr(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, tasks.UpdateTask(context.Background(), task))

	result, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	assert.Equal(t, 1, result.Updated)
	ev, _ = events.GetEventByTaskID(context.Background(), tenantID, task.ID)
	assert.Equal(t, calendarentity.SyncStatusPending, ev.SyncStatus)
	assert.Equal(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), ev.StartTime)
}

func TestProjectTasksToEvents_RemovedDueDateRetiresEvent(t *testing.T) {
	tenantID := uuid.New()
	tasks := newFakeTaskRepo()
	events := newFakeEventRepo()
	task := tasks.add(&entity.Task{
		TenantID: tenantID,
		Title:    "Order flowers",
		DueDate:  timePtr(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)),
		Status:   entity.TaskStatusOpen,
	})

	svc := NewProjectorService(tasks, events)
	_, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	ev, _ := events.GetEventByTaskID(context.Background(), tenantID, task.ID)
	require.NoError(t, events.MarkSynced(context.Background(), ev.ID, tenantID, "gcal-11"))

	task.DueDate = nil
	require.NoError(t, tasks.UpdateTask(context.Background(), task))

	result, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	assert.Equal(t, 1, result.Removed)
	// Pushed once, so the removal is soft and left for the sync engine.
	stored := events.events[ev.ID]
	require.NotNil(t, stored)
	assert.NotNil(t, stored.DeletedAt)
}

func TestProjectTasksToEvents_NeverPushedEventIsRemovedOutright(t *testing.T) {
	tenantID := uuid.New()
	tasks := newFakeTaskRepo()
	events := newFakeEventRepo()
	task := tasks.add(&entity.Task{
		TenantID: tenantID,
		Title:    "Order flowers",
		DueDate:  timePtr(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)),
		Status:   entity.TaskStatusOpen,
	})

	svc := NewProjectorService(tasks, events)
	_, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)
	ev, _ := events.GetEventByTaskID(context.Background(), tenantID, task.ID)

	require.NoError(t, tasks.DeleteTask(context.Background(), task.ID, tenantID))

	result, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	assert.Equal(t, 1, result.Removed)
	_, exists := events.events[ev.ID]
	assert.False(t, exists)
}

func TestProjectTasksToEvents_CompletedTaskRetiresEvent(t *testing.T) {
	tenantID := uuid.New()
	tasks := newFakeTaskRepo()
	events := newFakeEventRepo()
	task := tasks.add(&entity.Task{
		TenantID: tenantID,
		Title:    "Order flowers",
		DueDate:  timePtr(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)),
		Status:   entity.TaskStatusOpen,
	})

	svc := NewProjectorService(tasks, events)
	_, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	task.Status = entity.TaskStatusCompleted
	require.NoError(t, tasks.UpdateTask(context.Background(), task))

	result, appErr := svc.ProjectTasksToEvents(context.Background(), tenantID)
	require.Nil(t, appErr)

	assert.Equal(t, 1, result.Removed)
	ev, err := events.GetEventByTaskID(context.Background(), tenantID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, ev)
}
