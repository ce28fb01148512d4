package queue

import (
	"context"
	"encoding/json"
	"time"

	"wedsync-api/core/config"
	"wedsync-api/core/constants"
	"wedsync-api/core/logger"
	calendarservice "wedsync-api/modules/calendar/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types
const (
	TypeCalendarSync    = "calendar:sync"
	TypeCalendarSyncAll = "calendar:sync_all"
)

type syncPayload struct {
	TenantID uuid.UUID `json:"tenant_id"`
}

// Queue owns the asynq client, worker and scheduler. The scheduler
// enqueues one sync_all tick per cron interval; the sync_all handler fans
// out a per-tenant sync task for every sync-enabled connection.
type Queue struct {
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	sync      calendarservice.SyncService
}

func New(cfg config.RedisConfig, sync calendarservice.SyncService) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	return &Queue{
		client: asynq.NewClient(redisOpt),
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: constants.QueueConcurrency,
		}),
		scheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{}),
		sync:      sync,
	}
}

// EnqueueSync schedules a background sync run for one tenant.
func (q *Queue) EnqueueSync(ctx context.Context, tenantID uuid.UUID) error {
	payload, err := json.Marshal(syncPayload{TenantID: tenantID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeCalendarSync, payload)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(2),
		asynq.Timeout(constants.SyncRunTimeout+10*time.Second),
		asynq.Unique(constants.SyncLockTTL),
	)
	return err
}

// Start registers the handlers and the periodic tick, then runs the
// worker in the background.
func (q *Queue) Start(cronSpec string) error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCalendarSync, q.handleSync)
	mux.HandleFunc(TypeCalendarSyncAll, q.handleSyncAll)

	if _, err := q.scheduler.Register(cronSpec, asynq.NewTask(TypeCalendarSyncAll, nil)); err != nil {
		return err
	}
	if err := q.scheduler.Start(); err != nil {
		return err
	}
	if err := q.server.Start(mux); err != nil {
		return err
	}

	logger.Info("Queue:Start:Success", "cron_spec", cronSpec)
	return nil
}

func (q *Queue) handleSync(ctx context.Context, task *asynq.Task) error {
	var payload syncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Queue:handleSync:BadPayload", "error", err)
		// Malformed payloads never become valid; drop instead of retrying.
		return nil
	}

	result, appErr := q.sync.Sync(ctx, payload.TenantID)
	if appErr != nil {
		logger.Error("Queue:handleSync:Error", "tenant_id", payload.TenantID, "error", appErr)
		return appErr
	}
	if !result.Success {
		// Failure is already recorded in the sync log; a reauth failure
		// in particular will not heal by retrying.
		logger.Warn("Queue:handleSync:RunFailed", "tenant_id", payload.TenantID, "needs_reauth", result.NeedsReauth)
	}
	return nil
}

func (q *Queue) handleSyncAll(ctx context.Context, _ *asynq.Task) error {
	tenants, err := q.sync.ListSyncEnabledTenants(ctx)
	if err != nil {
		logger.Error("Queue:handleSyncAll:ListError", "error", err)
		return err
	}

	for _, tenantID := range tenants {
		if err := q.EnqueueSync(ctx, tenantID); err != nil {
			logger.Error("Queue:handleSyncAll:EnqueueError", "tenant_id", tenantID, "error", err)
		}
	}
	logger.Info("Queue:handleSyncAll:Done", "tenants", len(tenants))
	return nil
}

// Shutdown stops the scheduler and drains in-flight workers.
func (q *Queue) Shutdown() {
	q.scheduler.Shutdown()
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		logger.Warn("Queue:Shutdown:ClientCloseError", "error", err)
	}
}
