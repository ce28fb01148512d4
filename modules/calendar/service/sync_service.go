package service

import (
	"context"
	"fmt"
	"time"

	"wedsync-api/core/cache"
	"wedsync-api/core/constants"
	"wedsync-api/core/errors"
	"wedsync-api/core/logger"
	"wedsync-api/core/utils"
	"wedsync-api/modules/calendar/dto"
	"wedsync-api/modules/calendar/entity"
	"wedsync-api/modules/calendar/mapper"
	"wedsync-api/modules/calendar/repository"

	"github.com/google/uuid"
)

// SyncService reconciles a tenant's internal events with the dedicated
// provider calendar. Sync is the only entry point a scheduler, webhook
// handler or manual-trigger route needs.
type SyncService interface {
	Sync(ctx context.Context, tenantID uuid.UUID) (*dto.SyncResult, *errors.AppError)
	Status(ctx context.Context, tenantID uuid.UUID) (*dto.SyncStatusResponse, *errors.AppError)
	Disconnect(ctx context.Context, tenantID uuid.UUID) *errors.AppError
	ListSyncEnabledTenants(ctx context.Context) ([]uuid.UUID, error)
}

type syncService struct {
	connections repository.ConnectionRepository
	credentials repository.CredentialRepository
	events      repository.EventRepository
	logs        repository.SyncLogRepository
	google      GoogleCalendarAPI
	cache       cache.Cache
	now         func() time.Time
}

func NewSyncService(
	connections repository.ConnectionRepository,
	credentials repository.CredentialRepository,
	events repository.EventRepository,
	logs repository.SyncLogRepository,
	google GoogleCalendarAPI,
	c cache.Cache,
) SyncService {
	return &syncService{
		connections: connections,
		credentials: credentials,
		events:      events,
		logs:        logs,
		google:      google,
		cache:       c,
		now:         time.Now,
	}
}

// syncRun carries the mutable state of one reconciliation pass. Phases run
// strictly in push, pull, delete order; correctness depends on that
// sequence, not on throughput.
type syncRun struct {
	tenantID uuid.UUID
	conn     *entity.CalendarConnection
	result   *dto.SyncResult
	// preStatus is the sync status of every event before this run touched
	// anything; deletion reconciliation keys off it.
	preStatus map[uuid.UUID]string
	// seenRemote is the set of provider ids present in the pull listing.
	seenRemote map[string]bool
	// deletedRows are the tenant-soft-deleted rows awaiting remote
	// propagation; pendingDelete indexes their provider ids so the pull
	// phase never re-materializes an event the tenant just deleted.
	deletedRows   []entity.CalendarEvent
	pendingDelete map[string]bool
	pullOK        bool
	aborted       bool
}

func (s *syncService) Sync(ctx context.Context, tenantID uuid.UUID) (*dto.SyncResult, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.SyncRunTimeout)
	defer cancel()

	conn, err := s.connections.GetConnection(ctx, tenantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar connection", err)
	}
	if conn == nil {
		// Precondition failure: reported distinctly, no log entry written.
		return nil, errors.NewAppError(errors.ErrConnectionNotFound, "no calendar connection for tenant", nil)
	}
	if !conn.SyncEnabled {
		return nil, errors.NewAppError(errors.ErrSyncDisabled, "calendar sync is disabled for tenant", nil)
	}

	// The lock is best-effort: two overlapping runs stay correct because
	// every remote mutation is keyed by provider id and every local one by
	// primary key. It only cuts redundant provider traffic.
	if acquired, lockErr := s.cache.AcquireSyncLock(ctx, tenantID); lockErr != nil {
		logger.Warn("SyncService:Sync:LockError", "tenant_id", tenantID, "error", lockErr)
	} else if !acquired {
		logger.Warn("SyncService:Sync:Overlap", "tenant_id", tenantID)
	} else {
		defer func() {
			if relErr := s.cache.ReleaseSyncLock(context.WithoutCancel(ctx), tenantID); relErr != nil {
				logger.Warn("SyncService:Sync:UnlockError", "tenant_id", tenantID, "error", relErr)
			}
		}()
	}

	run := &syncRun{
		tenantID:      tenantID,
		conn:          conn,
		result:        &dto.SyncResult{Success: true, Errors: []string{}},
		preStatus:     map[uuid.UUID]string{},
		seenRemote:    map[string]bool{},
		pendingDelete: map[string]bool{},
	}

	logger.Info("SyncService:Sync:Start", "tenant_id", tenantID, "calendar_id", conn.GoogleCalendarID)

	if appErr := s.ensureDedicatedCalendar(ctx, run); appErr != nil {
		return s.finish(ctx, run, appErr)
	}

	snapshot, err := s.events.GetEventsByTenant(ctx, tenantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load internal events", err)
	}
	for _, ev := range snapshot {
		run.preStatus[ev.ID] = ev.SyncStatus
	}

	deletedRows, err := s.events.ListDeleted(ctx, tenantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load deleted events", err)
	}
	run.deletedRows = deletedRows
	for i := range deletedRows {
		if deletedRows[i].GoogleEventID != nil {
			run.pendingDelete[*deletedRows[i].GoogleEventID] = true
		}
	}

	s.pushPhase(ctx, run, snapshot)
	if !run.aborted {
		s.pullPhase(ctx, run, snapshot)
	}
	if !run.aborted {
		s.reconcileDeletions(ctx, run, snapshot)
	}

	return s.finish(ctx, run, nil)
}

// ensureDedicatedCalendar repairs a connection whose dedicated calendar
// was never created (or was lost on the provider side).
func (s *syncService) ensureDedicatedCalendar(ctx context.Context, run *syncRun) *errors.AppError {
	if run.conn.GoogleCalendarID != "" {
		return nil
	}

	name := run.conn.CalendarName
	if name == "" {
		name = "Wedding Plan"
	}
	created, appErr := s.google.CreateCalendar(ctx, run.tenantID, name)
	if appErr != nil {
		return appErr
	}

	run.conn.GoogleCalendarID = created.ID
	run.conn.CalendarName = created.Summary
	if err := s.connections.UpdateConnection(ctx, run.conn); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to store dedicated calendar id", err)
	}
	logger.Info("SyncService:ensureDedicatedCalendar:Created", "tenant_id", run.tenantID, "calendar_id", created.ID)
	return nil
}

// pushPhase sends every local or pending event out. A single event's
// failure is recorded and never aborts the rest of the run; only a
// reauthorization failure stops everything.
func (s *syncService) pushPhase(ctx context.Context, run *syncRun, snapshot []entity.CalendarEvent) {
	for i := range snapshot {
		ev := &snapshot[i]
		if !ev.IsDirty() {
			continue
		}

		payload := mapper.ToGooglePayload(ev)

		var googleEventID string
		var appErr *errors.AppError
		if ev.GoogleEventID == nil {
			var created *dto.GoogleEvent
			created, appErr = s.google.CreateEvent(ctx, run.tenantID, run.conn.GoogleCalendarID, payload)
			if created != nil {
				googleEventID = created.ID
			}
		} else {
			googleEventID = *ev.GoogleEventID
			_, appErr = s.google.UpdateEvent(ctx, run.tenantID, run.conn.GoogleCalendarID, googleEventID, payload)
		}

		if appErr != nil {
			if errors.NeedsReauth(appErr) {
				s.abort(run, appErr)
				return
			}
			// Status stays local/pending so the event is retried next run.
			run.result.Errors = append(run.result.Errors,
				fmt.Sprintf("push event %s: %s", ev.ID, appErr.Message))
			continue
		}

		if err := s.events.MarkSynced(ctx, ev.ID, run.tenantID, googleEventID); err != nil {
			run.result.Errors = append(run.result.Errors,
				fmt.Sprintf("push event %s: failed to persist sync state: %v", ev.ID, err))
			continue
		}
		ev.GoogleEventID = &googleEventID
		ev.SyncStatus = entity.SyncStatusSynced
		run.result.Pushed++
	}
}

// pullPhase lists the dedicated calendar within a bounded window and folds
// remote state in. Local wins on conflict: a pending event was already
// pushed over the remote copy earlier in this same run.
func (s *syncService) pullPhase(ctx context.Context, run *syncRun, snapshot []entity.CalendarEvent) {
	now := s.now()
	remote, appErr := s.google.ListEvents(ctx, run.tenantID, run.conn.GoogleCalendarID, ListEventsQuery{
		TimeMin: now.Add(-constants.SyncWindowPast),
		TimeMax: now.Add(constants.SyncWindowFuture),
	})
	if appErr != nil {
		if errors.NeedsReauth(appErr) {
			s.abort(run, appErr)
			return
		}
		// Without a complete listing neither pull nor deletion
		// reconciliation can run safely this pass.
		run.result.Success = false
		run.result.Errors = append(run.result.Errors, "pull: "+appErr.Message)
		return
	}
	run.pullOK = true

	byGoogleID := map[string]*entity.CalendarEvent{}
	for i := range snapshot {
		if snapshot[i].GoogleEventID != nil {
			byGoogleID[*snapshot[i].GoogleEventID] = &snapshot[i]
		}
	}

	for _, g := range remote {
		if g.Status == "cancelled" {
			// Absent from seenRemote, so deletion reconciliation removes
			// any local copy.
			continue
		}
		run.seenRemote[g.ID] = true

		local, ok := byGoogleID[g.ID]
		if !ok {
			if run.pendingDelete[g.ID] {
				// The tenant deleted this event; deletion reconciliation
				// removes the remote copy later in this same pass.
				continue
			}
			ev := mapper.FromGoogleEvent(run.tenantID, g)
			if _, err := s.events.CreateEvent(ctx, ev); err != nil {
				run.result.Errors = append(run.result.Errors,
					fmt.Sprintf("pull event %s: %v", g.ID, err))
				continue
			}
			run.result.Pulled++
			continue
		}

		if run.preStatus[local.ID] != entity.SyncStatusSynced {
			// Dirty at the start of this run: the push phase already made
			// the remote copy match the local one. Local wins.
			continue
		}
		if !mapper.Differs(local, g) {
			continue
		}

		mapper.ApplyGoogleEvent(local, g)
		if err := s.events.UpdateEvent(ctx, local); err != nil {
			run.result.Errors = append(run.result.Errors,
				fmt.Sprintf("pull event %s: %v", g.ID, err))
			continue
		}
		run.result.Pulled++
	}
}

// reconcileDeletions runs last so a freshly-pulled remote creation can
// never be misread as a deletion candidate in the same pass.
func (s *syncService) reconcileDeletions(ctx context.Context, run *syncRun, snapshot []entity.CalendarEvent) {
	if run.pullOK {
		for i := range snapshot {
			ev := &snapshot[i]
			if run.preStatus[ev.ID] != entity.SyncStatusSynced || ev.GoogleEventID == nil {
				continue
			}
			if run.seenRemote[*ev.GoogleEventID] {
				continue
			}
			if err := s.events.HardDeleteEvent(ctx, ev.ID, run.tenantID); err != nil {
				run.result.Errors = append(run.result.Errors,
					fmt.Sprintf("delete event %s: %v", ev.ID, err))
				continue
			}
			run.result.Deleted++
		}
	}

	for i := range run.deletedRows {
		ev := &run.deletedRows[i]
		if ev.GoogleEventID != nil {
			appErr := s.google.DeleteEvent(ctx, run.tenantID, run.conn.GoogleCalendarID, *ev.GoogleEventID)
			if appErr != nil {
				if errors.NeedsReauth(appErr) {
					s.abort(run, appErr)
					return
				}
				// Row stays soft-deleted; the remote delete is retried
				// next run.
				run.result.Errors = append(run.result.Errors,
					fmt.Sprintf("delete event %s: %s", ev.ID, appErr.Message))
				continue
			}
		}
		if err := s.events.HardDeleteEvent(ctx, ev.ID, run.tenantID); err != nil {
			run.result.Errors = append(run.result.Errors,
				fmt.Sprintf("delete event %s: %v", ev.ID, err))
			continue
		}
		run.result.Deleted++
	}
}

func (s *syncService) abort(run *syncRun, appErr *errors.AppError) {
	run.aborted = true
	run.result.Success = false
	run.result.NeedsReauth = errors.NeedsReauth(appErr)
	run.result.Errors = append(run.result.Errors, appErr.Message)
}

// finish writes the append-only sync log entry, updates the connection
// bookkeeping and caches the outcome. Partially-applied effects are not
// rolled back; per-event status tracking is the durability mechanism.
func (s *syncService) finish(ctx context.Context, run *syncRun, precheckErr *errors.AppError) (*dto.SyncResult, *errors.AppError) {
	if precheckErr != nil {
		s.abort(run, precheckErr)
	}

	logEntry := &entity.SyncLog{
		TenantID: run.tenantID,
		RunID:    utils.GenerateID(),
		RanAt:    s.now(),
		Pushed:   run.result.Pushed,
		Pulled:   run.result.Pulled,
		Deleted:  run.result.Deleted,
		Errors:   run.result.Errors,
	}
	if err := s.logs.CreateLog(ctx, logEntry); err != nil {
		logger.Error("SyncService:finish:CreateLog:Error", "tenant_id", run.tenantID, "error", err)
	}

	if run.result.NeedsReauth != run.conn.NeedsReauth {
		if err := s.connections.SetNeedsReauth(ctx, run.tenantID, run.result.NeedsReauth); err != nil {
			logger.Error("SyncService:finish:SetNeedsReauth:Error", "tenant_id", run.tenantID, "error", err)
		}
	}
	if run.result.Success {
		if err := s.connections.UpdateLastSynced(ctx, run.tenantID, s.now()); err != nil {
			logger.Error("SyncService:finish:UpdateLastSynced:Error", "tenant_id", run.tenantID, "error", err)
		}
	}

	if err := s.cache.SetSyncStatus(ctx, run.tenantID, run.result); err != nil {
		logger.Warn("SyncService:finish:CacheStatus:Error", "tenant_id", run.tenantID, "error", err)
	}

	logger.Info("SyncService:Sync:Done",
		"tenant_id", run.tenantID,
		"success", run.result.Success,
		"pushed", run.result.Pushed,
		"pulled", run.result.Pulled,
		"deleted", run.result.Deleted,
		"errors", len(run.result.Errors),
	)
	return run.result, nil
}

func (s *syncService) Status(ctx context.Context, tenantID uuid.UUID) (*dto.SyncStatusResponse, *errors.AppError) {
	conn, err := s.connections.GetConnection(ctx, tenantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar connection", err)
	}
	if conn == nil {
		return &dto.SyncStatusResponse{Connected: false}, nil
	}

	resp := &dto.SyncStatusResponse{
		Connected:    true,
		Provider:     conn.Provider,
		CalendarName: conn.CalendarName,
		SyncEnabled:  conn.SyncEnabled,
		NeedsReauth:  conn.NeedsReauth,
		LastSyncedAt: conn.LastSyncedAt,
	}
	if conn.AccountEmail != nil {
		resp.AccountEmail = *conn.AccountEmail
	}

	logs, err := s.logs.ListRecent(ctx, tenantID, 5)
	if err != nil {
		logger.Warn("SyncService:Status:ListRecent:Error", "tenant_id", tenantID, "error", err)
		return resp, nil
	}
	for _, l := range logs {
		resp.RecentRuns = append(resp.RecentRuns, dto.SyncLogEntry{
			RunID:   l.RunID,
			RanAt:   l.RanAt,
			Pushed:  l.Pushed,
			Pulled:  l.Pulled,
			Deleted: l.Deleted,
			Errors:  l.Errors,
		})
	}
	return resp, nil
}

// Disconnect removes the stored grant and the connection record. Synced
// events are kept; they simply stop reconciling.
func (s *syncService) Disconnect(ctx context.Context, tenantID uuid.UUID) *errors.AppError {
	if err := s.credentials.DeleteCredential(ctx, tenantID, dto.ProviderGoogle); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete stored credential", err)
	}
	if err := s.connections.DeleteConnection(ctx, tenantID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete connection", err)
	}
	logger.Info("SyncService:Disconnect:Success", "tenant_id", tenantID)
	return nil
}

func (s *syncService) ListSyncEnabledTenants(ctx context.Context) ([]uuid.UUID, error) {
	connections, err := s.connections.ListSyncEnabled(ctx)
	if err != nil {
		return nil, err
	}
	tenants := make([]uuid.UUID, 0, len(connections))
	for _, conn := range connections {
		tenants = append(tenants, conn.TenantID)
	}
	return tenants, nil
}
