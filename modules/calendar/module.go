package calendar

import (
	"wedsync-api/core/cache"
	"wedsync-api/core/database"
	"wedsync-api/core/middleware"
	"wedsync-api/modules/calendar/controller"
	"wedsync-api/modules/calendar/repository"
	"wedsync-api/modules/calendar/router"
	"wedsync-api/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Init wires the calendar module and returns the sync service so the
// background queue can reuse the same entry point.
func Init(e *echo.Echo, db database.Database, c cache.Cache) service.SyncService {
	connectionRepo := repository.NewConnectionRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	eventRepo := repository.NewEventRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)

	tokenService := service.NewTokenService(credentialRepo)
	googleClient := service.NewGoogleClient(tokenService)
	syncService := service.NewSyncService(connectionRepo, credentialRepo, eventRepo, syncLogRepo, googleClient, c)
	exportService := service.NewExportService(connectionRepo, eventRepo)

	calendarController := controller.NewCalendarController(syncService, exportService)

	mw := middleware.NewMiddleware()
	router.NewCalendarRouter(calendarController).Setup(e, mw)

	return syncService
}
