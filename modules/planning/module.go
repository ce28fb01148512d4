package planning

import (
	"wedsync-api/core/database"
	"wedsync-api/core/middleware"
	calendarrepository "wedsync-api/modules/calendar/repository"
	"wedsync-api/modules/planning/controller"
	"wedsync-api/modules/planning/repository"
	"wedsync-api/modules/planning/router"
	"wedsync-api/modules/planning/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.Database) {
	taskRepo := repository.NewTaskRepository(db)
	eventRepo := calendarrepository.NewEventRepository(db)

	projectorService := service.NewProjectorService(taskRepo, eventRepo)
	taskService := service.NewTaskService(taskRepo, projectorService)

	taskController := controller.NewTaskController(taskService, projectorService)

	mw := middleware.NewMiddleware()
	router.NewPlanningRouter(taskController).Setup(e, mw)
}
