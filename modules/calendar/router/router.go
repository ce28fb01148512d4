package router

import (
	"wedsync-api/core/middleware"
	"wedsync-api/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		controller: controller,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	calendarRoutes := v1.Group("/private/calendar")
	calendarRoutes.Use(mw.AuthMiddleware())

	calendarRoutes.POST("/sync", r.controller.TriggerSync)
	calendarRoutes.GET("/status", r.controller.GetStatus)
	calendarRoutes.DELETE("/connections/:provider", r.controller.Disconnect)
	calendarRoutes.GET("/export.ics", r.controller.ExportICS)
	calendarRoutes.POST("/export/archive", r.controller.ArchiveICS)
}
