package router

import (
	"wedsync-api/core/middleware"
	"wedsync-api/modules/planning/controller"

	"github.com/labstack/echo/v4"
)

type PlanningRouter struct {
	controller *controller.TaskController
}

func NewPlanningRouter(controller *controller.TaskController) *PlanningRouter {
	return &PlanningRouter{
		controller: controller,
	}
}

func (r *PlanningRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	taskRoutes := v1.Group("/private/planning/tasks")
	taskRoutes.Use(mw.AuthMiddleware())

	taskRoutes.GET("", r.controller.GetTasks)
	taskRoutes.POST("", r.controller.CreateTask)
	taskRoutes.PUT("/:id", r.controller.UpdateTask)
	taskRoutes.DELETE("/:id", r.controller.DeleteTask)
	taskRoutes.POST("/reproject", r.controller.Reproject)
}
