package controller

import (
	"net/http"

	"wedsync-api/core/controller"
	"wedsync-api/core/errors"
	"wedsync-api/core/middleware"
	"wedsync-api/modules/calendar/dto"
	"wedsync-api/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	controller.BaseController
	syncService   service.SyncService
	exportService service.ExportService
}

func NewCalendarController(syncService service.SyncService, exportService service.ExportService) *CalendarController {
	return &CalendarController{
		BaseController: controller.NewBaseController(),
		syncService:    syncService,
		exportService:  exportService,
	}
}

// TriggerSync runs a full sync pass for the current tenant
// POST /api/v1/private/calendar/sync
func (c *CalendarController) TriggerSync(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	result, appErr := c.syncService.Sync(ctx.Request().Context(), tenantID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Sync completed")
}

// GetStatus returns the connection state and recent sync runs
// GET /api/v1/private/calendar/status
func (c *CalendarController) GetStatus(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	status, appErr := c.syncService.Status(ctx.Request().Context(), tenantID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, status, "Status retrieved")
}

// Disconnect removes the provider connection and stored credentials
// DELETE /api/v1/private/calendar/connections/:provider
func (c *CalendarController) Disconnect(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	if ctx.Param("provider") != dto.ProviderGoogle {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid provider")
	}

	if appErr := c.syncService.Disconnect(ctx.Request().Context(), tenantID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Disconnected successfully")
}

// ExportICS serves the tenant's events as an iCalendar download
// GET /api/v1/private/calendar/export.ics
func (c *CalendarController) ExportICS(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	export, appErr := c.exportService.ExportICS(ctx.Request().Context(), tenantID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return ctx.Blob(http.StatusOK, "text/calendar", export.Body)
}

// ArchiveICS uploads the current export to the configured S3 bucket
// POST /api/v1/private/calendar/export/archive
func (c *CalendarController) ArchiveICS(ctx echo.Context) error {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Invalid tenant")
	}

	key, appErr := c.exportService.ArchiveICS(ctx.Request().Context(), tenantID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, map[string]string{"key": key}, "Archive uploaded")
}
