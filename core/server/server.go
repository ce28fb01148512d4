package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wedsync-api/core/cache"
	"wedsync-api/core/config"
	"wedsync-api/core/constants"
	"wedsync-api/core/database"
	"wedsync-api/core/logger"
	"wedsync-api/core/queue"
	"wedsync-api/modules/calendar"
	"wedsync-api/modules/planning"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the full service: config, database, redis, HTTP routes and
// the background sync queue. It blocks until SIGINT/SIGTERM.
func Run() error {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	c, err := cache.NewCache(cfg.Redis)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer c.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	syncService := calendar.Init(e, db, c)
	planning.Init(e, db)

	q := queue.New(cfg.Redis, syncService)
	if err := q.Start(cfg.Sync.CronSpec); err != nil {
		return fmt.Errorf("start queue: %w", err)
	}
	defer q.Shutdown()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Run:StartError", "error", err)
		}
	}()
	logger.Info("Server:Run:Started", "port", cfg.Server.Port, "env", cfg.Server.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server:Run:ShuttingDown")
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
