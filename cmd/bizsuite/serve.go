package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "bizsuite/docs"
	"bizsuite/internal/common"
	"bizsuite/internal/handlers"
	"bizsuite/internal/jobs/background"
	"bizsuite/internal/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the job scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.serve(ctx)
		},
	}
}

func (a *app) newServer(ctx context.Context) (*echo.Echo, func(), error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = common.NewHTTPErrorHandler()
	e.Validator = common.NewRequestValidator()

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(a.log))
	e.Use(middleware.Metrics(a.metrics))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: a.cfg.HTTP.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Unversioned operational endpoints
	health := handlers.NewHealthHandlers(a.pool, a.cache, a.storage, version)
	e.GET("/health", health.LivenessCheck)
	e.GET("/health/ready", health.ReadinessCheck)
	e.GET("/health/detailed", health.DetailedHealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	jwtMiddleware, stopJWKS, err := middleware.JWTMiddleware(middleware.JWTConfig{
		Secret:  a.cfg.JWT.Secret,
		JWKSURL: a.cfg.JWT.JWKSURL,
	})
	if err != nil {
		return nil, nil, err
	}

	limiter := middleware.NewRateLimiter(ctx, a.cfg.HTTP.RateLimitRPS, a.cfg.HTTP.RateLimitBurst, a.metrics)

	v1 := versionMiddleware.VersionRoute(e, "v1")
	v1.Use(limiter.Middleware())
	handlers.RegisterPublicRoutes(v1, a.handlers)

	protected := v1.Group("")
	protected.Use(jwtMiddleware)
	protected.Use(middleware.NewAuditMiddleware(a.audit).AuditRequest(middleware.AuditMedium))
	handlers.RegisterProtectedRoutes(protected, a.handlers, middleware.NewRBACMiddleware(a.rbac))

	return e, stopJWKS, nil
}

func (a *app) serve(ctx context.Context) error {
	e, stopJWKS, err := a.newServer(ctx)
	if err != nil {
		return err
	}
	defer stopJWKS()

	var scheduler *background.JobScheduler
	if a.cfg.Scheduler.Enabled {
		scheduler, err = background.NewJobScheduler(a.runner, a.cfg.Scheduler, a.log)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	addr := fmt.Sprintf(":%d", a.cfg.App.Port)
	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", addr), zap.String("version", version), zap.String("env", a.cfg.App.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			a.log.Error("scheduler shutdown failed", zap.Error(err))
		}
	}
	a.log.Info("server stopped")
	return nil
}
