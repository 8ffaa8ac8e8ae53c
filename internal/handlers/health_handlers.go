package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"bizsuite/internal/caching"
	"bizsuite/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

var errBucketMissing = errors.New("storage bucket does not exist")

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	cache     caching.CacheService
	storage   services.MinioService
	version   string
	startedAt time.Time
}

// NewHealthHandlers creates a new health handlers instance. cache and storage may be nil.
func NewHealthHandlers(db Pinger, cache caching.CacheService, storage services.MinioService, version string) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		storage:   storage,
		version:   version,
		startedAt: time.Now(),
	}
}

// CheckResult is the outcome of one dependency probe
type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

func probe(ctx context.Context, fn func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	res := CheckResult{Status: "healthy", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = "unhealthy"
		res.Message = err.Error()
	}
	return res
}

func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	ok, err := h.storage.BucketExists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errBucketMissing
	}
	return nil
}

// LivenessCheck handles GET /health
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /health/ready. Only the database gates readiness.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	res := probe(c.Request().Context(), h.db.Ping)
	if res.Status != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	checks := map[string]CheckResult{
		"database": probe(ctx, h.db.Ping),
	}
	if h.cache != nil {
		checks["redis"] = probe(ctx, h.cache.Ping)
	}
	if h.storage != nil {
		checks["storage"] = probe(ctx, h.checkStorage)
	}

	overall := "healthy"
	for _, res := range checks {
		if res.Status != "healthy" {
			overall = "degraded"
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	rt := map[string]interface{}{
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc_mb":  mem.HeapAlloc / 1024 / 1024,
		"num_gc":         mem.NumGC,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}
	if pool, ok := h.db.(*pgxpool.Pool); ok {
		stat := pool.Stat()
		rt["db_total_conns"] = stat.TotalConns()
		rt["db_idle_conns"] = stat.IdleConns()
		rt["db_max_conns"] = stat.MaxConns()
	}

	status := http.StatusOK
	if overall != "healthy" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]interface{}{
		"overall_status": overall,
		"checks":         checks,
		"runtime":        rt,
		"version":        h.version,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
