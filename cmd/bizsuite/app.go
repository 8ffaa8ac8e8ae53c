package main

import (
	"context"
	"fmt"

	"bizsuite/internal/caching"
	"bizsuite/internal/config"
	"bizsuite/internal/handlers"
	"bizsuite/internal/jobs/background"
	"bizsuite/internal/metrics"
	"bizsuite/internal/repositories"
	"bizsuite/internal/services"
	"bizsuite/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/random"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app holds the wired dependency graph shared by serve and jobs
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	pool     *pgxpool.Pool
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	cache    caching.CacheService
	storage  services.MinioService

	rbac     services.RBACService
	audit    services.AuditLogsService
	handlers *handlers.Handlers
	runner   *background.Runner
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	if cfg.JWT.Secret == "" && cfg.JWT.JWKSURL == "" {
		// development only; Validate rejects this in production
		cfg.JWT.Secret = random.String(32)
		log.Warn("jwt.secret not set, using a generated secret; tokens will not survive a restart")
	}

	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	cache := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, m)
	if err := cache.Ping(ctx); err != nil {
		log.Warn("redis unavailable, continuing without a warm cache", zap.Error(err))
	}

	storage, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	if err := storage.EnsureBucketExists(ctx); err != nil {
		log.Warn("object storage bucket check failed", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		pool:     pool,
		registry: registry,
		metrics:  m,
		cache:    cache,
		storage:  storage,
	}
	a.wire()
	return a, nil
}

func (a *app) wire() {
	cfg, m := a.cfg, a.metrics

	// Repositories
	tenantRepo := repositories.NewTenantRepo(a.pool)
	userRepo := repositories.NewUserRepo(a.pool)
	roleRepo := repositories.NewRoleRepo(a.pool)
	auditLogRepo := repositories.NewAuditLogsRepo(a.pool)
	categoryRepo := repositories.NewCategoryRepo(a.pool)
	productRepo := repositories.NewProductRepo(a.pool)
	customerRepo := repositories.NewCustomerRepo(a.pool)
	quotationRepo := repositories.NewQuotationRepo(a.pool)
	followupRepo := repositories.NewFollowupRepo(a.pool)
	shipmentRepo := repositories.NewShipmentRepo(a.pool)
	propertyRepo := repositories.NewPropertyRepo(a.pool)
	unitRepo := repositories.NewUnitRepo(a.pool)
	rentalTenantRepo := repositories.NewRentalTenantRepo(a.pool)
	leaseRepo := repositories.NewLeaseRepo(a.pool)
	paymentRepo := repositories.NewPaymentRepo(a.pool)
	rentInvoiceRepo := repositories.NewRentInvoiceRepo(a.pool)
	maintenanceRepo := repositories.NewMaintenanceRepo(a.pool)

	// Services
	a.audit = services.NewAuditLogsService(auditLogRepo)
	a.rbac = services.NewRBACService(roleRepo)
	tenantSvc := services.NewTenantService(tenantRepo)
	authSvc := services.NewAuthService(userRepo, a.rbac, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL)
	categorySvc := services.NewCategoryService(categoryRepo)
	productSvc := services.NewProductService(productRepo, categoryRepo, a.cache, a.audit)
	customerSvc := services.NewCustomerService(customerRepo, a.cache, a.audit)
	followupSvc := services.NewFollowupService(followupRepo, quotationRepo, a.audit, m, cfg.Quotation)
	quotationSvc := services.NewQuotationService(quotationRepo, customerRepo, productRepo, followupSvc, a.audit, a.cache,
		a.storage, m, cfg.Quotation, cfg.App.Name)
	landedCostSvc := services.NewLandedCostService(shipmentRepo, productRepo, a.cache, a.audit)
	propertySvc := services.NewPropertyService(propertyRepo, unitRepo, a.audit)
	unitSvc := services.NewUnitService(unitRepo, propertyRepo, leaseRepo, a.audit)
	rentalTenantSvc := services.NewRentalTenantService(rentalTenantRepo, a.audit)
	leaseSvc := services.NewLeaseService(leaseRepo, unitRepo, rentalTenantRepo, a.storage, a.audit)
	paymentSvc := services.NewPaymentService(paymentRepo, leaseRepo, rentInvoiceRepo, a.audit, m)
	rentInvoiceSvc := services.NewRentInvoiceService(rentInvoiceRepo, leaseRepo, a.storage, a.audit, m, cfg.Rent, cfg.App.Name)
	maintenanceSvc := services.NewMaintenanceService(maintenanceRepo, unitRepo, a.audit)

	a.handlers = &handlers.Handlers{
		Auth:        handlers.NewAuthHandlers(authSvc, a.audit),
		AuditLogs:   handlers.NewAuditLogsHandlers(a.audit),
		Tenant:      handlers.NewTenantHandlers(tenantSvc),
		User:        handlers.NewUserHandlers(userRepo),
		Category:    handlers.NewCategoryHandlers(categorySvc),
		Product:     handlers.NewProductHandlers(productSvc),
		Customer:    handlers.NewCustomerHandlers(customerSvc),
		Quotation:   handlers.NewQuotationHandlers(quotationSvc, followupSvc),
		LandedCost:  handlers.NewLandedCostHandlers(landedCostSvc),
		Property:    handlers.NewPropertyHandlers(propertySvc, unitSvc),
		Rental:      handlers.NewRentalHandlers(rentalTenantSvc, leaseSvc),
		Payment:     handlers.NewPaymentHandlers(paymentSvc, rentInvoiceSvc),
		Maintenance: handlers.NewMaintenanceHandlers(maintenanceSvc),
	}
	a.runner = background.NewRunner(tenantSvc, followupSvc, rentInvoiceSvc, m, a.log)
}

func (a *app) Close() {
	database.Close(a.pool, a.log)
}
