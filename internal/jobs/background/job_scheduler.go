package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bizsuite/internal/config"
	"bizsuite/internal/metrics"
	"bizsuite/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	JobFollowups    = "quotation-followups"
	JobExpiry       = "quotation-expiry"
	JobRentInvoices = "rent-invoices"

	defaultFollowupCron    = "0 8 * * *"
	defaultExpiryCron      = "30 0 * * *"
	defaultRentInvoiceCron = "0 1 * * *"

	// tenants processed in parallel per job run
	tenantConcurrency = 5
)

// RunReport summarises one job run across tenants
type RunReport struct {
	Job       string        `json:"job"`
	Tenants   int           `json:"tenants"`
	Failed    int           `json:"failed"`
	Processed int           `json:"processed"`
	Duration  time.Duration `json:"duration"`
}

// Runner executes the daily jobs for every active tenant.
// It backs both the scheduler and the `jobs` CLI commands.
type Runner struct {
	tenants      services.TenantService
	followups    services.FollowupService
	rentInvoices services.RentInvoiceService
	metrics      *metrics.Metrics
	log          *zap.Logger
	now          func() time.Time
}

func NewRunner(
	tenants services.TenantService,
	followups services.FollowupService,
	rentInvoices services.RentInvoiceService,
	m *metrics.Metrics,
	log *zap.Logger,
) *Runner {
	if m == nil {
		m = metrics.NewNop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		tenants:      tenants,
		followups:    followups,
		rentInvoices: rentInvoices,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

func (r *Runner) today() time.Time {
	return r.now().UTC().Truncate(24 * time.Hour)
}

// forEachTenant runs fn for every active tenant with bounded concurrency.
// A tenant failure is logged and counted; it never stops the others.
func (r *Runner) forEachTenant(ctx context.Context, job string, fn func(ctx context.Context, tenantID uuid.UUID) (int, error)) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{Job: job}

	tenantIDs, err := r.tenants.ListActiveIDs(ctx)
	if err != nil {
		r.metrics.JobRuns.WithLabelValues(job, "error").Inc()
		return nil, fmt.Errorf("%s: list tenants: %w", job, err)
	}
	report.Tenants = len(tenantIDs)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(tenantConcurrency)
	for _, tenantID := range tenantIDs {
		g.Go(func() error {
			n, err := fn(ctx, tenantID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				r.log.Error("job failed for tenant",
					zap.String("job", job),
					zap.String("tenant_id", tenantID.String()),
					zap.Error(err))
				return nil
			}
			report.Processed += n
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	result := "success"
	if report.Failed > 0 {
		result = "partial"
	}
	r.metrics.JobRuns.WithLabelValues(job, result).Inc()
	r.log.Info("job completed",
		zap.String("job", job),
		zap.Int("tenants", report.Tenants),
		zap.Int("failed", report.Failed),
		zap.Int("processed", report.Processed),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// RunFollowups sends every due follow-up reminder
func (r *Runner) RunFollowups(ctx context.Context) (*RunReport, error) {
	today := r.today()
	return r.forEachTenant(ctx, JobFollowups, func(ctx context.Context, tenantID uuid.UUID) (int, error) {
		res, err := r.followups.ProcessDue(ctx, tenantID, today)
		if err != nil {
			return 0, err
		}
		if res.Failed > 0 {
			r.log.Warn("some follow-ups could not be processed",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("failed", res.Failed))
		}
		return res.Processed, nil
	})
}

// RunExpiry expires stale sent quotations
func (r *Runner) RunExpiry(ctx context.Context) (*RunReport, error) {
	today := r.today()
	return r.forEachTenant(ctx, JobExpiry, func(ctx context.Context, tenantID uuid.UUID) (int, error) {
		return r.followups.AutoExpire(ctx, tenantID, today)
	})
}

// RunRentInvoices bills active leases for month (empty means current) and flags overdue invoices
func (r *Runner) RunRentInvoices(ctx context.Context, month string, force bool) (*RunReport, error) {
	return r.forEachTenant(ctx, JobRentInvoices, func(ctx context.Context, tenantID uuid.UUID) (int, error) {
		summary, err := r.rentInvoices.GenerateRentInvoices(ctx, tenantID, month, force)
		if err != nil {
			return 0, err
		}
		for _, msg := range summary.Errors {
			r.log.Warn("rent invoice not generated",
				zap.String("tenant_id", tenantID.String()),
				zap.String("error", msg))
		}

		overdue, err := r.rentInvoices.MarkOverdue(ctx, tenantID)
		if err != nil {
			return summary.Generated, fmt.Errorf("mark overdue: %w", err)
		}
		if overdue > 0 {
			r.log.Info("rent invoices marked overdue",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("count", overdue))
		}
		return summary.Generated, nil
	})
}

// JobScheduler runs the daily jobs on cron schedules
type JobScheduler struct {
	scheduler gocron.Scheduler
	runner    *Runner
	cfg       config.SchedulerConfig
	log       *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex

	// ctx is handed to every task and cancelled on Stop
	ctx    context.Context
	cancel context.CancelFunc
}

// NewJobScheduler creates the scheduler and registers every job
func NewJobScheduler(runner *Runner, cfg config.SchedulerConfig, log *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobScheduler{
		ctx:       ctx,
		cancel:    cancel,
		scheduler: scheduler,
		runner:    runner,
		cfg:       cfg,
		log:       log,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (js *JobScheduler) registerJobs() error {
	definitions := []struct {
		name string
		cron string
		task func(ctx context.Context) (*RunReport, error)
	}{
		{JobFollowups, orDefault(js.cfg.FollowupCron, defaultFollowupCron), js.runner.RunFollowups},
		{JobExpiry, orDefault(js.cfg.ExpiryCron, defaultExpiryCron), js.runner.RunExpiry},
		{JobRentInvoices, orDefault(js.cfg.RentInvoiceCron, defaultRentInvoiceCron), func(ctx context.Context) (*RunReport, error) {
			return js.runner.RunRentInvoices(ctx, "", false)
		}},
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	for _, def := range definitions {
		task := def.task
		name := def.name
		job, err := js.scheduler.NewJob(
			gocron.CronJob(def.cron, false),
			gocron.NewTask(func(ctx context.Context) {
				if _, err := task(ctx); err != nil {
					js.log.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
				}
			}, js.ctx),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to register %s job: %w", name, err)
		}
		js.jobs[name] = job
	}

	js.log.Info("registered background jobs", zap.Int("count", len(js.jobs)))
	return nil
}

// Jobs returns the registered job names
func (js *JobScheduler) Jobs() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.log.Info("stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}
