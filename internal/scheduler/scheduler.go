package scheduler

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

// Scheduler triggers the yearly renewal of every organization on the configured cron schedule
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	renewal  service.RenewalService
	logger   *logger.Logger
	now      func() time.Time
}

// New builds a scheduler from billing.renewal_schedule. An empty schedule
// yields a scheduler that never fires.
func New(cfg *config.Configuration, renewal service.RenewalService, log *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		renewal: renewal,
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}

	spec := cfg.Billing.RenewalSchedule
	if spec == "" {
		return s, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invalid renewal schedule %q", spec).
			Mark(ierr.ErrValidation)
	}
	s.schedule = schedule

	cronLogger := &cronLogger{log: log}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.RunOnce(context.Background())
	}))
	return s, nil
}

// Enabled reports whether a renewal schedule is configured
func (s *Scheduler) Enabled() bool {
	return s.cron != nil
}

// NextRun returns when the renewal fires next after t. Zero when disabled.
func (s *Scheduler) NextRun(t time.Time) time.Time {
	if s.schedule == nil {
		return time.Time{}
	}
	return s.schedule.Next(t.UTC())
}

// RunOnce renews every organization for the current fiscal year
func (s *Scheduler) RunOnce(ctx context.Context) *service.BulkRenewalResult {
	year := types.FiscalYearOf(s.now())
	s.logger.Infow("scheduled renewal started", "fiscal_year", year)

	result, err := s.renewal.RunRenewalForAll(ctx, year)
	if err != nil {
		s.logger.Errorw("scheduled renewal failed", "fiscal_year", year, "error", err)
		return nil
	}

	for _, failure := range result.Failed {
		s.logger.Warnw("organization renewal failed",
			"organization_id", failure.OrganizationID,
			"fiscal_year", year,
			"error", failure.Error,
		)
	}
	s.logger.Infow("scheduled renewal finished",
		"fiscal_year", year,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result
}

func (s *Scheduler) Start() {
	if !s.Enabled() {
		s.logger.Infow("renewal scheduler disabled, no schedule configured")
		return
	}
	s.cron.Start()
	s.logger.Infow("renewal scheduler started", "next_run", s.NextRun(s.now()))
}

// Stop waits for a running renewal to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterHooks ties the scheduler to the application lifecycle
func RegisterHooks(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

// cronLogger routes cron's own logging through the application logger
type cronLogger struct {
	log *logger.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
