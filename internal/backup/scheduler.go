package backup

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/shopadmin/shop-admin/internal/db/models"
	cronlog "github.com/shopadmin/shop-admin/internal/logger/adapter/cron"
)

// Runner is what the scheduler triggers.
type Runner interface {
	Run(ctx context.Context, trigger string) (*models.DatabaseBackup, error)
}

// Schedule describes the active backup job.
type Schedule struct {
	Enabled    bool       `json:"enabled"`
	Frequency  string     `json:"frequency,omitempty"`
	Expression string     `json:"cron,omitempty"`
	Next       *time.Time `json:"nextRun,omitempty"`
}

// CronExpression maps a backup frequency to its cron spec. All jobs run at 03:00.
func CronExpression(frequency string) (string, bool) {
	switch frequency {
	case models.BackupDaily:
		return "0 3 * * *", true
	case models.BackupWeekly:
		return "0 3 * * 1", true
	case models.BackupMonthly:
		return "0 3 1 * *", true
	default:
		return "", false
	}
}

// Scheduler owns the single scheduled backup job.
type Scheduler struct {
	runner  Runner
	timeout time.Duration
	logger  cron.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	current Schedule
}

// NewScheduler creates a scheduler with no active job.
func NewScheduler(runner Runner, timeout time.Duration, verbose bool) *Scheduler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Scheduler{
		runner:  runner,
		timeout: timeout,
		logger:  cronlog.New(verbose),
	}
}

// Reconfigure replaces the running job with one matching gs. Disabled auto
// backups or an unknown frequency leave no job running.
func (s *Scheduler) Reconfigure(gs models.GlobalSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if !gs.EnableAutoBackups {
		log.Info().Msg("auto backup is disabled")

		return
	}

	expr, ok := CronExpression(gs.BackupFrequency)
	if !ok {
		log.Warn().Str("frequency", gs.BackupFrequency).Msg("invalid backup frequency, no backup scheduled")

		return
	}

	c := cron.New(
		cron.WithLogger(s.logger),
		cron.WithLocation(location(gs.Timezone)),
		cron.WithChain(cron.Recover(s.logger), cron.SkipIfStillRunning(s.logger)),
	)

	if _, err := c.AddFunc(expr, s.job); err != nil {
		log.Error().Err(err).Str("cron", expr).Msg("failed to schedule backup")

		return
	}

	c.Start()

	s.cron = c
	s.current = Schedule{Enabled: true, Frequency: gs.BackupFrequency, Expression: expr}

	log.Info().Str("frequency", gs.BackupFrequency).Str("cron", expr).Msg("scheduled backup")
}

func location(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}

	return loc
}

func (s *Scheduler) job() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// Run logs its own failures
	_, _ = s.runner.Run(ctx, models.TriggerScheduled)
}

// Current returns the active schedule and its next run.
func (s *Scheduler) Current() Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.current

	if s.cron != nil {
		if entries := s.cron.Entries(); len(entries) > 0 {
			next := entries[0].Schedule.Next(time.Now().In(s.cron.Location()))
			out.Next = &next
		}
	}

	return out
}

// Stop halts the active job and waits until a running backup finishes or ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	done := s.stopLocked()
	s.mu.Unlock()

	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("backup still running at shutdown")
	}
}

// stopLocked stops the cron runner. The returned context is done once its jobs returned.
func (s *Scheduler) stopLocked() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		return ctx
	}

	done := s.cron.Stop()
	s.cron = nil
	s.current = Schedule{}

	return done
}
