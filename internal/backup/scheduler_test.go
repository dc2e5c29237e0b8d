package backup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(context.Context, string) (*models.DatabaseBackup, error) {
	r.runs.Add(1)

	return &models.DatabaseBackup{}, nil
}

func TestCronExpression(t *testing.T) {
	tests := map[string]string{
		models.BackupDaily:   "0 3 * * *",
		models.BackupWeekly:  "0 3 * * 1",
		models.BackupMonthly: "0 3 1 * *",
	}

	for freq, want := range tests {
		got, ok := CronExpression(freq)
		assert.True(t, ok, freq)
		assert.Equal(t, want, got)
	}

	_, ok := CronExpression("hourly")
	assert.False(t, ok)
}

func TestSchedulerReconfigure(t *testing.T) {
	s := NewScheduler(&countingRunner{}, time.Minute, false)
	t.Cleanup(func() { s.Stop(context.Background()) })

	assert.False(t, s.Current().Enabled)

	gs := models.DefaultGlobalSettings()
	gs.Timezone = "UTC"
	gs.BackupFrequency = models.BackupDaily
	s.Reconfigure(gs)

	cur := s.Current()
	assert.True(t, cur.Enabled)
	assert.Equal(t, "0 3 * * *", cur.Expression)

	if assert.NotNil(t, cur.Next) {
		next := cur.Next.UTC()
		assert.Equal(t, 3, next.Hour())
		assert.Zero(t, next.Minute())
	}

	first := s.cron

	gs.BackupFrequency = models.BackupMonthly
	s.Reconfigure(gs)

	assert.NotSame(t, first, s.cron, "reconfigure swaps the runner")
	assert.Equal(t, 1, s.Current().Next.UTC().Day())
	assert.Len(t, s.cron.Entries(), 1)

	gs.BackupFrequency = "hourly"
	s.Reconfigure(gs)
	assert.False(t, s.Current().Enabled)
	assert.Nil(t, s.cron)

	gs.BackupFrequency = models.BackupWeekly
	gs.EnableAutoBackups = false
	s.Reconfigure(gs)
	assert.False(t, s.Current().Enabled)
}

func TestSchedulerJobRunsBackup(t *testing.T) {
	r := &countingRunner{}
	s := NewScheduler(r, time.Minute, false)

	s.job()

	assert.Equal(t, int32(1), r.runs.Load())
}
