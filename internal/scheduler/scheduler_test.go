package scheduler

import (
	"testing"
	"time"

	"reservation-backend/internal/config"
	"reservation-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	t.Run("Registers the expiry job", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{ExpirePending: "0 */5 * * * *"}}
		s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
		require.NoError(t, err)
		assert.True(t, s.NextRun().IsZero(), "nothing is scheduled before Start")

		s.Start()
		next := s.NextRun()
		assert.False(t, next.IsZero())
		assert.Zero(t, next.Second())
		assert.Zero(t, next.Minute()%5)
		assert.Equal(t, time.UTC, next.Location())
		s.Stop()
	})

	t.Run("Rejects a bad cron expression", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{ExpirePending: "every five minutes"}}
		_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
		assert.Error(t, err)
	})

	t.Run("Five-field expressions need seconds", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{ExpirePending: "*/5 * * * *"}}
		_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
		assert.Error(t, err)
	})
}
