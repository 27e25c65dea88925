package jobs

import (
	"fmt"
	"time"

	"reservation-backend/internal/config"
	"reservation-backend/internal/logger"
	"reservation-backend/internal/service"
)

const JobExpirePending = "expire-pending"

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Reservation service.ReservationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// RunByName runs a single job synchronously (for manual execution)
func (jr *JobRunner) RunByName(name string) error {
	switch name {
	case JobExpirePending:
		jr.ExpirePendingReservations()
		return nil
	default:
		return fmt.Errorf("unknown job %q", name)
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
