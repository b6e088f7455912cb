package jobs

import (
	"library-backend/internal/config"
	"library-backend/internal/logger"
	"library-backend/internal/repository"
	"library-backend/internal/service"
)

// Services holds all service dependencies needed by jobs
type Services struct {
	Borrow service.BorrowService
	Email  service.EmailService
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos    repository.Repositories
	services *Services
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos repository.Repositories, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		repos:    repos,
		services: services,
		config:   cfg,
	}
}

// Config exposes the runner's configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
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

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.CancelExpiredReservations()
	jr.MarkOverdueBorrows()
	jr.SendOverdueReminders()
	jr.SendReservationReminders()
}
