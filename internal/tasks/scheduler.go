package tasks

import (
	"fmt"
	"time"

	"faktura/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *logger.Logger
	sweepSpec string
	purgeSpec string
}

// NewScheduler creates a new task scheduler. The cron specs come from
// config so deployments can tune sweep cadence without a rebuild.
func NewScheduler(redisAddr, username, password string, db int, sweepSpec, purgeSpec string, logger *logger.Logger) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		&asynq.SchedulerOpts{},
	)

	return &Scheduler{
		scheduler: scheduler,
		logger:    logger,
		sweepSpec: sweepSpec,
		purgeSpec: purgeSpec,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

// registerTasks registers all periodic tasks
func (s *Scheduler) registerTasks() error {
	if err := s.RegisterCustomTask(s.sweepSpec, TaskTypeInvoiceOverdueSweep, nil,
		asynq.Queue(QueueLow), asynq.MaxRetry(RetryDefault), asynq.Timeout(TimeoutMedium)); err != nil {
		return err
	}
	if err := s.RegisterCustomTask(s.purgeSpec, TaskTypeAuthPurge, nil,
		asynq.Queue(QueueLow), asynq.MaxRetry(RetryMin), asynq.Timeout(TimeoutShort)); err != nil {
		return err
	}

	s.logger.Info("registered all periodic tasks")
	return nil
}

// RegisterCustomTask registers a custom periodic task
func (s *Scheduler) RegisterCustomTask(spec string, taskType string, payload []byte, opts ...asynq.Option) error {
	next, err := NextRun(spec)
	if err != nil {
		return err
	}

	entryID, err := s.scheduler.Register(spec, asynq.NewTask(taskType, payload, opts...))
	if err != nil {
		return fmt.Errorf("failed to register custom task: %w", err)
	}

	s.logger.Info("registered custom task %s %s %s, first run %s", taskType, spec, entryID, next.Format(time.RFC3339))
	return nil
}
