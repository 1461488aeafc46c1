// Package scheduler runs the periodic jobs of the ledger. The only job today
// is the dirty-triggered backup loop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BackupRunner exports the ledger and ships it to the backup transport
type BackupRunner interface {
	Run(ctx context.Context) error
}

// DirtyTracker reports whether the database changed since the last backup
type DirtyTracker interface {
	IsDirty() bool
}

// BackupSchedulerConfig holds configuration for the backup scheduler
type BackupSchedulerConfig struct {
	// PollInterval is how often the dirty flag is checked
	PollInterval time.Duration
}

// DefaultBackupSchedulerConfig returns default backup scheduler configuration
func DefaultBackupSchedulerConfig() BackupSchedulerConfig {
	return BackupSchedulerConfig{
		PollInterval: 5 * time.Minute,
	}
}

// BackupScheduler polls the dirty flag and runs a backup whenever the ledger
// changed since the last one. Polling instead of backing up on every write
// coalesces bursts of edits into a single export.
type BackupScheduler struct {
	config  BackupSchedulerConfig
	runner  BackupRunner
	tracker DirtyTracker
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewBackupScheduler creates a new backup scheduler
func NewBackupScheduler(
	config BackupSchedulerConfig,
	runner BackupRunner,
	tracker DirtyTracker,
	logger *zap.Logger,
) *BackupScheduler {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultBackupSchedulerConfig().PollInterval
	}
	return &BackupScheduler{
		config:  config,
		runner:  runner,
		tracker: tracker,
		logger:  logger,
	}
}

// Start starts the backup loop. Calling Start on a running scheduler is a
// no-op.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Backup scheduler started",
		zap.Duration("poll_interval", s.config.PollInterval),
	)
	return nil
}

// Stop stops the backup loop and waits for an in-flight backup to finish
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("Backup scheduler stopped")
}

func (s *BackupScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *BackupScheduler) runOnce(ctx context.Context) {
	if !s.tracker.IsDirty() {
		return
	}
	start := time.Now()
	if err := s.runner.Run(ctx); err != nil {
		// the dirty flag stays up, the next tick retries
		s.logger.Error("Backup failed", zap.Error(err))
		return
	}
	s.logger.Info("Backup completed", zap.Duration("took", time.Since(start)))
}
