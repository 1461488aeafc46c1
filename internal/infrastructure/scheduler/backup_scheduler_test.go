package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	runs atomic.Int32
	err  error
	done func()
}

func (r *fakeRunner) Run(ctx context.Context) error {
	r.runs.Add(1)
	if r.done != nil {
		r.done()
	}
	return r.err
}

type fakeTracker struct {
	dirty atomic.Bool
}

func (t *fakeTracker) IsDirty() bool { return t.dirty.Load() }

func TestBackupScheduler(t *testing.T) {
	t.Run("runs a backup when dirty", func(t *testing.T) {
		ran := make(chan struct{}, 1)
		runner := &fakeRunner{done: func() {
			select {
			case ran <- struct{}{}:
			default:
			}
		}}
		tracker := &fakeTracker{}
		tracker.dirty.Store(true)

		s := NewBackupScheduler(BackupSchedulerConfig{PollInterval: 10 * time.Millisecond}, runner, tracker, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop()

		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("backup never ran")
		}
	})

	t.Run("skips backups while clean", func(t *testing.T) {
		runner := &fakeRunner{}
		tracker := &fakeTracker{}

		s := NewBackupScheduler(BackupSchedulerConfig{PollInterval: 5 * time.Millisecond}, runner, tracker, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))

		time.Sleep(50 * time.Millisecond)
		s.Stop()

		assert.EqualValues(t, 0, runner.runs.Load())
	})

	t.Run("keeps polling after a failed backup", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("transport down")}
		tracker := &fakeTracker{}
		tracker.dirty.Store(true)

		s := NewBackupScheduler(BackupSchedulerConfig{PollInterval: 5 * time.Millisecond}, runner, tracker, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))

		time.Sleep(60 * time.Millisecond)
		s.Stop()

		assert.Greater(t, runner.runs.Load(), int32(1))
	})

	t.Run("start twice is a no-op and stop is idempotent", func(t *testing.T) {
		runner := &fakeRunner{}
		tracker := &fakeTracker{}

		s := NewBackupScheduler(BackupSchedulerConfig{}, runner, tracker, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Start(context.Background()))
		s.Stop()
		s.Stop()
	})
}
