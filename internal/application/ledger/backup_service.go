package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/buildledger/backend/internal/infrastructure/backup"
	"github.com/buildledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// BackupService exports the ledger snapshot and ships it to the configured
// transport. A successful run clears the dirty flag so the scheduler stays
// quiet until the next mutation.
type BackupService struct {
	txm       *persistence.TxManager
	snapshots *persistence.SnapshotManager
	transport backup.Transport
	logger    *zap.Logger

	now func() time.Time
}

// NewBackupService creates a new BackupService
func NewBackupService(txm *persistence.TxManager, snapshots *persistence.SnapshotManager, transport backup.Transport, logger *zap.Logger) *BackupService {
	return &BackupService{
		txm:       txm,
		snapshots: snapshots,
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
}

// Run exports one consistent snapshot, stores it and acknowledges the dirty
// flag up to the generation captured before the export. A mutation that
// commits while the snapshot is being shipped keeps the store dirty, so the
// next poll exports it rather than losing it behind an unconditional clear.
// The flag also survives a failed run so the scheduler retries.
func (s *BackupService) Run(ctx context.Context) error {
	gen := s.txm.Generation()
	data, err := s.snapshots.Export(ctx)
	if err != nil {
		return fmt.Errorf("backup export: %w", err)
	}
	name := fmt.Sprintf("ledger-%s.json", s.now().UTC().Format("2006-01-02T15-04-05"))
	if err := s.transport.Store(ctx, name, data); err != nil {
		return fmt.Errorf("backup store: %w", err)
	}
	s.txm.ClearDirtyThrough(gen)
	s.logger.Info("backup stored", zap.String("name", name), zap.Int("bytes", len(data)))
	return nil
}

// Restore loads a previously exported snapshot, replacing the current ledger
func (s *BackupService) Restore(ctx context.Context, data []byte) error {
	return s.snapshots.Import(ctx, data)
}
