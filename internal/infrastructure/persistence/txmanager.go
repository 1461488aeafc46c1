package persistence

import (
	"context"
	"sync/atomic"

	"github.com/buildledger/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	txStateIdle int32 = iota
	txStateBegun
)

// TxManager owns the single write boundary over the ledger database. All
// mutations go through WithTransaction; reads that need a consistent view go
// through View. The manager counts committed mutations so the backup scheduler
// knows when the database diverged from the last exported snapshot: the store
// is dirty whenever the mutation generation has moved past the last one a
// backup acknowledged. Acknowledging a captured generation instead of blindly
// resetting a flag means a commit that lands while a snapshot is being shipped
// keeps the store dirty for the next poll.
//
// Boundaries never nest. A second begin while one is in flight is a
// programming error and surfaces as a transaction state error instead of
// deadlocking or silently joining the outer work.
type TxManager struct {
	db     *gorm.DB
	logger *zap.Logger
	state  atomic.Int32

	mutations atomic.Int64
	backedUp  atomic.Int64
}

// NewTxManager creates a TxManager over the database handle
func NewTxManager(db *gorm.DB, logger *zap.Logger) *TxManager {
	return &TxManager{db: db, logger: logger}
}

func (m *TxManager) begin() error {
	if !m.state.CompareAndSwap(txStateIdle, txStateBegun) {
		return shared.NewTransactionStateError("transaction already in progress")
	}
	return nil
}

func (m *TxManager) finish() {
	m.state.Store(txStateIdle)
}

// WithTransaction runs fn inside a database transaction. Any error or panic
// from fn rolls every change back; on commit the dirty flag is raised.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, store *Store) error) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
	if err != nil {
		m.logger.Warn("transaction rolled back", zap.Error(err))
		return err
	}
	m.mutations.Add(1)
	return nil
}

// View runs fn inside a read-only transaction so multi-table reads see one
// consistent state. The dirty flag is untouched.
func (m *TxManager) View(ctx context.Context, fn func(ctx context.Context, store *Store) error) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
}

// IsDirty reports whether any mutation committed since the last acknowledged
// backup
func (m *TxManager) IsDirty() bool {
	return m.mutations.Load() != m.backedUp.Load()
}

// MarkDirty forces the next backup poll to export, used when the state of the
// database relative to the last backup is unknown
func (m *TxManager) MarkDirty() {
	m.mutations.Add(1)
}

// Generation returns the current mutation generation. A backup captures it
// before exporting and passes it back to ClearDirtyThrough once the snapshot
// is safely stored.
func (m *TxManager) Generation() int64 {
	return m.mutations.Load()
}

// ClearDirtyThrough acknowledges every mutation up to gen. Commits that landed
// after gen was captured leave the store dirty, so a write racing a backup
// upload is picked up by the next poll instead of being lost.
func (m *TxManager) ClearDirtyThrough(gen int64) {
	for {
		acked := m.backedUp.Load()
		if gen <= acked || m.backedUp.CompareAndSwap(acked, gen) {
			return
		}
	}
}

// ClearDirty acknowledges everything committed so far. Only safe when no
// writer can be in flight, such as right after a snapshot import.
func (m *TxManager) ClearDirty() {
	m.backedUp.Store(m.mutations.Load())
}
