package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Snapshot is the full portable state of one ledger: every table plus the
// schema version and migration log it was exported under. Imports into a
// newer build replay the missing migrations after loading the rows.
type Snapshot struct {
	SchemaVersion     int                             `json:"schemaVersion"`
	AppliedMigrations []string                        `json:"appliedMigrations"`
	ExportedAt        time.Time                       `json:"exportedAt"`
	Companies         []models.CompanyModel           `json:"companies"`
	Projects          []models.ProjectModel           `json:"projects"`
	Categories        []models.CategoryModel          `json:"categories"`
	Transactions      []models.TransactionModel       `json:"transactions"`
	Allocations       []models.PaymentAllocationModel `json:"allocations"`
	Trash             []models.TrashEntryModel        `json:"trash"`
}

// SnapshotManager exports and imports full-database snapshots through the
// transaction boundary, so an export is a consistent point-in-time view and
// an import is all-or-nothing.
type SnapshotManager struct {
	txm    *TxManager
	logger *zap.Logger
}

// NewSnapshotManager creates a SnapshotManager
func NewSnapshotManager(txm *TxManager, logger *zap.Logger) *SnapshotManager {
	return &SnapshotManager{txm: txm, logger: logger}
}

// Export reads every table inside one consistent view and returns the
// serialized snapshot.
func (s *SnapshotManager) Export(ctx context.Context) ([]byte, error) {
	snapshot := Snapshot{
		SchemaVersion: SchemaVersion,
		ExportedAt:    time.Now().UTC(),
	}
	err := s.txm.View(ctx, func(ctx context.Context, store *Store) error {
		db := store.DB()
		var migrations []models.SchemaMigrationModel
		if err := db.Order("applied_at ASC, id ASC").Find(&migrations).Error; err != nil {
			return err
		}
		snapshot.AppliedMigrations = make([]string, len(migrations))
		for i, row := range migrations {
			snapshot.AppliedMigrations[i] = row.ID
		}
		if err := db.Order("created_at ASC").Find(&snapshot.Companies).Error; err != nil {
			return err
		}
		if err := db.Order("created_at ASC").Find(&snapshot.Projects).Error; err != nil {
			return err
		}
		if err := db.Order("created_at ASC").Find(&snapshot.Categories).Error; err != nil {
			return err
		}
		if err := db.Order("date ASC, created_at ASC").Find(&snapshot.Transactions).Error; err != nil {
			return err
		}
		if err := db.Order("created_at ASC").Find(&snapshot.Allocations).Error; err != nil {
			return err
		}
		return db.Order("deleted_at ASC").Find(&snapshot.Trash).Error
	})
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return json.MarshalIndent(&snapshot, "", "  ")
}

// Import replaces the whole database with the snapshot's contents. The
// current rows are wiped, the snapshot rows inserted and its migration log
// restored, all inside one transaction; migrations the snapshot predates are
// then replayed so the data catches up with this build.
func (s *SnapshotManager) Import(ctx context.Context, data []byte) error {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return shared.NewValidationError("snapshot is not valid JSON: " + err.Error())
	}
	if snapshot.SchemaVersion <= 0 || snapshot.SchemaVersion > SchemaVersion {
		return shared.NewValidationError(fmt.Sprintf("unsupported snapshot schema version %d", snapshot.SchemaVersion))
	}

	err := s.txm.WithTransaction(ctx, func(ctx context.Context, store *Store) error {
		db := store.DB()
		wipe := []any{
			&models.PaymentAllocationModel{},
			&models.TransactionModel{},
			&models.TrashEntryModel{},
			&models.ProjectModel{},
			&models.CompanyModel{},
			&models.CategoryModel{},
			&models.SchemaMigrationModel{},
		}
		for _, model := range wipe {
			err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
			if err != nil {
				return err
			}
		}
		if err := insertAll(db, snapshot.Companies); err != nil {
			return err
		}
		if err := insertAll(db, snapshot.Projects); err != nil {
			return err
		}
		if err := insertAll(db, snapshot.Categories); err != nil {
			return err
		}
		if err := insertAll(db, snapshot.Transactions); err != nil {
			return err
		}
		if err := insertAll(db, snapshot.Allocations); err != nil {
			return err
		}
		if err := insertAll(db, snapshot.Trash); err != nil {
			return err
		}
		for i, id := range snapshot.AppliedMigrations {
			row := models.SchemaMigrationModel{
				ID: id,
				// preserve log order under a second-granularity clock
				AppliedAt: snapshot.ExportedAt.Add(time.Duration(i) * time.Millisecond),
			}
			if err := db.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}

	migrator := NewMigrator(s.txm.db, s.logger)
	if err := migrator.Run(ctx); err != nil {
		return fmt.Errorf("replay migrations after import: %w", err)
	}
	s.logger.Info("snapshot imported",
		zap.Int("schemaVersion", snapshot.SchemaVersion),
		zap.Int("transactions", len(snapshot.Transactions)))
	return nil
}

func insertAll[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.CreateInBatches(rows, 200).Error
}
