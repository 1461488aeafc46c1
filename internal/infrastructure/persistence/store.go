package persistence

import (
	"github.com/buildledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// Store bundles every ledger repository bound to one database handle. A Store
// built inside a transaction boundary sees that transaction's view.
type Store struct {
	Companies    ledger.CompanyRepository
	Projects     ledger.ProjectRepository
	Categories   ledger.CategoryRepository
	Transactions ledger.TransactionRepository
	Allocations  ledger.AllocationRepository
	Trash        ledger.TrashRepository

	db *gorm.DB
}

// NewStore builds a Store over the given handle
func NewStore(db *gorm.DB) *Store {
	return &Store{
		Companies:    NewGormCompanyRepository(db),
		Projects:     NewGormProjectRepository(db),
		Categories:   NewGormCategoryRepository(db),
		Transactions: NewGormTransactionRepository(db),
		Allocations:  NewGormAllocationRepository(db),
		Trash:        NewGormTrashRepository(db),
		db:           db,
	}
}

// DB exposes the underlying handle for infrastructure code that needs raw
// access, like the snapshot exporter and the integrity checker.
func (s *Store) DB() *gorm.DB {
	return s.db
}
