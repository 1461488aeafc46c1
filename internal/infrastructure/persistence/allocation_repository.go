package persistence

import (
	"context"

	"github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAllocationRepository implements ledger.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByPayment returns the allocation rows of one payment, oldest first
func (r *GormAllocationRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	var allocationModels []models.PaymentAllocationModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]ledger.PaymentAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// FindByTransaction returns every allocation row referencing the transaction
// as either the payment or the invoice side
func (r *GormAllocationRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	var allocationModels []models.PaymentAllocationModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ? OR invoice_id = ?", transactionID, transactionID).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]ledger.PaymentAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// FindDetailsByPayment joins a payment's allocations with the settled invoices
func (r *GormAllocationRepository) FindDetailsByPayment(ctx context.Context, paymentID uuid.UUID) ([]ledger.AllocationDetail, error) {
	var details []ledger.AllocationDetail
	err := r.db.WithContext(ctx).
		Table("payment_allocations").
		Select(`payment_allocations.id AS allocation_id,
			payment_allocations.payment_id,
			payment_allocations.invoice_id,
			payment_allocations.amount,
			payment_allocations.created_at,
			transactions.type AS invoice_type,
			transactions.date AS invoice_date,
			transactions.amount_in_base AS invoice_amount,
			transactions.description,
			transactions.document_no`).
		Joins("JOIN transactions ON transactions.id = payment_allocations.invoice_id").
		Where("payment_allocations.payment_id = ?", paymentID).
		Order("payment_allocations.created_at ASC").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

// SumByInvoice returns the total allocated against one invoice
func (r *GormAllocationRepository) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("SUM(amount)").
		Where("invoice_id = ?", invoiceID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// SumByInvoiceExcludingPayment returns the total allocated against one invoice
// by every payment except the given one. Used when a payment's set is being
// replaced and its own rows must not count against the invoice headroom.
func (r *GormAllocationRepository) SumByInvoiceExcludingPayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("SUM(amount)").
		Where("invoice_id = ? AND payment_id <> ?", invoiceID, paymentID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

type allocationSumRow struct {
	RefID uuid.UUID
	Total decimal.Decimal
}

// SumsByPayment returns allocated totals keyed by payment id
func (r *GormAllocationRepository) SumsByPayment(ctx context.Context, paymentIDs []uuid.UUID) (ledger.AllocatedSums, error) {
	sums := make(ledger.AllocatedSums, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return sums, nil
	}
	var rows []allocationSumRow
	err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("payment_id AS ref_id, SUM(amount) AS total").
		Where("payment_id IN ?", paymentIDs).
		Group("payment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		sums[row.RefID] = row.Total
	}
	return sums, nil
}

// SumsByInvoice returns allocated totals keyed by invoice id
func (r *GormAllocationRepository) SumsByInvoice(ctx context.Context, invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return sums, nil
	}
	var rows []allocationSumRow
	err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("invoice_id AS ref_id, SUM(amount) AS total").
		Where("invoice_id IN ?", invoiceIDs).
		Group("invoice_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		sums[row.RefID] = row.Total
	}
	return sums, nil
}

// ReplaceForPayment swaps a payment's allocation rows for a new complete set.
// Callers run this inside a transaction boundary so the delete and the
// inserts land together.
func (r *GormAllocationRepository) ReplaceForPayment(ctx context.Context, paymentID uuid.UUID, allocations []ledger.PaymentAllocation) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&models.PaymentAllocationModel{}, "payment_id = ?", paymentID).Error; err != nil {
		return err
	}
	if len(allocations) == 0 {
		return nil
	}
	allocationModels := make([]models.PaymentAllocationModel, len(allocations))
	for i := range allocations {
		allocationModels[i].FromDomain(&allocations[i])
	}
	return db.Create(&allocationModels).Error
}

// DeleteByTransaction removes every allocation row referencing the
// transaction on either side of the link.
func (r *GormAllocationRepository) DeleteByTransaction(ctx context.Context, transactionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.PaymentAllocationModel{}, "payment_id = ? OR invoice_id = ?", transactionID, transactionID).Error
}
