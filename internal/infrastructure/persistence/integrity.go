package persistence

import (
	"context"
	"fmt"

	"github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntegrityViolation is one finding from a scan: which row, which rule, and a
// human-readable description.
type IntegrityViolation struct {
	Entity string
	ID     uuid.UUID
	Rule   string
	Detail string
}

func (v IntegrityViolation) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", v.Entity, v.ID, v.Rule, v.Detail)
}

// IntegrityChecker scans the whole ledger for rows that violate the domain
// rules the schema alone cannot enforce. It reads through the transaction
// boundary so a scan sees one consistent state.
type IntegrityChecker struct {
	txm *TxManager
}

// NewIntegrityChecker creates an IntegrityChecker
func NewIntegrityChecker(txm *TxManager) *IntegrityChecker {
	return &IntegrityChecker{txm: txm}
}

// Check runs every scan and returns all findings. An empty slice means the
// database is consistent.
func (c *IntegrityChecker) Check(ctx context.Context) ([]IntegrityViolation, error) {
	var violations []IntegrityViolation
	err := c.txm.View(ctx, func(ctx context.Context, store *Store) error {
		db := store.DB()

		var companies []models.CompanyModel
		if err := db.Find(&companies).Error; err != nil {
			return err
		}
		companyIDs := make(map[uuid.UUID]struct{}, len(companies))
		for _, company := range companies {
			companyIDs[company.ID] = struct{}{}
		}

		var projects []models.ProjectModel
		if err := db.Find(&projects).Error; err != nil {
			return err
		}
		projectIDs := make(map[uuid.UUID]struct{}, len(projects))
		for _, project := range projects {
			projectIDs[project.ID] = struct{}{}
			if project.Ownership == ledger.OwnershipClient && project.ClientCompanyID == nil {
				violations = append(violations, IntegrityViolation{
					Entity: "project", ID: project.ID, Rule: "client_ref",
					Detail: "client-owned project has no client company",
				})
			}
			if project.ClientCompanyID != nil {
				if _, ok := companyIDs[*project.ClientCompanyID]; !ok {
					violations = append(violations, IntegrityViolation{
						Entity: "project", ID: project.ID, Rule: "orphan_ref",
						Detail: "client company does not exist",
					})
				}
			}
		}

		var categories []models.CategoryModel
		if err := db.Find(&categories).Error; err != nil {
			return err
		}
		categoryTypes := make(map[uuid.UUID]ledger.CategoryType, len(categories))
		for _, category := range categories {
			categoryTypes[category.ID] = category.Type
		}

		var transactions []models.TransactionModel
		if err := db.Find(&transactions).Error; err != nil {
			return err
		}
		txByID := make(map[uuid.UUID]models.TransactionModel, len(transactions))
		for _, tx := range transactions {
			txByID[tx.ID] = tx
			violations = append(violations, checkTransactionRow(tx, companyIDs, projectIDs, categoryTypes)...)
		}

		var allocations []models.PaymentAllocationModel
		if err := db.Find(&allocations).Error; err != nil {
			return err
		}
		violations = append(violations, checkAllocationRows(allocations, txByID)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return violations, nil
}

// CheckForeignKeys runs only the referential rules: dangling company, project,
// category, payment and invoice references. Amount and type rules are skipped,
// making this suitable as a fast startup health check.
func (c *IntegrityChecker) CheckForeignKeys(ctx context.Context) ([]IntegrityViolation, error) {
	all, err := c.Check(ctx)
	if err != nil {
		return nil, err
	}
	var violations []IntegrityViolation
	for _, v := range all {
		switch v.Rule {
		case "orphan_ref", "scope_ref", "client_ref":
			violations = append(violations, v)
		}
	}
	return violations, nil
}

func checkTransactionRow(tx models.TransactionModel, companyIDs, projectIDs map[uuid.UUID]struct{}, categoryTypes map[uuid.UUID]ledger.CategoryType) []IntegrityViolation {
	var violations []IntegrityViolation
	add := func(rule, detail string) {
		violations = append(violations, IntegrityViolation{Entity: "transaction", ID: tx.ID, Rule: rule, Detail: detail})
	}

	if !tx.Type.IsValid() {
		add("type", "unknown transaction type "+string(tx.Type))
		return violations
	}
	if !tx.Amount.IsPositive() {
		add("amount", "amount must be positive")
	}
	if !tx.AmountInBase.IsPositive() {
		add("amount", "base amount must be positive")
	}
	expected := tx.Amount.Mul(tx.ExchangeRate).Round(2)
	if !tx.AmountInBase.Equal(expected) {
		add("base_amount", fmt.Sprintf("base amount %s does not match amount x rate %s", tx.AmountInBase, expected))
	}

	switch tx.Scope {
	case ledger.ScopeProject:
		if tx.ProjectID == nil {
			add("scope_ref", "project-scoped row has no project")
		} else if _, ok := projectIDs[*tx.ProjectID]; !ok {
			add("orphan_ref", "project does not exist")
		}
	case ledger.ScopeCari:
		if tx.CompanyID == nil {
			add("scope_ref", "counterparty-scoped row has no company")
		} else if _, ok := companyIDs[*tx.CompanyID]; !ok {
			add("orphan_ref", "company does not exist")
		}
	case ledger.ScopeCompany:
		if tx.ProjectID != nil || tx.CompanyID != nil {
			add("scope_ref", "company-scoped row carries a project or company reference")
		}
	default:
		add("scope", "unknown scope "+string(tx.Scope))
	}

	if tx.CategoryID != nil {
		categoryType, ok := categoryTypes[*tx.CategoryID]
		if !ok {
			add("orphan_ref", "category does not exist")
		} else if categoryType != tx.Type.CategoryGroup() {
			add("category_group", "category type does not match transaction type")
		}
	}
	return violations
}

func checkAllocationRows(allocations []models.PaymentAllocationModel, txByID map[uuid.UUID]models.TransactionModel) []IntegrityViolation {
	var violations []IntegrityViolation
	add := func(id uuid.UUID, rule, detail string) {
		violations = append(violations, IntegrityViolation{Entity: "allocation", ID: id, Rule: rule, Detail: detail})
	}

	byPayment := make(map[uuid.UUID]decimal.Decimal)
	byInvoice := make(map[uuid.UUID]decimal.Decimal)
	for _, allocation := range allocations {
		if !allocation.Amount.IsPositive() {
			add(allocation.ID, "amount", "allocation amount must be positive")
		}
		payment, ok := txByID[allocation.PaymentID]
		if !ok {
			add(allocation.ID, "orphan_ref", "payment does not exist")
			continue
		}
		invoice, ok := txByID[allocation.InvoiceID]
		if !ok {
			add(allocation.ID, "orphan_ref", "invoice does not exist")
			continue
		}
		if !payment.Type.IsPayment() {
			add(allocation.ID, "link_type", "payment side is not a payment transaction")
			continue
		}
		if invoice.Type != payment.Type.CounterpartType() {
			add(allocation.ID, "link_type", "invoice type does not match the payment direction")
		}
		byPayment[allocation.PaymentID] = byPayment[allocation.PaymentID].Add(allocation.Amount)
		byInvoice[allocation.InvoiceID] = byInvoice[allocation.InvoiceID].Add(allocation.Amount)
	}

	for paymentID, sum := range byPayment {
		if sum.GreaterThan(txByID[paymentID].AmountInBase) {
			add(paymentID, "over_allocation", fmt.Sprintf("allocations %s exceed payment base amount %s", sum, txByID[paymentID].AmountInBase))
		}
	}
	for invoiceID, sum := range byInvoice {
		if sum.GreaterThan(txByID[invoiceID].AmountInBase) {
			add(invoiceID, "over_allocation", fmt.Sprintf("allocations %s exceed invoice base amount %s", sum, txByID[invoiceID].AmountInBase))
		}
	}
	return violations
}
