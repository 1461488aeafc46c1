package ledger

import (
	"strings"

	"github.com/buildledger/backend/internal/domain/shared"
)

// CategoryType groups categories by the transaction types they may label.
// payment_in and payment_out share the single payment group.
type CategoryType string

const (
	CategoryInvoiceOut CategoryType = "invoice_out"
	CategoryInvoiceIn  CategoryType = "invoice_in"
	CategoryPayment    CategoryType = "payment"
)

// IsValid checks if the category type is valid
func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryInvoiceOut, CategoryInvoiceIn, CategoryPayment:
		return true
	}
	return false
}

// Category labels transactions within one category group.
type Category struct {
	shared.BaseEntity
	Name      string
	Type      CategoryType
	Color     string
	IsDefault bool
}

// NewCategory creates a user-defined category. Default categories are seeded
// by migration and never created through this path.
func NewCategory(name string, categoryType CategoryType, color string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("category name cannot be empty")
	}
	if !categoryType.IsValid() {
		return nil, shared.NewValidationError("category type must be invoice_out, invoice_in or payment")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Type:       categoryType,
		Color:      color,
	}, nil
}

// CategoryPatch carries a partial field-by-field update.
type CategoryPatch struct {
	Name  *string
	Color *string
}

// Apply merges the patch into the category. Default categories are immutable.
func (c *Category) Apply(p CategoryPatch) error {
	if c.IsDefault {
		return shared.NewConstraintViolation("default categories cannot be modified")
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return shared.NewValidationError("category name cannot be empty")
		}
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	c.Touch()
	return nil
}

// defaultCategorySeed describes one migration-seeded category.
type defaultCategorySeed struct {
	Name  string
	Type  CategoryType
	Color string
}

// DefaultCategorySeeds returns the non-deletable categories every ledger
// starts with.
func DefaultCategorySeeds() []defaultCategorySeed {
	return []defaultCategorySeed{
		{Name: "Progress Billing", Type: CategoryInvoiceOut, Color: "#2e7d32"},
		{Name: "Material Purchase", Type: CategoryInvoiceIn, Color: "#c62828"},
		{Name: "Subcontractor Invoice", Type: CategoryInvoiceIn, Color: "#ef6c00"},
		{Name: "Bank Transfer", Type: CategoryPayment, Color: "#1565c0"},
		{Name: "Cash", Type: CategoryPayment, Color: "#6a1b9a"},
	}
}
