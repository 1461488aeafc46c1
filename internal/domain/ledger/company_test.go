package ledger

import (
	"testing"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	t.Run("creates an active company", func(t *testing.T) {
		c, err := NewCompany(CompanyKindOrganization, CompanyRoleSupplier, "  Yilmaz Construction  ")
		require.NoError(t, err)
		assert.Equal(t, "Yilmaz Construction", c.Name)
		assert.True(t, c.Active)
	})

	t.Run("rejects invalid enums and empty names", func(t *testing.T) {
		_, err := NewCompany(CompanyKind("bank"), CompanyRoleCustomer, "X")
		assert.True(t, shared.IsValidation(err))

		_, err = NewCompany(CompanyKindPerson, CompanyRole("lawyer"), "X")
		assert.True(t, shared.IsValidation(err))

		_, err = NewCompany(CompanyKindPerson, CompanyRoleCustomer, "   ")
		assert.True(t, shared.IsValidation(err))
	})
}

func TestCompanyApply(t *testing.T) {
	t.Run("patches only the provided fields", func(t *testing.T) {
		c, err := NewCompany(CompanyKindPerson, CompanyRoleCustomer, "Ali Kaya")
		require.NoError(t, err)

		phone := "+90 555 000 00 00"
		inactive := false
		require.NoError(t, c.Apply(CompanyPatch{Phone: &phone, Active: &inactive}))
		assert.Equal(t, phone, c.Phone)
		assert.False(t, c.Active)
		assert.Equal(t, "Ali Kaya", c.Name)
	})

	t.Run("rejects clearing the name", func(t *testing.T) {
		c, err := NewCompany(CompanyKindPerson, CompanyRoleCustomer, "Ali Kaya")
		require.NoError(t, err)
		empty := ""
		assert.True(t, shared.IsValidation(c.Apply(CompanyPatch{Name: &empty})))
	})
}

func TestNewProject(t *testing.T) {
	t.Run("client projects require a client company", func(t *testing.T) {
		_, err := NewProject("PRJ-1", "Marina Towers", OwnershipClient, nil)
		assert.True(t, shared.IsValidation(err))

		clientID := uuid.New()
		p, err := NewProject("PRJ-1", "Marina Towers", OwnershipClient, &clientID)
		require.NoError(t, err)
		assert.Equal(t, clientID, *p.ClientCompanyID)
		assert.Equal(t, ProjectStatusPlanned, p.Status)
	})

	t.Run("own projects forbid a client company", func(t *testing.T) {
		clientID := uuid.New()
		_, err := NewProject("PRJ-2", "Head Office", OwnershipOwn, &clientID)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestProjectApply(t *testing.T) {
	newClientProject := func(t *testing.T) *Project {
		t.Helper()
		clientID := uuid.New()
		p, err := NewProject("PRJ-9", "Site B", OwnershipClient, &clientID)
		require.NoError(t, err)
		return p
	}

	t.Run("switching to own ownership must clear the client ref", func(t *testing.T) {
		p := newClientProject(t)
		own := OwnershipOwn
		err := p.Apply(ProjectPatch{Ownership: &own})
		assert.True(t, shared.IsValidation(err))

		require.NoError(t, p.Apply(ProjectPatch{Ownership: &own, ClearClientRef: true}))
		assert.Nil(t, p.ClientCompanyID)
	})

	t.Run("rejects a negative budget", func(t *testing.T) {
		p := newClientProject(t)
		bad := decimal.NewFromInt(-1)
		assert.True(t, shared.IsValidation(p.Apply(ProjectPatch{EstimatedBudget: &bad})))
	})

	t.Run("terminal statuses stop accepting transactions", func(t *testing.T) {
		p := newClientProject(t)
		assert.True(t, p.AcceptsTransactions())

		done := ProjectStatusCompleted
		require.NoError(t, p.Apply(ProjectPatch{Status: &done}))
		assert.False(t, p.AcceptsTransactions())
	})
}

func TestCategory(t *testing.T) {
	t.Run("creates a user category", func(t *testing.T) {
		c, err := NewCategory("Fuel", CategoryInvoiceIn, "#444444")
		require.NoError(t, err)
		assert.False(t, c.IsDefault)
	})

	t.Run("default categories cannot be patched", func(t *testing.T) {
		c, err := NewCategory("Fuel", CategoryInvoiceIn, "#444444")
		require.NoError(t, err)
		c.IsDefault = true
		name := "Diesel"
		assert.True(t, shared.IsConstraintViolation(c.Apply(CategoryPatch{Name: &name})))
	})

	t.Run("seed list covers every category group", func(t *testing.T) {
		groups := map[CategoryType]bool{}
		for _, seed := range DefaultCategorySeeds() {
			groups[seed.Type] = true
		}
		assert.True(t, groups[CategoryInvoiceOut])
		assert.True(t, groups[CategoryInvoiceIn])
		assert.True(t, groups[CategoryPayment])
	})
}
