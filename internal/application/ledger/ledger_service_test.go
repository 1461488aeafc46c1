package ledger

import (
	"context"
	"testing"

	domain "github.com/buildledger/backend/internal/domain/ledger"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_Companies(t *testing.T) {
	ctx := context.Background()

	t.Run("create validates the request", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.ledger.CreateCompany(ctx, CreateCompanyRequest{Kind: "llc", Role: "customer", Name: "X"})
		assert.True(t, shared.IsValidation(err))

		_, err = env.ledger.CreateCompany(ctx, CreateCompanyRequest{Kind: "organization", Role: "customer"})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("partial update touches only supplied fields", func(t *testing.T) {
		env := newTestEnv(t)
		created := env.createCompany(t, "Meridian Holding", "customer")

		phone := "+90 212 555 0000"
		updated, err := env.ledger.UpdateCompany(ctx, created.ID, UpdateCompanyRequest{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, "Meridian Holding", updated.Name)
		assert.Equal(t, phone, updated.Phone)
	})

	t.Run("marks the store dirty on mutation", func(t *testing.T) {
		env := newTestEnv(t)
		require.False(t, env.txm.IsDirty())
		env.createCompany(t, "Meridian Holding", "customer")
		assert.True(t, env.txm.IsDirty())
	})
}

func TestLedgerService_Projects(t *testing.T) {
	ctx := context.Background()

	t.Run("client project requires an existing active client", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")

		inactive := false
		_, err := env.ledger.UpdateCompany(ctx, client.ID, UpdateCompanyRequest{Active: &inactive})
		require.NoError(t, err)

		_, err = env.ledger.CreateProject(ctx, CreateProjectRequest{
			Code:            "VILLA-7",
			Name:            "Villa Block 7",
			Ownership:       "client",
			ClientCompanyID: &client.ID,
		})
		assert.True(t, shared.IsConstraintViolation(err))
	})

	t.Run("client ownership without a client reference is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.ledger.CreateProject(ctx, CreateProjectRequest{
			Code:      "VILLA-7",
			Name:      "Villa Block 7",
			Ownership: "client",
		})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("project codes are unique", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		env.createClientProject(t, "VILLA-7", "Villa Block 7", client.ID)

		_, err := env.ledger.CreateProject(ctx, CreateProjectRequest{
			Code:            "VILLA-7",
			Name:            "Another",
			Ownership:       "client",
			ClientCompanyID: &client.ID,
		})
		assert.True(t, shared.IsConstraintViolation(err))
	})
}

func TestLedgerService_Categories(t *testing.T) {
	ctx := context.Background()

	t.Run("default categories reject update and delete", func(t *testing.T) {
		env := newTestEnv(t)
		categories, err := env.ledger.ListCategories(ctx, domain.CategoryFilter{})
		require.NoError(t, err)
		require.NotEmpty(t, categories)
		seeded := categories[0]
		require.True(t, seeded.IsDefault)

		name := "Renamed"
		_, err = env.ledger.UpdateCategory(ctx, seeded.ID, UpdateCategoryRequest{Name: &name})
		assert.True(t, shared.IsConstraintViolation(err))

		err = env.ledger.DeleteCategory(ctx, seeded.ID)
		assert.True(t, shared.IsConstraintViolation(err))
	})

	t.Run("deleting a custom category detaches its transactions", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		category, err := env.ledger.CreateCategory(ctx, CreateCategoryRequest{
			Name: "Retention", Type: "invoice_out", Color: "#123456",
		})
		require.NoError(t, err)

		tx := env.bookTransaction(t, CreateTransactionRequest{
			Scope:      "cari",
			CompanyID:  &client.ID,
			Type:       string(domain.TypeInvoiceOut),
			CategoryID: &category.ID,
			Date:       day(1),
			Amount:     decimal.NewFromInt(1000),
			Currency:   "TRY",
		})

		require.NoError(t, env.ledger.DeleteCategory(ctx, category.ID))

		reloaded, err := env.ledger.GetTransaction(ctx, tx.ID)
		require.NoError(t, err)
		assert.Nil(t, reloaded.CategoryID)
	})
}

func TestLedgerService_Transactions(t *testing.T) {
	ctx := context.Background()

	t.Run("category group must match the transaction type", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		paymentCategory, err := env.ledger.CreateCategory(ctx, CreateCategoryRequest{
			Name: "Wire", Type: "payment",
		})
		require.NoError(t, err)

		_, err = env.ledger.CreateTransaction(ctx, CreateTransactionRequest{
			Scope:      "cari",
			CompanyID:  &client.ID,
			Type:       string(domain.TypeInvoiceOut),
			CategoryID: &paymentCategory.ID,
			Date:       day(1),
			Amount:     decimal.NewFromInt(1000),
			Currency:   "TRY",
		})
		assert.True(t, shared.IsConstraintViolation(err))
	})

	t.Run("rejects bookings against inactive companies", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		inactive := false
		_, err := env.ledger.UpdateCompany(ctx, client.ID, UpdateCompanyRequest{Active: &inactive})
		require.NoError(t, err)

		_, err = env.ledger.CreateTransaction(ctx, CreateTransactionRequest{
			Scope:     "cari",
			CompanyID: &client.ID,
			Type:      string(domain.TypeInvoiceOut),
			Date:      day(1),
			Amount:    decimal.NewFromInt(1000),
			Currency:  "TRY",
		})
		assert.True(t, shared.IsConstraintViolation(err))
	})

	t.Run("rejects bookings against terminal projects", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		project := env.createClientProject(t, "VILLA-7", "Villa Block 7", client.ID)

		status := "completed"
		_, err := env.ledger.UpdateProject(ctx, project.ID, UpdateProjectRequest{Status: &status})
		require.NoError(t, err)

		_, err = env.ledger.CreateTransaction(ctx, CreateTransactionRequest{
			Scope:     "project",
			ProjectID: &project.ID,
			Type:      string(domain.TypeInvoiceOut),
			Date:      day(1),
			Amount:    decimal.NewFromInt(1000),
			Currency:  "TRY",
		})
		assert.True(t, shared.IsConstraintViolation(err))
	})

	t.Run("foreign bookings lock the rate and store the base amount", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		rate := decimal.NewFromFloat(32.5)
		tx := env.bookTransaction(t, CreateTransactionRequest{
			Scope:        "cari",
			CompanyID:    &client.ID,
			Type:         string(domain.TypeInvoiceOut),
			Date:         day(1),
			Amount:       decimal.NewFromInt(1000),
			Currency:     "USD",
			ExchangeRate: &rate,
		})
		assert.True(t, tx.AmountInBase.Equal(decimal.NewFromInt(32500)))
	})

	t.Run("amount cannot drop below the allocated total", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		invoice := env.bookCariInvoiceOut(t, client.ID, 10000, day(1))
		payment := env.bookCariPaymentIn(t, client.ID, 6000, day(2))
		require.NoError(t, env.allocations.SetAllocations(ctx, SetAllocationsRequest{
			PaymentID: payment.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: invoice.ID, Amount: decimal.NewFromInt(6000)},
			},
		}))

		smaller := decimal.NewFromInt(5000)
		_, err := env.ledger.UpdateTransaction(ctx, invoice.ID, UpdateTransactionRequest{Amount: &smaller})
		assert.True(t, shared.IsConstraintViolation(err))

		_, err = env.ledger.UpdateTransaction(ctx, payment.ID, UpdateTransactionRequest{Amount: &smaller})
		assert.True(t, shared.IsConstraintViolation(err))
	})
}

func TestLedgerService_Cascades(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a transaction removes its allocations into one entry", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		invoice := env.bookCariInvoiceOut(t, client.ID, 10000, day(1))
		payment := env.bookCariPaymentIn(t, client.ID, 6000, day(2))
		require.NoError(t, env.allocations.SetAllocations(ctx, SetAllocationsRequest{
			PaymentID: payment.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: invoice.ID, Amount: decimal.NewFromInt(6000)},
			},
		}))

		require.NoError(t, env.ledger.DeleteTransaction(ctx, invoice.ID))

		_, err := env.ledger.GetTransaction(ctx, invoice.ID)
		assert.True(t, shared.IsNotFound(err))

		// the payment survives but its allocation is gone
		details, err := env.allocations.GetAllocations(ctx, payment.ID)
		require.NoError(t, err)
		assert.Empty(t, details)

		trash, err := env.ledger.ListTrash(ctx)
		require.NoError(t, err)
		require.Len(t, trash, 1)
		assert.Equal(t, "transaction", trash[0].EntityType)
	})

	t.Run("deleting a company cascades through projects and transactions", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		project := env.createClientProject(t, "VILLA-7", "Villa Block 7", client.ID)
		env.bookProjectTx(t, project.ID, string(domain.TypeInvoiceOut), 10000, day(1))
		env.bookCariInvoiceOut(t, client.ID, 2500, day(2))

		require.NoError(t, env.ledger.DeleteCompany(ctx, client.ID))

		_, err := env.ledger.GetCompany(ctx, client.ID)
		assert.True(t, shared.IsNotFound(err))
		_, err = env.ledger.GetProject(ctx, project.ID)
		assert.True(t, shared.IsNotFound(err))
		txs, err := env.ledger.ListTransactions(ctx, domain.TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, txs)

		trash, err := env.ledger.ListTrash(ctx)
		require.NoError(t, err)
		require.Len(t, trash, 1)
		assert.Equal(t, "company", trash[0].EntityType)
		assert.Equal(t, "Meridian Holding", trash[0].Label)
	})

	t.Run("restore brings the whole graph back", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		project := env.createClientProject(t, "VILLA-7", "Villa Block 7", client.ID)
		invoice := env.bookProjectTx(t, project.ID, string(domain.TypeInvoiceOut), 10000, day(1))
		payment := env.bookProjectTx(t, project.ID, string(domain.TypePaymentIn), 6000, day(2))
		require.NoError(t, env.allocations.SetAllocations(ctx, SetAllocationsRequest{
			PaymentID: payment.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: invoice.ID, Amount: decimal.NewFromInt(6000)},
			},
		}))

		require.NoError(t, env.ledger.DeleteCompany(ctx, client.ID))
		trash, err := env.ledger.ListTrash(ctx)
		require.NoError(t, err)
		require.Len(t, trash, 1)

		require.NoError(t, env.ledger.RestoreTrash(ctx, trash[0].ID))

		restored, err := env.ledger.GetCompany(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, "Meridian Holding", restored.Name)
		_, err = env.ledger.GetProject(ctx, project.ID)
		require.NoError(t, err)
		details, err := env.allocations.GetAllocations(ctx, payment.ID)
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.True(t, details[0].Amount.Equal(decimal.NewFromInt(6000)))

		trash, err = env.ledger.ListTrash(ctx)
		require.NoError(t, err)
		assert.Empty(t, trash)
	})

	t.Run("purge drops entries permanently", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		tx := env.bookCariInvoiceOut(t, client.ID, 1000, day(1))
		require.NoError(t, env.ledger.DeleteTransaction(ctx, tx.ID))

		trash, err := env.ledger.ListTrash(ctx)
		require.NoError(t, err)
		require.Len(t, trash, 1)

		require.NoError(t, env.ledger.PurgeAllTrash(ctx))
		trash, err = env.ledger.ListTrash(ctx)
		require.NoError(t, err)
		assert.Empty(t, trash)
	})
}
