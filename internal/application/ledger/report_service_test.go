package ledger

import (
	"context"
	"testing"

	domain "github.com/buildledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_CompanyLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("receivable ignores allocation state", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		env.bookCariInvoiceOut(t, client.ID, 10000, day(1))
		env.bookCariPaymentIn(t, client.ID, 6000, day(5))

		summary, err := env.reports.CompanyLedger(ctx, client.ID)
		require.NoError(t, err)
		assert.True(t, summary.Receivable.Equal(decimal.NewFromInt(4000)))
		assert.True(t, summary.Balance.Equal(decimal.NewFromInt(4000)))
	})

	t.Run("serves the cached summary until a mutation invalidates it", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		env.bookCariInvoiceOut(t, client.ID, 10000, day(1))

		first, err := env.reports.CompanyLedger(ctx, client.ID)
		require.NoError(t, err)
		assert.True(t, first.Receivable.Equal(decimal.NewFromInt(10000)))

		env.bookCariPaymentIn(t, client.ID, 6000, day(5))

		second, err := env.reports.CompanyLedger(ctx, client.ID)
		require.NoError(t, err)
		assert.True(t, second.Receivable.Equal(decimal.NewFromInt(4000)))
	})
}

func TestReportService_ProjectLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("allocated payment settles the client receivable", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		project := env.createClientProject(t, "VILLA-7", "Villa Block 7", client.ID)

		invoice := env.bookProjectTx(t, project.ID, string(domain.TypeInvoiceOut), 10000, day(1))
		payment := env.bookProjectTx(t, project.ID, string(domain.TypePaymentIn), 6000, day(5))
		require.NoError(t, env.allocations.SetAllocations(ctx, SetAllocationsRequest{
			PaymentID: payment.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: invoice.ID, Amount: decimal.NewFromInt(6000)},
			},
		}))

		summary, err := env.reports.ProjectLedger(ctx, project.ID)
		require.NoError(t, err)
		assert.True(t, summary.ClientReceivable.Equal(decimal.NewFromInt(4000)))
		assert.True(t, summary.IndependentPaymentIn.IsZero())
		assert.True(t, summary.TotalIncome.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("unallocated payment counts as independent income", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		project := env.createClientProject(t, "VILLA-7", "Villa Block 7", client.ID)

		env.bookProjectTx(t, project.ID, string(domain.TypeInvoiceOut), 10000, day(1))
		env.bookProjectTx(t, project.ID, string(domain.TypePaymentIn), 6000, day(5))

		summary, err := env.reports.ProjectLedger(ctx, project.ID)
		require.NoError(t, err)
		assert.True(t, summary.IndependentPaymentIn.Equal(decimal.NewFromInt(6000)))
		assert.True(t, summary.TotalIncome.Equal(decimal.NewFromInt(16000)))
		assert.True(t, summary.ClientReceivable.Equal(decimal.NewFromInt(10000)))
	})
}

func TestReportService_DashboardTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	client := env.createCompany(t, "Meridian Holding", "customer")
	supplier := env.createCompany(t, "Anchor Concrete", "supplier")

	env.bookCariInvoiceOut(t, client.ID, 10000, day(1))
	env.bookCariPaymentIn(t, client.ID, 6000, day(2))
	env.bookTransaction(t, CreateTransactionRequest{
		Scope:     "cari",
		CompanyID: &supplier.ID,
		Type:      string(domain.TypeInvoiceIn),
		Date:      day(3),
		Amount:    decimal.NewFromInt(4000),
		Currency:  "TRY",
	})

	summary, err := env.reports.DashboardTotals(ctx)
	require.NoError(t, err)
	assert.True(t, summary.TotalIncome.Equal(decimal.NewFromInt(10000)))
	assert.True(t, summary.TotalExpense.Equal(decimal.NewFromInt(4000)))
	assert.True(t, summary.NetProfit.Equal(decimal.NewFromInt(6000)))
	assert.True(t, summary.CashCollected.Equal(decimal.NewFromInt(6000)))
	assert.True(t, summary.CashPaid.IsZero())
}

func TestReportService_TransactionTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	client := env.createCompany(t, "Meridian Holding", "customer")
	env.bookCariInvoiceOut(t, client.ID, 10000, day(1))
	env.bookCariPaymentIn(t, client.ID, 6000, day(2))

	totals, err := env.reports.TransactionTotals(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.True(t, totals.TotalIncome.Equal(decimal.NewFromInt(16000)))
	assert.True(t, totals.NetProfit.Equal(decimal.NewFromInt(10000)))
	assert.True(t, totals.NetCashFlow.Equal(decimal.NewFromInt(6000)))

	// filtered by type
	invoiceOut := domain.TypeInvoiceOut
	filtered, err := env.reports.TransactionTotals(ctx, domain.TransactionFilter{Type: &invoiceOut})
	require.NoError(t, err)
	assert.True(t, filtered.TotalIncome.Equal(decimal.NewFromInt(10000)))
	assert.True(t, filtered.NetCashFlow.IsZero())
}
