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

func TestAllocationService_AutoAllocate(t *testing.T) {
	ctx := context.Background()

	t.Run("two payments settle one invoice oldest-first", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		invoice := env.bookCariInvoiceOut(t, client.ID, 10000, day(1))

		first := env.bookCariPaymentIn(t, client.ID, 6000, day(5))
		plan, err := env.allocations.AutoAllocate(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(6000)))
		assert.True(t, plan.FullyAllocated)

		open, err := env.allocations.GetOpenInvoices(ctx, client.ID, OpenInvoicesForCompany, domain.TypeInvoiceOut)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.True(t, open[0].Remaining.Equal(decimal.NewFromInt(4000)))

		second := env.bookCariPaymentIn(t, client.ID, 5000, day(9))
		plan, err = env.allocations.AutoAllocate(ctx, second.ID)
		require.NoError(t, err)
		assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(4000)))
		assert.False(t, plan.FullyAllocated)
		assert.True(t, plan.RemainingPayment.Equal(decimal.NewFromInt(1000)))
		assert.Contains(t, plan.InvoicesFullySettled, invoice.ID)

		open, err = env.allocations.GetOpenInvoices(ctx, client.ID, OpenInvoicesForCompany, domain.TypeInvoiceOut)
		require.NoError(t, err)
		assert.Empty(t, open)
	})

	t.Run("rerunning auto-allocation on a settled payment adds nothing", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		env.bookCariInvoiceOut(t, client.ID, 5000, day(1))
		payment := env.bookCariPaymentIn(t, client.ID, 5000, day(2))

		_, err := env.allocations.AutoAllocate(ctx, payment.ID)
		require.NoError(t, err)

		plan, err := env.allocations.AutoAllocate(ctx, payment.ID)
		require.NoError(t, err)
		assert.Empty(t, plan.Candidates)
		assert.True(t, plan.FullyAllocated)

		details, err := env.allocations.GetAllocations(ctx, payment.ID)
		require.NoError(t, err)
		assert.Len(t, details, 1)
	})

	t.Run("rejects auto-allocation for invoice rows", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		invoice := env.bookCariInvoiceOut(t, client.ID, 5000, day(1))

		_, err := env.allocations.AutoAllocate(ctx, invoice.ID)
		assert.True(t, shared.IsConstraintViolation(err))
	})
}

func TestAllocationService_SetAllocations(t *testing.T) {
	ctx := context.Background()

	t.Run("over-allocating one invoice in a batch leaves prior rows intact", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		invoice := env.bookCariInvoiceOut(t, client.ID, 10000, day(1))

		first := env.bookCariPaymentIn(t, client.ID, 7000, day(3))
		require.NoError(t, env.allocations.SetAllocations(ctx, SetAllocationsRequest{
			PaymentID: first.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: invoice.ID, Amount: decimal.NewFromInt(7000)},
			},
		}))

		// remaining balance is 3000; a 5000 batch from another payment must fail
		second := env.bookCariPaymentIn(t, client.ID, 5000, day(4))
		err := env.allocations.SetAllocations(ctx, SetAllocationsRequest{
			PaymentID: second.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: invoice.ID, Amount: decimal.NewFromInt(5000)},
			},
		})
		assert.True(t, shared.IsConstraintViolation(err))

		details, err := env.allocations.GetAllocations(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.True(t, details[0].Amount.Equal(decimal.NewFromInt(7000)))

		details, err = env.allocations.GetAllocations(ctx, second.ID)
		require.NoError(t, err)
		assert.Empty(t, details)
	})

	t.Run("resubmitting the payment's own set unchanged is legal", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		invoice := env.bookCariInvoiceOut(t, client.ID, 4000, day(1))
		payment := env.bookCariPaymentIn(t, client.ID, 4000, day(2))

		req := SetAllocationsRequest{
			PaymentID: payment.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: invoice.ID, Amount: decimal.NewFromInt(4000)},
			},
		}
		require.NoError(t, env.allocations.SetAllocations(ctx, req))
		require.NoError(t, env.allocations.SetAllocations(ctx, req))

		details, err := env.allocations.GetAllocations(ctx, payment.ID)
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.True(t, details[0].Amount.Equal(decimal.NewFromInt(4000)))
	})

	t.Run("empty set clears the payment's allocations", func(t *testing.T) {
		env := newTestEnv(t)
		client := env.createCompany(t, "Meridian Holding", "customer")
		invoice := env.bookCariInvoiceOut(t, client.ID, 4000, day(1))
		payment := env.bookCariPaymentIn(t, client.ID, 4000, day(2))

		require.NoError(t, env.allocations.SetAllocations(ctx, SetAllocationsRequest{
			PaymentID: payment.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: invoice.ID, Amount: decimal.NewFromInt(4000)},
			},
		}))
		require.NoError(t, env.allocations.SetAllocations(ctx, SetAllocationsRequest{PaymentID: payment.ID}))

		details, err := env.allocations.GetAllocations(ctx, payment.ID)
		require.NoError(t, err)
		assert.Empty(t, details)

		open, err := env.allocations.GetOpenInvoices(ctx, client.ID, OpenInvoicesForCompany, domain.TypeInvoiceOut)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.True(t, open[0].Remaining.Equal(decimal.NewFromInt(4000)))
	})

	t.Run("rejects allocating across invoice directions", func(t *testing.T) {
		env := newTestEnv(t)
		supplier := env.createCompany(t, "Anchor Concrete", "supplier")
		supplierInvoice := env.bookTransaction(t, CreateTransactionRequest{
			Scope:     "cari",
			CompanyID: &supplier.ID,
			Type:      string(domain.TypeInvoiceIn),
			Date:      day(1),
			Amount:    decimal.NewFromInt(3000),
			Currency:  "TRY",
		})
		payment := env.bookCariPaymentIn(t, supplier.ID, 3000, day(2))

		err := env.allocations.SetAllocations(ctx, SetAllocationsRequest{
			PaymentID: payment.ID,
			Allocations: []AllocationRequest{
				{InvoiceID: supplierInvoice.ID, Amount: decimal.NewFromInt(3000)},
			},
		})
		assert.True(t, shared.IsConstraintViolation(err))
	})
}
