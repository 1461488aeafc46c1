package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocatedSums maps a payment transaction id to the total amount allocated
// from that payment, as derived by the allocation engine.
type AllocatedSums map[uuid.UUID]decimal.Decimal

// ledgerTotals is the shared scan-and-accumulate primitive all four rollups
// are built on. One O(n) pass per calculation.
type ledgerTotals struct {
	invoiceOut   decimal.Decimal
	paymentIn    decimal.Decimal
	invoiceIn    decimal.Decimal
	paymentOut   decimal.Decimal
	allocatedIn  decimal.Decimal
	allocatedOut decimal.Decimal
}

func scanTotals(txs []Transaction, allocated AllocatedSums) ledgerTotals {
	var t ledgerTotals
	for i := range txs {
		tx := &txs[i]
		switch tx.Type {
		case TypeInvoiceOut:
			t.invoiceOut = t.invoiceOut.Add(tx.AmountInBase)
		case TypePaymentIn:
			t.paymentIn = t.paymentIn.Add(tx.AmountInBase)
			t.allocatedIn = t.allocatedIn.Add(allocated[tx.ID])
		case TypeInvoiceIn:
			t.invoiceIn = t.invoiceIn.Add(tx.AmountInBase)
		case TypePaymentOut:
			t.paymentOut = t.paymentOut.Add(tx.AmountInBase)
			t.allocatedOut = t.allocatedOut.Add(allocated[tx.ID])
		}
	}
	return t
}

// CompanyLedgerSummary is the counterparty running-account view. Any payment
// reduces the account immediately, allocated or not.
type CompanyLedgerSummary struct {
	TotalInvoicedOut decimal.Decimal
	TotalCollected   decimal.Decimal
	TotalInvoicedIn  decimal.Decimal
	TotalPaid        decimal.Decimal
	Receivable       decimal.Decimal
	Payable          decimal.Decimal
	Balance          decimal.Decimal
}

// CalculateCompanyLedger computes the cari running account over the given
// transactions. Receivable and payable use the full payment totals regardless
// of allocation state.
func CalculateCompanyLedger(txs []Transaction) CompanyLedgerSummary {
	t := scanTotals(txs, nil)
	receivable := t.invoiceOut.Sub(t.paymentIn)
	payable := t.invoiceIn.Sub(t.paymentOut)
	return CompanyLedgerSummary{
		TotalInvoicedOut: t.invoiceOut,
		TotalCollected:   t.paymentIn,
		TotalInvoicedIn:  t.invoiceIn,
		TotalPaid:        t.paymentOut,
		Receivable:       receivable,
		Payable:          payable,
		Balance:          receivable.Sub(payable),
	}
}

// ProjectLedgerSummary is the per-project profitability view. Unlike the
// running account, only the allocated portion of payments settles invoices
// here: an unallocated incoming payment counts as independent income, while
// an unallocated outgoing payment leaves the project's debt untouched.
type ProjectLedgerSummary struct {
	TotalInvoicedOut     decimal.Decimal
	TotalInvoicedIn      decimal.Decimal
	IndependentPaymentIn decimal.Decimal
	TotalIncome          decimal.Decimal
	TotalExpense         decimal.Decimal
	Profit               decimal.Decimal
	ClientReceivable     decimal.Decimal
	ProjectDebt          decimal.Decimal
	BudgetUsedPercent    decimal.Decimal
	HasBudget            bool
}

// CalculateProjectLedger computes the project view from the project's
// transactions and the per-payment allocation sums.
func CalculateProjectLedger(txs []Transaction, allocated AllocatedSums, ownership ProjectOwnership, estimatedBudget decimal.Decimal) ProjectLedgerSummary {
	t := scanTotals(txs, allocated)

	independentIn := t.paymentIn.Sub(t.allocatedIn)
	independentOut := t.paymentOut.Sub(t.allocatedOut)

	totalIncome := t.invoiceOut.Add(independentIn)
	totalExpense := t.invoiceIn.Add(independentOut)

	s := ProjectLedgerSummary{
		TotalInvoicedOut:     t.invoiceOut,
		TotalInvoicedIn:      t.invoiceIn,
		IndependentPaymentIn: independentIn,
		TotalIncome:          totalIncome,
		TotalExpense:         totalExpense,
		Profit:               totalIncome.Sub(totalExpense),
		ProjectDebt:          maxZero(t.invoiceIn.Sub(t.allocatedOut)),
	}
	if ownership == OwnershipClient {
		s.ClientReceivable = maxZero(t.invoiceOut.Sub(t.allocatedIn))
	} else {
		s.ClientReceivable = decimal.Zero
	}
	if estimatedBudget.IsPositive() {
		s.HasBudget = true
		s.BudgetUsedPercent = totalExpense.Div(estimatedBudget).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return s
}

// DashboardSummary is the firm-wide view: income and expense come from
// invoices only; cash movements are reported separately.
type DashboardSummary struct {
	TotalIncome   decimal.Decimal
	TotalExpense  decimal.Decimal
	NetProfit     decimal.Decimal
	CashCollected decimal.Decimal
	CashPaid      decimal.Decimal
}

// CalculateDashboardTotals computes the firm-wide rollup.
func CalculateDashboardTotals(txs []Transaction) DashboardSummary {
	t := scanTotals(txs, nil)
	return DashboardSummary{
		TotalIncome:   t.invoiceOut,
		TotalExpense:  t.invoiceIn,
		NetProfit:     t.invoiceOut.Sub(t.invoiceIn),
		CashCollected: t.paymentIn,
		CashPaid:      t.paymentOut,
	}
}

// TransactionTotals is the list/report rollup over an arbitrary filtered
// transaction set.
type TransactionTotals struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetProfit    decimal.Decimal
	NetCashFlow  decimal.Decimal
	NetBalance   decimal.Decimal
}

// CalculateTransactionTotals computes list totals: income and expense combine
// invoices and payments per direction, net profit is invoice-only, net cash
// flow is payment-only.
func CalculateTransactionTotals(txs []Transaction) TransactionTotals {
	t := scanTotals(txs, nil)
	income := t.invoiceOut.Add(t.paymentIn)
	expense := t.invoiceIn.Add(t.paymentOut)
	return TransactionTotals{
		TotalIncome:  income,
		TotalExpense: expense,
		NetProfit:    t.invoiceOut.Sub(t.invoiceIn),
		NetCashFlow:  t.paymentIn.Sub(t.paymentOut),
		NetBalance:   income.Sub(expense),
	}
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
