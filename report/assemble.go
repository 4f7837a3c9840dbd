/*
assemble.go - Final report assembly

PURPOSE:
  Combines the ordered row list with one global Summary. The global
  summary is the sum over the POST-FILTER rows actually emitted, never
  a re-derivation from unfiltered data, so
  globalSummary.TotalAmount == sum of row amounts holds exactly.
*/
package report

import (
	"github.com/shopspring/decimal"

	"github.com/flocio/agrisale/ledger"
)

// Report is an assembled aggregation report, ready for presentation.
// Amounts are raw signed decimals; formatting happens at the boundary.
type Report struct {
	Kind    ReportKind
	Rows    []AggregatedRow
	Summary Summary
}

// Assemble builds a Report whose global summary is the exact sum of
// the emitted rows.
func Assemble(kind ReportKind, rows []AggregatedRow) Report {
	total := zeroSummary()
	for _, r := range rows {
		total = total.Merge(r.Summary)
	}
	return Report{Kind: kind, Rows: rows, Summary: total}
}

// =============================================================================
// TRANSACTION REPORT - Per-ledger listing with its local totals
// =============================================================================

// TransactionReport is a single ledger's own screen: raw rows under the
// ledger's local (all-positive) convention, plus totals over the rows.
type TransactionReport struct {
	Rows    []TransactionRow
	Summary Summary
}

// TransactionRow pairs a canonical transaction with its joined labels.
type TransactionRow struct {
	Tx         ledger.Transaction
	EntityName string
	Unit       string
}

// Sort capabilities delegate to the underlying transaction, with the
// joined entity name as the label fallback for money-only ledgers.
func (r TransactionRow) RowDate() (ledger.Date, bool) { return r.Tx.RowDate() }

func (r TransactionRow) RowAmount() (decimal.Decimal, bool) { return r.Tx.RowAmount() }

func (r TransactionRow) RowQuantity() (decimal.Decimal, bool) { return r.Tx.RowQuantity() }

func (r TransactionRow) RowLabel() (string, bool) {
	if label, ok := r.Tx.RowLabel(); ok {
		return label, true
	}
	return r.EntityName, r.EntityName != ""
}

func (r TransactionRow) RowKind() (ledger.Kind, bool) { return r.Tx.RowKind() }

// AssembleTransactions totals a filtered transaction listing under the
// local ledger view (every row counts positive).
func AssembleTransactions(rows []TransactionRow) TransactionReport {
	total := zeroSummary()
	for _, r := range rows {
		total.RecordCount++
		total.TotalQuantity = total.TotalQuantity.Add(r.Tx.Quantity)
		total.TotalAmount = total.TotalAmount.Add(r.Tx.Amount)
		total.TotalDiscount = total.TotalDiscount.Add(r.Tx.Discount)
	}
	return TransactionReport{Rows: rows, Summary: total}
}

// =============================================================================
// RECONCILIATION REPORT
// =============================================================================

// ReconciliationTotals sums each reconciliation column over the rows.
type ReconciliationTotals struct {
	TheoreticalPayable decimal.Decimal
	ActualPayment      decimal.Decimal
	TotalDiscount      decimal.Decimal
	Difference         decimal.Decimal
}

type ReconciliationReport struct {
	Rows   []ReconciliationRow
	Totals ReconciliationTotals
}

// AssembleReconciliation builds a reconciliation report; totals are the
// exact column sums over emitted rows.
func AssembleReconciliation(rows []ReconciliationRow) ReconciliationReport {
	t := ReconciliationTotals{
		TheoreticalPayable: decimal.Zero,
		ActualPayment:      decimal.Zero,
		TotalDiscount:      decimal.Zero,
		Difference:         decimal.Zero,
	}
	for _, r := range rows {
		t.TheoreticalPayable = t.TheoreticalPayable.Add(r.TheoreticalPayable)
		t.ActualPayment = t.ActualPayment.Add(r.ActualPayment)
		t.TotalDiscount = t.TotalDiscount.Add(r.TotalDiscount)
		t.Difference = t.Difference.Add(r.Difference)
	}
	return ReconciliationReport{Rows: rows, Totals: t}
}
