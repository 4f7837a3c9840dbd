/*
reconcile.go - Payable vs payment reconciliation

PURPOSE:
  Per (date x entity) group, compares what was theoretically owed (net
  sales or purchases minus returns) with what was actually settled
  (payment plus discount). The discount counts as settled, not as still
  owed.

SIGN CONVENTION (fixed, confirmed with the system owner):
  difference = theoreticalPayable - (actualPayment + totalDiscount)

  POSITIVE difference = amount still owed (shortfall).
  NEGATIVE difference = overpayment / prepayment.

  This is theoretical-minus-actual, NOT the naive actual-minus-
  theoretical. Inverting it would silently corrupt financial reports.

ONE-SIDED KEYS:
  A sale with no matching income that day still appears, with the
  payment side defaulting to zero (and vice versa). Reconciliation is a
  union over keys, never an inner join.
*/
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/flocio/agrisale/ledger"
)

// ReconciliationRow is the reconciliation result for one group key.
type ReconciliationRow struct {
	Key GroupKey

	// TheoreticalPayable is the net value owed for the key (e.g. sales
	// minus customer returns, or purchases minus supplier returns).
	TheoreticalPayable decimal.Decimal

	// ActualPayment is what was actually collected or paid.
	ActualPayment decimal.Decimal

	// TotalDiscount was waived at settlement; it counts as settled.
	TotalDiscount decimal.Decimal

	// Difference = TheoreticalPayable - (ActualPayment + TotalDiscount).
	// Positive = still owed. Negative = overpaid/prepaid.
	Difference decimal.Decimal

	// EntityName is joined from reference data by the service.
	EntityName string
}

// ActualPayable is what counts as settled: payment plus discount.
func (r ReconciliationRow) ActualPayable() decimal.Decimal {
	return r.ActualPayment.Add(r.TotalDiscount)
}

// Sort capabilities: reconciliation rows sort by date, difference
// amount, or entity label.
func (r ReconciliationRow) RowDate() (ledger.Date, bool) { return r.Key.Date, !r.Key.Date.IsZero() }

func (r ReconciliationRow) RowAmount() (decimal.Decimal, bool) { return r.Difference, true }

func (r ReconciliationRow) RowQuantity() (decimal.Decimal, bool) { return decimal.Zero, false }

func (r ReconciliationRow) RowLabel() (string, bool) { return r.EntityName, r.EntityName != "" }

func (r ReconciliationRow) RowKind() (ledger.Kind, bool) { return "", false }

// Reconcile joins a payable-side aggregation with a payment-side
// aggregation over the union of their keys. Both sides must have been
// aggregated under the same GroupBy (date x entity for the standard
// reports). Keys present on only one side get zero defaults.
func Reconcile(payable, payment map[GroupKey]Summary) []ReconciliationRow {
	merged := make(map[GroupKey]ReconciliationRow, len(payable))

	for k, s := range payable {
		merged[k] = ReconciliationRow{
			Key:                k,
			TheoreticalPayable: s.TotalAmount,
			ActualPayment:      decimal.Zero,
			TotalDiscount:      decimal.Zero,
		}
	}
	for k, s := range payment {
		row, ok := merged[k]
		if !ok {
			row = ReconciliationRow{Key: k, TheoreticalPayable: decimal.Zero}
		}
		row.ActualPayment = s.TotalAmount
		row.TotalDiscount = s.TotalDiscount
		merged[k] = row
	}

	rows := make([]ReconciliationRow, 0, len(merged))
	for _, row := range merged {
		row.Difference = row.TheoreticalPayable.Sub(row.ActualPayable())
		rows = append(rows, row)
	}

	// Deterministic base order: date, then entity.
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Key, rows[j].Key
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.EntityID < b.EntityID
	})
	return rows
}
