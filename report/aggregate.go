/*
aggregate.go - Grouping and aggregation fold

PURPOSE:
  Groups transactions by a composite key (any subset of date, entity,
  product) and reduces each group into a Summary under the report's
  declared sign convention. The fold initializes a zero Summary on
  first sight of a key, then accumulates with plain decimal addition.
  No rounding happens here; formatting belongs to the api boundary.

UNDATED RECORDS:
  Records without a date cannot live under a date-keyed group. When the
  grouping includes date, they are skipped unless the caller opts in
  with IncludeUndated, in which case they group under the zero Date.

SEE ALSO:
  - signs.go: Where the sign comes from
  - assemble.go: Global summary over aggregated rows
*/
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/flocio/agrisale/ledger"
)

// =============================================================================
// GROUPING KEY
// =============================================================================

// GroupBy selects which key components participate in grouping.
type GroupBy struct {
	Date    bool
	Entity  bool
	Product bool
}

// GroupKey is one composite key value. Unselected components stay at
// their zero value so keys compare equal across groups that ignore them.
// Dates are normalized to midnight UTC, so GroupKey is safe under ==.
type GroupKey struct {
	Date        ledger.Date
	EntityID    ledger.EntityID
	ProductName string
}

// KeyOf projects a transaction onto the selected key components.
func KeyOf(tx ledger.Transaction, by GroupBy) GroupKey {
	var k GroupKey
	if by.Date {
		k.Date = tx.Date.Normalized()
	}
	if by.Entity {
		k.EntityID = tx.EntityID
	}
	if by.Product {
		k.ProductName = tx.ProductName
	}
	return k
}

// =============================================================================
// SUMMARY - Per-key or global reduction
// =============================================================================

// Summary accumulates one group. TotalQuantity and TotalAmount are
// signed per the report's convention; TotalDiscount is the unsigned sum
// of discounts granted (meaningful for income groups).
type Summary struct {
	RecordCount   int
	TotalQuantity decimal.Decimal
	TotalAmount   decimal.Decimal
	TotalDiscount decimal.Decimal
}

func zeroSummary() Summary {
	return Summary{
		TotalQuantity: decimal.Zero,
		TotalAmount:   decimal.Zero,
		TotalDiscount: decimal.Zero,
	}
}

func (s Summary) add(tx ledger.Transaction, sign int) Summary {
	d := decimal.NewFromInt(int64(sign))
	s.RecordCount++
	s.TotalQuantity = s.TotalQuantity.Add(tx.Quantity.Mul(d))
	s.TotalAmount = s.TotalAmount.Add(tx.Amount.Mul(d))
	s.TotalDiscount = s.TotalDiscount.Add(tx.Discount)
	return s
}

// Merge combines two summaries (used for global totals).
func (s Summary) Merge(other Summary) Summary {
	return Summary{
		RecordCount:   s.RecordCount + other.RecordCount,
		TotalQuantity: s.TotalQuantity.Add(other.TotalQuantity),
		TotalAmount:   s.TotalAmount.Add(other.TotalAmount),
		TotalDiscount: s.TotalDiscount.Add(other.TotalDiscount),
	}
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Options declares the semantics of one aggregation call. Report is
// mandatory: the engine refuses to guess signs.
type Options struct {
	Report ReportKind
	By     GroupBy

	// IncludeUndated admits records with no date into date-keyed
	// grouping (under the zero Date). Off by default.
	IncludeUndated bool
}

// Aggregate folds transactions into per-key summaries. Transactions
// whose sign under the report convention is 0 do not participate.
func Aggregate(txs []ledger.Transaction, opts Options) map[GroupKey]Summary {
	groups := make(map[GroupKey]Summary)
	for _, tx := range txs {
		sign := SignFor(opts.Report, tx)
		if sign == 0 {
			continue
		}
		if opts.By.Date && tx.Date.IsZero() && !opts.IncludeUndated {
			continue
		}
		k := KeyOf(tx, opts.By)
		s, ok := groups[k]
		if !ok {
			s = zeroSummary()
		}
		groups[k] = s.add(tx, sign)
	}
	return groups
}

// =============================================================================
// AGGREGATED ROW - One key + its summary, as a sortable row
// =============================================================================

type AggregatedRow struct {
	Key     GroupKey
	Summary Summary

	// EntityName and Unit are joined from reference data by the
	// service; raw labels only, never formatted strings.
	EntityName string
	Unit       string
}

func (r AggregatedRow) RowDate() (ledger.Date, bool) { return r.Key.Date, !r.Key.Date.IsZero() }

func (r AggregatedRow) RowAmount() (decimal.Decimal, bool) { return r.Summary.TotalAmount, true }

func (r AggregatedRow) RowQuantity() (decimal.Decimal, bool) { return r.Summary.TotalQuantity, true }

func (r AggregatedRow) RowLabel() (string, bool) {
	if r.Key.ProductName != "" {
		return r.Key.ProductName, true
	}
	if r.EntityName != "" {
		return r.EntityName, true
	}
	return "", false
}

func (r AggregatedRow) RowKind() (ledger.Kind, bool) { return "", false }

// RowsOf converts an aggregation result into rows in a deterministic
// base order (date, then entity, then product). Sorting by a requested
// field happens afterwards; this is only the stable starting sequence.
func RowsOf(groups map[GroupKey]Summary) []AggregatedRow {
	rows := make([]AggregatedRow, 0, len(groups))
	for k, s := range groups {
		rows = append(rows, AggregatedRow{Key: k, Summary: s})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Key, rows[j].Key
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		return a.ProductName < b.ProductName
	})
	return rows
}
