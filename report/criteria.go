/*
Package report implements the ledger reconciliation and aggregation
engine: pure, single-threaded transforms over in-memory transaction
snapshots.

PURPOSE:
  Every screen of the business ledger performs the same pipeline:
  normalize -> filter -> (sort | group/aggregate -> reconcile) ->
  assemble. This package is that pipeline, with no UI state, no hidden
  mutable fields, and no persistence. Summaries are recomputed on every
  invocation; nothing is cached across filter changes.

KEY CONCEPTS:
  - Criteria: Entity/product/date-range filter (criteria.go)
  - ReportKind + sign table: Declared sign conventions (signs.go)
  - GroupBy/GroupKey/Summary: Aggregation fold (aggregate.go)
  - Row + SortOptions: Polymorphic sorting (sort.go)
  - ReconciliationRow: Payable vs payment per key (reconcile.go)
  - Report/Assemble: Rows + global summary (assemble.go)
  - Service: Fan-out fetch and report builders (service.go)

DESIGN PRINCIPLES:
  1. Purity: Same inputs, same outputs; filtering is stable and idempotent
  2. Explicit signs: The engine never infers sign from transaction kind
     without a declared (report kind, transaction kind) mapping
  3. Decimal accumulation: No rounding until the presentation boundary

SEE ALSO:
  - ledger package: Canonical Transaction and normalization
  - api package: The presentation/export boundary (formatting lives there)
*/
package report

import "github.com/flocio/agrisale/ledger"

// =============================================================================
// DATE RANGE - Inclusive on both ends
// =============================================================================

// DateRange is an inclusive calendar-date window: start <= date <= end.
type DateRange struct {
	Start ledger.Date
	End   ledger.Date
}

// Contains reports whether d falls inside the range. Undated records
// (zero Date) are never inside any range.
func (r DateRange) Contains(d ledger.Date) bool {
	if d.IsZero() {
		return false
	}
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Validate rejects ranges that end before they start.
func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return ledger.ErrInvalidDateRange
	}
	return nil
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// =============================================================================
// CRITERIA - All fields optional; absence means "no restriction"
// =============================================================================

type Criteria struct {
	EntityID    *ledger.EntityID
	ProductName *string
	Dates       *DateRange
}

// Matches applies every present predicate. Product and entity filters
// are exact matches.
func (c Criteria) Matches(tx ledger.Transaction) bool {
	if c.EntityID != nil && tx.EntityID != *c.EntityID {
		return false
	}
	if c.ProductName != nil && tx.ProductName != *c.ProductName {
		return false
	}
	if c.Dates != nil && !c.Dates.Contains(tx.Date) {
		return false
	}
	return true
}

// Filter returns the transactions matching the criteria, preserving
// input order. Pure: the input slice is never modified.
func Filter(txs []ledger.Transaction, c Criteria) []ledger.Transaction {
	out := make([]ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		if c.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}
