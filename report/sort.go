/*
sort.go - Polymorphic sort engine

PURPOSE:
  Orders raw transactions or aggregated rows by a chosen field. Works
  over anything exposing the Row capability accessors, so the same
  comparator logic serves every screen.

ORDERING RULES (a total order, always):
  1. Primary comparator on the requested field.
  2. Missing values sort FIRST ascending, LAST descending (one policy,
     applied to every sortable field).
  3. Equal primaries fall to the caller's kind tie-break rule
     ("kind A before kind B"), when one is supplied.
  4. Anything still equal keeps stable input order. Sorting twice with
     the same options yields the same sequence.
*/
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/flocio/agrisale/ledger"
)

// =============================================================================
// ROW - Capability set for sortable rows
// =============================================================================

// Row is anything the sort engine can order. Each accessor returns the
// value and whether it is present; absent values follow the null policy.
type Row interface {
	RowDate() (ledger.Date, bool)
	RowAmount() (decimal.Decimal, bool)
	RowQuantity() (decimal.Decimal, bool)
	RowLabel() (string, bool)
	RowKind() (ledger.Kind, bool)
}

// =============================================================================
// SORT OPTIONS
// =============================================================================

type SortField string

const (
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByQuantity SortField = "quantity"
	SortByLabel    SortField = "label"
)

// TieBreak orders kinds when primary keys compare equal: rows of First
// sort before rows of Second. The zero value means no rule.
type TieBreak struct {
	First  ledger.Kind
	Second ledger.Kind
}

type SortOptions struct {
	Field     SortField
	Ascending bool
	TieBreak  TieBreak
}

// =============================================================================
// SORT
// =============================================================================

// cmp result: negative = a first, positive = b first, zero = undecided.
func compare[R Row](a, b R, opts SortOptions) int {
	c := comparePrimary(a, b, opts)
	if c != 0 {
		return c
	}
	return compareTieBreak(a, b, opts.TieBreak)
}

func comparePrimary[R Row](a, b R, opts SortOptions) int {
	var c int
	var aok, bok bool

	switch opts.Field {
	case SortByDate:
		av, aOk := a.RowDate()
		bv, bOk := b.RowDate()
		aok, bok = aOk, bOk
		if aok && bok {
			switch {
			case av.Before(bv):
				c = -1
			case av.After(bv):
				c = 1
			}
		}
	case SortByQuantity:
		av, aOk := a.RowQuantity()
		bv, bOk := b.RowQuantity()
		aok, bok = aOk, bOk
		if aok && bok {
			c = av.Cmp(bv)
		}
	case SortByLabel:
		av, aOk := a.RowLabel()
		bv, bOk := b.RowLabel()
		aok, bok = aOk, bOk
		if aok && bok {
			switch {
			case av < bv:
				c = -1
			case av > bv:
				c = 1
			}
		}
	default: // SortByAmount
		av, aOk := a.RowAmount()
		bv, bOk := b.RowAmount()
		aok, bok = aOk, bOk
		if aok && bok {
			c = av.Cmp(bv)
		}
	}

	// Null policy: missing sorts first ascending, last descending.
	// Because the whole comparison is inverted for descending below,
	// "missing is smallest" produces exactly that in both directions.
	switch {
	case !aok && !bok:
		c = 0
	case !aok:
		c = -1
	case !bok:
		c = 1
	}

	if !opts.Ascending {
		c = -c
	}
	return c
}

func compareTieBreak[R Row](a, b R, tb TieBreak) int {
	if tb == (TieBreak{}) {
		return 0
	}
	ak, aok := a.RowKind()
	bk, bok := b.RowKind()
	if !aok || !bok || ak == bk {
		return 0
	}
	if ak == tb.First && bk == tb.Second {
		return -1
	}
	if ak == tb.Second && bk == tb.First {
		return 1
	}
	return 0
}

// Sort orders rows in place per the options. Stable: rows the rule does
// not discriminate keep their input order.
func Sort[R Row](rows []R, opts SortOptions) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compare(rows[i], rows[j], opts) < 0
	})
}
