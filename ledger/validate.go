/*
validate.go - Entry-boundary validation

PURPOSE:
  Validation that runs when a record is SUBMITTED, before it ever
  reaches a ledger. The aggregation engine only sees accepted data, so
  a tolerance violation is a data-entry error, never a report error.

TOLERANCE:
  Monetary equality is never exact equality. A declared original price
  reconciles with amount + discount when the absolute difference is at
  most Tolerance (0.01 currency units).
*/
package ledger

import "github.com/shopspring/decimal"

// Tolerance is the absolute tolerance for monetary equality checks.
var Tolerance = decimal.New(1, -2) // 0.01

// WithinTolerance reports whether a and b are equal within Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// ValidateIncome checks an income record before acceptance.
// If the record declares an original price, amount + discount must
// reconcile with it within Tolerance.
func ValidateIncome(rec IncomeRecord) error {
	if rec.Amount.IsNegative() {
		return &MalformedRecordError{Ledger: "incomes", RecordID: rec.ID, Field: "amount", Detail: "is negative"}
	}
	if rec.Discount.IsNegative() {
		return &MalformedRecordError{Ledger: "incomes", RecordID: rec.ID, Field: "discount", Detail: "is negative"}
	}
	if rec.OriginalPrice.IsZero() {
		return nil // undeclared price: nothing to reconcile
	}
	settled := rec.Amount.Add(rec.Discount)
	if !WithinTolerance(rec.OriginalPrice, settled) {
		return &ToleranceError{Declared: rec.OriginalPrice, Settled: settled}
	}
	return nil
}
