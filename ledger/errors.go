/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these onto status codes with errors.Is/As; the
  engine itself never panics and never returns partial reports.

ERROR CATEGORIES:
  1. Fetch errors      - A ledger or reference fetch failed (aborts report)
  2. Record errors     - A raw record is malformed (aborts normalization)
  3. Validation errors - Data-entry rejected before it reaches a ledger

SEE ALSO:
  - normalize.go: Returns MalformedRecordError
  - validate.go: Returns ToleranceError
  - report/service.go: Wraps fetch failures in FetchError
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrFetchFailed is returned when any ledger or reference-data fetch
	// fails. Reports are all-or-nothing: one failed fetch fails the report.
	ErrFetchFailed = errors.New("ledger fetch failed")

	// ErrMalformedRecord is returned when a raw record violates the
	// ledger invariants (e.g., negative amount in the underlying store).
	ErrMalformedRecord = errors.New("malformed ledger record")

	// ErrToleranceViolation is returned when a declared original price
	// does not reconcile with amount + discount within Tolerance.
	ErrToleranceViolation = errors.New("price does not reconcile within tolerance")

	// ErrInvalidDateRange is returned when a date range ends before it starts.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrNotFound is returned by stores when a requested record is absent.
	// Report joins never surface this; they resolve to EntityUnknown instead.
	ErrNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FetchError identifies which ledger's fetch failed.
type FetchError struct {
	Ledger string // "sales", "returns", "purchases", "incomes", "remittances", "refdata"
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Ledger, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetchFailed, e.Err} }

// MalformedRecordError identifies the offending record and field.
type MalformedRecordError struct {
	Ledger   string
	RecordID string
	Field    string
	Detail   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record %s: %s %s", e.Ledger, e.RecordID, e.Field, e.Detail)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// ToleranceError reports a settlement that does not add up.
type ToleranceError struct {
	Declared decimal.Decimal // original price on the record
	Settled  decimal.Decimal // amount + discount
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("declared price %s does not match settled %s (tolerance %s)",
		e.Declared, e.Settled, Tolerance)
}

func (e *ToleranceError) Unwrap() error { return ErrToleranceViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrToleranceViolation) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrMalformedRecord)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
