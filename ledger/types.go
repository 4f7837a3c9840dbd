/*
Package ledger provides the canonical transaction model for the
Agrisale reconciliation and aggregation engine.

PURPOSE:
  Every business ledger (sales, customer returns, purchases, incomes,
  remittances) stores records in its own native shape. This package
  defines the single canonical Transaction those records normalize
  into, so the report engine never branches on per-ledger field names.

KEY CONCEPTS IN THIS FILE (types.go):
  - Kind: Tagged variant identifying the transaction category
  - Party: Which counterparty role the entity reference points at
  - Date: A calendar date with no time component (ledger grain)
  - EntityID: Integer reference to a customer, supplier, or employee
  - Transaction: The canonical, read-only record shape

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Unsigned storage: Quantity and Amount are always non-negative here;
     sign is applied at aggregation time from a declared convention
  3. Immutability: Transactions are snapshots, never mutated in place
  4. Explicitness: No field carries implicit per-screen semantics

USAGE:
  tx := ledger.Transaction{
      Kind:     ledger.KindSale,
      Party:    ledger.PartyCustomer,
      Date:     ledger.NewDate(2024, time.January, 1),
      EntityID: 1,
      Quantity: decimal.NewFromInt(10),
      Amount:   decimal.NewFromInt(500),
  }

SEE ALSO:
  - normalize.go: Per-ledger raw records and the normalization mapping
  - errors.go: Error taxonomy for fetch/normalization/validation
  - report package: Filtering, aggregation, sorting, reconciliation
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND - Transaction category (tagged variant)
// =============================================================================

type Kind string

const (
	KindSale       Kind = "sale"
	KindReturn     Kind = "return"
	KindPurchase   Kind = "purchase"
	KindIncome     Kind = "income"
	KindRemittance Kind = "remittance"
)

// HasProduct reports whether transactions of this kind carry a product name.
// Income and remittance are money-only ledgers.
func (k Kind) HasProduct() bool {
	return k == KindSale || k == KindReturn || k == KindPurchase
}

// =============================================================================
// PARTY - Counterparty role for the entity reference
// =============================================================================

// Party disambiguates what EntityID points at. A customer return and a
// supplier return share Kind=KindReturn but contribute oppositely to a
// stock-movement report; Party is what tells them apart.
type Party string

const (
	PartyNone     Party = ""
	PartyCustomer Party = "customer"
	PartySupplier Party = "supplier"
	PartyEmployee Party = "employee"
)

// =============================================================================
// ENTITY ID - Integer reference to customer/supplier/employee
// =============================================================================

type EntityID int64

// EntityUnknown is the sentinel entity. Records with no counterparty
// reference, and joins against a missing reference record, both resolve
// here so aggregation always completes.
const EntityUnknown EntityID = -1

// =============================================================================
// DATE - Calendar date, no time component
// =============================================================================

// Date is a calendar day. The zero value means "no date": the record is
// excluded from date-keyed views but still counts toward total-record
// aggregates when the caller opts in.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison. All comparisons are at day grain.
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalized returns the same calendar day truncated to midnight UTC,
// so normalized Dates are safe as map keys under ==.
func (d Date) Normalized() Date { return Date{Time: d.normalize()} }

func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)}.Normalized() }
func (d Date) IsZero() bool       { return d.Time.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// =============================================================================
// TRANSACTION - Canonical record shape
// =============================================================================

// Transaction is the canonical projection of one ledger record.
//
// INVARIANTS:
//   - Quantity and Amount are non-negative. Sign is applied only at
//     aggregation time, from the report's declared sign convention.
//   - Date.IsZero() means the underlying record had no date.
//   - EntityID is EntityUnknown when the record had no counterparty.
//   - ProductName is empty unless Kind.HasProduct().
type Transaction struct {
	ID          string
	Kind        Kind
	Party       Party
	Date        Date
	EntityID    EntityID
	ProductName string
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
	Discount    decimal.Decimal // only meaningful for KindIncome
	Note        string
}

// =============================================================================
// SORT CAPABILITIES
// =============================================================================
// Transactions are sortable rows: the report engine sorts anything that
// exposes these accessors. The bool reports whether the value is present;
// absent values follow the engine's null ordering policy.

func (t Transaction) RowDate() (Date, bool) { return t.Date, !t.Date.IsZero() }

func (t Transaction) RowAmount() (decimal.Decimal, bool) { return t.Amount, true }

func (t Transaction) RowQuantity() (decimal.Decimal, bool) { return t.Quantity, true }

func (t Transaction) RowLabel() (string, bool) {
	if t.ProductName == "" {
		return "", false
	}
	return t.ProductName, true
}

func (t Transaction) RowKind() (Kind, bool) { return t.Kind, true }
