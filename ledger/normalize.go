/*
normalize.go - Per-ledger raw records and the canonical projection

PURPOSE:
  Each ledger stores its own record shape with its own field names.
  Normalization is the single place those shapes map into Transaction,
  so no downstream code ever branches on where a record came from.

THE MAPPING (fixed per ledger kind):
  SaleRecord       -> KindSale,       Party=customer, product+quantity+amount
  ReturnRecord     -> KindReturn,     Party=customer, product+quantity+amount
  PurchaseRecord   -> KindPurchase,   Party=supplier, product+quantity+amount
                      quantity < 0    -> KindReturn, Party=supplier,
                                         quantity = |quantity| (supplier return)
  IncomeRecord     -> KindIncome,     Party=customer, amount+discount
  RemittanceRecord -> KindRemittance, Party=supplier, amount

THE PURCHASE SPLIT:
  The purchase ledger encodes supplier returns as negative quantities.
  That split happens HERE, once. Callers never see a negative-quantity
  purchase and never branch on sign downstream.

MISSING VALUES:
  - A nil counterparty reference normalizes to EntityUnknown.
  - A zero Date is preserved as-is; the record stays out of date-keyed
    views but still exists for total counts.
  - A negative amount (or negative quantity outside the purchase ledger)
    is a MalformedRecordError and aborts the whole normalization: the
    report contract is all-or-nothing.

SEE ALSO:
  - types.go: Transaction invariants
  - report/signs.go: How kinds gain sign per report
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RAW RECORDS - Native shape of each ledger
// =============================================================================

// SaleRecord is a row of the sales ledger: goods sold to a customer.
type SaleRecord struct {
	ID          string
	Date        Date
	CustomerID  *EntityID // nil = unspecified customer
	ProductName string
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
	Note        string
}

// ReturnRecord is a row of the customer-returns ledger: goods coming back.
type ReturnRecord struct {
	ID          string
	Date        Date
	CustomerID  *EntityID
	ProductName string
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
	Note        string
}

// PurchaseRecord is a row of the purchase ledger: goods bought from a
// supplier. Quantity < 0 encodes a return TO the supplier.
type PurchaseRecord struct {
	ID          string
	Date        Date
	SupplierID  *EntityID
	ProductName string
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
	Note        string
}

// IncomeRecord is a row of the income ledger: money collected from a
// customer, possibly with a discount granted at settlement time.
type IncomeRecord struct {
	ID            string
	Date          Date
	CustomerID    *EntityID
	Amount        decimal.Decimal // actually collected
	Discount      decimal.Decimal // waived at settlement; counts as settled
	OriginalPrice decimal.Decimal // declared price; zero = undeclared
	Note          string
}

// RemittanceRecord is a row of the remittance ledger: money paid out to a
// supplier (or employee, for payroll-style remittances).
type RemittanceRecord struct {
	ID         string
	Date       Date
	SupplierID *EntityID
	EmployeeID *EntityID
	Amount     decimal.Decimal
	Note       string
}

// =============================================================================
// SOURCE - External fetch boundary
// =============================================================================

// Source supplies the full record set of each ledger for the requested
// scope. There is no pagination at this level; retries live behind the
// implementation, never in the engine.
type Source interface {
	Sales(ctx context.Context) ([]SaleRecord, error)
	Returns(ctx context.Context) ([]ReturnRecord, error)
	Purchases(ctx context.Context) ([]PurchaseRecord, error)
	Incomes(ctx context.Context) ([]IncomeRecord, error)
	Remittances(ctx context.Context) ([]RemittanceRecord, error)
}

// =============================================================================
// NORMALIZATION
// =============================================================================

func entityOrUnknown(id *EntityID) EntityID {
	if id == nil {
		return EntityUnknown
	}
	return *id
}

// NormalizeSales projects sale records into canonical transactions.
func NormalizeSales(recs []SaleRecord) ([]Transaction, error) {
	txs := make([]Transaction, 0, len(recs))
	for _, r := range recs {
		if r.Amount.IsNegative() {
			return nil, &MalformedRecordError{Ledger: "sales", RecordID: r.ID, Field: "amount", Detail: "is negative"}
		}
		if r.Quantity.IsNegative() {
			return nil, &MalformedRecordError{Ledger: "sales", RecordID: r.ID, Field: "quantity", Detail: "is negative"}
		}
		txs = append(txs, Transaction{
			ID:          r.ID,
			Kind:        KindSale,
			Party:       PartyCustomer,
			Date:        r.Date.Normalized(),
			EntityID:    entityOrUnknown(r.CustomerID),
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			Amount:      r.Amount,
			Note:        r.Note,
		})
	}
	return txs, nil
}

// NormalizeReturns projects customer-return records.
func NormalizeReturns(recs []ReturnRecord) ([]Transaction, error) {
	txs := make([]Transaction, 0, len(recs))
	for _, r := range recs {
		if r.Amount.IsNegative() {
			return nil, &MalformedRecordError{Ledger: "returns", RecordID: r.ID, Field: "amount", Detail: "is negative"}
		}
		if r.Quantity.IsNegative() {
			return nil, &MalformedRecordError{Ledger: "returns", RecordID: r.ID, Field: "quantity", Detail: "is negative"}
		}
		txs = append(txs, Transaction{
			ID:          r.ID,
			Kind:        KindReturn,
			Party:       PartyCustomer,
			Date:        r.Date.Normalized(),
			EntityID:    entityOrUnknown(r.CustomerID),
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			Amount:      r.Amount,
			Note:        r.Note,
		})
	}
	return txs, nil
}

// NormalizePurchases projects purchase records, splitting supplier
// returns (negative quantity) into KindReturn with absolute quantity.
func NormalizePurchases(recs []PurchaseRecord) ([]Transaction, error) {
	txs := make([]Transaction, 0, len(recs))
	for _, r := range recs {
		if r.Amount.IsNegative() {
			return nil, &MalformedRecordError{Ledger: "purchases", RecordID: r.ID, Field: "amount", Detail: "is negative"}
		}
		kind := KindPurchase
		qty := r.Quantity
		if qty.IsNegative() {
			kind = KindReturn
			qty = qty.Abs()
		}
		txs = append(txs, Transaction{
			ID:          r.ID,
			Kind:        kind,
			Party:       PartySupplier,
			Date:        r.Date.Normalized(),
			EntityID:    entityOrUnknown(r.SupplierID),
			ProductName: r.ProductName,
			Quantity:    qty,
			Amount:      r.Amount,
			Note:        r.Note,
		})
	}
	return txs, nil
}

// NormalizeIncomes projects income records.
func NormalizeIncomes(recs []IncomeRecord) ([]Transaction, error) {
	txs := make([]Transaction, 0, len(recs))
	for _, r := range recs {
		if r.Amount.IsNegative() {
			return nil, &MalformedRecordError{Ledger: "incomes", RecordID: r.ID, Field: "amount", Detail: "is negative"}
		}
		if r.Discount.IsNegative() {
			return nil, &MalformedRecordError{Ledger: "incomes", RecordID: r.ID, Field: "discount", Detail: "is negative"}
		}
		txs = append(txs, Transaction{
			ID:       r.ID,
			Kind:     KindIncome,
			Party:    PartyCustomer,
			Date:     r.Date.Normalized(),
			EntityID: entityOrUnknown(r.CustomerID),
			Amount:   r.Amount,
			Discount: r.Discount,
			Note:     r.Note,
		})
	}
	return txs, nil
}

// NormalizeRemittances projects remittance records. Supplier remittances
// carry Party=supplier; payroll remittances carry Party=employee.
func NormalizeRemittances(recs []RemittanceRecord) ([]Transaction, error) {
	txs := make([]Transaction, 0, len(recs))
	for _, r := range recs {
		if r.Amount.IsNegative() {
			return nil, &MalformedRecordError{Ledger: "remittances", RecordID: r.ID, Field: "amount", Detail: "is negative"}
		}
		party := PartySupplier
		entity := r.SupplierID
		if entity == nil && r.EmployeeID != nil {
			party = PartyEmployee
			entity = r.EmployeeID
		}
		txs = append(txs, Transaction{
			ID:       r.ID,
			Kind:     KindRemittance,
			Party:    party,
			Date:     r.Date.Normalized(),
			EntityID: entityOrUnknown(entity),
			Amount:   r.Amount,
			Note:     r.Note,
		})
	}
	return txs, nil
}

// =============================================================================
// RECORD SET - One fetched snapshot of all ledgers
// =============================================================================

// RecordSet is an immutable snapshot of every ledger, fetched fresh per
// report invocation.
type RecordSet struct {
	Sales       []SaleRecord
	Returns     []ReturnRecord
	Purchases   []PurchaseRecord
	Incomes     []IncomeRecord
	Remittances []RemittanceRecord
}

// Normalize projects the whole snapshot into canonical transactions,
// in ledger order (sales, returns, purchases, incomes, remittances).
// Any malformed record aborts the whole projection.
func (rs RecordSet) Normalize() ([]Transaction, error) {
	var all []Transaction
	steps := []func() ([]Transaction, error){
		func() ([]Transaction, error) { return NormalizeSales(rs.Sales) },
		func() ([]Transaction, error) { return NormalizeReturns(rs.Returns) },
		func() ([]Transaction, error) { return NormalizePurchases(rs.Purchases) },
		func() ([]Transaction, error) { return NormalizeIncomes(rs.Incomes) },
		func() ([]Transaction, error) { return NormalizeRemittances(rs.Remittances) },
	}
	for _, step := range steps {
		txs, err := step()
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}
	return all, nil
}
