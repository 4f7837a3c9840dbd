/*
signs.go - Declared sign conventions

PURPOSE:
  The same transaction kind contributes oppositely depending on the
  report: a customer return is stock INFLOW (+) in a stock-movement
  report but revenue REDUCTION (-) in a sales-value report. The ledger
  stores everything unsigned; this file is the single named mapping
  from (report kind, transaction kind, party) to sign.

RULES:
  - Sign 0 means the kind does not participate in the report at all.
  - Per-ledger views use the ledger's own local convention: every row
    of its own screen counts positive (sales positive = quantity sold,
    returns positive = quantity returned).
  - The engine NEVER infers sign anywhere else. If a report needs a new
    convention, it gets a row in this table, not an if-branch.
*/
package report

import "github.com/flocio/agrisale/ledger"

// ReportKind declares which sign convention a report is built under.
type ReportKind string

const (
	// StockMovement: unified net movement view. Inflow to stock is
	// positive, outflow is negative.
	StockMovement ReportKind = "stock_movement"

	// SalesValue: net revenue from customers. Sales positive, customer
	// returns negative.
	SalesValue ReportKind = "sales_value"

	// PurchaseValue: net value owed to suppliers. Purchases positive,
	// supplier returns negative.
	PurchaseValue ReportKind = "purchase_value"

	// CashCollected: money actually collected from customers.
	CashCollected ReportKind = "cash_collected"

	// CashPaid: money actually paid out.
	CashPaid ReportKind = "cash_paid"

	// LedgerView: a single ledger's own screen; every row counts
	// positive under its local convention.
	LedgerView ReportKind = "ledger_view"
)

type signKey struct {
	Kind  ledger.Kind
	Party ledger.Party
}

// signTable is THE sign convention. Absent entries mean "does not
// participate" (sign 0).
var signTable = map[ReportKind]map[signKey]int{
	StockMovement: {
		{ledger.KindSale, ledger.PartyCustomer}:     -1, // goods leave stock
		{ledger.KindReturn, ledger.PartyCustomer}:   +1, // goods come back
		{ledger.KindPurchase, ledger.PartySupplier}: +1, // goods arrive
		{ledger.KindReturn, ledger.PartySupplier}:   -1, // goods sent back
	},
	SalesValue: {
		{ledger.KindSale, ledger.PartyCustomer}:   +1,
		{ledger.KindReturn, ledger.PartyCustomer}: -1,
	},
	PurchaseValue: {
		{ledger.KindPurchase, ledger.PartySupplier}: +1,
		{ledger.KindReturn, ledger.PartySupplier}:   -1,
	},
	CashCollected: {
		{ledger.KindIncome, ledger.PartyCustomer}: +1,
	},
	CashPaid: {
		{ledger.KindRemittance, ledger.PartySupplier}: +1,
		{ledger.KindRemittance, ledger.PartyEmployee}: +1,
	},
}

// SignFor returns the declared sign of a transaction under a report
// kind: +1, -1, or 0 when the transaction does not participate.
// LedgerView is local: everything participates positively.
func SignFor(report ReportKind, tx ledger.Transaction) int {
	if report == LedgerView {
		return +1
	}
	return signTable[report][signKey{Kind: tx.Kind, Party: tx.Party}]
}
