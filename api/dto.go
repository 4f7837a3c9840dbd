/*
dto.go - Data Transfer Objects and presentation formatting

PURPOSE:
  Defines the JSON structures for API communication AND the one place
  in the codebase where decimals become strings. The engine emits raw
  signed decimals; everything a screen or CSV shows passes through the
  formatters here.

FORMATTING RULES:
  - Currency: fixed two decimals ("450.00", "-12.50")
  - Quantity: trailing zeros trimmed ("10", "2.5")
  - Signed display: explicit '+' glyph on positive values where the
    screen renders a discrepancy

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - report package: The raw rows these wrap
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/flocio/agrisale/ledger"
	"github.com/flocio/agrisale/report"
)

// =============================================================================
// FORMATTERS - The presentation boundary for numbers
// =============================================================================

// FormatCurrency renders a monetary value with fixed two decimals.
func FormatCurrency(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatQuantity renders a quantity with trailing zeros trimmed.
func FormatQuantity(d decimal.Decimal) string {
	return d.String()
}

// FormatSigned renders a discrepancy with an explicit sign glyph on
// positive values ("+30.00"), so "still owed" reads unambiguously.
func FormatSigned(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// =============================================================================
// DATA-ENTRY REQUESTS
// =============================================================================

// EntryRequest is the shared shape for ledger data entry. Fields that a
// given ledger ignores are simply omitted by the client.
type EntryRequest struct {
	Date        string `json:"date,omitempty"` // YYYY-MM-DD; empty = undated
	CustomerID  *int64 `json:"customer_id,omitempty"`
	SupplierID  *int64 `json:"supplier_id,omitempty"`
	EmployeeID  *int64 `json:"employee_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Amount      string `json:"amount"`
	Discount    string `json:"discount,omitempty"`
	// OriginalPrice, when present on an income entry, must reconcile
	// with amount + discount within 0.01.
	OriginalPrice string `json:"original_price,omitempty"`
	Note          string `json:"note,omitempty"`
}

// CreatedDTO acknowledges a stored record.
type CreatedDTO struct {
	ID string `json:"id"`
}

// CustomerRequest creates or updates a customer.
type CustomerRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// SupplierRequest creates or updates a supplier.
type SupplierRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// EmployeeRequest creates or updates an employee.
type EmployeeRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductRequest creates or updates a product.
type ProductRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// =============================================================================
// REPORT DTOs
// =============================================================================

// SummaryDTO is a formatted aggregate summary.
type SummaryDTO struct {
	RecordCount   int    `json:"record_count"`
	TotalQuantity string `json:"total_quantity"`
	TotalAmount   string `json:"total_amount"`
	TotalDiscount string `json:"total_discount,omitempty"`
}

// AggregatedRowDTO is one formatted aggregation row.
type AggregatedRowDTO struct {
	Date        string `json:"date,omitempty"`
	EntityID    *int64 `json:"entity_id,omitempty"`
	EntityName  string `json:"entity_name,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Unit        string `json:"unit,omitempty"`
	SummaryDTO
}

// ReportDTO is an assembled aggregation report.
type ReportDTO struct {
	Kind    string             `json:"kind"`
	Rows    []AggregatedRowDTO `json:"rows"`
	Summary SummaryDTO         `json:"summary"`
}

// TransactionDTO is one formatted ledger row.
type TransactionDTO struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Date        string `json:"date,omitempty"`
	EntityID    int64  `json:"entity_id"`
	EntityName  string `json:"entity_name,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Quantity    string `json:"quantity"`
	Amount      string `json:"amount"`
	Discount    string `json:"discount,omitempty"`
	Note        string `json:"note,omitempty"`
}

// ListingDTO is a single ledger's screen: rows plus local totals.
type ListingDTO struct {
	Rows    []TransactionDTO `json:"rows"`
	Summary SummaryDTO       `json:"summary"`
}

// ReconciliationRowDTO is one formatted reconciliation row.
// Difference carries an explicit sign glyph: positive = still owed.
type ReconciliationRowDTO struct {
	Date               string `json:"date,omitempty"`
	EntityID           int64  `json:"entity_id"`
	EntityName         string `json:"entity_name,omitempty"`
	TheoreticalPayable string `json:"theoretical_payable"`
	ActualPayment      string `json:"actual_payment"`
	TotalDiscount      string `json:"total_discount"`
	Difference         string `json:"difference"`
}

// ReconciliationDTO is an assembled reconciliation report.
type ReconciliationDTO struct {
	Rows   []ReconciliationRowDTO `json:"rows"`
	Totals ReconciliationRowDTO   `json:"totals"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func summaryDTO(s report.Summary) SummaryDTO {
	return SummaryDTO{
		RecordCount:   s.RecordCount,
		TotalQuantity: FormatQuantity(s.TotalQuantity),
		TotalAmount:   FormatCurrency(s.TotalAmount),
		TotalDiscount: FormatCurrency(s.TotalDiscount),
	}
}

func reportDTO(r report.Report, by report.GroupBy) ReportDTO {
	rows := make([]AggregatedRowDTO, len(r.Rows))
	for i, row := range r.Rows {
		dto := AggregatedRowDTO{
			EntityName:  row.EntityName,
			ProductName: row.Key.ProductName,
			Unit:        row.Unit,
			SummaryDTO:  summaryDTO(row.Summary),
		}
		if by.Date && !row.Key.Date.IsZero() {
			dto.Date = row.Key.Date.String()
		}
		if by.Entity {
			id := int64(row.Key.EntityID)
			dto.EntityID = &id
		}
		rows[i] = dto
	}
	return ReportDTO{
		Kind:    string(r.Kind),
		Rows:    rows,
		Summary: summaryDTO(r.Summary),
	}
}

func transactionDTO(row report.TransactionRow) TransactionDTO {
	tx := row.Tx
	dto := TransactionDTO{
		ID:          tx.ID,
		Kind:        string(tx.Kind),
		Date:        tx.Date.String(),
		EntityID:    int64(tx.EntityID),
		EntityName:  row.EntityName,
		ProductName: tx.ProductName,
		Unit:        row.Unit,
		Quantity:    FormatQuantity(tx.Quantity),
		Amount:      FormatCurrency(tx.Amount),
		Note:        tx.Note,
	}
	if tx.Kind == ledger.KindIncome {
		dto.Discount = FormatCurrency(tx.Discount)
	}
	return dto
}

func listingDTO(r report.TransactionReport) ListingDTO {
	rows := make([]TransactionDTO, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = transactionDTO(row)
	}
	return ListingDTO{Rows: rows, Summary: summaryDTO(r.Summary)}
}

func reconciliationDTO(r report.ReconciliationReport) ReconciliationDTO {
	rows := make([]ReconciliationRowDTO, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = ReconciliationRowDTO{
			Date:               row.Key.Date.String(),
			EntityID:           int64(row.Key.EntityID),
			EntityName:         row.EntityName,
			TheoreticalPayable: FormatCurrency(row.TheoreticalPayable),
			ActualPayment:      FormatCurrency(row.ActualPayment),
			TotalDiscount:      FormatCurrency(row.TotalDiscount),
			Difference:         FormatSigned(row.Difference),
		}
	}
	return ReconciliationDTO{
		Rows: rows,
		Totals: ReconciliationRowDTO{
			TheoreticalPayable: FormatCurrency(r.Totals.TheoreticalPayable),
			ActualPayment:      FormatCurrency(r.Totals.ActualPayment),
			TotalDiscount:      FormatCurrency(r.Totals.TotalDiscount),
			Difference:         FormatSigned(r.Totals.Difference),
		},
	}
}
