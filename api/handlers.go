/*
handlers.go - HTTP handlers for data entry and reports

PURPOSE:
  The thin glue between HTTP and the engine. Handlers parse requests,
  run entry-boundary validation, invoke the report service, and hand
  results to the DTO layer. No aggregation logic lives here.

ERROR MAPPING:
  - Client errors (tolerance violation, malformed record, bad range,
    bad query parameters) -> 400
  - Fetch/storage failures -> 502 for upstream fetch, 500 otherwise

QUERY PARAMETERS (report endpoints):
  entity_id   restrict to one counterparty id
  product     restrict to one product name (exact match)
  from, to    inclusive date range, YYYY-MM-DD (both or neither)
  group_by    comma list of date,entity,product
  sort_by     date | amount | quantity | label
  order       asc | desc (default asc)
  tie_break   "kindA,kindB" -> kindA sorts before kindB on equal keys
  undated     true = admit undated records into date-keyed grouping
  format      csv = CSV rendering instead of JSON

SEE ALSO:
  - dto.go: Response shapes and number formatting
  - server.go: Routing and middleware
*/
package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flocio/agrisale/ledger"
	"github.com/flocio/agrisale/refdata"
	"github.com/flocio/agrisale/report"
	"github.com/flocio/agrisale/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Service *report.Service
	Logger  *zap.Logger
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store *sqlite.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store:   store,
		Service: report.NewService(store, store),
		Logger:  logger,
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

type errorDTO struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case err != nil && ledger.IsClientError(err):
		status = http.StatusBadRequest
	case err != nil && errors.Is(err, ledger.ErrFetchFailed):
		status = http.StatusBadGateway
	}

	dto := errorDTO{Error: msg}
	if err != nil {
		dto.Detail = err.Error()
	}
	if status >= 500 {
		h.Logger.Error(msg, zap.Error(err))
	} else {
		h.Logger.Warn(msg, zap.Error(err))
	}
	writeJSON(w, status, dto)
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string, err error) {
	dto := errorDTO{Error: msg}
	if err != nil {
		dto.Detail = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, dto)
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

func parseEntry(r *http.Request) (EntryRequest, error) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return EntryRequest{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req, nil
}

func parseDecimal(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q", field, s)
	}
	return d, nil
}

func parseDate(s string) (ledger.Date, error) {
	if s == "" {
		return ledger.Date{}, nil
	}
	return ledger.ParseDate(s)
}

func entityPtr(id *int64) *ledger.EntityID {
	if id == nil {
		return nil
	}
	e := ledger.EntityID(*id)
	return &e
}

// parseReportRequest turns query parameters into a report.Request.
func parseReportRequest(r *http.Request) (report.Request, error) {
	q := r.URL.Query()
	var req report.Request

	if v := q.Get("entity_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid entity_id %q", v)
		}
		e := ledger.EntityID(id)
		req.EntityID = &e
	}
	if v := q.Get("product"); v != "" {
		req.ProductName = &v
	}

	from, to := q.Get("from"), q.Get("to")
	if (from == "") != (to == "") {
		return req, fmt.Errorf("from and to must be supplied together")
	}
	if from != "" {
		start, err := ledger.ParseDate(from)
		if err != nil {
			return req, fmt.Errorf("invalid from date %q", from)
		}
		end, err := ledger.ParseDate(to)
		if err != nil {
			return req, fmt.Errorf("invalid to date %q", to)
		}
		req.Dates = &report.DateRange{Start: start, End: end}
	}

	for _, part := range strings.Split(q.Get("group_by"), ",") {
		switch strings.TrimSpace(part) {
		case "date":
			req.GroupBy.Date = true
		case "entity":
			req.GroupBy.Entity = true
		case "product":
			req.GroupBy.Product = true
		case "":
		default:
			return req, fmt.Errorf("unknown group_by component %q", part)
		}
	}

	switch v := q.Get("sort_by"); v {
	case "", "date":
		req.SortBy = report.SortByDate
	case "amount":
		req.SortBy = report.SortByAmount
	case "quantity":
		req.SortBy = report.SortByQuantity
	case "label":
		req.SortBy = report.SortByLabel
	default:
		return req, fmt.Errorf("unknown sort_by %q", v)
	}
	req.SortAscending = q.Get("order") != "desc"

	if v := q.Get("tie_break"); v != "" {
		parts := strings.SplitN(v, ",", 2)
		if len(parts) != 2 {
			return req, fmt.Errorf("tie_break must be two kinds, e.g. sale,return")
		}
		req.TieBreak = report.TieBreak{
			First:  ledger.Kind(strings.TrimSpace(parts[0])),
			Second: ledger.Kind(strings.TrimSpace(parts[1])),
		}
	}

	req.IncludeUndated = q.Get("undated") == "true"
	return req, nil
}

// =============================================================================
// DATA-ENTRY HANDLERS
// =============================================================================

// RecordSale stores one sale record.
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	req, err := parseEntry(r)
	if err != nil {
		h.badRequest(w, "invalid request", err)
		return
	}
	rec, err := saleFromEntry(req)
	if err != nil {
		h.badRequest(w, "invalid sale", err)
		return
	}
	id, err := h.Store.InsertSale(r.Context(), rec)
	if err != nil {
		h.writeError(w, "failed to store sale", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: id})
}

// RecordReturn stores one customer-return record.
func (h *Handler) RecordReturn(w http.ResponseWriter, r *http.Request) {
	req, err := parseEntry(r)
	if err != nil {
		h.badRequest(w, "invalid request", err)
		return
	}
	rec, err := returnFromEntry(req)
	if err != nil {
		h.badRequest(w, "invalid return", err)
		return
	}
	id, err := h.Store.InsertReturn(r.Context(), rec)
	if err != nil {
		h.writeError(w, "failed to store return", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: id})
}

// RecordPurchase stores one purchase record. A negative quantity is
// accepted here: it encodes a return to the supplier.
func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	req, err := parseEntry(r)
	if err != nil {
		h.badRequest(w, "invalid request", err)
		return
	}
	rec, err := purchaseFromEntry(req)
	if err != nil {
		h.badRequest(w, "invalid purchase", err)
		return
	}
	id, err := h.Store.InsertPurchase(r.Context(), rec)
	if err != nil {
		h.writeError(w, "failed to store purchase", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: id})
}

// RecordIncome stores one income record AFTER tolerance validation:
// a declared original price must reconcile with amount + discount.
func (h *Handler) RecordIncome(w http.ResponseWriter, r *http.Request) {
	req, err := parseEntry(r)
	if err != nil {
		h.badRequest(w, "invalid request", err)
		return
	}
	rec, err := incomeFromEntry(req)
	if err != nil {
		h.badRequest(w, "invalid income", err)
		return
	}
	if err := ledger.ValidateIncome(rec); err != nil {
		h.badRequest(w, "income rejected", err)
		return
	}
	id, err := h.Store.InsertIncome(r.Context(), rec)
	if err != nil {
		h.writeError(w, "failed to store income", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: id})
}

// RecordRemittance stores one remittance record.
func (h *Handler) RecordRemittance(w http.ResponseWriter, r *http.Request) {
	req, err := parseEntry(r)
	if err != nil {
		h.badRequest(w, "invalid request", err)
		return
	}
	rec, err := remittanceFromEntry(req)
	if err != nil {
		h.badRequest(w, "invalid remittance", err)
		return
	}
	id, err := h.Store.InsertRemittance(r.Context(), rec)
	if err != nil {
		h.writeError(w, "failed to store remittance", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: id})
}

// ----- entry -> record conversions -----

func saleFromEntry(req EntryRequest) (ledger.SaleRecord, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return ledger.SaleRecord{}, err
	}
	qty, err := parseDecimal(req.Quantity, "quantity")
	if err != nil {
		return ledger.SaleRecord{}, err
	}
	amt, err := parseDecimal(req.Amount, "amount")
	if err != nil {
		return ledger.SaleRecord{}, err
	}
	if qty.IsNegative() || amt.IsNegative() {
		return ledger.SaleRecord{}, &ledger.MalformedRecordError{Ledger: "sales", Field: "quantity/amount", Detail: "must be non-negative"}
	}
	return ledger.SaleRecord{
		Date:        date,
		CustomerID:  entityPtr(req.CustomerID),
		ProductName: req.ProductName,
		Quantity:    qty,
		Amount:      amt,
		Note:        req.Note,
	}, nil
}

func returnFromEntry(req EntryRequest) (ledger.ReturnRecord, error) {
	sale, err := saleFromEntry(req)
	if err != nil {
		return ledger.ReturnRecord{}, err
	}
	return ledger.ReturnRecord{
		Date:        sale.Date,
		CustomerID:  sale.CustomerID,
		ProductName: sale.ProductName,
		Quantity:    sale.Quantity,
		Amount:      sale.Amount,
		Note:        sale.Note,
	}, nil
}

func purchaseFromEntry(req EntryRequest) (ledger.PurchaseRecord, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return ledger.PurchaseRecord{}, err
	}
	qty, err := parseDecimal(req.Quantity, "quantity")
	if err != nil {
		return ledger.PurchaseRecord{}, err
	}
	amt, err := parseDecimal(req.Amount, "amount")
	if err != nil {
		return ledger.PurchaseRecord{}, err
	}
	if amt.IsNegative() {
		return ledger.PurchaseRecord{}, &ledger.MalformedRecordError{Ledger: "purchases", Field: "amount", Detail: "must be non-negative"}
	}
	return ledger.PurchaseRecord{
		Date:        date,
		SupplierID:  entityPtr(req.SupplierID),
		ProductName: req.ProductName,
		Quantity:    qty,
		Amount:      amt,
		Note:        req.Note,
	}, nil
}

func incomeFromEntry(req EntryRequest) (ledger.IncomeRecord, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return ledger.IncomeRecord{}, err
	}
	amt, err := parseDecimal(req.Amount, "amount")
	if err != nil {
		return ledger.IncomeRecord{}, err
	}
	discount, err := parseDecimal(req.Discount, "discount")
	if err != nil {
		return ledger.IncomeRecord{}, err
	}
	price, err := parseDecimal(req.OriginalPrice, "original_price")
	if err != nil {
		return ledger.IncomeRecord{}, err
	}
	return ledger.IncomeRecord{
		Date:          date,
		CustomerID:    entityPtr(req.CustomerID),
		Amount:        amt,
		Discount:      discount,
		OriginalPrice: price,
		Note:          req.Note,
	}, nil
}

func remittanceFromEntry(req EntryRequest) (ledger.RemittanceRecord, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return ledger.RemittanceRecord{}, err
	}
	amt, err := parseDecimal(req.Amount, "amount")
	if err != nil {
		return ledger.RemittanceRecord{}, err
	}
	if amt.IsNegative() {
		return ledger.RemittanceRecord{}, &ledger.MalformedRecordError{Ledger: "remittances", Field: "amount", Detail: "must be non-negative"}
	}
	return ledger.RemittanceRecord{
		Date:       date,
		SupplierID: entityPtr(req.SupplierID),
		EmployeeID: entityPtr(req.EmployeeID),
		Amount:     amt,
		Note:       req.Note,
	}, nil
}

// =============================================================================
// REFERENCE-DATA HANDLERS
// =============================================================================

// CreateCustomer inserts or updates a customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body", err)
		return
	}
	c := refdata.Customer{ID: ledger.EntityID(req.ID), Name: req.Name, Phone: req.Phone}
	if err := h.Store.SaveCustomer(r.Context(), c); err != nil {
		h.writeError(w, "failed to save customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListCustomers returns all customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.Customers(r.Context())
	if err != nil {
		h.writeError(w, "failed to list customers", err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// CreateSupplier inserts or updates a supplier.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body", err)
		return
	}
	s := refdata.Supplier{ID: ledger.EntityID(req.ID), Name: req.Name, Phone: req.Phone}
	if err := h.Store.SaveSupplier(r.Context(), s); err != nil {
		h.writeError(w, "failed to save supplier", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListSuppliers returns all suppliers.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Store.Suppliers(r.Context())
	if err != nil {
		h.writeError(w, "failed to list suppliers", err)
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

// CreateEmployee inserts or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body", err)
		return
	}
	e := refdata.Employee{ID: ledger.EntityID(req.ID), Name: req.Name}
	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		h.writeError(w, "failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.Employees(r.Context())
	if err != nil {
		h.writeError(w, "failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// CreateProduct inserts or updates a product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body", err)
		return
	}
	p := refdata.Product{Name: req.Name, Unit: req.Unit}
	if err := h.Store.SaveProduct(r.Context(), p); err != nil {
		h.writeError(w, "failed to save product", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListProducts returns all products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.Products(r.Context())
	if err != nil {
		h.writeError(w, "failed to list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// =============================================================================
// LEDGER LISTING HANDLERS
// =============================================================================

// listingScope pins each screen to its own ledger: the purchases
// screen includes supplier returns but never customer returns.
type listingScope struct {
	kinds []ledger.Kind
	party ledger.Party
}

var listingScopes = map[string]listingScope{
	"sales":       {kinds: []ledger.Kind{ledger.KindSale}, party: ledger.PartyCustomer},
	"returns":     {kinds: []ledger.Kind{ledger.KindReturn}, party: ledger.PartyCustomer},
	"purchases":   {kinds: []ledger.Kind{ledger.KindPurchase, ledger.KindReturn}, party: ledger.PartySupplier},
	"incomes":     {kinds: []ledger.Kind{ledger.KindIncome}, party: ledger.PartyCustomer},
	"remittances": {kinds: []ledger.Kind{ledger.KindRemittance}, party: ledger.PartyNone},
}

// Listing serves one ledger's own screen under its local convention.
func (h *Handler) Listing(name string) http.HandlerFunc {
	scope := listingScopes[name]
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseReportRequest(r)
		if err != nil {
			h.badRequest(w, "invalid report request", err)
			return
		}
		listing, err := h.Service.Listing(r.Context(), scope.kinds, scope.party, req)
		if err != nil {
			h.writeError(w, "failed to build listing", err)
			return
		}
		dto := listingDTO(listing)
		if r.URL.Query().Get("format") == "csv" {
			h.writeListingCSV(w, name, dto)
			return
		}
		writeJSON(w, http.StatusOK, dto)
	}
}

// =============================================================================
// AGGREGATED REPORT HANDLERS
// =============================================================================

// AggregatedReport serves stock-movement / sales-value / purchase-value
// reports under their declared sign conventions.
func (h *Handler) AggregatedReport(kind report.ReportKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseReportRequest(r)
		if err != nil {
			h.badRequest(w, "invalid report request", err)
			return
		}
		rep, err := h.Service.Aggregated(r.Context(), kind, req)
		if err != nil {
			h.writeError(w, "failed to build report", err)
			return
		}
		dto := reportDTO(rep, req.GroupBy)
		if r.URL.Query().Get("format") == "csv" {
			h.writeReportCSV(w, string(kind), dto)
			return
		}
		writeJSON(w, http.StatusOK, dto)
	}
}

// CustomerReconciliation serves sales-vs-income reconciliation.
func (h *Handler) CustomerReconciliation(w http.ResponseWriter, r *http.Request) {
	h.reconciliation(w, r, h.Service.CustomerReconciliation)
}

// SupplierReconciliation serves purchases-vs-remittance reconciliation.
func (h *Handler) SupplierReconciliation(w http.ResponseWriter, r *http.Request) {
	h.reconciliation(w, r, h.Service.SupplierReconciliation)
}

func (h *Handler) reconciliation(
	w http.ResponseWriter,
	r *http.Request,
	build func(ctx context.Context, req report.Request) (report.ReconciliationReport, error),
) {
	req, err := parseReportRequest(r)
	if err != nil {
		h.badRequest(w, "invalid report request", err)
		return
	}
	rep, err := build(r.Context(), req)
	if err != nil {
		h.writeError(w, "failed to build reconciliation", err)
		return
	}
	dto := reconciliationDTO(rep)
	if r.URL.Query().Get("format") == "csv" {
		h.writeReconciliationCSV(w, dto)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// CSV RENDERING - presentation/export boundary
// =============================================================================

func csvWriter(w http.ResponseWriter, filename string) *csv.Writer {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
	return csv.NewWriter(w)
}

func (h *Handler) writeListingCSV(w http.ResponseWriter, name string, dto ListingDTO) {
	cw := csvWriter(w, name)
	_ = cw.Write([]string{"date", "kind", "entity", "product", "unit", "quantity", "amount", "discount", "note"})
	for _, row := range dto.Rows {
		_ = cw.Write([]string{
			row.Date, row.Kind, row.EntityName, row.ProductName, row.Unit,
			row.Quantity, row.Amount, row.Discount, row.Note,
		})
	}
	_ = cw.Write([]string{"", "", "", "total", "",
		dto.Summary.TotalQuantity, dto.Summary.TotalAmount, dto.Summary.TotalDiscount, ""})
	cw.Flush()
}

func (h *Handler) writeReportCSV(w http.ResponseWriter, name string, dto ReportDTO) {
	cw := csvWriter(w, name)
	_ = cw.Write([]string{"date", "entity", "product", "unit", "records", "quantity", "amount"})
	for _, row := range dto.Rows {
		entity := row.EntityName
		if entity == "" && row.EntityID != nil {
			entity = strconv.FormatInt(*row.EntityID, 10)
		}
		_ = cw.Write([]string{
			row.Date, entity, row.ProductName, row.Unit,
			strconv.Itoa(row.RecordCount), row.TotalQuantity, row.TotalAmount,
		})
	}
	_ = cw.Write([]string{"", "", "total", "",
		strconv.Itoa(dto.Summary.RecordCount), dto.Summary.TotalQuantity, dto.Summary.TotalAmount})
	cw.Flush()
}

func (h *Handler) writeReconciliationCSV(w http.ResponseWriter, dto ReconciliationDTO) {
	cw := csvWriter(w, "reconciliation")
	_ = cw.Write([]string{"date", "entity", "theoretical_payable", "actual_payment", "discount", "difference"})
	for _, row := range dto.Rows {
		_ = cw.Write([]string{
			row.Date, row.EntityName,
			row.TheoreticalPayable, row.ActualPayment, row.TotalDiscount, row.Difference,
		})
	}
	t := dto.Totals
	_ = cw.Write([]string{"", "total", t.TheoreticalPayable, t.ActualPayment, t.TotalDiscount, t.Difference})
	cw.Flush()
}
