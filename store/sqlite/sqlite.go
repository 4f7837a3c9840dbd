/*
Package sqlite provides a SQLite-backed implementation of the data
sources the report engine consumes.

PURPOSE:
  Implements ledger.Source (per-kind bulk fetch of raw records) and
  refdata.Source (customers, suppliers, employees, products) plus the
  data-entry writes the API exposes. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

STORAGE CONVENTIONS:
  - Monetary values and quantities are stored as TEXT and parsed into
    decimal.Decimal; no floats ever touch a row.
  - Dates are stored as TEXT 'YYYY-MM-DD'; NULL means the record has
    no date (it stays out of date-keyed report views).
  - Counterparty ids are nullable INTEGERs; NULL normalizes to the
    Unknown sentinel entity downstream.
  - Row ids are UUIDs assigned at insert time.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so report fetches
  (readers) never block data entry (the single writer).

USAGE:
  st, err := sqlite.New("./data/agrisale.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()
  svc := report.NewService(st, st)

SEE ALSO:
  - ledger/normalize.go: Source interface and raw record shapes
  - refdata/refdata.go: Reference-data interface and join rules
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/flocio/agrisale/ledger"
	"github.com/flocio/agrisale/refdata"
)

// Store implements ledger.Source and refdata.Source using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Reference data
	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT
	);
	CREATE TABLE IF NOT EXISTS suppliers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT
	);
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS products (
		name TEXT PRIMARY KEY,
		unit TEXT
	);

	-- Ledgers. Quantities and amounts are stored unsigned, except the
	-- purchase ledger where quantity < 0 encodes a supplier return.
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		date TEXT,
		customer_id INTEGER,
		product_name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		amount TEXT NOT NULL,
		note TEXT
	);
	CREATE TABLE IF NOT EXISTS returns (
		id TEXT PRIMARY KEY,
		date TEXT,
		customer_id INTEGER,
		product_name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		amount TEXT NOT NULL,
		note TEXT
	);
	CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		date TEXT,
		supplier_id INTEGER,
		product_name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		amount TEXT NOT NULL,
		note TEXT
	);
	CREATE TABLE IF NOT EXISTS incomes (
		id TEXT PRIMARY KEY,
		date TEXT,
		customer_id INTEGER,
		amount TEXT NOT NULL,
		discount TEXT NOT NULL DEFAULT '0',
		original_price TEXT NOT NULL DEFAULT '0',
		note TEXT
	);
	CREATE TABLE IF NOT EXISTS remittances (
		id TEXT PRIMARY KEY,
		date TEXT,
		supplier_id INTEGER,
		employee_id INTEGER,
		amount TEXT NOT NULL,
		note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date);
	CREATE INDEX IF NOT EXISTS idx_returns_date ON returns(date);
	CREATE INDEX IF NOT EXISTS idx_purchases_date ON purchases(date);
	CREATE INDEX IF NOT EXISTS idx_incomes_date ON incomes(date);
	CREATE INDEX IF NOT EXISTS idx_remittances_date ON remittances(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func scanDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func scanDate(v sql.NullString) (ledger.Date, error) {
	if !v.Valid || v.String == "" {
		return ledger.Date{}, nil
	}
	return ledger.ParseDate(v.String)
}

func scanEntity(v sql.NullInt64) *ledger.EntityID {
	if !v.Valid {
		return nil
	}
	id := ledger.EntityID(v.Int64)
	return &id
}

func dateArg(d ledger.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func entityArg(id *ledger.EntityID) any {
	if id == nil {
		return nil
	}
	return int64(*id)
}

// =============================================================================
// LEDGER SOURCE - per-kind bulk fetch
// =============================================================================

func (s *Store) Sales(ctx context.Context) ([]ledger.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, customer_id, product_name, quantity, amount, COALESCE(note, '') FROM sales`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.SaleRecord
	for rows.Next() {
		var (
			r        ledger.SaleRecord
			date     sql.NullString
			customer sql.NullInt64
			qty, amt string
		)
		if err := rows.Scan(&r.ID, &date, &customer, &r.ProductName, &qty, &amt, &r.Note); err != nil {
			return nil, err
		}
		if r.Date, err = scanDate(date); err != nil {
			return nil, err
		}
		r.CustomerID = scanEntity(customer)
		if r.Quantity, err = scanDecimal(qty); err != nil {
			return nil, err
		}
		if r.Amount, err = scanDecimal(amt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Returns(ctx context.Context) ([]ledger.ReturnRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, customer_id, product_name, quantity, amount, COALESCE(note, '') FROM returns`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.ReturnRecord
	for rows.Next() {
		var (
			r        ledger.ReturnRecord
			date     sql.NullString
			customer sql.NullInt64
			qty, amt string
		)
		if err := rows.Scan(&r.ID, &date, &customer, &r.ProductName, &qty, &amt, &r.Note); err != nil {
			return nil, err
		}
		if r.Date, err = scanDate(date); err != nil {
			return nil, err
		}
		r.CustomerID = scanEntity(customer)
		if r.Quantity, err = scanDecimal(qty); err != nil {
			return nil, err
		}
		if r.Amount, err = scanDecimal(amt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Purchases(ctx context.Context) ([]ledger.PurchaseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, supplier_id, product_name, quantity, amount, COALESCE(note, '') FROM purchases`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.PurchaseRecord
	for rows.Next() {
		var (
			r        ledger.PurchaseRecord
			date     sql.NullString
			supplier sql.NullInt64
			qty, amt string
		)
		if err := rows.Scan(&r.ID, &date, &supplier, &r.ProductName, &qty, &amt, &r.Note); err != nil {
			return nil, err
		}
		if r.Date, err = scanDate(date); err != nil {
			return nil, err
		}
		r.SupplierID = scanEntity(supplier)
		if r.Quantity, err = scanDecimal(qty); err != nil {
			return nil, err
		}
		if r.Amount, err = scanDecimal(amt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Incomes(ctx context.Context) ([]ledger.IncomeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, customer_id, amount, discount, original_price, COALESCE(note, '') FROM incomes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.IncomeRecord
	for rows.Next() {
		var (
			r                    ledger.IncomeRecord
			date                 sql.NullString
			customer             sql.NullInt64
			amt, discount, price string
		)
		if err := rows.Scan(&r.ID, &date, &customer, &amt, &discount, &price, &r.Note); err != nil {
			return nil, err
		}
		if r.Date, err = scanDate(date); err != nil {
			return nil, err
		}
		r.CustomerID = scanEntity(customer)
		if r.Amount, err = scanDecimal(amt); err != nil {
			return nil, err
		}
		if r.Discount, err = scanDecimal(discount); err != nil {
			return nil, err
		}
		if r.OriginalPrice, err = scanDecimal(price); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Remittances(ctx context.Context) ([]ledger.RemittanceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, supplier_id, employee_id, amount, COALESCE(note, '') FROM remittances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.RemittanceRecord
	for rows.Next() {
		var (
			r                  ledger.RemittanceRecord
			date               sql.NullString
			supplier, employee sql.NullInt64
			amt                string
		)
		if err := rows.Scan(&r.ID, &date, &supplier, &employee, &amt, &r.Note); err != nil {
			return nil, err
		}
		if r.Date, err = scanDate(date); err != nil {
			return nil, err
		}
		r.SupplierID = scanEntity(supplier)
		r.EmployeeID = scanEntity(employee)
		if r.Amount, err = scanDecimal(amt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// LEDGER WRITES - data entry
// =============================================================================

// InsertSale stores a sale and returns its assigned id.
func (s *Store) InsertSale(ctx context.Context, r ledger.SaleRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sales (id, date, customer_id, product_name, quantity, amount, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, dateArg(r.Date), entityArg(r.CustomerID), r.ProductName,
		r.Quantity.String(), r.Amount.String(), r.Note)
	return r.ID, err
}

// InsertReturn stores a customer return and returns its assigned id.
func (s *Store) InsertReturn(ctx context.Context, r ledger.ReturnRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO returns (id, date, customer_id, product_name, quantity, amount, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, dateArg(r.Date), entityArg(r.CustomerID), r.ProductName,
		r.Quantity.String(), r.Amount.String(), r.Note)
	return r.ID, err
}

// InsertPurchase stores a purchase (or supplier return, quantity < 0).
func (s *Store) InsertPurchase(ctx context.Context, r ledger.PurchaseRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO purchases (id, date, supplier_id, product_name, quantity, amount, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, dateArg(r.Date), entityArg(r.SupplierID), r.ProductName,
		r.Quantity.String(), r.Amount.String(), r.Note)
	return r.ID, err
}

// InsertIncome stores an income record. Tolerance validation happens at
// the API boundary before this is called.
func (s *Store) InsertIncome(ctx context.Context, r ledger.IncomeRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incomes (id, date, customer_id, amount, discount, original_price, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, dateArg(r.Date), entityArg(r.CustomerID),
		r.Amount.String(), r.Discount.String(), r.OriginalPrice.String(), r.Note)
	return r.ID, err
}

// InsertRemittance stores a remittance record.
func (s *Store) InsertRemittance(ctx context.Context, r ledger.RemittanceRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO remittances (id, date, supplier_id, employee_id, amount, note)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, dateArg(r.Date), entityArg(r.SupplierID), entityArg(r.EmployeeID),
		r.Amount.String(), r.Note)
	return r.ID, err
}

// =============================================================================
// REFERENCE DATA SOURCE
// =============================================================================

func (s *Store) Customers(ctx context.Context) ([]refdata.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, COALESCE(phone, '') FROM customers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []refdata.Customer
	for rows.Next() {
		var c refdata.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Suppliers(ctx context.Context) ([]refdata.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, COALESCE(phone, '') FROM suppliers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []refdata.Supplier
	for rows.Next() {
		var sup refdata.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Phone); err != nil {
			return nil, err
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

func (s *Store) Employees(ctx context.Context) ([]refdata.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM employees`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []refdata.Employee
	for rows.Next() {
		var e refdata.Employee
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Products(ctx context.Context) ([]refdata.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, COALESCE(unit, '') FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []refdata.Product
	for rows.Next() {
		var p refdata.Product
		if err := rows.Scan(&p.Name, &p.Unit); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// REFERENCE DATA WRITES
// =============================================================================

// SaveCustomer inserts or updates a customer.
func (s *Store) SaveCustomer(ctx context.Context, c refdata.Customer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, phone) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, phone=excluded.phone`,
		int64(c.ID), c.Name, c.Phone)
	return err
}

// SaveSupplier inserts or updates a supplier.
func (s *Store) SaveSupplier(ctx context.Context, sup refdata.Supplier) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suppliers (id, name, phone) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, phone=excluded.phone`,
		int64(sup.ID), sup.Name, sup.Phone)
	return err
}

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, e refdata.Employee) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name`,
		int64(e.ID), e.Name)
	return err
}

// SaveProduct inserts or updates a product.
func (s *Store) SaveProduct(ctx context.Context, p refdata.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, unit) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET unit=excluded.unit`,
		p.Name, p.Unit)
	return err
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears every table (dev/demo only).
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{
		"sales", "returns", "purchases", "incomes", "remittances",
		"customers", "suppliers", "employees", "products",
	}
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return err
		}
	}
	return nil
}
