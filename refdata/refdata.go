/*
Package refdata provides reference data (customers, suppliers,
employees, products) and the join rules reports use to resolve ids.

PURPOSE:
  Ledger records reference counterparties by integer id and products by
  name. Reports join those references to display names and units. The
  one rule that matters: A DANGLING REFERENCE NEVER FAILS A REPORT. A
  missing id resolves to the Unknown sentinel entity (id -1) so
  aggregation always completes.

SEE ALSO:
  - ledger package: EntityUnknown sentinel
  - store/sqlite: Persistent implementation of Source
*/
package refdata

import (
	"context"

	"github.com/flocio/agrisale/ledger"
)

// =============================================================================
// REFERENCE RECORDS
// =============================================================================

type Customer struct {
	ID    ledger.EntityID
	Name  string
	Phone string
}

type Supplier struct {
	ID    ledger.EntityID
	Name  string
	Phone string
}

type Employee struct {
	ID   ledger.EntityID
	Name string
}

type Product struct {
	Name string
	Unit string // e.g. "kg", "bag"
}

// UnknownName is the display name of the sentinel entity.
const UnknownName = "unknown"

// =============================================================================
// SOURCE - External reference-data fetch boundary
// =============================================================================

type Source interface {
	Customers(ctx context.Context) ([]Customer, error)
	Suppliers(ctx context.Context) ([]Supplier, error)
	Employees(ctx context.Context) ([]Employee, error)
	Products(ctx context.Context) ([]Product, error)
}

// =============================================================================
// DIRECTORY - One fetched snapshot, joined by exact id/name match
// =============================================================================

// Directory is an immutable id->name index built from one snapshot.
// Lookups never fail: a missing key resolves to the Unknown sentinel.
type Directory struct {
	customers map[ledger.EntityID]Customer
	suppliers map[ledger.EntityID]Supplier
	employees map[ledger.EntityID]Employee
	products  map[string]Product
}

func NewDirectory(customers []Customer, suppliers []Supplier, employees []Employee, products []Product) *Directory {
	d := &Directory{
		customers: make(map[ledger.EntityID]Customer, len(customers)),
		suppliers: make(map[ledger.EntityID]Supplier, len(suppliers)),
		employees: make(map[ledger.EntityID]Employee, len(employees)),
		products:  make(map[string]Product, len(products)),
	}
	for _, c := range customers {
		d.customers[c.ID] = c
	}
	for _, s := range suppliers {
		d.suppliers[s.ID] = s
	}
	for _, e := range employees {
		d.employees[e.ID] = e
	}
	for _, p := range products {
		d.products[p.Name] = p
	}
	return d
}

// Load fetches all reference data and builds a Directory.
func Load(ctx context.Context, src Source) (*Directory, error) {
	customers, err := src.Customers(ctx)
	if err != nil {
		return nil, err
	}
	suppliers, err := src.Suppliers(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := src.Employees(ctx)
	if err != nil {
		return nil, err
	}
	products, err := src.Products(ctx)
	if err != nil {
		return nil, err
	}
	return NewDirectory(customers, suppliers, employees, products), nil
}

// EntityName resolves an entity reference to a display name for the
// given party role. Never fails; dangling ids resolve to UnknownName.
func (d *Directory) EntityName(party ledger.Party, id ledger.EntityID) string {
	switch party {
	case ledger.PartyCustomer:
		if c, ok := d.customers[id]; ok {
			return c.Name
		}
	case ledger.PartySupplier:
		if s, ok := d.suppliers[id]; ok {
			return s.Name
		}
	case ledger.PartyEmployee:
		if e, ok := d.employees[id]; ok {
			return e.Name
		}
	}
	return UnknownName
}

// ProductUnit resolves a product's unit of measure, empty when unknown.
func (d *Directory) ProductUnit(name string) string {
	if p, ok := d.products[name]; ok {
		return p.Unit
	}
	return ""
}
