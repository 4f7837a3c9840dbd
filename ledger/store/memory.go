// Package store provides Source implementations.
package store

import (
	"context"
	"sync"

	"github.com/flocio/agrisale/ledger"
	"github.com/flocio/agrisale/refdata"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ledger.Source and refdata.Source over in-memory
// slices. Fetches return copies, so a snapshot handed to a report can
// never observe later writes.
type Memory struct {
	mu sync.RWMutex

	sales       []ledger.SaleRecord
	returns     []ledger.ReturnRecord
	purchases   []ledger.PurchaseRecord
	incomes     []ledger.IncomeRecord
	remittances []ledger.RemittanceRecord

	customers []refdata.Customer
	suppliers []refdata.Supplier
	employees []refdata.Employee
	products  []refdata.Product
}

func NewMemory() *Memory {
	return &Memory{}
}

func copied[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// ----- ledger.Source -----

func (m *Memory) Sales(_ context.Context) ([]ledger.SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.sales), nil
}

func (m *Memory) Returns(_ context.Context) ([]ledger.ReturnRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.returns), nil
}

func (m *Memory) Purchases(_ context.Context) ([]ledger.PurchaseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.purchases), nil
}

func (m *Memory) Incomes(_ context.Context) ([]ledger.IncomeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.incomes), nil
}

func (m *Memory) Remittances(_ context.Context) ([]ledger.RemittanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.remittances), nil
}

// ----- refdata.Source -----

func (m *Memory) Customers(_ context.Context) ([]refdata.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.customers), nil
}

func (m *Memory) Suppliers(_ context.Context) ([]refdata.Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.suppliers), nil
}

func (m *Memory) Employees(_ context.Context) ([]refdata.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.employees), nil
}

func (m *Memory) Products(_ context.Context) ([]refdata.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copied(m.products), nil
}

// ----- writes -----

func (m *Memory) AddSale(r ledger.SaleRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = append(m.sales, r)
}

func (m *Memory) AddReturn(r ledger.ReturnRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returns = append(m.returns, r)
}

func (m *Memory) AddPurchase(r ledger.PurchaseRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases = append(m.purchases, r)
}

func (m *Memory) AddIncome(r ledger.IncomeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incomes = append(m.incomes, r)
}

func (m *Memory) AddRemittance(r ledger.RemittanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remittances = append(m.remittances, r)
}

func (m *Memory) AddCustomer(c refdata.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, c)
}

func (m *Memory) AddSupplier(s refdata.Supplier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppliers = append(m.suppliers, s)
}

func (m *Memory) AddEmployee(e refdata.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = append(m.employees, e)
}

func (m *Memory) AddProduct(p refdata.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, p)
}
