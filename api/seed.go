/*
seed.go - Demo dataset for manual exploration

PURPOSE:
  Loads a small coherent dataset (two customers, two suppliers, two
  products, a few days of trading) so every report endpoint returns
  something meaningful on a fresh database. Dev convenience only;
  nothing in the engine depends on it.
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flocio/agrisale/ledger"
	"github.com/flocio/agrisale/refdata"
)

// LoadSeed resets the database and loads the demo dataset.
func (h *Handler) LoadSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.writeError(w, "failed to reset before seeding", err)
		return
	}
	if err := h.seed(ctx); err != nil {
		h.writeError(w, "failed to seed database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeError(w, "failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) seed(ctx context.Context) error {
	dec := decimal.NewFromInt
	entity := func(id int64) *ledger.EntityID {
		e := ledger.EntityID(id)
		return &e
	}
	day := func(d int) ledger.Date { return ledger.NewDate(2024, time.January, d) }

	for _, c := range []refdata.Customer{
		{ID: 1, Name: "Wang Farm Store", Phone: "13800000001"},
		{ID: 2, Name: "Li Grocery", Phone: "13800000002"},
	} {
		if err := h.Store.SaveCustomer(ctx, c); err != nil {
			return err
		}
	}
	for _, s := range []refdata.Supplier{
		{ID: 10, Name: "Golden Grain Wholesale"},
		{ID: 11, Name: "Northern Mill"},
	} {
		if err := h.Store.SaveSupplier(ctx, s); err != nil {
			return err
		}
	}
	if err := h.Store.SaveEmployee(ctx, refdata.Employee{ID: 20, Name: "Zhao"}); err != nil {
		return err
	}
	for _, p := range []refdata.Product{
		{Name: "Rice", Unit: "bag"},
		{Name: "Flour", Unit: "bag"},
	} {
		if err := h.Store.SaveProduct(ctx, p); err != nil {
			return err
		}
	}

	sales := []ledger.SaleRecord{
		{Date: day(1), CustomerID: entity(1), ProductName: "Rice", Quantity: dec(10), Amount: dec(500)},
		{Date: day(1), CustomerID: entity(2), ProductName: "Flour", Quantity: dec(5), Amount: dec(200)},
		{Date: day(2), CustomerID: entity(1), ProductName: "Rice", Quantity: dec(4), Amount: dec(200)},
	}
	for _, s := range sales {
		if _, err := h.Store.InsertSale(ctx, s); err != nil {
			return err
		}
	}

	returns := []ledger.ReturnRecord{
		{Date: day(1), CustomerID: entity(1), ProductName: "Rice", Quantity: dec(1), Amount: dec(50)},
	}
	for _, r := range returns {
		if _, err := h.Store.InsertReturn(ctx, r); err != nil {
			return err
		}
	}

	purchases := []ledger.PurchaseRecord{
		{Date: day(1), SupplierID: entity(10), ProductName: "Rice", Quantity: dec(50), Amount: dec(1500)},
		// Negative quantity: two bags sent back to the supplier.
		{Date: day(2), SupplierID: entity(10), ProductName: "Rice", Quantity: dec(-2), Amount: dec(60)},
		{Date: day(2), SupplierID: entity(11), ProductName: "Flour", Quantity: dec(30), Amount: dec(900)},
	}
	for _, p := range purchases {
		if _, err := h.Store.InsertPurchase(ctx, p); err != nil {
			return err
		}
	}

	incomes := []ledger.IncomeRecord{
		{Date: day(1), CustomerID: entity(1), Amount: dec(400), Discount: dec(50), OriginalPrice: dec(450)},
		{Date: day(2), CustomerID: entity(2), Amount: dec(200)},
	}
	for _, i := range incomes {
		if _, err := h.Store.InsertIncome(ctx, i); err != nil {
			return err
		}
	}

	remittances := []ledger.RemittanceRecord{
		{Date: day(2), SupplierID: entity(10), Amount: dec(1000)},
		{Date: day(3), EmployeeID: entity(20), Amount: dec(300), Note: "wages"},
	}
	for _, rm := range remittances {
		if _, err := h.Store.InsertRemittance(ctx, rm); err != nil {
			return err
		}
	}

	return nil
}
