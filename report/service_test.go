package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocio/agrisale/ledger"
	"github.com/flocio/agrisale/ledger/store"
	"github.com/flocio/agrisale/refdata"
	"github.com/flocio/agrisale/report"
)

// =============================================================================
// FIXTURE - One small shop month in a memory store
// =============================================================================

func fixtureStore() *store.Memory {
	m := store.NewMemory()

	m.AddCustomer(refdata.Customer{ID: 1, Name: "Wang Farm Store"})
	m.AddCustomer(refdata.Customer{ID: 2, Name: "Li Grocery"})
	m.AddSupplier(refdata.Supplier{ID: 10, Name: "North Mill"})
	m.AddProduct(refdata.Product{Name: "Rice", Unit: "kg"})
	m.AddProduct(refdata.Product{Name: "Flour", Unit: "bag"})

	m.AddSale(ledger.SaleRecord{ID: "s1", Date: jan(1), CustomerID: ptr(ledger.EntityID(1)), ProductName: "Rice", Quantity: dec(10), Amount: dec(500)})
	m.AddSale(ledger.SaleRecord{ID: "s2", Date: jan(2), CustomerID: ptr(ledger.EntityID(2)), ProductName: "Flour", Quantity: dec(5), Amount: dec(200)})
	m.AddReturn(ledger.ReturnRecord{ID: "r1", Date: jan(1), CustomerID: ptr(ledger.EntityID(1)), ProductName: "Rice", Quantity: dec(1), Amount: dec(50)})
	m.AddPurchase(ledger.PurchaseRecord{ID: "p1", Date: jan(3), SupplierID: ptr(ledger.EntityID(10)), ProductName: "Rice", Quantity: dec(50), Amount: dec(1500)})
	// supplier return, encoded as negative quantity in the purchase ledger
	m.AddPurchase(ledger.PurchaseRecord{ID: "p2", Date: jan(4), SupplierID: ptr(ledger.EntityID(10)), ProductName: "Rice", Quantity: dec(-2), Amount: dec(60)})
	m.AddIncome(ledger.IncomeRecord{ID: "i1", Date: jan(1), CustomerID: ptr(ledger.EntityID(1)), Amount: dec(400), Discount: dec(50)})
	m.AddRemittance(ledger.RemittanceRecord{ID: "m1", Date: jan(5), SupplierID: ptr(ledger.EntityID(10)), Amount: dec(1000)})

	return m
}

func fixtureService() *report.Service {
	m := fixtureStore()
	return report.NewService(m, m)
}

// =============================================================================
// AGGREGATED REPORTS
// =============================================================================

func TestService_SalesValueByEntity(t *testing.T) {
	svc := fixtureService()

	rep, err := svc.SalesValue(context.Background(), report.Request{
		GroupBy: report.GroupBy{Entity: true},
	})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	// entity 1: 500 sale - 50 return = 450
	assert.Equal(t, "Wang Farm Store", rep.Rows[0].EntityName)
	assert.True(t, rep.Rows[0].Summary.TotalAmount.Equal(dec(450)))
	assert.Equal(t, "Li Grocery", rep.Rows[1].EntityName)
	assert.True(t, rep.Rows[1].Summary.TotalAmount.Equal(dec(200)))
	assert.True(t, rep.Summary.TotalAmount.Equal(dec(650)))
}

func TestService_StockMovementByProduct(t *testing.T) {
	svc := fixtureService()

	rep, err := svc.StockMovement(context.Background(), report.Request{
		GroupBy: report.GroupBy{Product: true},
		SortBy:  report.SortByLabel, SortAscending: true,
	})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	// Flour: -5 sold
	assert.Equal(t, "Flour", rep.Rows[0].Key.ProductName)
	assert.Equal(t, "bag", rep.Rows[0].Unit)
	assert.True(t, rep.Rows[0].Summary.TotalQuantity.Equal(dec(-5)))

	// Rice: -10 sold +1 customer return +50 purchased -2 supplier return = 39
	assert.Equal(t, "Rice", rep.Rows[1].Key.ProductName)
	assert.Equal(t, "kg", rep.Rows[1].Unit)
	assert.True(t, rep.Rows[1].Summary.TotalQuantity.Equal(dec(39)),
		"want 39, got %s", rep.Rows[1].Summary.TotalQuantity)
}

func TestService_FilterNarrowsBeforeAggregation(t *testing.T) {
	svc := fixtureService()

	rep, err := svc.SalesValue(context.Background(), report.Request{
		EntityID: ptr(ledger.EntityID(1)),
		GroupBy:  report.GroupBy{Entity: true},
	})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.True(t, rep.Summary.TotalAmount.Equal(dec(450)))
}

func TestService_InvalidDateRange_FailsBeforeFetch(t *testing.T) {
	svc := fixtureService()

	_, err := svc.SalesValue(context.Background(), report.Request{
		Dates: &report.DateRange{Start: jan(10), End: jan(1)},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidDateRange)
}

// =============================================================================
// LISTINGS
// =============================================================================

func TestService_PurchaseListingIncludesSupplierReturnsOnly(t *testing.T) {
	svc := fixtureService()

	rep, err := svc.Listing(context.Background(),
		[]ledger.Kind{ledger.KindPurchase, ledger.KindReturn},
		ledger.PartySupplier,
		report.Request{})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2, "purchase + supplier return, never customer returns")

	for _, row := range rep.Rows {
		assert.Equal(t, ledger.PartySupplier, row.Tx.Party)
	}
	// local convention: both rows count positive
	assert.True(t, rep.Summary.TotalAmount.Equal(dec(1560)))
	assert.True(t, rep.Summary.TotalQuantity.Equal(dec(52)))
}

func TestService_IncomeListingJoinsCustomerName(t *testing.T) {
	svc := fixtureService()

	rep, err := svc.Listing(context.Background(),
		[]ledger.Kind{ledger.KindIncome}, ledger.PartyCustomer, report.Request{})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "Wang Farm Store", rep.Rows[0].EntityName)
	assert.True(t, rep.Summary.TotalDiscount.Equal(dec(50)))
}

// =============================================================================
// RECONCILIATION
// =============================================================================

func TestService_CustomerReconciliation(t *testing.T) {
	// Jan 1, entity 1: theoretical 450 (500 sale - 50 return),
	// settled 400 payment + 50 discount, difference exactly zero.
	svc := fixtureService()

	rep, err := svc.CustomerReconciliation(context.Background(), report.Request{})
	require.NoError(t, err)

	// jan 1 entity 1 plus the one-sided jan 2 entity 2 sale
	require.Len(t, rep.Rows, 2)

	r := rep.Rows[0]
	assert.Equal(t, jan(1).String(), r.Key.Date.String())
	assert.Equal(t, "Wang Farm Store", r.EntityName)
	assert.True(t, r.TheoreticalPayable.Equal(dec(450)))
	assert.True(t, r.ActualPayment.Equal(dec(400)))
	assert.True(t, r.TotalDiscount.Equal(dec(50)))
	assert.True(t, r.Difference.IsZero())

	// entity 2 sold but never paid: full amount still owed
	assert.True(t, rep.Rows[1].Difference.Equal(dec(200)))
	assert.True(t, rep.Totals.Difference.Equal(dec(200)))
}

func TestService_SupplierReconciliation(t *testing.T) {
	svc := fixtureService()

	rep, err := svc.SupplierReconciliation(context.Background(), report.Request{})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 3) // purchase day, return day, payment day

	// net payable 1500 - 60 = 1440, paid 1000: 440 still owed overall
	assert.True(t, rep.Totals.TheoreticalPayable.Equal(dec(1440)))
	assert.True(t, rep.Totals.ActualPayment.Equal(dec(1000)))
	assert.True(t, rep.Totals.Difference.Equal(dec(440)))
}

// =============================================================================
// FETCH BOUNDARY - Fail-fast and cancellation
// =============================================================================

// failingSource fails exactly one ledger fetch and serves the rest empty.
type failingSource struct {
	failOn string
	err    error
}

func (f *failingSource) Sales(ctx context.Context) ([]ledger.SaleRecord, error) {
	if f.failOn == "sales" {
		return nil, f.err
	}
	return nil, nil
}

func (f *failingSource) Returns(ctx context.Context) ([]ledger.ReturnRecord, error) {
	if f.failOn == "returns" {
		return nil, f.err
	}
	return nil, nil
}

func (f *failingSource) Purchases(ctx context.Context) ([]ledger.PurchaseRecord, error) {
	if f.failOn == "purchases" {
		return nil, f.err
	}
	return nil, nil
}

func (f *failingSource) Incomes(ctx context.Context) ([]ledger.IncomeRecord, error) {
	if f.failOn == "incomes" {
		return nil, f.err
	}
	return nil, nil
}

func (f *failingSource) Remittances(ctx context.Context) ([]ledger.RemittanceRecord, error) {
	if f.failOn == "remittances" {
		return nil, f.err
	}
	return nil, nil
}

func TestService_OneFailedFetchFailsTheWholeReport(t *testing.T) {
	// GIVEN: The purchases ledger fetch fails
	// WHEN: Building any report
	// THEN: The whole report fails with a FetchError naming the ledger;
	//       no partial snapshot ever aggregates
	boom := errors.New("connection reset")
	src := &failingSource{failOn: "purchases", err: boom}
	svc := report.NewService(src, store.NewMemory())

	_, err := svc.SalesValue(context.Background(), report.Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	var ferr *ledger.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "purchases", ferr.Ledger)
}

func TestService_CanceledContext_DiscardsResult(t *testing.T) {
	svc := fixtureService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SalesValue(ctx, report.Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// DANGLING REFERENCES
// =============================================================================

func TestService_DanglingEntityResolvesToUnknown(t *testing.T) {
	m := store.NewMemory()
	// entity 99 has no customer record; one sale has no customer at all
	m.AddSale(ledger.SaleRecord{ID: "s1", Date: jan(1), CustomerID: ptr(ledger.EntityID(99)), ProductName: "Rice", Quantity: dec(1), Amount: dec(50)})
	m.AddSale(ledger.SaleRecord{ID: "s2", Date: jan(1), ProductName: "Rice", Quantity: dec(2), Amount: dec(100)})
	svc := report.NewService(m, m)

	rep, err := svc.SalesValue(context.Background(), report.Request{
		GroupBy: report.GroupBy{Entity: true},
	})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	assert.Equal(t, ledger.EntityUnknown, rep.Rows[0].Key.EntityID)
	assert.Equal(t, refdata.UnknownName, rep.Rows[0].EntityName)
	assert.Equal(t, refdata.UnknownName, rep.Rows[1].EntityName, "dangling id joins as unknown")
	assert.True(t, rep.Summary.TotalAmount.Equal(dec(150)), "aggregation still completes")
}
