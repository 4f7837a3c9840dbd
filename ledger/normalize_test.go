package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocio/agrisale/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func entity(id int64) *ledger.EntityID {
	e := ledger.EntityID(id)
	return &e
}

func jan(day int) ledger.Date { return ledger.NewDate(2024, time.January, day) }

// =============================================================================
// SALES / RETURNS
// =============================================================================

func TestNormalizeSales_MapsCanonicalFields(t *testing.T) {
	txs, err := ledger.NormalizeSales([]ledger.SaleRecord{
		{ID: "s1", Date: jan(1), CustomerID: entity(1), ProductName: "Rice", Quantity: dec(10), Amount: dec(500), Note: "cash"},
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, ledger.KindSale, tx.Kind)
	assert.Equal(t, ledger.PartyCustomer, tx.Party)
	assert.Equal(t, ledger.EntityID(1), tx.EntityID)
	assert.Equal(t, "Rice", tx.ProductName)
	assert.True(t, tx.Quantity.Equal(dec(10)))
	assert.True(t, tx.Amount.Equal(dec(500)))
	assert.Equal(t, "cash", tx.Note)
}

func TestNormalizeSales_NilCustomer_ResolvesToUnknownSentinel(t *testing.T) {
	txs, err := ledger.NormalizeSales([]ledger.SaleRecord{
		{ID: "s1", Date: jan(1), ProductName: "Rice", Quantity: dec(1), Amount: dec(50)},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.EntityUnknown, txs[0].EntityID)
}

func TestNormalizeSales_MissingDate_KeptAsUndated(t *testing.T) {
	// GIVEN: A sale record with no date
	// WHEN: Normalizing
	// THEN: The transaction survives with a zero date (excluded from
	//       date-keyed views, still counted in totals)
	txs, err := ledger.NormalizeSales([]ledger.SaleRecord{
		{ID: "s1", ProductName: "Rice", Quantity: dec(1), Amount: dec(50)},
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Date.IsZero())
}

func TestNormalizeSales_NegativeAmount_IsMalformed(t *testing.T) {
	_, err := ledger.NormalizeSales([]ledger.SaleRecord{
		{ID: "s1", Date: jan(1), ProductName: "Rice", Quantity: dec(1), Amount: dec(-50)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrMalformedRecord)
}

// =============================================================================
// PURCHASE SPLIT - The one place sign encodes meaning
// =============================================================================

func TestNormalizePurchases_PositiveQuantity_StaysPurchase(t *testing.T) {
	txs, err := ledger.NormalizePurchases([]ledger.PurchaseRecord{
		{ID: "p1", Date: jan(1), SupplierID: entity(10), ProductName: "Rice", Quantity: dec(50), Amount: dec(1500)},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.KindPurchase, txs[0].Kind)
	assert.Equal(t, ledger.PartySupplier, txs[0].Party)
}

func TestNormalizePurchases_NegativeQuantity_SplitsIntoSupplierReturn(t *testing.T) {
	// GIVEN: A purchase record with quantity -10
	// WHEN: Normalizing
	// THEN: It becomes a Return with absolute quantity 10, never a
	//       negative-quantity Purchase
	txs, err := ledger.NormalizePurchases([]ledger.PurchaseRecord{
		{ID: "p1", Date: jan(1), SupplierID: entity(10), ProductName: "Rice", Quantity: dec(-10), Amount: dec(300)},
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, ledger.KindReturn, tx.Kind)
	assert.Equal(t, ledger.PartySupplier, tx.Party)
	assert.True(t, tx.Quantity.Equal(dec(10)), "quantity must be absolute, got %s", tx.Quantity)
	assert.False(t, tx.Quantity.IsNegative())
}

// =============================================================================
// INCOMES / REMITTANCES
// =============================================================================

func TestNormalizeIncomes_CarriesDiscount(t *testing.T) {
	txs, err := ledger.NormalizeIncomes([]ledger.IncomeRecord{
		{ID: "i1", Date: jan(1), CustomerID: entity(1), Amount: dec(400), Discount: dec(50)},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.KindIncome, txs[0].Kind)
	assert.True(t, txs[0].Discount.Equal(dec(50)))
}

func TestNormalizeRemittances_EmployeeFallback(t *testing.T) {
	// A remittance with only an employee reference is a payroll-style
	// payment, not a supplier payment.
	txs, err := ledger.NormalizeRemittances([]ledger.RemittanceRecord{
		{ID: "r1", Date: jan(1), EmployeeID: entity(20), Amount: dec(300)},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.PartyEmployee, txs[0].Party)
	assert.Equal(t, ledger.EntityID(20), txs[0].EntityID)
}

func TestRecordSet_Normalize_AbortsOnAnyMalformedRecord(t *testing.T) {
	// All-or-nothing: one bad record anywhere fails the whole snapshot.
	rs := ledger.RecordSet{
		Sales:   []ledger.SaleRecord{{ID: "s1", Date: jan(1), ProductName: "Rice", Quantity: dec(1), Amount: dec(50)}},
		Incomes: []ledger.IncomeRecord{{ID: "i1", Date: jan(1), Amount: dec(-1)}},
	}
	_, err := rs.Normalize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrMalformedRecord)
}

// =============================================================================
// DATE SEMANTICS
// =============================================================================

func TestDate_ComparisonsAreDayGrained(t *testing.T) {
	a := jan(5)
	b := jan(5)
	c := jan(6)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Before(c))
	assert.True(t, c.After(a))
	assert.True(t, a.BeforeOrEqual(b))
	assert.True(t, a.AfterOrEqual(b))
}

func TestParseDate_RoundTrips(t *testing.T) {
	d, err := ledger.ParseDate("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", d.String())
	assert.True(t, d.Equal(jan(5)))
}
