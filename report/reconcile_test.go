package report_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocio/agrisale/report"
)

func payableSide(amount int64, key report.GroupKey) map[report.GroupKey]report.Summary {
	return map[report.GroupKey]report.Summary{
		key: {RecordCount: 1, TotalAmount: dec(amount), TotalQuantity: decimal.Zero, TotalDiscount: decimal.Zero},
	}
}

// =============================================================================
// SIGN LAW - difference = theoretical - (payment + discount)
// =============================================================================

func TestReconcile_DiscountCountsAsSettled(t *testing.T) {
	// GIVEN: 100 theoretically owed, settled as 80 payment + 20 discount
	// WHEN: Reconciling
	// THEN: The difference is exactly zero
	key := report.GroupKey{Date: jan(1), EntityID: 1}
	payable := payableSide(100, key)
	payment := map[report.GroupKey]report.Summary{
		key: {RecordCount: 1, TotalAmount: dec(80), TotalDiscount: dec(20)},
	}

	rows := report.Reconcile(payable, payment)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.True(t, r.TheoreticalPayable.Equal(dec(100)))
	assert.True(t, r.ActualPayment.Equal(dec(80)))
	assert.True(t, r.TotalDiscount.Equal(dec(20)))
	assert.True(t, r.ActualPayable().Equal(dec(100)))
	assert.True(t, r.Difference.IsZero(), "100 - (80+20) must be 0, got %s", r.Difference)
}

func TestReconcile_PositiveDifferenceMeansStillOwed(t *testing.T) {
	key := report.GroupKey{Date: jan(1), EntityID: 1}
	rows := report.Reconcile(
		payableSide(100, key),
		map[report.GroupKey]report.Summary{key: {RecordCount: 1, TotalAmount: dec(60)}},
	)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Difference.Equal(dec(40)), "shortfall must be positive")
}

func TestReconcile_NegativeDifferenceMeansOverpaid(t *testing.T) {
	key := report.GroupKey{Date: jan(1), EntityID: 1}
	rows := report.Reconcile(
		payableSide(100, key),
		map[report.GroupKey]report.Summary{key: {RecordCount: 1, TotalAmount: dec(120)}},
	)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Difference.Equal(dec(-20)), "overpayment must be negative")
}

// =============================================================================
// ONE-SIDED KEYS - Union join, zero defaults
// =============================================================================

func TestReconcile_PayableWithoutPayment(t *testing.T) {
	key := report.GroupKey{Date: jan(1), EntityID: 1}
	rows := report.Reconcile(payableSide(100, key), nil)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.True(t, r.ActualPayment.IsZero())
	assert.True(t, r.TotalDiscount.IsZero())
	assert.True(t, r.Difference.Equal(dec(100)))
}

func TestReconcile_PaymentWithoutPayable(t *testing.T) {
	// A prepayment day: money in, nothing sold yet.
	key := report.GroupKey{Date: jan(1), EntityID: 1}
	rows := report.Reconcile(nil,
		map[report.GroupKey]report.Summary{key: {RecordCount: 1, TotalAmount: dec(50)}},
	)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.True(t, r.TheoreticalPayable.IsZero())
	assert.True(t, r.Difference.Equal(dec(-50)))
}

func TestReconcile_DeterministicOrder(t *testing.T) {
	payable := map[report.GroupKey]report.Summary{
		{Date: jan(2), EntityID: 1}: {TotalAmount: dec(10)},
		{Date: jan(1), EntityID: 2}: {TotalAmount: dec(10)},
		{Date: jan(1), EntityID: 1}: {TotalAmount: dec(10)},
	}

	rows := report.Reconcile(payable, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, report.GroupKey{Date: jan(1), EntityID: 1}, rows[0].Key)
	assert.Equal(t, report.GroupKey{Date: jan(1), EntityID: 2}, rows[1].Key)
	assert.Equal(t, report.GroupKey{Date: jan(2), EntityID: 1}, rows[2].Key)
}

// =============================================================================
// TOTALS
// =============================================================================

func TestAssembleReconciliation_TotalsAreColumnSums(t *testing.T) {
	k1 := report.GroupKey{Date: jan(1), EntityID: 1}
	k2 := report.GroupKey{Date: jan(2), EntityID: 1}
	payable := map[report.GroupKey]report.Summary{
		k1: {TotalAmount: dec(100)},
		k2: {TotalAmount: dec(200)},
	}
	payment := map[report.GroupKey]report.Summary{
		k1: {TotalAmount: dec(80), TotalDiscount: dec(20)},
	}

	rep := report.AssembleReconciliation(report.Reconcile(payable, payment))

	assert.True(t, rep.Totals.TheoreticalPayable.Equal(dec(300)))
	assert.True(t, rep.Totals.ActualPayment.Equal(dec(80)))
	assert.True(t, rep.Totals.TotalDiscount.Equal(dec(20)))
	assert.True(t, rep.Totals.Difference.Equal(dec(200)))
}
