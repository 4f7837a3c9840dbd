package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocio/agrisale/ledger"
)

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact match", "100", "100", true},
		{"inside tolerance", "100.00", "100.01", true},
		{"at tolerance boundary", "100.00", "99.99", true},
		{"outside tolerance", "100.00", "100.02", false},
		{"far apart", "100", "80", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := decimal.RequireFromString(tt.a)
			b := decimal.RequireFromString(tt.b)
			assert.Equal(t, tt.want, ledger.WithinTolerance(a, b))
		})
	}
}

func TestValidateIncome_SettlementMatchesDeclaredPrice(t *testing.T) {
	// GIVEN: A declared price of 100 settled as 80 payment + 20 discount
	// WHEN: Validating
	// THEN: The entry is accepted
	err := ledger.ValidateIncome(ledger.IncomeRecord{
		ID:            "i1",
		Amount:        decimal.NewFromInt(80),
		Discount:      decimal.NewFromInt(20),
		OriginalPrice: decimal.NewFromInt(100),
	})
	assert.NoError(t, err)
}

func TestValidateIncome_SettlementShortfall_IsRejected(t *testing.T) {
	err := ledger.ValidateIncome(ledger.IncomeRecord{
		ID:            "i1",
		Amount:        decimal.NewFromInt(80),
		Discount:      decimal.NewFromInt(10),
		OriginalPrice: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrToleranceViolation)

	var terr *ledger.ToleranceError
	require.ErrorAs(t, err, &terr)
	assert.True(t, terr.Declared.Equal(decimal.NewFromInt(100)))
	assert.True(t, terr.Settled.Equal(decimal.NewFromInt(90)))
}

func TestValidateIncome_NoDeclaredPrice_SkipsCheck(t *testing.T) {
	// A zero original price means "not declared", not "free of charge".
	err := ledger.ValidateIncome(ledger.IncomeRecord{
		ID:     "i1",
		Amount: decimal.NewFromInt(80),
	})
	assert.NoError(t, err)
}

func TestIsClientError_CoversValidationSentinels(t *testing.T) {
	assert.True(t, ledger.IsClientError(ledger.ErrMalformedRecord))
	assert.True(t, ledger.IsClientError(ledger.ErrToleranceViolation))
	assert.True(t, ledger.IsClientError(ledger.ErrInvalidDateRange))
	assert.False(t, ledger.IsClientError(ledger.ErrFetchFailed))
}
