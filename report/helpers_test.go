package report_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flocio/agrisale/ledger"
)

// Shared builders for the report package tests.

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func jan(day int) ledger.Date { return ledger.NewDate(2024, time.January, day) }

func ptr[T any](v T) *T { return &v }

func tx(kind ledger.Kind, party ledger.Party, date ledger.Date, entity int64, product string, qty, amount int64) ledger.Transaction {
	return ledger.Transaction{
		ID:          string(kind) + "-" + product,
		Kind:        kind,
		Party:       party,
		Date:        date.Normalized(),
		EntityID:    ledger.EntityID(entity),
		ProductName: product,
		Quantity:    dec(qty),
		Amount:      dec(amount),
		Discount:    decimal.Zero,
	}
}
