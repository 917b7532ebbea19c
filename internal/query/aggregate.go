package query

import (
	"github.com/shopspring/decimal"

	"salesledger/pkg/domain"
)

// DiscountRate is the fixed share of the matched amount reported as discount.
var DiscountRate = decimal.RequireFromString("0.15")

// Totals are the raw sums a store computes over the records matching a predicate.
type Totals struct {
	Units  int64           `db:"total_units"`
	Amount decimal.Decimal `db:"total_amount"`
	Count  int             `db:"transaction_count"`
}

// Add folds one record into the totals.
func (t *Totals) Add(tx *domain.Transaction) {
	t.Units += int64(tx.Quantity)
	t.Amount = t.Amount.Add(tx.TotalAmount)
	t.Count++
}

// Stats are the aggregate statistics over the records matching a predicate.
type Stats struct {
	TotalUnits       int64           `json:"totalUnits"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TotalDiscount    decimal.Decimal `json:"totalDiscount"`
	TransactionCount int             `json:"transactionCount"`
}

// Stats derives the reported statistics, including the discount.
func (t Totals) Stats() Stats {
	return Stats{
		TotalUnits:       t.Units,
		TotalAmount:      t.Amount,
		TotalDiscount:    Discount(t.Amount),
		TransactionCount: t.Count,
	}
}

// Discount is amount * DiscountRate rounded half-up to a whole currency unit.
func Discount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(DiscountRate).Round(0)
}
