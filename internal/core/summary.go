package core

import "github.com/shopspring/decimal"

// Balances holds the three running account balances of a row.
type Balances struct {
	Muamalat decimal.Decimal
	TnG      decimal.Decimal
	Cash     decimal.Decimal
}

// Total sums the three accounts.
func (b Balances) Total() decimal.Decimal {
	return b.Muamalat.Add(b.TnG).Add(b.Cash)
}
