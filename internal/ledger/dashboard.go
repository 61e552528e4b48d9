package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"financepilot/internal/core"
)

// TotalBalance sums the three account balances of the last row in load order.
// It reads the latest snapshot the user typed in; it does not replay income
// and expense deltas. An empty ledger yields an invalid NullDecimal ("no
// data"), which callers must keep apart from a valid zero.
func TotalBalance(txs []core.Transaction) decimal.NullDecimal {
	if len(txs) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: txs[len(txs)-1].Balances.Total(), Valid: true}
}

// Dashboard is the summary shown above the transaction list.
type Dashboard struct {
	TotalBalance   decimal.NullDecimal
	Latest         core.Balances // balances of the last row, zero when empty
	IncomeTotal    decimal.Decimal
	ExpenseTotal   decimal.Decimal
	Transactions   int
	MalformedRows  int
	MissingColumns []string
	SyncedAt       time.Time
}

// BuildDashboard derives the summary from one snapshot.
func BuildDashboard(snap *Snapshot) Dashboard {
	txs := snap.Transactions()
	d := Dashboard{
		TotalBalance:   TotalBalance(txs),
		IncomeTotal:    decimal.Zero,
		ExpenseTotal:   decimal.Zero,
		Transactions:   len(txs),
		MalformedRows:  len(snap.malformed),
		MissingColumns: snap.MissingColumns(),
		SyncedAt:       snap.LoadedAt(),
	}
	if last, ok := snap.Last(); ok {
		d.Latest = last.Balances
	}
	for _, tx := range txs {
		d.IncomeTotal = d.IncomeTotal.Add(tx.Income)
		d.ExpenseTotal = d.ExpenseTotal.Add(tx.Expense)
	}
	return d
}

// TotalBalanceText renders the total for display, or "No data" when the
// ledger is empty.
func (d Dashboard) TotalBalanceText() string {
	if !d.TotalBalance.Valid {
		return "No data"
	}
	return core.FormatRinggit(d.TotalBalance.Decimal)
}
