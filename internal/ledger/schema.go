// Package ledger reads and appends the flat CSV file that holds every
// transaction, and derives the dashboard and list views from it.
//
// The file is the single source of truth. Each Load rebuilds a Snapshot from
// scratch; AddTransaction appends one line and never rewrites earlier rows.
package ledger

import (
	"slices"

	"financepilot/internal/core"
)

// Column names as they appear in the header row. The spelling, including
// "Transcation_to", must match existing files byte for byte.
const (
	ColDate            = "Date"
	ColCategory        = "Category"
	ColDescription     = "Description"
	ColPaymentMethod   = "Payment Method"
	ColTransactionTo   = "Transcation_to"
	ColTransactionFrom = "Transaction_From"
	ColIncome          = "Income (RM)"
	ColExpense         = "Expense (RM)"
	ColBalanceMuamalat = "Balance Muamalat(RM)"
	ColBalanceTnG      = "Balance TnG (RM)"
	ColBalanceCash     = "Balance Cash (RM)"
)

var columns = []string{
	ColDate,
	ColCategory,
	ColDescription,
	ColPaymentMethod,
	ColTransactionTo,
	ColTransactionFrom,
	ColIncome,
	ColExpense,
	ColBalanceMuamalat,
	ColBalanceTnG,
	ColBalanceCash,
}

var currencyColumns = []string{
	ColIncome,
	ColExpense,
	ColBalanceMuamalat,
	ColBalanceTnG,
	ColBalanceCash,
}

// Columns returns the header in file order.
func Columns() []string { return slices.Clone(columns) }

// CurrencyColumns returns the columns that go through the currency normalizer.
func CurrencyColumns() []string { return slices.Clone(currencyColumns) }

// IsCurrencyColumn reports whether name is one of CurrencyColumns.
func IsCurrencyColumn(name string) bool { return slices.Contains(currencyColumns, name) }

// RowValues lays tx out in column order the way a new row is written: date as
// MM/DD/YYYY, both income and expense filled, balances left blank.
func RowValues(tx core.Transaction) []string {
	row := make([]string, len(columns))
	row[0] = tx.Date.Disk()
	row[1] = tx.Category
	row[2] = tx.Description
	row[3] = tx.PaymentMethod.String()
	row[4] = tx.TransactionTo
	row[5] = tx.TransactionFrom
	row[6] = core.FormatAmount(tx.Income)
	row[7] = core.FormatAmount(tx.Expense)
	return row
}
