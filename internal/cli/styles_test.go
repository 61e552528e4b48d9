package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financepilot/internal/core"
	"financepilot/internal/ledger"
	"financepilot/internal/storage"
)

func TestRenderDashboardEmpty(t *testing.T) {
	out := RenderDashboard(ledger.Dashboard{})

	assert.Contains(t, out, "No data")
	assert.NotContains(t, out, "Last sync")
	assert.NotContains(t, out, "skipped")
}

func TestRenderDashboard(t *testing.T) {
	d := ledger.Dashboard{
		TotalBalance: decimal.NewNullDecimal(decimal.RequireFromString("1022.50")),
		Latest: core.Balances{
			Muamalat: decimal.RequireFromString("1000"),
			TnG:      decimal.RequireFromString("20"),
			Cash:     decimal.RequireFromString("2.50"),
		},
		IncomeTotal:    decimal.RequireFromString("3000"),
		ExpenseTotal:   decimal.RequireFromString("15.50"),
		Transactions:   4,
		MalformedRows:  2,
		MissingColumns: []string{ledger.ColBalanceTnG},
		SyncedAt:       time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC),
	}

	out := RenderDashboard(d)

	assert.Contains(t, out, "RM 1,022.50")
	assert.Contains(t, out, "RM 1,000.00")
	assert.Contains(t, out, "RM 2.50")
	assert.Contains(t, out, "RM 3,000.00")
	assert.Contains(t, out, "Last sync: 2025-03-09 10:00:00")
	assert.Contains(t, out, "2 row(s) skipped: unreadable date")
	assert.Contains(t, out, "missing columns read as 0: Balance TnG (RM)")
}

func TestWriteTransactionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, nil))

	out := buf.String()
	assert.Contains(t, out, "Description")
	assert.Contains(t, out, "No transactions yet.")
}

func TestWriteTransactions(t *testing.T) {
	rows := []ledger.DisplayRow{
		{Date: "2025-01-20  ", Description: "Pay", Category: "Salary", Income: "3000.00", Expense: "0.00"},
		{Date: "2025-01-15  ", Description: "Lunch", Category: "Food", Income: "0.00", Expense: "15.50"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, rows[0].String(), lines[2])
	assert.Equal(t, rows[1].String(), lines[3])
}

func TestRenderMonthlyReport(t *testing.T) {
	assert.Contains(t, RenderMonthlyReport(nil), "No exported data")

	out := RenderMonthlyReport([]storage.MonthlyTotal{
		{Month: "2025-01", Income: decimal.RequireFromString("100"), Expense: decimal.RequireFromString("20.50"), Transactions: 2},
		{Month: "2025-02", Income: decimal.Zero, Expense: decimal.RequireFromString("5"), Transactions: 1},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Month")
	assert.Contains(t, lines[1], "2025-01")
	assert.Contains(t, lines[1], "RM 79.50")
	assert.Contains(t, lines[2], "RM 5.00")
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon+" failed")
	assert.Contains(t, FormatWarning("careful"), WarningIcon+" careful")
}
