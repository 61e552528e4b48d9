package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"financepilot/internal/core"
	"financepilot/internal/ledger"
	"financepilot/internal/storage"
)

var (
	PrimaryColor = lipgloss.Color("#2E86AB")
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// BoxStyle frames the dashboard.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().Width(18)
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
)

func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// RenderDashboard draws the balance summary box.
func RenderDashboard(d ledger.Dashboard) string {
	line := func(label, value string) string {
		return labelStyle.Render(label) + value
	}
	lines := []string{
		TitleStyle.Render("Total Balance  " + d.TotalBalanceText()),
		"",
		line("Muamalat", core.FormatRinggit(d.Latest.Muamalat)),
		line("TnG", core.FormatRinggit(d.Latest.TnG)),
		line("Cash", core.FormatRinggit(d.Latest.Cash)),
		"",
		line("Income", core.FormatRinggit(d.IncomeTotal)),
		line("Expense", core.FormatRinggit(d.ExpenseTotal)),
		line("Transactions", fmt.Sprintf("%d", d.Transactions)),
	}
	if !d.SyncedAt.IsZero() {
		lines = append(lines, SubtleStyle.Render("Last sync: "+d.SyncedAt.Format("2006-01-02 15:04:05")))
	}
	out := BoxStyle.Render(strings.Join(lines, "\n"))
	if d.MalformedRows > 0 {
		out += "\n" + FormatWarning(fmt.Sprintf("%d row(s) skipped: unreadable date", d.MalformedRows))
	}
	if len(d.MissingColumns) > 0 {
		out += "\n" + FormatWarning("missing columns read as 0: "+strings.Join(d.MissingColumns, ", "))
	}
	return out
}

// WriteTransactions writes the fixed-width list with a styled header.
func WriteTransactions(w io.Writer, rows []ledger.DisplayRow) error {
	if _, err := fmt.Fprintln(w, TitleStyle.Render(ledger.ListHeader())); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, SubtleStyle.Render(ledger.ListDivider())); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No transactions yet."))
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

// RenderMonthlyReport formats exported monthly totals as a table.
func RenderMonthlyReport(months []storage.MonthlyTotal) string {
	if len(months) == 0 {
		return SubtleStyle.Render("No exported data. Run 'financepilot-cli export' first.")
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%-8s %14s %14s %14s %6s", "Month", "Income", "Expense", "Net", "Rows")))
	b.WriteString("\n")
	for _, m := range months {
		fmt.Fprintf(&b, "%-8s %14s %14s %14s %6d\n",
			m.Month,
			core.FormatRinggit(m.Income),
			core.FormatRinggit(m.Expense),
			core.FormatRinggit(m.Net()),
			m.Transactions)
	}
	return strings.TrimRight(b.String(), "\n")
}
