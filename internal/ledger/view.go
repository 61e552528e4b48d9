package ledger

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"financepilot/internal/core"
)

// DefaultListLimit caps the list when no limit is given.
const DefaultListLimit = 100

// Column widths of the fixed-width list.
const (
	dateWidth        = 12
	descriptionWidth = 25
	categoryWidth    = 15
	amountWidth      = 10
)

// DisplayRow is one list line, each field already cut and padded to width.
type DisplayRow struct {
	Date        string
	Description string
	Category    string
	Income      string
	Expense     string
}

// Present sorts txs newest first and formats at most limit of them. Rows on
// the same day keep their file order. limit <= 0 means DefaultListLimit.
func Present(txs []core.Transaction, limit int) []DisplayRow {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	sorted := SortNewestFirst(txs)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([]DisplayRow, len(sorted))
	for i, tx := range sorted {
		rows[i] = DisplayRow{
			Date:        fmt.Sprintf("%-*s", dateWidth, tx.Date.Display()),
			Description: fmt.Sprintf("%-*s", descriptionWidth, truncate(tx.Description, descriptionWidth)),
			Category:    fmt.Sprintf("%-*s", categoryWidth, truncate(tx.Category, categoryWidth)),
			Income:      fmt.Sprintf("%*s", amountWidth, core.FormatAmount(tx.Income)),
			Expense:     fmt.Sprintf("%*s", amountWidth, core.FormatAmount(tx.Expense)),
		}
	}
	return rows
}

// SortNewestFirst returns a copy of txs ordered by date descending. Rows on
// the same day keep their file order.
func SortNewestFirst(txs []core.Transaction) []core.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return sorted
}

func (r DisplayRow) String() string {
	return strings.Join([]string{r.Date, r.Description, r.Category, r.Income, r.Expense}, " ")
}

// ListHeader is the title line above the rows.
func ListHeader() string {
	return fmt.Sprintf("%-*s %-*s %-*s %*s %*s",
		dateWidth, "Date",
		descriptionWidth, "Description",
		categoryWidth, "Category",
		amountWidth, "Income",
		amountWidth, "Expense")
}

// ListDivider underlines ListHeader.
func ListDivider() string {
	return strings.Repeat("-", len(ListHeader()))
}

// WriteList writes the header, divider and rows, one per line.
func WriteList(w io.Writer, rows []DisplayRow) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", ListHeader(), ListDivider()); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

// truncate cuts s to at most n runes, flattening line breaks first.
func truncate(s string, n int) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
