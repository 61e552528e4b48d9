package main

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"financepilot/internal/cli"
	"financepilot/internal/core"
	"financepilot/internal/storage"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func initCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the ledger file with its header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.svc.Init(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Ledger ready at "+a.svc.LedgerPath()))
			return nil
		},
	}
}

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the total balance and account breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.svc.Dashboard(cmd.Context())
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDashboard(d))
			return nil
		},
	}
}

func listCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the newest transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.svc.List(cmd.Context(), limit)
			if err != nil {
				return explain(err)
			}
			return cli.WriteTransactions(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum rows (default: $LIST_LIMIT)")
	return cmd
}

func addCmd(a *app) *cobra.Command {
	var in core.TransactionInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a transaction",
		Example: `  financepilot-cli add --category Food --description Lunch --amount 15.50
  financepilot-cli add --type Income --category Salary --description Pay --amount "RM 3,000" --payment-method Muamalat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Date == "" {
				in.Date = a.svc.Draft().Date
			}
			result, err := a.svc.AddTransaction(cmd.Context(), in)
			if err != nil {
				return explain(err)
			}
			tx := result.Transaction
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %s %s on %s: %s",
				tx.Kind(), core.FormatRinggit(tx.Amount()), tx.Date.Disk(), tx.Description)))
			if result.Reloaded {
				fmt.Fprintln(out, "Total balance: "+result.Dashboard.TotalBalanceText())
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Date, "date", "", "transaction date (default: today)")
	f.StringVar(&in.Category, "category", "", "category")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.PaymentMethod, "payment-method", core.Cash.String(), "Cash, TnG, Muamalat or Other")
	f.StringVar(&in.Type, "type", core.Expense.String(), "Expense or Income")
	f.StringVar(&in.Amount, "amount", "", "amount, e.g. 15.50 or \"RM 1,200.00\"")
	f.StringVar(&in.TransactionTo, "to", "", "payee")
	f.StringVar(&in.TransactionFrom, "from", "", "payer")
	return cmd
}

func draftCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "draft",
		Short: "Print the defaults a new entry starts from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := a.svc.Draft()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date:           %s\n", d.Date)
			fmt.Fprintf(out, "Payment method: %s\n", d.PaymentMethod)
			fmt.Fprintf(out, "Type:           %s\n", d.Type)
			return nil
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Copy the ledger into the SQLite export database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := storage.NewSQLiteRepository(a.cfg.SQLiteDBPath, a.logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			summary, err := a.svc.Export(cmd.Context(), repo)
			if err != nil {
				return explain(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d rows to %s", summary.Rows, a.cfg.SQLiteDBPath)))
			if summary.MalformedRows > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d row(s) skipped: unreadable date", summary.MalformedRows)))
			}
			return nil
		},
	}
}

func reportCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly totals from the last export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month != "" && !monthPattern.MatchString(month) {
				return fmt.Errorf("invalid --month %q: want YYYY-MM", month)
			}
			repo, err := storage.NewSQLiteRepository(a.cfg.SQLiteDBPath, a.logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			out := cmd.OutOrStdout()
			if last, ok, err := repo.LastExport(cmd.Context()); err != nil {
				return err
			} else if ok {
				fmt.Fprintln(out, cli.SubtleStyle.Render("Exported "+last.ExportedAt.Local().Format("2006-01-02 15:04")))
			}

			months, err := repo.MonthlyTotals(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.RenderMonthlyReport(months))

			if month == "" {
				return nil
			}
			cats, err := repo.CategoryExpenses(cmd.Context(), month)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.TitleStyle.Render("Spending in "+month))
			if len(cats) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No expenses."))
			}
			for _, c := range cats {
				fmt.Fprintf(out, "%-20s %14s\n", c.Category, core.FormatRinggit(c.Expense))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "break one month (YYYY-MM) down by category")
	return cmd
}

// explain adds a hint to errors the user can fix.
func explain(err error) error {
	var missing *core.FileMissingError
	switch {
	case errors.As(err, &missing):
		return fmt.Errorf("%w (run 'financepilot-cli init' or set LEDGER_FILE)", err)
	case errors.Is(err, core.ErrLockedFile):
		return fmt.Errorf("%w (another program is writing the ledger; try again)", err)
	default:
		return err
	}
}
