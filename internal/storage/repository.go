// Package storage keeps a derived SQLite copy of the ledger for reporting.
// The CSV file stays authoritative; every export replaces the copy wholesale.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"financepilot/internal/ledger"
	"financepilot/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

// ExportSummary describes one completed export.
type ExportSummary struct {
	ID            int64
	LedgerPath    string
	ExportedAt    time.Time
	Rows          int
	MalformedRows int
}

// MonthlyTotal aggregates one calendar month, Month formatted YYYY-MM.
type MonthlyTotal struct {
	Month        string
	Income       decimal.Decimal
	Expense      decimal.Decimal
	Transactions int
}

// Net is income minus expense for the month.
func (m MonthlyTotal) Net() decimal.Decimal { return m.Income.Sub(m.Expense) }

type CategoryExpense struct {
	Category string
	Expense  decimal.Decimal
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateUp(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)
	logger.Debug("Export database ready", "db_path", dbPath, "schema_version", version)
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceSnapshot swaps the stored rows for those in snap inside one
// transaction and records the export.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, snap *ledger.Snapshot) (ExportSummary, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ExportSummary{}, fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteTransactions(ctx); err != nil {
		return ExportSummary{}, fmt.Errorf("clear transactions: %w", err)
	}

	txs := snap.Transactions()
	for _, t := range txs {
		err := q.InsertTransaction(ctx, InsertTransactionParams{
			RowNo:                int64(t.Row),
			Date:                 t.Date.Display(),
			Category:             t.Category,
			Description:          t.Description,
			PaymentMethod:        t.PaymentMethod.String(),
			TransactionTo:        t.TransactionTo,
			TransactionFrom:      t.TransactionFrom,
			IncomeCents:          toCents(t.Income),
			ExpenseCents:         toCents(t.Expense),
			BalanceMuamalatCents: toCents(t.Balances.Muamalat),
			BalanceTngCents:      toCents(t.Balances.TnG),
			BalanceCashCents:     toCents(t.Balances.Cash),
		})
		if err != nil {
			return ExportSummary{}, fmt.Errorf("insert row %d: %w", t.Row, err)
		}
	}

	exp, err := q.InsertExport(ctx, InsertExportParams{
		LedgerPath:    snap.Path(),
		ExportedAt:    snap.LoadedAt().UTC().Format(time.RFC3339),
		Rows:          int64(len(txs)),
		MalformedRows: int64(len(snap.Malformed())),
	})
	if err != nil {
		return ExportSummary{}, fmt.Errorf("record export: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ExportSummary{}, fmt.Errorf("commit export: %w", err)
	}

	summary, err := exportSummary(exp)
	if err != nil {
		return ExportSummary{}, err
	}
	r.logger.InfoContext(ctx, "Ledger exported to SQLite",
		log.FieldOperation, log.OpExport,
		log.FieldLedgerPath, summary.LedgerPath,
		log.FieldRows, summary.Rows,
		log.FieldMalformedRows, summary.MalformedRows)
	return summary, nil
}

// LastExport returns the most recent export, or false when none exists.
func (r *SQLiteRepository) LastExport(ctx context.Context) (ExportSummary, bool, error) {
	exp, err := r.queries.GetLastExport(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ExportSummary{}, false, nil
	}
	if err != nil {
		return ExportSummary{}, false, fmt.Errorf("get last export: %w", err)
	}
	summary, err := exportSummary(exp)
	return summary, err == nil, err
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return int(n), nil
}

// MonthlyTotals returns income and expense per month, oldest first.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context) ([]MonthlyTotal, error) {
	rows, err := r.queries.GetMonthlyTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("get monthly totals: %w", err)
	}
	out := make([]MonthlyTotal, len(rows))
	for i, row := range rows {
		out[i] = MonthlyTotal{
			Month:        row.Month,
			Income:       fromCents(row.IncomeCents),
			Expense:      fromCents(row.ExpenseCents),
			Transactions: int(row.Transactions),
		}
	}
	return out, nil
}

// CategoryExpenses breaks one month's spending down by category, largest first.
func (r *SQLiteRepository) CategoryExpenses(ctx context.Context, month string) ([]CategoryExpense, error) {
	rows, err := r.queries.GetCategoryExpenses(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("get category expenses for %s: %w", month, err)
	}
	out := make([]CategoryExpense, len(rows))
	for i, row := range rows {
		out[i] = CategoryExpense{Category: row.Category, Expense: fromCents(row.ExpenseCents)}
	}
	return out, nil
}

// IsMirrored reports whether a message was already copied to the mirror.
func (r *SQLiteRepository) IsMirrored(ctx context.Context, messageID string) (bool, error) {
	ok, err := r.queries.IsMessageMirrored(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("check mirrored message %s: %w", messageID, err)
	}
	return ok, nil
}

// MarkMirrored records where a message landed. Repeated calls are no-ops.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, messageID, ref string) error {
	err := r.queries.InsertMirroredMessage(ctx, InsertMirroredMessageParams{
		MessageID:  messageID,
		SheetsRef:  ref,
		MirroredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("mark message %s mirrored: %w", messageID, err)
	}
	return nil
}

func exportSummary(e Export) (ExportSummary, error) {
	at, err := time.Parse(time.RFC3339, e.ExportedAt)
	if err != nil {
		return ExportSummary{}, fmt.Errorf("parse export time %q: %w", e.ExportedAt, err)
	}
	return ExportSummary{
		ID:            e.ID,
		LedgerPath:    e.LedgerPath,
		ExportedAt:    at,
		Rows:          int(e.Rows),
		MalformedRows: int(e.MalformedRows),
	}, nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
