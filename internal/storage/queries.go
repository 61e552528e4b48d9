package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const deleteTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteTransactions)
	return err
}

const insertTransaction = `INSERT INTO transactions (
    row_no, date, category, description, payment_method, transaction_to, transaction_from,
    income_cents, expense_cents, balance_muamalat_cents, balance_tng_cents, balance_cash_cents
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type InsertTransactionParams struct {
	RowNo                int64
	Date                 string
	Category             string
	Description          string
	PaymentMethod        string
	TransactionTo        string
	TransactionFrom      string
	IncomeCents          int64
	ExpenseCents         int64
	BalanceMuamalatCents int64
	BalanceTngCents      int64
	BalanceCashCents     int64
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.RowNo,
		arg.Date,
		arg.Category,
		arg.Description,
		arg.PaymentMethod,
		arg.TransactionTo,
		arg.TransactionFrom,
		arg.IncomeCents,
		arg.ExpenseCents,
		arg.BalanceMuamalatCents,
		arg.BalanceTngCents,
		arg.BalanceCashCents,
	)
	return err
}

const countTransactions = `SELECT COUNT(*) FROM transactions`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const insertExport = `INSERT INTO exports (ledger_path, exported_at, row_count, malformed_rows)
VALUES (?, ?, ?, ?)
RETURNING id, ledger_path, exported_at, row_count, malformed_rows`

type InsertExportParams struct {
	LedgerPath    string
	ExportedAt    string
	Rows          int64
	MalformedRows int64
}

type Export struct {
	ID            int64
	LedgerPath    string
	ExportedAt    string
	Rows          int64
	MalformedRows int64
}

func (q *Queries) InsertExport(ctx context.Context, arg InsertExportParams) (Export, error) {
	row := q.db.QueryRowContext(ctx, insertExport, arg.LedgerPath, arg.ExportedAt, arg.Rows, arg.MalformedRows)
	var i Export
	err := row.Scan(&i.ID, &i.LedgerPath, &i.ExportedAt, &i.Rows, &i.MalformedRows)
	return i, err
}

const getLastExport = `SELECT id, ledger_path, exported_at, row_count, malformed_rows
FROM exports ORDER BY id DESC LIMIT 1`

func (q *Queries) GetLastExport(ctx context.Context) (Export, error) {
	row := q.db.QueryRowContext(ctx, getLastExport)
	var i Export
	err := row.Scan(&i.ID, &i.LedgerPath, &i.ExportedAt, &i.Rows, &i.MalformedRows)
	return i, err
}

const getMonthlyTotals = `SELECT substr(date, 1, 7) AS month,
       CAST(COALESCE(SUM(income_cents), 0) AS INTEGER) AS income_cents,
       CAST(COALESCE(SUM(expense_cents), 0) AS INTEGER) AS expense_cents,
       COUNT(*) AS transactions
FROM transactions
GROUP BY month
ORDER BY month`

type GetMonthlyTotalsRow struct {
	Month        string
	IncomeCents  int64
	ExpenseCents int64
	Transactions int64
}

func (q *Queries) GetMonthlyTotals(ctx context.Context) ([]GetMonthlyTotalsRow, error) {
	rows, err := q.db.QueryContext(ctx, getMonthlyTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetMonthlyTotalsRow
	for rows.Next() {
		var i GetMonthlyTotalsRow
		if err := rows.Scan(&i.Month, &i.IncomeCents, &i.ExpenseCents, &i.Transactions); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategoryExpenses = `SELECT category,
       CAST(COALESCE(SUM(expense_cents), 0) AS INTEGER) AS expense_cents
FROM transactions
WHERE substr(date, 1, 7) = ? AND expense_cents > 0
GROUP BY category
ORDER BY expense_cents DESC, category`

type GetCategoryExpensesRow struct {
	Category     string
	ExpenseCents int64
}

func (q *Queries) GetCategoryExpenses(ctx context.Context, month string) ([]GetCategoryExpensesRow, error) {
	rows, err := q.db.QueryContext(ctx, getCategoryExpenses, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCategoryExpensesRow
	for rows.Next() {
		var i GetCategoryExpensesRow
		if err := rows.Scan(&i.Category, &i.ExpenseCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const isMessageMirrored = `SELECT EXISTS(SELECT 1 FROM mirrored_messages WHERE message_id = ?)`

func (q *Queries) IsMessageMirrored(ctx context.Context, messageID string) (bool, error) {
	row := q.db.QueryRowContext(ctx, isMessageMirrored, messageID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const insertMirroredMessage = `INSERT OR IGNORE INTO mirrored_messages (message_id, sheets_ref, mirrored_at)
VALUES (?, ?, ?)`

type InsertMirroredMessageParams struct {
	MessageID  string
	SheetsRef  string
	MirroredAt string
}

func (q *Queries) InsertMirroredMessage(ctx context.Context, arg InsertMirroredMessageParams) error {
	_, err := q.db.ExecContext(ctx, insertMirroredMessage, arg.MessageID, arg.SheetsRef, arg.MirroredAt)
	return err
}
