package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"financepilot/internal/core"
	"financepilot/internal/ledger"
	"financepilot/internal/log"
)

type balancesJSON struct {
	Muamalat decimal.Decimal `json:"muamalat"`
	TnG      decimal.Decimal `json:"tng"`
	Cash     decimal.Decimal `json:"cash"`
}

type dashboardJSON struct {
	TotalBalance     decimal.NullDecimal `json:"total_balance"`
	TotalBalanceText string              `json:"total_balance_text"`
	Latest           balancesJSON        `json:"latest_balances"`
	IncomeTotal      decimal.Decimal     `json:"income_total"`
	ExpenseTotal     decimal.Decimal     `json:"expense_total"`
	Transactions     int                 `json:"transactions"`
	MalformedRows    int                 `json:"malformed_rows"`
	MissingColumns   []string            `json:"missing_columns,omitempty"`
	SyncedAt         time.Time           `json:"synced_at"`
}

type transactionJSON struct {
	Row             int             `json:"row,omitempty"`
	Date            string          `json:"date"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	PaymentMethod   string          `json:"payment_method"`
	TransactionTo   string          `json:"transaction_to,omitempty"`
	TransactionFrom string          `json:"transaction_from,omitempty"`
	Kind            string          `json:"kind"`
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	Balances        balancesJSON    `json:"balances"`
}

type draftJSON struct {
	Date           string   `json:"date"`
	PaymentMethod  string   `json:"payment_method"`
	Type           string   `json:"type"`
	PaymentMethods []string `json:"payment_methods"`
	Types          []string `json:"types"`
}

func toBalancesJSON(b core.Balances) balancesJSON {
	return balancesJSON{Muamalat: b.Muamalat, TnG: b.TnG, Cash: b.Cash}
}

func toDashboardJSON(d ledger.Dashboard) dashboardJSON {
	return dashboardJSON{
		TotalBalance:     d.TotalBalance,
		TotalBalanceText: d.TotalBalanceText(),
		Latest:           toBalancesJSON(d.Latest),
		IncomeTotal:      d.IncomeTotal,
		ExpenseTotal:     d.ExpenseTotal,
		Transactions:     d.Transactions,
		MalformedRows:    d.MalformedRows,
		MissingColumns:   d.MissingColumns,
		SyncedAt:         d.SyncedAt,
	}
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		Row:             tx.Row,
		Date:            tx.Date.Display(),
		Category:        tx.Category,
		Description:     tx.Description,
		PaymentMethod:   tx.PaymentMethod.String(),
		TransactionTo:   tx.TransactionTo,
		TransactionFrom: tx.TransactionFrom,
		Kind:            tx.Kind().String(),
		Income:          tx.Income,
		Expense:         tx.Expense,
		Balances:        toBalancesJSON(tx.Balances),
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	d, err := s.ledger.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().JSON(toDashboardJSON(d)).Write(w)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, s.ledger.ListLimit())
	txs, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		rows[i] = toTransactionJSON(tx)
	}
	NewResponse().JSON(map[string]any{
		"transactions": rows,
		"count":        len(rows),
		"limit":        limit,
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	result, err := s.ledger.AddTransaction(r.Context(), parser.TransactionInput())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction added",
		log.FieldOperation, log.OpAppend,
		log.FieldCategory, result.Transaction.Category,
		log.FieldKind, result.Transaction.Kind().String(),
		log.FieldAmount, result.Transaction.Amount().StringFixed(2))

	body := map[string]any{"transaction": toTransactionJSON(result.Transaction)}
	if result.Reloaded {
		body["dashboard"] = toDashboardJSON(result.Dashboard)
	}
	NewResponse().Status(http.StatusCreated).JSON(body).Write(w)
}

func (s *Server) handleTransactionsText(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	limit := parseLimit(r, s.ledger.ListLimit())
	txs, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := ledger.WriteList(&buf, ledger.Present(txs, limit)); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewResponse().Text(buf.String()).Write(w)
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	d := s.ledger.Draft()
	methods := make([]string, 0, len(core.PaymentMethods()))
	for _, pm := range core.PaymentMethods() {
		methods = append(methods, pm.String())
	}
	NewResponse().JSON(draftJSON{
		Date:           d.Date,
		PaymentMethod:  d.PaymentMethod,
		Type:           d.Type,
		PaymentMethods: methods,
		Types:          []string{core.Expense.String(), core.Income.String()},
	}).Write(w)
}

// writeError logs server-side failures and writes the mapped response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := FromError(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err)
	}
	resp.Write(w)
}
