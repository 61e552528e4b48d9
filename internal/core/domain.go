package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

const (
	Cash     PaymentMethod = "Cash"
	TnG      PaymentMethod = "TnG"
	Muamalat PaymentMethod = "Muamalat"
	Other    PaymentMethod = "Other"
)

type (
	// Kind selects which of the income/expense columns a new row fills.
	Kind string

	PaymentMethod string

	// Transaction is one ledger row after normalization.
	Transaction struct {
		Row             int // 1-based data row in file order, 0 for rows not read from disk
		Date            Date
		Category        string
		Description     string
		PaymentMethod   PaymentMethod
		TransactionTo   string
		TransactionFrom string
		Income          decimal.Decimal
		Expense         decimal.Decimal
		Balances        Balances
	}

	// TransactionInput carries the raw form fields submitted for a new row.
	TransactionInput struct {
		Date            string
		Category        string
		Description     string
		PaymentMethod   string
		Type            string
		Amount          string
		TransactionTo   string
		TransactionFrom string
	}
)

// PaymentMethods lists the accepted payment methods in form order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{Cash, TnG, Muamalat, Other}
}

// ParsePaymentMethod matches s case-insensitively. Blank input means Cash.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Cash, true
	}
	for _, pm := range PaymentMethods() {
		if strings.EqualFold(s, string(pm)) {
			return pm, true
		}
	}
	return "", false
}

// ParseKind matches s case-insensitively. Blank input means Expense.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "expense":
		return Expense, true
	case "income":
		return Income, true
	default:
		return "", false
	}
}

func (k Kind) String() string { return string(k) }

func (pm PaymentMethod) String() string { return string(pm) }

// Amount returns the nonzero side of the row: income when set, else expense.
func (t Transaction) Amount() decimal.Decimal {
	if !t.Income.IsZero() {
		return t.Income
	}
	return t.Expense
}

// Kind reports Income when the income column is set, Expense otherwise.
// Historical rows may carry both; income wins.
func (t Transaction) Kind() Kind {
	if !t.Income.IsZero() {
		return Income
	}
	return Expense
}

// Validate checks the submitted fields and builds the row to append.
// Nothing is written when it fails.
func (in TransactionInput) Validate() (Transaction, error) {
	dateStr := strings.TrimSpace(in.Date)
	if dateStr == "" {
		return Transaction{}, newValidationError("date", "is required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return Transaction{}, newValidationError("category", "is required")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return Transaction{}, newValidationError("description", "is required")
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return Transaction{}, newValidationError("date", "is not a calendar date")
	}
	pm, ok := ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return Transaction{}, newValidationError("payment_method", "must be one of Cash, TnG, Muamalat, Other")
	}
	kind, ok := ParseKind(in.Type)
	if !ok {
		return Transaction{}, newValidationError("type", "must be Income or Expense")
	}
	// Round first so the checked value is the value written.
	amount := NormalizeString(in.Amount).Round(2)
	if amount.IsZero() {
		return Transaction{}, newValidationError("amount", "cannot be zero")
	}
	if amount.GreaterThan(MaxAmount) {
		return Transaction{}, newValidationError("amount", "exceeds "+FormatAmount(MaxAmount))
	}

	tx := Transaction{
		Date:            date,
		Category:        category,
		Description:     description,
		PaymentMethod:   pm,
		TransactionTo:   strings.TrimSpace(in.TransactionTo),
		TransactionFrom: strings.TrimSpace(in.TransactionFrom),
		Income:          decimal.Zero,
		Expense:         decimal.Zero,
	}
	if kind == Income {
		tx.Income = amount
	} else {
		tx.Expense = amount
	}
	return tx, nil
}
