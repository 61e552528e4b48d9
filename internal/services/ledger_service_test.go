package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financepilot/internal/core"
	"financepilot/internal/ledger"
)

// newTestService writes a ledger holding the header plus rows and opens a
// service over it.
func newTestService(t *testing.T, rows string, opts ...ServiceOption) *LedgerService {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := strings.Join(ledger.Columns(), ",") + "\n" + rows
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write ledger: %v", err)
	}
	return NewLedgerService(ledger.Open(path), nil, opts...)
}

func lunchInput() core.TransactionInput {
	return core.TransactionInput{
		Date:          "01/15/2025",
		Category:      "Food",
		Description:   "Lunch",
		PaymentMethod: "Cash",
		Type:          "Expense",
		Amount:        "15.50",
	}
}

type recordingPublisher struct {
	published []core.Transaction
	err       error
	closed    bool
}

func (p *recordingPublisher) PublishTransaction(_ context.Context, tx core.Transaction) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, tx)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestLedgerService_Dashboard(t *testing.T) {
	t.Run("empty ledger has no data", func(t *testing.T) {
		svc := newTestService(t, "")
		d, err := svc.Dashboard(context.Background())
		if err != nil {
			t.Fatalf("Dashboard() error = %v", err)
		}
		if got := d.TotalBalanceText(); got != "No data" {
			t.Errorf("TotalBalanceText() = %q, want %q", got, "No data")
		}
	})

	t.Run("balance comes from the last row", func(t *testing.T) {
		svc := newTestService(t,
			"01/01/2025,Opening,Balance,Muamalat,,,,,\"RM 1,000.00\",RM 20.00,RM 5.00\n"+
				"01/02/2025,Food,Lunch,Cash,,,,RM 12.50,\"RM 1,000.00\",RM 20.00,RM 2.50\n")
		d, err := svc.Dashboard(context.Background())
		if err != nil {
			t.Fatalf("Dashboard() error = %v", err)
		}
		if got := d.TotalBalanceText(); got != "RM 1,022.50" {
			t.Errorf("TotalBalanceText() = %q, want %q", got, "RM 1,022.50")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		svc := NewLedgerService(ledger.Open(filepath.Join(t.TempDir(), "absent.csv")), nil)
		_, err := svc.Dashboard(context.Background())
		if !errors.Is(err, core.ErrFileMissing) {
			t.Errorf("Dashboard() error = %v, want ErrFileMissing", err)
		}
	})
}

func TestLedgerService_List(t *testing.T) {
	svc := newTestService(t,
		"01/01/2025,Food,First,Cash,,,,1.00,,,\n"+
			"01/03/2025,Food,Newest,Cash,,,,3.00,,,\n"+
			"01/02/2025,Food,Middle,Cash,,,,2.00,,,\n",
		WithListLimit(2))

	rows, err := svc.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("List() returned %d rows, want 2", len(rows))
	}
	if !strings.HasPrefix(rows[0].Description, "Newest") || !strings.HasPrefix(rows[1].Description, "Middle") {
		t.Errorf("unexpected order: %q, %q", rows[0].Description, rows[1].Description)
	}

	rows, err = svc.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("List(10) returned %d rows, want 3", len(rows))
	}
}

func TestLedgerService_Draft(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)
	svc := newTestService(t, "", WithNow(func() time.Time { return now }))

	draft := svc.Draft()
	if draft.Date != "03/09/2025" {
		t.Errorf("Draft().Date = %q, want 03/09/2025", draft.Date)
	}
	if draft.PaymentMethod != "Cash" || draft.Type != "Expense" {
		t.Errorf("unexpected draft defaults: %+v", draft)
	}
	if draft.Category != "" || draft.Description != "" || draft.Amount != "" {
		t.Errorf("draft should start blank: %+v", draft)
	}
}

func TestLedgerService_AddTransaction(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, "", WithPublisher(pub))

	result, err := svc.AddTransaction(context.Background(), lunchInput())
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if !result.Reloaded {
		t.Error("result should carry a reloaded dashboard")
	}
	if result.Dashboard.Transactions != 1 {
		t.Errorf("Dashboard.Transactions = %d, want 1", result.Dashboard.Transactions)
	}
	if !result.Transaction.Expense.Equal(decimal.RequireFromString("15.50")) {
		t.Errorf("Transaction.Expense = %s, want 15.5", result.Transaction.Expense)
	}
	if len(pub.published) != 1 || pub.published[0].Description != "Lunch" {
		t.Errorf("published = %+v, want the lunch row", pub.published)
	}
}

func TestLedgerService_AddTransactionPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, "", WithPublisher(pub))

	if _, err := svc.AddTransaction(context.Background(), lunchInput()); err != nil {
		t.Fatalf("publish failure should not fail the append: %v", err)
	}
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Len() != 1 {
		t.Errorf("Snapshot().Len() = %d, want 1", snap.Len())
	}
}

func TestLedgerService_AddTransactionInvalid(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, "", WithPublisher(pub))

	in := lunchInput()
	in.Amount = "0"
	_, err := svc.AddTransaction(context.Background(), in)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("AddTransaction() error = %v, want ErrInvalidInput", err)
	}
	if len(pub.published) != 0 {
		t.Error("nothing should be published for a rejected row")
	}
}

func TestLedgerService_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.csv")
	svc := NewLedgerService(ledger.Open(path), nil)

	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() after Init error = %v", err)
	}
	if d.TotalBalance.Valid {
		t.Error("fresh ledger should have no data")
	}
}

func TestLedgerService_Export(t *testing.T) {
	svc := newTestService(t, "01/02/2025,Food,Lunch,Cash,,,,12.50,,,\n")

	exp := &fakeExporter{}
	summary, err := svc.Export(context.Background(), exp)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if summary.Rows != 1 || summary.LedgerPath != svc.LedgerPath() {
		t.Errorf("unexpected summary %+v", summary)
	}

	exp.err = errors.New("disk full")
	if _, err := svc.Export(context.Background(), exp); err == nil || !strings.Contains(err.Error(), "export ledger") {
		t.Errorf("Export() error = %v, want wrapped exporter error", err)
	}
}

func TestLedgerService_Close(t *testing.T) {
	t.Run("without publisher", func(t *testing.T) {
		if err := newTestService(t, "").Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("closes publisher", func(t *testing.T) {
		pub := &recordingPublisher{}
		if err := newTestService(t, "", WithPublisher(pub)).Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !pub.closed {
			t.Error("publisher should be closed")
		}
	})
}
