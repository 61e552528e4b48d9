package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ledger string
	db     string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"LEDGER_FILE", "SQLITE_DB_PATH", "AMQP_URL", "MIRROR_BACKEND", "LOG_LEVEL", "LOG_FORMAT", "LIST_LIMIT", "PORT", "EXPORT_INTERVAL"} {
		t.Setenv(key, "")
	}
	return testEnv{
		ledger: filepath.Join(dir, "ledger.csv"),
		db:     filepath.Join(dir, "export.db"),
	}
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--ledger", e.ledger, "--db", e.db}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitCreatesLedger(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger ready")

	data, err := os.ReadFile(env.ledger)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,Category,Description,Payment Method,Transcation_to"))

	_, err = env.run(t, "init")
	require.NoError(t, err, "init is idempotent")
}

func TestDashboardWithoutLedger(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "dashboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "financepilot-cli init")
}

func TestAddListDashboard(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "init")
	require.NoError(t, err)

	out, err := env.run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "No data")

	out, err = env.run(t, "add", "--date", "01/15/2025", "--category", "Food", "--description", "Lunch", "--amount", "15.50")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Expense RM 15.50 on 01/15/2025: Lunch")

	_, err = env.run(t, "add", "--date", "2025-01-20", "--type", "Income", "--category", "Salary", "--description", "Pay", "--amount", "RM 3,000", "--payment-method", "Muamalat")
	require.NoError(t, err)

	out, err = env.run(t, "list", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01-20")
	assert.NotContains(t, out, "Lunch")

	out, err = env.run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "RM 3,000.00")
	assert.Contains(t, out, "RM 15.50")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "init")
	require.NoError(t, err)
	before, err := os.ReadFile(env.ledger)
	require.NoError(t, err)

	_, err = env.run(t, "add", "--category", "Food", "--description", "Lunch", "--amount", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")

	after, err := os.ReadFile(env.ledger)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestDraft(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "draft")
	require.NoError(t, err)
	assert.Contains(t, out, "Payment method: Cash")
	assert.Contains(t, out, "Type:           Expense")
}

func TestExportAndReport(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "init")
	require.NoError(t, err)
	for _, args := range [][]string{
		{"add", "--date", "01/05/2025", "--category", "Food", "--description", "Lunch", "--amount", "12.50"},
		{"add", "--date", "01/06/2025", "--category", "Transport", "--description", "Grab", "--amount", "8.00"},
		{"add", "--date", "02/01/2025", "--type", "Income", "--category", "Salary", "--description", "Pay", "--amount", "100"},
	} {
		_, err := env.run(t, args...)
		require.NoError(t, err)
	}

	out, err := env.run(t, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 rows")

	out, err = env.run(t, "report", "--month", "2025-01")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01")
	assert.Contains(t, out, "2025-02")
	assert.Contains(t, out, "RM 20.50")
	assert.Contains(t, out, "Spending in 2025-01")
	assert.Contains(t, out, "Transport")
}

func TestReportRejectsBadMonth(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "report", "--month", "January")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want YYYY-MM")
}

func TestInvalidConfigFails(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("LIST_LIMIT", "0")
	_, err := env.run(t, "draft")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
