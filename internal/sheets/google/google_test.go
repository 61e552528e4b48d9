package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"financepilot/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type fakeSheets struct {
	mu      sync.Mutex
	header  []any
	rows    [][]any
	queries []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)

	if !strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-id/values/") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, vr.Values...)
		n := len(f.rows) + 1
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{
				"updatedRange": "Ledger!A" + itoa(n) + ":K" + itoa(n),
				"updatedRows":  1,
			},
		})
	case r.Method == http.MethodGet:
		resp := map[string]any{"range": "Ledger!A1:K1", "majorDimension": "ROWS"}
		if f.header != nil {
			resp["values"] = [][]any{f.header}
		}
		_ = json.NewEncoder(w).Encode(resp)
	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.header = vr.Values[0]
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": "Ledger!A1:K1"})
	default:
		http.Error(w, "unexpected request", http.StatusMethodNotAllowed)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return NewWithService(svc, "sheet-id", "Ledger", nil)
}

func TestClient_AppendRow(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	row := []string{"01/15/2025", "Food", "Lunch", "Cash", "", "", "0.00", "15.50", "", "", ""}
	ref, err := c.AppendRow(context.Background(), row)
	if err != nil {
		t.Fatalf("AppendRow() error = %v", err)
	}
	if ref != "Ledger!A2:K2" {
		t.Errorf("AppendRow() ref = %q, want Ledger!A2:K2", ref)
	}

	if len(fake.rows) != 1 || len(fake.rows[0]) != len(row) {
		t.Fatalf("unexpected rows sent: %v", fake.rows)
	}
	if fake.rows[0][7] != "15.50" {
		t.Errorf("expense cell = %v, want 15.50", fake.rows[0][7])
	}
	q := fake.queries[0]
	if !strings.Contains(q, "valueInputOption=USER_ENTERED") || !strings.Contains(q, "insertDataOption=INSERT_ROWS") {
		t.Errorf("append query missing options: %s", q)
	}
	if !strings.Contains(q, "Ledger!A:K:append") {
		t.Errorf("append path = %s, want range Ledger!A:K", q)
	}
}

func TestClient_EnsureHeader(t *testing.T) {
	header := []string{"Date", "Category", "Description"}

	t.Run("writes header to empty sheet", func(t *testing.T) {
		fake := &fakeSheets{}
		c := newTestClient(t, fake)

		if err := c.EnsureHeader(context.Background(), header); err != nil {
			t.Fatalf("EnsureHeader() error = %v", err)
		}
		if len(fake.header) != 3 || fake.header[0] != "Date" {
			t.Fatalf("header not written: %v", fake.header)
		}
		if !strings.Contains(fake.queries[1], "valueInputOption=RAW") {
			t.Errorf("header write should be RAW: %s", fake.queries[1])
		}
	})

	t.Run("leaves existing header", func(t *testing.T) {
		fake := &fakeSheets{header: []any{"Something", "Else"}}
		c := newTestClient(t, fake)

		if err := c.EnsureHeader(context.Background(), header); err != nil {
			t.Fatalf("EnsureHeader() error = %v", err)
		}
		if len(fake.queries) != 1 {
			t.Errorf("expected only a read, got %v", fake.queries)
		}
		if fake.header[0] != "Something" {
			t.Errorf("existing header overwritten: %v", fake.header)
		}
	})
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.AppendRow(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error with nil service")
	}
	if err := c.EnsureHeader(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Ledger", Credentials{JSON: "{}"}, nil)
	if err == nil || err.Error() != "missing spreadsheet ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCredentials_Load(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		creds   Credentials
		want    string
		wantErr bool
	}{
		{"inline wins", Credentials{JSON: `{"from":"inline"}`, File: file}, `{"from":"inline"}`, false},
		{"file", Credentials{File: file}, `{"from":"file"}`, false},
		{"application default file", Credentials{ApplicationCredentials: file}, `{"from":"file"}`, false},
		{"missing file", Credentials{File: filepath.Join(dir, "nope.json")}, "", true},
		{"nothing set", Credentials{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.creds.load(context.Background(), log.Discard())
			if (err != nil) != tt.wantErr {
				t.Fatalf("load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("load() = %s, want %s", got, tt.want)
			}
		})
	}
}
