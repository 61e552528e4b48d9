package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"financepilot/internal/ledger"
	"financepilot/internal/storage"
)

type fakeExporter struct {
	mu    sync.Mutex
	calls int
	rows  int
	err   error
}

func (f *fakeExporter) ReplaceSnapshot(_ context.Context, snap *ledger.Snapshot) (storage.ExportSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return storage.ExportSummary{}, f.err
	}
	f.calls++
	f.rows = snap.Len()
	return storage.ExportSummary{ID: int64(f.calls), LedgerPath: snap.Path(), Rows: snap.Len()}, nil
}

func (f *fakeExporter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestDefaultExportProcessorConfig(t *testing.T) {
	config := DefaultExportProcessorConfig()
	if config.Interval != 5*time.Minute {
		t.Errorf("expected Interval 5m, got %v", config.Interval)
	}
}

func TestNewExportProcessor_FillsDefaults(t *testing.T) {
	processor := NewExportProcessor(newTestService(t, ""), &fakeExporter{}, ExportProcessorConfig{}, nil)
	if processor.config.Interval != 5*time.Minute {
		t.Errorf("expected default Interval, got %v", processor.config.Interval)
	}
	if processor.IsRunning() {
		t.Error("processor should not be running initially")
	}
}

func TestExportProcessor_RunOnceSkipsUnchangedLedger(t *testing.T) {
	svc := newTestService(t, "01/02/2025,Food,Lunch,Cash,,,,12.50,,,\n")
	exp := &fakeExporter{}
	processor := NewExportProcessor(svc, exp, DefaultExportProcessorConfig(), nil)
	ctx := context.Background()

	if !processor.RunOnce(ctx) {
		t.Fatal("first pass should export")
	}
	if processor.RunOnce(ctx) {
		t.Error("second pass over an unchanged file should be skipped")
	}

	if _, err := svc.AddTransaction(ctx, lunchInput()); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if !processor.RunOnce(ctx) {
		t.Error("pass after an append should export")
	}
	if exp.Calls() != 2 || exp.rows != 2 {
		t.Errorf("exporter saw %d calls with %d rows, want 2 calls with 2 rows", exp.Calls(), exp.rows)
	}
	if processor.Exports() != 2 {
		t.Errorf("Exports() = %d, want 2", processor.Exports())
	}
}

func TestExportProcessor_RunOnceMissingLedger(t *testing.T) {
	svc := newTestService(t, "")
	if err := os.Remove(svc.LedgerPath()); err != nil {
		t.Fatal(err)
	}
	exp := &fakeExporter{}
	processor := NewExportProcessor(svc, exp, DefaultExportProcessorConfig(), nil)

	if processor.RunOnce(context.Background()) {
		t.Error("missing ledger should not export")
	}
	if exp.Calls() != 0 {
		t.Errorf("exporter called %d times", exp.Calls())
	}
}

func TestExportProcessor_RunOnceExporterFailure(t *testing.T) {
	exp := &fakeExporter{err: errors.New("database is locked")}
	processor := NewExportProcessor(newTestService(t, ""), exp, DefaultExportProcessorConfig(), nil)

	if processor.RunOnce(context.Background()) {
		t.Error("failed export should report false")
	}
	if processor.Exports() != 0 {
		t.Errorf("Exports() = %d, want 0", processor.Exports())
	}
}

func TestExportProcessor_StartStop(t *testing.T) {
	exp := &fakeExporter{}
	config := ExportProcessorConfig{Interval: 10 * time.Millisecond}
	processor := NewExportProcessor(newTestService(t, ""), exp, config, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := processor.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := processor.Start(ctx); err == nil {
		t.Error("expected error when starting already running processor")
	}
	if !processor.IsRunning() {
		t.Error("processor should be running after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for exp.Calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if exp.Calls() == 0 {
		t.Error("processor should export on startup")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := processor.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if processor.IsRunning() {
		t.Error("processor should not be running after Stop")
	}
}

// blockingExporter holds every export until release is closed.
type blockingExporter struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingExporter) ReplaceSnapshot(_ context.Context, snap *ledger.Snapshot) (storage.ExportSummary, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return storage.ExportSummary{Rows: snap.Len()}, nil
}

func TestExportProcessor_StopAfterTimeout(t *testing.T) {
	exp := &blockingExporter{started: make(chan struct{}), release: make(chan struct{})}
	processor := NewExportProcessor(newTestService(t, ""), exp, DefaultExportProcessorConfig(), nil)

	if err := processor.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	select {
	case <-exp.started:
	case <-time.After(2 * time.Second):
		t.Fatal("export never started")
	}

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		err := processor.Stop(ctx)
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Stop() #%d error = %v, want deadline exceeded", i+1, err)
		}
		if !processor.IsRunning() {
			t.Fatalf("processor should still be running after Stop() #%d timed out", i+1)
		}
	}

	close(exp.release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := processor.Stop(ctx); err != nil {
		t.Fatalf("final Stop() error = %v", err)
	}
	if processor.IsRunning() {
		t.Error("processor should not be running after Stop")
	}
}

func TestExportProcessor_StopNotRunning(t *testing.T) {
	processor := NewExportProcessor(newTestService(t, ""), &fakeExporter{}, DefaultExportProcessorConfig(), nil)
	if err := processor.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestExportProcessor_WithSQLite(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "export.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	svc := newTestService(t, "01/02/2025,Food,Lunch,Cash,,,,12.50,,,\n01/03/2025,Food,Dinner,Cash,,,,20.00,,,\n")
	processor := NewExportProcessor(svc, repo, DefaultExportProcessorConfig(), nil)
	if !processor.RunOnce(context.Background()) {
		t.Fatal("RunOnce() = false, want export")
	}

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
