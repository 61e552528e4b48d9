package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"financepilot/internal/core"
	"financepilot/internal/ledger"
	"financepilot/internal/log"
	"financepilot/internal/storage"
)

// Publisher announces appended transactions to other processes.
type Publisher interface {
	PublishTransaction(ctx context.Context, tx core.Transaction) error
}

// Exporter stores a full copy of a snapshot elsewhere.
type Exporter interface {
	ReplaceSnapshot(ctx context.Context, snap *ledger.Snapshot) (storage.ExportSummary, error)
}

// AddResult is what the caller sees after a successful append: the row as
// written and the dashboard rebuilt from a fresh load.
type AddResult struct {
	Transaction core.Transaction
	Dashboard   ledger.Dashboard
	Reloaded    bool
}

// LedgerService is the single entry point the front-ends use. It serializes
// appends within the process; other processes are kept out by the file lock.
type LedgerService struct {
	store     *ledger.Store
	publisher Publisher
	listLimit int
	now       func() time.Time
	logger    *log.Logger

	mu sync.Mutex
}

type ServiceOption func(*LedgerService)

// WithPublisher enables append events.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *LedgerService) { s.publisher = p }
}

// WithListLimit overrides ledger.DefaultListLimit.
func WithListLimit(n int) ServiceOption {
	return func(s *LedgerService) {
		if n > 0 {
			s.listLimit = n
		}
	}
}

// WithNow sets the clock used for new drafts.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *LedgerService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewLedgerService(store *ledger.Store, logger *log.Logger, opts ...ServiceOption) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	s := &LedgerService{
		store:     store,
		listLimit: ledger.DefaultListLimit,
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentService),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LedgerPath is the file the service reads and appends to.
func (s *LedgerService) LedgerPath() string { return s.store.Path() }

// ListLimit is the default number of rows List returns.
func (s *LedgerService) ListLimit() int { return s.listLimit }

// Snapshot loads the ledger from disk.
func (s *LedgerService) Snapshot(ctx context.Context) (*ledger.Snapshot, error) {
	return s.store.Load(ctx)
}

// Dashboard loads the ledger and summarizes it.
func (s *LedgerService) Dashboard(ctx context.Context) (ledger.Dashboard, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return ledger.Dashboard{}, err
	}
	if err := snap.Err(); err != nil {
		s.logger.WarnContext(ctx, "Ledger has unreadable rows",
			log.FieldMalformedRows, len(snap.Malformed()),
			log.FieldError, err)
	}
	return ledger.BuildDashboard(snap), nil
}

// List loads the ledger and returns the newest rows, at most limit of them.
// limit <= 0 uses the service's configured limit.
func (s *LedgerService) List(ctx context.Context, limit int) ([]ledger.DisplayRow, error) {
	txs, err := s.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return ledger.Present(txs, len(txs)), nil
}

// Recent returns the newest transactions unformatted, in list order.
func (s *LedgerService) Recent(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = s.listLimit
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(snap.Transactions(), limit), nil
}

// Draft returns a cleared entry form.
func (s *LedgerService) Draft() core.TransactionInput {
	return core.NewDraft(s.now())
}

// AddTransaction appends in, publishes the event and reloads the dashboard.
// Publish and reload failures are logged; once the row is on disk the call
// succeeds.
func (s *LedgerService) AddTransaction(ctx context.Context, in core.TransactionInput) (AddResult, error) {
	s.mu.Lock()
	tx, err := s.store.AddTransaction(ctx, in)
	s.mu.Unlock()
	if err != nil {
		return AddResult{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransaction(ctx, tx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction event",
				log.FieldOperation, log.OpPublish,
				log.FieldError, err)
		}
	}

	result := AddResult{Transaction: tx}
	snap, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Reload after append failed", log.FieldError, err)
		return result, nil
	}
	result.Dashboard = ledger.BuildDashboard(snap)
	result.Reloaded = true
	return result, nil
}

// Init creates the ledger file when it does not exist yet.
func (s *LedgerService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Init(ctx)
}

// Export loads the ledger and hands the snapshot to exp.
func (s *LedgerService) Export(ctx context.Context, exp Exporter) (storage.ExportSummary, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return storage.ExportSummary{}, err
	}
	summary, err := exp.ReplaceSnapshot(ctx, snap)
	if err != nil {
		return storage.ExportSummary{}, fmt.Errorf("export ledger: %w", err)
	}
	return summary, nil
}

// Close releases the publisher when it holds a connection.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newestFirst(txs []core.Transaction, limit int) []core.Transaction {
	sorted := ledger.SortNewestFirst(txs)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
