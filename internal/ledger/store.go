package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"financepilot/internal/core"
	"financepilot/internal/log"
)

// DefaultMaxBytes bounds how much of the file Load reads into memory.
const DefaultMaxBytes int64 = 32 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Store owns all I/O on one ledger file. It keeps no state between calls.
type Store struct {
	path     string
	maxBytes int64
	logger   *log.Logger
	now      func() time.Time
}

type Option func(*Store)

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

// WithClock sets the time source used for Snapshot.LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open returns a Store for path. The file is not touched until Load,
// AddTransaction or Init is called.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		maxBytes: DefaultMaxBytes,
		logger:   log.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path is the ledger file location.
func (s *Store) Path() string { return s.path }

// Load reads the whole file and returns its rows in file order.
//
// A missing file fails with core.FileMissingError. Rows whose date cannot be
// parsed are skipped and listed in Snapshot.Malformed; every other row still
// loads. Currency cells go through core.NormalizeString and never fail.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.readAll()
	if err != nil {
		return nil, err
	}
	snap, err := s.parse(data)
	if err != nil {
		return nil, err
	}

	if len(snap.missingColumns) > 0 {
		s.logger.WarnContext(ctx, "Currency columns missing from ledger header, reading as zero",
			log.FieldLedgerPath, s.path,
			"columns", strings.Join(snap.missingColumns, ", "))
	}
	for _, m := range snap.malformed {
		s.logger.WarnContext(ctx, "Skipping malformed ledger row",
			log.FieldRow, m.Row,
			log.FieldError, m.Error())
	}
	s.logger.DebugContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldLedgerPath, s.path,
		log.FieldRows, len(snap.txs),
		log.FieldMalformedRows, len(snap.malformed))
	return snap, nil
}

func (s *Store) readAll() ([]byte, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &core.FileMissingError{Path: s.path}
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", core.ErrFileTooLarge, s.path, s.maxBytes)
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

func (s *Store) parse(data []byte) (*Snapshot, error) {
	snap := &Snapshot{path: s.path, loadedAt: s.now()}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		snap.missingColumns = CurrencyColumns()
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger header: %w", err)
	}
	idx := indexHeader(header)
	for _, col := range currencyColumns {
		if _, ok := idx[col]; !ok {
			snap.missingColumns = append(snap.missingColumns, col)
		}
	}

	row := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				snap.malformed = append(snap.malformed, &core.MalformedRecordError{Row: row, Err: err})
				continue
			}
			return nil, fmt.Errorf("read ledger row %d: %w", row, err)
		}
		if blankRecord(record) {
			continue
		}

		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		rawDate := cell(ColDate)
		date, err := core.ParseDate(rawDate)
		if err != nil {
			snap.malformed = append(snap.malformed, &core.MalformedRecordError{Row: row, Value: rawDate, Err: err})
			continue
		}
		snap.txs = append(snap.txs, core.Transaction{
			Row:             row,
			Date:            date,
			Category:        cell(ColCategory),
			Description:     cell(ColDescription),
			PaymentMethod:   core.PaymentMethod(cell(ColPaymentMethod)),
			TransactionTo:   cell(ColTransactionTo),
			TransactionFrom: cell(ColTransactionFrom),
			Income:          core.NormalizeString(cell(ColIncome)),
			Expense:         core.NormalizeString(cell(ColExpense)),
			Balances: core.Balances{
				Muamalat: core.NormalizeString(cell(ColBalanceMuamalat)),
				TnG:      core.NormalizeString(cell(ColBalanceTnG)),
				Cash:     core.NormalizeString(cell(ColBalanceCash)),
			},
		})
	}
	return snap, nil
}

// indexHeader maps trimmed header names to their position. The first
// occurrence of a duplicated name wins.
func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
