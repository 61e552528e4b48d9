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
	"path/filepath"

	"financepilot/internal/core"
	"financepilot/internal/log"
)

// AddTransaction validates in and appends it as one new line.
//
// Validation failures return core.ValidationError before the file is opened.
// Existing rows are never re-serialized: the file is opened in append mode
// and the new line goes out in a single write. A file that cannot be opened
// or locked yields core.LockedFileError; a failed write is rolled back so no
// partial line remains.
func (s *Store) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := in.Validate()
	if err != nil {
		return core.Transaction{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.appendRow(RowValues(tx)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to append transaction",
			log.FieldOperation, log.OpAppend,
			log.FieldLedgerPath, s.path,
			log.FieldError, err)
		return core.Transaction{}, err
	}

	fields := log.NewFields().
		WithOperation(log.OpAppend).
		WithLedger(s.path).
		WithTransaction(tx.Category, tx.Kind().String(), core.FormatAmount(tx.Amount()))
	s.logger.InfoContext(ctx, "Transaction appended", fields.ToSlice()...)
	return tx, nil
}

func (s *Store) appendRow(values []string) (err error) {
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &core.FileMissingError{Path: s.path}
		}
		return &core.LockedFileError{Path: s.path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close ledger: %w", cerr)
		}
	}()

	if err := lockFile(f); err != nil {
		return &core.LockedFileError{Path: s.path, Err: err}
	}
	defer unlockFile(f)

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}
	size := info.Size()
	tail, err := readTail(f, size)
	if err != nil {
		return fmt.Errorf("read ledger tail: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = bytes.HasSuffix(tail, []byte("\r\n"))
	if size == 0 {
		// An empty file gets its header in the same write.
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
	} else if !bytes.HasSuffix(tail, []byte("\n")) {
		if w.UseCRLF {
			buf.WriteString("\r\n")
		} else {
			buf.WriteByte('\n')
		}
	}
	if err := w.Write(values); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	n, werr := f.Write(buf.Bytes())
	if werr == nil && n != buf.Len() {
		werr = io.ErrShortWrite
	}
	if werr != nil {
		if terr := f.Truncate(size); terr != nil {
			return errors.Join(fmt.Errorf("append to ledger: %w", werr), fmt.Errorf("roll back partial append: %w", terr))
		}
		return fmt.Errorf("append to ledger: %w", werr)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	return nil
}

// readTail returns up to the last two bytes of the file, enough to tell how
// the final line ends.
func readTail(f *os.File, size int64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	n := int64(2)
	if size < n {
		n = size
	}
	tail := make([]byte, n)
	if _, err := f.ReadAt(tail, size-n); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return tail, nil
}

// Init creates the ledger with just its header row. An existing file is left
// untouched.
func (s *Store) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("create ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger created", log.FieldOperation, log.OpInit, log.FieldLedgerPath, s.path)
	return nil
}
