package ledger

import (
	"errors"
	"slices"
	"time"

	"financepilot/internal/core"
)

// Snapshot is the read-only result of one Load. Accessors hand out copies so
// holders cannot change what another holder sees.
type Snapshot struct {
	path           string
	loadedAt       time.Time
	txs            []core.Transaction
	malformed      []*core.MalformedRecordError
	missingColumns []string
}

// Path is the file the snapshot was read from.
func (s *Snapshot) Path() string { return s.path }

// LoadedAt is when the file was read.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Len is the number of valid rows.
func (s *Snapshot) Len() int { return len(s.txs) }

// Transactions returns the valid rows in file order.
func (s *Snapshot) Transactions() []core.Transaction { return slices.Clone(s.txs) }

// Last returns the most recently appended valid row.
func (s *Snapshot) Last() (core.Transaction, bool) {
	if len(s.txs) == 0 {
		return core.Transaction{}, false
	}
	return s.txs[len(s.txs)-1], true
}

// Malformed returns the rows skipped because their date could not be read.
func (s *Snapshot) Malformed() []*core.MalformedRecordError { return slices.Clone(s.malformed) }

// MissingColumns lists currency columns absent from the header. Their values
// read as zero.
func (s *Snapshot) MissingColumns() []string { return slices.Clone(s.missingColumns) }

// Err joins the malformed-row errors, or returns nil when every row loaded.
func (s *Snapshot) Err() error {
	if len(s.malformed) == 0 {
		return nil
	}
	errs := make([]error, len(s.malformed))
	for i, m := range s.malformed {
		errs[i] = m
	}
	return errors.Join(errs...)
}
