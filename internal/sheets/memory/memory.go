package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Store is an in-process mirror. Rows are kept in append order.
type Store struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
}

func New() *Store {
	return &Store{}
}

// AppendRow stores a copy of values and returns a synthetic row reference.
func (s *Store) AppendRow(_ context.Context, values []string) (string, error) {
	if len(values) == 0 {
		return "", errors.New("empty row")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, slices.Clone(values))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// EnsureHeader records header unless one is already set.
func (s *Store) EnsureHeader(_ context.Context, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.header == nil {
		s.header = slices.Clone(header)
	}
	return nil
}

// Header returns the recorded header, nil when none was written.
func (s *Store) Header() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.header)
}

// Rows returns copies of every appended row.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = slices.Clone(r)
	}
	return out
}
