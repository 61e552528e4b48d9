package core

import (
	"errors"
	"fmt"
)

var (
	// ErrFileMissing means the ledger file is absent at the configured path.
	ErrFileMissing = errors.New("ledger file not found")
	// ErrMalformedRecord marks a single row that could not be read.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidInput means submitted fields failed validation before any write.
	ErrInvalidInput = errors.New("invalid input")
	// ErrLockedFile means the ledger could not be opened or locked for append.
	// The caller may retry.
	ErrLockedFile = errors.New("ledger file is locked")
	// ErrFileTooLarge means the ledger exceeds the configured read bound.
	ErrFileTooLarge = errors.New("ledger file too large")
)

// FileMissingError carries the path that was expected to hold the ledger.
type FileMissingError struct {
	Path string
}

func (e *FileMissingError) Error() string {
	return fmt.Sprintf("ledger file not found: %s", e.Path)
}

func (e *FileMissingError) Is(target error) bool { return target == ErrFileMissing }

// MalformedRecordError reports a row skipped during load.
type MalformedRecordError struct {
	Row   int // 1-based data row, header excluded
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: malformed record %q: %v", e.Row, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d: malformed record %q", e.Row, e.Value)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// ValidationError names the submitted field that was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// LockedFileError wraps the OS error from opening or locking the ledger.
type LockedFileError struct {
	Path string
	Err  error
}

func (e *LockedFileError) Error() string {
	return fmt.Sprintf("ledger file is locked: %s: %v", e.Path, e.Err)
}

func (e *LockedFileError) Is(target error) bool { return target == ErrLockedFile }

func (e *LockedFileError) Unwrap() error { return e.Err }
