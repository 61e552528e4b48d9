// Package sheets defines the outbound ports used to mirror ledger rows into
// a spreadsheet.
package sheets

import "context"

// Ports for outbound adapters.
type (
	// RowAppender appends one row of cells, already in header order, and
	// returns a reference to where it landed.
	RowAppender interface {
		AppendRow(ctx context.Context, values []string) (rowRef string, err error)
	}

	// HeaderEnsurer writes the header row when the target sheet is empty.
	HeaderEnsurer interface {
		EnsureHeader(ctx context.Context, header []string) error
	}

	// Mirror is what the sync worker needs from a backend.
	Mirror interface {
		RowAppender
		HeaderEnsurer
	}
)
