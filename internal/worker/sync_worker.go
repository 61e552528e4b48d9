package worker

import (
	"context"
	"fmt"

	"financepilot/internal/amqp"
	"financepilot/internal/ledger"
	"financepilot/internal/log"
	"financepilot/internal/sheets"
)

// Journal remembers which messages were already mirrored so redelivered
// messages do not produce duplicate rows.
type Journal interface {
	IsMirrored(ctx context.Context, messageID string) (bool, error)
	MarkMirrored(ctx context.Context, messageID, ref string) error
}

// SyncWorker copies appended ledger rows into a mirror sheet.
type SyncWorker struct {
	mirror  sheets.Mirror
	journal Journal
	logger  *log.Logger
}

// NewSyncWorker builds a worker. journal may be nil, in which case every
// delivery is appended.
func NewSyncWorker(mirror sheets.Mirror, journal Journal, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		mirror:  mirror,
		journal: journal,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// Prepare makes sure the mirror carries the ledger header.
func (w *SyncWorker) Prepare(ctx context.Context) error {
	if err := w.mirror.EnsureHeader(ctx, ledger.Columns()); err != nil {
		return fmt.Errorf("ensure mirror header: %w", err)
	}
	return nil
}

// HandleMessage appends the message's row to the mirror. A returned error
// makes the consumer requeue the message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionAppendedMessage) error {
	if w.journal != nil {
		done, err := w.journal.IsMirrored(ctx, msg.ID)
		if err != nil {
			return err
		}
		if done {
			w.logger.InfoContext(ctx, "Skipping already mirrored message", log.FieldMessageID, msg.ID)
			return nil
		}
	}

	ref, err := w.mirror.AppendRow(ctx, msg.Values)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	if w.journal != nil {
		if err := w.journal.MarkMirrored(ctx, msg.ID, ref); err != nil {
			// The row is in the mirror; a redelivery may duplicate it.
			w.logger.ErrorContext(ctx, "Failed to record mirrored message",
				log.FieldMessageID, msg.ID,
				log.FieldError, err)
		}
	}

	w.logger.InfoContext(ctx, "Transaction mirrored",
		log.FieldOperation, log.OpSync,
		log.FieldMessageID, msg.ID,
		log.FieldSheetsRef, ref,
		log.FieldCategory, msg.Category,
		log.FieldKind, msg.Kind,
		log.FieldAmount, msg.Amount)
	return nil
}
