package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"financepilot/internal/core"
	"financepilot/internal/ledger"
)

// TransactionAppendedMessage announces one row appended to the ledger.
// Values holds the cells exactly as written, in header order, so consumers
// can mirror the row without reading the file.
type TransactionAppendedMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Values    []string  `json:"values"`
	Category  string    `json:"category"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
}

// NewTransactionAppendedMessage builds the event for tx with a fresh ID.
func NewTransactionAppendedMessage(tx core.Transaction) *TransactionAppendedMessage {
	return &TransactionAppendedMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Values:    ledger.RowValues(tx),
		Category:  tx.Category,
		Kind:      tx.Kind().String(),
		Amount:    core.FormatAmount(tx.Amount()),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionAppendedMessageFromJSON decodes and checks a message body.
func TransactionAppendedMessageFromJSON(data []byte) (*TransactionAppendedMessage, error) {
	var msg TransactionAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message has no id")
	}
	if want := len(ledger.Columns()); len(msg.Values) != want {
		return nil, fmt.Errorf("message %s has %d values, want %d", msg.ID, len(msg.Values), want)
	}
	return &msg, nil
}
