package core

import "time"

// NewDraft returns a cleared entry form: today's date, Cash, Expense and
// everything else blank.
func NewDraft(now time.Time) TransactionInput {
	return TransactionInput{
		Date:          now.Format(DiskDateLayout),
		PaymentMethod: string(Cash),
		Type:          string(Expense),
	}
}
