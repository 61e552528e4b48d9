package core

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// DiskDateLayout is how new rows store their date.
	DiskDateLayout = "01/02/2006"
	// DisplayDateLayout is how the list renders dates.
	DisplayDateLayout = "2006-01-02"
)

var errEmptyDate = errors.New("empty date")

// Date is a calendar day at UTC midnight.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts any common calendar date spelling. Slash dates are read
// month first, matching the ledger's MM/DD/YYYY rows. A time part is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, errEmptyDate
	}
	for _, layout := range []string{DiskDateLayout, "1/2/2006", DisplayDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Disk formats the date as written to the ledger file.
func (d Date) Disk() string { return d.Format(DiskDateLayout) }

// Display formats the date for the transaction list.
func (d Date) Display() string { return d.Format(DisplayDateLayout) }
