// Package core provides money parsing and handling utilities.
//
// This file contains the currency normalizer used on every amount read from
// the ledger. It is a sanitizer, not a validator: any text it cannot make
// sense of becomes zero.
package core

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var currencyMarker = regexp.MustCompile(`(?i)rm`)

var ringgit = money.NewFormatter(2, ".", ",", "RM", "$ 1")

// MaxAmount is the largest amount a new row may carry.
var MaxAmount = decimal.New(1, 12)

// NormalizeString converts hand-entered currency text to an amount.
//
// The "RM" marker, thousands separators and whitespace are dropped. A value
// made only of dashes is the spreadsheet placeholder for "nothing" and reads
// as zero, as do blank and unparsable values. A leading dash is dropped too,
// so amounts never come out negative.
//
// Examples:
//
//	NormalizeString("RM 1,250.00") -> 1250
//	NormalizeString("RM-")         -> 0
//	NormalizeString("abc")         -> 0
func NormalizeString(s string) decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero
	}
	cleaned := currencyMarker.ReplaceAllString(s, "")
	cleaned = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)
	if strings.Trim(cleaned, "-") == "" {
		return decimal.Zero
	}
	// Currency text never uses exponents, and expanding one can produce a
	// row larger than the ledger read bound.
	if strings.ContainsAny(cleaned, "eE") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimLeft(cleaned, "-"))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Normalize is the total form of NormalizeString over any cell value.
// Numbers pass through unchanged; nil and unknown types read as zero.
func Normalize(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	case string:
		return NormalizeString(v)
	case *string:
		if v == nil {
			return decimal.Zero
		}
		return NormalizeString(*v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// FormatRinggit renders an amount for the dashboard, e.g. "RM 1,234.50".
func FormatRinggit(d decimal.Decimal) string {
	return ringgit.Format(d.Shift(2).Round(0).IntPart())
}

// FormatAmount renders an amount with two decimals and no marker, as written
// to the ledger and shown in the list.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
