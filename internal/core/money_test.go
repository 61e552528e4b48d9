package core

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeString(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"RM 30.00", "30"},
		{"RM30", "30"},
		{"rm 5.5", "5.5"},
		{"RM 1,250.50", "1250.5"},
		{"1,234", "1234"},
		{" 42 ", "42"},
		{"RM-", "0"},
		{"-", "0"},
		{"--", "0"},
		{"RM -12.30", "12.3"},
		{"", "0"},
		{"   ", "0"},
		{"abc", "0"},
		{"12.3.4", "0"},
		{"NaN", "0"},
		{"RM", "0"},
		{"1e2", "0"},
		{"RM 1E2000000", "0"},
		{"2.5e-3", "0"},
	}
	for _, tc := range cases {
		got := NormalizeString(tc.in)
		want := decimal.RequireFromString(tc.out)
		if !got.Equal(want) {
			t.Fatalf("%q expected %s, got %s", tc.in, want, got)
		}
		if got.IsNegative() {
			t.Fatalf("%q produced negative amount %s", tc.in, got)
		}
	}
}

func TestNormalizeAnyValue(t *testing.T) {
	s := "RM 7.25"
	var nilString *string
	cases := []struct {
		name string
		in   any
		out  string
	}{
		{"nil", nil, "0"},
		{"float", 42.5, "42.5"},
		{"negative float passes through", -3.0, "-3"},
		{"int", 7, "7"},
		{"int64", int64(9), "9"},
		{"decimal", decimal.RequireFromString("1.005"), "1.005"},
		{"string", "RM 30.00", "30"},
		{"string pointer", &s, "7.25"},
		{"nil string pointer", nilString, "0"},
		{"NaN", math.NaN(), "0"},
		{"Inf", math.Inf(1), "0"},
		{"unknown type", struct{}{}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("expected %s, got %s", tc.out, got)
			}
		})
	}
}

func TestFormatRinggit(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"1234.5", "RM 1,234.50"},
		{"0", "RM 0.00"},
		{"0.07", "RM 0.07"},
		{"1000000", "RM 1,000,000.00"},
		{"-12.3", "-RM 12.30"},
	}
	for _, tc := range cases {
		if got := FormatRinggit(decimal.RequireFromString(tc.in)); got != tc.out {
			t.Fatalf("%s expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("15.5")); got != "15.50" {
		t.Fatalf("expected 15.50, got %q", got)
	}
}
