package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1500.50", "1500.5", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{".5", "0.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.001", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"0", "Rp0"},
		{"5", "Rp5"},
		{"2000", "Rp2.000"},
		{"1500.5", "Rp1.500,50"},
		{"3500.50", "Rp3.500,50"},
		{"1234567.891", "Rp1.234.567,89"},
		{"100000", "Rp100.000"},
		{"-25000", "-Rp25.000"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(decimal.RequireFromString(tc.in)); got != tc.out {
			t.Errorf("FormatRupiah(%s) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestMonthComparisonChangeLabel(t *testing.T) {
	up := decimal.RequireFromString("12.5")
	down := decimal.RequireFromString("-3")
	cases := []struct {
		c    MonthComparison
		want string
	}{
		{MonthComparison{PercentChange: &up}, "+12.5%"},
		{MonthComparison{PercentChange: &down}, "-3.0%"},
		{MonthComparison{}, ""},
	}
	for i, tc := range cases {
		if got := tc.c.ChangeLabel(); got != tc.want {
			t.Errorf("case %d: got %q want %q", i, got, tc.want)
		}
	}
}
