package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{NewDate(1970, 1, 1), true},
		{NewDate(9999, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
		{NewDate(1969, 12, 31), false},   // before the epoch
		{NewDate(10000, 1, 1), false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("case %d expected ErrInvalidDate, got %v", i, err)
		}
	}

	// "0000-01-01" parses but cannot be stored
	d, err := ParseDate("0000-01-01")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := d.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for year 0, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-03-09 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 9 {
		t.Fatalf("got %v", d)
	}
	if d.String() != "2024-03-09" {
		t.Fatalf("String() = %q", d.String())
	}
	if _, err := ParseDate("09/03/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDateOfUsesOwnLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 2024-03-09 20:00 UTC is already 2024-03-10 in Jakarta
	instant := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC).In(jakarta)
	if got := DateOf(instant); got.String() != "2024-03-10" {
		t.Fatalf("DateOf = %s", got)
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{
		Amount:   "1500.50",
		Category: "Food",
		Date:     NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		name  string
		draft Draft
		cause error
	}{
		{"zero amount", Draft{Amount: "0", Category: "Food", Date: NewDate(2025, 1, 1)}, ErrInvalidAmount},
		{"negative amount", Draft{Amount: "-10", Category: "Food", Date: NewDate(2025, 1, 1)}, ErrInvalidAmount},
		{"empty category", Draft{Amount: "10", Category: "  ", Date: NewDate(2025, 1, 1)}, ErrEmptyCategory},
		{"zero date", Draft{Amount: "10", Category: "Food"}, ErrInvalidDate},
		{"long notes", Draft{Amount: "10", Category: "Food", Date: NewDate(2025, 1, 1), Notes: strings.Repeat("x", MaxNotesLength+1)}, nil},
		{"long multibyte notes", Draft{Amount: "10", Category: "Food", Date: NewDate(2025, 1, 1), Notes: strings.Repeat("é", MaxNotesLength+1)}, nil},
		{"pre-epoch date", Draft{Amount: "10", Category: "Food", Date: NewDate(1969, 7, 20)}, ErrInvalidDate},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if !errors.Is(err, ErrInvalidDraft) {
				t.Fatalf("expected ErrInvalidDraft, got %v", err)
			}
			if tc.cause != nil && !errors.Is(err, tc.cause) {
				t.Fatalf("expected cause %v, got %v", tc.cause, err)
			}
		})
	}
}

func TestDraftNotesLimitCountsCharacters(t *testing.T) {
	base := Draft{Amount: "10", Category: "Food", Date: NewDate(2025, 1, 1)}
	cases := []struct {
		name  string
		notes string
		ok    bool
	}{
		{"at limit", strings.Repeat("x", MaxNotesLength), true},
		{"multibyte at limit", strings.Repeat("é", MaxNotesLength), true},
		{"padding is trimmed", "  " + strings.Repeat("x", MaxNotesLength) + "\n", true},
		{"one over", strings.Repeat("x", MaxNotesLength+1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			d.Notes = tc.notes
			err := d.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidDraft) {
				t.Fatalf("expected ErrInvalidDraft, got %v", err)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Food"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: " "}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestDefaultCategoriesOrder(t *testing.T) {
	want := []string{"Food", "Transport", "Shopping", "Entertainment", "Other"}
	if len(DefaultCategories) != len(want) {
		t.Fatalf("got %v", DefaultCategories)
	}
	for i := range want {
		if DefaultCategories[i] != want[i] {
			t.Fatalf("position %d: got %q want %q", i, DefaultCategories[i], want[i])
		}
	}
}

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"day", "week", "month"} {
		if _, ok := ParsePeriod(s); !ok {
			t.Fatalf("%q should be valid", s)
		}
	}
	if _, ok := ParsePeriod("year"); ok {
		t.Fatalf("year should be invalid")
	}
}
