package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type (
	Date struct {
		time.Time
	}

	// Transaction is one recorded spending event. Timestamp is epoch milliseconds.
	Transaction struct {
		ID        int64
		Amount    decimal.Decimal
		Category  string
		Timestamp int64
		Notes     string // optional
		App       string // optional payment channel tag
	}

	Category struct {
		ID   int64
		Name string
	}

	// Draft is the unvalidated input for a new transaction.
	Draft struct {
		Amount   string
		Category string
		Date     Date
		Notes    string
		App      string
	}
)

// DefaultCategories is the seed set, inserted in this order into an empty store.
var DefaultCategories = []string{"Food", "Transport", "Shopping", "Entertainment", "Other"}

// Timestamps are non-negative epoch milliseconds, and dates render as four
// digit years.
const (
	MinYear = 1970
	MaxYear = 9999
)

// MaxNotesLength caps Draft.Notes, counted in characters after trimming.
const MaxNotesLength = 500

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	if y := d.Year(); y < MinYear || y > MaxYear {
		return fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidDate, y, MinYear, MaxYear)
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Time returns the transaction timestamp as a time in loc.
func (t Transaction) Time(loc *time.Location) time.Time {
	return time.UnixMilli(t.Timestamp).In(loc)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Validate checks the draft; any failure wraps ErrInvalidDraft.
func (d Draft) Validate() error {
	if _, err := ParseAmount(d.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	if strings.TrimSpace(d.Category) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, ErrEmptyCategory)
	}
	if err := d.Date.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(d.Notes)); n > MaxNotesLength {
		return fmt.Errorf("%w: notes too long (%d characters, max %d)", ErrInvalidDraft, n, MaxNotesLength)
	}
	return nil
}
