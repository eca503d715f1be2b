// Package http serves the ledger over a JSON API.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON or form-encoded; query parameters select windows.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pocketpal/internal/calendar"
	"pocketpal/internal/core"
)

// maxBodyBytes bounds request bodies read by RequestBodyParser.
const maxBodyBytes = 64 << 10

var errBadRange = errors.New("start and end must both be epoch milliseconds with start <= end")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseDraft builds a draft from the parsed body. A missing date means
// today in now's location; a malformed one is an invalid draft.
func ParseDraft(p *RequestBodyParser, now time.Time) (core.Draft, error) {
	d := core.Draft{
		Amount:   p.Get("amount"),
		Category: p.Get("category"),
		Notes:    p.Get("notes"),
		App:      p.Get("app"),
	}

	raw := p.Get("date")
	if raw == "" {
		d.Date = core.DateOf(now)
		return d, nil
	}
	date, err := core.ParseDate(raw)
	if err != nil {
		return core.Draft{}, fmt.Errorf("%w: %w", core.ErrInvalidDraft, err)
	}
	d.Date = date
	return d, nil
}

// TransactionQuery selects which transactions a list request returns.
type TransactionQuery struct {
	Window *calendar.Window
	Period core.Period
}

// ParseTransactionQuery reads ?start=&end= (epoch ms) or ?period=. No
// parameters selects every transaction.
func ParseTransactionQuery(query url.Values, now time.Time) (TransactionQuery, error) {
	if v := strings.TrimSpace(query.Get("period")); v != "" {
		p, ok := core.ParsePeriod(v)
		if !ok {
			return TransactionQuery{}, fmt.Errorf("unknown period %q", v)
		}
		strategy, err := calendar.StrategyFor(p)
		if err != nil {
			return TransactionQuery{}, err
		}
		w := strategy.Window(now)
		return TransactionQuery{Window: &w, Period: p}, nil
	}

	startRaw := strings.TrimSpace(query.Get("start"))
	endRaw := strings.TrimSpace(query.Get("end"))
	if startRaw == "" && endRaw == "" {
		return TransactionQuery{}, nil
	}

	start, err := strconv.ParseInt(startRaw, 10, 64)
	if err != nil {
		return TransactionQuery{}, errBadRange
	}
	end, err := strconv.ParseInt(endRaw, 10, 64)
	if err != nil || end < start {
		return TransactionQuery{}, errBadRange
	}

	loc := now.Location()
	w := calendar.Window{Start: time.UnixMilli(start).In(loc), End: time.UnixMilli(end).In(loc)}
	return TransactionQuery{Window: &w}, nil
}

// ParseLimit reads a positive integer parameter, falling back to def.
func ParseLimit(query url.Values, key string, def int) int {
	if v := strings.TrimSpace(query.Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
