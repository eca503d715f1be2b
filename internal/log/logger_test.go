package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		records = append(records, rec)
	}
	return records
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.name))
		})
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentStorage, Output: &buf})

	logger.Info("opened", "path", "ledger.db")
	logger.Debug("hidden")
	logger.WithComponent(ComponentRelay).Warn("queue full")

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "storage", records[0][FieldComponent])
	assert.Equal(t, "ledger.db", records[0]["path"])
	assert.Equal(t, "relay", records[1][FieldComponent])
	assert.Equal(t, "WARN", records[1]["level"])
	assert.Equal(t, ComponentStorage, logger.Component())
}

func TestNewDefaultsComponent(t *testing.T) {
	logger := New(Config{Output: &bytes.Buffer{}})
	assert.Equal(t, ComponentApp, logger.Component())
}

func TestFromContext(t *testing.T) {
	fallback := FromContext(context.Background())
	assert.Equal(t, "unknown", fallback.Component())

	logger := New(Config{Output: &bytes.Buffer{}, Component: ComponentHTTP})
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentLedger).
		WithOperation(OpCreate).
		WithTransaction(7, "25000", "Transport", 1709708400000).
		WithError(errors.New("boom")).
		WithError(nil)

	assert.Equal(t, "ledger", fields[FieldComponent])
	assert.Equal(t, int64(7), fields[FieldTransactionID])
	assert.Equal(t, "Transport", fields[FieldCategory])
	assert.Equal(t, "boom", fields[FieldError])
	assert.Len(t, fields.ToSlice(), len(fields)*2)
}

func TestMiddlewareCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Component: ComponentHTTP, Output: &buf})

	handler := Middleware(logger)(RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get("X-Request-ID")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handled")
	})))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "req-42", records[0][FieldRequestID])
	assert.Equal(t, "http", records[0][FieldComponent])
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
	ctx := context.Background()

	for _, status := range []int{200, 404, 503} {
		sl.LogHTTPEnd(ctx, httptest.NewRequest(http.MethodGet, "/summary", nil), status, 3, "10.0.0.1")
	}
	sl.LogTransactionCreated(ctx, 1, "5000", "Food", 1709708400000)

	records := decodeLines(t, &buf)
	require.Len(t, records, 4)
	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "WARN", records[1]["level"])
	assert.Equal(t, "ERROR", records[2]["level"])
	assert.Equal(t, "/summary", records[0][FieldPath])
	assert.Equal(t, "Transaction created", records[3]["msg"])
	assert.Equal(t, "Food", records[3][FieldCategory])
}
