package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"pocketpal/internal/core"
	"pocketpal/internal/export"
	"pocketpal/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}).Write(w)
}

// handleReady reports ready only while the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.ledger.Ping(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.activeClients(),
		"hits":           atomic.LoadInt64(&s.security.rateLimitHits),
	}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		logger.WarnContext(ctx, "Parse body error", log.FieldError, err, log.FieldPath, r.URL.Path)
		BadRequestError("malformed request body").Write(w)
		return
	}

	draft, err := ParseDraft(parser, s.ledger.Now())
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	id, err := s.ledger.AddTransaction(ctx, draft)
	if err != nil {
		s.logLedgerError(ctx, "Failed to save transaction", err, log.OpCreate)
		LedgerError(err).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalTransactions, 1)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/transactions/%d", id)).
		Body(map[string]int64{"id": id}).
		Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.ledger.Now()

	q, err := ParseTransactionQuery(r.URL.Query(), now)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var txs []core.Transaction
	if q.Window != nil {
		txs, err = s.ledger.GetTransactionsInRange(ctx, q.Window.Start, q.Window.End)
	} else {
		txs, err = s.ledger.GetAllTransactions(ctx)
	}
	if err != nil {
		s.logLedgerError(ctx, "Failed to list transactions", err, log.OpList)
		LedgerError(err).Write(w)
		return
	}

	NewJSONResponse().Body(newTransactionViews(txs, now.Location())).Write(w)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n := ParseLimit(r.URL.Query(), "n", s.recentLimit)

	txs, err := s.reports.Recent(ctx, n)
	if err != nil {
		s.logLedgerError(ctx, "Failed to read recent transactions", err, log.OpRead)
		LedgerError(err).Write(w)
		return
	}

	NewJSONResponse().Body(newTransactionViews(txs, s.ledger.Now().Location())).Write(w)
}

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := s.ledger.GetCategories(ctx)
	if err != nil {
		s.logLedgerError(ctx, "Failed to list categories", err, log.OpList)
		LedgerError(err).Write(w)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{ID: c.ID, Name: c.Name})
	}
	NewJSONResponse().Body(views).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	name := parser.Get("name")
	id, err := s.ledger.AddCategory(ctx, name)
	if err != nil {
		if !errors.Is(err, core.ErrDuplicateCategory) && !errors.Is(err, core.ErrEmptyCategory) {
			s.logLedgerError(ctx, "Failed to add category", err, log.OpCreate)
		}
		LedgerError(err).Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Body(categoryView{ID: id, Name: name}).
		Write(w)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	txs, err := s.ledger.GetAllTransactions(ctx)
	if err != nil {
		s.logLedgerError(ctx, "Failed to export transactions", err, log.OpExport)
		LedgerError(err).Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="pocketpal-transactions.csv"`)
	if err := export.WriteTransactionsCSV(w, txs, s.ledger.Now().Location()); err != nil {
		s.logLedgerError(ctx, "Failed to write CSV", err, log.OpExport)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	txs, err := s.ledger.GetAllTransactions(ctx)
	if err != nil {
		s.logLedgerError(ctx, "Failed to export transactions", err, log.OpExport)
		LedgerError(err).Write(w)
		return
	}

	// The workbook is built in memory so a failure can still become a 500.
	var buf bytes.Buffer
	if err := export.WriteTransactionsXLSX(&buf, txs, s.ledger.Now().Location()); err != nil {
		s.logLedgerError(ctx, "Failed to build XLSX", err, log.OpExport)
		InternalServerError("export failed").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pocketpal-transactions.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// logLedgerError logs server-side failures; validation errors stay quiet.
func (s *Server) logLedgerError(ctx context.Context, msg string, err error, op string) {
	status := StatusFor(err)
	if status < http.StatusInternalServerError {
		return
	}
	errorType := log.ErrorTypeDatabase
	if status == http.StatusServiceUnavailable {
		errorType = log.ErrorTypeUnavailable
	}
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogError(ctx, msg, err, log.ComponentHTTP, op, log.NewFields().WithErrorType(errorType))
}
