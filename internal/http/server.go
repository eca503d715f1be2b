package http

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"pocketpal/internal/log"
	"pocketpal/internal/ports"
)

// Ledger is everything the HTTP surface needs from the ledger service.
type Ledger interface {
	ports.TransactionWriter
	ports.TransactionReader
	ports.CategoryStore
	ports.ChangeSubscriber
	ports.HealthChecker
	Now() time.Time
}

// Options configures NewServer. Zero values select defaults.
type Options struct {
	Addr              string
	RecentLimit       int
	RequestsPerMinute int
	// Budget for /categories writes; 0 follows RequestsPerMinute
	CategoryRequestsPerMinute int
	Logger                    *log.Logger
}

type appMetrics struct {
	totalTransactions int64
	totalRequests     int64
	uptime            time.Time
}

type Server struct {
	http.Server
	ledger      Ledger
	reports     ports.ReportReader
	logger      *log.Logger
	rateLimiter *rateLimiter
	security    *securityMetrics
	appMetrics  *appMetrics
	recentLimit int

	// closed on Shutdown so open event streams end
	stopStreams  chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(opts Options, ledger Ledger, reports ports.ReportReader) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	recent := opts.RecentLimit
	if recent <= 0 {
		recent = 3
	}

	s := &Server{
		ledger:      ledger,
		reports:     reports,
		logger:      logger,
		rateLimiter: newRateLimiter(opts.RequestsPerMinute, opts.CategoryRequestsPerMinute),
		security:    &securityMetrics{},
		appMetrics:  &appMetrics{uptime: time.Now()},
		recentLimit: recent,
		stopStreams: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/recent", s.handleRecentTransactions)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /reports/trend", s.handleWeekTrend)
	mux.HandleFunc("GET /reports/comparison", s.handleMonthComparison)
	mux.HandleFunc("GET /reports/{period}", s.handlePeriodReport)
	mux.HandleFunc("GET /export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /events", s.handleEvents)

	var handler http.Handler = mux
	handler = s.withRateLimit(handler)
	handler = s.withSecurityHeaders(handler)
	handler = log.RequestIDMiddleware(requestIDFrom)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.withTracing(handler)

	// No WriteTimeout: /events streams for the life of the connection.
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopStreams)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type contextKey string

const requestIDKey contextKey = "request_id"

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// withTracing assigns a request id and logs request completion.
func (s *Server) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = generateRequestID()
		}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))
		w.Header().Set("X-Request-ID", requestID)

		atomic.AddInt64(&s.appMetrics.totalRequests, 1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		log.NewStructuredLogger(s.logger.With(log.FieldRequestID, requestID)).
			LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// withSecurityHeaders adds hardening headers and flags probing requests.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if detectSuspiciousRequest(r, s.security) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, extractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		setSecurityHeaders(w.Header())
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies the per-IP write budget of the route's scope.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			clientIP := extractClientIP(r)
			scope := scopeOf(r.URL.Path)
			if ok, wait := s.rateLimiter.allow(scope, clientIP, s.security); !ok {
				log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
					log.FieldClientIP, clientIP,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path,
					"scope", string(scope))
				ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, retry later").
					Header("Retry-After", retryAfterSeconds(wait)).
					Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds renders wait as whole seconds, never below one.
func retryAfterSeconds(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Flush lets event streams push through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
