// Package http serves the JSON API over the configured backend. Summary and
// statistics responses are cached per key and purged on every write.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"driverledger/internal/backend"
	"driverledger/internal/cache"
	"driverledger/internal/core"
	"driverledger/internal/log"
)

type Server struct {
	http.Server
	store       backend.Backend
	rateLimiter *rateLimiter

	// Aggregates are cheap to recompute but hit the backend for a full
	// listing, which matters when the backend is a spreadsheet.
	summaryCache *cache.LRUCache[core.Summary]
	statsCache   *cache.LRUCache[core.Stats]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, store backend.Backend) *Server {
	mux := http.NewServeMux()

	// Route errors resolved via log.FromContext carry the http component.
	logger := log.New(log.Config{
		Handler:   slog.Default().Handler(),
		Component: log.ComponentHTTP,
	})

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: log.Middleware(logger)(mux),
		},
		store:        store,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[core.Summary](100, 5*time.Minute),
		statsCache:   cache.NewLRUCache[core.Stats](1, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /config", s.withMiddleware(s.handleGetConfig))
	mux.HandleFunc("PUT /config", s.withMiddleware(s.handleUpdateConfig))

	mux.HandleFunc("POST /records", s.withMiddleware(s.handleSaveRecord))
	mux.HandleFunc("GET /records", s.withMiddleware(s.handleListRecords))
	mux.HandleFunc("GET /records/last", s.withMiddleware(s.handleLastRecord))
	mux.HandleFunc("GET /records/{date}", s.withMiddleware(s.handleGetRecord))
	mux.HandleFunc("DELETE /records/{date}", s.withMiddleware(s.handleDeleteRecord))

	mux.HandleFunc("GET /summary/week", s.withMiddleware(s.handleWeekSummary))
	mux.HandleFunc("GET /summary/month", s.withMiddleware(s.handleMonthSummary))
	mux.HandleFunc("GET /statistics", s.withMiddleware(s.handleStatistics))

	mux.HandleFunc("GET /export", s.withMiddleware(s.handleExport))

	return s
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate limit mutating requests only; reads are cache-friendly.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}

// invalidateAggregates drops cached summaries after any write. A single
// record can move its week, its month, and the lifetime statistics.
func (s *Server) invalidateAggregates() {
	s.summaryCache.Purge()
	s.statsCache.Purge()
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness means the backend answers; the config read is the cheapest
	// call every backend supports.
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.store.VehicleConfig(ctx); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("backend unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
