// Package http serves the penalty fund dashboard: CRUD pages for penalties,
// players and the catalog, the statistics view, the CSV export and a small
// JSON API for chart data. Pages render server-side from embedded templates.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"strafenkasse/internal/cache"
	"strafenkasse/internal/core"
	"strafenkasse/internal/metrics"
	"strafenkasse/internal/stats"
	"strafenkasse/internal/store"
	appweb "strafenkasse/web"
)

// Options carries the page and range limits, usually taken from config.
// Zero fields fall back to the documented defaults.
type Options struct {
	PageSize      int
	RecentLimit   int
	TopLimit      int
	DashboardDays int
	StatsDays     int
	CacheTTL      time.Duration
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 20
	}
	if o.RecentLimit <= 0 {
		o.RecentLimit = 10
	}
	if o.TopLimit <= 0 {
		o.TopLimit = 10
	}
	if o.DashboardDays <= 0 {
		o.DashboardDays = 30
	}
	if o.StatsDays <= 0 {
		o.StatsDays = 90
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	return o
}

type Server struct {
	http.Server

	templates *template.Template
	recorder  store.Recorder
	catalog   store.Catalog
	entries   store.EntryLister
	metrics   *metrics.Manager
	opts      Options

	rateLimiter *rateLimiter

	// Overviews are cached per date range and dropped wholesale on writes.
	overviewCache *cache.LRUCache[stats.Overview]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, rec store.Recorder, cat store.Catalog, lst store.EntryLister, mm *metrics.Manager, opts Options) *Server {
	mux := http.NewServeMux()
	opts = opts.withDefaults()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		recorder:      rec,
		catalog:       cat,
		entries:       lst,
		metrics:       mm,
		opts:          opts,
		rateLimiter:   newRateLimiter(),
		overviewCache: cache.NewLRUCache[stats.Overview](100, opts.CacheTTL),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Tiny cache for static assets
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/penalties", s.withSecurityHeaders(s.handlePenalties))
	mux.HandleFunc("/penalties/new", s.withSecurityHeaders(s.handleNewPenalty))
	mux.HandleFunc("/players", s.withSecurityHeaders(s.handlePlayers))
	mux.HandleFunc("/penalty-types", s.withSecurityHeaders(s.handlePenaltyTypes))
	mux.HandleFunc("/statistics", s.withSecurityHeaders(s.handleStatistics))
	mux.HandleFunc("/export/csv", s.withSecurityHeaders(s.handleExportCSV))
	mux.HandleFunc("/api/chart-data", s.withSecurityHeaders(s.handleChartData))
	if mm != nil {
		mux.Handle("/metrics", mm.Handler())
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		// Generate request ID for tracing
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r) {
			slog.WarnContext(ctx, "Suspicious request pattern",
				"request_id", requestID,
				"client_ip", clientIP,
				"url", r.URL.String())
		}

		// Rate limiting applies to writes only.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
		s.metrics.ObserveRequest(r.URL.Path, r.Method, rw.statusCode, duration)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// overviewFor returns the aggregates for one date range, from cache when a
// fresh copy is there.
func (s *Server) overviewFor(ctx context.Context, rng core.DateRange) (stats.Overview, error) {
	key := rng.From.String() + ".." + rng.To.String()

	if ov, found := s.overviewCache.Get(key); found {
		slog.DebugContext(ctx, "Overview cache hit", "range", key)
		return ov, nil
	}

	entries, err := s.entries.ListEntries(ctx, store.Filter{Range: rng})
	if err != nil {
		return stats.Overview{}, fmt.Errorf("list entries for overview: %w", err)
	}

	// Entries are already range-filtered by the store.
	ov := stats.BuildOverview(entries, core.DateRange{})
	s.overviewCache.Set(key, ov)
	slog.DebugContext(ctx, "Overview cached", "range", key, "entries", len(entries))
	return ov, nil
}

// invalidateOverviews drops all cached aggregates after a write.
func (s *Server) invalidateOverviews() {
	s.overviewCache.Clear()
}
