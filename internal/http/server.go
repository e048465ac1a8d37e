// Package http serves the statement viewer UI: the upload form, the parsed
// statement fragments and the operational endpoints.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/log"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/middleware/security"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/middleware/trace"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/parserapi"
	appweb "github.com/Kartik-Limbachiya/credit-card-statement-parser-project/web"
)

// CacheStats exposes hit/miss counters from the parse-result cache for the
// /metrics endpoint.
type CacheStats interface {
	Hits() int64
	Misses() int64
}

// Pinger is implemented by parsers that can verify the remote service is
// reachable. The readiness check uses it when available.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes server behavior. Zero values fall back to defaults.
type Options struct {
	MaxUploadBytes     int64
	RateLimitPerMinute int
	RateLimitBurst     int
	CacheStats         CacheStats
}

type appMetrics struct {
	statementsParsed int64
	parseFailures    int64
	uptime           time.Time
}

// Server owns the UI routes and the single outbound dependency, the
// statement parser. It holds no per-user state: every response is computed
// from the request and the parser's answer.
type Server struct {
	http.Server
	templates *template.Template
	parser    parserapi.StatementParser
	logger    *log.Logger

	rateLimiter      *rateLimiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	cacheStats       CacheStats
	maxUploadBytes   int64
	appMetrics       appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, parser parserapi.StatementParser, logger *log.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 20
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 5
	}

	mux := http.NewServeMux()
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		parser:           parser,
		logger:           logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      newRateLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		cacheStats:       opts.CacheStats,
		maxUploadBytes:   opts.MaxUploadBytes,
		appMetrics:       appMetrics{uptime: time.Now()},
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Error("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/statements", s.handleParseStatement)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.traceMiddleware.Middleware(headers.Middleware(s.withDetection(mux)))

	return s
}

// withDetection logs requests matching known probe patterns. They are still
// served; the signal feeds /metrics.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.securityDetector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) countParse(err error) {
	if err != nil {
		atomic.AddInt64(&s.appMetrics.parseFailures, 1)
		return
	}
	atomic.AddInt64(&s.appMetrics.statementsParsed, 1)
}
