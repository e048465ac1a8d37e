package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/log"
	"github.com/Kartik-Limbachiya/credit-card-statement-parser-project/internal/parserapi"
)

// msgParseFailed is the unified user message for transport failures and
// malformed responses. Service-provided error text takes precedence when a
// rejection carries one.
const msgParseFailed = "Could not parse the statement. Please check the file and try again."

const msgServiceUnreachable = "The statement service is unreachable. Please try again in a moment."

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := indexView{Banks: bankOptions()}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleParseStatement is the upload round trip: validate the form, forward
// the PDF to the parsing service, render the result fragment. Validation
// failures never leave the process.
func (s *Server) handleParseStatement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	clientIP := s.securityDetector.ExtractClientIP(r)
	if !s.rateLimiter.allow(clientIP) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Too many uploads. Please wait a minute and try again.").
			Header("Retry-After", "60").
			Write(w)
		return
	}

	upload, err := parseStatementUpload(r, s.maxUploadBytes)
	if err != nil {
		var ue *uploadError
		if errors.As(err, &ue) {
			s.logger.WarnContext(r.Context(), "Upload rejected",
				log.FieldOperation, log.OpValidate, log.FieldError, err)
			ValidationError(ue.msg).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Upload parse error", log.FieldError, err)
		ValidationError(msgUnreadable).Write(w)
		return
	}

	st, err := s.parser.Parse(r.Context(), upload.Bank, upload.Filename, upload.Data)
	s.countParse(err)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Statement parse failed",
			log.FieldError, err,
			log.FieldBank, string(upload.Bank),
			log.FieldFilename, upload.Filename,
			log.FieldSizeBytes, len(upload.Data))
		UpstreamError(parseFailureMessage(err)).Write(w)
		return
	}

	s.logger.InfoContext(r.Context(), "Statement parsed",
		log.FieldBank, string(upload.Bank),
		log.FieldTxnCount, len(st.Transactions))

	// Render into a buffer first so a template failure becomes a clean
	// error fragment instead of a half-written response.
	var buf bytes.Buffer
	if s.templates == nil {
		ErrorResponse(http.StatusInternalServerError, "The result could not be displayed.").Write(w)
		return
	}
	if err := s.templates.ExecuteTemplate(&buf, "statement_result.html", buildStatementView(st)); err != nil {
		s.logger.ErrorContext(r.Context(), "Result template execution failed",
			log.FieldError, err, "template", "statement_result.html")
		ErrorResponse(http.StatusInternalServerError, "The result could not be displayed.").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerStatementParsed(string(upload.Bank)).
		BodyHTML(buf.String()).
		Write(w)
}

// parseFailureMessage maps a parse error to user-visible text. Transport
// failures and malformed responses share one generic message; a service
// rejection surfaces its own text when it provided any.
func parseFailureMessage(err error) string {
	var apiErr *parserapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var terr *parserapi.TransportError
	if errors.As(err, &terr) {
		return msgServiceUnreachable
	}
	return msgParseFailed
}

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs a readiness check with dependency verification.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if pinger, ok := s.parser.(Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			checks["parser_service"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["parser_service"] = "ok"
		}
	} else {
		checks["parser_service"] = "not_checked"
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	parsed := atomic.LoadInt64(&s.appMetrics.statementsParsed)
	failures := atomic.LoadInt64(&s.appMetrics.parseFailures)
	uptime := time.Since(s.appMetrics.uptime)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP statements_parsed_total Total statements parsed successfully\n")
	fmt.Fprintf(w, "# TYPE statements_parsed_total counter\n")
	fmt.Fprintf(w, "statements_parsed_total %d\n\n", parsed)

	fmt.Fprintf(w, "# HELP statement_parse_failures_total Total failed parse attempts\n")
	fmt.Fprintf(w, "# TYPE statement_parse_failures_total counter\n")
	fmt.Fprintf(w, "statement_parse_failures_total %d\n\n", failures)

	if s.cacheStats != nil {
		fmt.Fprintf(w, "# HELP parser_cache_hits_total Parse results served from cache\n")
		fmt.Fprintf(w, "# TYPE parser_cache_hits_total counter\n")
		fmt.Fprintf(w, "parser_cache_hits_total %d\n\n", s.cacheStats.Hits())

		fmt.Fprintf(w, "# HELP parser_cache_misses_total Parse requests sent to the service\n")
		fmt.Fprintf(w, "# TYPE parser_cache_misses_total counter\n")
		fmt.Fprintf(w, "parser_cache_misses_total %d\n\n", s.cacheStats.Misses())
	}

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.ActiveClients())

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}
