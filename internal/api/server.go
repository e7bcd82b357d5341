// Package api exposes the shortlisting service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fmuoria/resume-shortlisting/internal/ingestion"
	"github.com/fmuoria/resume-shortlisting/internal/logger"
	"github.com/fmuoria/resume-shortlisting/internal/models"
)

// Shortlister turns a job description and resume files into a structured result
type Shortlister interface {
	Shortlist(ctx context.Context, jobDescription string, paths []string) (models.ShortlistResult, error)
}

// Limits bounds what a single request may upload
type Limits struct {
	MaxFiles     int
	MaxFileSize  int64
	AllowedTypes []string
}

// Options configures the HTTP server
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    float64
	RateBurst    int
	Version      string
	Limits       Limits
}

// Server handles HTTP requests
type Server struct {
	shortlister Shortlister
	store       *ingestion.Store
	opts        Options
	logger      *zap.Logger
	limiter     *rate.Limiter
	httpServer  *http.Server
	pending     sync.WaitGroup
}

// NewServer creates a new API server. A nil shortlister makes shortlisting
// requests fail with a configuration error.
func NewServer(shortlister Shortlister, store *ingestion.Store, opts Options, log *zap.Logger) *Server {
	s := &Server{
		shortlister: shortlister,
		store:       store,
		opts:        opts,
		logger:      logger.OrNop(log).Named("api"),
	}

	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Router(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Router returns the HTTP handler with the full middleware chain
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("POST /shortlist-resumes", s.handleShortlist)
	mux.HandleFunc("POST /shortlist-resumes/export", s.handleExport)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.withMetrics(s.withLogging(s.withCORS(s.withRateLimit(s.withPostResponse(mux)))))
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and then for pending cleanup hooks
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for cleanup hooks: %w", ctx.Err())
	}
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// respondError maps err to its status and body
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	code, detail := errorBody(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("error_code", code), zap.Error(err))
	} else {
		s.logger.Info("request rejected", zap.String("error_code", code), zap.Error(err))
	}

	s.respondJSON(w, status, errorResponse(code, detail, status))
}

func errorResponse(code, detail string, status int) models.ErrorResponse {
	return models.ErrorResponse{Error: code, Detail: detail, StatusCode: status}
}
