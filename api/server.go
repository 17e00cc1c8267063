// Package api provides the HTTP REST API for wealthadvisor.
//
// Operation responses use the advisor's JSON shapes: {"insights": ...},
// {"strategy": ...} or {"error": ...} for single results, and an object keyed
// by symbol for predictions.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/wealthadvisor/internal/advisor"
	"github.com/seenimoa/wealthadvisor/internal/config"
	"github.com/seenimoa/wealthadvisor/pkg/utils"
)

// maxBodyBytes caps request bodies; a profile is a handful of fields.
const maxBodyBytes = 1 << 20

// Advisor is the subset of *advisor.Advisor the API serves.
type Advisor interface {
	GetMarketInsights(ctx context.Context, symbol string) advisor.Result
	CreateWealthStrategyFromMap(ctx context.Context, raw map[string]any) (advisor.Result, error)
	GetAIPredictions(ctx context.Context, symbols []string) advisor.Predictions
	Exchange() utils.Exchange
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	adv     Advisor
	cfg     config.APIConfig
	logger  *slog.Logger
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and server logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(adv Advisor, cfg config.APIConfig, opts ...Option) *Server {
	s := &Server{
		adv:     adv,
		cfg:     cfg,
		logger:  slog.Default(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to 15 seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(170 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.CORSOrigins) > 0 {
		origins = s.cfg.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/insights/{symbol}", s.handleInsights)
		r.Post("/strategy", s.handleStrategy)
		r.Get("/predictions", s.handlePredictions)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := utils.NowIST()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"exchange":      string(s.adv.Exchange()),
		"market_status": utils.MarketStatus(),
		"time_ist":      utils.FormatDateTimeIST(now),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	writeJSON(w, http.StatusOK, s.adv.GetMarketInsights(r.Context(), symbol))
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON profile object")
		return
	}

	res, err := s.adv.CreateWealthStrategyFromMap(r.Context(), raw)
	if err != nil {
		var mfe *advisor.MissingFieldError
		if errors.As(err, &mfe) {
			writeError(w, http.StatusBadRequest, mfe.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	values, ok := r.URL.Query()["symbols"]
	if !ok {
		writeError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, s.adv.GetAIPredictions(r.Context(), splitSymbols(values)))
}

// splitSymbols flattens repeated and comma-separated symbols, dropping blanks.
func splitSymbols(values []string) []string {
	var out []string
	for _, v := range values {
		for _, sym := range strings.Split(v, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				out = append(out, sym)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
