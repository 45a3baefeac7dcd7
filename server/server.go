// Package server implements the pmdash HTTP service: spreadsheet upload,
// analysis, and status endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/pmdash/analysis"
	"github.com/GoCodeAlone/pmdash/config"
	"github.com/GoCodeAlone/pmdash/provider"
	"github.com/GoCodeAlone/pmdash/sheet"
)

// maxUploadBytes caps the in-memory multipart form size.
const maxUploadBytes = 32 << 20

// Server is the pmdash HTTP server.
type Server struct {
	cfg      config.Config
	mux      *http.ServeMux
	httpSrv  *http.Server
	logger   *slog.Logger
	pipeline *analysis.Pipeline

	startTime time.Time
	version   string
}

// New creates a new Server with the given config, pipeline, and logger.
func New(cfg config.Config, pipe *analysis.Pipeline, ver string, logger *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		mux:       http.NewServeMux(),
		logger:    logger,
		pipeline:  pipe,
		startTime: time.Now(),
		version:   ver,
	}
	s.registerRoutes()
	return s
}

// Handler returns the server's root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.logger.Info("server listening", slog.String("addr", addr))
	return s.httpSrv.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/version", s.handleVersion)
}

// corsMiddleware allows the browser front end to call the API from another
// origin (the original deployment served a local React dev client).
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleDashboard accepts a multipart spreadsheet upload, runs the analysis
// pipeline, and returns the aggregate result. A bad file is the client's
// problem; a completion-API failure is reported upstream as a bad gateway.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	start := time.Now()
	log := s.logger.With(slog.String("request_id", reqID))

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		writeJSONError(w, http.StatusBadRequest, "exactly one 'file' part is required")
		return
	}
	f, err := files[0].Open()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "open upload: "+err.Error())
		return
	}
	defer func() { _ = f.Close() }()

	tasks, err := sheet.Load(f)
	if err != nil {
		log.Warn("spreadsheet rejected", slog.Any("err", err))
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.pipeline.Run(r.Context(), tasks, r.FormValue("notes"))
	if err != nil {
		var perr *provider.Error
		if errors.As(err, &perr) {
			log.Error("completion call failed",
				slog.String("kind", string(perr.Kind)),
				slog.Any("err", err),
			)
			writeJSONError(w, http.StatusBadGateway, err.Error())
			return
		}
		log.Error("analysis failed", slog.Any("err", err))
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info("analysis complete",
		slog.Int("tasks", len(result.Tasks)),
		slog.Int("blockers", len(result.Blockers)),
		slog.Duration("elapsed", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": s.version,
	})
}
