// Package api serves the analysis services over HTTP as a JSON API.
package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/raphaelgruber/circlemap/internal/service"
)

// maxBodyBytes caps request bodies. Chat exports of a few years fit easily.
const maxBodyBytes = 32 << 20

// Server holds the HTTP handlers.
type Server struct {
	svc      *service.Services
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a server over svc.
func New(svc *service.Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local dev
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router registers every route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/profiles", s.handleProfiles).Methods(http.MethodGet)
	api.HandleFunc("/normalize", s.handleNormalize).Methods(http.MethodPost)
	api.HandleFunc("/serendipity", s.handleSerendipity).Methods(http.MethodPost)
	api.HandleFunc("/opportunities", s.handleOpportunities).Methods(http.MethodPost)
	api.HandleFunc("/cross-connections", s.handleCrossConnections).Methods(http.MethodGet)

	api.HandleFunc("/enrich", s.handleEnrich).Methods(http.MethodPost)
	api.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", s.handleGetJob).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}/stream", s.handleStreamJob).Methods(http.MethodGet)

	api.HandleFunc("/overlays", s.handleListOverlays).Methods(http.MethodGet)
	api.HandleFunc("/overlays/{id}", s.handleGetOverlay).Methods(http.MethodGet)
	api.HandleFunc("/overlays/{id}", s.handlePutOverlay).Methods(http.MethodPut)
	api.HandleFunc("/overlays/{id}", s.handleDeleteOverlay).Methods(http.MethodDelete)

	api.HandleFunc("/context/{name}", s.handleGetContext).Methods(http.MethodGet)
	api.HandleFunc("/context/{name}", s.handlePutContext).Methods(http.MethodPut)

	return r
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.Router())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is needed by the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		level := slog.LevelDebug
		switch {
		case rec.status >= 500:
			level = slog.LevelError
		case duration > time.Second:
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", duration.Milliseconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// decode reads a JSON body into v. Unknown fields are rejected so typos in
// request keys surface as 400s.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// readBody returns the raw body, writing a 400 on failure.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return data, true
}
