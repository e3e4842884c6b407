package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SebastienMelki/artwall/internal/gallery"
	"github.com/SebastienMelki/artwall/internal/observability"
)

// HealthChecker is a dependency probed by the readiness endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the collaborators of the gateway. Gallery is required; the rest
// are optional.
type Deps struct {
	Gallery        gallery.Controller
	MediaTypes     []string
	DefaultMedia   string
	Checks         map[string]HealthChecker
	Metrics        *observability.Metrics
	MetricsHandler http.Handler
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query"`
	Media string `json:"media,omitempty"`
}

// SearchResponse is returned by a successful search.
type SearchResponse struct {
	Query      string                `json:"query"`
	Media      string                `json:"media"`
	Candidates []gallery.CandidateID `json:"candidates"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     string       `json:"error"`
	Kind      gallery.Kind `json:"kind,omitempty"`
	Query     string       `json:"query,omitempty"`
	Found     *int         `json:"found,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// MediaTypesResponse is returned by GET /api/v1/media-types.
type MediaTypesResponse struct {
	MediaTypes []string `json:"media_types"`
	Default    string   `json:"default"`
}

// Server is the HTTP control API of the gallery.
type Server struct {
	cfg     Config
	deps    Deps
	server  *http.Server
	handler http.Handler
	logger  *slog.Logger
}

// NewServer creates the server and its route table.
func NewServer(cfg Config, deps Deps, logger *slog.Logger) (*Server, error) {
	if deps.Gallery == nil {
		return nil, ErrGalleryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("component", "http-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/search", s.handleSearch)
	mux.HandleFunc("POST /api/v1/play", s.handlePlay)
	mux.HandleFunc("POST /api/v1/pause", s.handlePause)
	mux.HandleFunc("GET /api/v1/gallery", s.handleGallery)
	mux.HandleFunc("GET /api/v1/media-types", s.handleMediaTypes)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	if deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", deps.MetricsHandler)
	}

	// HTTPMetrics sits below RequestID and above everything that could clone
	// the request, so it sees the pattern the mux records.
	s.handler = Chain(mux,
		Recovery(s.logger),
		RequestID,
		observability.HTTPMetrics(deps.Metrics),
		CORS(cfg.CORS),
		RateLimit(cfg.RateLimit),
		PerClientRateLimit(cfg.RateLimit),
		BodySizeLimit(cfg.MaxBodyBytes),
		ContentType,
	)

	s.server = &http.Server{
		Addr:           cfg.Addr,
		Handler:        s.handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	return s, nil
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones, bounded by
// the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, r, status, err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, r, http.StatusBadRequest, ErrQueryRequired.Error())
		return
	}
	if req.Media == "" {
		req.Media = s.deps.DefaultMedia
	}

	candidates, err := s.deps.Gallery.Search(r.Context(), req.Query, req.Media)
	if err != nil {
		s.writeGalleryError(w, r, err, len(candidates))
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:      req.Query,
		Media:      req.Media,
		Candidates: candidates,
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r)(s.deps.Gallery.Play(r.Context()))
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r)(s.deps.Gallery.Pause(r.Context()))
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r)(s.deps.Gallery.View(r.Context()))
}

func (s *Server) handleMediaTypes(w http.ResponseWriter, _ *http.Request) {
	types := s.deps.MediaTypes
	if types == nil {
		types = []string{}
	}
	writeJSON(w, http.StatusOK, MediaTypesResponse{MediaTypes: types, Default: s.deps.DefaultMedia})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready when the gallery scheduler answers and every
// registered dependency passes its health check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.deps.Checks)+1)
	ready := true

	if _, err := s.deps.Gallery.View(ctx); err != nil {
		checks["gallery"] = err.Error()
		ready = false
	} else {
		checks["gallery"] = "ok"
	}

	for name, c := range s.deps.Checks {
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}

// writeView returns a function that writes the result of a view-returning
// gallery call.
func (s *Server) writeView(w http.ResponseWriter, r *http.Request) func(gallery.View, error) {
	return func(v gallery.View, err error) {
		if err != nil {
			s.writeGalleryError(w, r, err, -1)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// writeGalleryError maps gallery errors onto HTTP statuses. found is the
// number of distinct candidates a search returned, or -1.
func (s *Server) writeGalleryError(w http.ResponseWriter, r *http.Request, err error, found int) {
	status := statusFor(err)

	resp := ErrorResponse{
		Error:     err.Error(),
		RequestID: GetRequestID(r.Context()),
	}
	var gerr *gallery.Error
	if errors.As(err, &gerr) {
		resp.Error = gerr.Message
		resp.Kind = gerr.Kind
		resp.Query = gerr.Query
	}
	if found >= 0 && errors.Is(err, gallery.ErrInsufficientResults) {
		resp.Found = &found
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("gallery request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("gallery request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gallery.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, gallery.ErrInsufficientResults):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gallery.ErrCancelled), errors.Is(err, gallery.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, gallery.ErrTransportFailure):
		return http.StatusBadGateway
	case errors.Is(err, gallery.ErrNotRunning),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return ErrInvalidBody
		}
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, RequestID: GetRequestID(r.Context())})
}
