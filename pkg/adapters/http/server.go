// Package http exposes a Director over a JSON API with server-sent events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/sceneflow"
	"github.com/aretw0/sceneflow/internal/logging"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/events"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Director defines the operations the API exposes.
type Director interface {
	Navigate(ctx context.Context, target domain.Selector, mode domain.LoadMode, gated bool) (*sceneflow.Session, error)
	Reload(ctx context.Context, gated bool) (*sceneflow.Session, error)
	Trigger() error
	Status() sceneflow.Status
	LoadAdditive(ctx context.Context, target domain.Selector) (domain.Scene, error)
	Unload(ctx context.Context, target domain.Selector) error
	History(ctx context.Context, limit int) ([]domain.TransitionRecord, error)
	Bus() *events.Bus
}

// Server routes API requests to a Director.
type Server struct {
	Director Director
	Streams  *StreamManager

	router  chi.Router
	logger  *slog.Logger
	metrics http.Handler
	subID   events.SubscriptionID
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler serves the given handler on /metrics (default: promhttp.Handler()).
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates the API server and starts relaying bus events to SSE clients.
// Call Close to stop relaying.
func NewServer(d Director, opts ...Option) *Server {
	s := &Server{
		Director: d,
		logger:   logging.NewNop(),
		metrics:  promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	s.subID = d.Bus().SubscribeAll(s.relay)

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Method(http.MethodGet, "/metrics", s.metrics)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/history", s.GetHistory)

	r.Route("/transitions", func(r chi.Router) {
		r.Post("/", s.CreateTransition)
		r.Get("/current", s.GetCurrent)
		r.Post("/current/activate", s.Activate)
	})
	r.Route("/scenes", func(r chi.Router) {
		r.Post("/load", s.LoadScene)
		r.Post("/unload", s.UnloadScene)
		r.Post("/reload", s.ReloadScene)
	})

	s.router = r
	return s
}

// NewHandler is a shorthand for NewServer when the caller never closes the server.
func NewHandler(d Director, opts ...Option) http.Handler {
	return NewServer(d, opts...)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops relaying bus events.
func (s *Server) Close() {
	s.Director.Bus().Unsubscribe(s.subID)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TransitionRequest is the body of POST /transitions.
type TransitionRequest struct {
	Target domain.Selector `json:"target"`
	Mode   string          `json:"mode,omitempty"`
	Gated  *bool           `json:"gated,omitempty"` // defaults to true
}

// SceneRequest is the body of POST /scenes/load and /scenes/unload.
type SceneRequest struct {
	Target domain.Selector `json:"target"`
}

// ReloadRequest is the body of POST /scenes/reload.
type ReloadRequest struct {
	Gated *bool `json:"gated,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EventMessage is the SSE payload for a bus event.
type EventMessage struct {
	domain.Event
	Error string `json:"error,omitempty"`
}

// CreateTransition handles POST /transitions.
func (s *Server) CreateTransition(w http.ResponseWriter, r *http.Request) {
	var body TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	mode, err := domain.ParseLoadMode(body.Mode)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.Director.Navigate(r.Context(), body.Target, mode, boolOr(body.Gated, true))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("transition requested via api", "transition_id", session.ID(), "target", body.Target.String())
	s.writeJSON(w, http.StatusAccepted, s.Director.Status())
}

// GetCurrent handles GET /transitions/current.
func (s *Server) GetCurrent(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Director.Status())
}

// Activate handles POST /transitions/current/activate, the external activation trigger.
func (s *Server) Activate(w http.ResponseWriter, r *http.Request) {
	if err := s.Director.Trigger(); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.Director.Status())
}

// LoadScene handles POST /scenes/load (additive, no loading screen).
func (s *Server) LoadScene(w http.ResponseWriter, r *http.Request) {
	var body SceneRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	scene, err := s.Director.LoadAdditive(r.Context(), body.Target)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, scene)
}

// UnloadScene handles POST /scenes/unload.
func (s *Server) UnloadScene(w http.ResponseWriter, r *http.Request) {
	var body SceneRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := s.Director.Unload(r.Context(), body.Target); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Director.Status())
}

// ReloadScene handles POST /scenes/reload.
func (s *Server) ReloadScene(w http.ResponseWriter, r *http.Request) {
	var body ReloadRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}
	if _, err := s.Director.Reload(r.Context(), boolOr(body.Gated, true)); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.Director.Status())
}

// GetHistory handles GET /history?limit=N.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	recs, err := s.Director.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if recs == nil {
		recs = []domain.TransitionRecord{}
	}
	s.writeJSON(w, http.StatusOK, recs)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "sceneflow-http",
		"version": strings.TrimSpace(sceneflow.Version),
	})
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional transition_id and types query parameters filter the stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	transitionID := r.URL.Query().Get("transition_id")
	var types map[string]bool
	if v := r.URL.Query().Get("types"); v != "" {
		types = make(map[string]bool)
		for _, t := range strings.Split(v, ",") {
			types[strings.TrimSpace(t)] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(transitionID)
	defer cancel()
	s.logger.Debug("SSE: client connected", "transition_id", transitionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "transition_id", transitionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			kind, _, _ := strings.Cut(msg, "\n")
			if types != nil && !types[kind] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", kind, msg[len(kind)+1:])
			flusher.Flush()
		}
	}
}

// relay forwards bus events to SSE clients as "<type>\n<json>".
func (s *Server) relay(_ context.Context, e domain.Event) error {
	payload, err := json.Marshal(EventMessage{Event: e, Error: e.ErrText()})
	if err != nil {
		return err
	}
	s.Streams.Broadcast(e.TransitionID, string(e.Type)+"\n"+string(payload))
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSelector):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoActiveTransition):
		return http.StatusNotFound
	case errors.Is(err, sceneflow.ErrNotReady), errors.Is(err, domain.ErrNotStaged):
		return http.StatusConflict
	case errors.Is(err, domain.ErrHostLoadFailure), errors.Is(err, domain.ErrHostUnloadFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sceneflow.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
