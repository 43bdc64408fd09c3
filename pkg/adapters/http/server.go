// Package http exposes session-scoped engines to a renderer over JSON and Server-Sent Events.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/varia"
	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/aretw0/varia/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server serves the engines held by a session manager.
type Server struct {
	Sessions *session.Manager
	metrics  http.Handler
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h (typically promhttp.Handler()) at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the sessions.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Get("/sessions", s.ListSessions)
	r.Route("/sessions/{sid}", func(r chi.Router) {
		r.Delete("/", s.CloseSession)
		r.Get("/actions", s.SubscribeActions)
		r.Post("/keys", s.PressKey)

		r.Get("/nodes", s.ListNodes)
		r.Post("/nodes", s.RegisterNode)
		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Get("/", s.GetNode)
			r.Delete("/", s.UnregisterNode)
			r.Post("/rules", s.RegisterRules)
			r.Delete("/rules", s.UnregisterRules)
			r.Post("/events", s.Emit)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NodeView is the renderer-facing projection of a node.
type NodeView struct {
	ID            string                 `json:"id"`
	ParentID      string                 `json:"parentId,omitempty"`
	Variant       string                 `json:"variant"`
	VisualVariant string                 `json:"visualVariant"`
	Animation     *domain.AnimationProps `json:"animation,omitempty"`
	Rules         []domain.BoundRule     `json:"rules,omitempty"`
}

// RegisterNodeRequest is the body of POST /sessions/{sid}/nodes.
type RegisterNodeRequest struct {
	ID       string         `json:"id"`
	ParentID string         `json:"parentId"`
	Variant  string         `json:"variant"`
	Rules    map[string]any `json:"rules,omitempty"`
}

// EventRequest is the body of POST /sessions/{sid}/nodes/{id}/events.
type EventRequest struct {
	Trigger       domain.Trigger `json:"trigger"`
	Key           string         `json:"key,omitempty"`
	ListenID      string         `json:"listenId,omitempty"`
	ListenVariant string         `json:"listenVariant,omitempty"`
}

// KeyRequest is the body of POST /sessions/{sid}/keys.
type KeyRequest struct {
	Key string `json:"key"`
}

// EventResponse reports the rules attempted and the resulting state of the emitting node.
type EventResponse struct {
	Results []domain.Result `json:"results"`
	Node    *NodeView       `json:"node,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "varia-http",
		"version": varia.Version,
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Sessions.List())
}

// CloseSession handles the DELETE /sessions/{sid} request.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	err := s.Sessions.Close(r.Context(), chi.URLParam(r, "sid"))
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterNode handles the POST /sessions/{sid}/nodes request.
func (s *Server) RegisterNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, true)
	if !ok {
		return
	}
	var body RegisterNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	// Rules are decoded before the node mounts so a bad body leaves nothing behind.
	entries, err := dsl.Decode(body.Rules)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("node %q: %w", body.ID, err))
		return
	}
	if err := sess.Engine.Register(body.ID, body.ParentID, body.Variant); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(entries) > 0 {
		if err := sess.Engine.RegisterRules(body.ID, entries); err != nil {
			sess.Engine.Unregister(body.ID)
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	view, _ := nodeView(sess.Engine, body.ID)
	s.writeJSON(w, http.StatusCreated, view)
}

// GetNode handles the GET /sessions/{sid}/nodes/{id} request.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, false)
	if !ok {
		return
	}
	view, found := nodeView(sess.Engine, chi.URLParam(r, "id"))
	if !found {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("node %q is not registered", chi.URLParam(r, "id")))
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// ListNodes handles the GET /sessions/{sid}/nodes request.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, false)
	if !ok {
		return
	}
	snaps := sess.Engine.Inspect()
	views := make([]NodeView, 0, len(snaps))
	for _, snap := range snaps {
		view, _ := nodeView(sess.Engine, snap.Node.ID)
		view.Rules = snap.Rules
		views = append(views, view)
	}
	s.writeJSON(w, http.StatusOK, views)
}

// UnregisterNode handles the DELETE /sessions/{sid}/nodes/{id} request.
func (s *Server) UnregisterNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, false)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !sess.Engine.Unregister(id) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("node %q is not registered", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRules handles the POST /sessions/{sid}/nodes/{id}/rules request.
func (s *Server) RegisterRules(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, true)
	if !ok {
		return
	}
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := sess.Engine.RegisterConfig(chi.URLParam(r, "id"), raw); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnregisterRules handles the DELETE /sessions/{sid}/nodes/{id}/rules request.
// The body must repeat the record that was registered.
func (s *Server) UnregisterRules(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, false)
	if !ok {
		return
	}
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	entries, err := dsl.Decode(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	removed := sess.Engine.UnregisterRules(chi.URLParam(r, "id"), entries)
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// Emit handles the POST /sessions/{sid}/nodes/{id}/events request.
// The response is written once deferred cascades have settled.
func (s *Server) Emit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, false)
	if !ok {
		return
	}
	var body EventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if !body.Trigger.Valid() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", domain.ErrUnknownTrigger, body.Trigger))
		return
	}

	id := chi.URLParam(r, "id")
	results := sess.Engine.Emit(r.Context(), id, body.Trigger, domain.EventData{
		Key:           body.Key,
		ListenID:      body.ListenID,
		ListenVariant: body.ListenVariant,
	})
	if err := sess.Engine.Settle(r.Context()); err != nil {
		s.logger.Warn("settle interrupted", "session_id", sess.ID, "err", err)
	}

	resp := EventResponse{Results: nonNil(results)}
	if view, found := nodeView(sess.Engine, id); found {
		resp.Node = &view
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// PressKey handles the POST /sessions/{sid}/keys request.
func (s *Server) PressKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, false)
	if !ok {
		return
	}
	var body KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body: key is required"))
		return
	}
	results := sess.Engine.PressKey(r.Context(), body.Key)
	if err := sess.Engine.Settle(r.Context()); err != nil {
		s.logger.Warn("settle interrupted", "session_id", sess.ID, "err", err)
	}
	s.writeJSON(w, http.StatusOK, EventResponse{Results: nonNil(results)})
}

// SubscribeActions handles the GET /sessions/{sid}/actions request (SSE).
func (s *Server) SubscribeActions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, true)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}
	if sess.Actions == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("session does not stream actions"))
		return
	}

	stream, err := sess.Actions.Subscribe(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: subscribing to actions", "session_id", sess.ID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "session_id", sess.ID)
			return
		case req, ok := <-stream:
			if !ok {
				return
			}
			payload, err := json.Marshal(req)
			if err != nil {
				s.logger.Error("SSE: marshal failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: action\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// -- Helpers --

// session resolves the {sid} parameter, creating the session when create is set.
func (s *Server) session(w http.ResponseWriter, r *http.Request, create bool) (*session.Session, bool) {
	sid := chi.URLParam(r, "sid")
	if !create {
		sess, ok := s.Sessions.Lookup(sid)
		if !ok {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sid))
		}
		return sess, ok
	}
	sess, err := s.Sessions.Get(r.Context(), sid)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return sess, true
}

func nodeView(eng *varia.Engine, id string) (NodeView, bool) {
	node, ok := eng.Node(id)
	if !ok {
		return NodeView{}, false
	}
	view := NodeView{
		ID:            node.ID,
		ParentID:      node.ParentID,
		Variant:       node.LogicalVariant,
		VisualVariant: node.Effective(),
	}
	if props, found := eng.AnimationProps(id); found {
		view.Animation = &props
	}
	return view, true
}

func nonNil(results []domain.Result) []domain.Result {
	if results == nil {
		return []domain.Result{}
	}
	return results
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
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
