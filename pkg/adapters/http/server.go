package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/helpcar/quotechat"
	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/adapters/geo"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/ports"
	"github.com/helpcar/quotechat/pkg/session"
	apiruntime "github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes wizard sessions over HTTP.
type Server struct {
	Sessions *session.Manager
	Bundle   *locale.Bundle
	Resolver ports.AddressResolver
	Streams  *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAddressResolver enables address suggestions.
func WithAddressResolver(r ports.AddressResolver) Option {
	return func(s *Server) { s.Resolver = r }
}

// WithMetricsHandler replaces the default Prometheus handler served on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

type createSessionRequest struct {
	Language string `json:"language"`
}

type inputRequest struct {
	Value string `json:"value"`
}

type messageResponse struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewHandler builds the HTTP API for the sessions held by mgr.
func NewHandler(mgr *session.Manager, bundle *locale.Bundle, opts ...Option) (http.Handler, error) {
	server := &Server{
		Sessions: mgr,
		Bundle:   bundle,
		metrics:  promhttp.Handler(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.logger)

	validate, err := validateRequests(server.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", server.metrics)
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.ListSessions)
		r.Post("/", server.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", server.GetSession)
			r.Delete("/", server.DeleteSession)
			r.Post("/input", server.DispatchInput)
			r.Post("/location", server.ReportLocation)
			r.Get("/suggestions", server.SuggestAddresses)
			r.Get("/message", server.GetMessage)
			r.Post("/close", server.CloseSession)
			r.Get("/events", server.SubscribeEvents)
		})
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Quotechat API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "quotechat-http",
		"version":     strings.TrimSpace(quotechat.Version),
		"api_version": apiVersion,
		"languages":   s.Bundle.Languages(),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "List", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles POST /sessions. The language is the one requested in the body,
// else the best Accept-Language match, else the bundle fallback.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	lang := s.Bundle.Match(body.Language, r.Header.Get("Accept-Language"))
	sess, err := s.Sessions.Create(r.Context(), lang)
	if err != nil {
		s.fail(w, "Create", err)
		return
	}
	w.Header().Set("Location", "/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.View())
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DispatchInput handles POST /sessions/{id}/input.
func (s *Server) DispatchInput(w http.ResponseWriter, r *http.Request) {
	var body inputRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	s.mutate(w, r, "Dispatch", func(sess *session.Session) error {
		return sess.Dispatch(r.Context(), body.Value)
	})
}

// ReportLocation handles POST /sessions/{id}/location: the client's own geolocation
// result, coordinates or a failure kind, replayed through the session locator path.
func (s *Server) ReportLocation(w http.ResponseWriter, r *http.Request) {
	var report geo.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	s.mutate(w, r, "Locate", func(sess *session.Session) error {
		return sess.LocateWith(r.Context(), report)
	})
}

// CloseSession handles POST /sessions/{id}/close.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "Close", func(sess *session.Session) error {
		sess.Close(r.Context())
		return nil
	})
}

// SuggestAddresses handles GET /sessions/{id}/suggestions. Lookup failures yield an
// empty list; the visitor can always type the address in full.
func (s *Server) SuggestAddresses(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	var q string
	if err := apiruntime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	suggestions := []string{}
	if s.Resolver != nil {
		clean, err := runtime.SanitizeInput(q)
		if err != nil {
			s.fail(w, "Suggest", err)
			return
		}
		found, err := s.Resolver.Suggest(r.Context(), clean)
		if err != nil {
			s.logger.Warn("Address suggestions unavailable", "error", err)
		} else if found != nil {
			suggestions = found
		}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// GetMessage handles GET /sessions/{id}/message.
func (s *Server) GetMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: sess.Message(), Link: sess.Link()})
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE). The current view is sent
// first, then every view the session publishes until the client disconnects.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming not supported")
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	ch, cancel := s.Streams.Subscribe(sess)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if initial, err := json.Marshal(sess.View()); err == nil {
		fmt.Fprintf(w, "event: view\ndata: %s\n\n", initial)
	}
	flusher.Flush()
	s.logger.Info("SSE: subscribed", "session_id", sess.ID())

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", sess.ID())
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: view\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// mutate runs fn under the session lock and answers with the resulting view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(*session.Session) error) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var view domain.ConversationView
	err := s.Sessions.Do(r.Context(), id, func(_ context.Context, sess *session.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		view = sess.View()
		return nil
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := apiruntime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		apiruntime.BindStyledParameterOptions{
			ParamLocation: apiruntime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return "", false
	}
	return id, true
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return nil, false
	}
	sess, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, "Get", err)
		return nil, false
	}
	return sess, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Debug(op+" rejected", "code", code, "error", err)
	}
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, session.ErrClosed):
		return http.StatusConflict, "closed"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, runtime.ErrInputTooLarge), errors.Is(err, runtime.ErrInvalidUTF8):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrUnexpectedAnswerForStep), errors.Is(err, domain.ErrInvalidAnswer):
		return http.StatusUnprocessableEntity, "invalid_answer"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
