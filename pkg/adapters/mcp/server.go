package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/helpcar/quotechat"
	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/pkg/adapters/geo"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// DefaultSettleTimeout bounds how long a tool waits for the next prompt to be revealed.
const DefaultSettleTimeout = 10 * time.Second

// ViewResponse is returned by every session tool.
type ViewResponse struct {
	View    domain.ConversationView `json:"view"`
	Message string                  `json:"message,omitempty"`
	Link    string                  `json:"link,omitempty"`
}

// MessageResponse is the composed quote request.
type MessageResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"The session the message was composed for"`
	Message   string `json:"message" jsonschema_description:"Plain-text quote request"`
	Link      string `json:"link" jsonschema_description:"Messaging deep link carrying the message"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type startArgs struct {
	Language string `json:"language"`
}

type answerArgs struct {
	SessionID string `json:"session_id"`
	Value     string `json:"value"`
	Wait      *bool  `json:"wait"`
}

// Server exposes wizard sessions as MCP tools.
type Server struct {
	sessions  *session.Manager
	bundle    *locale.Bundle
	mcpServer *server.MCPServer
	settle    time.Duration
	logger    *slog.Logger
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithSettleTimeout sets how long tools wait for pacing delays. Zero disables waiting.
func WithSettleTimeout(d time.Duration) Option {
	return func(s *Server) { s.settle = d }
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *session.Manager, bundle *locale.Bundle, opts ...Option) *Server {
	s := &Server{
		sessions: mgr,
		bundle:   bundle,
		settle:   DefaultSettleTimeout,
		logger:   logging.NewNop(),
		mcpServer: server.NewMCPServer("quotechat-mcp", strings.TrimSpace(quotechat.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Open a new roadside assistance quote session and return its first prompt."),
		mcp.WithString("language", mcp.Description("Preferred language (fr, en, nl). Defaults to fr.")),
	), mcp.NewTypedToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("answer",
		mcp.WithDescription("Answer the current step with an option value or free text. "+
			"At the location step, 'gps', 'address' and 'back' switch the input method."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_session")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Option value or free text")),
		mcp.WithBoolean("wait", mcp.Description("Wait for the next prompt to be revealed (default true)")),
	), mcp.NewTypedToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("report_location",
		mcp.WithDescription("Report the visitor's position for the location step, or why it is unavailable."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithNumber("lat", mcp.Min(-90), mcp.Max(90), mcp.Description("Latitude")),
		mcp.WithNumber("lng", mcp.Min(-180), mcp.Max(180), mcp.Description("Longitude")),
		mcp.WithString("error", mcp.Enum("permission_denied", "unavailable", "timeout", "unknown"),
			mcp.Description("Failure observed instead of a position")),
	), s.handleReportLocation)

	s.mcpServer.AddTool(mcp.NewTool("get_view",
		mcp.WithDescription("Return the conversation as it currently stands."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), mcp.NewTypedToolHandler(s.handleView))

	s.mcpServer.AddTool(mcp.NewTool("compose_message",
		mcp.WithDescription("Compose the quote request from the answers given so far."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[MessageResponse](),
	), mcp.NewStructuredToolHandler(s.handleCompose))

	s.mcpServer.AddTool(mcp.NewTool("close_session",
		mcp.WithDescription("Close the session and cancel pending replies."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), mcp.NewTypedToolHandler(s.handleClose))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args startArgs) (*mcp.CallToolResult, error) {
	sess, err := s.sessions.Create(ctx, s.bundle.Match(args.Language))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("start failed", err), nil
	}
	return s.respond(sess, s.wait(ctx, sess, true)), nil
}

func (s *Server) handleAnswer(ctx context.Context, _ mcp.CallToolRequest, args answerArgs) (*mcp.CallToolResult, error) {
	sess, err := s.mutate(ctx, args.SessionID, func(ctx context.Context, sess *session.Session) error {
		return sess.Dispatch(ctx, args.Value)
	})
	if err != nil {
		s.logger.Debug("MCP answer rejected", "session_id", args.SessionID, "error", err)
		return mcp.NewToolResultErrorFromErr("answer rejected", err), nil
	}
	return s.respond(sess, s.wait(ctx, sess, args.Wait == nil || *args.Wait)), nil
}

func (s *Server) handleReportLocation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		SessionID string `mapstructure:"session_id"`
		geo.Report `mapstructure:",squash"`
	}
	if err := mapstructure.Decode(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	sess, err := s.mutate(ctx, args.SessionID, func(ctx context.Context, sess *session.Session) error {
		return sess.LocateWith(ctx, args.Report)
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("location rejected", err), nil
	}
	return s.respond(sess, s.wait(ctx, sess, true)), nil
}

func (s *Server) handleView(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (*mcp.CallToolResult, error) {
	sess, err := s.sessions.Get(ctx, args.SessionID)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("unknown session", err), nil
	}
	return s.respond(sess, sess.View()), nil
}

func (s *Server) handleCompose(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (MessageResponse, error) {
	sess, err := s.sessions.Get(ctx, args.SessionID)
	if err != nil {
		return MessageResponse{}, err
	}
	return MessageResponse{SessionID: sess.ID(), Message: sess.Message(), Link: sess.Link()}, nil
}

func (s *Server) handleClose(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (*mcp.CallToolResult, error) {
	sess, err := s.mutate(ctx, args.SessionID, func(ctx context.Context, sess *session.Session) error {
		sess.Close(ctx)
		return nil
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("close failed", err), nil
	}
	return s.respond(sess, sess.View()), nil
}

func (s *Server) mutate(ctx context.Context, id string, fn func(context.Context, *session.Session) error) (*session.Session, error) {
	var target *session.Session
	err := s.sessions.Do(ctx, id, func(ctx context.Context, sess *session.Session) error {
		target = sess
		return fn(ctx, sess)
	})
	return target, err
}

// wait blocks until the session has revealed its next prompt (and, at the final step,
// the summary), the settle timeout expires, or ctx is done.
func (s *Server) wait(ctx context.Context, sess *session.Session, enabled bool) domain.ConversationView {
	if !enabled || s.settle <= 0 {
		return sess.View()
	}
	changed := make(chan struct{}, 1)
	cancel := sess.Subscribe(func(domain.ConversationView) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	timer := time.NewTimer(s.settle)
	defer timer.Stop()
	for {
		v := sess.View()
		if settled(v) {
			return v
		}
		select {
		case <-changed:
		case <-timer.C:
			return sess.View()
		case <-ctx.Done():
			return sess.View()
		}
	}
}

func settled(v domain.ConversationView) bool {
	if v.Status == domain.StatusClosed {
		return true
	}
	return !v.Pending && v.Step != domain.StepFinal
}

func (s *Server) respond(sess *session.Session, v domain.ConversationView) *mcp.CallToolResult {
	resp := ViewResponse{View: v}
	if v.Affordance != nil && v.Affordance.Summary != nil {
		resp.Message = v.Affordance.Summary.Message
		resp.Link = v.Affordance.Summary.Link
	}
	return mcp.NewToolResultStructured(resp, transcript(v))
}

// transcript renders the visible bot and user turns as plain text for clients that
// ignore structured content.
func transcript(v domain.ConversationView) string {
	var b strings.Builder
	for _, t := range v.Turns {
		if t.Typing {
			b.WriteString("bot: ...\n")
			continue
		}
		b.WriteString(string(t.Speaker))
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}
	if a := v.Affordance; a != nil {
		for _, o := range a.Options {
			fmt.Fprintf(&b, "  [%s] %s\n", o.Value, o.Label)
		}
	}
	return b.String()
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("quotechat://languages", "Supported languages",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, _ := json.Marshal(map[string]any{
			"languages": s.bundle.Languages(),
			"fallback":  s.bundle.Fallback(),
		})
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "quotechat://languages",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate("quotechat://sessions/{id}", "Session view",
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, "quotechat://sessions/")
		sess, err := s.sessions.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return nil, fmt.Errorf("session %s: %w", id, err)
			}
			return nil, err
		}
		data, err := json.Marshal(sess.View())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
