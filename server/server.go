package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/agentgate/agentgate/core"
	"github.com/agentgate/agentgate/executor"
	"github.com/agentgate/agentgate/logging"
)

// Options holds dependency overrides passed to New.
type Options struct {
	// Logger receives request lifecycle messages.
	Logger logging.Logger

	// ReadTimeout and WriteTimeout bound the underlying http.Server.
	// WriteTimeout must stay generous: streaming responses hold the
	// connection open for the whole run.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wires the HTTP surface over the store and the execution pipeline.
type Server struct {
	store  core.ConversationStore
	exec   *executor.Executor
	logger logging.Logger

	httpServer *http.Server
}

// New constructs a Server over a conversation store and execution pipeline.
func New(store core.ConversationStore, exec *executor.Executor, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{store: store, exec: exec, logger: opts.Logger, httpServer: &http.Server{
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", s.handleCreateConversation)
			r.Route("/{conversationID}", func(r chi.Router) {
				r.Get("/", s.handleGetConversation)
				r.Post("/", s.handleUpdateConversation)
				r.Delete("/", s.handleDeleteConversation)
				r.Post("/items", s.handleAddItems)
				r.Get("/items", s.handleListItems)
				r.Get("/items/{itemID}", s.handleGetItem)
			})
		})

		r.Post("/responses", s.handleResponses)

		r.Route("/threads", func(r chi.Router) {
			r.Post("/", s.handleCreateThread)
			r.Get("/", s.handleListThreads)
			r.Get("/{threadID}", s.handleGetThread)
			r.Delete("/{threadID}", s.handleDeleteThread)
			r.Get("/{threadID}/messages", s.handleThreadMessages)
		})

		r.Get("/entities", s.handleListEntities)
		r.Get("/entities/{entityID}/info", s.handleEntityInfo)
	})

	return r
}

// ListenAndServe starts serving on the given address and blocks until the
// server stops.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer.Addr = addr
	s.httpServer.Handler = s.Router()
	s.logger.Info("http server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"entities_count": len(s.exec.ListEntities()),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError writes an OpenAI-shaped JSON error response.
func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    "invalid_request_error",
		},
	})
}
