// Package server exposes the parser and the expansion engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/open-cli-collective/macroed/internal/version"
	"github.com/open-cli-collective/macroed/pkg/engine"
	"github.com/open-cli-collective/macroed/pkg/macro"
)

// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 4 << 20

// Options configures a Server.
type Options struct {
	Parser       *macro.Parser
	Engine       *engine.Engine
	Logger       *slog.Logger
	MaxBodyBytes int64
}

// Server is the HTTP API for macroed.
type Server struct {
	router  chi.Router
	parser  *macro.Parser
	engine  *engine.Engine
	log     *slog.Logger
	maxBody int64
}

// New creates and configures the HTTP server.
func New(opts Options) *Server {
	s := &Server{
		parser:  opts.Parser,
		engine:  opts.Engine,
		log:     opts.Logger,
		maxBody: opts.MaxBodyBytes,
	}
	if s.parser == nil {
		s.parser = macro.New(macro.Options{Logger: s.log})
	}
	if s.engine == nil {
		s.engine = engine.New(engine.Options{
			Registry: engine.DefaultRegistry(engine.DefaultMarkdownOptions()),
			EOL:      s.parser.EOL(),
			Logger:   s.log,
		})
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/params", s.handleParams)
		r.Post("/render", s.handleRender)
		r.Get("/macros", s.handleMacros)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.parser.Parse(body))
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	params, err := macro.ParseParams(body)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"params": params})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	to := r.URL.Query().Get("to")
	switch to {
	case "", "html", "markdown", "text":
	default:
		jsonError(w, fmt.Sprintf("unsupported target %q", to), http.StatusBadRequest)
		return
	}

	result := s.parser.Parse(body)
	out, err := s.engine.Expand(result.Nodes)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrUnknownMacro) {
			status = http.StatusUnprocessableEntity
		}
		s.log.Warn("render failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		jsonError(w, err.Error(), status)
		return
	}

	switch to {
	case "markdown":
		out, err = engine.ToMarkdown(out)
	case "text":
		out, err = engine.ToText(out)
	}
	if err != nil {
		jsonError(w, to+" conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"output":   out,
		"warnings": result.Warnings,
	})
}

func (s *Server) handleMacros(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"macros": s.engine.Registry().Names()})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.maxBody), http.StatusRequestEntityTooLarge)
			return "", false
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return "", false
	}
	return string(data), true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
