package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	u "github.com/araddon/gou"

	automaton "github.com/geange/automaton-editor"
	"github.com/geange/automaton-editor/diagram"
	"github.com/geange/automaton-editor/session"
)

// Constants for route prefixing.
const (
	APIVersion     = "v1"
	DefaultAddress = "127.0.0.1:8787"
)

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	// Renderer draws diagrams for format=image. Nil disables images.
	Renderer *diagram.Renderer
}

// Server hosts the HTTP API over one shared session.
type Server struct {
	http     *http.Server
	session  *session.Session
	renderer *diagram.Renderer
	opts     ServerOptions
}

// NewServer constructs a new API server bound to the provided session.
// The server does not start listening until Start is called.
func NewServer(sess *session.Session, opts ServerOptions) *Server {
	if sess == nil {
		panic("api.NewServer: session is nil")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddress
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 2 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		session:  sess,
		renderer: opts.Renderer,
		opts:     opts,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		BaseContext: func(l net.Listener) context.Context {
			return context.Background()
		},
	}
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(method, path string, h http.HandlerFunc) {
		mux.HandleFunc(method+" /"+APIVersion+path, h)
	}

	route(http.MethodGet, "/healthz", s.handleHealthz)
	route(http.MethodGet, "/definition", s.handleDefinition)
	route(http.MethodGet, "/table", s.handleTable)
	route(http.MethodGet, "/automaton", s.handleGetAutomaton)
	route(http.MethodPut, "/automaton", s.handlePutAutomaton)

	route(http.MethodPost, "/states", s.handleAddState)
	route(http.MethodDelete, "/states/{name}", s.handleDeleteState)
	route(http.MethodPost, "/symbols", s.handleAddSymbol)
	route(http.MethodDelete, "/symbols/{name}", s.handleDeleteSymbol)
	route(http.MethodPost, "/transitions", s.handleAddTransition)
	route(http.MethodDelete, "/transitions", s.handleDeleteTransition)
	route(http.MethodPut, "/start", s.handleSetStart)
	route(http.MethodPost, "/finals/{name}/toggle", s.handleToggleFinal)
	route(http.MethodPost, "/sample", s.handleSample)
	route(http.MethodPost, "/reset", s.handleReset)

	route(http.MethodPost, "/convert", s.handleConvert)
	route(http.MethodGet, "/mode", s.handleGetMode)
	route(http.MethodPut, "/mode", s.handleSetMode)
	route(http.MethodGet, "/dfa", s.handleDFA)
	route(http.MethodPost, "/simulate", s.handleSimulate)
	route(http.MethodPost, "/simulate/dfa", s.handleSimulateDFA)
	route(http.MethodGet, "/analysis", s.handleAnalysis)
	route(http.MethodGet, "/diagram", s.handleDiagram)

	return withBasicMiddleware(mux)
}

// Start begins serving HTTP in a background goroutine.
// It returns immediately; use Stop for graceful shutdown.
func (s *Server) Start() {
	go func() {
		u.Infof("api: listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			u.Errorf("api: ListenAndServe error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server, waiting up to ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.opts.ShutdownTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": TimeNow().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DefinitionResponse{
		Mode:       s.session.Mode().String(),
		Definition: s.session.Definition(),
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.TransitionTable())
}

func (s *Server) handleGetAutomaton(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Serialized())
}

// handlePutAutomaton replaces the NFA.
// Request: automaton.Definition JSON
func (s *Server) handlePutAutomaton(w http.ResponseWriter, r *http.Request) {
	var def automaton.Definition
	if !decode(w, r, &def) {
		return
	}
	rev, err := s.session.Load(&def)
	s.mutated(w, "Automaton loaded", rev, err)
}

func (s *Server) handleAddState(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decode(w, r, &req) {
		return
	}
	rev, err := s.session.AddState(req.Name)
	s.mutated(w, "State added", rev, err)
}

func (s *Server) handleDeleteState(w http.ResponseWriter, r *http.Request) {
	rev, err := s.session.DeleteState(r.PathValue("name"))
	s.mutated(w, "State deleted", rev, err)
}

func (s *Server) handleAddSymbol(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decode(w, r, &req) {
		return
	}
	rev, err := s.session.AddSymbol(req.Name)
	s.mutated(w, "Symbol added", rev, err)
}

func (s *Server) handleDeleteSymbol(w http.ResponseWriter, r *http.Request) {
	rev, err := s.session.DeleteSymbol(r.PathValue("name"))
	s.mutated(w, "Symbol deleted", rev, err)
}

func (s *Server) handleAddTransition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !decode(w, r, &req) {
		return
	}
	rev, err := s.session.AddTransition(req.From, req.Symbol, req.To)
	s.mutated(w, "Transition added", rev, err)
}

// handleDeleteTransition reads the transition from the query string.
func (s *Server) handleDeleteTransition(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rev, err := s.session.DeleteTransition(q.Get("from"), q.Get("symbol"), q.Get("to"))
	s.mutated(w, "Transition deleted", rev, err)
}

func (s *Server) handleSetStart(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decode(w, r, &req) {
		return
	}
	rev, err := s.session.SetStart(req.Name)
	s.mutated(w, "Start set", rev, err)
}

func (s *Server) handleToggleFinal(w http.ResponseWriter, r *http.Request) {
	rev, err := s.session.ToggleFinal(r.PathValue("name"))
	s.mutated(w, "Toggled final", rev, err)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	s.mutated(w, "Sample loaded", s.session.LoadSample(), nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutated(w, "Reset", s.session.Reset(), nil)
}

// handleConvert always answers 200; a failed conversion has success=false.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Convert())
}

func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModeResponse{Mode: s.session.Mode().String()})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !decode(w, r, &req) {
		return
	}
	mode, err := s.session.SelectMode(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ModeResponse{Mode: mode.String()})
}

func (s *Server) handleDFA(w http.ResponseWriter, r *http.Request) {
	derived, err := s.session.DerivedDFA()
	if err != nil {
		writeJSON(w, http.StatusOK, DFAResponse{Available: false})
		return
	}
	writeJSON(w, http.StatusOK, DFAResponse{
		Available: true,
		Revision:  derived.Revision,
		Order:     derived.Order,
		Labeling:  derived.Labeling,
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.session.SimulateCurrent(req.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimulateDFA(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.session.SimulateDFA(req.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Analysis())
}

// handleDiagram describes the selected automaton as a graph (format=json, the default), as DOT source
// (format=dot), or as a base64 image from graphviz (format=image).
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g, err := s.session.Diagram(session.Selector(q.Get("mode")))
	if err != nil {
		writeError(w, err)
		return
	}

	switch format := strings.ToLower(q.Get("format")); format {
	case "", "json":
		writeJSON(w, http.StatusOK, g)
	case "dot":
		writeJSON(w, http.StatusOK, DiagramResponse{Format: format, DOT: diagram.DOT(g)})
	case "image":
		if s.renderer == nil {
			writeError(w, fmt.Errorf("%w: no renderer configured", diagram.ErrUnavailable))
			return
		}
		image, err := s.renderer.RenderBase64(r.Context(), g)
		if err != nil {
			u.Warnf("api: diagram render failed: %v", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, DiagramResponse{Format: s.renderer.Format, Image: image})
	default:
		writeError(w, fmt.Errorf("%w: unknown diagram format %q", automaton.ErrInvalidInput, format))
	}
}

// mutated answers a mutation with the revision that mutation committed.
func (s *Server) mutated(w http.ResponseWriter, message string, revision uint64, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{Message: message, Revision: revision})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, automaton.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, automaton.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, automaton.ErrNondeterministic):
		return http.StatusBadRequest
	case errors.Is(err, automaton.ErrMissingStart), errors.Is(err, automaton.ErrConversionUnavailable):
		return http.StatusConflict
	case errors.Is(err, automaton.ErrTooComplex):
		return http.StatusUnprocessableEntity
	case errors.Is(err, diagram.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), APIError{
		Error:     err.Error(),
		Timestamp: TimeNow().UTC().Format(time.RFC3339),
	})
}

// decode reads a JSON body strictly, rejecting unknown fields. It answers 400 itself and returns false
// when the body is unusable.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{
			Error:     "invalid JSON: " + err.Error(),
			Timestamp: TimeNow().UTC().Format(time.RFC3339),
		})
		return false
	}
	return true
}

// statusRecorder remembers the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Basic middleware: sets JSON content type and logs method, path, status and duration.
func withBasicMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := TimeNow()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)
		u.Infof("%s %s %d %dms UA=%q", r.Method, r.URL.Path, rec.status, dur.Milliseconds(), r.UserAgent())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
