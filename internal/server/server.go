// Package server exposes subarchitecture queries over HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /devices
//	GET /devices/{name}
//	GET /devices/{name}/candidates?qubits=k
//	GET /devices/{name}/covering?qubits=k&size=s
//	GET /devices/{name}/order.dot[?qubits=k]
//
// Only bundled devices are served. Orders are loaded through a
// [pipeline.Runner] and memoised per device for the lifetime of the server.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/subarch/pkg/observability"
	"github.com/matzehuels/subarch/pkg/pipeline"
)

const (
	requestIDHeader = "X-Request-ID"
	requestTimeout  = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger

	mu     sync.Mutex
	orders map[string]*loadEntry
}

// loadEntry memoises one device load. Concurrent requests for the same
// device wait on done instead of building twice.
// errLoadPanicked is handed to requests waiting on a load that panicked.
var errLoadPanicked = errors.New("order load panicked")

type loadEntry struct {
	done chan struct{}
	res  *pipeline.Result
	err  error
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		logger: logger,
		orders: make(map[string]*loadEntry),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", s.handleDevices)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleDevice)
			r.Get("/candidates", s.handleCandidates)
			r.Get("/covering", s.handleCovering)
			r.Get("/order.dot", s.handleOrderDOT)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no such route"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// load returns the memoised order for a bundled device.
func (s *Server) load(ctx context.Context, name string) (*pipeline.Result, error) {
	s.mu.Lock()
	e, ok := s.orders[name]
	if !ok {
		e = &loadEntry{done: make(chan struct{})}
		s.orders[name] = e
	}
	s.mu.Unlock()

	if !ok {
		s.fill(ctx, name, e)
	}

	select {
	case <-e.done:
		return e.res, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fill loads the order for a new entry. e.done is always closed. A failed
// or panicking load removes the entry so the next request starts over.
func (s *Server) fill(ctx context.Context, name string, e *loadEntry) {
	finished := false
	defer func() {
		if !finished {
			e.err = errLoadPanicked
		}
		if e.err != nil {
			s.mu.Lock()
			if s.orders[name] == e {
				delete(s.orders, name)
			}
			s.mu.Unlock()
		}
		close(e.done)
	}()
	// Detached from the request so a client hanging up does not poison
	// the entry for everyone else.
	e.res, e.err = s.runner.Load(context.WithoutCancel(ctx), pipeline.Options{Device: name})
	finished = true
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID propagates or assigns an X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the request ID attached to ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// observe logs every request and reports it to the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := RequestID(ctx)
		hooks := observability.Server()
		hooks.OnRequest(ctx, id, r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(ctx, id, r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "status", status, "duration", dur)
	})
}
