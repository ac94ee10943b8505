// Package server exposes a composer session over HTTP.
//
// A host posts render commands to /messages and reads the catalog from
// /schema. Browsers load / and follow the displayed output through the
// Server-Sent Events stream at /events.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pthm/composer/lib/display"
	"github.com/pthm/composer/lib/encoding"
	"github.com/pthm/composer/lib/metrics"
	"github.com/pthm/composer/lib/protocol"
	"github.com/rs/zerolog"
)

// SignatureHeader carries the HMAC signature of a signed frame.
const SignatureHeader = "X-Composer-Signature"

// Server is the HTTP host for one session and its display.
type Server struct {
	router  chi.Router
	session *protocol.Session
	display *display.Display

	signer      *encoding.Signer
	metrics     *metrics.Collector
	metricsPath string
	logger      zerolog.Logger
	title       string
	basePath    string
	keepAlive   time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics exposes the collector at path.
func WithMetrics(m *metrics.Collector, path string) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsPath = path
	}
}

// WithSigner enables signing of the handshake and verification of inbound
// messages. A nil signer leaves both off.
func WithSigner(signer *encoding.Signer) Option {
	return func(s *Server) {
		s.signer = signer
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithBasePath sets the path prefix under which the server is reachable
// when it sits behind a router that strips it. The page subscribes to
// basePath+"/events".
func WithBasePath(p string) Option {
	return func(s *Server) {
		s.basePath = strings.TrimRight(p, "/")
	}
}

// WithKeepAlive sets the interval of SSE keep-alive comments.
func WithKeepAlive(d time.Duration) Option {
	return func(s *Server) {
		s.keepAlive = d
	}
}

// New creates a server for session. Rendered output is read from d, which
// must be the session's sink.
func New(session *protocol.Session, d *display.Display, opts ...Option) *Server {
	s := &Server{
		session:   session,
		display:   d,
		logger:    zerolog.Nop(),
		title:     "Composer",
		keepAlive: 15 * time.Second,
		closing:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

type basePathKey struct{}

// ContextWithBasePath attaches a per-request path prefix. It takes precedence
// over WithBasePath and lets a host that mounts the handler under a prefix
// report where the request was routed from.
func ContextWithBasePath(ctx context.Context, p string) context.Context {
	return context.WithValue(ctx, basePathKey{}, strings.TrimRight(p, "/"))
}

func (s *Server) basePathFor(r *http.Request) string {
	if p, ok := r.Context().Value(basePathKey{}).(string); ok {
		return p
	}
	return s.basePath
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newLoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ui", s.handleUI)
	r.Get("/schema", s.handleSchema)
	r.Post("/messages", s.handleMessage)
	r.Get("/events", s.handleEvents)
	r.Get("/healthz", s.handleHealth)

	if s.metrics != nil && s.metricsPath != "" {
		r.Handle(s.metricsPath, s.metrics.Handler())
	}

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close ends all open event streams. It is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down")
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLoggingMiddleware logs HTTP requests.
func newLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if r.URL.Path == "/healthz" || strings.HasPrefix(r.URL.Path, "/metrics") {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
