package stream

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/livecoll/internal/config"
	"github.com/vango-dev/livecoll/internal/errors"
	"github.com/vango-dev/livecoll/pkg/middleware"
	"github.com/vango-dev/livecoll/pkg/pipeline"
	"github.com/vango-dev/livecoll/pkg/protocol"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxOpBody         = 1 << 20
)

// Server publishes the collections of a pipeline over HTTP and WebSocket.
//
// The pipeline is single-threaded: every call into it, and therefore every
// event delivery, happens with mu held.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline

	mu    sync.Mutex
	feeds map[string]*feed

	auth     *Authenticator
	metrics  *middleware.Metrics
	tracing  *middleware.Tracing
	registry *prometheus.Registry

	upgrader  websocket.Upgrader
	heartbeat time.Duration
	sendQueue int

	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the registry metrics are registered on and served
// from. The default is a fresh registry with Go and process collectors.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// New creates a Server for p and subscribes a feed to every collection.
func New(cfg *config.Config, p *pipeline.Pipeline, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		pipeline:  p,
		feeds:     make(map[string]*feed),
		heartbeat: cfg.Server.HeartbeatIntervalDuration(),
		sendQueue: cfg.Server.SendQueue,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "stream")

	if cfg.Server.AuthSecret != "" {
		s.auth = NewAuthenticator(cfg.Server.AuthSecret)
	}
	if cfg.Metrics.Enabled {
		if s.registry == nil {
			s.registry = prometheus.NewRegistry()
			s.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		s.metrics = middleware.NewMetrics(
			middleware.WithRegistry(s.registry),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
	}
	if cfg.Tracing.Enabled {
		s.tracing = middleware.NewTracing(middleware.WithTracerName(cfg.Tracing.TracerName))
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
	}

	mws := []middleware.Middleware{middleware.Logging(s.logger)}
	if s.metrics != nil {
		mws = append(mws, s.metrics.Middleware())
	}
	if s.tracing != nil {
		mws = append(mws, s.tracing.Middleware())
	}
	chain := middleware.Chain(mws...)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range p.Names() {
		shape, _ := p.Shape(name)
		f := newFeed(name, shape, cfg.Server.HistorySize, s.logger)
		stop, err := p.Watch(name, chain(f.publish))
		if err != nil {
			return nil, err
		}
		f.stop = stop
		s.feeds[name] = f
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the metrics registry, or nil when metrics are disabled.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Authenticator returns the token authenticator, or nil when operations
// are not protected.
func (s *Server) Authenticator() *Authenticator {
	return s.auth
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/collections", s.handleCollections)
	r.Get("/collections/{name}", s.handleSnapshot)
	r.Get("/collections/{name}/ws", s.handleWebSocket)
	r.Post("/ops", s.handleOps)
	if s.registry != nil {
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs every HTTP request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return errors.New("E142").WithDetailf("Cannot listen on %s", s.cfg.Address()).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("E142").Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeoutDuration())
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown disconnects every client, releases the pipeline subscriptions
// and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down...")
	s.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// Close disconnects every client and releases the pipeline subscriptions.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.feeds {
		for c := range f.clients {
			c.stop(protocol.CloseServerShutdown, "server shutting down")
		}
		if f.stop != nil {
			f.stop()
			f.stop = nil
		}
	}
}

// applyOps applies ops in order under the pipeline lock and stops at the
// first failure. It returns the number applied.
func (s *Server) applyOps(ctx context.Context, ops []pipeline.Op) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, op := range ops {
		start := time.Now()
		var span trace.Span
		if s.tracing != nil {
			_, span = s.tracing.StartOp(ctx, op.Target, op.Op)
		}

		err := s.pipeline.Apply(op)

		if span != nil {
			middleware.EndOp(span, err)
		}
		if s.metrics != nil {
			s.metrics.RecordOp(op.Target, time.Since(start), err)
		}
		if err != nil {
			s.logger.Debug("op rejected", "target", op.Target, "op", op.Op, "error", err)
			return i, err
		}
	}
	return len(ops), nil
}

// authorize checks that claims allow every operation. With no
// authenticator configured everything is allowed.
func (s *Server) authorize(claims *Claims, ops []pipeline.Op) (protocol.ErrorCode, error) {
	if s.auth == nil {
		return 0, nil
	}
	if claims == nil {
		return protocol.ErrUnauthorized, errors.New("E162")
	}
	for _, op := range ops {
		if !claims.Allows(op.Target) {
			return protocol.ErrUnauthorized, errors.New("E162").WithDetailf("Token does not allow operations on %q", op.Target)
		}
	}
	return 0, nil
}

func (s *Server) recordWSError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordWebSocketError(kind)
	}
}

// errorCode maps a pipeline error to a protocol error code.
func errorCode(err error) protocol.ErrorCode {
	switch {
	case stderrors.Is(err, pipeline.ErrUnknownCollection):
		return protocol.ErrUnknownCollection
	case stderrors.Is(err, pipeline.ErrInvalidOp), stderrors.Is(err, pipeline.ErrKindMismatch):
		return protocol.ErrInvalidOp
	default:
		return protocol.ErrServerError
	}
}

// originChecker returns the WebSocket origin policy. No allowed origins
// means same-origin only; "*" allows every origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		originURL, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if originURL.Host == r.Host {
			return true
		}
		return slices.Contains(allowed, origin) || slices.Contains(allowed, originURL.Host)
	}
}
