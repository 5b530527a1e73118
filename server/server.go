package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/opkit/apikey"
	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/logger"
	"github.com/kbukum/opkit/observability"
	"github.com/kbukum/opkit/server/endpoint"
	"github.com/kbukum/opkit/server/middleware"
	"github.com/kbukum/opkit/validation"
)

// Server is an HTTP server backed by Gin, served over HTTP/1.1 and h2c.
// Additional http.Handler mounts share the port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a new Server. The Gin engine is created but no middleware is
// applied yet; call ApplyDefaults on the config first if needed. Gin's
// binding validator is replaced by the shared one so bind failures carry
// opkit field names.
func New(cfg Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	binding.Validator = validation.Binding()

	engine := gin.New()
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	var handler http.Handler = mux
	if cfg.Tracing {
		handler = otelhttp.NewHandler(handler, "http.server")
	}
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	handler = h2c.NewHandler(handler, h2s)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		engine:     engine,
		mux:        mux,
		config:     cfg,
		log:        log.WithComponent("server"),
	}
}

// Engine returns the underlying Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler, including h2c and tracing wrappers.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}

// Handle mounts an http.Handler at the given pattern on the root ServeMux.
// The pattern must include a trailing slash for subtree matches.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", logger.Fields("pattern", pattern))
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server. In-flight requests get until the
// context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err.Error()))
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Stack holds the collaborators of the standard middleware chain.
type Stack struct {
	ServiceName string
	Resolver    *opkiterrors.Resolver
	Production  bool
	Metrics     *observability.Metrics
	// APIKeys backs the Api-Key check when Config.APIKey is enabled.
	APIKeys        apikey.Store
	RequestLogging bool
}

// ApplyMiddleware installs the standard middleware chain. Order matters:
// request id and logger first, the error handler outside everything that can
// fail, and the Api-Key check last.
func (s *Server) ApplyMiddleware(stack Stack) {
	normalizer := middleware.NewNormalizer(middleware.NormalizerConfig{
		ServiceName: stack.ServiceName,
		Resolver:    stack.Resolver,
		Production:  stack.Production,
		Redaction:   s.config.Redaction,
	})

	s.engine.Use(middleware.RequestID(), middleware.Context(s.log))
	if stack.RequestLogging {
		s.engine.Use(middleware.RequestLogger())
	}
	s.engine.Use(
		middleware.GinWrap(middleware.SecurityHeaders()),
		middleware.GinWrap(middleware.CORS(s.config.CORS)),
		middleware.ErrorHandler(normalizer, stack.Metrics),
		middleware.Recovery(),
		middleware.BlockMethods(s.config.AllowedMethods),
		middleware.GinWrap(middleware.BodySizeLimit(s.config.MaxBodySize)),
		middleware.BodyCapture(),
	)
	if s.config.APIKey.Enabled {
		s.engine.Use(middleware.APIKey(s.config.APIKey, stack.APIKeys))
	}

	s.engine.NoRoute(func(c *gin.Context) {
		middleware.Fail(c, opkiterrors.NewStatusError(http.StatusNotFound, ""))
	})
}

// RegisterDefaultEndpoints registers /health and, when checker is set, /ready.
func (s *Server) RegisterDefaultEndpoints(name, version string, checker endpoint.HealthChecker) {
	s.engine.GET(endpoint.HealthPath, endpoint.Health(name, version))
	if checker != nil {
		s.engine.GET(endpoint.ReadyPath, endpoint.Readiness(checker))
	}
}

// RegisterDocs serves the raw API description and its catalog-enriched form.
func (s *Server) RegisterDocs(docs *endpoint.Docs) {
	s.engine.GET(endpoint.RawDocsPath, docs.Raw())
	s.engine.GET(endpoint.DocsPath, docs.Handler())
}
