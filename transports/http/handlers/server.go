// server wraps the fasthttp server implementation behind a simple interface.
package handlers

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	langboard "github.com/langboard/langboard/core"
	"github.com/langboard/langboard/core/providers"
	"github.com/langboard/langboard/lib"
	"github.com/langboard/langboard/schemas"
	"github.com/langboard/langboard/store"
)

const DefaultHost = "0.0.0.0"

// LangboardHTTPServer represents an HTTP server instance.
type LangboardHTTPServer struct {
	ctx    context.Context
	cancel context.CancelFunc

	Version string
	Host    string

	Client *langboard.Langboard
	Store  store.Store
	Config *lib.Config
	Logger schemas.Logger

	Server *fasthttp.Server
	Router *router.Router
}

// NewLangboardHTTPServer creates a new server instance for the given
// resolved configuration.
func NewLangboardHTTPServer(version string, config *lib.Config, logger schemas.Logger) *LangboardHTTPServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &LangboardHTTPServer{
		ctx:     ctx,
		cancel:  cancel,
		Version: version,
		Host:    DefaultHost,
		Config:  config,
		Logger:  logger,
	}
}

// RegisterCollectorSafely attempts to register a Prometheus collector,
// tolerating collectors that are already registered.
func RegisterCollectorSafely(collector prometheus.Collector, logger schemas.Logger) {
	if err := prometheus.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			logger.Error("failed to register prometheus collector: %v", err)
		}
	}
}

// Bootstrap wires the store, the provider, the core client and the router,
// and builds the fasthttp server. It does not start listening.
func (s *LangboardHTTPServer) Bootstrap() error {
	st, err := store.NewSQLiteStore(store.Config{
		Path:   s.Config.DBPath,
		TTL:    s.Config.CacheTTL,
		Logger: s.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	s.Store = st

	github := providers.NewGithubProvider(providers.GithubConfig{
		Token:           s.Config.GithubToken,
		UpstreamBaseURL: s.Config.GithubBaseURL,
	}, s.Logger)

	s.Client, err = langboard.Init(langboard.Config{
		Provider:         github,
		Store:            s.Store,
		Logger:           s.Logger,
		ConcurrencyLimit: s.Config.ConcurrencyLim,
		EnableCache:      s.Config.EnableCache,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize langboard: %w", err)
	}

	s.InitializeTelemetry()
	s.RegisterRoutes()

	s.Server = &fasthttp.Server{
		Handler: CorsMiddleware(s.Config.AllowedOrigins, TelemetryMiddleware(s.Router.Handler)),
	}
	return nil
}

// InitializeTelemetry registers the process and HTTP collectors.
func (s *LangboardHTTPServer) InitializeTelemetry() {
	RegisterCollectorSafely(collectors.NewGoCollector(), s.Logger)
	RegisterCollectorSafely(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), s.Logger)
	RegisterCollectorSafely(httpRequestsTotal, s.Logger)
	RegisterCollectorSafely(httpRequestDuration, s.Logger)
}

// RegisterRoutes builds the router and mounts every handler.
func (s *LangboardHTTPServer) RegisterRoutes() {
	s.Router = router.New()

	NewSearchHandler(s.Client, s.Logger).RegisterRoutes(s.Router)
	NewTopSearchHandler(s.Client, s.Logger).RegisterRoutes(s.Router)
	NewHealthHandler(s.Version, s.Logger).RegisterRoutes(s.Router)

	s.Router.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))

	s.Router.NotFound = func(ctx *fasthttp.RequestCtx) {
		SendError(ctx, fasthttp.StatusNotFound, "", schemas.ErrorCode("not_found"),
			"Route not found: "+string(ctx.Path()), s.Logger)
	}
}

// Start starts the HTTP server at the configured host and port and blocks
// until a termination signal or a server error.
func (s *LangboardHTTPServer) Start() error {
	sigChan := make(chan os.Signal, 1)
	errChan := make(chan error, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverAddr := net.JoinHostPort(s.Host, s.Config.Port)
	go func() {
		s.Logger.Info("successfully started langboard on http://%s", serverAddr)
		if err := s.Server.ListenAndServe(serverAddr); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		s.Logger.Info("received signal %v, initiating graceful shutdown...", sig)
		shutdownCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
		defer cancel()
		if err := s.Server.Shutdown(); err != nil {
			s.Logger.Error("error during graceful shutdown: %v", err)
		} else {
			s.Logger.Info("server gracefully shutdown")
		}
		s.cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := s.Store.Close(); err != nil {
				s.Logger.Warn("error closing store: %v", err)
			}
		}()
		select {
		case <-done:
			s.Logger.Info("cleanup completed")
		case <-shutdownCtx.Done():
			s.Logger.Warn("cleanup timed out after 30 seconds")
		}
	case err := <-errChan:
		return err
	}
	return nil
}
