// Package webui provides the read-only operator dashboard for the
// image-flow pipeline.
// This file contains the WebUIServer that wires together the dashboard's HTTP components.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"imageflow/metrics"
	"imageflow/webui/static"

	"go.uber.org/zap"
)

// WebUIServer is the main HTTP server for the operator dashboard.
// It wires together:
//   - StaticAssetHandler for serving embedded static files
//   - LoggingMiddleware for request logging
//   - DashboardAPI for REST API endpoints
//   - WebSocketBroadcaster for real-time updates
//
// The dashboard is read-only and unauthenticated: it exposes pipeline run
// history and upstream provider health, nothing that mutates state.
//
// Methods:
//   - NewServer() creates a configured server instance
//   - Start() begins listening on the configured port
//   - Shutdown() gracefully shuts down the server
type WebUIServer struct {
	httpServer    *http.Server
	mux           *http.ServeMux
	config        ServerConfig
	logger        *zap.Logger
	loggingMw     *LoggingMiddleware
	dashboardAPI  *DashboardAPI
	wsBroadcaster *WebSocketBroadcaster
	staticHandler *StaticAssetHandler
}

// ServerConfig configures the WebUIServer.
type ServerConfig struct {
	// Port to listen on (default: 3000)
	Port int

	// Host to bind to (default: "localhost")
	Host string

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses (default: 30s)
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// StaticConfig for static asset handler
	StaticConfig StaticAssetConfig

	// LogSkipPaths are paths to skip logging
	LogSkipPaths []string

	// VersionInfo for API responses
	VersionInfo VersionInfo
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            3000,
		Host:            "localhost",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		StaticConfig:    DefaultStaticAssetConfig(),
		LogSkipPaths:    []string{"/health", "/api/status"},
		VersionInfo: VersionInfo{
			Version: "1.0.0",
		},
	}
}

// NewServer creates a new WebUIServer with the given configuration.
// It wires together all the middleware and handlers.
func NewServer(
	config ServerConfig,
	metricsStore metrics.MetricsCollector,
	logger *zap.Logger,
) (*WebUIServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	staticHandler := NewStaticAssetHandler(config.StaticConfig)

	loggingConfig := LoggingMiddlewareConfig{
		SkipPaths: config.LogSkipPaths,
	}
	loggingMw := NewLoggingMiddlewareWithConfig(loggingConfig)

	apiConfig := DashboardAPIConfig{
		DefaultLimit: 20,
		MaxLimit:     100,
		VersionInfo:  config.VersionInfo,
	}
	dashboardAPI := NewDashboardAPI(metricsStore, apiConfig)

	wsBroadcaster := NewWebSocketBroadcaster()

	server := &WebUIServer{
		mux:           mux,
		config:        config,
		logger:        logger,
		loggingMw:     loggingMw,
		dashboardAPI:  dashboardAPI,
		wsBroadcaster: wsBroadcaster,
		staticHandler: staticHandler,
	}

	server.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server.httpServer = &http.Server{
		Addr:         addr,
		Handler:      server.rootHandler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("WebUI server created", zap.String("addr", addr))

	return server, nil
}

// setupRoutes configures all the HTTP routes.
func (s *WebUIServer) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	s.staticHandler.RegisterRoutes(s.mux)

	s.mux.HandleFunc("/dashboard", s.staticHandler.ServeDashboard())
	s.mux.HandleFunc("/dashboard/", s.staticHandler.ServeDashboard())

	s.dashboardAPI.RegisterRoutes(s.mux)

	s.mux.HandleFunc("/ws", s.wsBroadcaster.HandleConnection)

	s.mux.HandleFunc("/", s.handleRoot)
}

// rootHandler wraps the mux with middleware.
func (s *WebUIServer) rootHandler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.loggingMw.Handler(handler)
	return handler
}

// handleRoot redirects the root path to the dashboard.
func (s *WebUIServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
}

// handleHealth handles health check requests.
func (s *WebUIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Start begins listening for HTTP requests.
// It starts the WebSocket broadcaster and the HTTP server.
// This method blocks until the server is shut down.
func (s *WebUIServer) Start(ctx context.Context) error {
	go s.wsBroadcaster.Start(ctx)

	s.logger.Info("WebUI server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// StartTLS begins listening for HTTPS requests.
func (s *WebUIServer) StartTLS(ctx context.Context, certFile, keyFile string) error {
	go s.wsBroadcaster.Start(ctx)

	s.logger.Info("WebUI server starting with TLS", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServeTLS(certFile, keyFile)
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("https server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *WebUIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down WebUI server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}

	s.logger.Info("WebUI server stopped")
	return nil
}

// GetBroadcaster returns the WebSocket broadcaster for sending messages.
func (s *WebUIServer) GetBroadcaster() *WebSocketBroadcaster {
	return s.wsBroadcaster
}

// GetDashboardAPI returns the dashboard API for direct access.
func (s *WebUIServer) GetDashboardAPI() *DashboardAPI {
	return s.dashboardAPI
}

// Addr returns the server's address.
func (s *WebUIServer) Addr() string {
	return s.httpServer.Addr
}

// ServeEmbeddedFile serves a specific file from the embedded filesystem.
func (s *WebUIServer) ServeEmbeddedFile(w http.ResponseWriter, name string) {
	data, err := static.ReadFile(name)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	contentType := s.staticHandler.detectContentType(name)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
