package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imageflow/blobstore"
	"imageflow/core"
	"imageflow/httpapi"
	"imageflow/imagegen"
	"imageflow/logging"
	"imageflow/metrics"
	"imageflow/orchestrator"
	"imageflow/proxy"
	"imageflow/shutdown"
	"imageflow/startup"
	"imageflow/visionclient"
	"imageflow/webui"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Default timeouts for the API HTTP server.
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

func main() {
	var shutdownSignal os.Signal

	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	logger, err := logging.NewLogger(isDevelopment, "app.log")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}

	exitCode := startup.RunChecks(logger.Zap(), isDevelopment)
	if exitCode != core.ExitCodeSuccess {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
		os.Exit(exitCode)
	}

	config, err := core.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.Int("port", config.Port),
		zap.String("vision_model", config.VisionModel),
		zap.String("storage_bucket", config.StorageBucket),
		zap.String("output_format", config.OutputFormat),
		zap.Int("max_reference_images", config.MaxReferenceImages),
		zap.Bool("dev_mode", isDevelopment),
	)

	ctx := context.Background()

	shutdownManager := shutdown.NewManager(logger.Zap(), shutdown.WithTimeout(60*time.Second))

	shutdownManager.Register("logger-sync", 5, func(ctx context.Context) error {
		logger.Info("Syncing logger...")
		if syncErr := logger.Sync(); syncErr != nil {
			logger.Warn("Failed to sync logger during shutdown", zap.Error(syncErr))
			return syncErr
		}
		return nil
	})

	metricsStore := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), time.Now())
	logger.Info("MetricsStore initialized")

	blobStore, err := blobstore.New(ctx, config)
	if err != nil {
		logger.Fatal("Failed to initialize blob store", zap.Error(err))
	}

	visionClient := visionclient.New(config, logger)

	primaryProvider, err := imagegen.NewPrimaryProvider(ctx, config)
	if err != nil {
		logger.Fatal("Failed to initialize primary image provider", zap.Error(err))
	}
	fallbackProvider := imagegen.NewFallbackProvider(config)
	defaultAspectRatio := imagegen.AspectRatio(config.ImageFallbackAspectRatio)
	imageClient := imagegen.New(primaryProvider, fallbackProvider, defaultAspectRatio, logger)

	proxyGateway := proxy.New(config, logger)

	orch := orchestrator.New(blobStore, visionClient, imageClient, config.OutputFormat, metricsStore, logger)

	apiHandler := httpapi.NewHandler(orch, config.MaxReferenceImages, defaultAspectRatio, metricsStore, shutdownManager, logger)
	apiMux := http.NewServeMux()
	httpapi.RegisterRoutes(apiMux, apiHandler, proxyGateway.ServeHTTP)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      apiMux,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	shutdownManager.Register("api-server", 15, func(ctx context.Context) error {
		logger.Info("Shutting down API server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	dashboardConfig := webui.ServerConfig{
		Port:            core.ParseIntEnv("DASHBOARD_PORT", config.Port+1),
		Host:            "",
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultReadTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		StaticConfig:    webui.DefaultStaticAssetConfig(),
		LogSkipPaths:    []string{"/health"},
		VersionInfo: webui.VersionInfo{
			Version: core.GetVersion(),
		},
	}

	dashboardServer, err := webui.NewServer(dashboardConfig, metricsStore, logger.Zap())
	if err != nil {
		logger.Fatal("Failed to setup dashboard server", zap.Error(err))
	}

	shutdownManager.Register("dashboard-server", 20, func(ctx context.Context) error {
		logger.Info("Shutting down dashboard server...")
		return dashboardServer.Shutdown(ctx)
	})

	shutdownManager.Start()

	sigChan := make(chan os.Signal, 1)
	signalNotify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		shutdownSignal = sig
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}()

	serverErrChan := make(chan error, 2)
	go func() {
		logger.Info("Starting API server", zap.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Info("Starting dashboard server", zap.Int("port", dashboardConfig.Port))
		if err := dashboardServer.Start(shutdownManager.Context()); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("dashboard server: %w", err)
		}
	}()

	select {
	case <-shutdownManager.Context().Done():
		logger.Info("Shutdown initiated")
	case err := <-serverErrChan:
		logger.Error("Server error", zap.Error(err))
		exitCode = core.ExitCodeError
	}

	if shutdownErr := shutdownManager.Shutdown(); shutdownErr != nil {
		logger.Error("Shutdown completed with errors", zap.Error(shutdownErr))
		if exitCode == core.ExitCodeSuccess {
			exitCode = core.ExitCodeError
		}
	}

	if exitCode == core.ExitCodeSuccess && shutdownSignal != nil {
		switch shutdownSignal {
		case os.Interrupt:
			exitCode = core.ExitCodeSIGINT
		case syscall.SIGTERM:
			exitCode = core.ExitCodeSIGTERM
		}
	}

	logger.Info("Goodbye!", zap.Int("exit_code", exitCode), zap.String("exit_reason", core.ExitCodeName(exitCode)))

	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Printf("Failed to sync logger: %v\n", syncErr)
	}

	os.Exit(exitCode)
}

// signalNotify is a wrapper around signal.Notify for easier testing.
var signalNotify = func(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}
