// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/application/container"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/scarcity-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/scarcity-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal has been handled.
func Initialize() error {
	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[31m" + `
  ▄▄▄▄ ▄▄▄▄ ▄▄▄▄ ▄▄▄▄ ▄▄▄▄ ▄ ▄▄▄▄ ▄   ▄
  ██▄▄ ██   ██▄█ ██▄▀ ██   █  ██  ▀▄▀
  ▄▄██ ██▄▄ ██ █ ██ █ ██▄▄ █  ██   █
` + "\033[97m" + `
  flash sale inventory
` + "\033[0m")

	// Step 1: Load configuration
	log.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg)

	// Step 2: Create channeled logger with live log streaming
	logBroadcaster := logging.NewLogBroadcaster()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    cfg.LogToFile,
		OutputToConsole: true,
		LogDirectory:    cfg.LogDir,
		JSONFormat:      cfg.LogJSON,
		DefaultLevel:    logging.ParseLevel(cfg.LogLevel),
	}, logBroadcaster)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.LogStartupPhase("configuration", time.Since(start), true, map[string]any{
		"packages":       len(cfg.Catalog.Packages),
		"reservationTtl": cfg.ReservationTTL.String(),
		"journal":        cfg.JournalURL != "",
	})

	// Step 3: Ensure admin tokens can be signed
	if cfg.AdminPasswordHash != "" && cfg.JWTSecret == "" {
		key, err := security.GenerateSecureKey(64)
		if err != nil {
			return err
		}
		cfg.JWTSecret = key
		logger.Startup().Warn("JWT_SECRET not set, using an ephemeral key; admin tokens will not survive a restart")
	}
	if !cfg.AdminEnabled() {
		logger.Startup().Warn("ADMIN_PASSWORD_HASH not set, admin dashboard is disabled")
	}

	// Step 4: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	containerStart := time.Now()
	appContainer, err := container.NewContainer(ctx, cfg, logger, logBroadcaster)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	logger.LogStartupPhase("container", time.Since(containerStart), true, nil)

	// Step 5: Start background workers
	logger.Startup().Info("Starting background workers...")
	appContainer.Start(ctx)

	// Step 6: Start HTTP server
	httpServer := server.New(appContainer)

	// Step 7: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"address", httpServer.Addr())

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	appContainer.Wait()

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	if err := appContainer.Close(); err != nil {
		log.Printf("Error closing resources: %v", err)
	}
	return nil
}

// setupLogging configures standard library and gin logging
func setupLogging(cfg *config.Config) {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
