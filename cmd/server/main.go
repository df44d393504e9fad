package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration (.env, config.yaml, then environment)
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	config.GlobalConfig = cfg

	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	if err := cfg.CheckSecrets(); err != nil {
		logger.Fatalf("Refusing to start: %v", err)
	}
	if insecure := cfg.InsecureDefaults(); len(insecure) > 0 {
		logger.Warn().Strs("settings", insecure).Msg("Running with default credentials; change them before deploying")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := bootstrap(ctx, cfg)

	r := gin.New()
	burstLimiter := registerRoutes(r, svc)

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	burstLimiter.Stop()
	svc.shutdown()
	logger.Info().Msg("Server exited")
}
