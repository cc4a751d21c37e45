package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"qrgen/internal/api"
	"qrgen/internal/api/handlers"
	"qrgen/internal/api/middleware"
	"qrgen/internal/engine/pipeline"
	"qrgen/internal/engine/session"
	"qrgen/internal/engine/shortener"
	"qrgen/internal/pkg/logger"
	"qrgen/internal/platform/audit"
	"qrgen/internal/platform/auth"
	"qrgen/internal/platform/config"
	"qrgen/internal/workers"
)

var version = "v1.0.0"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	var configPath string
	root := &cobra.Command{
		Use:           "qrgen",
		Short:         "Turn URLs into QR codes, optionally shortening them first",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the web form and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	})

	root.AddCommand(newGenerateCmd(&configPath))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qrgen %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newShortener(cfg config.ShortenerConfig) *shortener.Client {
	return shortener.NewClient(
		shortener.WithTimeout(cfg.Timeout),
		shortener.WithUserAgent(cfg.UserAgent),
		shortener.WithEndpoints(shortener.Endpoints{
			IsGd:    cfg.Endpoints.IsGd,
			DaGd:    cfg.Endpoints.DaGd,
			ClckRu:  cfg.Endpoints.ClckRu,
			TinyURL: cfg.Endpoints.TinyURL,
		}),
	)
}

func newPipeline(cfg *config.Config) *pipeline.Pipeline {
	return pipeline.New(newShortener(cfg.Shortener), pipeline.Config{
		BoxSize:     cfg.QR.BoxSize,
		Border:      cfg.QR.Border,
		DefaultSize: cfg.QR.DefaultSize,
	})
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Session state
	store := session.NewStore(cfg.Session.TTL, cfg.Session.MaxEntries)
	go workers.RunSessionSweeper(ctx, store, cfg.Session.SweepInterval)

	// Services
	tokenSvc := auth.NewTokenService(cfg.Session)
	metrics := &handlers.Metrics{}

	// Middleware
	sessionMiddleware := middleware.NewSessionMiddleware(tokenSvc, cfg.Session.CookieName, cfg.Session.Secure)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.GeneratePerMinute)
	go rateLimiter.CleanupLoop(ctx)

	// Router
	deps := &api.Dependencies{
		QRHandler:         handlers.NewQRHandler(newPipeline(cfg), store, audit.NewLogger(), metrics, version),
		HealthHandler:     handlers.NewHealthHandler(store),
		MetricsHandler:    handlers.NewMetricsHandler(metrics, store),
		SessionMiddleware: sessionMiddleware,
		RateLimiter:       rateLimiter,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
