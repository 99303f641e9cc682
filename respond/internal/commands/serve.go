package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/config"
	"github.com/axisir/axisir-stack/respond/internal/handlers"
	"github.com/axisir/axisir-stack/respond/internal/ratelimit"
	"github.com/axisir/axisir-stack/respond/internal/scheduler"
	"github.com/axisir/axisir-stack/respond/internal/server"
	"github.com/axisir/axisir-stack/respond/migrations"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Applies pending migrations (unless --skip-migrate) and serves the API until SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, newLogger(cfg), !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on start")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger, migrate bool) error {
	logger.InfoContext(ctx, "starting respond service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"rate_limit", cfg.RateLimit.Enabled,
		"nats", cfg.NATS.Enabled,
	)

	if migrate {
		if err := migrations.Run(cfg.Database.Postgres.ConnString(), migrations.Up); err != nil {
			return err
		}
		logger.InfoContext(ctx, "database migrations complete")
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	limiter, err := ratelimit.NewRedisRateLimiter(cfg.Redis.URL, ratelimit.Limits{
		Limit:  cfg.RateLimit.MaxRequests,
		Window: cfg.RateLimit.Window,
		Scoped: map[string]int{server.ScopeAuth: cfg.RateLimit.AuthMaxRequests},
	}, !cfg.RateLimit.Enabled)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	defer func() { _ = limiter.Close() }()

	if cfg.Auth.PruneInterval > 0 {
		pruner := scheduler.NewScheduler(a.repo.Tokens, cfg.Auth.TokenTTL, cfg.Auth.PruneInterval, logger)
		go pruner.Start(ctx)
		defer pruner.Stop()
	}

	hopts := []handlers.Option{
		handlers.WithHealthCheck(a.repo),
		handlers.WithLogger(logger),
		handlers.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
	}
	if a.nats != nil {
		hopts = append(hopts, handlers.WithBrokerCheck(a.nats))
	}
	h := handlers.NewHandler(a.svc, hopts...)
	opts := server.Options{
		Auth:        a.svc.Users,
		Limiter:     limiter,
		Logger:      logger,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewRouter(h, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "respond service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.InfoContext(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.InfoContext(ctx, "server stopped gracefully")
	return nil
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.WriteTimeout > 0 {
		return cfg.Server.WriteTimeout
	}
	return 15 * time.Second
}
