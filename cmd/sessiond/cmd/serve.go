package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/firefly-oss/lib-session-manager/internal/access"
	"github.com/firefly-oss/lib-session-manager/internal/roles"
	"github.com/firefly-oss/lib-session-manager/internal/server"
	"github.com/firefly-oss/lib-session-manager/internal/services/profile"
	"github.com/firefly-oss/lib-session-manager/internal/services/session"
	"github.com/firefly-oss/lib-session-manager/internal/store"
	"github.com/firefly-oss/lib-session-manager/internal/telemetry"
	"github.com/firefly-oss/lib-session-manager/internal/upstream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session manager server",
	Long:  `Starts the HTTP server exposing session lifecycle, role and access-check endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cfg.Debug)

		// Telemetry first so every component below can emit spans.
		otelShutdown, err := telemetry.Init(cmd.Context(), cfg.Observability, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("telemetry shutdown failed")
			}
		}()

		sessionMetrics, err := telemetry.NewSessionMetrics()
		if err != nil {
			return fmt.Errorf("failed to create session metrics: %w", err)
		}
		accessMetrics, err := telemetry.NewAccessMetrics()
		if err != nil {
			return fmt.Errorf("failed to create access metrics: %w", err)
		}

		clk := clock.New()

		// Upstream client serves all three provider interfaces.
		upstreamClient := upstream.NewHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)

		catalog := roles.NewCatalog()
		resolver := roles.NewResolver(catalog, upstreamClient, roles.ResolverConfig{
			CacheSize: cfg.Roles.CacheSize,
			CacheTTL:  cfg.Roles.CacheTTL,
		}, logger)

		profiles := profile.NewService(upstreamClient, upstreamClient, resolver, profile.Config{
			CacheSize:    cfg.Profile.CacheSize,
			CacheTTL:     cfg.Profile.CacheTTL,
			FetchTimeout: cfg.Profile.FetchTimeout,
		}, clk, logger)

		sessionStore := store.NewMemoryStore(clk, logger, sessionMetrics)
		janitor := store.NewJanitor(sessionStore, cfg.Session.CleanupInterval, logger)
		if err := janitor.Start(); err != nil {
			return fmt.Errorf("failed to start session janitor: %w", err)
		}
		defer janitor.Stop()

		manager := session.NewManager(sessionStore, profiles, session.Config{
			Timeout:           cfg.Session.Timeout,
			InvalidationGrace: cfg.Session.InvalidationGrace,
		}, clk, logger, sessionMetrics)

		registry, err := access.NewRegistry(
			access.NewProductValidator(manager, cfg.Access.BypassRoles, logger, accessMetrics),
			access.NewContractValidator(manager, cfg.Access.BypassRoles, logger, accessMetrics),
		)
		if err != nil {
			return fmt.Errorf("failed to build access registry: %w", err)
		}

		healthHandler := func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, sessionStore.Len())
		}

		r := server.NewRouter(server.RouterOptions{
			SessionManager: manager,
			AccessRegistry: registry,
			RoleResolver:   resolver,
			HealthHandler:  healthHandler,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.ServerAddr).Msg("starting server")
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// SIGHUP drops the custom-role cache (for manual reference-data updates)
		cacheRefresh := make(chan os.Signal, 1)
		signal.Notify(cacheRefresh, syscall.SIGHUP)

		for {
			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case sig := <-cacheRefresh:
				logger.Info().Str("signal", sig.String()).Msg("refreshing custom role cache")
				resolver.RefreshCache()

			case sig := <-shutdown:
				logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					srv.Close()
					return fmt.Errorf("graceful shutdown failed: %w", err)
				}

				logger.Info().Msg("server stopped")
				return nil
			}
		}
	},
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
