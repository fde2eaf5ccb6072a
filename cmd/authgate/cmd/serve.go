package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/repository"
	"github.com/goliatone/go-authgate/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway HTTP server",
	Long:  `Migrates the account store and serves the auth, profile, post and admin API behind the authentication gateway.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := repository.Open(cfg.Database.DSN, cfg.Database.Debug)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer client.DB().Close()

		if err := repository.Migrate(cmd.Context(), client); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		accounts := repository.NewAccountStore(client.DB())
		posts := repository.NewPostStore(client.DB())
		logger.Info("connected to account store")

		tokens, err := authgate.NewTokenService(cfg, authgate.WithTokenLogger(adaptLogger(logger, "token")))
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}

		resolver := authgate.NewPrincipalResolver(accounts).
			WithLogger(adaptLogger(logger, "resolver"))

		authenticator := authgate.NewRequestAuthenticator(tokens, resolver).
			WithAuthScheme(cfg.GetAuthScheme()).
			WithLogger(adaptLogger(logger, "authenticator"))

		policy, err := server.NewPolicy()
		if err != nil {
			return fmt.Errorf("failed to compile access rules: %w", err)
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := authgate.NewMetrics(registry)
		audit := newAuditSink(logger)

		service := authgate.NewAccountService(accounts, tokens).
			WithHashCost(cfg.Auth.HashCost).
			WithTokenType(cfg.GetAuthScheme()).
			WithLogger(adaptLogger(logger, "accounts")).
			WithMetrics(metrics).
			WithActivitySink(audit)

		srv, err := server.New(server.Options{
			Accounts:       accounts,
			Posts:          posts,
			AccountService: service,
			Authenticator:  authenticator,
			Policy:         policy,
			Responder:      authgate.NewResponder().WithLogger(adaptLogger(logger, "responder")),
			Metrics:        metrics,
			ActivitySink:   audit,
			Gatherer:       registry,
			ContextKey:     cfg.GetContextKey(),
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			Logger:         adaptLogger(logger, "server"),
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Infof("listening on %s", cfg.Server.Addr)
			serverErrors <- srv.Listen(cfg.Server.Addr)
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Infof("received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
