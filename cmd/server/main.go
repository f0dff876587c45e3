package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/config"
	"github.com/vanshika/skillgraph/backend/internal/graph"
	"github.com/vanshika/skillgraph/backend/internal/logging"
	"github.com/vanshika/skillgraph/backend/internal/metrics"
	"github.com/vanshika/skillgraph/backend/internal/repository"
	"github.com/vanshika/skillgraph/backend/internal/server"
	"github.com/vanshika/skillgraph/backend/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	if cfg.Auth.JWTSecret == "dev_secret" {
		logger.Warn("JWT_SECRET is not set; using the development secret")
	}

	var m *metrics.Metrics
	if cfg.HTTP.MetricsEnabled {
		m = metrics.New()
	}

	graphClient, err := buildGraphClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo, err := repository.New(metrics.InstrumentClient(graphClient, m), cfg.Auth.Roles)
	if err != nil {
		logger.Error("failed to create repository", "error", err)
		os.Exit(1)
	}

	schemaCtx, cancelSchema := context.WithTimeout(ctx, 15*time.Second)
	err = repo.EnsureSchema(schemaCtx)
	cancelSchema()
	if err != nil {
		logger.Error("failed to ensure graph schema", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}

	identityService := service.NewIdentityService(repo, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, cfg.Auth.Roles)
	apiHandlers := server.NewAPIHandlers(logger,
		identityService,
		service.NewCatalogService(repo),
		service.NewRelationshipService(repo),
	)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:         server.GraphHealthService{Client: graphClient},
		API:            apiHandlers,
		Auth:           identityService,
		Metrics:        m,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		APIPrefix:      cfg.HTTP.APIPrefix,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	return graph.NewNeo4jClient(ctx, opts)
}
