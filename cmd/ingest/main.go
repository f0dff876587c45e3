package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/config"
	"github.com/vanshika/skillgraph/backend/internal/generator"
	"github.com/vanshika/skillgraph/backend/internal/graph"
	"github.com/vanshika/skillgraph/backend/internal/logging"
	"github.com/vanshika/skillgraph/backend/internal/repository"
	"github.com/vanshika/skillgraph/backend/internal/service"
)

var errEmptyDataset = errors.New("dataset is empty")

func main() {
	var (
		datasetDir = flag.String("dataset-dir", "./seed-data", "Directory containing people.json, services.json and links.json")
		workers    = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	dataset, err := generator.ReadDataset(*datasetDir)
	if err == nil && len(dataset.People) == 0 {
		err = fmt.Errorf("%w: no people in %s", errEmptyDataset, *datasetDir)
	}
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "dir", *datasetDir)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	if err := run(ctx, logger, cfg, graphClient, dataset, *workers); err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.Config, client graph.Client, dataset generator.Dataset, workers int) error {
	repo, err := repository.New(client, cfg.Auth.Roles)
	if err != nil {
		return err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.JWTIssuer})
	if err != nil {
		return err
	}
	ingestor := service.NewBulkIngestor(
		service.NewIdentityService(repo, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, cfg.Auth.Roles),
		service.NewCatalogService(repo),
		service.NewRelationshipService(repo),
		workers,
	)

	start := time.Now()
	logger.Info("ingesting people", "count", len(dataset.People), "workers", workers)
	if err := ingestor.IngestPeople(ctx, dataset.People); err != nil {
		return fmt.Errorf("people: %w", err)
	}

	logger.Info("ingesting services", "count", len(dataset.Services))
	if err := ingestor.IngestServices(ctx, dataset.Services); err != nil {
		return fmt.Errorf("services: %w", err)
	}

	logger.Info("ingesting links", "count", len(dataset.Links))
	if err := ingestor.IngestLinks(ctx, dataset.Links); err != nil {
		return fmt.Errorf("links: %w", err)
	}

	logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"people", len(dataset.People),
		"services", len(dataset.Services),
		"links", len(dataset.Links),
	)
	return nil
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for ingestion")
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
