package server

import (
	"context"
	"fmt"

	"github.com/vanshika/skillgraph/backend/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// HealthFunc adapts a function to HealthService.
type HealthFunc func(ctx context.Context) error

// Probe calls f.
func (f HealthFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// GraphHealthService reports the server degraded while Neo4j is unreachable.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	if err := s.Client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph connectivity: %w", err)
	}
	return nil
}
