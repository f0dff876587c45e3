package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vanshika/skillgraph/backend/internal/apperr"
	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/domain"
)

// CatalogService manages Service nodes and read-only node browsing.
type CatalogService struct {
	repo  GraphRepository
	nowFn func() time.Time
}

// NewCatalogService constructs a CatalogService backed by repo.
func NewCatalogService(repo GraphRepository) *CatalogService {
	return &CatalogService{
		repo:  repo,
		nowFn: time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *CatalogService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// CreateService stores a Service node attributed to the caller.
func (s *CatalogService) CreateService(ctx context.Context, caller auth.Identity, input ServiceInput) (domain.Node, error) {
	input.Name = sanitizeString(input.Name)
	if err := validateInput(input, "Service name is required."); err != nil {
		return domain.Node{}, err
	}

	node, err := s.repo.CreateNode(ctx, domain.LabelService, map[string]any{
		domain.PropName:        input.Name,
		domain.PropDescription: input.Description,
		domain.PropCreatedBy:   caller.Name,
		domain.PropCreatedAt:   s.nowFn().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return domain.Node{}, classify(err, "Failed to create service.")
	}
	return node, nil
}

// ListServices returns every Service node.
func (s *CatalogService) ListServices(ctx context.Context) ([]domain.Node, error) {
	nodes, err := s.repo.FindNodesByLabel(ctx, domain.LabelService)
	if err != nil {
		return nil, classify(err, "Failed to fetch services.")
	}
	return nodes, nil
}

// SearchProviders finds who offers services whose name contains name.
// An empty result is reported as NotFound.
func (s *CatalogService) SearchProviders(ctx context.Context, name string) ([]domain.ProviderMatch, error) {
	name = sanitizeString(name)
	if name == "" {
		return nil, apperr.Validation("Service name is required for searching.")
	}

	matches, err := s.repo.FindServiceAndProviders(ctx, name)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("Failed to search for service %s.", name))
	}
	if len(matches) == 0 {
		return nil, apperr.NotFound("No providers found for this service.", nil)
	}
	return matches, nil
}

// NodesByLabel lists nodes carrying label. Labels outside the graph
// vocabulary are rejected before any query runs.
func (s *CatalogService) NodesByLabel(ctx context.Context, label string) ([]domain.Node, error) {
	nodes, err := s.repo.FindNodesByLabel(ctx, label)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("Failed to fetch nodes with label %s.", label))
	}
	return nodes, nil
}

// AllNodes lists every node with its labels.
func (s *CatalogService) AllNodes(ctx context.Context) ([]domain.Node, error) {
	nodes, err := s.repo.FindAllNodes(ctx)
	if err != nil {
		return nil, classify(err, "Failed to fetch all nodes.")
	}
	return nodes, nil
}
