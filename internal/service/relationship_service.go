package service

import (
	"context"

	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/domain"
)

// GraphRepository is the storage contract required by the services.
type GraphRepository interface {
	CreateNode(ctx context.Context, label string, props map[string]any) (domain.Node, error)
	FindNodesByLabel(ctx context.Context, label string) ([]domain.Node, error)
	FindAllNodes(ctx context.Context) ([]domain.Node, error)
	CreateRelationship(ctx context.Context, from, to domain.Endpoint, relType domain.RelationshipType) (domain.Relationship, error)
	FindServiceAndProviders(ctx context.Context, serviceName string) ([]domain.ProviderMatch, error)
	FindUserByEmail(ctx context.Context, email string) (domain.Account, bool, error)
}

// RelationshipService links the authenticated caller to Service nodes.
type RelationshipService struct {
	repo GraphRepository
}

// NewRelationshipService constructs a RelationshipService backed by repo.
func NewRelationshipService(repo GraphRepository) *RelationshipService {
	return &RelationshipService{repo: repo}
}

// Offer records that the caller offers serviceName.
func (s *RelationshipService) Offer(ctx context.Context, caller auth.Identity, serviceName string) (domain.Relationship, error) {
	return s.link(ctx, caller, serviceName, domain.RelationshipOffers, "Failed to create OFFERS relationship.")
}

// Use records that the caller uses serviceName.
func (s *RelationshipService) Use(ctx context.Context, caller auth.Identity, serviceName string) (domain.Relationship, error) {
	return s.link(ctx, caller, serviceName, domain.RelationshipUses, "Failed to create USES relationship.")
}

// link resolves the acting node from the verified identity only; request
// bodies never choose the source endpoint.
func (s *RelationshipService) link(ctx context.Context, caller auth.Identity, serviceName string, relType domain.RelationshipType, failMsg string) (domain.Relationship, error) {
	input := linkInput{ServiceName: sanitizeString(serviceName)}
	if err := validateInput(input, "serviceName is required."); err != nil {
		return domain.Relationship{}, err
	}

	from := domain.Endpoint{Label: caller.Role, Property: domain.PropName, Value: caller.Name}
	to := domain.Endpoint{Label: domain.LabelService, Property: domain.PropName, Value: input.ServiceName}

	rel, err := s.repo.CreateRelationship(ctx, from, to, relType)
	if err != nil {
		return domain.Relationship{}, classify(err, failMsg)
	}
	return rel, nil
}
