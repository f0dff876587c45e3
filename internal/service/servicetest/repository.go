// Package servicetest provides an in-memory graph repository for exercising
// the services and the HTTP layer without a database.
package servicetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vanshika/skillgraph/backend/internal/cypher"
	"github.com/vanshika/skillgraph/backend/internal/domain"
	"github.com/vanshika/skillgraph/backend/internal/repository"
)

// Edge is a stored relationship between two node indexes.
type Edge struct {
	From int
	To   int
	Type domain.RelationshipType
}

// Repository keeps nodes and edges in memory and follows the resolution and
// uniqueness rules of repository.Repository.
type Repository struct {
	mu     sync.Mutex
	people map[string]struct{}
	nodes  []domain.Node
	edges  []Edge
	err    error
}

// NewRepository returns an empty graph accepting roles as person labels.
// No roles means domain.DefaultRoles.
func NewRepository(roles ...string) *Repository {
	if len(roles) == 0 {
		roles = domain.DefaultRoles
	}
	people := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		people[role] = struct{}{}
	}
	return &Repository{people: people}
}

// WithError makes every subsequent call fail with err.
func (r *Repository) WithError(err error) *Repository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	return r
}

// Edges returns a copy of the stored relationships.
func (r *Repository) Edges() []Edge {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Edge(nil), r.edges...)
}

// Node returns the node at idx with its stored properties.
func (r *Repository) Node(idx int) domain.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodes[idx]
}

func (r *Repository) CreateNode(_ context.Context, label string, props map[string]any) (domain.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Node{}, r.err
	}
	if !r.known(label) {
		return domain.Node{}, fmt.Errorf("%w: %q", cypher.ErrUnknownLabel, label)
	}

	labels := []string{label}
	if r.isPerson(label) {
		email, _ := props[domain.PropEmail].(string)
		if _, found := r.findByEmail(email); found {
			return domain.Node{}, fmt.Errorf("create %s node: %w", label, repository.ErrDuplicateNode)
		}
		labels = append(labels, domain.LabelAccount)
	}

	stored := make(map[string]any, len(props))
	for k, v := range props {
		stored[k] = v
	}
	r.nodes = append(r.nodes, domain.Node{Labels: labels, Properties: stored})
	return public(r.nodes[len(r.nodes)-1]), nil
}

func (r *Repository) FindNodesByLabel(_ context.Context, label string) ([]domain.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if !r.known(label) {
		return nil, fmt.Errorf("%w: %q", cypher.ErrUnknownLabel, label)
	}
	out := []domain.Node{}
	for _, n := range r.nodes {
		if n.PrimaryLabel() == label {
			out = append(out, public(n))
		}
	}
	return out, nil
}

func (r *Repository) FindAllNodes(_ context.Context) ([]domain.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, public(n))
	}
	return out, nil
}

func (r *Repository) CreateRelationship(_ context.Context, from, to domain.Endpoint, relType domain.RelationshipType) (domain.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Relationship{}, r.err
	}
	for _, ep := range []domain.Endpoint{from, to} {
		if !r.known(ep.Label) {
			return domain.Relationship{}, fmt.Errorf("%w: %q", cypher.ErrUnknownLabel, ep.Label)
		}
	}
	src, err := r.resolve(from)
	if err != nil {
		return domain.Relationship{}, err
	}
	dst, err := r.resolve(to)
	if err != nil {
		return domain.Relationship{}, err
	}
	r.edges = append(r.edges, Edge{From: src, To: dst, Type: relType})
	return domain.Relationship{Type: relType}, nil
}

func (r *Repository) FindServiceAndProviders(_ context.Context, serviceName string) ([]domain.ProviderMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	needle := strings.ToLower(serviceName)
	out := []domain.ProviderMatch{}
	for _, e := range r.edges {
		svc := r.nodes[e.To]
		name, _ := svc.Properties[domain.PropName].(string)
		if e.Type != domain.RelationshipOffers || svc.PrimaryLabel() != domain.LabelService || !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		provider := r.nodes[e.From]
		providerName, _ := provider.Properties[domain.PropName].(string)
		out = append(out, domain.ProviderMatch{Provider: providerName, Role: provider.PrimaryLabel(), Service: name})
	}
	return out, nil
}

func (r *Repository) FindUserByEmail(_ context.Context, email string) (domain.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Account{}, false, r.err
	}
	idx, found := r.findByEmail(email)
	if !found {
		return domain.Account{}, false, nil
	}
	n := r.nodes[idx]
	name, _ := n.Properties[domain.PropName].(string)
	hash, _ := n.Properties[domain.PropPassword].(string)
	return domain.Account{
		Email:        email,
		Name:         name,
		Role:         n.PrimaryLabel(),
		PasswordHash: hash,
		Properties:   public(n).Properties,
	}, true, nil
}

func (r *Repository) known(label string) bool {
	return label == domain.LabelService || r.isPerson(label)
}

func (r *Repository) isPerson(label string) bool {
	_, ok := r.people[label]
	return ok
}

func (r *Repository) findByEmail(email string) (int, bool) {
	for i, n := range r.nodes {
		if v, _ := n.Properties[domain.PropEmail].(string); v != "" && v == email {
			return i, true
		}
	}
	return 0, false
}

func (r *Repository) resolve(ep domain.Endpoint) (int, error) {
	matched := -1
	count := 0
	for i, n := range r.nodes {
		if n.PrimaryLabel() != ep.Label {
			continue
		}
		if v, _ := n.Properties[ep.Property].(string); v == ep.Value {
			matched = i
			count++
		}
	}
	switch {
	case count == 0:
		return 0, fmt.Errorf("%w: %s {%s: %q}", repository.ErrEndpointNotFound, ep.Label, ep.Property, ep.Value)
	case count > 1:
		return 0, fmt.Errorf("%w: %s {%s: %q} matched %d nodes", repository.ErrAmbiguousEndpoint, ep.Label, ep.Property, ep.Value, count)
	}
	return matched, nil
}

func public(n domain.Node) domain.Node {
	props := make(map[string]any, len(n.Properties))
	for k, v := range n.Properties {
		if k != domain.PropPassword {
			props[k] = v
		}
	}
	return domain.Node{Labels: append([]string(nil), n.Labels...), Properties: props}
}
