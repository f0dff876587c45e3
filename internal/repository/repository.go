package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vanshika/skillgraph/backend/internal/cypher"
	"github.com/vanshika/skillgraph/backend/internal/domain"
	"github.com/vanshika/skillgraph/backend/internal/graph"
)

var (
	// ErrEndpointNotFound indicates a relationship endpoint matched no node.
	ErrEndpointNotFound = errors.New("relationship endpoint not found")
	// ErrAmbiguousEndpoint indicates a relationship endpoint matched more than one node.
	ErrAmbiguousEndpoint = errors.New("relationship endpoint is ambiguous")
	// ErrDuplicateNode indicates a node violated a uniqueness constraint.
	ErrDuplicateNode = errors.New("node already exists")
)

// Repository encapsulates graph persistence operations.
type Repository struct {
	client graph.Client
	vocab  cypher.Vocabulary
	people map[string]struct{}
}

// New instantiates a Repository backed by the supplied graph client. roles are
// the person labels; together with Service they form the closed set of labels
// that may appear in query text.
func New(client graph.Client, roles []string) (*Repository, error) {
	labels := append([]string{domain.LabelService, domain.LabelAccount}, roles...)
	relTypes := make([]string, 0, len(domain.RelationshipTypes))
	for _, t := range domain.RelationshipTypes {
		relTypes = append(relTypes, string(t))
	}

	vocab, err := cypher.NewVocabulary(labels, relTypes, []string{domain.PropName, domain.PropEmail})
	if err != nil {
		return nil, fmt.Errorf("build graph vocabulary: %w", err)
	}

	people := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		people[strings.TrimSpace(role)] = struct{}{}
	}

	return &Repository{
		client: client,
		vocab:  vocab,
		people: people,
	}, nil
}

// EnsureSchema creates the uniqueness constraint backing account emails.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.client.ExecuteWrite(ctx, accountEmailConstraintCypher, nil); err != nil {
		return fmt.Errorf("ensure account email constraint: %w", err)
	}
	return nil
}

// CreateNode creates one node under label with props and returns the stored
// properties. Person labels also receive the Account label.
func (r *Repository) CreateNode(ctx context.Context, label string, props map[string]any) (domain.Node, error) {
	labels := []string{label}
	if _, ok := r.people[label]; ok {
		labels = append(labels, domain.LabelAccount)
	}
	labelExpr, err := r.nodeLabels(labels...)
	if err != nil {
		return domain.Node{}, err
	}

	res, err := r.client.ExecuteWrite(ctx, fmt.Sprintf(createNodeCypherTemplate, labelExpr), map[string]any{
		"props": props,
	})
	if err != nil {
		if errors.Is(err, graph.ErrConstraintViolation) {
			return domain.Node{}, fmt.Errorf("create %s node: %w: %v", label, ErrDuplicateNode, err)
		}
		return domain.Node{}, fmt.Errorf("create %s node: %w", label, err)
	}
	if len(res.Records) == 0 {
		return domain.Node{}, fmt.Errorf("create %s node: no record returned", label)
	}

	return domain.Node{
		Labels:     []string{label},
		Properties: publicProperties(res.Records[0]["props"]),
	}, nil
}

// FindNodesByLabel returns every node carrying label.
func (r *Repository) FindNodesByLabel(ctx context.Context, label string) ([]domain.Node, error) {
	labelExpr, err := r.nodeLabels(label)
	if err != nil {
		return nil, err
	}

	res, err := r.client.ExecuteRead(ctx, fmt.Sprintf(findNodesByLabelCypherTemplate, labelExpr), nil)
	if err != nil {
		return nil, fmt.Errorf("find %s nodes: %w", label, err)
	}

	nodes := make([]domain.Node, 0, len(res.Records))
	for _, record := range res.Records {
		nodes = append(nodes, domain.Node{
			Labels:     []string{label},
			Properties: publicProperties(record["props"]),
		})
	}
	return nodes, nil
}

// FindAllNodes returns every node in the graph with its labels. Intended for
// small graphs; there is no pagination.
func (r *Repository) FindAllNodes(ctx context.Context) ([]domain.Node, error) {
	res, err := r.client.ExecuteRead(ctx, findAllNodesCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("find all nodes: %w", err)
	}

	nodes := make([]domain.Node, 0, len(res.Records))
	for _, record := range res.Records {
		nodes = append(nodes, domain.Node{
			Labels:     domain.VisibleLabels(toStringSlice(record["labels"])),
			Properties: publicProperties(record["props"]),
		})
	}
	return nodes, nil
}

// CreateRelationship creates a directed edge of relType from the node matching
// from to the node matching to. The edge is only created when each endpoint
// resolves to exactly one node; otherwise ErrEndpointNotFound or
// ErrAmbiguousEndpoint is returned and nothing is written. Repeated calls
// create repeated edges.
func (r *Repository) CreateRelationship(ctx context.Context, from, to domain.Endpoint, relType domain.RelationshipType) (domain.Relationship, error) {
	query, err := r.createRelationshipQuery(from, to, relType)
	if err != nil {
		return domain.Relationship{}, err
	}

	res, err := r.client.ExecuteWrite(ctx, query, map[string]any{
		"fromValue": from.Value,
		"toValue":   to.Value,
	})
	if err != nil {
		return domain.Relationship{}, fmt.Errorf("create %s relationship: %w", relType, err)
	}
	if len(res.Records) == 0 {
		return domain.Relationship{}, fmt.Errorf("create %s relationship: no record returned", relType)
	}

	record := res.Records[0]
	if err := checkMatches("source", from, toInt64(record["fromMatches"])); err != nil {
		return domain.Relationship{}, err
	}
	if err := checkMatches("target", to, toInt64(record["toMatches"])); err != nil {
		return domain.Relationship{}, err
	}

	return domain.Relationship{Type: relType}, nil
}

// FindServiceAndProviders returns every (provider, service) pair where the
// service name contains serviceName, case-insensitively.
func (r *Repository) FindServiceAndProviders(ctx context.Context, serviceName string) ([]domain.ProviderMatch, error) {
	res, err := r.client.ExecuteRead(ctx, findServiceAndProvidersCypher, map[string]any{
		"serviceName":  serviceName,
		"accountLabel": domain.LabelAccount,
	})
	if err != nil {
		return nil, fmt.Errorf("find providers for %q: %w", serviceName, err)
	}

	matches := make([]domain.ProviderMatch, 0, len(res.Records))
	for _, record := range res.Records {
		matches = append(matches, domain.ProviderMatch{
			Provider: toString(record["providerName"]),
			Role:     toString(record["providerRole"]),
			Service:  toString(record["serviceName"]),
		})
	}
	return matches, nil
}

// FindUserByEmail locates the node bound to email regardless of label. The
// boolean is false when no node matches.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (domain.Account, bool, error) {
	res, err := r.client.ExecuteRead(ctx, findUserByEmailCypher, map[string]any{
		"email": email,
	})
	if err != nil {
		return domain.Account{}, false, fmt.Errorf("find user by email: %w", err)
	}
	if len(res.Records) == 0 {
		return domain.Account{}, false, nil
	}

	record := res.Records[0]
	props := toMap(record["props"])
	role := domain.PrimaryLabel(toStringSlice(record["labels"]))
	if role == "" {
		role = "User"
	}

	return domain.Account{
		Email:        toString(props[domain.PropEmail]),
		Name:         toString(props[domain.PropName]),
		Role:         role,
		PasswordHash: toString(props[domain.PropPassword]),
		Properties:   publicProperties(props),
	}, true, nil
}

func (r *Repository) nodeLabels(labels ...string) (string, error) {
	if len(labels) == 0 || labels[0] == domain.LabelAccount {
		return "", fmt.Errorf("%w: %q", cypher.ErrUnknownLabel, strings.Join(labels, ":"))
	}
	return r.vocab.Labels(labels...)
}

// createRelationshipQuery is the only place endpoint labels, property keys and
// the relationship type are interpolated into query text.
func (r *Repository) createRelationshipQuery(from, to domain.Endpoint, relType domain.RelationshipType) (string, error) {
	fromLabel, err := r.nodeLabels(from.Label)
	if err != nil {
		return "", err
	}
	fromKey, err := r.vocab.PropertyKey(from.Property)
	if err != nil {
		return "", err
	}
	toLabel, err := r.nodeLabels(to.Label)
	if err != nil {
		return "", err
	}
	toKey, err := r.vocab.PropertyKey(to.Property)
	if err != nil {
		return "", err
	}
	rel, err := r.vocab.RelationshipType(string(relType))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(createRelationshipCypherTemplate, fromLabel, fromKey, toLabel, toKey, rel), nil
}

func checkMatches(role string, endpoint domain.Endpoint, matches int64) error {
	switch {
	case matches == 0:
		return fmt.Errorf("%w: %s (%s {%s: %q})", ErrEndpointNotFound, role, endpoint.Label, endpoint.Property, endpoint.Value)
	case matches > 1:
		return fmt.Errorf("%w: %s (%s {%s: %q}) matched %d nodes", ErrAmbiguousEndpoint, role, endpoint.Label, endpoint.Property, endpoint.Value, matches)
	default:
		return nil
	}
}

// publicProperties copies props without the password hash.
func publicProperties(val any) map[string]any {
	props := toMap(val)
	out := make(map[string]any, len(props))
	for k, v := range props {
		if k == domain.PropPassword {
			continue
		}
		out[k] = v
	}
	return out
}

func toMap(val any) map[string]any {
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toStringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

const accountEmailConstraintCypher = `
CREATE CONSTRAINT account_email_unique IF NOT EXISTS
FOR (a:Account) REQUIRE a.email IS UNIQUE
`

const createNodeCypherTemplate = `
CREATE (n%s $props)
RETURN properties(n) AS props
`

const findNodesByLabelCypherTemplate = `
MATCH (n%s)
RETURN properties(n) AS props
`

const findAllNodesCypher = `
MATCH (n)
RETURN properties(n) AS props, labels(n) AS labels
`

const createRelationshipCypherTemplate = `
OPTIONAL MATCH (a%s {%s: $fromValue})
WITH collect(a) AS fromNodes
OPTIONAL MATCH (b%s {%s: $toValue})
WITH fromNodes, collect(b) AS toNodes
FOREACH (_ IN CASE WHEN size(fromNodes) = 1 AND size(toNodes) = 1 THEN [1] ELSE [] END |
	FOREACH (src IN fromNodes |
		FOREACH (dst IN toNodes |
			CREATE (src)-[:%s]->(dst)
		)
	)
)
RETURN size(fromNodes) AS fromMatches, size(toNodes) AS toMatches
`

const findServiceAndProvidersCypher = `
MATCH (provider)-[:OFFERS]->(s:Service)
WHERE toLower(s.name) CONTAINS toLower($serviceName)
RETURN provider.name AS providerName,
       [label IN labels(provider) WHERE label <> $accountLabel][0] AS providerRole,
       s.name AS serviceName
`

const findUserByEmailCypher = `
MATCH (u {email: $email})
RETURN properties(u) AS props, labels(u) AS labels
LIMIT 1
`
