package domain

// RelationshipType tags a directed edge.
type RelationshipType string

const (
	RelationshipOffers RelationshipType = "OFFERS"
	RelationshipUses   RelationshipType = "USES"
)

// RelationshipTypes lists every edge type the graph accepts.
var RelationshipTypes = []RelationshipType{RelationshipOffers, RelationshipUses}

// Endpoint identifies one node by (label, property, value).
type Endpoint struct {
	Label    string
	Property string
	Value    string
}

// Relationship confirms a created edge.
type Relationship struct {
	Type RelationshipType
}

// ProviderMatch pairs a service with a node that offers it.
type ProviderMatch struct {
	Provider string
	Role     string
	Service  string
}
