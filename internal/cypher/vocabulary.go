// Package cypher guards the structural parts of Cypher statements (labels,
// relationship types, property keys) that the query engine cannot bind as
// parameters. Every identifier interpolated into query text must come from
// a Vocabulary.
package cypher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrUnknownLabel            = errors.New("unknown node label")
	ErrUnknownRelationshipType = errors.New("unknown relationship type")
	ErrUnknownPropertyKey      = errors.New("unknown property key")
	ErrInvalidIdentifier       = errors.New("invalid identifier")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Vocabulary is a closed set of identifiers allowed in query text.
type Vocabulary struct {
	labels   map[string]struct{}
	relTypes map[string]struct{}
	keys     map[string]struct{}
}

// NewVocabulary builds a Vocabulary. Entries that are not plain identifiers
// are rejected so the allow-list itself cannot smuggle query text.
func NewVocabulary(labels, relationshipTypes, propertyKeys []string) (Vocabulary, error) {
	v := Vocabulary{
		labels:   make(map[string]struct{}, len(labels)),
		relTypes: make(map[string]struct{}, len(relationshipTypes)),
		keys:     make(map[string]struct{}, len(propertyKeys)),
	}
	for _, group := range []struct {
		dst    map[string]struct{}
		values []string
	}{
		{v.labels, labels},
		{v.relTypes, relationshipTypes},
		{v.keys, propertyKeys},
	} {
		for _, value := range group.values {
			value = strings.TrimSpace(value)
			if !identifierPattern.MatchString(value) {
				return Vocabulary{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, value)
			}
			group.dst[value] = struct{}{}
		}
	}
	return v, nil
}

// Label returns label quoted for interpolation.
func (v Vocabulary) Label(label string) (string, error) {
	if _, ok := v.labels[label]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return quote(label), nil
}

// RelationshipType returns relType quoted for interpolation.
func (v Vocabulary) RelationshipType(relType string) (string, error) {
	if _, ok := v.relTypes[relType]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelationshipType, relType)
	}
	return quote(relType), nil
}

// PropertyKey returns key quoted for interpolation.
func (v Vocabulary) PropertyKey(key string) (string, error) {
	if _, ok := v.keys[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPropertyKey, key)
	}
	return quote(key), nil
}

// Labels returns the quoted, colon-joined label expression for labels,
// e.g. ":`Student`:`Account`".
func (v Vocabulary) Labels(labels ...string) (string, error) {
	var b strings.Builder
	for _, label := range labels {
		quoted, err := v.Label(label)
		if err != nil {
			return "", err
		}
		b.WriteByte(':')
		b.WriteString(quoted)
	}
	return b.String(), nil
}

// quote backtick-quotes an already validated identifier.
func quote(identifier string) string {
	return "`" + identifier + "`"
}
