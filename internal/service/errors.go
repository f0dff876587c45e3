package service

import (
	"errors"

	"github.com/vanshika/skillgraph/backend/internal/apperr"
	"github.com/vanshika/skillgraph/backend/internal/cypher"
	"github.com/vanshika/skillgraph/backend/internal/repository"
)

const msgEndpointNotFound = "Service or provider not found."

// classify maps a repository failure onto the error taxonomy. failMsg is the
// caller-safe message used when the failure is an infrastructure fault.
func classify(err error, failMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cypher.ErrUnknownLabel),
		errors.Is(err, cypher.ErrUnknownPropertyKey),
		errors.Is(err, cypher.ErrUnknownRelationshipType),
		errors.Is(err, cypher.ErrInvalidIdentifier):
		return &apperr.Error{Kind: apperr.KindValidation, Message: "Unknown graph label, property or relationship type.", Cause: err}
	case errors.Is(err, repository.ErrEndpointNotFound):
		return apperr.NotFound(msgEndpointNotFound, err)
	case errors.Is(err, repository.ErrAmbiguousEndpoint):
		return apperr.NotFound("Service or provider matches more than one node.", err)
	default:
		return apperr.Infrastructure(failMsg, err)
	}
}
