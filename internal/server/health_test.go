package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vanshika/skillgraph/backend/internal/graph"
)

func TestGraphHealthService_Probe(t *testing.T) {
	assert.NoError(t, GraphHealthService{}.Probe(context.Background()))
	assert.NoError(t, GraphHealthService{Client: graph.NewMemoryClient()}.Probe(context.Background()))

	down := graph.NewMemoryClient().WithConnectivityError(errors.New("unreachable"))
	assert.Error(t, GraphHealthService{Client: down}.Probe(context.Background()))
}
