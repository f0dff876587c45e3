package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/domain"
	"github.com/vanshika/skillgraph/backend/internal/service"
	"github.com/vanshika/skillgraph/backend/internal/service/servicetest"
)

func smallConfig() Config {
	return Config{NumPeople: 40, NumServices: 15, CoOfferChance: 0.5, MaxUsesPerPerson: 2, Seed: 7}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)
	b, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a.People, 40)
	assert.Len(t, a.Services, 15)
}

func TestGenerate_ReferencesResolve(t *testing.T) {
	ds, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	emails := map[string]bool{}
	names := map[string]bool{}
	for _, p := range ds.People {
		assert.False(t, emails[p.Email], "duplicate email %s", p.Email)
		assert.False(t, names[p.Name], "duplicate name %s", p.Name)
		assert.Contains(t, domain.DefaultRoles, p.Role)
		emails[p.Email] = true
		names[p.Name] = true
	}

	services := map[string]bool{}
	for _, s := range ds.Services {
		assert.False(t, services[s.Name], "duplicate service %s", s.Name)
		assert.True(t, emails[s.OwnerEmail])
		services[s.Name] = true
	}

	offers := 0
	for _, l := range ds.Links {
		assert.True(t, emails[l.PersonEmail])
		assert.True(t, services[l.ServiceName])
		if l.Type == domain.RelationshipOffers {
			offers++
		}
	}
	assert.GreaterOrEqual(t, offers, len(ds.Services))
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(smallConfig()).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteAndReadDataset(t *testing.T) {
	ds, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, WriteDataset(ds, dir))

	loaded, err := ReadDataset(dir)
	require.NoError(t, err)
	assert.Equal(t, ds, loaded)

	empty, err := ReadDataset(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, empty.People)
}

func TestGeneratedDatasetIngests(t *testing.T) {
	ds, err := New(smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	repo := servicetest.NewRepository()
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: "seed"})
	require.NoError(t, err)
	ingestor := service.NewBulkIngestor(
		service.NewIdentityService(repo, auth.NewPasswordHasher(4), tokens, nil),
		service.NewCatalogService(repo),
		service.NewRelationshipService(repo),
		4,
	)

	ctx := context.Background()
	require.NoError(t, ingestor.IngestPeople(ctx, ds.People))
	require.NoError(t, ingestor.IngestServices(ctx, ds.Services))
	require.NoError(t, ingestor.IngestLinks(ctx, ds.Links))

	assert.Len(t, repo.Edges(), len(ds.Links))
}
