package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/skillgraph/backend/internal/apperr"
	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/domain"
	"github.com/vanshika/skillgraph/backend/internal/repository"
	"github.com/vanshika/skillgraph/backend/internal/service/servicetest"
)

var (
	_ GraphRepository = (*repository.Repository)(nil)
	_ GraphRepository = (*servicetest.Repository)(nil)
)

func newIdentityService(t *testing.T, repo GraphRepository) (*IdentityService, *auth.TokenIssuer) {
	t.Helper()
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: "test-secret", Issuer: "skillgraph"})
	require.NoError(t, err)
	return NewIdentityService(repo, auth.NewPasswordHasher(4), tokens, nil), tokens
}

func TestIdentityService_RegisterAndLogin(t *testing.T) {
	repo := servicetest.NewRepository()
	svc, tokens := newIdentityService(t, repo)
	ctx := context.Background()

	profile, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p1", Role: "student"})
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{ID: "ann@x.com", Email: "ann@x.com", Name: "Ann", Role: "Student"}, profile)

	stored := repo.Node(0)
	assert.ElementsMatch(t, []string{"Student", domain.LabelAccount}, stored.Labels)
	hash, _ := stored.Properties[domain.PropPassword].(string)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "p1", hash)

	session, err := svc.Login(ctx, LoginInput{Email: "ann@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{Email: "ann@x.com", Name: "Ann", Role: "Student"}, session.User)
	assert.False(t, session.ExpiresAt.IsZero())

	identity, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User, identity)
}

func TestIdentityService_RegisterNormalizesInput(t *testing.T) {
	svc, _ := newIdentityService(t, servicetest.NewRepository())

	profile, err := svc.Register(context.Background(), RegisterInput{
		Name:     "  Ann   Lee ",
		Email:    " Ann@X.com ",
		Password: "p1",
		Role:     "FACULTY",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann   Lee", profile.Name)
	assert.Equal(t, "Ann@X.com", profile.Email)
	assert.Equal(t, "Ann@X.com", profile.ID)
	assert.Equal(t, "Faculty", profile.Role)
}

func TestIdentityService_EmailsAreCaseSensitive(t *testing.T) {
	svc, _ := newIdentityService(t, servicetest.NewRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p1", Role: "Student"})
	require.NoError(t, err)
	profile, err := svc.Register(ctx, RegisterInput{Name: "Ann B", Email: "Ann@x.com", Password: "p2", Role: "Student"})
	require.NoError(t, err)
	assert.Equal(t, "Ann@x.com", profile.ID)

	session, err := svc.Login(ctx, LoginInput{Email: "Ann@x.com", Password: "p2"})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", session.User.Name)

	_, err = svc.Login(ctx, LoginInput{Email: "ANN@X.COM", Password: "p2"})
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestIdentityService_RegisterValidation(t *testing.T) {
	svc, _ := newIdentityService(t, servicetest.NewRepository())

	cases := map[string]RegisterInput{
		"missing name":     {Email: "a@x.com", Password: "p", Role: "Student"},
		"missing email":    {Name: "A", Password: "p", Role: "Student"},
		"missing password": {Name: "A", Email: "a@x.com", Role: "Student"},
		"missing role":     {Name: "A", Email: "a@x.com", Password: "p"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, "name, email, password and role are required", apperr.MessageOf(err, ""))
		})
	}
}

func TestIdentityService_RegisterRejectsUnknownRole(t *testing.T) {
	repo := servicetest.NewRepository()
	svc, _ := newIdentityService(t, repo)

	for _, role := range []string{"Service", "Account", "admin", "Student) DETACH DELETE (n"} {
		_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "p", Role: role})
		require.Error(t, err, role)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), role)
	}

	nodes, err := repo.FindAllNodes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestIdentityService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newIdentityService(t, servicetest.NewRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p1", Role: "Student"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p2", Role: "Faculty"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "User with this email already exists", apperr.MessageOf(err, ""))
}

type racingRepository struct {
	*servicetest.Repository
}

func (r racingRepository) FindUserByEmail(context.Context, string) (domain.Account, bool, error) {
	return domain.Account{}, false, nil
}

func (r racingRepository) CreateNode(context.Context, string, map[string]any) (domain.Node, error) {
	return domain.Node{}, repository.ErrDuplicateNode
}

func TestIdentityService_RegisterStorageConstraintIsConflict(t *testing.T) {
	svc, _ := newIdentityService(t, racingRepository{servicetest.NewRepository()})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p1", Role: "Student"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.ErrorIs(t, err, repository.ErrDuplicateNode)
}

func TestIdentityService_RegisterInfrastructureFailure(t *testing.T) {
	repo := servicetest.NewRepository().WithError(errors.New("bolt: connection refused"))
	svc, _ := newIdentityService(t, repo)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p1", Role: "Student"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInfrastructure, apperr.KindOf(err))
	assert.Equal(t, "Server error during registration", apperr.MessageOf(err, ""))
}

func TestIdentityService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newIdentityService(t, servicetest.NewRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p1", Role: "Student"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginInput{Email: "ann@x.com", Password: "nope"})
	_, unknownEmail := svc.Login(ctx, LoginInput{Email: "bob@x.com", Password: "p1"})

	for _, err := range []error{wrongPassword, unknownEmail} {
		require.Error(t, err)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
		assert.Equal(t, "Invalid credentials", apperr.MessageOf(err, ""))
	}
}

func TestIdentityService_LoginValidation(t *testing.T) {
	svc, _ := newIdentityService(t, servicetest.NewRepository())

	_, err := svc.Login(context.Background(), LoginInput{Email: "ann@x.com"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "email and password required", apperr.MessageOf(err, ""))
}

func TestIdentityService_Me(t *testing.T) {
	svc, _ := newIdentityService(t, servicetest.NewRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p1", Role: "Alumni"})
	require.NoError(t, err)

	profile, err := svc.Me(ctx, auth.Identity{Email: "ann@x.com", Name: "Ann", Role: "Alumni"})
	require.NoError(t, err)
	assert.Equal(t, "Alumni", profile.Role)

	_, err = svc.Me(ctx, auth.Identity{Email: "gone@x.com"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "User not found", apperr.MessageOf(err, ""))
}

func TestIdentityService_Authenticate(t *testing.T) {
	svc, tokens := newIdentityService(t, servicetest.NewRepository())
	issuedAt := time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	tokens.WithClock(func() time.Time { return issuedAt })

	token, _, err := tokens.Issue(auth.Identity{Email: "ann@x.com", Name: "Ann", Role: "Student"})
	require.NoError(t, err)

	identity, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", identity.Email)

	tokens.WithClock(func() time.Time { return issuedAt.Add(8*time.Hour + time.Second) })
	_, err = svc.Authenticate(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.Equal(t, "Invalid token", apperr.MessageOf(err, ""))

	_, err = svc.Authenticate("not-a-token")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}
