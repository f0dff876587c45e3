package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/metrics"
	"github.com/vanshika/skillgraph/backend/internal/service"
	"github.com/vanshika/skillgraph/backend/internal/service/servicetest"
)

func stubHealth(err error) HealthFunc {
	return func(context.Context) error { return err }
}

type testAPI struct {
	handler http.Handler
	repo    *servicetest.Repository
	tokens  *auth.TokenIssuer
}

func newTestAPI(t *testing.T, m *metrics.Metrics) testAPI {
	t.Helper()
	repo := servicetest.NewRepository()
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: "test-secret", Issuer: "skillgraph"})
	require.NoError(t, err)

	identity := service.NewIdentityService(repo, auth.NewPasswordHasher(4), tokens, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := NewAPIHandlers(logger, identity, service.NewCatalogService(repo), service.NewRelationshipService(repo))

	handler := NewRouter(logger, RouterDependencies{
		Health:         stubHealth(nil),
		API:            api,
		Auth:           identity,
		Metrics:        m,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return testAPI{handler: handler, repo: repo, tokens: tokens}
}

func (a testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a testAPI) registerAndLogin(t *testing.T, name, email, role string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "p1", "role": role,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "p1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[loginResponse](t, rec).Token
}

func TestAPI_OfferAndSearchFlow(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "p1", "role": "student",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, profileResponse{ID: "ann@x.com", Name: "Ann", Email: "ann@x.com", Role: "Student"}, decodeBody[profileResponse](t, rec))
	assert.NotContains(t, rec.Body.String(), "password")

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com", "password": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody[loginResponse](t, rec)
	assert.Equal(t, userResponse{Email: "ann@x.com", Name: "Ann", Role: "Student"}, login.User)
	require.NotEmpty(t, login.Token)

	rec = api.do(t, http.MethodPost, "/api/services", login.Token, map[string]string{"name": "Tutoring"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Tutoring", created["name"])
	assert.Equal(t, "", created["description"])
	assert.Equal(t, "Ann", created["createdBy"])

	rec = api.do(t, http.MethodPost, "/api/relationships/offers", login.Token, map[string]string{"serviceName": "Tutoring"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, relationshipResponse{Relationship: "OFFERS"}, decodeBody[relationshipResponse](t, rec))

	rec = api.do(t, http.MethodGet, "/api/services/search/tutor", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []providerResponse{{Provider: "Ann", Role: "Student", Service: "Tutoring"}}, decodeBody[[]providerResponse](t, rec))

	rec = api.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, meResponse{User: userResponse{Email: "ann@x.com", Name: "Ann", Role: "Student"}}, decodeBody[meResponse](t, rec))
}

func TestAPI_UsesRelationship(t *testing.T) {
	api := newTestAPI(t, nil)
	annToken := api.registerAndLogin(t, "Ann", "ann@x.com", "Student")
	bobToken := api.registerAndLogin(t, "Bob", "bob@x.com", "Faculty")

	rec := api.do(t, http.MethodPost, "/api/services", annToken, map[string]string{"name": "Tutoring", "description": "Math"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/relationships/uses", bobToken, map[string]string{"serviceName": "Tutoring"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, relationshipResponse{Relationship: "USES"}, decodeBody[relationshipResponse](t, rec))

	// USES edges do not make Bob a provider.
	rec = api.do(t, http.MethodGet, "/api/services/search/Tutoring", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]string{"message": "No providers found for this service."}, decodeBody[map[string]string](t, rec))
}

func TestAPI_RegisterErrors(t *testing.T) {
	api := newTestAPI(t, nil)
	api.registerAndLogin(t, "Ann", "ann@x.com", "Student")

	rec := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ann", "email": "ann@x.com", "password": "p2", "role": "Staff"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, map[string]string{"error": "User with this email already exists"}, decodeBody[map[string]string](t, rec))

	rec = api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Cy", "email": "cy@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"error": "name, email, password and role are required"}, decodeBody[map[string]string](t, rec))

	rec = api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Cy", "email": "cy@x.com", "password": "p", "role": "Service"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Cy", "admin": "true"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_LoginErrors(t *testing.T) {
	api := newTestAPI(t, nil)
	api.registerAndLogin(t, "Ann", "ann@x.com", "Student")

	for _, body := range []map[string]string{
		{"email": "ann@x.com", "password": "wrong"},
		{"email": "nobody@x.com", "password": "p1"},
	} {
		rec := api.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, map[string]string{"error": "Invalid credentials"}, decodeBody[map[string]string](t, rec))
	}

	rec := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"error": "email and password required"}, decodeBody[map[string]string](t, rec))
}

func TestAPI_AuthMiddleware(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.registerAndLogin(t, "Ann", "ann@x.com", "Student")

	rec := api.do(t, http.MethodPost, "/api/relationships/offers", "", map[string]string{"serviceName": "Tutoring"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]string{"error": "Missing auth header"}, decodeBody[map[string]string](t, rec))

	rec = api.do(t, http.MethodGet, "/api/auth/me", token+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]string{"error": "Invalid token"}, decodeBody[map[string]string](t, rec))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", token)
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Empty(t, api.repo.Edges())
}

func TestAPI_MeForRemovedAccount(t *testing.T) {
	api := newTestAPI(t, nil)
	token, _, err := api.tokens.Issue(auth.Identity{Email: "ghost@x.com", Name: "Ghost", Role: "Staff"})
	require.NoError(t, err)

	rec := api.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]string{"error": "User not found"}, decodeBody[map[string]string](t, rec))
}

func TestAPI_RelationshipErrors(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.registerAndLogin(t, "Ann", "ann@x.com", "Student")

	rec := api.do(t, http.MethodPost, "/api/relationships/offers", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"error": "serviceName is required."}, decodeBody[map[string]string](t, rec))

	rec = api.do(t, http.MethodPost, "/api/relationships/offers", token, map[string]string{"serviceName": "Gardening"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, api.repo.Edges())
}

func TestAPI_Nodes(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.registerAndLogin(t, "Ann", "ann@x.com", "Student")
	rec := api.do(t, http.MethodPost, "/api/services", token, map[string]string{"name": "Tutoring"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/nodes/Student", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	students := decodeBody[[]map[string]any](t, rec)
	require.Len(t, students, 1)
	assert.Equal(t, "Ann", students[0]["name"])
	assert.NotContains(t, students[0], "password")

	rec = api.do(t, http.MethodGet, "/api/nodes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[[]map[string]any](t, rec)
	require.Len(t, all, 2)
	for _, n := range all {
		assert.NotContains(t, n, "password")
		assert.NotContains(t, n["labels"], "Account")
	}

	rec = api.do(t, http.MethodGet, "/api/services", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	for _, label := range []string{"Account", "Robot", "Student%60%29%20DETACH%20DELETE%20n"} {
		rec = api.do(t, http.MethodGet, "/api/nodes/"+label, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, label)
	}
}

func TestAPI_InfrastructureErrorsAreGeneric(t *testing.T) {
	api := newTestAPI(t, nil)
	api.repo.WithError(errors.New("dial tcp 10.0.0.7:7687: connection refused"))

	rec := api.do(t, http.MethodGet, "/api/services", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]string{"error": "Failed to fetch services."}, decodeBody[map[string]string](t, rec))

	rec = api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "A", "email": "a@x.com", "password": "p", "role": "Student"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "7687")
}

func TestHealthz(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := httptest.NewRecorder()
	NewRouter(logger, RouterDependencies{Health: stubHealth(nil)}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewRouter(logger, RouterDependencies{Health: stubHealth(errors.New("bolt down"))}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	api := newTestAPI(t, m)

	api.do(t, http.MethodGet, "/api/services", "", nil)
	rec := api.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `skillgraph_http_requests_total{method="GET",route="/api/services`)
	assert.Contains(t, rec.Body.String(), "skillgraph_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/services", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAPIPrefix(t *testing.T) {
	assert.Equal(t, "/api", apiPrefix(""))
	assert.Equal(t, "/api", apiPrefix("/api/"))
	assert.Equal(t, "/v1", apiPrefix("v1"))
}
