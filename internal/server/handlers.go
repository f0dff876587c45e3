package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vanshika/skillgraph/backend/internal/apperr"
	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/domain"
	"github.com/vanshika/skillgraph/backend/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger        *slog.Logger
	identity      *service.IdentityService
	catalog       *service.CatalogService
	relationships *service.RelationshipService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, identity *service.IdentityService, catalog *service.CatalogService, relationships *service.RelationshipService) *APIHandlers {
	return &APIHandlers{
		logger:        logger,
		identity:      identity,
		catalog:       catalog,
		relationships: relationships,
	}
}

func (h *APIHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.identity.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Server error during registration")
		return
	}

	respondJSON(w, http.StatusOK, profileResponse{
		ID:    profile.ID,
		Name:  profile.Name,
		Email: profile.Email,
		Role:  profile.Role,
	})
}

func (h *APIHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.identity.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeServiceError(w, r, err, "Server error during login")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserResponse(session.User),
	})
}

func (h *APIHandlers) me(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())
	profile, err := h.identity.Me(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, r, err, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, meResponse{
		User: userResponse{Email: profile.Email, Name: profile.Name, Role: profile.Role},
	})
}

func (h *APIHandlers) nodesByLabel(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	nodes, err := h.catalog.NodesByLabel(r.Context(), label)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch nodes.")
		return
	}
	respondJSON(w, http.StatusOK, propertiesOf(nodes))
}

func (h *APIHandlers) allNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.catalog.AllNodes(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch all nodes.")
		return
	}

	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		item := make(map[string]any, len(n.Properties)+1)
		for k, v := range n.Properties {
			item[k] = v
		}
		item["labels"] = domain.VisibleLabels(n.Labels)
		out = append(out, item)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *APIHandlers) createService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, _ := auth.IdentityFrom(r.Context())
	node, err := h.catalog.CreateService(r.Context(), caller, service.ServiceInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create service.")
		return
	}
	respondJSON(w, http.StatusCreated, node.Properties)
}

func (h *APIHandlers) listServices(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.catalog.ListServices(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch services.")
		return
	}
	respondJSON(w, http.StatusOK, propertiesOf(nodes))
}

func (h *APIHandlers) searchServices(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	matches, err := h.catalog.SearchProviders(r.Context(), name)
	if err != nil {
		// An empty search result is reported under "message", not "error".
		if apperr.KindOf(err) == apperr.KindNotFound {
			respondJSON(w, http.StatusNotFound, map[string]string{"message": apperr.MessageOf(err, "")})
			return
		}
		h.writeServiceError(w, r, err, "Failed to search for service.")
		return
	}

	out := make([]providerResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, providerResponse{Provider: m.Provider, Role: m.Role, Service: m.Service})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *APIHandlers) offer(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, h.relationships.Offer)
}

func (h *APIHandlers) use(w http.ResponseWriter, r *http.Request) {
	h.link(w, r, h.relationships.Use)
}

type linkFunc func(ctx context.Context, caller auth.Identity, serviceName string) (domain.Relationship, error)

func (h *APIHandlers) link(w http.ResponseWriter, r *http.Request, fn linkFunc) {
	var req relationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, _ := auth.IdentityFrom(r.Context())
	rel, err := fn(r.Context(), caller, req.ServiceName)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create relationship.")
		return
	}
	respondJSON(w, http.StatusCreated, relationshipResponse{Relationship: string(rel.Type)})
}

// writeServiceError maps err onto a status code. Infrastructure failures are
// logged with their cause and answered with a generic message.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if kind == apperr.KindInfrastructure {
		h.logger.Error("request failed", "error", err, "path", r.URL.Path, "request_id", requestID(r))
	} else {
		h.logger.Debug("request rejected", "kind", string(kind), "error", err, "path", r.URL.Path)
	}
	writeError(w, status, apperr.MessageOf(err, fallback))
}

func propertiesOf(nodes []domain.Node) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Properties)
	}
	return out
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
