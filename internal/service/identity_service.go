package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vanshika/skillgraph/backend/internal/apperr"
	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/domain"
	"github.com/vanshika/skillgraph/backend/internal/repository"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
	Verify(token string) (auth.Identity, error)
}

const (
	msgRegisterRequired = "name, email, password and role are required"
	msgLoginRequired    = "email and password required"
	msgEmailTaken       = "User with this email already exists"
	msgBadCredentials   = "Invalid credentials"
	msgInvalidToken     = "Invalid token"
	msgUserNotFound     = "User not found"
)

// IdentityService handles registration, login and session lookups.
type IdentityService struct {
	repo   GraphRepository
	hasher PasswordHasher
	tokens TokenIssuer
	roles  map[string]struct{}
	names  []string
}

// NewIdentityService builds an IdentityService. roles is the allow-list of
// person labels accepted at registration; empty means domain.DefaultRoles.
func NewIdentityService(repo GraphRepository, hasher PasswordHasher, tokens TokenIssuer, roles []string) *IdentityService {
	if len(roles) == 0 {
		roles = domain.DefaultRoles
	}
	allowed := make(map[string]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if _, dup := allowed[role]; dup || role == "" {
			continue
		}
		allowed[role] = struct{}{}
		names = append(names, role)
	}
	return &IdentityService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		roles:  allowed,
		names:  names,
	}
}

// Register creates a person node under the normalized role label.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (domain.Profile, error) {
	input.Name = sanitizeString(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Role = normalizeRole(input.Role)
	if err := validateInput(input, msgRegisterRequired); err != nil {
		return domain.Profile{}, err
	}
	if _, ok := s.roles[input.Role]; !ok {
		return domain.Profile{}, apperr.Validation(fmt.Sprintf("role must be one of: %s", strings.Join(s.names, ", ")))
	}

	_, exists, err := s.repo.FindUserByEmail(ctx, input.Email)
	if err != nil {
		return domain.Profile{}, apperr.Infrastructure("Server error during registration", err)
	}
	if exists {
		return domain.Profile{}, apperr.Conflict(msgEmailTaken, nil)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return domain.Profile{}, &apperr.Error{Kind: apperr.KindValidation, Message: "password is too long", Cause: err}
		}
		return domain.Profile{}, apperr.Infrastructure("Server error during registration", err)
	}

	node, err := s.repo.CreateNode(ctx, input.Role, map[string]any{
		domain.PropName:     input.Name,
		domain.PropEmail:    input.Email,
		domain.PropPassword: hash,
	})
	if err != nil {
		// A concurrent registration can pass the lookup above; the storage
		// constraint still rejects the second node.
		if errors.Is(err, repository.ErrDuplicateNode) {
			return domain.Profile{}, apperr.Conflict(msgEmailTaken, err)
		}
		return domain.Profile{}, classify(err, "Server error during registration")
	}

	account := domain.Account{
		Email: stringProp(node.Properties, domain.PropEmail, input.Email),
		Name:  stringProp(node.Properties, domain.PropName, input.Name),
		Role:  input.Role,
	}
	return account.PublicProfile(), nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords produce the same error.
func (s *IdentityService) Login(ctx context.Context, input LoginInput) (Session, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input, msgLoginRequired); err != nil {
		return Session{}, err
	}

	account, found, err := s.repo.FindUserByEmail(ctx, input.Email)
	if err != nil {
		return Session{}, apperr.Infrastructure("Server error during login", err)
	}
	if !found {
		return Session{}, apperr.Auth(msgBadCredentials, nil)
	}
	if err := s.hasher.Verify(account.PasswordHash, input.Password); err != nil {
		return Session{}, apperr.Auth(msgBadCredentials, err)
	}

	identity := auth.Identity{Email: account.Email, Name: account.Name, Role: account.Role}
	token, expiresAt, err := s.tokens.Issue(identity)
	if err != nil {
		return Session{}, apperr.Infrastructure("Server error during login", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: identity}, nil
}

// Me reloads the caller's account so deleted users are reported.
func (s *IdentityService) Me(ctx context.Context, caller auth.Identity) (domain.Profile, error) {
	account, found, err := s.repo.FindUserByEmail(ctx, caller.Email)
	if err != nil {
		return domain.Profile{}, apperr.Infrastructure("Server error", err)
	}
	if !found {
		return domain.Profile{}, apperr.NotFound(msgUserNotFound, nil)
	}
	return account.PublicProfile(), nil
}

// Authenticate verifies a bearer token and returns its identity.
func (s *IdentityService) Authenticate(token string) (auth.Identity, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, apperr.Auth(msgInvalidToken, err)
	}
	return identity, nil
}

func stringProp(props map[string]any, key, fallback string) string {
	if v, ok := props[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
