package service

import (
	"time"

	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/domain"
)

// RegisterInput is the inbound payload for creating an account.
type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
	Role     string `validate:"required"`
}

// LoginInput carries the credentials exchanged for a session token.
type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// ServiceInput describes a Service node created by an authenticated caller.
type ServiceInput struct {
	Name        string `validate:"required"`
	Description string
}

type linkInput struct {
	ServiceName string `validate:"required"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      auth.Identity
}

// SeedPerson is a person record loaded by the bulk ingestor.
type SeedPerson struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedService is a Service node created by one of the seeded people.
type SeedService struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerEmail  string `json:"ownerEmail"`
}

// SeedLink connects a seeded person to a seeded service.
type SeedLink struct {
	PersonEmail string                  `json:"personEmail"`
	ServiceName string                  `json:"serviceName"`
	Type        domain.RelationshipType `json:"type"`
}
