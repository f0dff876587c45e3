package server

import "github.com/vanshika/skillgraph/backend/internal/auth"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createServiceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type relationshipRequest struct {
	ServiceName string `json:"serviceName"`
}

type profileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type meResponse struct {
	User userResponse `json:"user"`
}

type providerResponse struct {
	Provider string `json:"provider"`
	Role     string `json:"role"`
	Service  string `json:"service"`
}

type relationshipResponse struct {
	Relationship string `json:"relationship"`
}

func toUserResponse(id auth.Identity) userResponse {
	return userResponse{Email: id.Email, Name: id.Name, Role: id.Role}
}
