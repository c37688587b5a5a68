package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the authenticated actor identity attached to every lifecycle
// call. The engine trusts it without re-verifying credentials; credential
// management lives in the external account provider.
type JWTClaims struct {
	ActorID string    `json:"actor_id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    ActorRole `json:"role"`

	jwt.RegisteredClaims
}

// IsCustomer reports whether the actor is the customer side of a request.
func (c *JWTClaims) IsCustomer() bool { return c.Role == RoleCustomer }

// IsTechnician reports whether the actor is a field technician.
func (c *JWTClaims) IsTechnician() bool { return c.Role == RoleTechnician }

// LoginRequest is the credential payload for both actor kinds.
type LoginRequest struct {
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=8"`
	Role     ActorRole `json:"role" validate:"required,oneof=customer technician"`
}

// LoginResponse carries the signed token back to the caller.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt int64     `json:"expiresAt"`
	Role      ActorRole `json:"role"`
}
