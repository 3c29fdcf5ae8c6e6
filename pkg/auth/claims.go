package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ActorID    uuid.UUID
	Role       enums.ActorRole
	LocationID *uuid.UUID
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	ActorID    uuid.UUID       `json:"actor_id"`
	Role       enums.ActorRole `json:"role"`
	LocationID *uuid.UUID      `json:"location_id,omitempty"`
	jwt.RegisteredClaims
}
