package auth

import (
	"github.com/angelmondragon/fastfood-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Roles       []enums.Role
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID    `json:"user_id"`
	Email       string       `json:"email"`
	DisplayName string       `json:"name,omitempty"`
	Roles       []enums.Role `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token grants the role.
func (c *AccessTokenClaims) HasRole(role enums.Role) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
