package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/meddot/meddot-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    string
	Email     string
	Role      enums.TokenRole
	SessionID string
}

// AccessTokenClaims mirrors the access tokens issued by the hosted auth provider.
type AccessTokenClaims struct {
	Email     string          `json:"email,omitempty"`
	Role      enums.TokenRole `json:"role"`
	SessionID string          `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// UserID is the subject of the token.
func (c *AccessTokenClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
