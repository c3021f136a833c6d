package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
)

// AccessTokenClaims is the typed view of tokens minted by the identity
// provider. We never issue these ourselves outside of tests.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
