package auth

import (
	"github.com/google/uuid"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
)

// Actor is the authenticated principal attached to a request.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}
