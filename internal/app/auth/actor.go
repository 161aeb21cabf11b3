package auth

import (
	"time"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

// Actor is the verified identity behind a request. Handlers build it from
// the access token and pass it to services explicitly.
type Actor struct {
	UserID int64
	Email  string
	Role   models.Role
	// TokenID is the JWT ID, needed to revoke the token on logout
	TokenID string
	// TokenTTL is the access token's remaining lifetime at authentication
	TokenTTL time.Duration
}

// IsAdmin reports whether the actor has the admin role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// Owns reports whether the actor is ownerID
func (a *Actor) Owns(ownerID int64) bool {
	return a != nil && a.UserID == ownerID
}

// CanModify reports whether the actor is the owner or an admin
func (a *Actor) CanModify(ownerID int64) bool {
	return a.Owns(ownerID) || a.IsAdmin()
}

// RequireOwnerOrAdmin returns a permission error carrying message unless
// the actor may modify a resource owned by ownerID.
func (a *Actor) RequireOwnerOrAdmin(ownerID int64, message string) error {
	if a.CanModify(ownerID) {
		return nil
	}
	return apperrors.NewForbiddenError(message)
}

// RequireAdmin returns a permission error unless the actor is an admin
func (a *Actor) RequireAdmin() error {
	if a.IsAdmin() {
		return nil
	}
	return apperrors.NewForbiddenError("נדרשת הרשאת מנהל")
}

// ViewerID returns the actor's user id, or 0 for anonymous viewers
func (a *Actor) ViewerID() int64 {
	if a == nil {
		return 0
	}
	return a.UserID
}
