package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyhub-il/studyhub/internal/app/models"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

func TestActorPermissions(t *testing.T) {
	owner := &Actor{UserID: 1, Role: models.RoleUser}
	other := &Actor{UserID: 2, Role: models.RoleUser}
	admin := &Actor{UserID: 3, Role: models.RoleAdmin}

	assert.NoError(t, owner.RequireOwnerOrAdmin(1, "x"))
	assert.NoError(t, admin.RequireOwnerOrAdmin(1, "x"))
	assert.ErrorIs(t, other.RequireOwnerOrAdmin(1, "x"), apperrors.ErrPermissionDenied)

	assert.ErrorIs(t, owner.RequireAdmin(), apperrors.ErrPermissionDenied)
	assert.NoError(t, admin.RequireAdmin())
}

func TestNilActorIsAnonymous(t *testing.T) {
	var anon *Actor

	assert.False(t, anon.IsAdmin())
	assert.False(t, anon.CanModify(1))
	assert.Equal(t, int64(0), anon.ViewerID())
}
