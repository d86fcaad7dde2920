package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/testtrack-dev/testtrack/internal/models"
	"github.com/testtrack-dev/testtrack/internal/types"
)

func TestCanDeleteProject(t *testing.T) {
	admin := types.AuthenticatedUser{ID: 1, Role: models.RoleAdmin}
	tester := types.AuthenticatedUser{ID: 2, Role: models.RoleTester}

	assert.True(t, CanDeleteProject(admin))
	assert.False(t, CanDeleteProject(tester))
}

func TestCanDelete(t *testing.T) {
	admin := types.AuthenticatedUser{ID: 1, Role: models.RoleAdmin}
	creator := types.AuthenticatedUser{ID: 2, Role: models.RoleTester}
	stranger := types.AuthenticatedUser{ID: 3, Role: models.RoleTester}

	tests := []struct {
		name      string
		user      types.AuthenticatedUser
		createdBy uint
		want      bool
	}{
		{"admin may delete anything", admin, 2, true},
		{"creator may delete own record", creator, 2, true},
		{"other tester may not delete", stranger, 2, false},
		{"admin deleting own record", admin, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDelete(tt.user, tt.createdBy))
		})
	}
}
