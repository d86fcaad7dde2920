// Package authz holds the authorization policy as pure functions.
// Checks are evaluated fresh on every request against the identity the
// middleware resolved; results are never cached since role and ownership
// can change between requests.
package authz

import (
	"github.com/testtrack-dev/testtrack/internal/models"
	"github.com/testtrack-dev/testtrack/internal/types"
)

// CanDeleteProject reports whether user may delete a project. Only admins
// can, regardless of who created it.
func CanDeleteProject(user types.AuthenticatedUser) bool {
	return user.Role == models.RoleAdmin
}

// CanDelete reports whether user may delete a record created by createdBy.
// Admins may delete anything; everyone else only their own records.
func CanDelete(user types.AuthenticatedUser, createdBy uint) bool {
	return user.Role == models.RoleAdmin || user.ID == createdBy
}
