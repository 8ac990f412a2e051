// Package access holds the pure authorization decisions: role gates,
// the ownership predicate, and the role-change rules. No I/O.
package access

import (
	"errors"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

var (
	// ErrInvalidRole rejects role values outside the closed enum.
	ErrInvalidRole = errors.New(`invalid role, must be either "member" or "administrator"`)
	// ErrSelfRoleChange blocks an administrator from altering its own role.
	ErrSelfRoleChange = errors.New("you cannot change your own role")
)

// CanAccessEndpoint reports whether a caller role satisfies a route's
// required role. Administrators satisfy every requirement.
func CanAccessEndpoint(role, required models.Role) bool {
	if role == models.RoleAdmin {
		return true
	}
	return role == required
}

// CanAccessResource is the ownership predicate shared by read, update, and
// delete of a todo: admins see everything, members only their own records.
func CanAccessResource(callerID string, role models.Role, ownerID string) bool {
	if role == models.RoleAdmin {
		return true
	}
	return callerID != "" && callerID == ownerID
}

// ChangeRole validates an administrator's request to set targetID's role.
// The self-modification check runs regardless of role validity so an admin
// can never lock itself out, even with a bad payload.
func ChangeRole(actorID, targetID string, newRole models.Role) error {
	if actorID == targetID {
		return ErrSelfRoleChange
	}
	if !newRole.Valid() {
		return ErrInvalidRole
	}
	return nil
}
