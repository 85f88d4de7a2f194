// Package policy decides whether a requester may act on another user's data.
//
// There is one rule: managers may act on anyone, employees only on
// themselves. A violation is a refusal (403), never a narrower result set.
package policy

import (
	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/domain"
)

// ErrInsufficientPermissions is returned for every policy violation.
var ErrInsufficientPermissions = apperror.NewForbiddenError("Insufficient permissions", nil)

// CanActOn reports whether requester may read or write data owned by targetUserID.
func CanActOn(requester domain.Requester, targetUserID int64) bool {
	if requester.IsManager() {
		return true
	}
	return requester.Role == domain.RoleEmployee && requester.ID == targetUserID
}

// Authorize returns ErrInsufficientPermissions when CanActOn is false.
func Authorize(requester domain.Requester, targetUserID int64) error {
	if !CanActOn(requester, targetUserID) {
		return ErrInsufficientPermissions
	}
	return nil
}

// RequireRole allows the requester only if it holds one of roles.
// With no roles given, any authenticated requester passes.
func RequireRole(requester domain.Requester, roles ...domain.Role) error {
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if requester.Role == role {
			return nil
		}
	}
	return ErrInsufficientPermissions
}
