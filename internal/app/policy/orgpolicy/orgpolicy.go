// Package orgpolicy holds the role policy table for membership mutations.
//
// Roles form a strict hierarchy owner > admin > member. The rules:
//   - Admins and owners manage the organization profile and invitations
//   - Only owners delete the organization or transfer ownership
//   - Role changes and removals never target the actor themselves
//   - Owners cannot be demoted or removed; ownership moves only through an
//     explicit transfer
//   - No rule may leave an organization without an owner
//
// Everything here is a pure function over role strings; reading membership
// state and writing changes belongs to system/roster.
package orgpolicy

import (
	"errors"

	"github.com/averymorin/tenantkit/internal/domain/models"
)

var (
	// ErrNotAuthorized is returned when the actor's role does not permit the
	// operation.
	ErrNotAuthorized = errors.New("role does not permit this operation")
	// ErrSelfModification is returned when an actor targets their own
	// membership with updateRole or remove. Leaving is a separate operation.
	ErrSelfModification = errors.New("cannot modify your own membership")
	// ErrTargetIsOwner is returned when the target of a role change or
	// removal currently holds the owner role.
	ErrTargetIsOwner = errors.New("owner membership cannot be modified; transfer ownership first")
	// ErrCannotGrantOwner is returned when updateRole is asked to mint an
	// owner. Ownership moves only through an explicit transfer.
	ErrCannotGrantOwner = errors.New("ownership is granted only by transfer")
	// ErrBadRole is returned for role values outside the hierarchy.
	ErrBadRole = errors.New(`role must be "owner", "admin", or "member"`)
)

// CanManageOrg reports whether a role may update the organization profile or
// manage invitations.
func CanManageOrg(role string) bool {
	return role == models.RoleOwner || role == models.RoleAdmin
}

// CanDeleteOrg reports whether a role may delete the organization.
func CanDeleteOrg(role string) bool {
	return role == models.RoleOwner
}

// CheckUpdateRole applies the policy row for updateRole(target, newRole).
// actorIsTarget must be computed by the caller from user ids, not roles.
func CheckUpdateRole(actorRole, targetRole, newRole string, actorIsTarget bool) error {
	if !CanManageOrg(actorRole) {
		return ErrNotAuthorized
	}
	if actorIsTarget {
		return ErrSelfModification
	}
	if !models.IsValidRole(newRole) {
		return ErrBadRole
	}
	if newRole == models.RoleOwner {
		return ErrCannotGrantOwner
	}
	if targetRole == models.RoleOwner {
		return ErrTargetIsOwner
	}
	return nil
}

// CheckRemove applies the policy row for remove(target).
func CheckRemove(actorRole, targetRole string, actorIsTarget bool) error {
	if !CanManageOrg(actorRole) {
		return ErrNotAuthorized
	}
	if actorIsTarget {
		return ErrSelfModification
	}
	if targetRole == models.RoleOwner {
		return ErrTargetIsOwner
	}
	return nil
}

// CheckTransferOwnership applies the policy row for transferOwnership.
// The successor's membership existence is the caller's check.
func CheckTransferOwnership(actorRole string, actorIsSuccessor bool) error {
	if actorRole != models.RoleOwner {
		return ErrNotAuthorized
	}
	if actorIsSuccessor {
		return ErrSelfModification
	}
	return nil
}
