// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles, strictly ordered owner > admin > member.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// IsValidRole reports whether role is one of the known membership roles.
func IsValidRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin || role == RoleMember
}

// RoleRank returns a comparable rank for a role (higher is more privileged).
// Unknown roles rank below member.
func RoleRank(role string) int {
	switch role {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// OrgMembership joins a user to an organization with a role. There is exactly
// one document per (organization_id, user_id) pair, enforced by a unique index.
type OrgMembership struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role           string             `bson:"role" json:"role"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
