// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation is a pending, time-boxed offer to join an organization. At most
// one live (unexpired) invitation exists per (organization_id, email) pair;
// expired rows may linger until the sweep or the next invite replaces them.
type Invitation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Email          string             `bson:"email" json:"email"`
	EmailCI        string             `bson:"email_ci" json:"-"`
	InviterID      primitive.ObjectID `bson:"inviter_id" json:"inviter_id"`
	Role           string             `bson:"role" json:"role"` // admin | member

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Expired reports whether the invitation is past its expiry at the given time.
func (i Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
