// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an identity record. A user belongs to organizations through the
// org_memberships collection; membership is never embedded on the user.
type User struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email   string             `bson:"email" json:"email"`
	EmailCI string             `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped; unique
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"-"`

	// AuthMethod records how the account was created (password, google, ...).
	AuthMethod   string `bson:"auth_method,omitempty" json:"auth_method,omitempty"`
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	// AvatarRef is an opaque blob-storage reference, not a URL.
	AvatarRef string `bson:"avatar_ref,omitempty" json:"avatar_ref,omitempty"`

	// ActiveOrganizationID is the organization the user is currently acting in.
	ActiveOrganizationID *primitive.ObjectID `bson:"active_organization_id,omitempty" json:"active_organization_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
