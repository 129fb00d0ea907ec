// internal/domain/models/credential.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessToken is the stored half of a short-lived credential. Only the
// SHA-256 hash of the raw token is persisted; the raw value is returned to
// the caller exactly once at issuance.
type AccessToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TokenHash string             `bson:"token_hash"`
	UserID    primitive.ObjectID `bson:"user_id"`

	// RefreshTokenID points at the refresh token that spawned this access
	// token, so revoking the refresh token can cascade here.
	RefreshTokenID primitive.ObjectID `bson:"refresh_token_id"`

	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// RefreshToken is the stored half of a longer-lived credential. Refresh
// tokens are single-use: rotation consumes the document atomically.
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TokenHash string             `bson:"token_hash"`
	UserID    primitive.ObjectID `bson:"user_id"`

	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
