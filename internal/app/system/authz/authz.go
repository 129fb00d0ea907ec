// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/averymorin/tenantkit/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false, so ok=true always means a valid authenticated user
// with a parseable ObjectID. Roles are not carried on the credential; resolve
// them per organization through the roster.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in a credential - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// UserEmail returns the current user's email, or "" when anonymous.
func UserEmail(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.Email
}
