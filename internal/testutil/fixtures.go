// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given email and name.
func (f *Fixtures) CreateUser(ctx context.Context, email, name string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		EmailCI:   text.Fold(email),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture CreateUser(%q): %v", email, err)
	}
	return u
}

// CreateOrganization inserts an organization with the given name and slug.
func (f *Fixtures) CreateOrganization(ctx context.Context, name, slug string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      slug,
		Plan:      models.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("fixture CreateOrganization(%q): %v", slug, err)
	}
	return org
}

// CreateMembership inserts a membership joining user to org with the role.
func (f *Fixtures) CreateMembership(ctx context.Context, orgID, userID primitive.ObjectID, role string) models.OrgMembership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.OrgMembership{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("org_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("fixture CreateMembership: %v", err)
	}
	return m
}

// CreateInvitation inserts an invitation that expires ttl from now. Negative
// ttl produces an already-expired invitation.
func (f *Fixtures) CreateInvitation(ctx context.Context, orgID, inviterID primitive.ObjectID, email, role string, ttl time.Duration) models.Invitation {
	f.t.Helper()

	now := time.Now().UTC()
	inv := models.Invitation{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Email:          email,
		EmailCI:        text.Fold(email),
		InviterID:      inviterID,
		Role:           role,
		ExpiresAt:      now.Add(ttl),
		CreatedAt:      now,
	}
	if _, err := f.db.Collection("invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("fixture CreateInvitation(%q): %v", email, err)
	}
	return inv
}
