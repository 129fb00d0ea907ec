// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/averymorin/tenantkit/internal/app/system/paging"
	"github.com/averymorin/tenantkit/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_memberships")}
}

var (
	// ErrDuplicateMembership is returned when the (organization, user) pair
	// already has a membership row.
	ErrDuplicateMembership = errors.New("user is already a member of this organization")
	// ErrStaleRole is returned by guarded updates when the membership's role
	// changed between the caller's read and the write.
	ErrStaleRole = errors.New("membership role changed concurrently")
	errBadRole   = errors.New(`role must be "owner", "admin", or "member"`)
)

// Add creates a membership row. Uniqueness of (organization_id, user_id) is
// enforced by the store's unique index, so concurrent duplicate adds lose
// cleanly with ErrDuplicateMembership.
func (s *Store) Add(ctx context.Context, orgID, userID primitive.ObjectID, role string) (models.OrgMembership, error) {
	if !models.IsValidRole(role) {
		return models.OrgMembership{}, errBadRole
	}
	now := time.Now().UTC()
	m := models.OrgMembership{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.OrgMembership{}, ErrDuplicateMembership
		}
		return models.OrgMembership{}, err
	}
	return m, nil
}

// Get loads the membership for (orgID, userID).
// Returns mongo.ErrNoDocuments if the user is not a member.
func (s *Store) Get(ctx context.Context, orgID, userID primitive.ObjectID) (models.OrgMembership, error) {
	var m models.OrgMembership
	err := s.c.FindOne(ctx, bson.M{"organization_id": orgID, "user_id": userID}).Decode(&m)
	if err != nil {
		return models.OrgMembership{}, err
	}
	return m, nil
}

// UpdateRoleFrom flips a membership's role, but only if its current role
// still equals fromRole. The conditional filter makes the read-check-write a
// single atomic document operation, so a role revoked by a concurrent caller
// cannot be resurrected by a stale read. Returns ErrStaleRole when the
// precondition no longer holds (including the row being gone).
func (s *Store) UpdateRoleFrom(ctx context.Context, orgID, userID primitive.ObjectID, fromRole, toRole string) error {
	if !models.IsValidRole(toRole) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"organization_id": orgID, "user_id": userID, "role": fromRole},
		bson.M{"$set": bson.M{"role": toRole, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleRole
	}
	return nil
}

// RemoveIfRole deletes the membership for (orgID, userID) only while its role
// still equals role. Same stale-read guard as UpdateRoleFrom.
func (s *Store) RemoveIfRole(ctx context.Context, orgID, userID primitive.ObjectID, role string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"organization_id": orgID, "user_id": userID, "role": role})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrStaleRole
	}
	return nil
}

// Remove deletes the membership row for (orgID, userID) unconditionally.
func (s *Store) Remove(ctx context.Context, orgID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"organization_id": orgID, "user_id": userID})
	return err
}

// ListByOrg returns all memberships of an organization, optionally filtered
// by role. An empty role returns everything.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID, role string) ([]models.OrgMembership, error) {
	filter := bson.M{"organization_id": orgID}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var memberships []models.OrgMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByOrgPage returns one keyset page of an organization's memberships,
// sorted by role with _id as tiebreaker. The fetch is a look-ahead: up to
// PageSize+1 rows come back and the caller trims with paging.TrimPage.
func (s *Store) ListByOrgPage(ctx context.Context, orgID primitive.ObjectID, role string, cfg paging.KeysetConfig) ([]models.OrgMembership, error) {
	filter := bson.M{"organization_id": orgID}
	if role != "" {
		filter["role"] = role
	}
	if ks := cfg.KeysetWindow("role"); ks != nil {
		filter = bson.M{"$and": bson.A{filter, ks}}
	}

	find := options.Find()
	cfg.ApplyToFind(find, "role")

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var memberships []models.OrgMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUser returns all memberships a user holds across organizations.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrgMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var memberships []models.OrgMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountByOrgRole returns how many memberships of an organization hold role.
func (s *Store) CountByOrgRole(ctx context.Context, orgID primitive.ObjectID, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"organization_id": orgID, "role": role})
}

// DeleteByOrg removes all memberships of an organization.
// Returns the number of documents deleted.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes all memberships a user holds.
// Returns the number of documents deleted.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
