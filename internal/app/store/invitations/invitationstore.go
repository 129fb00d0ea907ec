// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"time"

	"github.com/averymorin/tenantkit/internal/app/system/normalize"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invitations")}
}

// Upsert writes the invitation for its (organization, email) pair, replacing
// any prior row for the same pair. The unique index on
// (organization_id, email_ci) keeps concurrent inviters from creating two
// live invitations; the replace keeps the at-most-one-live invariant without
// a separate expired-row cleanup step.
func (s *Store) Upsert(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	now := time.Now().UTC()
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	inv.Email = normalize.Email(inv.Email)
	inv.EmailCI = text.Fold(inv.Email)
	inv.CreatedAt = now

	filter := bson.M{"organization_id": inv.OrganizationID, "email_ci": inv.EmailCI}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, filter, inv, opts); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// GetByID loads an invitation by ObjectID.
// Returns mongo.ErrNoDocuments if absent (including already consumed).
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// GetLive returns the unexpired invitation for (orgID, email), if any.
// Returns mongo.ErrNoDocuments when there is none.
func (s *Store) GetLive(ctx context.Context, orgID primitive.ObjectID, email string) (models.Invitation, error) {
	var inv models.Invitation
	err := s.c.FindOne(ctx, bson.M{
		"organization_id": orgID,
		"email_ci":        text.Fold(normalize.Email(email)),
		"expires_at":      bson.M{"$gt": time.Now().UTC()},
	}).Decode(&inv)
	if err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// Consume deletes the invitation by ID and returns it. Acceptance uses this
// so that two concurrent accepts cannot both convert the same invitation:
// exactly one caller gets the document, the other gets mongo.ErrNoDocuments.
func (s *Store) Consume(ctx context.Context, id primitive.ObjectID) (models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// Delete removes an invitation by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListByOrg returns all invitations for an organization.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var invs []models.Invitation
	if err := cur.All(ctx, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// DeleteByOrg removes all invitations of an organization.
// Returns the number of documents deleted.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteExpiredBefore removes invitations whose expiry is before ts.
// Returns the number of documents deleted.
func (s *Store) DeleteExpiredBefore(ctx context.Context, ts time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": ts}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
