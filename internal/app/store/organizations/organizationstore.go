// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"time"

	"github.com/averymorin/tenantkit/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateSlug is returned when an insert or update collides with the
// unique slug index. Callers decide whether to retry with a suffix (create)
// or surface the conflict (update).
var ErrDuplicateSlug = errors.New("an organization with this slug already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

// Create inserts an organization. The slug must already be resolved; a
// collision on the unique slug index comes back as ErrDuplicateSlug.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.NameCI = text.Fold(org.Name)
	if org.Plan == "" {
		org.Plan = models.PlanFree
	}
	org.CreatedAt = now
	org.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateSlug
		}
		return models.Organization{}, err
	}
	return org, nil
}

// GetByID loads an organization by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// GetBySlug loads an organization by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&org); err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// SlugExists reports whether any organization already holds the given slug.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"slug": slug}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update holds the organization fields that Apply will modify.
// Name and Slug are skipped when empty. LogoRef uses tri-state semantics:
// nil leaves the logo untouched, pointer-to-empty clears it, and a non-empty
// value replaces it. Omission and explicit clearing are different operations
// to callers, so the distinction must survive down to the write.
type Update struct {
	Name    string
	Slug    string
	LogoRef *string
}

// Apply modifies an organization's fields and refreshes UpdatedAt.
// A slug collision with another organization returns ErrDuplicateSlug.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if upd.Name != "" {
		set["name"] = upd.Name
		set["name_ci"] = text.Fold(upd.Name)
	}
	if upd.Slug != "" {
		set["slug"] = upd.Slug
	}
	if upd.LogoRef != nil {
		if *upd.LogoRef == "" {
			unset["logo_ref"] = ""
		} else {
			set["logo_ref"] = *upd.LogoRef
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if _, err := s.c.UpdateByID(ctx, id, update); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

// Delete removes an organization by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
