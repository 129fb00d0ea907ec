// internal/app/store/credentials/credentialstore.go
package credentialstore

import (
	"context"
	"time"

	"github.com/averymorin/tenantkit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists access-token and refresh-token records. Only token hashes
// are stored; raw tokens never reach this layer.
type Store struct {
	access  *mongo.Collection
	refresh *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		access:  db.Collection("access_tokens"),
		refresh: db.Collection("refresh_tokens"),
	}
}

// InsertAccessToken stores an access-token record.
func (s *Store) InsertAccessToken(ctx context.Context, t models.AccessToken) (models.AccessToken, error) {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	if _, err := s.access.InsertOne(ctx, t); err != nil {
		return models.AccessToken{}, err
	}
	return t, nil
}

// InsertRefreshToken stores a refresh-token record.
func (s *Store) InsertRefreshToken(ctx context.Context, t models.RefreshToken) (models.RefreshToken, error) {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	if _, err := s.refresh.InsertOne(ctx, t); err != nil {
		return models.RefreshToken{}, err
	}
	return t, nil
}

// FindAccessByHash looks up a live access-token record by hash. Expired
// records are filtered out by the query, so callers see expired and absent
// identically (mongo.ErrNoDocuments).
func (s *Store) FindAccessByHash(ctx context.Context, hash string) (models.AccessToken, error) {
	var t models.AccessToken
	err := s.access.FindOne(ctx, bson.M{
		"token_hash": hash,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&t)
	if err != nil {
		return models.AccessToken{}, err
	}
	return t, nil
}

// FindRefreshByHash looks up a live refresh-token record by hash.
func (s *Store) FindRefreshByHash(ctx context.Context, hash string) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := s.refresh.FindOne(ctx, bson.M{
		"token_hash": hash,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&t)
	if err != nil {
		return models.RefreshToken{}, err
	}
	return t, nil
}

// ConsumeRefreshByHash atomically deletes and returns the live refresh-token
// record for hash. Exactly one of any set of concurrent callers receives the
// document; the rest get mongo.ErrNoDocuments. This is what makes rotation
// single-use with no grace window.
func (s *Store) ConsumeRefreshByHash(ctx context.Context, hash string) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := s.refresh.FindOneAndDelete(ctx, bson.M{
		"token_hash": hash,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&t)
	if err != nil {
		return models.RefreshToken{}, err
	}
	return t, nil
}

// DeleteAccessByHash removes an access-token record by hash. Deleting an
// absent record is not an error (revocation is idempotent).
func (s *Store) DeleteAccessByHash(ctx context.Context, hash string) error {
	_, err := s.access.DeleteOne(ctx, bson.M{"token_hash": hash})
	return err
}

// DeleteRefreshByHash removes a refresh-token record by hash.
func (s *Store) DeleteRefreshByHash(ctx context.Context, hash string) error {
	_, err := s.refresh.DeleteOne(ctx, bson.M{"token_hash": hash})
	return err
}

// DeleteRefreshByID removes a refresh-token record by ID.
func (s *Store) DeleteRefreshByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.refresh.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteAccessByRefreshID removes all access tokens spawned by the given
// refresh token. Sign-out revocation cascades through here.
func (s *Store) DeleteAccessByRefreshID(ctx context.Context, refreshID primitive.ObjectID) (int64, error) {
	res, err := s.access.DeleteMany(ctx, bson.M{"refresh_token_id": refreshID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteAllForUser removes every token record, of both kinds, owned by the
// user ("sign out everywhere"). Returns the total number of documents deleted.
func (s *Store) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var total int64
	res, err := s.access.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return total, err
	}
	total += res.DeletedCount
	res, err = s.refresh.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return total, err
	}
	total += res.DeletedCount
	return total, nil
}

// DeleteExpiredBefore removes token records of both kinds whose expiry is
// before ts. Returns the total number of documents deleted.
func (s *Store) DeleteExpiredBefore(ctx context.Context, ts time.Time) (int64, error) {
	var total int64
	res, err := s.access.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": ts}})
	if err != nil {
		return total, err
	}
	total += res.DeletedCount
	res, err = s.refresh.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": ts}})
	if err != nil {
		return total, err
	}
	total += res.DeletedCount
	return total, nil
}
