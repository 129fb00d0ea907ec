package credentialstore_test

import (
	"errors"
	"testing"
	"time"

	credentialstore "github.com/averymorin/tenantkit/internal/app/store/credentials"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/averymorin/tenantkit/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_AccessTokenRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := credentialstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	refreshID := primitive.NewObjectID()

	inserted, err := store.InsertAccessToken(ctx, models.AccessToken{
		TokenHash:      "hash-a",
		UserID:         userID,
		RefreshTokenID: refreshID,
		ExpiresAt:      time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("InsertAccessToken failed: %v", err)
	}
	if inserted.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}

	got, err := store.FindAccessByHash(ctx, "hash-a")
	if err != nil {
		t.Fatalf("FindAccessByHash failed: %v", err)
	}
	if got.UserID != userID {
		t.Errorf("user = %v, want %v", got.UserID, userID)
	}
}

func TestStore_FindAccessByHash_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := credentialstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.InsertAccessToken(ctx, models.AccessToken{
		TokenHash:      "hash-dead",
		UserID:         primitive.NewObjectID(),
		RefreshTokenID: primitive.NewObjectID(),
		ExpiresAt:      time.Now().UTC().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("InsertAccessToken failed: %v", err)
	}

	// Expired rows behave as if they were already deleted.
	if _, err := store.FindAccessByHash(ctx, "hash-dead"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("err = %v, want ErrNoDocuments", err)
	}
}

func TestStore_ConsumeRefreshByHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := credentialstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if _, err := store.InsertRefreshToken(ctx, models.RefreshToken{
		TokenHash: "hash-r",
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}); err != nil {
		t.Fatalf("InsertRefreshToken failed: %v", err)
	}

	got, err := store.ConsumeRefreshByHash(ctx, "hash-r")
	if err != nil {
		t.Fatalf("ConsumeRefreshByHash failed: %v", err)
	}
	if got.UserID != userID {
		t.Errorf("user = %v, want %v", got.UserID, userID)
	}

	// The consume deleted the row; a replay finds nothing.
	if _, err := store.ConsumeRefreshByHash(ctx, "hash-r"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("replay err = %v, want ErrNoDocuments", err)
	}
}

func TestStore_DeleteAccessByRefreshID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := credentialstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	refresh, err := store.InsertRefreshToken(ctx, models.RefreshToken{
		TokenHash: "hash-parent",
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("InsertRefreshToken failed: %v", err)
	}

	for _, h := range []string{"child-1", "child-2"} {
		if _, err := store.InsertAccessToken(ctx, models.AccessToken{
			TokenHash:      h,
			UserID:         userID,
			RefreshTokenID: refresh.ID,
			ExpiresAt:      time.Now().UTC().Add(time.Hour),
		}); err != nil {
			t.Fatalf("InsertAccessToken failed: %v", err)
		}
	}
	// An access token under a different refresh token survives.
	if _, err := store.InsertAccessToken(ctx, models.AccessToken{
		TokenHash:      "other",
		UserID:         userID,
		RefreshTokenID: primitive.NewObjectID(),
		ExpiresAt:      time.Now().UTC().Add(time.Hour),
	}); err != nil {
		t.Fatalf("InsertAccessToken failed: %v", err)
	}

	n, err := store.DeleteAccessByRefreshID(ctx, refresh.ID)
	if err != nil {
		t.Fatalf("DeleteAccessByRefreshID failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d access tokens, want 2", n)
	}
	if _, err := store.FindAccessByHash(ctx, "other"); err != nil {
		t.Errorf("unrelated access token was deleted: %v", err)
	}
}

func TestStore_DeleteAllForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := credentialstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	victim := primitive.NewObjectID()
	bystander := primitive.NewObjectID()

	for _, u := range []primitive.ObjectID{victim, bystander} {
		if _, err := store.InsertRefreshToken(ctx, models.RefreshToken{
			TokenHash: "refresh-" + u.Hex(),
			UserID:    u,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}); err != nil {
			t.Fatalf("InsertRefreshToken failed: %v", err)
		}
		if _, err := store.InsertAccessToken(ctx, models.AccessToken{
			TokenHash:      "access-" + u.Hex(),
			UserID:         u,
			RefreshTokenID: primitive.NewObjectID(),
			ExpiresAt:      time.Now().UTC().Add(time.Hour),
		}); err != nil {
			t.Fatalf("InsertAccessToken failed: %v", err)
		}
	}

	n, err := store.DeleteAllForUser(ctx, victim)
	if err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d credentials, want 2", n)
	}

	if _, err := store.FindAccessByHash(ctx, "access-"+bystander.Hex()); err != nil {
		t.Errorf("bystander access token was deleted: %v", err)
	}
	if _, err := store.FindRefreshByHash(ctx, "refresh-"+bystander.Hex()); err != nil {
		t.Errorf("bystander refresh token was deleted: %v", err)
	}
}
