package oauthstate_test

import (
	"testing"
	"time"

	"github.com/averymorin/tenantkit/internal/app/store/oauthstate"
	"github.com/averymorin/tenantkit/internal/testutil"
)

func TestStore_SaveAndValidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expires := time.Now().UTC().Add(10 * time.Minute)
	if err := store.Save(ctx, "state-abc", "/orgs", expires); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	returnURL, valid, err := store.Validate(ctx, "state-abc")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Fatal("state reported invalid")
	}
	if returnURL != "/orgs" {
		t.Errorf("returnURL = %q, want %q", returnURL, "/orgs")
	}

	// States are single-use.
	_, valid, err = store.Validate(ctx, "state-abc")
	if err != nil {
		t.Fatalf("second Validate failed: %v", err)
	}
	if valid {
		t.Error("state validated twice")
	}
}

func TestStore_Validate_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "state-old", "", time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, valid, err := store.Validate(ctx, "state-old")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("expired state validated")
	}
}

func TestStore_Validate_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, valid, err := store.Validate(ctx, "never-saved")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("unknown state validated")
	}
}

func TestStore_DeleteExpiredBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "live", "", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "dead", "", time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	n, err := store.DeleteExpiredBefore(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpiredBefore failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}

	_, valid, err := store.Validate(ctx, "live")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Error("live state was swept")
	}
}
