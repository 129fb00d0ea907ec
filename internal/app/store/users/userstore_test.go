package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/averymorin/tenantkit/internal/app/store/users"
	"github.com/averymorin/tenantkit/internal/app/system/indexes"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/averymorin/tenantkit/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email:      "  Alice@Example.COM ",
		Name:       "Alice Smith",
		AuthMethod: models.AuthMethodPassword,
	}, "hunter2hunter2")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.EmailCI == "" {
		t.Error("expected EmailCI to be set")
	}
	if created.PasswordHash == "" || created.PasswordHash == "hunter2hunter2" {
		t.Error("password was not hashed")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Email: "dup@example.com", Name: "First"}, "password123"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Case only differs; the email_ci unique index still rejects it.
	_, err := store.Create(ctx, models.User{Email: "DUP@example.com", Name: "Second"}, "password123")
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Email: "bob@example.com", Name: "Bob"}, "password123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Lookup is case-insensitive.
	got, err := store.GetByEmail(ctx, "BOB@Example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got user %v, want %v", got.ID, created.ID)
	}
}

func TestStore_CheckPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Email: "carol@example.com", Name: "Carol"}, "correct-horse")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !store.CheckPassword(&created, "correct-horse") {
		t.Error("correct password rejected")
	}
	if store.CheckPassword(&created, "wrong-password") {
		t.Error("wrong password accepted")
	}

	// A user without a password hash (OAuth account) never passes.
	oauthUser, err := store.Create(ctx, models.User{Email: "dave@example.com", Name: "Dave", AuthMethod: models.AuthMethodGoogle}, "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if store.CheckPassword(&oauthUser, "") {
		t.Error("empty password accepted for passwordless account")
	}
}

func TestStore_ActiveOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Email: "erin@example.com", Name: "Erin"}, "password123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	orgID := primitive.NewObjectID()

	if err := store.SetActiveOrganization(ctx, u.ID, orgID); err != nil {
		t.Fatalf("SetActiveOrganization failed: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ActiveOrganizationID == nil || *got.ActiveOrganizationID != orgID {
		t.Errorf("active org = %v, want %v", got.ActiveOrganizationID, orgID)
	}

	users, err := store.ListByActiveOrganization(ctx, orgID)
	if err != nil {
		t.Fatalf("ListByActiveOrganization failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != u.ID {
		t.Errorf("listed %d users, want the one pointing at the org", len(users))
	}

	if err := store.ClearActiveOrganization(ctx, u.ID); err != nil {
		t.Fatalf("ClearActiveOrganization failed: %v", err)
	}
	got, err = store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ActiveOrganizationID != nil {
		t.Errorf("active org = %v after clear, want nil", got.ActiveOrganizationID)
	}
}
