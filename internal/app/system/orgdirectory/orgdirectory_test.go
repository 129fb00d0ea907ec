package orgdirectory_test

import (
	"errors"
	"testing"
	"time"

	invitationstore "github.com/averymorin/tenantkit/internal/app/store/invitations"
	membershipstore "github.com/averymorin/tenantkit/internal/app/store/memberships"
	organizationstore "github.com/averymorin/tenantkit/internal/app/store/organizations"
	userstore "github.com/averymorin/tenantkit/internal/app/store/users"
	"github.com/averymorin/tenantkit/internal/app/policy/orgpolicy"
	"github.com/averymorin/tenantkit/internal/app/system/indexes"
	"github.com/averymorin/tenantkit/internal/app/system/orgdirectory"
	"github.com/averymorin/tenantkit/internal/app/system/roster"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/averymorin/tenantkit/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type directoryFixture struct {
	svc     *orgdirectory.Service
	orgs    *organizationstore.Store
	users   *userstore.Store
	members *membershipstore.Store
	blobs   *testutil.FakeBlobStore
	fx      *testutil.Fixtures
}

func newDirectoryFixture(t *testing.T) *directoryFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	orgs := organizationstore.New(db)
	users := userstore.New(db)
	members := membershipstore.New(db)
	invites := invitationstore.New(db)
	blobs := &testutil.FakeBlobStore{}
	log := zap.NewNop()

	return &directoryFixture{
		svc:     orgdirectory.New(orgs, users, members, invites, roster.New(members, log), blobs, log),
		orgs:    orgs,
		users:   users,
		members: members,
		blobs:   blobs,
		fx:      testutil.NewFixtures(t, db),
	}
}

func TestService_Create(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.fx.CreateUser(ctx, "owner@example.com", "Owner")

	org, err := f.svc.Create(ctx, owner.ID, "Acme Corp", models.PlanFree)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if org.Slug != "acme-corp" {
		t.Errorf("slug = %q, want %q", org.Slug, "acme-corp")
	}

	// The creator is seeded as owner.
	m, err := f.members.Get(ctx, org.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if m.Role != models.RoleOwner {
		t.Errorf("creator role = %q, want %q", m.Role, models.RoleOwner)
	}

	// The new org becomes the creator's active one.
	u, err := f.users.GetByID(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.ActiveOrganizationID == nil || *u.ActiveOrganizationID != org.ID {
		t.Error("creator's active organization was not set")
	}
}

func TestService_Create_SlugSuffixes(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.fx.CreateUser(ctx, "owner@example.com", "Owner")

	first, err := f.svc.Create(ctx, owner.ID, "Acme", "")
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := f.svc.Create(ctx, owner.ID, "Acme", "")
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	third, err := f.svc.Create(ctx, owner.ID, "Acme", "")
	if err != nil {
		t.Fatalf("third Create failed: %v", err)
	}

	if first.Slug != "acme" || second.Slug != "acme-2" || third.Slug != "acme-3" {
		t.Errorf("slugs = %q, %q, %q; want acme, acme-2, acme-3", first.Slug, second.Slug, third.Slug)
	}
}

func TestService_Create_BadName(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.fx.CreateUser(ctx, "owner@example.com", "Owner")

	// A name with no sluggable characters cannot produce a slug.
	if _, err := f.svc.Create(ctx, owner.ID, "!!!", ""); !errors.Is(err, orgdirectory.ErrBadName) {
		t.Errorf("err = %v, want ErrBadName", err)
	}
}

func TestService_UpdateProfile(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.fx.CreateUser(ctx, "owner@example.com", "Owner")
	member := f.fx.CreateUser(ctx, "member@example.com", "Member")
	org, err := f.svc.Create(ctx, owner.ID, "Acme", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.fx.CreateMembership(ctx, org.ID, member.ID, models.RoleMember)

	// Members cannot edit the profile.
	err = f.svc.UpdateProfile(ctx, org.ID, member.ID, organizationstore.Update{Name: "Evil"})
	if !errors.Is(err, orgpolicy.ErrNotAuthorized) {
		t.Errorf("member update err = %v, want ErrNotAuthorized", err)
	}

	// Owners can.
	if err := f.svc.UpdateProfile(ctx, org.ID, owner.ID, organizationstore.Update{Name: "Acme Renamed"}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	got, _ := f.orgs.GetByID(ctx, org.ID)
	if got.Name != "Acme Renamed" {
		t.Errorf("name = %q", got.Name)
	}
	// Rename does not silently change the slug.
	if got.Slug != "acme" {
		t.Errorf("slug = %q after rename, want %q", got.Slug, "acme")
	}
}

func TestService_UpdateProfile_SlugTaken(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.fx.CreateUser(ctx, "owner@example.com", "Owner")
	if _, err := f.svc.Create(ctx, owner.ID, "First", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := f.svc.Create(ctx, owner.ID, "Second", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = f.svc.UpdateProfile(ctx, second.ID, owner.ID, organizationstore.Update{Slug: "first"})
	if !errors.Is(err, orgdirectory.ErrSlugTaken) {
		t.Errorf("err = %v, want ErrSlugTaken", err)
	}
}

func TestService_UpdateProfile_LogoReplaceDeletesOldBlob(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.fx.CreateUser(ctx, "owner@example.com", "Owner")
	org, err := f.svc.Create(ctx, owner.ID, "Acme", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	oldRef := "logos/old.png"
	if err := f.svc.UpdateProfile(ctx, org.ID, owner.ID, organizationstore.Update{LogoRef: &oldRef}); err != nil {
		t.Fatalf("set logo failed: %v", err)
	}
	newRef := "logos/new.png"
	if err := f.svc.UpdateProfile(ctx, org.ID, owner.ID, organizationstore.Update{LogoRef: &newRef}); err != nil {
		t.Fatalf("replace logo failed: %v", err)
	}

	if len(f.blobs.Deleted) != 1 || f.blobs.Deleted[0] != "logos/old.png" {
		t.Errorf("deleted blobs = %v, want the old logo only", f.blobs.Deleted)
	}
}

func TestService_Delete(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.fx.CreateUser(ctx, "owner@example.com", "Owner")
	member := f.fx.CreateUser(ctx, "member@example.com", "Member")
	keeper := f.fx.CreateUser(ctx, "keeper@example.com", "Keeper")

	doomed, err := f.svc.Create(ctx, owner.ID, "Doomed", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.fx.CreateMembership(ctx, doomed.ID, member.ID, models.RoleMember)
	f.fx.CreateInvitation(ctx, doomed.ID, owner.ID, "pending@example.com", models.RoleMember, time.Hour)

	// keeper belongs to a second org too; after the delete their active
	// reference should repoint there instead of clearing.
	other, err := f.svc.Create(ctx, keeper.ID, "Other", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.fx.CreateMembership(ctx, doomed.ID, keeper.ID, models.RoleMember)
	if err := f.users.SetActiveOrganization(ctx, keeper.ID, doomed.ID); err != nil {
		t.Fatalf("SetActiveOrganization failed: %v", err)
	}
	if err := f.users.SetActiveOrganization(ctx, member.ID, doomed.ID); err != nil {
		t.Fatalf("SetActiveOrganization failed: %v", err)
	}

	// Only the owner may delete.
	if err := f.svc.Delete(ctx, doomed.ID, member.ID); !errors.Is(err, orgpolicy.ErrNotAuthorized) {
		t.Fatalf("member delete err = %v, want ErrNotAuthorized", err)
	}

	if err := f.svc.Delete(ctx, doomed.ID, owner.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := f.orgs.GetByID(ctx, doomed.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Error("org doc survived the delete")
	}
	if rows, err := f.members.ListByOrg(ctx, doomed.ID, ""); err != nil || len(rows) != 0 {
		t.Errorf("memberships survived: %d rows, err %v", len(rows), err)
	}

	// keeper repoints to their remaining org; member is cleared.
	keeperDoc, _ := f.users.GetByID(ctx, keeper.ID)
	if keeperDoc.ActiveOrganizationID == nil || *keeperDoc.ActiveOrganizationID != other.ID {
		t.Error("keeper's active organization was not repointed")
	}
	memberDoc, _ := f.users.GetByID(ctx, member.ID)
	if memberDoc.ActiveOrganizationID != nil {
		t.Error("member's active organization was not cleared")
	}

	// The freed slug is reusable.
	if _, err := f.svc.Create(ctx, owner.ID, "Doomed", ""); err != nil {
		t.Errorf("slug not freed after delete: %v", err)
	}
}

func TestService_SwitchActive(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.fx.CreateUser(ctx, "owner@example.com", "Owner")
	stranger := f.fx.CreateUser(ctx, "stranger@example.com", "Stranger")
	org, err := f.svc.Create(ctx, owner.ID, "Acme", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := f.svc.SwitchActive(ctx, stranger.ID, org.ID); !errors.Is(err, roster.ErrNotMember) {
		t.Errorf("stranger switch err = %v, want ErrNotMember", err)
	}
	if err := f.svc.SwitchActive(ctx, owner.ID, org.ID); err != nil {
		t.Errorf("SwitchActive failed: %v", err)
	}
}
