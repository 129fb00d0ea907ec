package session_test

import (
	"errors"
	"testing"
	"time"

	credentialstore "github.com/averymorin/tenantkit/internal/app/store/credentials"
	"github.com/averymorin/tenantkit/internal/app/system/session"
	"github.com/averymorin/tenantkit/internal/app/system/tokens"
	"github.com/averymorin/tenantkit/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *session.Manager {
	t.Helper()
	db := testutil.SetupTestDB(t)
	codec, err := tokens.NewCodec("test-signing-key-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return session.NewManager(codec, credentialstore.New(db), 10*time.Minute, 8*time.Hour, zap.NewNop())
}

func TestManager_IssueAndValidate(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	userID := primitive.NewObjectID()

	pair, err := m.IssuePair(ctx, userID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("issued pair has empty tokens")
	}
	if !pair.AccessExpiresAt.Before(pair.RefreshExpiresAt) {
		t.Error("access token outlives its refresh token")
	}

	access, err := m.ValidateAccess(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if access.UserID != userID {
		t.Errorf("user = %v, want %v", access.UserID, userID)
	}

	refresh, err := m.ValidateRefresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("ValidateRefresh failed: %v", err)
	}
	if refresh.UserID != userID {
		t.Errorf("refresh user = %v, want %v", refresh.UserID, userID)
	}
}

func TestManager_ValidateAccess_Garbage(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.ValidateAccess(ctx, raw); !errors.Is(err, session.ErrInvalidCredential) {
			t.Errorf("ValidateAccess(%q) err = %v, want ErrInvalidCredential", raw, err)
		}
	}
}

func TestManager_Rotate(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	userID := primitive.NewObjectID()

	old, err := m.IssuePair(ctx, userID)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	fresh, err := m.Rotate(ctx, old.RefreshToken)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if fresh.RefreshToken == old.RefreshToken {
		t.Error("rotation returned the same refresh token")
	}

	// The presented refresh token was consumed; replaying it fails.
	if _, err := m.Rotate(ctx, old.RefreshToken); !errors.Is(err, session.ErrInvalidCredential) {
		t.Errorf("replay err = %v, want ErrInvalidCredential", err)
	}

	// Rotation consumes only the refresh token. The old access token keeps
	// working until its own expiry.
	if _, err := m.ValidateAccess(ctx, old.AccessToken); err != nil {
		t.Errorf("old access rejected after rotation: %v", err)
	}

	// The fresh pair works.
	if _, err := m.ValidateAccess(ctx, fresh.AccessToken); err != nil {
		t.Errorf("fresh access rejected: %v", err)
	}
}

func TestManager_RevokeRefresh(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pair, err := m.IssuePair(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	if err := m.RevokeRefresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("RevokeRefresh failed: %v", err)
	}
	if _, err := m.ValidateRefresh(ctx, pair.RefreshToken); !errors.Is(err, session.ErrInvalidCredential) {
		t.Errorf("revoked refresh err = %v, want ErrInvalidCredential", err)
	}
	if _, err := m.ValidateAccess(ctx, pair.AccessToken); !errors.Is(err, session.ErrInvalidCredential) {
		t.Errorf("revoked access err = %v, want ErrInvalidCredential", err)
	}

	// Revoking an already-dead token is not an error.
	if err := m.RevokeRefresh(ctx, pair.RefreshToken); err != nil {
		t.Errorf("second RevokeRefresh: %v", err)
	}
}

func TestManager_RevokeAllForUser(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	victim := primitive.NewObjectID()
	bystander := primitive.NewObjectID()

	victimPairA, err := m.IssuePair(ctx, victim)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	victimPairB, err := m.IssuePair(ctx, victim)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	bystanderPair, err := m.IssuePair(ctx, bystander)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	if err := m.RevokeAllForUser(ctx, victim); err != nil {
		t.Fatalf("RevokeAllForUser failed: %v", err)
	}

	for _, raw := range []string{victimPairA.AccessToken, victimPairB.AccessToken} {
		if _, err := m.ValidateAccess(ctx, raw); !errors.Is(err, session.ErrInvalidCredential) {
			t.Errorf("victim access still valid: %v", err)
		}
	}
	if _, err := m.ValidateAccess(ctx, bystanderPair.AccessToken); err != nil {
		t.Errorf("bystander access rejected: %v", err)
	}
}
