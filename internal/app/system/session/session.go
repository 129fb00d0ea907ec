// internal/app/system/session/session.go

// Package session orchestrates the access/refresh token pair lifecycle:
// issuance, validation, single-use rotation, and revocation. Each pair is an
// independent credential; a user holds many pairs concurrently across devices.
package session

import (
	"context"
	"errors"
	"time"

	credentialstore "github.com/averymorin/tenantkit/internal/app/store/credentials"
	"github.com/averymorin/tenantkit/internal/app/system/tokens"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Default credential lifetimes.
const (
	DefaultAccessTTL  = 10 * time.Minute
	DefaultRefreshTTL = 8 * time.Hour
)

// ErrInvalidCredential is the single failure every validation path collapses
// to. Expired, revoked, tampered, and never-issued tokens are indistinguishable
// to callers; the distinction exists only in logs.
var ErrInvalidCredential = errors.New("invalid or expired credential")

// TokenPair carries the raw tokens back to the caller. This is the only time
// the raw values exist outside the client; only hashes are persisted.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Manager issues, validates, rotates, and revokes token pairs.
type Manager struct {
	codec      *tokens.Codec
	creds      *credentialstore.Store
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
}

// NewManager builds a Manager. Non-positive TTLs fall back to the defaults.
// The access TTL must stay below the refresh TTL; it is clamped if not.
func NewManager(codec *tokens.Codec, creds *credentialstore.Store, accessTTL, refreshTTL time.Duration, logger *zap.Logger) *Manager {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if accessTTL >= refreshTTL {
		accessTTL = refreshTTL / 2
	}
	return &Manager{
		codec:      codec,
		creds:      creds,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        logger,
	}
}

// IssuePair creates a refresh token and an access token referencing it. The
// refresh token is an opaque random value (it must stay revocable by hash
// lookup alone); the access token is a signed JWT embedding the refresh
// token's id, so revoking the refresh token invalidates children without
// rewriting them.
func (m *Manager) IssuePair(ctx context.Context, userID primitive.ObjectID) (TokenPair, error) {
	now := time.Now().UTC()

	rawRefresh, err := tokens.GenerateOpaque()
	if err != nil {
		return TokenPair{}, err
	}
	refreshRec, err := m.creds.InsertRefreshToken(ctx, models.RefreshToken{
		TokenHash: tokens.Hash(rawRefresh),
		UserID:    userID,
		ExpiresAt: now.Add(m.refreshTTL),
	})
	if err != nil {
		return TokenPair{}, err
	}

	rawAccess, err := m.codec.SignAccess(userID.Hex(), refreshRec.ID.Hex(), m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	accessRec, err := m.creds.InsertAccessToken(ctx, models.AccessToken{
		TokenHash:      tokens.Hash(rawAccess),
		UserID:         userID,
		RefreshTokenID: refreshRec.ID,
		ExpiresAt:      now.Add(m.accessTTL),
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      rawAccess,
		AccessExpiresAt:  accessRec.ExpiresAt,
		RefreshToken:     rawRefresh,
		RefreshExpiresAt: refreshRec.ExpiresAt,
	}, nil
}

// ValidateAccess checks an access token: signature first (cheap, local), then
// the store lookup that makes server-side revocation effective even while the
// JWT itself would still verify. Expired and absent records fail identically.
func (m *Manager) ValidateAccess(ctx context.Context, raw string) (models.AccessToken, error) {
	if _, err := m.codec.VerifyAccess(raw); err != nil {
		m.log.Debug("access token rejected", zap.Error(err))
		return models.AccessToken{}, ErrInvalidCredential
	}
	rec, err := m.creds.FindAccessByHash(ctx, tokens.Hash(raw))
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return models.AccessToken{}, err
		}
		return models.AccessToken{}, ErrInvalidCredential
	}
	return rec, nil
}

// ValidateRefresh checks a refresh token by hash lookup only; it carries no
// self-contained signature.
func (m *Manager) ValidateRefresh(ctx context.Context, raw string) (models.RefreshToken, error) {
	rec, err := m.creds.FindRefreshByHash(ctx, tokens.Hash(raw))
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return models.RefreshToken{}, err
		}
		return models.RefreshToken{}, ErrInvalidCredential
	}
	return rec, nil
}

// Rotate consumes a refresh token and issues a fresh pair. Consumption is an
// atomic delete, so a replay racing a legitimate rotation loses: the consumed
// token is gone before the new pair exists, with no grace window. A token
// that is already gone (rotated, revoked, expired) fails rather than being
// silently reissued. Access tokens spawned by the consumed refresh token are
// untouched; they ride out their own short expiry.
func (m *Manager) Rotate(ctx context.Context, rawRefresh string) (TokenPair, error) {
	rec, err := m.creds.ConsumeRefreshByHash(ctx, tokens.Hash(rawRefresh))
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return TokenPair{}, err
		}
		return TokenPair{}, ErrInvalidCredential
	}
	return m.IssuePair(ctx, rec.UserID)
}

// RevokeAccess hard-deletes a single access-token record. Idempotent.
func (m *Manager) RevokeAccess(ctx context.Context, raw string) error {
	return m.creds.DeleteAccessByHash(ctx, tokens.Hash(raw))
}

// RevokeRefresh hard-deletes a refresh-token record and every access token it
// spawned (the sign-out path). Idempotent: revoking an absent token is not an
// error.
func (m *Manager) RevokeRefresh(ctx context.Context, raw string) error {
	rec, err := m.creds.FindRefreshByHash(ctx, tokens.Hash(raw))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil
		}
		return err
	}
	if err := m.creds.DeleteRefreshByID(ctx, rec.ID); err != nil {
		return err
	}
	if _, err := m.creds.DeleteAccessByRefreshID(ctx, rec.ID); err != nil {
		return err
	}
	return nil
}

// RevokeAllForUser deletes every credential the user holds, of both kinds
// ("sign out of all devices").
func (m *Manager) RevokeAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	n, err := m.creds.DeleteAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		m.log.Info("revoked all credentials for user",
			zap.String("user_id", userID.Hex()),
			zap.Int64("count", n))
	}
	return nil
}
