// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"encoding/json"
	"net/http"

	apierrors "github.com/averymorin/tenantkit/internal/app/features/errors"
	userstore "github.com/averymorin/tenantkit/internal/app/store/users"
	"github.com/averymorin/tenantkit/internal/app/system/authz"
	"github.com/averymorin/tenantkit/internal/app/system/inputval"
	"github.com/averymorin/tenantkit/internal/app/system/normalize"
	"github.com/averymorin/tenantkit/internal/app/system/ratelimit"
	"github.com/averymorin/tenantkit/internal/app/system/session"
	"github.com/averymorin/tenantkit/internal/app/system/timeouts"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MinPasswordLength is the floor for new passwords.
const MinPasswordLength = 8

// Handler serves the credential endpoints: sign-up, sign-in, refresh
// rotation, and the two sign-out flavors.
type Handler struct {
	Users    *userstore.Store
	Sessions *session.Manager
	Limiter  *ratelimit.SignInLimiter
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *session.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Sessions: sessions,
		Limiter:  ratelimit.NewSignInLimiter(),
		Log:      logger,
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authResponse struct {
	User   models.User       `json:"user"`
	Tokens session.TokenPair `json:"tokens"`
}

// HandleSignUp handles POST /auth/signup.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Email = normalize.Email(req.Email)
	if !inputval.IsValidEmail(req.Email) {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < MinPasswordLength {
		apierrors.WriteError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	name := inputval.SanitizeName(req.Name)
	if !inputval.IsValidName(name) {
		apierrors.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Email:      req.Email,
		Name:       name,
		AuthMethod: models.AuthMethodPassword,
	}, req.Password)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}

	pair, err := h.Sessions.IssuePair(ctx, u.ID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()))
	apierrors.WriteJSON(w, http.StatusCreated, authResponse{User: u, Tokens: pair})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignIn handles POST /auth/signin. Unknown email and wrong password
// are indistinguishable to the caller.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, req.Email); !ok {
			apierrors.WriteError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			apierrors.WriteDomainError(w, h.Log, err)
			return
		}
		apierrors.WriteDomainError(w, h.Log, session.ErrInvalidCredential)
		return
	}
	if !h.Users.CheckPassword(u, req.Password) {
		h.Log.Info("sign-in rejected", zap.String("user_id", u.ID.Hex()))
		apierrors.WriteDomainError(w, h.Log, session.ErrInvalidCredential)
		return
	}

	pair, err := h.Sessions.IssuePair(ctx, u.ID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(req.Email)
	}
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))
	apierrors.WriteJSON(w, http.StatusOK, authResponse{User: *u, Tokens: pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh handles POST /auth/refresh. The presented refresh token is
// consumed; a replay of it after this call fails.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		apierrors.WriteError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pair, err := h.Sessions.Rotate(ctx, req.RefreshToken)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]session.TokenPair{"tokens": pair})
}

// HandleSignOut handles POST /auth/signout. Revokes the presented refresh
// token and the access tokens it spawned. Idempotent; signing out an
// already-dead token still returns 204.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		apierrors.WriteError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Sessions.RevokeRefresh(ctx, req.RefreshToken); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSignOutAll handles POST /auth/signout_all. Requires a signed-in user;
// deletes every credential they hold on every device.
func (h *Handler) HandleSignOutAll(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Sessions.RevokeAllForUser(ctx, userID); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /auth/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]*models.User{"user": u})
}
