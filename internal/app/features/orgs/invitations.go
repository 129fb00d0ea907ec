// internal/app/features/orgs/invitations.go
package orgs

import (
	"context"
	"encoding/json"
	"net/http"

	apierrors "github.com/averymorin/tenantkit/internal/app/features/errors"
	"github.com/averymorin/tenantkit/internal/app/system/authz"
	"github.com/averymorin/tenantkit/internal/app/system/normalize"
	"github.com/averymorin/tenantkit/internal/app/system/timeouts"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// invitationIDParam parses the {invitationID} route parameter.
func invitationIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "invitationID"))
	if err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid invitation id")
		return primitive.NilObjectID, false
	}
	return id, true
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleInvite handles POST /orgs/{orgID}/invitations.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	inv, err := h.Invites.Invite(ctx, orgID, actorID, req.Email, normalize.Role(req.Role))
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, map[string]models.Invitation{"invitation": inv})
}

type bulkInviteRequest struct {
	Emails []string `json:"emails"`
	Role   string   `json:"role"`
}

type bulkInviteResult struct {
	Email      string             `json:"email"`
	Invitation *models.Invitation `json:"invitation,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// HandleBulkInvite handles POST /orgs/{orgID}/invitations/bulk. Each address
// succeeds or fails on its own; the response reports both.
func (h *Handler) HandleBulkInvite(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	var req bulkInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Emails) == 0 {
		apierrors.WriteError(w, http.StatusBadRequest, "emails is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	results, err := h.Invites.BulkInvite(ctx, orgID, actorID, req.Emails, normalize.Role(req.Role))
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}

	out := make([]bulkInviteResult, 0, len(results))
	for _, res := range results {
		item := bulkInviteResult{Email: res.Email, Invitation: res.Invitation}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		out = append(out, item)
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string][]bulkInviteResult{"results": out})
}

// HandleListInvitations handles GET /orgs/{orgID}/invitations. Pending,
// unexpired invitations only.
func (h *Handler) HandleListInvitations(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := h.Invites.ListPending(ctx, orgID, actorID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string][]models.Invitation{"invitations": pending})
}

// HandleRevokeInvitation handles DELETE /orgs/{orgID}/invitations/{invitationID}.
func (h *Handler) HandleRevokeInvitation(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	invID, ok := invitationIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Invites.Revoke(ctx, orgID, actorID, invID); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAcceptInvitation handles POST /invitations/{invitationID}/accept.
// The signed-in caller's email must match the invitation.
func (h *Handler) HandleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	invID, ok := invitationIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Invites.Accept(ctx, invID, userID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]models.OrgMembership{"membership": m})
}
