// internal/app/features/orgs/members.go
package orgs

import (
	"context"
	"encoding/json"
	"net/http"

	apierrors "github.com/averymorin/tenantkit/internal/app/features/errors"
	"github.com/averymorin/tenantkit/internal/app/system/authz"
	"github.com/averymorin/tenantkit/internal/app/system/normalize"
	"github.com/averymorin/tenantkit/internal/app/system/paging"
	"github.com/averymorin/tenantkit/internal/app/system/timeouts"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memberIDParam parses the {userID} route parameter.
func memberIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid user id")
		return primitive.NilObjectID, false
	}
	return id, true
}

type memberPage struct {
	Members    []models.OrgMembership `json:"members"`
	HasPrev    bool                   `json:"has_prev"`
	HasNext    bool                   `json:"has_next"`
	PrevCursor string                 `json:"prev_cursor,omitempty"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// HandleListMembers handles GET /orgs/{orgID}/members. Any member may view
// the roster. Pages are keyset-addressed via ?after= / ?before= cursors and
// may be narrowed with ?role=.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
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

	if _, err := h.Roster.Role(ctx, orgID, userID); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}

	before := query.Get(r, "before")
	after := query.Get(r, "after")
	roleFilter := normalize.Role(query.Get(r, "role"))

	cfg := paging.ConfigureKeyset(before, after)
	mships, err := h.Members.ListByOrgPage(ctx, orgID, roleFilter, cfg)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}

	page := paging.TrimPage(&mships, before, after)
	if cfg.Direction == paging.Backward {
		paging.Reverse(mships)
	}
	prev, next := paging.BuildCursors(mships,
		func(m models.OrgMembership) string { return m.Role },
		func(m models.OrgMembership) primitive.ObjectID { return m.ID })

	resp := memberPage{Members: mships, HasPrev: page.HasPrev, HasNext: page.HasNext}
	if page.HasPrev {
		resp.PrevCursor = prev
	}
	if page.HasNext {
		resp.NextCursor = next
	}
	apierrors.WriteJSON(w, http.StatusOK, resp)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole handles PATCH /orgs/{orgID}/members/{userID}.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	targetID, ok := memberIDParam(w, r)
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Roster.UpdateRole(ctx, orgID, actorID, targetID, normalize.Role(req.Role)); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveMember handles DELETE /orgs/{orgID}/members/{userID}.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	targetID, ok := memberIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Roster.Remove(ctx, orgID, actorID, targetID); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type leaveRequest struct {
	SuccessorID string `json:"successor_id,omitempty"`
}

// HandleLeave handles POST /orgs/{orgID}/leave. A sole owner must name a
// successor in the body.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	var req leaveRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	var successorID *primitive.ObjectID
	if req.SuccessorID != "" {
		id, err := primitive.ObjectIDFromHex(req.SuccessorID)
		if err != nil {
			apierrors.WriteError(w, http.StatusBadRequest, "invalid successor id")
			return
		}
		successorID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Roster.Leave(ctx, orgID, actorID, successorID); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	SuccessorID string `json:"successor_id"`
}

// HandleTransferOwnership handles POST /orgs/{orgID}/transfer. The current
// owner steps down to admin and the successor becomes owner.
func (h *Handler) HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SuccessorID == "" {
		apierrors.WriteError(w, http.StatusBadRequest, "successor_id is required")
		return
	}
	successorID, err := primitive.ObjectIDFromHex(req.SuccessorID)
	if err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid successor id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Roster.TransferOwnership(ctx, orgID, actorID, successorID); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
