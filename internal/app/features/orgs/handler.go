// internal/app/features/orgs/handler.go
package orgs

import (
	"context"
	"encoding/json"
	"net/http"

	apierrors "github.com/averymorin/tenantkit/internal/app/features/errors"
	membershipstore "github.com/averymorin/tenantkit/internal/app/store/memberships"
	organizationstore "github.com/averymorin/tenantkit/internal/app/store/organizations"
	"github.com/averymorin/tenantkit/internal/app/system/authz"
	"github.com/averymorin/tenantkit/internal/app/system/inputval"
	"github.com/averymorin/tenantkit/internal/app/system/invites"
	"github.com/averymorin/tenantkit/internal/app/system/orgdirectory"
	"github.com/averymorin/tenantkit/internal/app/system/roster"
	"github.com/averymorin/tenantkit/internal/app/system/timeouts"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the organization endpoints: directory CRUD, membership
// mutations, and the invitation workflow.
type Handler struct {
	Directory *orgdirectory.Service
	Roster    *roster.Engine
	Invites   *invites.Service
	Orgs      *organizationstore.Store
	Members   *membershipstore.Store
	Storage   BlobStore
	Log       *zap.Logger
}

func NewHandler(
	directory *orgdirectory.Service,
	rosterEng *roster.Engine,
	invitesSvc *invites.Service,
	orgs *organizationstore.Store,
	members *membershipstore.Store,
	blobs BlobStore,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Directory: directory,
		Roster:    rosterEng,
		Invites:   invitesSvc,
		Orgs:      orgs,
		Members:   members,
		Storage:   blobs,
		Log:       logger,
	}
}

// orgIDParam parses the {orgID} route parameter. Writes a 400 and returns
// false when malformed.
func orgIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid organization id")
		return primitive.NilObjectID, false
	}
	return id, true
}

type createOrgRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan,omitempty"`
}

type orgResponse struct {
	Organization models.Organization `json:"organization"`
	Role         string              `json:"role,omitempty"`
}

// HandleCreate handles POST /orgs. The caller becomes the owner and the new
// organization becomes their active one.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := inputval.SanitizeName(req.Name)
	if !inputval.IsValidName(name) {
		apierrors.WriteError(w, http.StatusBadRequest, "organization name is required")
		return
	}
	if req.Plan != "" && !models.IsValidPlan(req.Plan) {
		apierrors.WriteError(w, http.StatusBadRequest, "unknown plan")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	org, err := h.Directory.Create(ctx, userID, name, req.Plan)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusCreated, orgResponse{Organization: org, Role: models.RoleOwner})
}

// HandleGet handles GET /orgs/{orgID}. Members only; the response carries
// the caller's role.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, err := h.Roster.Role(ctx, orgID, userID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	org, err := h.Orgs.GetByID(ctx, orgID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, orgResponse{Organization: org, Role: role})
}

// updateOrgRequest is the PATCH body. Absent fields stay untouched. LogoRef
// set to the empty string clears the logo; a non-empty value replaces it.
type updateOrgRequest struct {
	Name    string  `json:"name,omitempty"`
	Slug    string  `json:"slug,omitempty"`
	LogoRef *string `json:"logo_ref,omitempty"`
}

// HandleUpdate handles PATCH /orgs/{orgID}. Owners and admins only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	var req updateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	upd := organizationstore.Update{LogoRef: req.LogoRef}
	if req.Name != "" {
		upd.Name = inputval.SanitizeName(req.Name)
		if !inputval.IsValidName(upd.Name) {
			apierrors.WriteError(w, http.StatusBadRequest, "organization name cannot be empty")
			return
		}
	}
	if req.Slug != "" {
		if !inputval.IsValidSlug(req.Slug) {
			apierrors.WriteError(w, http.StatusBadRequest, "slug may contain only lowercase letters, digits, and hyphens")
			return
		}
		upd.Slug = req.Slug
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Directory.UpdateProfile(ctx, orgID, userID, upd); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	org, err := h.Orgs.GetByID(ctx, orgID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, orgResponse{Organization: org})
}

// HandleDelete handles DELETE /orgs/{orgID}. Owner only; cascades to
// memberships, invitations, the logo blob, and active-organization pointers.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Directory.Delete(ctx, orgID, userID); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSwitchActive handles POST /orgs/{orgID}/switch.
func (h *Handler) HandleSwitchActive(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Directory.SwitchActive(ctx, userID, orgID); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMine handles GET /orgs. Lists the caller's organizations with
// their role in each.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mships, err := h.Members.ListByUser(ctx, userID)
	if err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}

	out := make([]orgResponse, 0, len(mships))
	for _, m := range mships {
		org, err := h.Orgs.GetByID(ctx, m.OrganizationID)
		if err != nil {
			// Membership rows can briefly outlive a deleted org mid-cascade.
			continue
		}
		out = append(out, orgResponse{Organization: org, Role: m.Role})
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string][]orgResponse{"organizations": out})
}
