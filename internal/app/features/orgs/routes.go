// internal/app/features/orgs/routes.go
package orgs

import (
	authmw "github.com/averymorin/tenantkit/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the organization endpoints; mounted under /orgs. Everything
// here requires a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authmw.RequireSignedIn)

	r.Get("/", h.HandleListMine)
	r.Post("/", h.HandleCreate)

	r.Route("/{orgID}", func(or chi.Router) {
		or.Get("/", h.HandleGet)
		or.Patch("/", h.HandleUpdate)
		or.Delete("/", h.HandleDelete)
		or.Post("/switch", h.HandleSwitchActive)

		or.Post("/logo", h.HandleUploadLogo)
		or.Delete("/logo", h.HandleDeleteLogo)

		or.Get("/members", h.HandleListMembers)
		or.Patch("/members/{userID}", h.HandleUpdateRole)
		or.Delete("/members/{userID}", h.HandleRemoveMember)
		or.Post("/leave", h.HandleLeave)
		or.Post("/transfer", h.HandleTransferOwnership)

		or.Get("/invitations", h.HandleListInvitations)
		or.Post("/invitations", h.HandleInvite)
		or.Post("/invitations/bulk", h.HandleBulkInvite)
		or.Delete("/invitations/{invitationID}", h.HandleRevokeInvitation)
	})

	return r
}

// InvitationRoutes returns the invitation-acceptance endpoint; mounted under
// /invitations so accept links from email land outside the /orgs tree.
func InvitationRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authmw.RequireSignedIn)
	r.Post("/{invitationID}/accept", h.HandleAcceptInvitation)
	return r
}
