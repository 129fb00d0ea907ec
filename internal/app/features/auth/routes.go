// internal/app/features/auth/routes.go
package auth

import (
	authmw "github.com/averymorin/tenantkit/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the credential endpoints; mounted under /auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.HandleSignUp)
	r.Post("/signin", h.HandleSignIn)
	r.Post("/refresh", h.HandleRefresh)
	r.Post("/signout", h.HandleSignOut)

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.RequireSignedIn)
		pr.Post("/signout_all", h.HandleSignOutAll)
		pr.Get("/me", h.HandleMe)
	})

	return r
}
