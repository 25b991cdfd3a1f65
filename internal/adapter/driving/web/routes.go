package web

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all web GUI routes on the provided router.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(r chi.Router, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	r.Get("/", h.SignIn)

	r.Route("/auth/github", func(r chi.Router) {
		r.Get("/login", h.Login)
		r.Get("/callback", h.Callback)
	})
	r.Post("/auth/signout", h.SignOut)

	r.Get("/profile", h.Profile)
	r.Post("/profile/repos/{id}/toggle", h.Toggle)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)
}
