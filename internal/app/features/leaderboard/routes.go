// internal/app/features/leaderboard/routes.go
package leaderboard

import (
	"github.com/go-chi/chi/v5"

	"github.com/trazilica/server/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.Serve)
	return r
}
