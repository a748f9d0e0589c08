// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/go-chi/chi/v5"

	"github.com/trazilica/server/internal/app/system/auth"
	"github.com/trazilica/server/internal/domain/models"
)

// Routes serves the global catalog at /tasks.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/outstanding", h.ServeOutstanding)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleTeacher))
		pr.Post("/", h.HandleAdd)
	})
	return r
}

// GroupRoutes serves the group catalog; mounted at
// /groups/{groupID}/tasks. Group-level access (member vs the group's
// teacher) is checked in the handlers because it depends on the group
// document, not just the role.
func GroupRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeGroupList)
	r.Get("/outstanding", h.ServeGroupOutstanding)
	r.Post("/", h.HandleGroupAdd)
	return r
}
