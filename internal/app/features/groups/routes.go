// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"

	"github.com/trazilica/server/internal/app/features/tasks"
	"github.com/trazilica/server/internal/app/system/auth"
	"github.com/trazilica/server/internal/domain/models"
)

// Routes mounts everything under /groups, including the group task
// catalog handled by the tasks feature.
func Routes(h *Handler, th *tasks.Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeMine)
		pr.Post("/join", h.HandleJoin)
		pr.Get("/{groupID}/leaderboard", h.ServeLeaderboard)
		pr.Mount("/{groupID}/tasks", tasks.GroupRoutes(th, sm))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleTeacher))
		pr.Post("/", h.HandleCreate)
	})

	return r
}
