// internal/app/features/detect/routes.go
package detect

import (
	"github.com/go-chi/chi/v5"

	"github.com/trazilica/server/internal/app/system/auth"
	"github.com/trazilica/server/internal/domain/models"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleDetect)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleTeacher))
		pr.Post("/labels", h.HandleAddLabel)
	})
	return r
}
