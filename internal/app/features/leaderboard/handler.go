// internal/app/features/leaderboard/handler.go
package leaderboard

import (
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	lbquery "github.com/trazilica/server/internal/app/store/queries/leaderboard"
	"github.com/trazilica/server/internal/app/system/httpjson"
	"github.com/trazilica/server/internal/domain/scope"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type response struct {
	Scope       string        `json:"scope"`
	Leaderboard []lbquery.Row `json:"leaderboard"`
}

// Serve handles GET /leaderboard: the global board, visible to every
// signed-in user.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	rows, err := lbquery.List(r.Context(), h.DB, scope.Global())
	if err != nil {
		h.Log.Error("leaderboard: query failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load leaderboard")
		return
	}
	if rows == nil {
		rows = []lbquery.Row{}
	}
	httpjson.Write(w, http.StatusOK, response{Scope: scope.Global().Key(), Leaderboard: rows})
}
