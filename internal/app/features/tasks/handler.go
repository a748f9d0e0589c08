// internal/app/features/tasks/handler.go
package tasks

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/trazilica/server/internal/app/scoring"
	groupstore "github.com/trazilica/server/internal/app/store/groups"
	membershipstore "github.com/trazilica/server/internal/app/store/memberships"
	taskstore "github.com/trazilica/server/internal/app/store/tasks"
	"github.com/trazilica/server/internal/app/system/authz"
	"github.com/trazilica/server/internal/app/system/httpjson"
	"github.com/trazilica/server/internal/app/system/normalize"
	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

type Handler struct {
	Tasks       *taskstore.Store
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Rec         *scoring.Reconciler
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, rec *scoring.Reconciler, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks:       taskstore.New(db),
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
		Rec:         rec,
		Log:         logger,
	}
}

type addTaskRequest struct {
	Name string `json:"name"`
}

type taskListResponse struct {
	Tasks []string `json:"tasks"`
}

type outstandingResponse struct {
	Outstanding []string `json:"outstanding"`
}

/* global catalog */

// ServeList handles GET /tasks.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, scope.Global())
}

// HandleAdd handles POST /tasks (teacher only, enforced in routes).
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	h.handleAdd(w, r, scope.Global())
}

// ServeOutstanding handles GET /tasks/outstanding.
func (h *Handler) ServeOutstanding(w http.ResponseWriter, r *http.Request) {
	h.serveOutstanding(w, r, scope.Global())
}

/* group catalog, mounted under /groups/{groupID}/tasks */

// ServeGroupList handles GET /groups/{groupID}/tasks. Members only.
func (h *Handler) ServeGroupList(w http.ResponseWriter, r *http.Request) {
	group, ok := h.requireMember(w, r)
	if !ok {
		return
	}
	h.serveList(w, r, scope.Group(group.ID))
}

// HandleGroupAdd handles POST /groups/{groupID}/tasks. Only the group's
// own teacher may add tasks, not just any teacher.
func (h *Handler) HandleGroupAdd(w http.ResponseWriter, r *http.Request) {
	group, ok := h.requireGroupTeacher(w, r)
	if !ok {
		return
	}
	h.handleAdd(w, r, scope.Group(group.ID))
}

// ServeGroupOutstanding handles GET /groups/{groupID}/tasks/outstanding.
func (h *Handler) ServeGroupOutstanding(w http.ResponseWriter, r *http.Request) {
	group, ok := h.requireMember(w, r)
	if !ok {
		return
	}
	h.serveOutstanding(w, r, scope.Group(group.ID))
}

/* shared scope-generic implementations */

func (h *Handler) serveList(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	entries, err := h.Tasks.ListTasks(r.Context(), sc)
	if err != nil {
		h.Log.Error("tasks: list failed", zap.String("scope", sc.Key()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load tasks")
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	httpjson.Write(w, http.StatusOK, taskListResponse{Tasks: names})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	var req addTaskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, err.Error())
		return
	}
	name := normalize.TaskName(req.Name)
	if name == "" {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "task name is required")
		return
	}

	added, err := h.Tasks.AddTask(r.Context(), sc, name)
	if err != nil {
		h.Log.Error("tasks: add failed", zap.String("scope", sc.Key()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not add task")
		return
	}
	if added {
		h.Log.Info("task added", zap.String("scope", sc.Key()), zap.String("task", name))
	}

	// Adding an existing task is a no-op, and the response reflects
	// the catalog either way.
	h.serveList(w, r, sc)
}

func (h *Handler) serveOutstanding(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return
	}
	names, err := h.Rec.OutstandingNames(r.Context(), sc, userID)
	if err != nil {
		h.Log.Error("tasks: outstanding failed", zap.String("scope", sc.Key()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load tasks")
		return
	}
	httpjson.Write(w, http.StatusOK, outstandingResponse{Outstanding: names})
}

/* group access checks */

func (h *Handler) loadGroup(w http.ResponseWriter, r *http.Request) (models.Group, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "invalid group id")
		return models.Group{}, false
	}
	group, err := h.Groups.GetByID(r.Context(), id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "group not found")
		return models.Group{}, false
	}
	if err != nil {
		h.Log.Error("tasks: load group failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load group")
		return models.Group{}, false
	}
	return group, true
}

func (h *Handler) requireMember(w http.ResponseWriter, r *http.Request) (models.Group, bool) {
	group, ok := h.loadGroup(w, r)
	if !ok {
		return models.Group{}, false
	}
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return models.Group{}, false
	}
	member, err := h.Memberships.Exists(r.Context(), userID, group.ID)
	if err != nil {
		h.Log.Error("tasks: membership check failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load group")
		return models.Group{}, false
	}
	if !member {
		httpjson.Error(w, http.StatusForbidden, httpjson.CodeForbidden, "not a member of this group")
		return models.Group{}, false
	}
	return group, true
}

func (h *Handler) requireGroupTeacher(w http.ResponseWriter, r *http.Request) (models.Group, bool) {
	group, ok := h.loadGroup(w, r)
	if !ok {
		return models.Group{}, false
	}
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return models.Group{}, false
	}
	if role != models.RoleTeacher || group.TeacherID != userID {
		httpjson.Error(w, http.StatusForbidden, httpjson.CodeForbidden, "only the group's teacher can do this")
		return models.Group{}, false
	}
	return group, true
}
