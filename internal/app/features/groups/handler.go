// internal/app/features/groups/handler.go
package groups

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	groupstore "github.com/trazilica/server/internal/app/store/groups"
	membershipstore "github.com/trazilica/server/internal/app/store/memberships"
	"github.com/trazilica/server/internal/app/store/queries/leaderboard"
	scorestore "github.com/trazilica/server/internal/app/store/scores"
	"github.com/trazilica/server/internal/app/system/authz"
	"github.com/trazilica/server/internal/app/system/httpjson"
	"github.com/trazilica/server/internal/app/system/normalize"
	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

type Handler struct {
	DB          *mongo.Database
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Scores      *scorestore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
		Scores:      scorestore.New(db),
		Log:         logger,
	}
}

type createGroupRequest struct {
	Tag string `json:"tag"`
}

type joinGroupRequest struct {
	Tag string `json:"tag"`
}

type groupResponse struct {
	Group models.Group `json:"group"`
}

type groupListResponse struct {
	Groups []models.Group `json:"groups"`
}

type leaderboardResponse struct {
	Scope       string            `json:"scope"`
	Leaderboard []leaderboard.Row `json:"leaderboard"`
}

// HandleCreate handles POST /groups (teacher only, enforced in routes).
// The creating teacher becomes a member immediately so the group shows
// up in their own group list.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return
	}

	var req createGroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, err.Error())
		return
	}
	tag := normalize.GroupTag(req.Tag)
	if tag == "" {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "group tag is required")
		return
	}

	group, err := h.Groups.Create(r.Context(), models.Group{Tag: tag, TeacherID: userID})
	if errors.Is(err, groupstore.ErrDuplicateTag) {
		httpjson.Error(w, http.StatusConflict, httpjson.CodeDuplicateTag, "a group with this tag already exists")
		return
	}
	if err != nil {
		h.Log.Error("groups: create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not create group")
		return
	}

	if _, err := h.Memberships.Add(r.Context(), models.GroupMembership{
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.RoleTeacher,
	}); err != nil {
		h.Log.Error("groups: teacher membership failed",
			zap.String("group_id", group.ID.Hex()), zap.Error(err))
	}

	h.Log.Info("group created",
		zap.String("group_id", group.ID.Hex()),
		zap.String("tag", group.Tag))

	httpjson.Write(w, http.StatusCreated, groupResponse{Group: group})
}

// HandleJoin handles POST /groups/join: look the group up by tag
// (case-insensitive), add the membership, seed the member's group
// score at zero.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return
	}

	var req joinGroupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, err.Error())
		return
	}
	tag := normalize.GroupTag(req.Tag)
	if tag == "" {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "group tag is required")
		return
	}

	group, err := h.Groups.GetByTag(r.Context(), tag)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "no group with this tag")
		return
	}
	if err != nil {
		h.Log.Error("groups: lookup by tag failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not join group")
		return
	}

	if _, err := h.Memberships.Add(r.Context(), models.GroupMembership{
		GroupID: group.ID,
		UserID:  userID,
		Role:    role,
	}); err != nil {
		if errors.Is(err, membershipstore.ErrAlreadyMember) {
			httpjson.Error(w, http.StatusConflict, httpjson.CodeAlreadyMember, "already a member of this group")
			return
		}
		h.Log.Error("groups: join failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not join group")
		return
	}

	// Members start on the group board at zero. A returning member
	// never reaches this point (AlreadyMember above), so earned points
	// are safe.
	if err := h.Scores.EnsureZero(r.Context(), scope.Group(group.ID), userID); err != nil {
		h.Log.Error("groups: ensure group score failed",
			zap.String("group_id", group.ID.Hex()), zap.Error(err))
	}

	h.Log.Info("group joined",
		zap.String("group_id", group.ID.Hex()),
		zap.String("user_id", userID.Hex()))

	httpjson.Write(w, http.StatusOK, groupResponse{Group: group})
}

// ServeMine handles GET /groups: the groups the caller belongs to.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return
	}

	memberships, err := h.Memberships.ListByUser(r.Context(), userID)
	if err != nil {
		h.Log.Error("groups: list memberships failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load groups")
		return
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.GroupID)
	}
	groups, err := h.Groups.GetByIDs(r.Context(), ids)
	if err != nil {
		h.Log.Error("groups: load groups failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load groups")
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	httpjson.Write(w, http.StatusOK, groupListResponse{Groups: groups})
}

// ServeLeaderboard handles GET /groups/{groupID}/leaderboard. Members only.
func (h *Handler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "invalid group id")
		return
	}
	group, err := h.Groups.GetByID(r.Context(), id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "group not found")
		return
	}
	if err != nil {
		h.Log.Error("groups: load group failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load group")
		return
	}

	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return
	}
	member, err := h.Memberships.Exists(r.Context(), userID, group.ID)
	if err != nil {
		h.Log.Error("groups: membership check failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load leaderboard")
		return
	}
	if !member {
		httpjson.Error(w, http.StatusForbidden, httpjson.CodeForbidden, "not a member of this group")
		return
	}

	sc := scope.Group(group.ID)
	rows, err := leaderboard.List(r.Context(), h.DB, sc)
	if err != nil {
		h.Log.Error("groups: leaderboard failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load leaderboard")
		return
	}
	if rows == nil {
		rows = []leaderboard.Row{}
	}
	httpjson.Write(w, http.StatusOK, leaderboardResponse{Scope: sc.Key(), Leaderboard: rows})
}
