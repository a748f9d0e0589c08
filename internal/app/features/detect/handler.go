// internal/app/features/detect/handler.go

// Package detect is the photo-submission flow. Students upload a
// photo, the vision service labels it, and the scoring reconciler
// turns a label match into points. Teachers use the same endpoint in
// preview mode: they get the raw label list back and can register one
// as a task.
package detect

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/trazilica/server/internal/app/scoring"
	"github.com/trazilica/server/internal/app/services/vision"
	groupstore "github.com/trazilica/server/internal/app/store/groups"
	membershipstore "github.com/trazilica/server/internal/app/store/memberships"
	taskstore "github.com/trazilica/server/internal/app/store/tasks"
	"github.com/trazilica/server/internal/app/system/authz"
	"github.com/trazilica/server/internal/app/system/httpjson"
	"github.com/trazilica/server/internal/app/system/normalize"
	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

const (
	maxPhotoBytes = 10 << 20

	// Students get a tight label list so only confident recognitions
	// can score; teachers get a wider list to pick task names from.
	studentMaxLabels = 3
	teacherMaxLabels = 5
)

// Labeler is the part of the vision client this feature uses; tests
// substitute a fake.
type Labeler interface {
	DetectLabels(ctx context.Context, image []byte, maxResults int) ([]vision.Label, error)
}

type Handler struct {
	Vision      Labeler
	Rec         *scoring.Reconciler
	Tasks       *taskstore.Store
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, v Labeler, rec *scoring.Reconciler, logger *zap.Logger) *Handler {
	return &Handler{
		Vision:      v,
		Rec:         rec,
		Tasks:       taskstore.New(db),
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
		Log:         logger,
	}
}

type studentResponse struct {
	Labels []string `json:"labels"`
	scoring.MatchResult
}

type teacherResponse struct {
	Labels []vision.Label `json:"labels"`
}

type addLabelRequest struct {
	Name    string `json:"name"`
	GroupID string `json:"group_id,omitempty"`
}

// HandleDetect handles POST /detect: a multipart form with a "photo"
// file and an optional "group_id" field selecting the scope.
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "expected a multipart form with a photo")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "photo file is required")
		return
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "could not read photo")
		return
	}

	sc, ok := h.resolveScope(w, r, userID)
	if !ok {
		return
	}

	maxLabels := studentMaxLabels
	if role == models.RoleTeacher {
		maxLabels = teacherMaxLabels
	}

	labels, err := h.Vision.DetectLabels(r.Context(), image, maxLabels)
	if errors.Is(err, vision.ErrNoLabels) {
		httpjson.Error(w, http.StatusUnprocessableEntity, httpjson.CodeClassificationFailure, "nothing recognizable in the photo")
		return
	}
	if err != nil {
		h.Log.Error("detect: classification failed", zap.Error(err))
		httpjson.Error(w, http.StatusBadGateway, httpjson.CodeClassificationFailure, "photo classification failed")
		return
	}

	// Teachers are previewing, not playing.
	if role == models.RoleTeacher {
		httpjson.Write(w, http.StatusOK, teacherResponse{Labels: labels})
		return
	}

	result, err := h.Rec.AttemptMatch(r.Context(), sc, userID, vision.Descriptions(labels))
	if err != nil {
		h.Log.Error("detect: match failed", zap.String("scope", sc.Key()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not score the photo")
		return
	}

	httpjson.Write(w, http.StatusOK, studentResponse{
		Labels:      vision.Descriptions(labels),
		MatchResult: result,
	})
}

// HandleAddLabel handles POST /detect/labels: a teacher registers a
// label from a preview as a task, globally or in one of their groups.
func (h *Handler) HandleAddLabel(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
		return
	}
	if role != models.RoleTeacher {
		httpjson.Error(w, http.StatusForbidden, httpjson.CodeForbidden, "only teachers can register tasks")
		return
	}

	var req addLabelRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, err.Error())
		return
	}
	name := normalize.TaskName(req.Name)
	if name == "" {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "task name is required")
		return
	}

	sc := scope.Global()
	if req.GroupID != "" {
		id, err := primitive.ObjectIDFromHex(req.GroupID)
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
			h.Log.Error("detect: load group failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load group")
			return
		}
		if group.TeacherID != userID {
			httpjson.Error(w, http.StatusForbidden, httpjson.CodeForbidden, "only the group's teacher can do this")
			return
		}
		sc = scope.Group(group.ID)
	}

	added, err := h.Tasks.AddTask(r.Context(), sc, name)
	if err != nil {
		h.Log.Error("detect: add task failed", zap.String("scope", sc.Key()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not add task")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"added": added,
		"task":  name,
		"scope": sc.Key(),
	})
}

// resolveScope reads the optional group_id form field and verifies the
// caller belongs to the group.
func (h *Handler) resolveScope(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) (scope.Scope, bool) {
	raw := r.FormValue("group_id")
	if raw == "" {
		return scope.Global(), true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "invalid group id")
		return scope.Scope{}, false
	}
	group, err := h.Groups.GetByID(r.Context(), id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "group not found")
		return scope.Scope{}, false
	}
	if err != nil {
		h.Log.Error("detect: load group failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load group")
		return scope.Scope{}, false
	}
	member, err := h.Memberships.Exists(r.Context(), userID, group.ID)
	if err != nil {
		h.Log.Error("detect: membership check failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not load group")
		return scope.Scope{}, false
	}
	if !member {
		httpjson.Error(w, http.StatusForbidden, httpjson.CodeForbidden, "not a member of this group")
		return scope.Scope{}, false
	}
	return scope.Group(group.ID), true
}
