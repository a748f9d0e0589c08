// internal/app/scoring/reconciler.go
package scoring

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	completionstore "github.com/trazilica/server/internal/app/store/completions"
	findstore "github.com/trazilica/server/internal/app/store/finds"
	scorestore "github.com/trazilica/server/internal/app/store/scores"
	taskstore "github.com/trazilica/server/internal/app/store/tasks"
	"github.com/trazilica/server/internal/app/system/txn"
	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

// DefaultPointsPerFind is the award for one successful find.
const DefaultPointsPerFind = 1

// MatchResult is what a student sees after submitting a photo.
type MatchResult struct {
	Matched bool   `json:"matched"`
	Task    string `json:"task,omitempty"`
	// Points is the user's score in the submitted scope after the
	// find; GlobalPoints the global score. Equal for global-scope
	// finds. Both zero when nothing matched.
	Points       int      `json:"points"`
	GlobalPoints int      `json:"global_points"`
	Outstanding  []string `json:"outstanding"`
}

// Reconciler applies the scoring rules to a labeled submission. The
// score increment and the completion mark commit together through
// txn.Run, so a crash between them cannot award points without
// recording the completion (or the reverse).
type Reconciler struct {
	db          *mongo.Database
	tasks       *taskstore.Store
	completions *completionstore.Store
	scores      *scorestore.Store
	finds       *findstore.Store
	points      int
	log         *zap.Logger
}

func NewReconciler(db *mongo.Database, pointsPerFind int, log *zap.Logger) *Reconciler {
	if pointsPerFind <= 0 {
		pointsPerFind = DefaultPointsPerFind
	}
	return &Reconciler{
		db:          db,
		tasks:       taskstore.New(db),
		completions: completionstore.New(db),
		scores:      scorestore.New(db),
		finds:       findstore.New(db),
		points:      pointsPerFind,
		log:         log,
	}
}

// AttemptMatch checks the labels against the user's outstanding tasks
// in the scope and, on a match, awards points and marks the task
// complete. A group-scope find also credits the global score, so group
// hunts feed the school-wide board.
//
// Re-submitting a photo of an already-found object cannot double
// count: the completed task is no longer outstanding, so SelectMatch
// skips it.
func (r *Reconciler) AttemptMatch(ctx context.Context, sc scope.Scope, userID primitive.ObjectID, labels []string) (MatchResult, error) {
	catalog, err := r.tasks.ListTasks(ctx, sc)
	if err != nil {
		return MatchResult{}, err
	}
	completed, err := r.completions.CompletedSet(ctx, sc, userID)
	if err != nil {
		return MatchResult{}, err
	}
	outstanding := Outstanding(catalog, completed)

	task, ok := SelectMatch(outstanding, labels)
	if !ok {
		return MatchResult{Outstanding: names(outstanding)}, nil
	}

	var scopePoints, globalPoints int
	err = txn.Run(ctx, r.db, r.log, func(ctx context.Context) error {
		scopePoints, err = r.scores.Increment(ctx, sc, userID, r.points)
		if err != nil {
			return err
		}
		globalPoints = scopePoints
		if !sc.IsGlobal() {
			globalPoints, err = r.scores.Increment(ctx, scope.Global(), userID, r.points)
			if err != nil {
				return err
			}
		}
		if err := r.completions.MarkComplete(ctx, sc, userID, task.Name); err != nil {
			return err
		}
		_, err = r.finds.Record(ctx, models.FindSubmission{
			ScopeKey:     sc.Key(),
			UserID:       userID,
			Labels:       labels,
			Task:         task.Name,
			ScopePoints:  scopePoints,
			GlobalPoints: globalPoints,
		})
		return err
	})
	if err != nil {
		return MatchResult{}, err
	}

	r.log.Info("find credited",
		zap.String("scope", sc.Key()),
		zap.String("user_id", userID.Hex()),
		zap.String("task", task.Name),
		zap.Int("scope_points", scopePoints))

	completed[task.NameCI] = struct{}{}
	return MatchResult{
		Matched:      true,
		Task:         task.Name,
		Points:       scopePoints,
		GlobalPoints: globalPoints,
		Outstanding:  names(Outstanding(catalog, completed)),
	}, nil
}

// OutstandingNames returns the user's remaining tasks in the scope, in
// catalog order.
func (r *Reconciler) OutstandingNames(ctx context.Context, sc scope.Scope, userID primitive.ObjectID) ([]string, error) {
	catalog, err := r.tasks.ListTasks(ctx, sc)
	if err != nil {
		return nil, err
	}
	completed, err := r.completions.CompletedSet(ctx, sc, userID)
	if err != nil {
		return nil, err
	}
	return names(Outstanding(catalog, completed)), nil
}

func names(entries []models.TaskEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
