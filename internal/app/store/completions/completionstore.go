// internal/app/store/completions/completionstore.go
package completionstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

// Store tracks which tasks a user has completed in which scope.
// Completion is terminal: there is no unmark.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("completions")}
}

// MarkComplete records that the user found the task in the scope.
// Marking an already-completed task is a no-op: the unique index on
// (scope_key, user_id, task_ci) turns the duplicate insert into
// success, which is what makes retries and racing submissions safe.
func (s *Store) MarkComplete(ctx context.Context, sc scope.Scope, userID primitive.ObjectID, task string) error {
	doc := models.Completion{
		ID:        primitive.NewObjectID(),
		ScopeKey:  sc.Key(),
		UserID:    userID,
		Task:      task,
		TaskCI:    text.Fold(task),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// IsComplete reports whether the user has completed the task in the scope.
func (s *Store) IsComplete(ctx context.Context, sc scope.Scope, userID primitive.ObjectID, task string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"scope_key": sc.Key(),
		"user_id":   userID,
		"task_ci":   text.Fold(task),
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// CompletedSet returns the folded names of every task the user has
// completed in the scope. Callers subtract this from the catalog to
// get the outstanding list.
func (s *Store) CompletedSet(ctx context.Context, sc scope.Scope, userID primitive.ObjectID) (map[string]struct{}, error) {
	cur, err := s.c.Find(ctx, bson.M{"scope_key": sc.Key(), "user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	set := make(map[string]struct{})
	for cur.Next(ctx) {
		var c models.Completion
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		set[c.TaskCI] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return set, nil
}
