// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

// Store keeps one catalog document per scope, holding that scope's
// ordered task list. Append order is the order tasks are listed and
// the order ties break in matching, so it is never re-sorted.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("task_catalogs")}
}

// AddTask appends name to the scope's catalog unless an entry with the
// same folded form is already present. Returns whether the task was
// added; a duplicate is a no-op, not an error.
//
// The guarded upsert covers three cases in one round trip:
//   - no catalog yet: the upsert inserts it with the task
//   - catalog without the task: the filter matches and $push appends
//   - catalog already has the task: the filter misses, the upsert
//     attempts a second catalog for the scope, and the unique index on
//     scope_key rejects it, which we read as "already present"
func (s *Store) AddTask(ctx context.Context, sc scope.Scope, name string) (bool, error) {
	entry := models.TaskEntry{Name: name, NameCI: text.Fold(name)}
	now := time.Now().UTC()

	filter := bson.M{
		"scope_key":     sc.Key(),
		"tasks.name_ci": bson.M{"$ne": entry.NameCI},
	}
	update := bson.M{
		"$push":        bson.M{"tasks": entry},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	res, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}

// ListTasks returns the scope's catalog in append order. A scope with
// no catalog yet has an empty task list, not an error.
func (s *Store) ListTasks(ctx context.Context, sc scope.Scope) ([]models.TaskEntry, error) {
	var cat models.TaskCatalog
	err := s.c.FindOne(ctx, bson.M{"scope_key": sc.Key()}).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cat.Tasks, nil
}
