// internal/app/store/scores/scorestore.go
package scorestore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

// Store holds leaderboard rows: one (scope, user) pair, one points
// total. Points only ever move through Increment's atomic $inc; there
// is deliberately no Set method, because read-modify-write is exactly
// the lost-update pattern this store exists to prevent.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("scores")}
}

// Increment atomically adds delta to the user's points in the scope
// and returns the resulting total. The row is created on first use, so
// a find can score even if EnsureZero never ran for the pair.
func (s *Store) Increment(ctx context.Context, sc scope.Scope, userID primitive.ObjectID, delta int) (int, error) {
	filter := bson.M{"scope_key": sc.Key(), "user_id": userID}
	update := bson.M{
		"$inc": bson.M{"points": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var row models.Score
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&row); err != nil {
		return 0, err
	}
	return row.Points, nil
}

// EnsureZero creates the (scope, user) row with zero points if it does
// not exist yet, so new users and new members appear on leaderboards
// before their first find. Existing rows are untouched.
func (s *Store) EnsureZero(ctx context.Context, sc scope.Scope, userID primitive.ObjectID) error {
	filter := bson.M{"scope_key": sc.Key(), "user_id": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"points":     0,
			"updated_at": time.Now().UTC(),
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Get returns the user's score row in the scope.
func (s *Store) Get(ctx context.Context, sc scope.Scope, userID primitive.ObjectID) (models.Score, error) {
	var row models.Score
	err := s.c.FindOne(ctx, bson.M{"scope_key": sc.Key(), "user_id": userID}).Decode(&row)
	if err != nil {
		return models.Score{}, err
	}
	return row, nil
}
