// internal/app/store/finds/findstore.go
package findstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trazilica/server/internal/domain/models"
)

// Store is the audit trail of successful finds.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("find_submissions")}
}

// Record inserts the find. The ID is a UUID rather than an ObjectID so
// it can double as an externally shareable receipt.
func (s *Store) Record(ctx context.Context, f models.FindSubmission) (models.FindSubmission, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.FindSubmission{}, err
	}
	return f, nil
}

// ListByUser returns the user's finds, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.FindSubmission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.FindSubmission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
