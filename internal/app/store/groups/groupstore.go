// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trazilica/server/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateTag = errors.New("a group with this tag already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// Create inserts a new group. Tag uniqueness is case-insensitive and
// enforced by the unique index on tag_ci, so a race between two
// teachers picking the same tag resolves to exactly one winner.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.TagCI = text.Fold(g.Tag)
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateTag
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetByTag looks a group up by its tag, case-insensitively.
func (s *Store) GetByTag(ctx context.Context, tag string) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"tag_ci": text.Fold(tag)}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ListByTeacher returns the groups a teacher created, oldest first.
func (s *Store) ListByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"teacher_id": teacherID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDs loads many groups at once, for membership listings.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
