// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trazilica/server/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var ErrAlreadyMember = errors.New("user is already a member of this group")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_memberships")}
}

// Add records a membership. The unique index on (user_id, group_id)
// makes a repeat join return ErrAlreadyMember instead of inserting a
// second row.
func (s *Store) Add(ctx context.Context, m models.GroupMembership) (models.GroupMembership, error) {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupMembership{}, ErrAlreadyMember
		}
		return models.GroupMembership{}, err
	}
	return m, nil
}

// Exists reports whether the user belongs to the group.
func (s *Store) Exists(ctx context.Context, userID, groupID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "group_id": groupID}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// ListByUser returns the user's memberships, oldest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupMembership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByGroup returns the group's memberships.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupMembership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
