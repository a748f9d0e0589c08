// internal/domain/models/score.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Score is one leaderboard row: the accumulated points of one user in
// one scope. Rows are created at registration (global) or at group
// join (group scope) with Points 0, and only ever move by atomic $inc.
type Score struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ScopeKey string             `bson:"scope_key" json:"scope_key"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Points   int                `bson:"points" json:"points"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
