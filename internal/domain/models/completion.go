// internal/domain/models/completion.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Completion records that a user has found one task in one scope.
// COMPLETED is terminal: rows are never deleted or reset, and the
// unique index on (scope_key, user_id, task_ci) makes marking
// idempotent.
type Completion struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ScopeKey string             `bson:"scope_key" json:"scope_key"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Task     string             `bson:"task" json:"task"`
	TaskCI   string             `bson:"task_ci" json:"task_ci"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
