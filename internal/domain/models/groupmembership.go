// internal/domain/models/groupmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupMembership links a user to a group. Exactly one membership may
// exist per (user, group) pair; the unique index on (user_id, group_id)
// enforces this.
type GroupMembership struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role    string             `bson:"role" json:"role"` // teacher | student

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
