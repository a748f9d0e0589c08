// internal/domain/models/findsubmission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FindSubmission is the audit record written for every successful
// match. It keeps the labels the vision service returned alongside the
// task that was credited, so disputed finds can be reviewed later.
type FindSubmission struct {
	ID       string             `bson:"_id" json:"id"` // uuid
	ScopeKey string             `bson:"scope_key" json:"scope_key"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Labels   []string           `bson:"labels" json:"labels"`
	Task     string             `bson:"task" json:"task"`

	// Scores immediately after the find was credited.
	ScopePoints  int `bson:"scope_points" json:"scope_points"`
	GlobalPoints int `bson:"global_points" json:"global_points"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
