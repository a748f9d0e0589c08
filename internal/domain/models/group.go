// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group represents a hunting group a teacher runs.
//
// NOTE:
//   - Member lists are not embedded on Group.
//     All membership is stored in the group_memberships collection.
//   - Tag uniqueness is case-insensitive, enforced by a unique index
//     on tag_ci rather than by scanning existing groups.
type Group struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Tag       string             `bson:"tag" json:"tag"`
	TagCI     string             `bson:"tag_ci" json:"tag_ci"`
	TeacherID primitive.ObjectID `bson:"teacher_id" json:"teacher_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
