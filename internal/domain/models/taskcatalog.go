// internal/domain/models/taskcatalog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskEntry is a single object name in a catalog. NameCI holds the
// folded form used for set semantics and matching.
type TaskEntry struct {
	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"name_ci"`
}

// TaskCatalog is the ordered list of object names registered for one
// scope. There is exactly one catalog document per scope key ("global"
// or "group:<id>"); order is append order and is preserved everywhere
// the catalog is shown or matched against.
type TaskCatalog struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ScopeKey string             `bson:"scope_key" json:"scope_key"`
	Tasks    []TaskEntry        `bson:"tasks" json:"tasks"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
