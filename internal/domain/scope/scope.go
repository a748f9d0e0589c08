// internal/domain/scope/scope.go

// Package scope identifies the context a task or score is evaluated
// in: either the single global hunt or one specific group. Completions
// and scores are keyed by the scope's Key(), so both scopings share
// one schema instead of the two divergent ones the mobile clients
// used to write.
package scope

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const globalKey = "global"

const groupPrefix = "group:"

// Scope is an immutable value; the zero value is the global scope.
type Scope struct {
	groupID *primitive.ObjectID
}

// Global returns the cross-group scope.
func Global() Scope {
	return Scope{}
}

// Group returns the scope of one group.
func Group(id primitive.ObjectID) Scope {
	return Scope{groupID: &id}
}

// IsGlobal reports whether s is the global scope.
func (s Scope) IsGlobal() bool {
	return s.groupID == nil
}

// GroupID returns the group this scope belongs to, if any.
func (s Scope) GroupID() (primitive.ObjectID, bool) {
	if s.groupID == nil {
		return primitive.NilObjectID, false
	}
	return *s.groupID, true
}

// Key returns the composite key stored on completions and scores:
// "global" or "group:<hex id>".
func (s Scope) Key() string {
	if s.groupID == nil {
		return globalKey
	}
	return groupPrefix + s.groupID.Hex()
}

// Parse converts a stored key back into a Scope.
func Parse(key string) (Scope, error) {
	if key == globalKey {
		return Global(), nil
	}
	if rest, ok := strings.CutPrefix(key, groupPrefix); ok {
		id, err := primitive.ObjectIDFromHex(rest)
		if err != nil {
			return Scope{}, fmt.Errorf("scope: bad group id in key %q: %w", key, err)
		}
		return Group(id), nil
	}
	return Scope{}, fmt.Errorf("scope: unrecognized key %q", key)
}

func (s Scope) String() string {
	return s.Key()
}
