// internal/testutil/http.go
package testutil

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trazilica/server/internal/app/system/auth"
	"github.com/trazilica/server/internal/domain/models"
)

// AsUser injects u into the request context the way the session
// middleware would, so handler tests can skip real sign-in.
func AsUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	})
}

// AsRole injects a synthetic user with the given role, for tests that
// only care about authorization.
func AsRole(r *http.Request, role string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test User",
		Email: "test@example.com",
		Role:  role,
	})
}
