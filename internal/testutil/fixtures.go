// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	completionstore "github.com/trazilica/server/internal/app/store/completions"
	groupstore "github.com/trazilica/server/internal/app/store/groups"
	membershipstore "github.com/trazilica/server/internal/app/store/memberships"
	scorestore "github.com/trazilica/server/internal/app/store/scores"
	taskstore "github.com/trazilica/server/internal/app/store/tasks"
	userstore "github.com/trazilica/server/internal/app/store/users"
	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

// Fixtures creates commonly needed documents through the real stores,
// so test data goes through the same normalization and uniqueness
// rules as production data.
type Fixtures struct {
	t           *testing.T
	Users       *userstore.Store
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Tasks       *taskstore.Store
	Scores      *scorestore.Store
	Completions *completionstore.Store
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{
		t:           t,
		Users:       userstore.New(db),
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
		Tasks:       taskstore.New(db),
		Scores:      scorestore.New(db),
		Completions: completionstore.New(db),
	}
}

// CreateTeacher inserts a teacher with a throwaway password hash.
func (f *Fixtures) CreateTeacher(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	u, err := f.Users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefix",
		Role:         models.RoleTeacher,
	})
	if err != nil {
		f.t.Fatalf("fixture: create teacher %q: %v", email, err)
	}
	return u
}

// CreateStudent inserts a student with a zero global score row, the
// same shape registration produces.
func (f *Fixtures) CreateStudent(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	u, err := f.Users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefix",
		Role:         models.RoleStudent,
	})
	if err != nil {
		f.t.Fatalf("fixture: create student %q: %v", email, err)
	}
	if err := f.Scores.EnsureZero(ctx, scope.Global(), u.ID); err != nil {
		f.t.Fatalf("fixture: ensure global score for %q: %v", email, err)
	}
	return u
}

// CreateGroup inserts a group plus the teacher's own membership.
func (f *Fixtures) CreateGroup(ctx context.Context, teacher models.User, tag string) models.Group {
	f.t.Helper()
	g, err := f.Groups.Create(ctx, models.Group{Tag: tag, TeacherID: teacher.ID})
	if err != nil {
		f.t.Fatalf("fixture: create group %q: %v", tag, err)
	}
	if _, err := f.Memberships.Add(ctx, models.GroupMembership{
		GroupID: g.ID,
		UserID:  teacher.ID,
		Role:    models.RoleTeacher,
	}); err != nil {
		f.t.Fatalf("fixture: teacher membership for %q: %v", tag, err)
	}
	return g
}

// JoinGroup adds a student membership plus the zero score row, the
// same shape the join endpoint produces.
func (f *Fixtures) JoinGroup(ctx context.Context, student models.User, g models.Group) {
	f.t.Helper()
	if _, err := f.Memberships.Add(ctx, models.GroupMembership{
		GroupID: g.ID,
		UserID:  student.ID,
		Role:    models.RoleStudent,
	}); err != nil {
		f.t.Fatalf("fixture: join group %q: %v", g.Tag, err)
	}
	if err := f.Scores.EnsureZero(ctx, scope.Group(g.ID), student.ID); err != nil {
		f.t.Fatalf("fixture: ensure group score: %v", err)
	}
}

// AddTasks appends tasks to the scope's catalog in order.
func (f *Fixtures) AddTasks(ctx context.Context, sc scope.Scope, names ...string) {
	f.t.Helper()
	for _, n := range names {
		if _, err := f.Tasks.AddTask(ctx, sc, n); err != nil {
			f.t.Fatalf("fixture: add task %q: %v", n, err)
		}
	}
}
