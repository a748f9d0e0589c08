package groupstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	groupstore "github.com/trazilica/server/internal/app/store/groups"
	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fixtures.CreateTeacher(ctx, "Prof. Horvat", "horvat@example.com")

	created, err := store.Create(ctx, models.Group{
		Tag:       "Biology 7A",
		TeacherID: teacher.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.TagCI != "biology 7a" {
		t.Errorf("TagCI: got %q, want %q", created.TagCI, "biology 7a")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_DuplicateTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fixtures.CreateTeacher(ctx, "Prof. Horvat", "horvat@example.com")

	if _, err := store.Create(ctx, models.Group{Tag: "Biology 7A", TeacherID: teacher.ID}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Different casing is still the same tag.
	_, err := store.Create(ctx, models.Group{Tag: "biology 7a", TeacherID: teacher.ID})
	if err != groupstore.ErrDuplicateTag {
		t.Errorf("expected ErrDuplicateTag, got %v", err)
	}
}

func TestStore_GetByTag_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teacher := fixtures.CreateTeacher(ctx, "Prof. Horvat", "horvat@example.com")
	created, err := store.Create(ctx, models.Group{Tag: "Chemistry Club", TeacherID: teacher.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByTag(ctx, "CHEMISTRY club")
	if err != nil {
		t.Fatalf("GetByTag failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got group %v, want %v", got.ID, created.ID)
	}

	if _, err := store.GetByTag(ctx, "no such tag"); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestStore_ListByTeacher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateTeacher(ctx, "Teacher A", "a@example.com")
	b := fixtures.CreateTeacher(ctx, "Teacher B", "b@example.com")

	fixtures.CreateGroup(ctx, a, "Group One")
	fixtures.CreateGroup(ctx, a, "Group Two")
	fixtures.CreateGroup(ctx, b, "Group Three")

	groups, err := store.ListByTeacher(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByTeacher failed: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("expected 2 groups, got %d", len(groups))
	}
	for _, g := range groups {
		if g.TeacherID != a.ID {
			t.Errorf("group %q belongs to %v, want %v", g.Tag, g.TeacherID, a.ID)
		}
	}
}
