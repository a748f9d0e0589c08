package taskstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	taskstore "github.com/trazilica/server/internal/app/store/tasks"
	"github.com/trazilica/server/internal/domain/scope"
	"github.com/trazilica/server/internal/testutil"
)

func TestStore_AddTask_And_ListTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	added, err := store.AddTask(ctx, scope.Global(), "Pen")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if !added {
		t.Error("expected first AddTask to report added")
	}

	if _, err := store.AddTask(ctx, scope.Global(), "Bottle"); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if _, err := store.AddTask(ctx, scope.Global(), "Chair"); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	tasks, err := store.ListTasks(ctx, scope.Global())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	want := []string{"Pen", "Bottle", "Chair"}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	// Append order is preserved.
	for i, w := range want {
		if tasks[i].Name != w {
			t.Errorf("task[%d]: got %q, want %q", i, tasks[i].Name, w)
		}
	}
}

func TestStore_AddTask_DuplicateIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.AddTask(ctx, scope.Global(), "Cup"); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	// Same name, different casing: still a duplicate, still a no-op.
	added, err := store.AddTask(ctx, scope.Global(), "CUP")
	if err != nil {
		t.Fatalf("duplicate AddTask failed: %v", err)
	}
	if added {
		t.Error("expected duplicate AddTask to report not added")
	}

	tasks, err := store.ListTasks(ctx, scope.Global())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("expected 1 task, got %d", len(tasks))
	}
}

func TestStore_ScopesAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupScope := scope.Group(primitive.NewObjectID())

	if _, err := store.AddTask(ctx, scope.Global(), "Pen"); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if _, err := store.AddTask(ctx, groupScope, "Leaf"); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	global, err := store.ListTasks(ctx, scope.Global())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(global) != 1 || global[0].Name != "Pen" {
		t.Errorf("global catalog: got %v", global)
	}

	group, err := store.ListTasks(ctx, groupScope)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(group) != 1 || group[0].Name != "Leaf" {
		t.Errorf("group catalog: got %v", group)
	}
}

func TestStore_ListTasks_EmptyScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tasks, err := store.ListTasks(ctx, scope.Group(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}
}
