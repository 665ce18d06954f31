package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/fastygo/tasktracker/domain"
	sqliteinfra "github.com/fastygo/tasktracker/internal/infrastructure/sqlite"
	"github.com/fastygo/tasktracker/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	db, err := sqliteinfra.Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqliteinfra.RunMigrations(path, "", nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func mustUser(t *testing.T, users repository.UserRepository, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, HashedPassword: "hash-" + name}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func mustTask(t *testing.T, tasks repository.TaskRepository, owner *domain.User, title string, desc *string, priority int) domain.Task {
	t.Helper()
	task := &domain.Task{
		Title:       title,
		Description: desc,
		Status:      domain.DefaultTaskStatus,
		Priority:    priority,
		OwnerID:     owner.ID,
	}
	if err := tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return *task
}

func ids(tasks []domain.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUserCreateAndLookup(t *testing.T) {
	users := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	alice := mustUser(t, users, "alice")
	if alice.ID == 0 {
		t.Fatal("expected storage-assigned id")
	}

	got, err := users.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != alice.ID || got.HashedPassword != "hash-alice" {
		t.Fatalf("unexpected user %+v", got)
	}

	if _, err := users.GetByUsername(ctx, "Alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("lookup must be exact, got %v", err)
	}

	err = users.Create(ctx, &domain.User{Username: "alice", HashedPassword: "other"})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatal("duplicate must classify as conflict")
	}
}

func TestTaskCreateAssignsIdentityAndTimestamp(t *testing.T) {
	db := openTestDB(t)
	users, tasks := NewUserRepository(db), NewTaskRepository(db)
	alice := mustUser(t, users, "alice")

	first := mustTask(t, tasks, alice, "Buy milk", nil, 1)
	second := mustTask(t, tasks, alice, "Walk dog", strPtr("evening"), 2)

	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("ids not increasing: %d, %d", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("created_at must be set by storage")
	}

	list, err := tasks.List(context.Background(), repository.TaskFilter{OwnerID: alice.ID, Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Description != nil || list[1].Description == nil || *list[1].Description != "evening" {
		t.Fatalf("unexpected list %+v", list)
	}
	if !list[0].CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed on read: %v vs %v", list[0].CreatedAt, first.CreatedAt)
	}
}

func TestListIsOwnerScoped(t *testing.T) {
	db := openTestDB(t)
	users, tasks := NewUserRepository(db), NewTaskRepository(db)
	alice, bob := mustUser(t, users, "alice"), mustUser(t, users, "bob")
	mustTask(t, tasks, alice, "Buy milk", nil, 1)

	list, err := tasks.List(context.Background(), repository.TaskFilter{OwnerID: bob.ID, Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("bob sees alice's tasks: %+v", list)
	}
}

func TestListSearchIsCaseSensitiveSubstring(t *testing.T) {
	db := openTestDB(t)
	users, tasks := NewUserRepository(db), NewTaskRepository(db)
	alice, bob := mustUser(t, users, "alice"), mustUser(t, users, "bob")

	inTitle := mustTask(t, tasks, alice, "Buy milk", nil, 1)
	mustTask(t, tasks, alice, "buy MILK", nil, 1)
	inDesc := mustTask(t, tasks, alice, "Groceries", strPtr("oat milk"), 1)
	mustTask(t, tasks, alice, "Walk dog", strPtr("park"), 1)
	mustTask(t, tasks, bob, "milk for bob", nil, 1)
	mustTask(t, tasks, alice, "100% done", nil, 1)

	list, err := tasks.List(context.Background(), repository.TaskFilter{OwnerID: alice.ID, Search: "milk", Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{inTitle.ID, inDesc.ID}; !equalIDs(ids(list), want) {
		t.Fatalf("search = %v, want %v", ids(list), want)
	}

	// wildcard characters are matched literally
	list, err = tasks.List(context.Background(), repository.TaskFilter{OwnerID: alice.ID, Search: "%", Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "100% done" {
		t.Fatalf("literal search = %+v", list)
	}
}

func TestListSortBy(t *testing.T) {
	db := openTestDB(t)
	users, tasks := NewUserRepository(db), NewTaskRepository(db)
	alice := mustUser(t, users, "alice")

	c := mustTask(t, tasks, alice, "cherry", nil, 1)
	a := mustTask(t, tasks, alice, "apple", nil, 1)
	b := mustTask(t, tasks, alice, "banana", nil, 1)

	list, err := tasks.List(context.Background(), repository.TaskFilter{OwnerID: alice.ID, SortBy: "title", Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	titles := make([]string, len(list))
	for i, task := range list {
		titles[i] = task.Title
	}
	if !sort.StringsAreSorted(titles) {
		t.Fatalf("titles not sorted: %v", titles)
	}
	if !equalIDs(ids(list), []int64{a.ID, b.ID, c.ID}) {
		t.Fatalf("order = %v", ids(list))
	}

	list, err = tasks.List(context.Background(), repository.TaskFilter{OwnerID: alice.ID, SortBy: "bogus", Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if !equalIDs(ids(list), []int64{c.ID, a.ID, b.ID}) {
		t.Fatalf("unknown sort changed default order: %v", ids(list))
	}

	list, err = tasks.List(context.Background(), repository.TaskFilter{OwnerID: alice.ID, SortBy: "created_at", Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if !equalIDs(ids(list), []int64{c.ID, a.ID, b.ID}) {
		t.Fatalf("created_at order = %v", ids(list))
	}
}

func TestListTopPriority(t *testing.T) {
	db := openTestDB(t)
	users, tasks := NewUserRepository(db), NewTaskRepository(db)
	alice := mustUser(t, users, "alice")

	p1 := mustTask(t, tasks, alice, "d", nil, 1)
	p5a := mustTask(t, tasks, alice, "c", nil, 5)
	p3 := mustTask(t, tasks, alice, "b", nil, 3)
	p5b := mustTask(t, tasks, alice, "a", nil, 5)
	_ = p1

	ctx := context.Background()

	list, err := tasks.List(ctx, repository.TaskFilter{OwnerID: alice.ID, TopPriority: 3, Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{p5a.ID, p5b.ID, p3.ID}; !equalIDs(ids(list), want) {
		t.Fatalf("top priority = %v, want %v", ids(list), want)
	}

	// sort_by replaces the ordering but the cap stays
	list, err = tasks.List(ctx, repository.TaskFilter{OwnerID: alice.ID, TopPriority: 2, SortBy: "title", Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{p5b.ID, p5a.ID}; !equalIDs(ids(list), want) {
		t.Fatalf("top priority + sort = %v, want %v", ids(list), want)
	}

	// pagination runs inside the capped set
	list, err = tasks.List(ctx, repository.TaskFilter{OwnerID: alice.ID, TopPriority: 3, Offset: 2, Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{p3.ID}; !equalIDs(ids(list), want) {
		t.Fatalf("top priority + skip = %v, want %v", ids(list), want)
	}
}

func TestListPagination(t *testing.T) {
	db := openTestDB(t)
	users, tasks := NewUserRepository(db), NewTaskRepository(db)
	alice := mustUser(t, users, "alice")

	var all []int64
	for _, title := range []string{"t1", "t2", "t3", "t4", "t5"} {
		all = append(all, mustTask(t, tasks, alice, title, nil, 1).ID)
	}

	list, err := tasks.List(context.Background(), repository.TaskFilter{OwnerID: alice.ID, Offset: 1, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !equalIDs(ids(list), all[1:3]) {
		t.Fatalf("page = %v, want %v", ids(list), all[1:3])
	}

	list, err = tasks.List(context.Background(), repository.TaskFilter{OwnerID: alice.ID, Offset: 10, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty page, got %v", ids(list))
	}
}

func TestUpdateIsPartialAndOwnerScoped(t *testing.T) {
	db := openTestDB(t)
	users, tasks := NewUserRepository(db), NewTaskRepository(db)
	alice, bob := mustUser(t, users, "alice"), mustUser(t, users, "bob")
	ctx := context.Background()

	task := mustTask(t, tasks, alice, "Buy milk", strPtr("2 liters"), 4)

	updated, err := tasks.Update(ctx, alice.ID, task.ID, domain.TaskPatch{Status: strPtr("done")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != "done" || updated.Title != "Buy milk" || updated.Priority != 4 ||
		updated.Description == nil || *updated.Description != "2 liters" {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) || updated.OwnerID != alice.ID {
		t.Fatalf("immutable fields changed: %+v", updated)
	}

	updated, err = tasks.Update(ctx, alice.ID, task.ID, domain.TaskPatch{ClearDescription: true, Priority: intPtr(0)})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Description != nil || updated.Priority != 0 || updated.Status != "done" {
		t.Fatalf("unexpected %+v", updated)
	}

	if _, err := tasks.Update(ctx, bob.ID, task.ID, domain.TaskPatch{Title: strPtr("pwned")}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("cross-owner update must be not found, got %v", err)
	}
	if _, err := tasks.Update(ctx, alice.ID, task.ID+100, domain.TaskPatch{}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("missing task must be not found, got %v", err)
	}

	same, err := tasks.Update(ctx, alice.ID, task.ID, domain.TaskPatch{})
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if same.Title != "Buy milk" {
		t.Fatalf("empty patch changed task: %+v", same)
	}
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	db := openTestDB(t)
	users, tasks := NewUserRepository(db), NewTaskRepository(db)
	alice, bob := mustUser(t, users, "alice"), mustUser(t, users, "bob")
	ctx := context.Background()

	task := mustTask(t, tasks, alice, "Buy milk", nil, 1)

	if err := tasks.Delete(ctx, bob.ID, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("cross-owner delete must be not found, got %v", err)
	}
	if err := tasks.Delete(ctx, alice.ID, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := tasks.Delete(ctx, alice.ID, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("second delete must be not found, got %v", err)
	}
}

func TestInstanceIDIsStablePerDatabase(t *testing.T) {
	ctx := context.Background()
	first := NewInstanceRepository(openTestDB(t))
	second := NewInstanceRepository(openTestDB(t))

	a, err := first.InstanceID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	again, err := first.InstanceID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.InstanceID(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != 32 || a != again {
		t.Fatalf("instance id must be stable: %q then %q", a, again)
	}
	if a == b {
		t.Fatalf("two databases share instance id %q", a)
	}
}
