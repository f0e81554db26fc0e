package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taskmaster-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestTaskCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")

	task := Task{
		ID:          "task-1",
		Title:       "Write schema",
		Description: "Design storage layout",
		CreatedAt:   created,
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != task.Title || got.Completed || !got.UpdatedAt.Equal(created) {
		t.Fatalf("unexpected task get result: %#v", got)
	}

	task.Title = "Write schema v2"
	task.Completed = true
	task.UpdatedAt = created.Add(time.Hour)
	if err := repo.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	done := true
	completed, err := repo.ListTasks(ctx, TaskListFilter{Completed: &done})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != task.ID || completed[0].Title != "Write schema v2" {
		t.Fatalf("unexpected completed list: %#v", completed)
	}
	if !completed[0].CreatedAt.Equal(created) {
		t.Fatalf("update must not move created_at: %v", completed[0].CreatedAt)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := repo.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListTasksOldestFirst(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := parseRFC3339(t, "2026-02-09T12:00:00Z")

	for i, id := range []string{"b", "a", "c"} {
		if err := repo.CreateTask(ctx, Task{ID: id, Title: "task " + id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	all, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "b" || all[1].ID != "a" || all[2].ID != "c" {
		t.Fatalf("unexpected order: %#v", all)
	}

	page, err := repo.ListTasks(ctx, TaskListFilter{Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 || page[0].ID != "a" {
		t.Fatalf("unexpected offset page: %#v", page)
	}

	page, err = repo.ListTasks(ctx, TaskListFilter{Limit: 1, Offset: 2})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].ID != "c" {
		t.Fatalf("unexpected limited page: %#v", page)
	}
}

func TestMissingTaskIsNotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if err := repo.UpdateTask(ctx, Task{ID: "ghost", Title: "x", UpdatedAt: time.Now()}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := repo.DeleteTask(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}

func TestEmptyTitleRejectedBySchema(t *testing.T) {
	repo := setupRepo(t)
	err := repo.CreateTask(context.Background(), Task{ID: "t", Title: "   ", CreatedAt: time.Now()})
	if err == nil {
		t.Fatal("expected check constraint failure")
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	if _, err := repo.ListTasks(context.Background(), TaskListFilter{}); err != nil {
		t.Fatalf("list on fresh db: %v", err)
	}
}
