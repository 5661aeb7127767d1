package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/deppfellow/todo-api/internal/database"
	"github.com/deppfellow/todo-api/internal/model"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// testDatabaseURLEnv names a disposable Postgres database. The todos schema
// is migrated into it; rows are written under random owner ids.
const testDatabaseURLEnv = "TODO_TEST_DATABASE_URL"

func newPostgresRepository(t *testing.T) *TodoRepository {
	t.Helper()

	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	ctx := context.Background()
	logger := zerolog.Nop()

	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.MigrateConn(ctx, &logger, conn); err != nil {
		_ = conn.Close(ctx)
		t.Fatalf("migrate: %v", err)
	}
	_ = conn.Close(ctx)

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return NewTodoRepository(&server.Server{DB: &database.Database{Pool: pool}})
}

func newOwner() string {
	return "user_" + uuid.NewString()
}

func createPayload(title string) *model.CreateTodoPayload {
	description, done := "", false
	return &model.CreateTodoPayload{Title: &title, Description: &description, Done: &done}
}

func TestTodoRepositoryPostgres(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		owner := newOwner()

		todo, err := repo.CreateTodo(ctx, owner, createPayload("Buy milk"))
		if err != nil {
			t.Fatal(err)
		}
		if todo.ID == uuid.Nil || todo.UserID != owner || todo.Title != "Buy milk" || todo.Done {
			t.Errorf("unexpected todo %+v", todo)
		}
		if todo.CreatedAt.IsZero() || !todo.UpdatedAt.Equal(todo.CreatedAt) {
			t.Errorf("timestamps created_at=%v updated_at=%v", todo.CreatedAt, todo.UpdatedAt)
		}
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		todos, err := repo.GetTodos(ctx, newOwner())
		if err != nil {
			t.Fatal(err)
		}
		if todos == nil || len(todos) != 0 {
			t.Errorf("got %#v, want empty non-nil slice", todos)
		}
	})

	t.Run("list keeps insertion order on equal created_at", func(t *testing.T) {
		owner := newOwner()

		// One statement shares one NOW(), so created_at ties for every row.
		_, err := repo.server.DB.Pool.Exec(ctx, `
			INSERT INTO
				todos (user_id, title)
			VALUES
				($1, 'first'), ($1, 'second'), ($1, 'third')
		`, owner)
		if err != nil {
			t.Fatal(err)
		}

		todos, err := repo.GetTodos(ctx, owner)
		if err != nil {
			t.Fatal(err)
		}
		if len(todos) != 3 {
			t.Fatalf("got %d todos, want 3", len(todos))
		}
		for i, title := range []string{"first", "second", "third"} {
			if todos[i].Title != title {
				t.Errorf("todos[%d] = %q, want %q", i, todos[i].Title, title)
			}
		}
	})

	t.Run("list is scoped to owner", func(t *testing.T) {
		alice, bob := newOwner(), newOwner()
		if _, err := repo.CreateTodo(ctx, alice, createPayload("a")); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.CreateTodo(ctx, bob, createPayload("b")); err != nil {
			t.Fatal(err)
		}

		todos, err := repo.GetTodos(ctx, alice)
		if err != nil {
			t.Fatal(err)
		}
		if len(todos) != 1 || todos[0].UserID != alice {
			t.Errorf("alice sees %+v", todos)
		}
	})

	t.Run("mark done on another owner's todo is not found", func(t *testing.T) {
		owner := newOwner()
		todo, err := repo.CreateTodo(ctx, owner, createPayload("private"))
		if err != nil {
			t.Fatal(err)
		}

		if _, _, err := repo.MarkTodoDone(ctx, newOwner(), todo.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Fatalf("foreign owner: got %v, want ErrTodoNotFound", err)
		}
		if _, _, err := repo.MarkTodoDone(ctx, owner, uuid.New()); !errors.Is(err, ErrTodoNotFound) {
			t.Fatalf("unknown id: got %v, want ErrTodoNotFound", err)
		}

		todos, err := repo.GetTodos(ctx, owner)
		if err != nil {
			t.Fatal(err)
		}
		if len(todos) != 1 || todos[0].Done {
			t.Errorf("foreign mark done changed the todo: %+v", todos)
		}
	})

	t.Run("mark done completes once", func(t *testing.T) {
		owner := newOwner()
		created, err := repo.CreateTodo(ctx, owner, createPayload("Walk the dog"))
		if err != nil {
			t.Fatal(err)
		}

		first, completedNow, err := repo.MarkTodoDone(ctx, owner, created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !completedNow || !first.Done {
			t.Fatalf("first call: completedNow=%v todo=%+v", completedNow, first)
		}
		if first.UpdatedAt.Before(created.UpdatedAt) {
			t.Errorf("updated_at went backwards: %v < %v", first.UpdatedAt, created.UpdatedAt)
		}

		second, completedNow, err := repo.MarkTodoDone(ctx, owner, created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if completedNow {
			t.Error("second call must not report a transition")
		}
		if !second.Done || !second.UpdatedAt.Equal(first.UpdatedAt) {
			t.Errorf("second call changed the todo: updated_at %v, want %v", second.UpdatedAt, first.UpdatedAt)
		}
		if !second.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("created_at changed: %v, want %v", second.CreatedAt, created.CreatedAt)
		}
	})
}
