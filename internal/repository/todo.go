package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/todo-api/internal/model"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrTodoNotFound is returned when a todo does not exist or belongs to
// another user. The two cases are deliberately indistinguishable.
var ErrTodoNotFound = errors.New("todo not found")

type TodoRepository struct {
	server *server.Server
}

func NewTodoRepository(s *server.Server) *TodoRepository {
	return &TodoRepository{server: s}
}

// CreateTodo inserts a todo owned by userID. Id and timestamps are assigned
// by the database.
func (r *TodoRepository) CreateTodo(ctx context.Context, userID string, payload *model.CreateTodoPayload) (*model.Todo, error) {
	stmt := `
		INSERT INTO
			todos (user_id, title, description, done)
		VALUES
			(@user_id, @title, @description, @done)
		RETURNING
			id, user_id, title, description, done, created_at, updated_at
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"user_id":     userID,
		"title":       *payload.Title,
		"description": *payload.Description,
		"done":        *payload.Done,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create todo query for user_id=%s: %w", userID, err)
	}

	todo, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Todo])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:todos for user_id=%s: %w", userID, err)
	}

	return &todo, nil
}

// GetTodos returns every todo owned by userID in insertion order. The result
// is never nil.
func (r *TodoRepository) GetTodos(ctx context.Context, userID string) ([]model.Todo, error) {
	stmt := `
		SELECT
			id, user_id, title, description, done, created_at, updated_at
		FROM
			todos
		WHERE
			user_id = @user_id
		ORDER BY
			seq
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"user_id": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get todos query for user_id=%s: %w", userID, err)
	}

	todos, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Todo])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:todos for user_id=%s: %w", userID, err)
	}

	if todos == nil {
		todos = []model.Todo{}
	}

	return todos, nil
}

type markDoneRow struct {
	model.Todo
	CompletedNow bool `db:"completed_now"`
}

// MarkTodoDone sets done=true on the todo identified by todoID and owned by
// userID. completedNow reports whether this call made the transition; marking
// an already-done todo is a no-op that leaves updated_at untouched.
func (r *TodoRepository) MarkTodoDone(ctx context.Context, userID string, todoID uuid.UUID) (todo *model.Todo, completedNow bool, err error) {
	// The row lock makes concurrent calls agree on which one completed the todo.
	stmt := `
		UPDATE todos t
		SET
			done = TRUE,
			updated_at = CASE
				WHEN prev.was_done THEN t.updated_at
				ELSE NOW()
			END
		FROM
			(
				SELECT
					id, done AS was_done
				FROM
					todos
				WHERE
					id = @id
					AND user_id = @user_id
				FOR UPDATE
			) prev
		WHERE
			t.id = prev.id
		RETURNING
			t.id, t.user_id, t.title, t.description, t.done, t.created_at, t.updated_at,
			NOT prev.was_done AS completed_now
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"id":      todoID,
		"user_id": userID,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to execute mark todo done query for todo_id=%s user_id=%s: %w", todoID, userID, err)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[markDoneRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrTodoNotFound
		}
		return nil, false, fmt.Errorf("failed to collect row from table:todos for todo_id=%s user_id=%s: %w", todoID, userID, err)
	}

	return &row.Todo, row.CompletedNow, nil
}
