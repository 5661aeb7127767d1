// Package repositorytest provides an in-memory todo store with the same
// behavior as the Postgres repository, for tests that should not need a
// database.
package repositorytest

import (
	"context"
	"sync"
	"time"

	"github.com/deppfellow/todo-api/internal/model"
	"github.com/deppfellow/todo-api/internal/repository"
	"github.com/google/uuid"
)

// MemoryTodoRepository keeps todos in insertion order.
type MemoryTodoRepository struct {
	mu    sync.Mutex
	todos []model.Todo

	// Err, when set, is returned by every method.
	Err error
}

func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{}
}

func (r *MemoryTodoRepository) CreateTodo(_ context.Context, userID string, payload *model.CreateTodoPayload) (*model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	now := time.Now().UTC()
	todo := model.Todo{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:      userID,
		Title:       *payload.Title,
		Description: *payload.Description,
		Done:        *payload.Done,
	}
	r.todos = append(r.todos, todo)

	return &todo, nil
}

func (r *MemoryTodoRepository) GetTodos(_ context.Context, userID string) ([]model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	todos := []model.Todo{}
	for _, todo := range r.todos {
		if todo.UserID == userID {
			todos = append(todos, todo)
		}
	}
	return todos, nil
}

func (r *MemoryTodoRepository) MarkTodoDone(_ context.Context, userID string, todoID uuid.UUID) (*model.Todo, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, false, r.Err
	}

	for i := range r.todos {
		todo := &r.todos[i]
		if todo.ID != todoID || todo.UserID != userID {
			continue
		}

		completedNow := !todo.Done
		if completedNow {
			todo.Done = true
			todo.UpdatedAt = time.Now().UTC()
		}

		result := *todo
		return &result, completedNow, nil
	}

	return nil, false, repository.ErrTodoNotFound
}

// Len returns the number of stored todos across all users.
func (r *MemoryTodoRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.todos)
}
