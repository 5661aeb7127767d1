package service

import (
	"context"
	"errors"

	"github.com/deppfellow/todo-api/internal/errs"
	"github.com/deppfellow/todo-api/internal/middleware"
	"github.com/deppfellow/todo-api/internal/model"
	"github.com/deppfellow/todo-api/internal/repository"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TodoNotFoundCode is the error code answered for unknown, foreign and
// malformed todo ids alike.
const TodoNotFoundCode = "TODO_NOT_FOUND"

// TodoRepository is the storage the todo service needs. Implementations must
// scope every call to userID.
type TodoRepository interface {
	CreateTodo(ctx context.Context, userID string, payload *model.CreateTodoPayload) (*model.Todo, error)
	GetTodos(ctx context.Context, userID string) ([]model.Todo, error)
	MarkTodoDone(ctx context.Context, userID string, todoID uuid.UUID) (*model.Todo, bool, error)
}

// CompletionNotifier is told about a todo's first transition to done.
type CompletionNotifier interface {
	EnqueueTodoCompleted(ctx context.Context, todo *model.Todo) error
}

type TodoService struct {
	server   *server.Server
	repo     TodoRepository
	notifier CompletionNotifier
}

// NewTodoService builds a TodoService. notifier may be nil.
func NewTodoService(s *server.Server, repo TodoRepository, notifier CompletionNotifier) *TodoService {
	return &TodoService{
		server:   s,
		repo:     repo,
		notifier: notifier,
	}
}

func newTodoNotFoundError() *errs.HTTPError {
	code := TodoNotFoundCode
	return errs.NewNotFoundError("Todo not found", false, &code)
}

// CreateTodo stores a new todo owned by userID.
func (s *TodoService) CreateTodo(c echo.Context, userID string, payload *model.CreateTodoPayload) (*model.Todo, error) {
	logger := middleware.GetLogger(c)

	todo, err := s.repo.CreateTodo(c.Request().Context(), userID, payload)
	if err != nil {
		return nil, errs.NewInternalServerError().WithMessage("Failed to create a new todo").Wrap(err)
	}

	logger.Info().
		Str("event", "todo_created").
		Str("todo_id", todo.ID.String()).
		Msg("Todo created successfully")

	return todo, nil
}

// GetTodos lists userID's todos in insertion order.
func (s *TodoService) GetTodos(c echo.Context, userID string) ([]model.Todo, error) {
	logger := middleware.GetLogger(c)

	todos, err := s.repo.GetTodos(c.Request().Context(), userID)
	if err != nil {
		return nil, errs.NewInternalServerError().WithMessage("Failed to retrieve todos").Wrap(err)
	}

	logger.Debug().
		Int("count", len(todos)).
		Msg("Todos retrieved")

	return todos, nil
}

// MarkTodoDone marks one of userID's todos as done and returns it.
//
// Repeating the call is harmless: the todo is returned unchanged and no
// second completion notification is sent.
func (s *TodoService) MarkTodoDone(c echo.Context, userID string, payload *model.MarkTodoDonePayload) (*model.Todo, error) {
	logger := middleware.GetLogger(c)

	todoID, err := uuid.Parse(payload.TodoID)
	if err != nil {
		logger.Debug().Str("todo_id", payload.TodoID).Msg("malformed todo id")
		return nil, newTodoNotFoundError()
	}

	todo, completedNow, err := s.repo.MarkTodoDone(c.Request().Context(), userID, todoID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, newTodoNotFoundError()
		}
		return nil, errs.NewInternalServerError().WithMessage("Failed to update todo").Wrap(err)
	}

	if completedNow {
		logger.Info().
			Str("event", "todo_completed").
			Str("todo_id", todo.ID.String()).
			Msg("Todo marked as done")

		if s.notifier != nil {
			// The update already happened; a queue outage must not fail the request.
			if err := s.notifier.EnqueueTodoCompleted(c.Request().Context(), todo); err != nil {
				logger.Error().
					Err(err).
					Str("todo_id", todo.ID.String()).
					Msg("failed to enqueue todo completed notification")
			}
		}
	}

	return todo, nil
}
