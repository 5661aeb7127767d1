package handler

import (
	"net/http"

	"github.com/deppfellow/todo-api/internal/model"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/deppfellow/todo-api/internal/service"
	"github.com/labstack/echo/v4"
)

type TodoHandler struct {
	Handler
	todoService *service.TodoService
}

func NewTodoHandler(s *server.Server, todoService *service.TodoService) *TodoHandler {
	return &TodoHandler{
		Handler:     NewHandler(s),
		todoService: todoService,
	}
}

func (h *TodoHandler) CreateTodo() echo.HandlerFunc {
	return HandleAuthed(
		h.Handler,
		func(c echo.Context, userID string, payload *model.CreateTodoPayload) (*model.Todo, error) {
			return h.todoService.CreateTodo(c, userID, payload)
		},
		http.StatusCreated,
		&model.CreateTodoPayload{},
	)
}

func (h *TodoHandler) GetTodos() echo.HandlerFunc {
	return HandleAuthed(
		h.Handler,
		func(c echo.Context, userID string, payload *model.ListTodosPayload) ([]model.Todo, error) {
			return h.todoService.GetTodos(c, userID)
		},
		http.StatusOK,
		&model.ListTodosPayload{},
	)
}

func (h *TodoHandler) MarkTodoDone() echo.HandlerFunc {
	return HandleAuthed(
		h.Handler,
		func(c echo.Context, userID string, payload *model.MarkTodoDonePayload) (*model.Todo, error) {
			return h.todoService.MarkTodoDone(c, userID, payload)
		},
		http.StatusOK,
		&model.MarkTodoDonePayload{},
	)
}
