package router

import (
	"github.com/deppfellow/todo-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerTodoRoutes mounts the todo API on g. Every route requires auth.
func registerTodoRoutes(g *echo.Group, h *handler.Handlers, auth echo.MiddlewareFunc) {
	todos := g.Group("/todos", auth)

	todos.POST("", h.Todo.CreateTodo())
	todos.GET("", h.Todo.GetTodos())
	todos.PATCH("/:todoId/done", h.Todo.MarkTodoDone())
}
