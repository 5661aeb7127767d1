package model

import (
	"github.com/go-playground/validator/v10"
)

// Todo is a single todo item. UserID is the owner and only ever comes from
// the verified identity of the caller.
type Todo struct {
	Base
	UserID      string `json:"user_id" db:"user_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Done        bool   `json:"done" db:"done"`
}

// CreateTodoPayload is the body of POST /todos.
//
// Fields are pointers so "missing" and "null" can be told apart from
// the zero value: description may be "" and done may be false, but both
// must be sent.
type CreateTodoPayload struct {
	Title       *string `json:"title" validate:"required,min=1"`
	Description *string `json:"description" validate:"required"`
	Done        *bool   `json:"done" validate:"required"`
}

func (p *CreateTodoPayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// Strict marks the payload as rejecting any key it does not declare.
func (p *CreateTodoPayload) Strict() {}

// ListTodosPayload is the (empty) request of GET /todos.
type ListTodosPayload struct{}

func (p *ListTodosPayload) Validate() error {
	return nil
}

// MarkTodoDonePayload is the request of PATCH /todos/:todoId/done.
//
// TodoID is kept as a string: a malformed id is answered exactly like an
// unknown one (404), never as a validation error.
type MarkTodoDonePayload struct {
	TodoID string `param:"todoId" json:"-" validate:"required"`
}

func (p *MarkTodoDonePayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
