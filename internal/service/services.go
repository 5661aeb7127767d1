// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data.
package service

import (
	"github.com/deppfellow/todo-api/internal/lib/job"
	"github.com/deppfellow/todo-api/internal/repository"
	"github.com/deppfellow/todo-api/internal/server"
)

type Services struct {
	Auth *AuthService
	Job  *job.JobService
	Todo *TodoService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	// A nil *job.JobService must not become a non-nil interface.
	var notifier CompletionNotifier
	if s.Job != nil {
		notifier = s.Job
	}

	return &Services{
		Job:  s.Job,
		Auth: authService,
		Todo: NewTodoService(s, repos.Todo, notifier),
	}, nil
}
