package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/deppfellow/todo-api/internal/model"
	"github.com/hibiken/asynq"
)

// TaskTodoCompleted is sent once per todo, on its first transition to done.
const TaskTodoCompleted = "email:todo_completed"

// TodoCompletedPayload is the JSON payload of a TaskTodoCompleted task.
type TodoCompletedPayload struct {
	UserID string `json:"user_id"`
	TodoID string `json:"todo_id"`
	Title  string `json:"title"`
}

// NewTodoCompletedTask builds the notification task for todo.
func NewTodoCompletedTask(todo *model.Todo) (*asynq.Task, error) {
	payload, err := json.Marshal(TodoCompletedPayload{
		UserID: todo.UserID,
		TodoID: todo.ID.String(),
		Title:  todo.Title,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTodoCompleted, payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// EnqueueTodoCompleted schedules the completion notification for todo.
func (j *JobService) EnqueueTodoCompleted(ctx context.Context, todo *model.Todo) error {
	task, err := NewTodoCompletedTask(todo)
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("todo_id", todo.ID.String()).
		Msg("enqueued todo completed task")

	return nil
}
