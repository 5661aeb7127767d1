package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/todo-api/internal/model"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type sentEmail struct {
	to, firstName, title string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendTodoCompletedEmail(to, firstName, todoTitle string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to, firstName, todoTitle})
	return nil
}

type fakeRecipients map[string]*Recipient

func (f fakeRecipients) LookupRecipient(_ context.Context, userID string) (*Recipient, error) {
	r, ok := f[userID]
	if !ok {
		return nil, ErrNoEmailAddress
	}
	return r, nil
}

func newTestJobService(mailer Mailer, recipients RecipientLookup) *JobService {
	nop := zerolog.Nop()
	return &JobService{logger: &nop, mailer: mailer, recipients: recipients}
}

func completedTask(t *testing.T, userID, title string) *asynq.Task {
	t.Helper()

	task, err := NewTodoCompletedTask(&model.Todo{
		Base:   model.Base{ID: uuid.New()},
		UserID: userID,
		Title:  title,
	})
	if err != nil {
		t.Fatalf("NewTodoCompletedTask: %v", err)
	}
	return task
}

func TestNewTodoCompletedTask(t *testing.T) {
	id := uuid.New()
	task, err := NewTodoCompletedTask(&model.Todo{Base: model.Base{ID: id}, UserID: "user_1", Title: "Buy milk"})
	if err != nil {
		t.Fatal(err)
	}

	if task.Type() != TaskTodoCompleted {
		t.Errorf("type = %q", task.Type())
	}

	var p TodoCompletedPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatal(err)
	}
	if p.UserID != "user_1" || p.TodoID != id.String() || p.Title != "Buy milk" {
		t.Errorf("unexpected payload %+v", p)
	}
}

func TestHandleTodoCompletedSendsEmail(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestJobService(mailer, fakeRecipients{
		"user_1": {Email: "ann@example.com", FirstName: "Ann"},
	})

	if err := j.handleTodoCompletedTask(context.Background(), completedTask(t, "user_1", "Buy milk")); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.sent))
	}
	if got := mailer.sent[0]; got != (sentEmail{"ann@example.com", "Ann", "Buy milk"}) {
		t.Errorf("unexpected email %+v", got)
	}
}

func TestHandleTodoCompletedFallbackName(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestJobService(mailer, fakeRecipients{"user_1": {Email: "ann@example.com"}})

	if err := j.handleTodoCompletedTask(context.Background(), completedTask(t, "user_1", "x")); err != nil {
		t.Fatal(err)
	}
	if mailer.sent[0].firstName != "there" {
		t.Errorf("first name = %q", mailer.sent[0].firstName)
	}
}

func TestHandleTodoCompletedSkips(t *testing.T) {
	t.Run("notifications disabled", func(t *testing.T) {
		j := newTestJobService(nil, nil)
		if err := j.handleTodoCompletedTask(context.Background(), completedTask(t, "user_1", "x")); err != nil {
			t.Fatalf("disabled notifications should not fail: %v", err)
		}
	})

	t.Run("no email address", func(t *testing.T) {
		mailer := &fakeMailer{}
		j := newTestJobService(mailer, fakeRecipients{})
		if err := j.handleTodoCompletedTask(context.Background(), completedTask(t, "user_1", "x")); err != nil {
			t.Fatalf("missing address should not fail: %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Error("no email should be sent")
		}
	})
}

func TestHandleTodoCompletedErrors(t *testing.T) {
	t.Run("malformed payload skips retry", func(t *testing.T) {
		j := newTestJobService(&fakeMailer{}, fakeRecipients{})
		err := j.handleTodoCompletedTask(context.Background(), asynq.NewTask(TaskTodoCompleted, []byte("{")))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("err = %v, want SkipRetry", err)
		}
	})

	t.Run("send failure is retried", func(t *testing.T) {
		sendErr := errors.New("resend down")
		j := newTestJobService(&fakeMailer{err: sendErr}, fakeRecipients{"user_1": {Email: "a@b.c"}})
		err := j.handleTodoCompletedTask(context.Background(), completedTask(t, "user_1", "x"))
		if !errors.Is(err, sendErr) {
			t.Fatalf("err = %v, want %v", err, sendErr)
		}
	})
}

func TestPrimaryEmail(t *testing.T) {
	primaryID := "idn_2"
	usr := &clerk.User{
		PrimaryEmailAddressID: &primaryID,
		EmailAddresses: []*clerk.EmailAddress{
			{ID: "idn_1", EmailAddress: "old@example.com"},
			{ID: "idn_2", EmailAddress: "main@example.com"},
		},
	}
	if got := primaryEmail(usr); got != "main@example.com" {
		t.Errorf("primaryEmail = %q", got)
	}

	usr.PrimaryEmailAddressID = nil
	if got := primaryEmail(usr); got != "old@example.com" {
		t.Errorf("fallback = %q", got)
	}

	if got := primaryEmail(&clerk.User{}); got != "" {
		t.Errorf("empty user = %q", got)
	}
}
