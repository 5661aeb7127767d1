package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/todo-api/internal/config"
	"github.com/deppfellow/todo-api/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// InitHandlers wires the dependencies task handlers use.
//
// Without a Resend API key notifications are disabled: tasks still get
// consumed, but nothing is sent.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	if cfg.Integration.ResendAPIKey == "" {
		logger.Warn().Msg("resend API key not provided, todo completion emails are disabled")
		return
	}

	j.mailer = email.NewClient(cfg, logger)
	j.recipients = ClerkRecipients{}
}

// handleTodoCompletedTask emails the todo owner. Returning an error makes
// Asynq retry the task.
func (j *JobService) handleTodoCompletedTask(ctx context.Context, t *asynq.Task) error {
	var p TodoCompletedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A malformed payload will never succeed.
		return fmt.Errorf("failed to unmarshal todo completed payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", "todo_completed").
		Str("user_id", p.UserID).
		Str("todo_id", p.TodoID).
		Logger()

	if j.mailer == nil || j.recipients == nil {
		log.Debug().Msg("notifications disabled, skipping todo completed email")
		return nil
	}

	log.Info().Msg("Processing todo completed email task")

	recipient, err := j.recipients.LookupRecipient(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, ErrNoEmailAddress) {
			log.Warn().Msg("user has no email address, skipping todo completed email")
			return nil
		}
		log.Error().Err(err).Msg("Failed to look up todo owner")
		return err
	}

	firstName := recipient.FirstName
	if firstName == "" {
		firstName = "there"
	}

	if err := j.mailer.SendTodoCompletedEmail(recipient.Email, firstName, p.Title); err != nil {
		log.Error().Err(err).Msg("Failed to send todo completed email")
		return err
	}

	log.Info().Msg("Successfully sent todo completed email")
	return nil
}
