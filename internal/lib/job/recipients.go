package job

import (
	"context"
	"errors"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// ErrNoEmailAddress is returned when a user has no usable email address.
var ErrNoEmailAddress = errors.New("user has no email address")

// Recipient is who a notification is addressed to.
type Recipient struct {
	Email     string
	FirstName string
}

// RecipientLookup resolves the owner of a todo into an email recipient.
type RecipientLookup interface {
	LookupRecipient(ctx context.Context, userID string) (*Recipient, error)
}

// Mailer sends the completion email.
type Mailer interface {
	SendTodoCompletedEmail(to, firstName, todoTitle string) error
}

// ClerkRecipients looks users up through the Clerk Backend API.
// The secret key is set globally by clerk.SetKey during service setup.
type ClerkRecipients struct{}

func (ClerkRecipients) LookupRecipient(ctx context.Context, userID string) (*Recipient, error) {
	usr, err := user.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := primaryEmail(usr)
	if email == "" {
		return nil, ErrNoEmailAddress
	}

	recipient := &Recipient{Email: email}
	if usr.FirstName != nil {
		recipient.FirstName = *usr.FirstName
	}
	return recipient, nil
}

// primaryEmail prefers the primary address and falls back to the first one listed.
func primaryEmail(usr *clerk.User) string {
	if len(usr.EmailAddresses) == 0 {
		return ""
	}

	if usr.PrimaryEmailAddressID != nil {
		for _, addr := range usr.EmailAddresses {
			if addr != nil && addr.ID == *usr.PrimaryEmailAddressID {
				return addr.EmailAddress
			}
		}
	}

	for _, addr := range usr.EmailAddresses {
		if addr != nil && addr.EmailAddress != "" {
			return addr.EmailAddress
		}
	}
	return ""
}
