// Package model holds the domain types persisted by the repository layer
// and the request payloads accepted by the handlers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the columns every table has.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
