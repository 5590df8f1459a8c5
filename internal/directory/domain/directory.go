// Package domain holds the directory entities: the client brokers and
// intermediary networks leads can be placed with.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClientBroker is a destination brokerage that accepts leads.
type ClientBroker struct {
	ID        uuid.UUID
	Name      string
	Domain    string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientNetwork is an intermediary affiliate network leads route through.
type ClientNetwork struct {
	ID        uuid.UUID
	Name      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
