package fingerprint

import (
	"context"

	"leadops_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// NoopFactory mints local profile ids without calling any external API.
// Used in development when no fingerprint API is configured.
type NoopFactory struct{}

func NewNoopFactory() *NoopFactory {
	return &NoopFactory{}
}

func (f *NoopFactory) CreateProfile(_ context.Context, _ uuid.UUID, _ string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (f *NoopFactory) DeleteProfile(_ context.Context, _ uuid.UUID) error {
	return nil
}

var _ ports.FingerprintFactory = (*NoopFactory)(nil)
