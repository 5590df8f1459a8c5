// Package ports defines the interfaces the leads domain requires from
// external systems. The implementations live in the composition root or in
// internal/adapters, so the domain never imports its collaborators directly.
package ports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BrokerDirectory supplies the set of currently-enabled client brokers.
// The leads domain treats broker ids as opaque and never validates their
// existence itself.
type BrokerDirectory interface {
	EnabledBrokerIDs(ctx context.Context) ([]uuid.UUID, error)
}

// FingerprintFactory creates and destroys the external device-identity
// resources (browser profiles) referenced by leads.
type FingerprintFactory interface {
	// CreateProfile provisions a fingerprint resource keyed by lead id and
	// device type, returning the resource id.
	CreateProfile(ctx context.Context, leadID uuid.UUID, deviceType string) (uuid.UUID, error)

	// DeleteProfile destroys a fingerprint resource. Deleting an unknown
	// resource is not an error.
	DeleteProfile(ctx context.Context, fingerprintID uuid.UUID) error
}

// DocumentLink is a short-lived download link for a stored document.
type DocumentLink struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// DocumentStore persists FTD identity documents.
type DocumentStore interface {
	// StoreDocument uploads a document and returns the object key.
	StoreDocument(ctx context.Context, leadID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// DocumentURL returns a presigned download link for a stored object key.
	DocumentURL(ctx context.Context, key string) (DocumentLink, error)
}
