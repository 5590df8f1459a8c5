package adapters

import (
	"context"
	"fmt"
	"io"

	"leadops_backend/internal/adapters/storage"
	"leadops_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// LeadDocumentStore persists FTD identity documents in object storage,
// keyed per lead.
type LeadDocumentStore struct {
	storage storage.StorageService
	bucket  string
}

// NewLeadDocumentStore creates a new lead document store adapter.
func NewLeadDocumentStore(storageSvc storage.StorageService, bucket string) *LeadDocumentStore {
	return &LeadDocumentStore{storage: storageSvc, bucket: bucket}
}

// StoreDocument uploads a document under the lead's folder and returns the
// object key.
func (s *LeadDocumentStore) StoreDocument(ctx context.Context, leadID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	folder := fmt.Sprintf("leads/%s/documents", leadID)
	return s.storage.UploadFile(ctx, s.bucket, folder, fileName, contentType, reader, size)
}

// DocumentURL returns a presigned download link for a stored object key.
func (s *LeadDocumentStore) DocumentURL(ctx context.Context, key string) (ports.DocumentLink, error) {
	presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, key)
	if err != nil {
		return ports.DocumentLink{}, err
	}
	return ports.DocumentLink{
		Key:       presigned.FileKey,
		URL:       presigned.URL,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// Compile-time check that LeadDocumentStore implements ports.DocumentStore.
var _ ports.DocumentStore = (*LeadDocumentStore)(nil)
