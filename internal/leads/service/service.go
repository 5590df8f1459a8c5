// Package service implements the lead assignment engine: lead management,
// the assignment ledger, the sleep/wake availability tracker, resource lease
// managers and the order fulfillment counter.
package service

import (
	"context"
	"errors"
	"io"

	"leadops_backend/internal/events"
	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/ports"
	"leadops_backend/internal/leads/repository"
	"leadops_backend/platform/apperr"
	"leadops_backend/platform/phone"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound   = apperr.NotFound("lead not found")
	ErrDuplicateEmail = apperr.Conflict("a lead with this email already exists")
	// ErrDuplicateAssignment rejects a repeated (network, order) placement.
	ErrDuplicateAssignment = apperr.Conflict("lead is already assigned to this client network for this order")
	// ErrAlreadyAssigned rejects a second fingerprint without an explicit
	// device-type change.
	ErrAlreadyAssigned = apperr.Conflict("lead already has a fingerprint assigned")
	ErrInvalidLeadType = apperr.Validation("unknown lead type")
)

// Management covers lead creation, lookup and agent-level assignment.
type Management struct {
	reader    repository.LeadReader
	writer    repository.LeadWriter
	documents ports.DocumentStore
	bus       events.Bus
}

func NewManagement(reader repository.LeadReader, writer repository.LeadWriter, documents ports.DocumentStore, bus events.Bus) *Management {
	return &Management{reader: reader, writer: writer, documents: documents, bus: bus}
}

type CreateLeadInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Country   string
	LeadType  domain.LeadType
	FTDSin    string
}

func (s *Management) Create(ctx context.Context, input CreateLeadInput) (domain.Lead, error) {
	if !input.LeadType.Valid() {
		return domain.Lead{}, ErrInvalidLeadType
	}
	if input.Email == "" {
		return domain.Lead{}, apperr.Validation("email is required")
	}

	params := repository.CreateLeadParams{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     phone.NormalizeE164(input.Phone),
		Country:   input.Country,
		LeadType:  input.LeadType,
	}

	// Identity data is an FTD-only variant; other lead types must not carry it.
	if input.LeadType == domain.LeadTypeFTD {
		if input.FTDSin == "" {
			return domain.Lead{}, apperr.Validation("ftd leads require a social insurance number")
		}
		params.FTDSin = &input.FTDSin
	} else if input.FTDSin != "" {
		return domain.Lead{}, apperr.Validation("only ftd leads carry identity data")
	}

	lead, err := s.writer.Create(ctx, params)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return domain.Lead{}, ErrDuplicateEmail
	}
	if err != nil {
		return domain.Lead{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			LeadType:  string(lead.Type),
			Email:     lead.Email,
		})
	}

	return lead, nil
}

func (s *Management) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.reader.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, ErrLeadNotFound
	}
	return lead, err
}

func (s *Management) List(ctx context.Context, params repository.ListParams) ([]domain.Lead, int, error) {
	if params.Limit <= 0 || params.Limit > 200 {
		params.Limit = 50
	}
	return s.reader.List(ctx, params)
}

// AssignAgent sets the agent-level assignment. This is independent of broker
// assignment: an agent works a lead regardless of where it gets placed.
func (s *Management) AssignAgent(ctx context.Context, leadID, agentID uuid.UUID) (domain.Lead, error) {
	lead, err := s.writer.SetAgentAssignment(ctx, leadID, &agentID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, ErrLeadNotFound
	}
	return lead, err
}

func (s *Management) UnassignAgent(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := s.writer.SetAgentAssignment(ctx, leadID, nil)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, ErrLeadNotFound
	}
	return lead, err
}

// UploadDocument stores an identity document for an FTD lead and records the
// object key on the lead.
func (s *Management) UploadDocument(ctx context.Context, leadID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	lead, err := s.GetByID(ctx, leadID)
	if err != nil {
		return "", err
	}
	if lead.Type != domain.LeadTypeFTD {
		return "", apperr.Validation("only ftd leads carry identity documents")
	}
	if s.documents == nil {
		return "", apperr.Internal("document storage is not configured")
	}

	key, err := s.documents.StoreDocument(ctx, leadID, fileName, contentType, reader, size)
	if err != nil {
		return "", err
	}

	if err := s.writer.AppendDocumentKey(ctx, leadID, key); err != nil {
		return "", err
	}
	return key, nil
}

// DocumentLinks returns presigned download links for every identity document
// stored on an FTD lead, so agents can view documents before manual
// injection.
func (s *Management) DocumentLinks(ctx context.Context, leadID uuid.UUID) ([]ports.DocumentLink, error) {
	lead, err := s.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Type != domain.LeadTypeFTD {
		return nil, apperr.Validation("only ftd leads carry identity documents")
	}
	if s.documents == nil {
		return nil, apperr.Internal("document storage is not configured")
	}

	links := make([]ports.DocumentLink, 0)
	if lead.FTD == nil {
		return links, nil
	}
	for _, key := range lead.FTD.DocumentKeys {
		link, err := s.documents.DocumentURL(ctx, key)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}
