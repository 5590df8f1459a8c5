package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/repository"
	"leadops_backend/platform/apperr"

	"github.com/google/uuid"
)

func newTestManagement(store *fakeStore, documents *fakeDocuments, bus *fakeBus) *Management {
	return NewManagement(store, store, documents, bus)
}

func TestCreateLead(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestManagement(store, nil, bus)

	lead, err := svc.Create(context.Background(), CreateLeadInput{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Miller",
		Phone:     "+14165550119",
		Country:   "CA",
		LeadType:  domain.LeadTypeCold,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.ID == uuid.Nil {
		t.Error("created lead has no id")
	}
	if lead.AvailabilityStatus != domain.AvailabilityAvailable {
		t.Errorf("new lead status = %q, want available", lead.AvailabilityStatus)
	}
	if lead.FTD != nil {
		t.Error("non-ftd lead carries an ftd profile")
	}

	names := bus.eventNames()
	if len(names) != 1 || names[0] != "leads.lead.created" {
		t.Errorf("published events = %v, want lead.created", names)
	}
}

func TestCreateLeadFTDRequiresSIN(t *testing.T) {
	svc := newTestManagement(newFakeStore(), nil, &fakeBus{})

	_, err := svc.Create(context.Background(), CreateLeadInput{
		Email:    "ftd@example.com",
		LeadType: domain.LeadTypeFTD,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateLeadFTDStoresSIN(t *testing.T) {
	store := newFakeStore()
	svc := newTestManagement(store, nil, &fakeBus{})

	lead, err := svc.Create(context.Background(), CreateLeadInput{
		Email:    "ftd@example.com",
		LeadType: domain.LeadTypeFTD,
		FTDSin:   "046-454-286",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.FTD == nil || lead.FTD.SIN != "046-454-286" {
		t.Fatalf("ftd profile = %+v, want SIN stored", lead.FTD)
	}
}

func TestCreateLeadRejectsSINOnNonFTD(t *testing.T) {
	svc := newTestManagement(newFakeStore(), nil, &fakeBus{})

	_, err := svc.Create(context.Background(), CreateLeadInput{
		Email:    "cold@example.com",
		LeadType: domain.LeadTypeCold,
		FTDSin:   "046-454-286",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateLeadUnknownType(t *testing.T) {
	svc := newTestManagement(newFakeStore(), nil, &fakeBus{})

	_, err := svc.Create(context.Background(), CreateLeadInput{
		Email:    "x@example.com",
		LeadType: domain.LeadType("premium"),
	})
	if !errors.Is(err, ErrInvalidLeadType) {
		t.Fatalf("err = %v, want ErrInvalidLeadType", err)
	}
}

func TestCreateLeadDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestManagement(store, nil, &fakeBus{})
	input := CreateLeadInput{Email: "dup@example.com", LeadType: domain.LeadTypeFiller}

	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("second create err = %v, want ErrDuplicateEmail", err)
	}
}

func TestListClampsLimit(t *testing.T) {
	store := newFakeStore()
	svc := newTestManagement(store, nil, &fakeBus{})
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		store.addLead(domain.Lead{Email: email, Type: domain.LeadTypeCold})
	}

	leads, total, err := svc.List(context.Background(), repository.ListParams{Limit: -5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(leads) != 3 {
		t.Errorf("list returned %d of %d, want all 3", len(leads), total)
	}
}

func TestAssignAndUnassignAgent(t *testing.T) {
	store := newFakeStore()
	svc := newTestManagement(store, nil, &fakeBus{})
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})
	agentID := uuid.New()

	assigned, err := svc.AssignAgent(context.Background(), lead.ID, agentID)
	if err != nil {
		t.Fatalf("assign agent: %v", err)
	}
	if !assigned.IsAssigned || assigned.AssignedTo == nil || *assigned.AssignedTo != agentID {
		t.Errorf("assignment not recorded: %+v", assigned)
	}

	unassigned, err := svc.UnassignAgent(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("unassign agent: %v", err)
	}
	if unassigned.IsAssigned || unassigned.AssignedTo != nil {
		t.Errorf("assignment not cleared: %+v", unassigned)
	}
}

func TestUploadDocument(t *testing.T) {
	store := newFakeStore()
	documents := newFakeDocuments()
	svc := newTestManagement(store, documents, &fakeBus{})
	sin := "046-454-286"
	lead := store.addLead(domain.Lead{
		Email: "ftd@example.com",
		Type:  domain.LeadTypeFTD,
		FTD:   &domain.FTDProfile{SIN: sin},
	})

	content := "passport scan"
	key, err := svc.UploadDocument(context.Background(), lead.ID, "passport.pdf", "application/pdf", strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if string(documents.stored[key]) != content {
		t.Errorf("stored content mismatch for key %q", key)
	}

	after, _ := store.GetByID(context.Background(), lead.ID)
	if after.FTD == nil || len(after.FTD.DocumentKeys) != 1 || after.FTD.DocumentKeys[0] != key {
		t.Errorf("document key not recorded on lead: %+v", after.FTD)
	}
}

func TestDocumentLinks(t *testing.T) {
	store := newFakeStore()
	documents := newFakeDocuments()
	svc := newTestManagement(store, documents, &fakeBus{})
	lead := store.addLead(domain.Lead{
		Email: "ftd@example.com",
		Type:  domain.LeadTypeFTD,
		FTD:   &domain.FTDProfile{SIN: "046-454-286"},
	})

	content := "passport scan"
	key, err := svc.UploadDocument(context.Background(), lead.ID, "passport.pdf", "application/pdf", strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	links, err := svc.DocumentLinks(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("document links: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if links[0].Key != key {
		t.Errorf("link key = %q, want %q", links[0].Key, key)
	}
	if links[0].URL == "" {
		t.Error("link has no download url")
	}
}

func TestDocumentLinksNonFTDRejected(t *testing.T) {
	store := newFakeStore()
	svc := newTestManagement(store, newFakeDocuments(), &fakeBus{})
	lead := store.addLead(domain.Lead{Email: "cold@example.com", Type: domain.LeadTypeCold})

	_, err := svc.DocumentLinks(context.Background(), lead.ID)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestUploadDocumentNonFTDRejected(t *testing.T) {
	store := newFakeStore()
	svc := newTestManagement(store, newFakeDocuments(), &fakeBus{})
	lead := store.addLead(domain.Lead{Email: "cold@example.com", Type: domain.LeadTypeCold})

	_, err := svc.UploadDocument(context.Background(), lead.ID, "doc.pdf", "application/pdf", strings.NewReader("x"), 1)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
