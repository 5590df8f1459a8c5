package service

import (
	"context"
	"errors"
	"testing"

	"leadops_backend/internal/leads/domain"
	"leadops_backend/platform/apperr"

	"github.com/google/uuid"
)

func newTestLeases(store *fakeStore, factory *fakeFactory) *Leases {
	return NewLeases(store, store, store, factory, testLogger())
}

func TestAssignFingerprint(t *testing.T) {
	store := newFakeStore()
	factory := &fakeFactory{}
	svc := newTestLeases(store, factory)
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})
	actor := uuid.New()

	record, err := svc.AssignFingerprint(context.Background(), lead.ID, "desktop", actor)
	if err != nil {
		t.Fatalf("assign fingerprint: %v", err)
	}
	if len(factory.created) != 1 || record.ID != factory.created[0] {
		t.Errorf("record id %s does not match provisioned profile %v", record.ID, factory.created)
	}
	if record.DeviceType != "desktop" {
		t.Errorf("device type = %q, want desktop", record.DeviceType)
	}

	stored, err := svc.Fingerprint(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("get fingerprint: %v", err)
	}
	if stored == nil || stored.ID != record.ID {
		t.Errorf("stored fingerprint = %+v, want %s", stored, record.ID)
	}
}

func TestAssignFingerprintRequiresDeviceType(t *testing.T) {
	svc := newTestLeases(newFakeStore(), &fakeFactory{})

	_, err := svc.AssignFingerprint(context.Background(), uuid.New(), "", uuid.New())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestFingerprintRequiresCreator(t *testing.T) {
	store := newFakeStore()
	factory := &fakeFactory{}
	svc := newTestLeases(store, factory)
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})

	if _, err := svc.AssignFingerprint(context.Background(), lead.ID, "desktop", uuid.Nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("assign err = %v, want validation error", err)
	}
	if _, err := svc.UpdateDeviceType(context.Background(), lead.ID, "mobile", uuid.Nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("update err = %v, want validation error", err)
	}
	if len(factory.created) != 0 {
		t.Error("profile provisioned without a creator")
	}
}

func TestAssignFingerprintUnknownLead(t *testing.T) {
	factory := &fakeFactory{}
	svc := newTestLeases(newFakeStore(), factory)

	_, err := svc.AssignFingerprint(context.Background(), uuid.New(), "desktop", uuid.New())
	if !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("err = %v, want ErrLeadNotFound", err)
	}
	if len(factory.created) != 0 {
		t.Error("profile provisioned for an unknown lead")
	}
}

func TestAssignFingerprintConflictCleansUpOrphan(t *testing.T) {
	store := newFakeStore()
	factory := &fakeFactory{}
	svc := newTestLeases(store, factory)
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})

	if _, err := svc.AssignFingerprint(context.Background(), lead.ID, "desktop", uuid.New()); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := svc.AssignFingerprint(context.Background(), lead.ID, "mobile", uuid.New())
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("second assign err = %v, want ErrAlreadyAssigned", err)
	}

	// The losing provision leaves an orphaned profile; it must be destroyed.
	if len(factory.created) != 2 {
		t.Fatalf("provisioned %d profiles, want 2", len(factory.created))
	}
	if len(factory.deleted) != 1 || factory.deleted[0] != factory.created[1] {
		t.Errorf("deleted profiles = %v, want the orphaned %s", factory.deleted, factory.created[1])
	}

	stored, _ := svc.Fingerprint(context.Background(), lead.ID)
	if stored == nil || stored.DeviceType != "desktop" {
		t.Errorf("stored fingerprint = %+v, want the original desktop profile", stored)
	}
}

func TestUpdateDeviceTypeSameTypeIsNoOp(t *testing.T) {
	store := newFakeStore()
	factory := &fakeFactory{}
	svc := newTestLeases(store, factory)
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})

	original, err := svc.AssignFingerprint(context.Background(), lead.ID, "desktop", uuid.New())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	record, err := svc.UpdateDeviceType(context.Background(), lead.ID, "desktop", uuid.New())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if record.ID != original.ID {
		t.Errorf("fingerprint replaced on a same-type update: %s != %s", record.ID, original.ID)
	}
	if len(factory.created) != 1 || len(factory.deleted) != 0 {
		t.Errorf("factory touched on a no-op update: created %d deleted %d", len(factory.created), len(factory.deleted))
	}
}

func TestUpdateDeviceTypeDestroysAndRecreates(t *testing.T) {
	store := newFakeStore()
	factory := &fakeFactory{}
	svc := newTestLeases(store, factory)
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})

	original, err := svc.AssignFingerprint(context.Background(), lead.ID, "desktop", uuid.New())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	record, err := svc.UpdateDeviceType(context.Background(), lead.ID, "mobile", uuid.New())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if record.ID == original.ID {
		t.Error("device-type change kept the old fingerprint resource")
	}
	if record.DeviceType != "mobile" {
		t.Errorf("device type = %q, want mobile", record.DeviceType)
	}
	if len(factory.deleted) != 1 || factory.deleted[0] != original.ID {
		t.Errorf("deleted profiles = %v, want the replaced %s", factory.deleted, original.ID)
	}
}

func TestUpdateDeviceTypeWithoutFingerprint(t *testing.T) {
	store := newFakeStore()
	svc := newTestLeases(store, &fakeFactory{})
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})

	_, err := svc.UpdateDeviceType(context.Background(), lead.ID, "mobile", uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestAssignProxyExclusivePerOrder(t *testing.T) {
	store := newFakeStore()
	svc := newTestLeases(store, &fakeFactory{})
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})
	orderID := uuid.New()

	first, leased, err := svc.AssignProxy(context.Background(), lead.ID, uuid.New(), orderID)
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if !leased {
		t.Fatal("first assign reported leased=false")
	}

	second, leased, err := svc.AssignProxy(context.Background(), lead.ID, uuid.New(), orderID)
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if leased {
		t.Error("second assign leased a proxy over an active lease")
	}
	if second.ID != first.ID {
		t.Errorf("second assign returned lease %s, want existing %s", second.ID, first.ID)
	}

	history, err := svc.ProxyHistory(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history has %d leases, want 1", len(history))
	}
}

func TestAssignProxyAfterCompletion(t *testing.T) {
	store := newFakeStore()
	svc := newTestLeases(store, &fakeFactory{})
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})
	orderID := uuid.New()

	if _, _, err := svc.AssignProxy(context.Background(), lead.ID, uuid.New(), orderID); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	closed, err := svc.CompleteProxyAssignment(context.Background(), lead.ID, orderID, domain.ProxyLeaseCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !closed {
		t.Fatal("completion reported no active lease")
	}

	_, leased, err := svc.AssignProxy(context.Background(), lead.ID, uuid.New(), orderID)
	if err != nil {
		t.Fatalf("re-assign: %v", err)
	}
	if !leased {
		t.Error("lead could not lease a new proxy after completing the previous one")
	}

	history, _ := svc.ProxyHistory(context.Background(), lead.ID)
	if len(history) != 2 {
		t.Errorf("history has %d leases, want 2", len(history))
	}
}

func TestCompleteProxyRequiresTerminalStatus(t *testing.T) {
	svc := newTestLeases(newFakeStore(), &fakeFactory{})

	_, err := svc.CompleteProxyAssignment(context.Background(), uuid.New(), uuid.New(), domain.ProxyLeaseActive)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCompleteProxyWithoutActiveLease(t *testing.T) {
	store := newFakeStore()
	svc := newTestLeases(store, &fakeFactory{})
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})

	closed, err := svc.CompleteProxyAssignment(context.Background(), lead.ID, uuid.New(), domain.ProxyLeaseFailed)
	if err != nil {
		t.Fatalf("completion without a lease returned %v, want nil", err)
	}
	if closed {
		t.Error("completion reported closed with no active lease")
	}
}
