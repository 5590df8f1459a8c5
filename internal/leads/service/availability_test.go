package service

import (
	"context"
	"testing"
	"time"

	"leadops_backend/internal/leads/domain"
	"leadops_backend/platform/apperr"

	"github.com/google/uuid"
)

func newTestAvailability(store *fakeStore, directory *fakeDirectory, bus *fakeBus) *Availability {
	return NewAvailability(store, store, store, directory, bus, testLogger())
}

func TestPutToSleepRequiresReason(t *testing.T) {
	svc := newTestAvailability(newFakeStore(), &fakeDirectory{}, &fakeBus{})

	_, err := svc.PutToSleep(context.Background(), uuid.New(), "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestPutToSleepReentrantRefreshesReason(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestAvailability(store, &fakeDirectory{}, bus)
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})

	slept, err := svc.PutToSleep(context.Background(), lead.ID, "no brokers left")
	if err != nil {
		t.Fatalf("put to sleep: %v", err)
	}
	if !slept.AvailabilityStatus.Asleep() {
		t.Fatalf("status = %q, want asleep", slept.AvailabilityStatus)
	}
	if slept.Sleep == nil || slept.Sleep.Reason != "no brokers left" {
		t.Fatalf("sleep details = %+v, want reason recorded", slept.Sleep)
	}
	originalPutAt := slept.Sleep.PutToSleepAt
	originalChecked := slept.Sleep.LastCheckedAt

	// The repeat call refreshes reason and check time; only the original
	// sleep timestamp survives.
	svc.now = func() time.Time { return originalChecked.Add(time.Minute) }
	again, err := svc.PutToSleep(context.Background(), lead.ID, "different reason")
	if err != nil {
		t.Fatalf("repeat put to sleep: %v", err)
	}
	if again.Sleep == nil || again.Sleep.Reason != "different reason" {
		t.Errorf("repeat sleep details = %+v, want refreshed reason", again.Sleep)
	}
	if !again.Sleep.PutToSleepAt.Equal(originalPutAt) {
		t.Errorf("repeat sleep timestamp changed: %v != %v", again.Sleep.PutToSleepAt, originalPutAt)
	}
	if !again.Sleep.LastCheckedAt.After(originalChecked) {
		t.Errorf("last checked = %v, want refreshed past %v", again.Sleep.LastCheckedAt, originalChecked)
	}

	names := bus.eventNames()
	if len(names) != 1 || names[0] != "leads.lead.put_to_sleep" {
		t.Errorf("published events = %v, want a single put_to_sleep", names)
	}
}

func TestWakeUpClearsSleepDetails(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestAvailability(store, &fakeDirectory{}, bus)
	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})

	if _, err := svc.PutToSleep(context.Background(), lead.ID, "parked"); err != nil {
		t.Fatalf("put to sleep: %v", err)
	}

	woken, err := svc.WakeUp(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("wake up: %v", err)
	}
	if woken.AvailabilityStatus != domain.AvailabilityAvailable {
		t.Errorf("status = %q, want available", woken.AvailabilityStatus)
	}
	if woken.Sleep != nil {
		t.Errorf("sleep details survived wake: %+v", woken.Sleep)
	}

	// Waking an awake lead is a no-op and publishes nothing further.
	if _, err := svc.WakeUp(context.Background(), lead.ID); err != nil {
		t.Fatalf("repeat wake: %v", err)
	}
	names := bus.eventNames()
	if len(names) != 2 || names[1] != "leads.lead.woken_up" {
		t.Errorf("published events = %v, want put_to_sleep then woken_up", names)
	}
}

func TestReevaluateWakesWhenUntriedBrokerExists(t *testing.T) {
	store := newFakeStore()
	attempted := uuid.New()
	fresh := uuid.New()
	directory := &fakeDirectory{enabled: []uuid.UUID{attempted, fresh}}
	svc := newTestAvailability(store, directory, &fakeBus{})

	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})
	ledger := newTestLedger(store, &fakeBus{})
	if _, err := ledger.AssignBroker(context.Background(), AssignBrokerInput{
		LeadID: lead.ID, ClientBrokerID: attempted, OrderID: uuid.New(), AssignedBy: uuid.New(),
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := ledger.UnassignBroker(context.Background(), lead.ID, attempted); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if _, err := svc.PutToSleep(context.Background(), lead.ID, "exhausted"); err != nil {
		t.Fatalf("put to sleep: %v", err)
	}

	current, _ := store.GetByID(context.Background(), lead.ID)
	didWake, err := svc.Reevaluate(context.Background(), current)
	if err != nil {
		t.Fatalf("reevaluate: %v", err)
	}
	if !didWake {
		t.Fatal("lead not woken despite an untried enabled broker")
	}

	current, _ = store.GetByID(context.Background(), lead.ID)
	if current.AvailabilityStatus != domain.AvailabilityAvailable {
		t.Errorf("status = %q, want available", current.AvailabilityStatus)
	}
}

func TestReevaluateMarksBrokerExhaustion(t *testing.T) {
	store := newFakeStore()
	brokerID := uuid.New()
	directory := &fakeDirectory{enabled: []uuid.UUID{brokerID}}
	svc := newTestAvailability(store, directory, &fakeBus{})

	lead := store.addLead(domain.Lead{Email: "a@example.com", Type: domain.LeadTypeCold})
	ledger := newTestLedger(store, &fakeBus{})
	if _, err := ledger.AssignBroker(context.Background(), AssignBrokerInput{
		LeadID: lead.ID, ClientBrokerID: brokerID, OrderID: uuid.New(), AssignedBy: uuid.New(),
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.PutToSleep(context.Background(), lead.ID, "exhausted"); err != nil {
		t.Fatalf("put to sleep: %v", err)
	}

	sleptAt := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return time.Now().Add(time.Minute) }
	current, _ := store.GetByID(context.Background(), lead.ID)
	current.Sleep.PutToSleepAt = sleptAt

	didWake, err := svc.Reevaluate(context.Background(), current)
	if err != nil {
		t.Fatalf("reevaluate: %v", err)
	}
	if didWake {
		t.Fatal("lead woken with every enabled broker already attempted")
	}

	after, _ := store.GetByID(context.Background(), lead.ID)
	if after.AvailabilityStatus != domain.AvailabilityNoBrokers {
		t.Fatalf("status = %q, want %q", after.AvailabilityStatus, domain.AvailabilityNoBrokers)
	}
	if after.Sleep == nil {
		t.Fatal("sleep details cleared by a stay-asleep check")
	}
	if !after.Sleep.PutToSleepAt.Equal(sleptAt) {
		t.Errorf("original sleep timestamp not preserved: %v", after.Sleep.PutToSleepAt)
	}
	if after.Sleep.Reason != "exhausted" {
		t.Errorf("sleep reason = %q, want preserved", after.Sleep.Reason)
	}
	if !after.Sleep.LastCheckedAt.After(time.Now()) {
		t.Error("last checked timestamp not advanced by the check")
	}
}

func TestRunSweepCountsWokenAndStillAsleep(t *testing.T) {
	store := newFakeStore()
	enabledBroker := uuid.New()
	directory := &fakeDirectory{enabled: []uuid.UUID{enabledBroker}}
	bus := &fakeBus{}
	svc := newTestAvailability(store, directory, bus)
	ledger := newTestLedger(store, &fakeBus{})

	// Two leads that never touched the enabled broker, one that already did.
	wakeable1 := store.addLead(domain.Lead{Email: "w1@example.com", Type: domain.LeadTypeCold})
	wakeable2 := store.addLead(domain.Lead{Email: "w2@example.com", Type: domain.LeadTypeCold})
	exhausted := store.addLead(domain.Lead{Email: "x@example.com", Type: domain.LeadTypeCold})
	if _, err := ledger.AssignBroker(context.Background(), AssignBrokerInput{
		LeadID: exhausted.ID, ClientBrokerID: enabledBroker, OrderID: uuid.New(), AssignedBy: uuid.New(),
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	for _, id := range []uuid.UUID{wakeable1.ID, wakeable2.ID, exhausted.ID} {
		if _, err := svc.PutToSleep(context.Background(), id, "parked"); err != nil {
			t.Fatalf("put to sleep: %v", err)
		}
	}

	stats, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if stats.Checked != 3 || stats.Woken != 2 || stats.StillAsleep != 1 {
		t.Fatalf("stats = %+v, want checked 3 woken 2 still asleep 1", stats)
	}

	for _, id := range []uuid.UUID{wakeable1.ID, wakeable2.ID} {
		lead, _ := store.GetByID(context.Background(), id)
		if lead.AvailabilityStatus != domain.AvailabilityAvailable {
			t.Errorf("lead %s status = %q, want available", id, lead.AvailabilityStatus)
		}
	}
	lead, _ := store.GetByID(context.Background(), exhausted.ID)
	if !lead.AvailabilityStatus.Asleep() {
		t.Errorf("exhausted lead status = %q, want asleep", lead.AvailabilityStatus)
	}
}

func TestRunSweepEmptySet(t *testing.T) {
	svc := newTestAvailability(newFakeStore(), &fakeDirectory{}, &fakeBus{})

	stats, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if stats.Checked != 0 || stats.Woken != 0 || stats.StillAsleep != 0 {
		t.Fatalf("stats = %+v, want all zero", stats)
	}
}
