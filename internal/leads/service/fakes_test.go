package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"leadops_backend/internal/events"
	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/ports"
	"leadops_backend/internal/leads/repository"
	"leadops_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the pgx repository. It implements
// the same contracts the real store documents: an idempotent active broker
// set with an always-append history, unique (lead, network, order) records,
// exclusive proxy leases and an at-most-one fingerprint per lead.
type fakeStore struct {
	mu sync.Mutex

	leads         map[uuid.UUID]domain.Lead
	activeBrokers map[uuid.UUID][]uuid.UUID
	brokerHistory []domain.BrokerAssignment
	networks      []domain.NetworkAssignment
	proxyLeases   []domain.ProxyLease
	fingerprints  map[uuid.UUID]domain.Fingerprint
	seq           int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:         make(map[uuid.UUID]domain.Lead),
		activeBrokers: make(map[uuid.UUID][]uuid.UUID),
		fingerprints:  make(map[uuid.UUID]domain.Fingerprint),
	}
}

func (f *fakeStore) addLead(lead domain.Lead) domain.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.AvailabilityStatus == "" {
		lead.AvailabilityStatus = domain.AvailabilityAvailable
	}
	f.leads[lead.ID] = lead
	return lead
}

// LeadReader

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lead := range f.leads {
		if lead.Email == email {
			return lead, nil
		}
	}
	return domain.Lead{}, repository.ErrNotFound
}

func (f *fakeStore) List(_ context.Context, params repository.ListParams) ([]domain.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		out = append(out, lead)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	total := len(out)
	if params.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[params.Offset:]
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, total, nil
}

func (f *fakeStore) ListSleeping(_ context.Context, limit, offset int) ([]domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sleeping := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if lead.AvailabilityStatus.Asleep() {
			sleeping = append(sleeping, lead)
		}
	}
	sort.Slice(sleeping, func(i, j int) bool {
		var a, b time.Time
		if sleeping[i].Sleep != nil {
			a = sleeping[i].Sleep.LastCheckedAt
		}
		if sleeping[j].Sleep != nil {
			b = sleeping[j].Sleep.LastCheckedAt
		}
		if a.Equal(b) {
			return sleeping[i].ID.String() < sleeping[j].ID.String()
		}
		return a.Before(b)
	})
	if offset >= len(sleeping) {
		return nil, nil
	}
	sleeping = sleeping[offset:]
	if len(sleeping) > limit {
		sleeping = sleeping[:limit]
	}
	return sleeping, nil
}

// LeadWriter

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.leads {
		if existing.Email == params.Email {
			return domain.Lead{}, repository.ErrDuplicateEmail
		}
	}
	now := time.Now()
	lead := domain.Lead{
		ID:                 uuid.New(),
		Email:              params.Email,
		FirstName:          params.FirstName,
		LastName:           params.LastName,
		Phone:              params.Phone,
		Country:            params.Country,
		Type:               params.LeadType,
		AvailabilityStatus: domain.AvailabilityAvailable,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if params.LeadType == domain.LeadTypeFTD {
		profile := domain.FTDProfile{}
		if params.FTDSin != nil {
			profile.SIN = *params.FTDSin
		}
		lead.FTD = &profile
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) SetAgentAssignment(_ context.Context, id uuid.UUID, agentID *uuid.UUID) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.AssignedTo = agentID
	lead.IsAssigned = agentID != nil
	if agentID != nil {
		now := time.Now()
		lead.AssignedAt = &now
	} else {
		lead.AssignedAt = nil
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) SetAvailability(_ context.Context, id uuid.UUID, status domain.AvailabilityStatus, details *domain.SleepDetails) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.AvailabilityStatus = status
	if details != nil {
		copied := *details
		lead.Sleep = &copied
	} else {
		lead.Sleep = nil
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) AppendDocumentKey(_ context.Context, id uuid.UUID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	if lead.FTD == nil {
		lead.FTD = &domain.FTDProfile{}
	}
	lead.FTD.DocumentKeys = append(lead.FTD.DocumentKeys, key)
	f.leads[id] = lead
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

// BrokerAssignmentStore

func (f *fakeStore) AssignBroker(_ context.Context, params repository.AssignBrokerParams) (domain.BrokerAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[params.LeadID]; !ok {
		return domain.BrokerAssignment{}, repository.ErrNotFound
	}

	active := f.activeBrokers[params.LeadID]
	present := false
	for _, id := range active {
		if id == params.ClientBrokerID {
			present = true
			break
		}
	}
	if !present {
		f.activeBrokers[params.LeadID] = append(active, params.ClientBrokerID)
	}

	f.seq++
	record := domain.BrokerAssignment{
		ID:                    uuid.New(),
		Seq:                   f.seq,
		LeadID:                params.LeadID,
		ClientBrokerID:        params.ClientBrokerID,
		OrderID:               params.OrderID,
		AssignedBy:            params.AssignedBy,
		IntermediaryNetworkID: params.IntermediaryNetworkID,
		Status:                domain.InjectionPending,
		Domain:                params.Domain,
		AssignedAt:            time.Now(),
	}
	f.brokerHistory = append(f.brokerHistory, record)
	return record, nil
}

func (f *fakeStore) RemoveActiveBroker(_ context.Context, leadID, brokerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	active := f.activeBrokers[leadID]
	kept := active[:0]
	for _, id := range active {
		if id != brokerID {
			kept = append(kept, id)
		}
	}
	f.activeBrokers[leadID] = kept
	return nil
}

func (f *fakeStore) ActiveBrokerIDs(_ context.Context, leadID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.activeBrokers[leadID]...), nil
}

func (f *fakeStore) IsActiveBroker(_ context.Context, leadID, brokerID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.activeBrokers[leadID] {
		if id == brokerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListBrokerAssignments(_ context.Context, leadID uuid.UUID) ([]domain.BrokerAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.BrokerAssignment, 0)
	for _, record := range f.brokerHistory {
		if record.LeadID == leadID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeStore) BrokersEverAssigned(_ context.Context, leadID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	out := make([]uuid.UUID, 0)
	for _, record := range f.brokerHistory {
		if record.LeadID == leadID && !seen[record.ClientBrokerID] {
			seen[record.ClientBrokerID] = true
			out = append(out, record.ClientBrokerID)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateLatestInjection(_ context.Context, leadID, orderID uuid.UUID, status domain.InjectionStatus, domainName *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := -1
	for i, record := range f.brokerHistory {
		if record.LeadID == leadID && record.OrderID == orderID {
			if latest < 0 || record.Seq > f.brokerHistory[latest].Seq {
				latest = i
			}
		}
	}
	if latest < 0 {
		return false, nil
	}
	f.brokerHistory[latest].Status = status
	if domainName != nil {
		f.brokerHistory[latest].Domain = domainName
	}
	return true, nil
}

// NetworkAssignmentStore

func (f *fakeStore) AppendNetworkAssignment(_ context.Context, params repository.AssignNetworkParams) (domain.NetworkAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[params.LeadID]; !ok {
		return domain.NetworkAssignment{}, repository.ErrNotFound
	}
	for _, record := range f.networks {
		if record.LeadID == params.LeadID && record.ClientNetworkID == params.ClientNetworkID && record.OrderID == params.OrderID {
			return domain.NetworkAssignment{}, repository.ErrDuplicateNetworkAssignment
		}
	}

	f.seq++
	record := domain.NetworkAssignment{
		ID:              uuid.New(),
		Seq:             f.seq,
		LeadID:          params.LeadID,
		ClientNetworkID: params.ClientNetworkID,
		OrderID:         params.OrderID,
		AssignedBy:      params.AssignedBy,
		Status:          domain.NetworkInjectionPending,
		Type:            params.InjectionType,
		AssignedAt:      time.Now(),
	}
	f.networks = append(f.networks, record)
	return record, nil
}

func (f *fakeStore) ListNetworkAssignments(_ context.Context, leadID uuid.UUID) ([]domain.NetworkAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.NetworkAssignment, 0)
	for _, record := range f.networks {
		if record.LeadID == leadID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeStore) SetNetworkInjectionResult(_ context.Context, leadID, networkID, orderID uuid.UUID, params repository.NetworkResultParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, record := range f.networks {
		if record.LeadID == leadID && record.ClientNetworkID == networkID && record.OrderID == orderID {
			f.networks[i].Status = params.Status
			if params.InjectionType != nil {
				f.networks[i].Type = params.InjectionType
			}
			if params.Domain != nil {
				f.networks[i].Domain = params.Domain
			}
			if params.Notes != nil {
				f.networks[i].Notes = params.Notes
			}
			return true, nil
		}
	}
	return false, nil
}

// ProxyLeaseStore

func (f *fakeStore) InsertProxyLease(_ context.Context, leadID, proxyID, orderID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[leadID]; !ok {
		return false, repository.ErrNotFound
	}
	for _, lease := range f.proxyLeases {
		if lease.LeadID == leadID && lease.OrderID == orderID && lease.Status == domain.ProxyLeaseActive {
			return false, nil
		}
	}
	f.proxyLeases = append(f.proxyLeases, domain.ProxyLease{
		ID:         uuid.New(),
		LeadID:     leadID,
		ProxyID:    proxyID,
		OrderID:    orderID,
		Status:     domain.ProxyLeaseActive,
		AssignedAt: time.Now(),
	})
	return true, nil
}

func (f *fakeStore) ActiveProxyLease(_ context.Context, leadID, orderID uuid.UUID) (*domain.ProxyLease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lease := range f.proxyLeases {
		if lease.LeadID == leadID && lease.OrderID == orderID && lease.Status == domain.ProxyLeaseActive {
			copied := lease
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CompleteProxyLease(_ context.Context, leadID, orderID uuid.UUID, status domain.ProxyLeaseStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, lease := range f.proxyLeases {
		if lease.LeadID == leadID && lease.OrderID == orderID && lease.Status == domain.ProxyLeaseActive {
			now := time.Now()
			f.proxyLeases[i].Status = status
			f.proxyLeases[i].CompletedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListProxyLeases(_ context.Context, leadID uuid.UUID) ([]domain.ProxyLease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ProxyLease, 0)
	for _, lease := range f.proxyLeases {
		if lease.LeadID == leadID {
			out = append(out, lease)
		}
	}
	return out, nil
}

// FingerprintStore

func (f *fakeStore) GetFingerprint(_ context.Context, leadID uuid.UUID) (*domain.Fingerprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.fingerprints[leadID]
	if !ok {
		return nil, nil
	}
	copied := record
	return &copied, nil
}

func (f *fakeStore) InsertFingerprint(_ context.Context, params repository.InsertFingerprintParams) (domain.Fingerprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fingerprints[params.LeadID]; ok {
		return domain.Fingerprint{}, repository.ErrFingerprintExists
	}
	record := domain.Fingerprint{
		ID:         params.ID,
		LeadID:     params.LeadID,
		DeviceType: params.DeviceType,
		CreatedBy:  params.CreatedBy,
		CreatedAt:  time.Now(),
	}
	f.fingerprints[params.LeadID] = record
	return record, nil
}

func (f *fakeStore) ReplaceFingerprint(_ context.Context, params repository.InsertFingerprintParams) (domain.Fingerprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record := domain.Fingerprint{
		ID:         params.ID,
		LeadID:     params.LeadID,
		DeviceType: params.DeviceType,
		CreatedBy:  params.CreatedBy,
		CreatedAt:  time.Now(),
	}
	f.fingerprints[params.LeadID] = record
	return record, nil
}

// fakeBus records published events in order.
type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

func (b *fakeBus) eventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.published))
	for i, event := range b.published {
		names[i] = event.EventName()
	}
	return names
}

// fakeDirectory returns a fixed enabled set.
type fakeDirectory struct {
	mu      sync.Mutex
	enabled []uuid.UUID
}

func (d *fakeDirectory) EnabledBrokerIDs(context.Context) ([]uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uuid.UUID(nil), d.enabled...), nil
}

// fakeFactory tracks created and deleted profile ids.
type fakeFactory struct {
	mu        sync.Mutex
	created   []uuid.UUID
	deleted   []uuid.UUID
	createErr error
}

func (f *fakeFactory) CreateProfile(_ context.Context, _ uuid.UUID, _ string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	id := uuid.New()
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeFactory) DeleteProfile(_ context.Context, fingerprintID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fingerprintID)
	return nil
}

// fakeDocuments stores document contents keyed by the generated object key.
type fakeDocuments struct {
	mu     sync.Mutex
	stored map[string][]byte
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{stored: make(map[string][]byte)}
}

func (d *fakeDocuments) StoreDocument(_ context.Context, leadID uuid.UUID, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	key := fmt.Sprintf("leads/%s/documents/%s", leadID, fileName)
	d.stored[key] = data
	return key, nil
}

func (d *fakeDocuments) DocumentURL(_ context.Context, key string) (ports.DocumentLink, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.stored[key]; !ok {
		return ports.DocumentLink{}, fmt.Errorf("unknown document key %q", key)
	}
	return ports.DocumentLink{
		Key:       key,
		URL:       "https://storage.example/" + key,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func testLogger() *logger.Logger {
	return logger.New("production")
}
