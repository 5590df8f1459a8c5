package repository

import (
	"context"

	"leadops_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	GetByEmail(ctx context.Context, email string) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
	ListSleeping(ctx context.Context, limit, offset int) ([]domain.Lead, error)
}

// LeadWriter provides write operations on the lead row itself.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	SetAgentAssignment(ctx context.Context, id uuid.UUID, agentID *uuid.UUID) (domain.Lead, error)
	SetAvailability(ctx context.Context, id uuid.UUID, status domain.AvailabilityStatus, details *domain.SleepDetails) (domain.Lead, error)
	AppendDocumentKey(ctx context.Context, id uuid.UUID, key string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BrokerAssignmentStore holds the active broker set and the append-only
// placement history.
//
// Contract: AssignBroker is idempotent on the active set but always appends a
// history record. UpdateLatestInjection targets the most recently appended
// record for (lead, order) and reports false when none matches.
type BrokerAssignmentStore interface {
	AssignBroker(ctx context.Context, params AssignBrokerParams) (domain.BrokerAssignment, error)
	RemoveActiveBroker(ctx context.Context, leadID, brokerID uuid.UUID) error
	ActiveBrokerIDs(ctx context.Context, leadID uuid.UUID) ([]uuid.UUID, error)
	IsActiveBroker(ctx context.Context, leadID, brokerID uuid.UUID) (bool, error)
	ListBrokerAssignments(ctx context.Context, leadID uuid.UUID) ([]domain.BrokerAssignment, error)
	BrokersEverAssigned(ctx context.Context, leadID uuid.UUID) ([]uuid.UUID, error)
	UpdateLatestInjection(ctx context.Context, leadID, orderID uuid.UUID, status domain.InjectionStatus, domainName *string) (bool, error)
}

// NetworkAssignmentStore holds the per-(network, order) routing records.
//
// Contract: AppendNetworkAssignment returns ErrDuplicateNetworkAssignment
// when a record for (lead, network, order) already exists; exactly one of two
// concurrent duplicate attempts succeeds.
type NetworkAssignmentStore interface {
	AppendNetworkAssignment(ctx context.Context, params AssignNetworkParams) (domain.NetworkAssignment, error)
	ListNetworkAssignments(ctx context.Context, leadID uuid.UUID) ([]domain.NetworkAssignment, error)
	SetNetworkInjectionResult(ctx context.Context, leadID, networkID, orderID uuid.UUID, params NetworkResultParams) (bool, error)
}

// ProxyLeaseStore holds per-order proxy leases.
//
// Contract: InsertProxyLease reports leased=false when an active lease for
// (lead, order) already exists, with no error and no new row.
type ProxyLeaseStore interface {
	InsertProxyLease(ctx context.Context, leadID, proxyID, orderID uuid.UUID) (bool, error)
	ActiveProxyLease(ctx context.Context, leadID, orderID uuid.UUID) (*domain.ProxyLease, error)
	CompleteProxyLease(ctx context.Context, leadID, orderID uuid.UUID, status domain.ProxyLeaseStatus) (bool, error)
	ListProxyLeases(ctx context.Context, leadID uuid.UUID) ([]domain.ProxyLease, error)
}

// FingerprintStore holds the at-most-one fingerprint reference per lead.
//
// Contract: InsertFingerprint returns ErrFingerprintExists when the lead
// already holds a fingerprint; ReplaceFingerprint swaps the stored reference
// atomically.
type FingerprintStore interface {
	GetFingerprint(ctx context.Context, leadID uuid.UUID) (*domain.Fingerprint, error)
	InsertFingerprint(ctx context.Context, params InsertFingerprintParams) (domain.Fingerprint, error)
	ReplaceFingerprint(ctx context.Context, params InsertFingerprintParams) (domain.Fingerprint, error)
}

// FulfillmentReader provides the read-side order progress aggregation.
type FulfillmentReader interface {
	CountOrderFulfillment(ctx context.Context, orderID uuid.UUID) ([]FulfillmentRow, error)
}

// Store is the full persistence surface the leads services depend on.
type Store interface {
	LeadReader
	LeadWriter
	BrokerAssignmentStore
	NetworkAssignmentStore
	ProxyLeaseStore
	FingerprintStore
	FulfillmentReader
}
