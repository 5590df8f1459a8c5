// Package domain contains the lead aggregate types and the pure rules that
// govern assignment history, availability and fulfillment accounting.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadType classifies a lead. Immutable after creation; only FTD leads carry
// identity documents and require manual injection.
type LeadType string

const (
	LeadTypeFTD    LeadType = "ftd"
	LeadTypeFiller LeadType = "filler"
	LeadTypeCold   LeadType = "cold"
	LeadTypeLive   LeadType = "live"
)

// Valid reports whether t is a known lead type.
func (t LeadType) Valid() bool {
	switch t {
	case LeadTypeFTD, LeadTypeFiller, LeadTypeCold, LeadTypeLive:
		return true
	}
	return false
}

// RequiresManualInjection reports whether delivery for this lead type is
// always performed by a human.
func (t LeadType) RequiresManualInjection() bool { return t == LeadTypeFTD }

// AvailabilityStatus is the broker-availability state of a lead.
type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "available"
	AvailabilitySleep     AvailabilityStatus = "sleep"
	// AvailabilityNoBrokers marks sleep caused specifically by broker
	// exhaustion. Queried together with AvailabilitySleep by the wake sweep.
	AvailabilityNoBrokers AvailabilityStatus = "not_available_brokers"
)

// Asleep reports whether the lead is out of circulation.
func (s AvailabilityStatus) Asleep() bool {
	return s == AvailabilitySleep || s == AvailabilityNoBrokers
}

// InjectionStatus is the delivery outcome of a broker placement attempt.
type InjectionStatus string

const (
	InjectionPending    InjectionStatus = "pending"
	InjectionSuccessful InjectionStatus = "successful"
	InjectionFailed     InjectionStatus = "failed"
)

// Valid reports whether s is a known broker injection status.
func (s InjectionStatus) Valid() bool {
	switch s {
	case InjectionPending, InjectionSuccessful, InjectionFailed:
		return true
	}
	return false
}

// NetworkInjectionStatus is the delivery outcome of a network placement.
type NetworkInjectionStatus string

const (
	NetworkInjectionPending   NetworkInjectionStatus = "pending"
	NetworkInjectionCompleted NetworkInjectionStatus = "completed"
	NetworkInjectionFailed    NetworkInjectionStatus = "failed"
)

// Valid reports whether s is a known network injection status.
func (s NetworkInjectionStatus) Valid() bool {
	switch s {
	case NetworkInjectionPending, NetworkInjectionCompleted, NetworkInjectionFailed:
		return true
	}
	return false
}

// InjectionType distinguishes automated from manual FTD delivery.
type InjectionType string

const (
	InjectionTypeAuto      InjectionType = "auto"
	InjectionTypeManualFTD InjectionType = "manual_ftd"
)

// ProxyLeaseStatus is the state of a per-order proxy lease.
type ProxyLeaseStatus string

const (
	ProxyLeaseActive    ProxyLeaseStatus = "active"
	ProxyLeaseCompleted ProxyLeaseStatus = "completed"
	ProxyLeaseFailed    ProxyLeaseStatus = "failed"
)

// Terminal reports whether the lease status ends the lease.
func (s ProxyLeaseStatus) Terminal() bool {
	return s == ProxyLeaseCompleted || s == ProxyLeaseFailed
}

// SleepDetails is populated only while a lead is asleep. Waking resets the
// whole structure so stale reasons never leak forward.
type SleepDetails struct {
	PutToSleepAt  time.Time
	Reason        string
	LastCheckedAt time.Time
}

// FTDProfile carries the identity data only FTD leads have. Non-FTD leads
// hold a nil profile; presence is enforced at creation.
type FTDProfile struct {
	SIN          string
	DocumentKeys []string
}

// Lead is the root aggregate. Assignment history, leases and the active
// broker set live in their own stores keyed by the lead id.
type Lead struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Country   string
	Type      LeadType

	// Agent-level assignment, independent of broker assignment.
	IsAssigned bool
	AssignedTo *uuid.UUID
	AssignedAt *time.Time

	AvailabilityStatus AvailabilityStatus
	Sleep              *SleepDetails

	FingerprintID *uuid.UUID
	DeviceType    *string

	FTD *FTDProfile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BrokerAssignment is one attempt to place a lead with a client broker,
// scoped to an order. Immutable once appended except Status and Domain.
type BrokerAssignment struct {
	ID                    uuid.UUID
	Seq                   int64
	LeadID                uuid.UUID
	ClientBrokerID        uuid.UUID
	OrderID               uuid.UUID
	AssignedBy            uuid.UUID
	IntermediaryNetworkID *uuid.UUID
	Status                InjectionStatus
	Domain                *string
	AssignedAt            time.Time
}

// NetworkAssignment records routing of a lead through a client network for an
// order. A lead may hold at most one record per (network, order) pair.
type NetworkAssignment struct {
	ID              uuid.UUID
	Seq             int64
	LeadID          uuid.UUID
	ClientNetworkID uuid.UUID
	OrderID         uuid.UUID
	AssignedBy      uuid.UUID
	Status          NetworkInjectionStatus
	Type            *InjectionType
	Domain          *string
	Notes           *string
	AssignedAt      time.Time
}

// ProxyLease is a per-order exclusive proxy assignment.
type ProxyLease struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	ProxyID     uuid.UUID
	OrderID     uuid.UUID
	Status      ProxyLeaseStatus
	AssignedAt  time.Time
	CompletedAt *time.Time
}

// Fingerprint references the external device-identity resource held by a
// lead. The resource itself is owned by the fingerprint factory.
type Fingerprint struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	DeviceType string
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}
