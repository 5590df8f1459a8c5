// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadops_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	LeadType string    `json:"leadType"`
	Email    string    `json:"email"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadPutToSleep is published when a lead is parked because no client broker
// can currently accept it.
type LeadPutToSleep struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Reason string    `json:"reason"`
}

func (e LeadPutToSleep) EventName() string { return "leads.lead.put_to_sleep" }

// LeadWokenUp is published when a sleeping lead becomes placeable again.
type LeadWokenUp struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadWokenUp) EventName() string { return "leads.lead.woken_up" }

// InjectionReported is published when an external injection outcome is
// recorded against a lead's assignment history.
type InjectionReported struct {
	BaseEvent
	LeadID  uuid.UUID `json:"leadId"`
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
	Domain  string    `json:"domain,omitempty"`
}

func (e InjectionReported) EventName() string { return "leads.injection.reported" }

// =============================================================================
// Directory Domain Events
// =============================================================================

// BrokerInventoryChanged is published when the set of enabled client brokers
// changes (broker added, enabled or disabled). Subscribers use it to schedule
// the availability wake sweep.
type BrokerInventoryChanged struct {
	BaseEvent
	ClientBrokerID uuid.UUID `json:"clientBrokerId"`
	Enabled        bool      `json:"enabled"`
}

func (e BrokerInventoryChanged) EventName() string { return "directory.broker.inventory_changed" }
