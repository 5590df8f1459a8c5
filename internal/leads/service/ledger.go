package service

import (
	"context"
	"errors"

	"leadops_backend/internal/events"
	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/repository"
	"leadops_backend/platform/apperr"
	"leadops_backend/platform/logger"

	"github.com/google/uuid"
)

// Ledger records where leads are placed. Broker placements keep a current
// set plus an append-only history; network placements are one record per
// (network, order) pair.
type Ledger struct {
	brokers  repository.BrokerAssignmentStore
	networks repository.NetworkAssignmentStore
	bus      events.Bus
	log      *logger.Logger
}

func NewLedger(brokers repository.BrokerAssignmentStore, networks repository.NetworkAssignmentStore, bus events.Bus, log *logger.Logger) *Ledger {
	return &Ledger{brokers: brokers, networks: networks, bus: bus, log: log}
}

type AssignBrokerInput struct {
	LeadID                uuid.UUID
	ClientBrokerID        uuid.UUID
	OrderID               uuid.UUID
	AssignedBy            uuid.UUID
	IntermediaryNetworkID *uuid.UUID
	Domain                *string
}

// AssignBroker places a lead with a client broker. Re-assigning the same
// broker leaves the active set unchanged but still appends a history record,
// so every placement attempt stays auditable.
func (s *Ledger) AssignBroker(ctx context.Context, input AssignBrokerInput) (domain.BrokerAssignment, error) {
	record, err := s.brokers.AssignBroker(ctx, repository.AssignBrokerParams{
		LeadID:                input.LeadID,
		ClientBrokerID:        input.ClientBrokerID,
		OrderID:               input.OrderID,
		AssignedBy:            input.AssignedBy,
		IntermediaryNetworkID: input.IntermediaryNetworkID,
		Domain:                input.Domain,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return domain.BrokerAssignment{}, ErrLeadNotFound
	}
	if err != nil {
		return domain.BrokerAssignment{}, err
	}

	s.log.Assignment("assign_broker", input.LeadID.String(), input.ClientBrokerID.String(), input.OrderID.String())
	return record, nil
}

// UnassignBroker removes a broker from the lead's active set. The history is
// append-only and keeps every record for the pair.
func (s *Ledger) UnassignBroker(ctx context.Context, leadID, brokerID uuid.UUID) error {
	if err := s.brokers.RemoveActiveBroker(ctx, leadID, brokerID); err != nil {
		return err
	}
	s.log.Assignment("unassign_broker", leadID.String(), brokerID.String(), "")
	return nil
}

func (s *Ledger) IsAssignedToBroker(ctx context.Context, leadID, brokerID uuid.UUID) (bool, error) {
	return s.brokers.IsActiveBroker(ctx, leadID, brokerID)
}

func (s *Ledger) ActiveBrokers(ctx context.Context, leadID uuid.UUID) ([]uuid.UUID, error) {
	return s.brokers.ActiveBrokerIDs(ctx, leadID)
}

func (s *Ledger) BrokerHistory(ctx context.Context, leadID uuid.UUID) ([]domain.BrokerAssignment, error) {
	return s.brokers.ListBrokerAssignments(ctx, leadID)
}

// UpdateInjectionStatus records an external injection outcome against the
// most recent broker placement for (lead, order). Callbacks arrive from a
// system we don't control and may reference records that no longer match
// anything, so a miss is deliberately swallowed rather than surfaced.
func (s *Ledger) UpdateInjectionStatus(ctx context.Context, leadID, orderID uuid.UUID, status domain.InjectionStatus, domainName *string) error {
	if !status.Valid() {
		return apperr.Validation("unknown injection status")
	}

	updated, err := s.brokers.UpdateLatestInjection(ctx, leadID, orderID, status, domainName)
	if err != nil {
		return err
	}
	if !updated {
		s.log.Warn("injection status callback matched no assignment record",
			"lead_id", leadID.String(), "order_id", orderID.String(), "status", string(status))
		return nil
	}

	if s.bus != nil {
		evt := events.InjectionReported{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			OrderID:   orderID,
			Status:    string(status),
		}
		if domainName != nil {
			evt.Domain = *domainName
		}
		s.bus.Publish(ctx, evt)
	}
	return nil
}

type AssignNetworkInput struct {
	LeadID          uuid.UUID
	ClientNetworkID uuid.UUID
	OrderID         uuid.UUID
	AssignedBy      uuid.UUID
	InjectionType   *domain.InjectionType
}

// AssignNetwork routes a lead through an intermediary network for an order.
// A second attempt for the same (network, order) pair is rejected.
func (s *Ledger) AssignNetwork(ctx context.Context, input AssignNetworkInput) (domain.NetworkAssignment, error) {
	record, err := s.networks.AppendNetworkAssignment(ctx, repository.AssignNetworkParams{
		LeadID:          input.LeadID,
		ClientNetworkID: input.ClientNetworkID,
		OrderID:         input.OrderID,
		AssignedBy:      input.AssignedBy,
		InjectionType:   input.InjectionType,
	})
	if errors.Is(err, repository.ErrDuplicateNetworkAssignment) {
		return domain.NetworkAssignment{}, ErrDuplicateAssignment
	}
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NetworkAssignment{}, ErrLeadNotFound
	}
	if err != nil {
		return domain.NetworkAssignment{}, err
	}

	s.log.Assignment("assign_network", input.LeadID.String(), input.ClientNetworkID.String(), input.OrderID.String())
	return record, nil
}

func (s *Ledger) NetworkHistory(ctx context.Context, leadID uuid.UUID) ([]domain.NetworkAssignment, error) {
	return s.networks.ListNetworkAssignments(ctx, leadID)
}

type NetworkResultInput struct {
	Status        domain.NetworkInjectionStatus
	InjectionType *domain.InjectionType
	Domain        *string
	Notes         *string
}

// SetNetworkInjectionResult records the delivery outcome on a network
// placement. Like broker callbacks, a stale reference is a logged no-op.
func (s *Ledger) SetNetworkInjectionResult(ctx context.Context, leadID, networkID, orderID uuid.UUID, input NetworkResultInput) error {
	if !input.Status.Valid() {
		return apperr.Validation("unknown network injection status")
	}

	updated, err := s.networks.SetNetworkInjectionResult(ctx, leadID, networkID, orderID, repository.NetworkResultParams{
		Status:        input.Status,
		InjectionType: input.InjectionType,
		Domain:        input.Domain,
		Notes:         input.Notes,
	})
	if err != nil {
		return err
	}
	if !updated {
		s.log.Warn("network injection result matched no assignment record",
			"lead_id", leadID.String(), "order_id", orderID.String(), "network_id", networkID.String())
		return nil
	}

	if s.bus != nil {
		evt := events.InjectionReported{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			OrderID:   orderID,
			Status:    string(input.Status),
		}
		if input.Domain != nil {
			evt.Domain = *input.Domain
		}
		s.bus.Publish(ctx, evt)
	}
	return nil
}
