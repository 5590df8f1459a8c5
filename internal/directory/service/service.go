// Package service implements directory management: the broker and network
// inventory the assignment engine places leads against.
package service

import (
	"context"
	"errors"

	"leadops_backend/internal/directory/domain"
	"leadops_backend/internal/directory/repository"
	"leadops_backend/internal/events"
	"leadops_backend/platform/apperr"

	"github.com/google/uuid"
)

var ErrBrokerNotFound = apperr.NotFound("client broker not found")

type Service struct {
	repo *repository.Repository
	bus  events.Bus
}

func New(repo *repository.Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// CreateBroker registers a client broker. A broker created enabled widens
// the inventory, so the change is announced for the wake sweep.
func (s *Service) CreateBroker(ctx context.Context, name, domainName string, enabled bool) (domain.ClientBroker, error) {
	if name == "" {
		return domain.ClientBroker{}, apperr.Validation("broker name is required")
	}

	broker, err := s.repo.CreateBroker(ctx, repository.CreateBrokerParams{
		Name:    name,
		Domain:  domainName,
		Enabled: enabled,
	})
	if err != nil {
		return domain.ClientBroker{}, err
	}

	if enabled {
		s.publishInventoryChange(ctx, broker.ID, true)
	}
	return broker, nil
}

func (s *Service) GetBroker(ctx context.Context, id uuid.UUID) (domain.ClientBroker, error) {
	broker, err := s.repo.GetBroker(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ClientBroker{}, ErrBrokerNotFound
	}
	return broker, err
}

func (s *Service) ListBrokers(ctx context.Context) ([]domain.ClientBroker, error) {
	return s.repo.ListBrokers(ctx)
}

// EnabledBrokerIDs satisfies the leads module's broker directory port.
func (s *Service) EnabledBrokerIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.EnabledBrokerIDs(ctx)
}

// SetBrokerEnabled flips a broker's availability and announces the change.
func (s *Service) SetBrokerEnabled(ctx context.Context, id uuid.UUID, enabled bool) (domain.ClientBroker, error) {
	broker, err := s.repo.SetBrokerEnabled(ctx, id, enabled)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ClientBroker{}, ErrBrokerNotFound
	}
	if err != nil {
		return domain.ClientBroker{}, err
	}

	s.publishInventoryChange(ctx, broker.ID, enabled)
	return broker, nil
}

func (s *Service) CreateNetwork(ctx context.Context, name string, enabled bool) (domain.ClientNetwork, error) {
	if name == "" {
		return domain.ClientNetwork{}, apperr.Validation("network name is required")
	}
	return s.repo.CreateNetwork(ctx, name, enabled)
}

func (s *Service) ListNetworks(ctx context.Context) ([]domain.ClientNetwork, error) {
	return s.repo.ListNetworks(ctx)
}

func (s *Service) publishInventoryChange(ctx context.Context, brokerID uuid.UUID, enabled bool) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.BrokerInventoryChanged{
		BaseEvent:      events.NewBaseEvent(),
		ClientBrokerID: brokerID,
		Enabled:        enabled,
	})
}
