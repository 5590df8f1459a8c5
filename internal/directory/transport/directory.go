package transport

import (
	"time"

	"leadops_backend/internal/directory/domain"

	"github.com/google/uuid"
)

type CreateBrokerRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Domain  string `json:"domain" validate:"omitempty,max=255"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type SetBrokerEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type BrokerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToBrokerResponse(broker domain.ClientBroker) BrokerResponse {
	return BrokerResponse{
		ID:        broker.ID,
		Name:      broker.Name,
		Domain:    broker.Domain,
		Enabled:   broker.Enabled,
		CreatedAt: broker.CreatedAt,
		UpdatedAt: broker.UpdatedAt,
	}
}

type CreateNetworkRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type NetworkResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToNetworkResponse(network domain.ClientNetwork) NetworkResponse {
	return NetworkResponse{
		ID:        network.ID,
		Name:      network.Name,
		Enabled:   network.Enabled,
		CreatedAt: network.CreatedAt,
		UpdatedAt: network.UpdatedAt,
	}
}
