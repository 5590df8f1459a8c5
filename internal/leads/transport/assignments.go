package transport

import (
	"time"

	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// Broker assignments

type AssignBrokerRequest struct {
	ClientBrokerID        uuid.UUID  `json:"clientBrokerId" validate:"required"`
	OrderID               uuid.UUID  `json:"orderId" validate:"required"`
	IntermediaryNetworkID *uuid.UUID `json:"intermediaryNetworkId,omitempty"`
	Domain                *string    `json:"domain,omitempty" validate:"omitempty,max=255"`
}

type BrokerAssignmentResponse struct {
	ID                    uuid.UUID  `json:"id"`
	LeadID                uuid.UUID  `json:"leadId"`
	ClientBrokerID        uuid.UUID  `json:"clientBrokerId"`
	OrderID               uuid.UUID  `json:"orderId"`
	AssignedBy            uuid.UUID  `json:"assignedBy"`
	IntermediaryNetworkID *uuid.UUID `json:"intermediaryNetworkId,omitempty"`
	InjectionStatus       string     `json:"injectionStatus"`
	Domain                *string    `json:"domain,omitempty"`
	AssignedAt            time.Time  `json:"assignedAt"`
}

func ToBrokerAssignmentResponse(record domain.BrokerAssignment) BrokerAssignmentResponse {
	return BrokerAssignmentResponse{
		ID:                    record.ID,
		LeadID:                record.LeadID,
		ClientBrokerID:        record.ClientBrokerID,
		OrderID:               record.OrderID,
		AssignedBy:            record.AssignedBy,
		IntermediaryNetworkID: record.IntermediaryNetworkID,
		InjectionStatus:       string(record.Status),
		Domain:                record.Domain,
		AssignedAt:            record.AssignedAt,
	}
}

type UpdateInjectionStatusRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	Status  string    `json:"status" validate:"required,oneof=pending successful failed"`
	Domain  *string   `json:"domain,omitempty" validate:"omitempty,max=255"`
}

// Network assignments

type AssignNetworkRequest struct {
	ClientNetworkID uuid.UUID `json:"clientNetworkId" validate:"required"`
	OrderID         uuid.UUID `json:"orderId" validate:"required"`
	InjectionType   *string   `json:"injectionType,omitempty" validate:"omitempty,oneof=auto manual_ftd"`
}

type NetworkAssignmentResponse struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"leadId"`
	ClientNetworkID uuid.UUID `json:"clientNetworkId"`
	OrderID         uuid.UUID `json:"orderId"`
	AssignedBy      uuid.UUID `json:"assignedBy"`
	InjectionStatus string    `json:"injectionStatus"`
	InjectionType   *string   `json:"injectionType,omitempty"`
	Domain          *string   `json:"domain,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	AssignedAt      time.Time `json:"assignedAt"`
}

func ToNetworkAssignmentResponse(record domain.NetworkAssignment) NetworkAssignmentResponse {
	resp := NetworkAssignmentResponse{
		ID:              record.ID,
		LeadID:          record.LeadID,
		ClientNetworkID: record.ClientNetworkID,
		OrderID:         record.OrderID,
		AssignedBy:      record.AssignedBy,
		InjectionStatus: string(record.Status),
		Domain:          record.Domain,
		Notes:           record.Notes,
		AssignedAt:      record.AssignedAt,
	}
	if record.Type != nil {
		value := string(*record.Type)
		resp.InjectionType = &value
	}
	return resp
}

type NetworkInjectionResultRequest struct {
	OrderID       uuid.UUID `json:"orderId" validate:"required"`
	Status        string    `json:"status" validate:"required,oneof=pending completed failed"`
	InjectionType *string   `json:"injectionType,omitempty" validate:"omitempty,oneof=auto manual_ftd"`
	Domain        *string   `json:"domain,omitempty" validate:"omitempty,max=255"`
	Notes         *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// AssignmentHistoryResponse bundles both ledgers for one lead.
type AssignmentHistoryResponse struct {
	ActiveBrokerIDs    []uuid.UUID                 `json:"activeBrokerIds"`
	BrokerAssignments  []BrokerAssignmentResponse  `json:"brokerAssignments"`
	NetworkAssignments []NetworkAssignmentResponse `json:"networkAssignments"`
}

// Fingerprints

type AssignFingerprintRequest struct {
	DeviceType string `json:"deviceType" validate:"required,oneof=desktop mobile tablet"`
}

type UpdateDeviceTypeRequest struct {
	DeviceType string `json:"deviceType" validate:"required,oneof=desktop mobile tablet"`
}

type FingerprintResponse struct {
	ID         uuid.UUID `json:"id"`
	LeadID     uuid.UUID `json:"leadId"`
	DeviceType string    `json:"deviceType"`
	CreatedBy  uuid.UUID `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func ToFingerprintResponse(record domain.Fingerprint) FingerprintResponse {
	return FingerprintResponse{
		ID:         record.ID,
		LeadID:     record.LeadID,
		DeviceType: record.DeviceType,
		CreatedBy:  record.CreatedBy,
		CreatedAt:  record.CreatedAt,
	}
}

// Proxy leases

type AssignProxyRequest struct {
	ProxyID uuid.UUID `json:"proxyId" validate:"required"`
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

type CompleteProxyRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	Status  string    `json:"status" validate:"required,oneof=completed failed"`
}

type ProxyLeaseResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	ProxyID     uuid.UUID  `json:"proxyId"`
	OrderID     uuid.UUID  `json:"orderId"`
	Status      string     `json:"status"`
	AssignedAt  time.Time  `json:"assignedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func ToProxyLeaseResponse(lease domain.ProxyLease) ProxyLeaseResponse {
	return ProxyLeaseResponse{
		ID:          lease.ID,
		LeadID:      lease.LeadID,
		ProxyID:     lease.ProxyID,
		OrderID:     lease.OrderID,
		Status:      string(lease.Status),
		AssignedAt:  lease.AssignedAt,
		CompletedAt: lease.CompletedAt,
	}
}

// AssignProxyResponse reports whether a new lease was created or an existing
// active lease was returned.
type AssignProxyResponse struct {
	Lease  ProxyLeaseResponse `json:"lease"`
	Leased bool               `json:"leased"`
}

type DocumentUploadResponse struct {
	Key string `json:"key"`
}

// DocumentLinkResponse is a presigned download link for one stored document.
type DocumentLinkResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func ToDocumentLinkResponse(link ports.DocumentLink) DocumentLinkResponse {
	return DocumentLinkResponse{
		Key:       link.Key,
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt,
	}
}
