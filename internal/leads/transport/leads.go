package transport

import (
	"time"

	"leadops_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Leads

type CreateLeadRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Country   string `json:"country" validate:"omitempty,len=2"`
	LeadType  string `json:"leadType" validate:"required,oneof=ftd filler cold live"`
	FTDSin    string `json:"ftdSin,omitempty" validate:"omitempty,min=3,max=32"`
}

type ListLeadsRequest struct {
	LeadType   string `form:"leadType" validate:"omitempty,oneof=ftd filler cold live"`
	IsAssigned *bool  `form:"isAssigned"`
	Status     string `form:"status" validate:"omitempty,oneof=available sleep not_available_brokers"`
	Search     string `form:"search" validate:"max=100"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

type SleepDetailsResponse struct {
	PutToSleepAt  time.Time `json:"putToSleepAt"`
	Reason        string    `json:"reason"`
	LastCheckedAt time.Time `json:"lastCheckedAt"`
}

type FTDProfileResponse struct {
	SIN          string   `json:"sin"`
	DocumentKeys []string `json:"documentKeys"`
}

type LeadResponse struct {
	ID                 uuid.UUID             `json:"id"`
	Email              string                `json:"email"`
	FirstName          string                `json:"firstName"`
	LastName           string                `json:"lastName"`
	Phone              string                `json:"phone,omitempty"`
	Country            string                `json:"country,omitempty"`
	LeadType           string                `json:"leadType"`
	IsAssigned         bool                  `json:"isAssigned"`
	AssignedTo         *uuid.UUID            `json:"assignedTo,omitempty"`
	AssignedAt         *time.Time            `json:"assignedAt,omitempty"`
	AvailabilityStatus string                `json:"availabilityStatus"`
	Sleep              *SleepDetailsResponse `json:"sleep,omitempty"`
	FingerprintID      *uuid.UUID            `json:"fingerprintId,omitempty"`
	DeviceType         *string               `json:"deviceType,omitempty"`
	FTD                *FTDProfileResponse   `json:"ftd,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

func ToLeadResponse(lead domain.Lead) LeadResponse {
	resp := LeadResponse{
		ID:                 lead.ID,
		Email:              lead.Email,
		FirstName:          lead.FirstName,
		LastName:           lead.LastName,
		Phone:              lead.Phone,
		Country:            lead.Country,
		LeadType:           string(lead.Type),
		IsAssigned:         lead.IsAssigned,
		AssignedTo:         lead.AssignedTo,
		AssignedAt:         lead.AssignedAt,
		AvailabilityStatus: string(lead.AvailabilityStatus),
		FingerprintID:      lead.FingerprintID,
		DeviceType:         lead.DeviceType,
		CreatedAt:          lead.CreatedAt,
		UpdatedAt:          lead.UpdatedAt,
	}
	if lead.Sleep != nil {
		resp.Sleep = &SleepDetailsResponse{
			PutToSleepAt:  lead.Sleep.PutToSleepAt,
			Reason:        lead.Sleep.Reason,
			LastCheckedAt: lead.Sleep.LastCheckedAt,
		}
	}
	if lead.FTD != nil {
		resp.FTD = &FTDProfileResponse{
			SIN:          lead.FTD.SIN,
			DocumentKeys: lead.FTD.DocumentKeys,
		}
	}
	return resp
}

func ToLeadListResponse(leads []domain.Lead, total, page, pageSize int) LeadListResponse {
	items := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, ToLeadResponse(lead))
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return LeadListResponse{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
}

// Agent assignment

type AssignAgentRequest struct {
	AgentID uuid.UUID `json:"agentId" validate:"required"`
}

// Availability

type PutToSleepRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type SweepResponse struct {
	Checked     int `json:"checked"`
	Woken       int `json:"woken"`
	StillAsleep int `json:"stillAsleep"`
}
