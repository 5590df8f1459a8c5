// Package service implements order lead quotas and the fulfillment report
// that tracks assignment progress against them.
package service

import (
	"context"
	"sort"

	leadsrepo "leadops_backend/internal/leads/repository"
	"leadops_backend/internal/orders/repository"
	"leadops_backend/platform/apperr"

	"github.com/google/uuid"
)

// QuotaStore holds the requested lead counts per order.
type QuotaStore interface {
	SetQuotas(ctx context.Context, orderID uuid.UUID, quotas []repository.Quota) error
	GetQuotas(ctx context.Context, orderID uuid.UUID) (map[string]int, error)
}

type Service struct {
	quotas      QuotaStore
	fulfillment leadsrepo.FulfillmentReader
}

func New(quotas QuotaStore, fulfillment leadsrepo.FulfillmentReader) *Service {
	return &Service{quotas: quotas, fulfillment: fulfillment}
}

// QuotaInput is one requested lead count.
type QuotaInput struct {
	LeadType  string
	Requested int
}

// SetQuotas replaces the order's requested lead counts.
func (s *Service) SetQuotas(ctx context.Context, orderID uuid.UUID, inputs []QuotaInput) error {
	seen := make(map[string]bool, len(inputs))
	quotas := make([]repository.Quota, 0, len(inputs))
	for _, input := range inputs {
		if seen[input.LeadType] {
			return apperr.Validation("duplicate lead type in quota set")
		}
		seen[input.LeadType] = true
		quotas = append(quotas, repository.Quota{LeadType: input.LeadType, Requested: input.Requested})
	}
	return s.quotas.SetQuotas(ctx, orderID, quotas)
}

// FulfillmentLine is one lead type's progress against its quota.
type FulfillmentLine struct {
	LeadType  string
	Requested int
	Leads     int
	Fulfilled int
	Pending   int
	Failed    int
	Remaining int
}

// Fulfillment joins assignment progress against the registered quotas. Lead
// types with activity but no quota still appear, with Requested zero.
func (s *Service) Fulfillment(ctx context.Context, orderID uuid.UUID) ([]FulfillmentLine, error) {
	requested, err := s.quotas.GetQuotas(ctx, orderID)
	if err != nil {
		return nil, err
	}
	progress, err := s.fulfillment.CountOrderFulfillment(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines := make(map[string]*FulfillmentLine, len(requested))
	for leadType, count := range requested {
		lines[leadType] = &FulfillmentLine{LeadType: leadType, Requested: count}
	}
	for _, row := range progress {
		line, ok := lines[string(row.LeadType)]
		if !ok {
			line = &FulfillmentLine{LeadType: string(row.LeadType)}
			lines[string(row.LeadType)] = line
		}
		line.Leads = row.Leads
		line.Fulfilled = row.Fulfilled
		line.Pending = row.Pending
		line.Failed = row.Failed
	}

	result := make([]FulfillmentLine, 0, len(lines))
	for _, line := range lines {
		if remaining := line.Requested - line.Fulfilled; remaining > 0 {
			line.Remaining = remaining
		}
		result = append(result, *line)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LeadType < result[j].LeadType })
	return result, nil
}
