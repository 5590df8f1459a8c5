package transport

import "leadops_backend/internal/orders/service"

type QuotaEntry struct {
	LeadType  string `json:"leadType" validate:"required,oneof=ftd filler cold live"`
	Requested int    `json:"requested" validate:"min=0"`
}

type SetQuotasRequest struct {
	Quotas []QuotaEntry `json:"quotas" validate:"required,min=1,max=4,dive"`
}

type FulfillmentLineResponse struct {
	LeadType  string `json:"leadType"`
	Requested int    `json:"requested"`
	Leads     int    `json:"leads"`
	Fulfilled int    `json:"fulfilled"`
	Pending   int    `json:"pending"`
	Failed    int    `json:"failed"`
	Remaining int    `json:"remaining"`
}

type FulfillmentResponse struct {
	Lines []FulfillmentLineResponse `json:"lines"`
}

func ToFulfillmentResponse(lines []service.FulfillmentLine) FulfillmentResponse {
	resp := FulfillmentResponse{Lines: make([]FulfillmentLineResponse, 0, len(lines))}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, FulfillmentLineResponse{
			LeadType:  line.LeadType,
			Requested: line.Requested,
			Leads:     line.Leads,
			Fulfilled: line.Fulfilled,
			Pending:   line.Pending,
			Failed:    line.Failed,
			Remaining: line.Remaining,
		})
	}
	return resp
}
