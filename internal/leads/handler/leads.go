package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/repository"
	"leadops_backend/internal/leads/service"
	"leadops_backend/internal/leads/transport"
	"leadops_backend/platform/httpkit"
)

// CreateLead creates a new lead.
// POST /api/v1/leads
func (h *Handler) CreateLead(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.management.Create(c.Request.Context(), service.CreateLeadInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Country:   req.Country,
		LeadType:  domain.LeadType(req.LeadType),
		FTDSin:    req.FTDSin,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

// GetLead retrieves a lead by id.
// GET /api/v1/leads/:id
func (h *Handler) GetLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	lead, err := h.management.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// ListLeads retrieves leads with filters and pagination.
// GET /api/v1/leads
func (h *Handler) ListLeads(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	params := repository.ListParams{
		Search: req.Search,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	if req.LeadType != "" {
		leadType := domain.LeadType(req.LeadType)
		params.LeadType = &leadType
	}
	if req.Status != "" {
		status := domain.AvailabilityStatus(req.Status)
		params.Status = &status
	}
	params.IsAssigned = req.IsAssigned

	leads, total, err := h.management.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadListResponse(leads, total, page, pageSize))
}

// AssignAgent sets the agent working this lead.
// PUT /api/v1/leads/:id/agent
func (h *Handler) AssignAgent(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.AssignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.management.AssignAgent(c.Request.Context(), id, req.AgentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// UnassignAgent clears the agent assignment.
// DELETE /api/v1/leads/:id/agent
func (h *Handler) UnassignAgent(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	lead, err := h.management.UnassignAgent(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// UploadDocument stores an identity document for an FTD lead.
// POST /api/v1/leads/:id/documents
func (h *Handler) UploadDocument(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("document")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "document file is required", nil)
		return
	}
	reader, err := file.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unreadable document file", nil)
		return
	}
	defer reader.Close()

	key, err := h.management.UploadDocument(c.Request.Context(), id, file.Filename, file.Header.Get("Content-Type"), reader, file.Size)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.DocumentUploadResponse{Key: key})
}

// ListDocuments returns presigned download links for the lead's identity
// documents.
// GET /api/v1/leads/:id/documents
func (h *Handler) ListDocuments(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	links, err := h.management.DocumentLinks(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.DocumentLinkResponse, 0, len(links))
	for _, link := range links {
		items = append(items, transport.ToDocumentLinkResponse(link))
	}
	httpkit.OK(c, items)
}

// PutToSleep parks a lead that no client broker can currently take.
// POST /api/v1/leads/:id/sleep
func (h *Handler) PutToSleep(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.PutToSleepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.availability.PutToSleep(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// WakeUp returns a sleeping lead to the available pool.
// POST /api/v1/leads/:id/wake
func (h *Handler) WakeUp(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	lead, err := h.availability.WakeUp(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// RunSweep re-evaluates all sleeping leads against the broker inventory.
// POST /api/v1/leads/sweep
func (h *Handler) RunSweep(c *gin.Context) {
	stats, err := h.availability.RunSweep(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SweepResponse{
		Checked:     stats.Checked,
		Woken:       stats.Woken,
		StillAsleep: stats.StillAsleep,
	})
}
