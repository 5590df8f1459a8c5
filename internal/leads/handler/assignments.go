package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/service"
	"leadops_backend/internal/leads/transport"
	"leadops_backend/platform/httpkit"
)

// AssignBroker places a lead with a client broker.
// POST /api/v1/leads/:id/brokers
func (h *Handler) AssignBroker(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	var req transport.AssignBrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	record, err := h.ledger.AssignBroker(c.Request.Context(), service.AssignBrokerInput{
		LeadID:                id,
		ClientBrokerID:        req.ClientBrokerID,
		OrderID:               req.OrderID,
		AssignedBy:            actor,
		IntermediaryNetworkID: req.IntermediaryNetworkID,
		Domain:                req.Domain,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToBrokerAssignmentResponse(record))
}

// UnassignBroker removes a broker from the lead's active set.
// DELETE /api/v1/leads/:id/brokers/:brokerId
func (h *Handler) UnassignBroker(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	brokerID, err := uuid.Parse(c.Param("brokerId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid broker id", nil)
		return
	}

	if err := h.ledger.UnassignBroker(c.Request.Context(), id, brokerID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckBrokerAssignment reports whether a broker is in the lead's active set.
// GET /api/v1/leads/:id/brokers/:brokerId
func (h *Handler) CheckBrokerAssignment(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	brokerID, err := uuid.Parse(c.Param("brokerId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid broker id", nil)
		return
	}

	assigned, err := h.ledger.IsAssignedToBroker(c.Request.Context(), id, brokerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"assigned": assigned})
}

// GetAssignmentHistory returns the active broker set plus both ledgers.
// GET /api/v1/leads/:id/assignments
func (h *Handler) GetAssignmentHistory(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	active, err := h.ledger.ActiveBrokers(ctx, id)
	if httpkit.HandleError(c, err) {
		return
	}
	brokers, err := h.ledger.BrokerHistory(ctx, id)
	if httpkit.HandleError(c, err) {
		return
	}
	networks, err := h.ledger.NetworkHistory(ctx, id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.AssignmentHistoryResponse{
		ActiveBrokerIDs:    active,
		BrokerAssignments:  make([]transport.BrokerAssignmentResponse, 0, len(brokers)),
		NetworkAssignments: make([]transport.NetworkAssignmentResponse, 0, len(networks)),
	}
	for _, record := range brokers {
		resp.BrokerAssignments = append(resp.BrokerAssignments, transport.ToBrokerAssignmentResponse(record))
	}
	for _, record := range networks {
		resp.NetworkAssignments = append(resp.NetworkAssignments, transport.ToNetworkAssignmentResponse(record))
	}
	httpkit.OK(c, resp)
}

// UpdateInjectionStatus records an injection outcome callback.
// POST /api/v1/leads/:id/injection-status
func (h *Handler) UpdateInjectionStatus(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.UpdateInjectionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	err := h.ledger.UpdateInjectionStatus(c.Request.Context(), id, req.OrderID, domain.InjectionStatus(req.Status), req.Domain)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignNetwork routes a lead through an intermediary network for an order.
// POST /api/v1/leads/:id/networks
func (h *Handler) AssignNetwork(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	var req transport.AssignNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	input := service.AssignNetworkInput{
		LeadID:          id,
		ClientNetworkID: req.ClientNetworkID,
		OrderID:         req.OrderID,
		AssignedBy:      actor,
	}
	if req.InjectionType != nil {
		injectionType := domain.InjectionType(*req.InjectionType)
		input.InjectionType = &injectionType
	}

	record, err := h.ledger.AssignNetwork(c.Request.Context(), input)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToNetworkAssignmentResponse(record))
}

// SetNetworkInjectionResult records the delivery outcome on a network record.
// POST /api/v1/leads/:id/networks/:networkId/result
func (h *Handler) SetNetworkInjectionResult(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	networkID, err := uuid.Parse(c.Param("networkId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid network id", nil)
		return
	}
	var req transport.NetworkInjectionResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	input := service.NetworkResultInput{
		Status: domain.NetworkInjectionStatus(req.Status),
		Domain: req.Domain,
		Notes:  req.Notes,
	}
	if req.InjectionType != nil {
		injectionType := domain.InjectionType(*req.InjectionType)
		input.InjectionType = &injectionType
	}

	err = h.ledger.SetNetworkInjectionResult(c.Request.Context(), id, networkID, req.OrderID, input)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
