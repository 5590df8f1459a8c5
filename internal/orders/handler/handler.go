// Package handler exposes the orders module over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadops_backend/internal/orders/service"
	"leadops_backend/internal/orders/transport"
	"leadops_backend/platform/httpkit"
	"leadops_backend/platform/validator"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid order id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// SetQuotas replaces the order's requested lead counts.
// PUT /api/v1/orders/:id/quotas
func (h *Handler) SetQuotas(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req transport.SetQuotasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	inputs := make([]service.QuotaInput, 0, len(req.Quotas))
	for _, quota := range req.Quotas {
		inputs = append(inputs, service.QuotaInput{LeadType: quota.LeadType, Requested: quota.Requested})
	}

	if err := h.svc.SetQuotas(c.Request.Context(), id, inputs); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFulfillment reports assignment progress against the order's quotas.
// GET /api/v1/orders/:id/fulfillment
func (h *Handler) GetFulfillment(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	lines, err := h.svc.Fulfillment(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToFulfillmentResponse(lines))
}
