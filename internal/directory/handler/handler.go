// Package handler exposes the directory module over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadops_backend/internal/directory/service"
	"leadops_backend/internal/directory/transport"
	"leadops_backend/platform/httpkit"
	"leadops_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CreateBroker registers a client broker.
// POST /api/v1/directory/brokers
func (h *Handler) CreateBroker(c *gin.Context) {
	var req transport.CreateBrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	broker, err := h.svc.CreateBroker(c.Request.Context(), req.Name, req.Domain, enabled)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToBrokerResponse(broker))
}

// ListBrokers lists all client brokers.
// GET /api/v1/directory/brokers
func (h *Handler) ListBrokers(c *gin.Context) {
	brokers, err := h.svc.ListBrokers(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]transport.BrokerResponse, 0, len(brokers))
	for _, broker := range brokers {
		items = append(items, transport.ToBrokerResponse(broker))
	}
	httpkit.OK(c, items)
}

// GetBroker retrieves one client broker.
// GET /api/v1/directory/brokers/:id
func (h *Handler) GetBroker(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid broker id", nil)
		return
	}
	broker, err := h.svc.GetBroker(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToBrokerResponse(broker))
}

// SetBrokerEnabled enables or disables a broker.
// PUT /api/v1/directory/brokers/:id/enabled
func (h *Handler) SetBrokerEnabled(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid broker id", nil)
		return
	}
	var req transport.SetBrokerEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	broker, err := h.svc.SetBrokerEnabled(c.Request.Context(), id, *req.Enabled)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToBrokerResponse(broker))
}

// CreateNetwork registers an intermediary network.
// POST /api/v1/directory/networks
func (h *Handler) CreateNetwork(c *gin.Context) {
	var req transport.CreateNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	network, err := h.svc.CreateNetwork(c.Request.Context(), req.Name, enabled)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToNetworkResponse(network))
}

// ListNetworks lists all intermediary networks.
// GET /api/v1/directory/networks
func (h *Handler) ListNetworks(c *gin.Context) {
	networks, err := h.svc.ListNetworks(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]transport.NetworkResponse, 0, len(networks))
	for _, network := range networks {
		items = append(items, transport.ToNetworkResponse(network))
	}
	httpkit.OK(c, items)
}
