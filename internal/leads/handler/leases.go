package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/transport"
	"leadops_backend/platform/httpkit"
)

// AssignFingerprint provisions a browser fingerprint for a lead.
// POST /api/v1/leads/:id/fingerprint
func (h *Handler) AssignFingerprint(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	var req transport.AssignFingerprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	record, err := h.leases.AssignFingerprint(c.Request.Context(), id, req.DeviceType, actor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToFingerprintResponse(record))
}

// GetFingerprint returns the lead's fingerprint, if any.
// GET /api/v1/leads/:id/fingerprint
func (h *Handler) GetFingerprint(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	record, err := h.leases.Fingerprint(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	if record == nil {
		httpkit.Error(c, http.StatusNotFound, "lead has no fingerprint assigned", nil)
		return
	}
	httpkit.OK(c, transport.ToFingerprintResponse(*record))
}

// UpdateDeviceType swaps the lead's fingerprint for a new device type.
// PUT /api/v1/leads/:id/fingerprint
func (h *Handler) UpdateDeviceType(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	var req transport.UpdateDeviceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	record, err := h.leases.UpdateDeviceType(c.Request.Context(), id, req.DeviceType, actor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToFingerprintResponse(record))
}

// AssignProxy leases a proxy to the lead for one order.
// POST /api/v1/leads/:id/proxies
func (h *Handler) AssignProxy(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.AssignProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lease, leased, err := h.leases.AssignProxy(c.Request.Context(), id, req.ProxyID, req.OrderID)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if leased {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, transport.AssignProxyResponse{
		Lease:  transport.ToProxyLeaseResponse(lease),
		Leased: leased,
	})
}

// GetActiveProxy returns the active lease for (lead, order), if any.
// GET /api/v1/leads/:id/proxies/active?orderId=...
func (h *Handler) GetActiveProxy(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Query("orderId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid order id", nil)
		return
	}

	lease, err := h.leases.ActiveProxy(c.Request.Context(), id, orderID)
	if httpkit.HandleError(c, err) {
		return
	}
	if lease == nil {
		httpkit.Error(c, http.StatusNotFound, "lead has no active proxy lease for this order", nil)
		return
	}
	httpkit.OK(c, transport.ToProxyLeaseResponse(*lease))
}

// ListProxyLeases returns the lead's full lease history.
// GET /api/v1/leads/:id/proxies
func (h *Handler) ListProxyLeases(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	leases, err := h.leases.ProxyHistory(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.ProxyLeaseResponse, 0, len(leases))
	for _, lease := range leases {
		items = append(items, transport.ToProxyLeaseResponse(lease))
	}
	httpkit.OK(c, items)
}

// CompleteProxy closes the active lease for (lead, order).
// POST /api/v1/leads/:id/proxies/complete
func (h *Handler) CompleteProxy(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.CompleteProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	closed, err := h.leases.CompleteProxyAssignment(c.Request.Context(), id, req.OrderID, domain.ProxyLeaseStatus(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"closed": closed})
}
