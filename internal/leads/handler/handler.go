// Package handler exposes the leads module over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadops_backend/internal/leads/service"
	"leadops_backend/platform/httpkit"
	"leadops_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
	msgMissingActor     = "missing or invalid X-Actor-ID header"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	management   *service.Management
	ledger       *service.Ledger
	availability *service.Availability
	leases       *service.Leases
	val          *validator.Validator
}

// New creates a new leads handler.
func New(management *service.Management, ledger *service.Ledger, availability *service.Availability, leases *service.Leases, val *validator.Validator) *Handler {
	return &Handler{
		management:   management,
		ledger:       ledger,
		availability: availability,
		leases:       leases,
		val:          val,
	}
}

// leadID parses the :id path parameter. Writes a 400 response on failure.
func leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// actorID reads the acting operator from the X-Actor-ID header. The platform
// sits behind the ops gateway which authenticates and stamps the header.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader("X-Actor-ID"))
	if err != nil {
		httpkit.Error(c, http.StatusUnauthorized, msgMissingActor, nil)
		return uuid.Nil, false
	}
	return id, true
}
