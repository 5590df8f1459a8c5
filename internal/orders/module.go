// Package orders provides order quota registration and fulfillment reporting.
package orders

import (
	apphttp "leadops_backend/internal/http"
	leadsrepo "leadops_backend/internal/leads/repository"
	"leadops_backend/internal/orders/handler"
	"leadops_backend/internal/orders/repository"
	"leadops_backend/internal/orders/service"
	"leadops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the orders module. The fulfillment reader
// comes from the leads module, which owns the assignment ledgers.
func NewModule(pool *pgxpool.Pool, fulfillment leadsrepo.FulfillmentReader, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, fulfillment)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "orders"
}

// RegisterRoutes mounts orders routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/orders")
	group.PUT("/:id/quotas", m.handler.SetQuotas)
	group.GET("/:id/fulfillment", m.handler.GetFulfillment)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
