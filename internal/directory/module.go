// Package directory provides the broker and network inventory module.
package directory

import (
	"leadops_backend/internal/directory/handler"
	"leadops_backend/internal/directory/repository"
	"leadops_backend/internal/directory/service"
	"leadops_backend/internal/events"
	apphttp "leadops_backend/internal/http"
	"leadops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the directory bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the directory module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "directory"
}

// Service returns the service layer; the leads module uses it as its broker
// directory port.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts directory routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/directory")

	group.POST("/brokers", m.handler.CreateBroker)
	group.GET("/brokers", m.handler.ListBrokers)
	group.GET("/brokers/:id", m.handler.GetBroker)
	group.PUT("/brokers/:id/enabled", m.handler.SetBrokerEnabled)

	group.POST("/networks", m.handler.CreateNetwork)
	group.GET("/networks", m.handler.ListNetworks)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
