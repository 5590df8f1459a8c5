// Package leads provides the lead assignment bounded context module.
package leads

import (
	"leadops_backend/internal/events"
	apphttp "leadops_backend/internal/http"
	"leadops_backend/internal/leads/handler"
	"leadops_backend/internal/leads/ports"
	"leadops_backend/internal/leads/repository"
	"leadops_backend/internal/leads/service"
	"leadops_backend/platform/logger"
	"leadops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler      *handler.Handler
	management   *service.Management
	ledger       *service.Ledger
	availability *service.Availability
	leases       *service.Leases
	repo         *repository.Repository
}

// Deps are the external collaborators the leads module needs.
type Deps struct {
	Directory ports.BrokerDirectory
	Factory   ports.FingerprintFactory
	Documents ports.DocumentStore
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, deps Deps, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)

	management := service.NewManagement(repo, repo, deps.Documents, bus)
	ledger := service.NewLedger(repo, repo, bus, log)
	availability := service.NewAvailability(repo, repo, repo, deps.Directory, bus, log)
	leases := service.NewLeases(repo, repo, repo, deps.Factory, log)

	h := handler.New(management, ledger, availability, leases, val)

	return &Module{
		handler:      h,
		management:   management,
		ledger:       ledger,
		availability: availability,
		leases:       leases,
		repo:         repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Availability returns the availability service for the scheduler worker.
func (m *Module) Availability() *service.Availability {
	return m.availability
}

// Fulfillment returns the read-side order progress store for the orders module.
func (m *Module) Fulfillment() repository.FulfillmentReader {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/leads")

	group.POST("", m.handler.CreateLead)
	group.GET("", m.handler.ListLeads)
	group.GET("/:id", m.handler.GetLead)

	group.PUT("/:id/agent", m.handler.AssignAgent)
	group.DELETE("/:id/agent", m.handler.UnassignAgent)
	group.POST("/:id/documents", m.handler.UploadDocument)
	group.GET("/:id/documents", m.handler.ListDocuments)

	group.POST("/:id/brokers", m.handler.AssignBroker)
	group.DELETE("/:id/brokers/:brokerId", m.handler.UnassignBroker)
	group.GET("/:id/brokers/:brokerId", m.handler.CheckBrokerAssignment)
	group.GET("/:id/assignments", m.handler.GetAssignmentHistory)
	group.POST("/:id/injection-status", m.handler.UpdateInjectionStatus)
	group.POST("/:id/networks", m.handler.AssignNetwork)
	group.POST("/:id/networks/:networkId/result", m.handler.SetNetworkInjectionResult)

	group.POST("/:id/sleep", m.handler.PutToSleep)
	group.POST("/:id/wake", m.handler.WakeUp)
	group.POST("/sweep", m.handler.RunSweep)

	group.POST("/:id/fingerprint", m.handler.AssignFingerprint)
	group.GET("/:id/fingerprint", m.handler.GetFingerprint)
	group.PUT("/:id/fingerprint", m.handler.UpdateDeviceType)

	group.POST("/:id/proxies", m.handler.AssignProxy)
	group.GET("/:id/proxies", m.handler.ListProxyLeases)
	group.GET("/:id/proxies/active", m.handler.GetActiveProxy)
	group.POST("/:id/proxies/complete", m.handler.CompleteProxy)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
