package leads

import "github.com/goliatone/go-leads/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Lead = core.Lead
type LeadPayload = core.LeadPayload
type Tenant = core.Tenant
type TenantResolution = core.TenantResolution
type Draft = core.Draft
type OutreachMessage = core.OutreachMessage
type DispatchResult = core.DispatchResult
type OutreachEvent = core.OutreachEvent
type LeadEvent = core.LeadEvent

type LeadStore = core.LeadStore
type TenantDirectory = core.TenantDirectory
type Drafter = core.Drafter
type Sender = core.Sender
type OutreachLog = core.OutreachLog
type LeadEventLog = core.LeadEventLog
type MetricsRecorder = core.MetricsRecorder

type IngestLeadRequest = core.IngestLeadRequest
type IngestLeadResult = core.IngestLeadResult
type InboundRequest = core.InboundRequest
type InboundResult = core.InboundResult

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithLeadStore         = core.WithLeadStore
	WithTenantDirectory   = core.WithTenantDirectory
	WithDrafter           = core.WithDrafter
	WithSender            = core.WithSender
	WithOutreachLog       = core.WithOutreachLog
	WithLeadEventLog      = core.WithLeadEventLog
	WithClock             = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
