package leads

import (
	"fmt"
	"reflect"

	leadscommand "github.com/goliatone/go-leads/command"
	"github.com/goliatone/go-leads/core"
	leadsquery "github.com/goliatone/go-leads/query"
)

// CommandQueryService is the surface the facade wraps: the pipeline mutation
// plus enough introspection to resolve read-side stores.
type CommandQueryService interface {
	leadscommand.MutatingService
}

type Commands struct {
	IngestLead        *leadscommand.IngestLeadCommand
	SeedReferenceData *leadscommand.SeedReferenceDataCommand
}

type Queries struct {
	GetLead        *leadsquery.GetLeadQuery
	GetTenant      *leadsquery.GetTenantQuery
	ListLeadEvents *leadsquery.ListLeadEventsQuery
	CountFallback  *leadsquery.CountFallbackQuery
}

// Facade bundles the command and query handlers a host application mounts on
// its bus. Readers default to whatever the service's store factory exposes
// and can be overridden per concern.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	leadReader      leadsquery.LeadReader
	tenantReader    leadsquery.TenantReader
	leadEventReader leadsquery.LeadEventReader
	fallbackCounter leadsquery.FallbackCounter
	seeder          leadscommand.ReferenceDataSeeder
}

func WithFacadeLeadReader(reader leadsquery.LeadReader) FacadeOption {
	return func(options *facadeOptions) {
		options.leadReader = reader
	}
}

func WithFacadeTenantReader(reader leadsquery.TenantReader) FacadeOption {
	return func(options *facadeOptions) {
		options.tenantReader = reader
	}
}

func WithFacadeLeadEventReader(reader leadsquery.LeadEventReader) FacadeOption {
	return func(options *facadeOptions) {
		options.leadEventReader = reader
	}
}

func WithFacadeFallbackCounter(counter leadsquery.FallbackCounter) FacadeOption {
	return func(options *facadeOptions) {
		options.fallbackCounter = counter
	}
}

func WithFacadeSeeder(seeder leadscommand.ReferenceDataSeeder) FacadeOption {
	return func(options *facadeOptions) {
		options.seeder = seeder
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("leads: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	deps, hasDeps := resolveDependencies(service)
	if cfg.leadReader == nil && hasDeps {
		cfg.leadReader = deps.LeadStore
	}
	if cfg.fallbackCounter == nil && hasDeps {
		cfg.fallbackCounter = deps.LeadEventLog
	}
	if cfg.tenantReader == nil && hasDeps {
		if reader, ok := resolveFactoryStore(deps.RepositoryFactory, "TenantStore").(leadsquery.TenantReader); ok {
			cfg.tenantReader = reader
		}
	}
	if cfg.leadEventReader == nil && hasDeps {
		if reader, ok := resolveFactoryStore(deps.RepositoryFactory, "LeadEventStore").(leadsquery.LeadEventReader); ok {
			cfg.leadEventReader = reader
		}
	}
	if cfg.seeder == nil && hasDeps {
		if seeder, ok := deps.RepositoryFactory.(leadscommand.ReferenceDataSeeder); ok {
			cfg.seeder = seeder
		}
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		IngestLead:        leadscommand.NewIngestLeadCommand(service),
		SeedReferenceData: leadscommand.NewSeedReferenceDataCommand(cfg.seeder),
	}
	facade.queries = Queries{
		GetLead:        leadsquery.NewGetLeadQuery(cfg.leadReader),
		GetTenant:      leadsquery.NewGetTenantQuery(cfg.tenantReader),
		ListLeadEvents: leadsquery.NewListLeadEventsQuery(cfg.leadEventReader),
		CountFallback:  leadsquery.NewCountFallbackQuery(cfg.fallbackCounter),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

func resolveDependencies(service CommandQueryService) (core.ServiceDependencies, bool) {
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return core.ServiceDependencies{}, false
	}
	return provider.Dependencies(), true
}

// resolveFactoryStore calls a zero-arg accessor on the repository factory by
// name. Factories from other storage backends stay usable as long as they
// expose the same accessor shape.
func resolveFactoryStore(factory any, accessor string) any {
	if factory == nil {
		return nil
	}
	factoryValue := reflect.ValueOf(factory)
	if !factoryValue.IsValid() {
		return nil
	}
	if factoryValue.Kind() == reflect.Ptr && factoryValue.IsNil() {
		return nil
	}
	method := factoryValue.MethodByName(accessor)
	if !method.IsValid() || method.Type().NumIn() != 0 || method.Type().NumOut() != 1 {
		return nil
	}

	results, ok := safeReflectCall(method)
	if !ok || len(results) != 1 {
		return nil
	}
	candidate := results[0]
	if !candidate.IsValid() {
		return nil
	}
	if candidate.Kind() == reflect.Ptr && candidate.IsNil() {
		return nil
	}
	return candidate.Interface()
}

func safeReflectCall(method reflect.Value) (_ []reflect.Value, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return method.Call(nil), true
}
