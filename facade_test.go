package leads

import (
	"context"
	"fmt"
	"testing"
	"time"

	leadscommand "github.com/goliatone/go-leads/command"
	"github.com/goliatone/go-leads/core"
	leadsquery "github.com/goliatone/go-leads/query"
)

func TestNewFacade_RequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected service requirement error")
	}
}

func TestNewFacade_ResolvesReadersFromDependencies(t *testing.T) {
	service := &facadeStubService{
		deps: core.ServiceDependencies{
			LeadStore:         facadeStubLeadStore{},
			LeadEventLog:      facadeStubEventLog{},
			RepositoryFactory: &facadeStubFactory{},
		},
	}

	facade, err := NewFacade(service)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	queries := facade.Queries()
	lead, err := queries.GetLead.Query(context.Background(), leadsquery.GetLeadMessage{CorrelationID: "corr-1"})
	if err != nil {
		t.Fatalf("facade get lead: %v", err)
	}
	if lead.CorrelationID != "corr-1" {
		t.Fatalf("unexpected lead: %#v", lead)
	}

	tenant, err := queries.GetTenant.Query(context.Background(), leadsquery.GetTenantMessage{TenantID: core.DefaultTenantID})
	if err != nil {
		t.Fatalf("facade get tenant: %v", err)
	}
	if tenant.ID != core.DefaultTenantID {
		t.Fatalf("unexpected tenant: %#v", tenant)
	}

	events, err := queries.ListLeadEvents.Query(context.Background(), leadsquery.ListLeadEventsMessage{LeadID: "lead_1"})
	if err != nil {
		t.Fatalf("facade list lead events: %v", err)
	}
	if len(events) != 1 || events[0].EventType != core.LeadEventReceived {
		t.Fatalf("unexpected events: %#v", events)
	}

	count, err := queries.CountFallback.Query(context.Background(), leadsquery.CountFallbackMessage{Since: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("facade count fallback: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected fallback count 2, got %d", count)
	}
}

func TestNewFacade_SeederResolvedFromFactory(t *testing.T) {
	factory := &facadeStubFactory{}
	service := &facadeStubService{
		deps: core.ServiceDependencies{RepositoryFactory: factory},
	}

	facade, err := NewFacade(service)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if err := facade.Commands().SeedReferenceData.Execute(context.Background(), leadscommand.SeedReferenceDataMessage{}); err != nil {
		t.Fatalf("seed through facade: %v", err)
	}
	if !factory.seeded {
		t.Fatalf("expected factory-backed seed invocation")
	}
}

func TestNewFacade_IngestCommandDelegates(t *testing.T) {
	service := &facadeStubService{}
	facade, err := NewFacade(service)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	msg := leadscommand.IngestLeadMessage{Request: core.IngestLeadRequest{
		Payload: core.LeadPayload{CorrelationID: "corr-9"},
	}}
	if err := facade.Commands().IngestLead.Execute(context.Background(), msg); err != nil {
		t.Fatalf("ingest through facade: %v", err)
	}
	if service.ingestCalls != 1 {
		t.Fatalf("expected one ingest call, got %d", service.ingestCalls)
	}
}

type facadeStubService struct {
	deps        core.ServiceDependencies
	ingestCalls int
}

func (s *facadeStubService) IngestLead(_ context.Context, _ core.IngestLeadRequest) (core.IngestLeadResult, error) {
	s.ingestCalls++
	return core.IngestLeadResult{LeadID: "lead_1", TenantID: core.DefaultTenantID}, nil
}

func (s *facadeStubService) Dependencies() core.ServiceDependencies {
	return s.deps
}

type facadeStubLeadStore struct{}

func (facadeStubLeadStore) Register(context.Context, core.NewLeadInput) (core.Lead, bool, error) {
	return core.Lead{}, false, fmt.Errorf("not implemented")
}

func (facadeStubLeadStore) AttachTenant(context.Context, string, string) error {
	return fmt.Errorf("not implemented")
}

func (facadeStubLeadStore) GetByCorrelationID(_ context.Context, correlationID string) (core.Lead, error) {
	return core.Lead{ID: "lead_1", CorrelationID: correlationID}, nil
}

type facadeStubEventLog struct{}

func (facadeStubEventLog) Append(context.Context, core.AppendLeadEventInput) error {
	return nil
}

func (facadeStubEventLog) CountSince(context.Context, string, time.Time) (int64, error) {
	return 2, nil
}

type facadeStubFactory struct {
	seeded bool
}

func (f *facadeStubFactory) TenantStore() *facadeStubTenantStore {
	return &facadeStubTenantStore{}
}

func (f *facadeStubFactory) LeadEventStore() *facadeStubEventStore {
	return &facadeStubEventStore{}
}

func (f *facadeStubFactory) SeedReferenceData(context.Context) error {
	f.seeded = true
	return nil
}

type facadeStubTenantStore struct{}

func (*facadeStubTenantStore) GetTenant(_ context.Context, tenantID string) (core.Tenant, error) {
	return core.Tenant{ID: tenantID, Name: tenantID}, nil
}

type facadeStubEventStore struct{}

func (*facadeStubEventStore) ListByLead(_ context.Context, leadID string) ([]core.LeadEvent, error) {
	return []core.LeadEvent{{LeadID: leadID, EventType: core.LeadEventReceived}}, nil
}
