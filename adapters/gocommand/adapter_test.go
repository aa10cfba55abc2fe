package gocommand

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	leads "github.com/goliatone/go-leads"
	leadscommand "github.com/goliatone/go-leads/command"
	"github.com/goliatone/go-leads/core"
	leadsquery "github.com/goliatone/go-leads/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "leads.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "leads.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type queueMessage struct{}

func (queueMessage) Type() string { return "leads.command.queue" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
}

func TestMountFacadeDispatchesLeadCommands(t *testing.T) {
	service := &busStubService{}
	facade, err := leads.NewFacade(service)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	adapter := NewRegistryAdapter(command.NewRegistry())
	subscriptions, err := MountFacade(adapter, facade)
	if err != nil {
		t.Fatalf("mount facade: %v", err)
	}
	defer func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	}()
	if len(subscriptions) != 6 {
		t.Fatalf("expected 6 mounted handlers, got %d", len(subscriptions))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	msg := leadscommand.IngestLeadMessage{Request: core.IngestLeadRequest{
		Payload: core.LeadPayload{CorrelationID: "corr-bus-1"},
	}}
	if err := Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("dispatch ingest: %v", err)
	}
	if service.ingestCalls != 1 {
		t.Fatalf("expected one ingest call, got %d", service.ingestCalls)
	}

	lead, err := Query[leadsquery.GetLeadMessage, core.Lead](
		context.Background(),
		leadsquery.GetLeadMessage{CorrelationID: "corr-bus-1"},
	)
	if err != nil {
		t.Fatalf("query lead: %v", err)
	}
	if lead.CorrelationID != "corr-bus-1" {
		t.Fatalf("unexpected lead: %#v", lead)
	}
}

func TestMountFacadeRequiresRegistryAndFacade(t *testing.T) {
	if _, err := MountFacade(nil, nil); err == nil {
		t.Fatalf("expected registry requirement error")
	}
	adapter := NewRegistryAdapter(command.NewRegistry())
	if _, err := MountFacade(adapter, nil); err == nil {
		t.Fatalf("expected facade requirement error")
	}
}

func TestQueueResolverHookWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	queueRegistry := jobqueuecommand.NewRegistry()

	cmd := command.CommandFunc[queueMessage](func(context.Context, queueMessage) error { return nil })

	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if !adapter.HasResolver("queue") {
		t.Fatalf("expected queue resolver to be registered")
	}
	if err := adapter.RegisterCommand(cmd); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if _, ok := queueRegistry.Get("leads.command.queue"); !ok {
		t.Fatalf("expected command to be mirrored into queue registry")
	}
}

type busStubService struct {
	ingestCalls int
}

func (s *busStubService) IngestLead(_ context.Context, req core.IngestLeadRequest) (core.IngestLeadResult, error) {
	s.ingestCalls++
	if req.Payload.CorrelationID == "" {
		return core.IngestLeadResult{}, fmt.Errorf("correlation id is required")
	}
	return core.IngestLeadResult{LeadID: "lead_bus_1", TenantID: core.DefaultTenantID}, nil
}

func (s *busStubService) Dependencies() core.ServiceDependencies {
	return core.ServiceDependencies{
		LeadStore:    busStubLeadStore{},
		LeadEventLog: busStubEventLog{},
	}
}

type busStubLeadStore struct{}

func (busStubLeadStore) Register(context.Context, core.NewLeadInput) (core.Lead, bool, error) {
	return core.Lead{}, false, fmt.Errorf("not implemented")
}

func (busStubLeadStore) AttachTenant(context.Context, string, string) error {
	return fmt.Errorf("not implemented")
}

func (busStubLeadStore) GetByCorrelationID(_ context.Context, correlationID string) (core.Lead, error) {
	return core.Lead{ID: "lead_bus_1", CorrelationID: correlationID}, nil
}

type busStubEventLog struct{}

func (busStubEventLog) Append(context.Context, core.AppendLeadEventInput) error {
	return nil
}

func (busStubEventLog) CountSince(context.Context, string, time.Time) (int64, error) {
	return 0, nil
}
