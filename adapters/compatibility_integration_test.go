package adapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"

	leads "github.com/goliatone/go-leads"
	"github.com/goliatone/go-leads/adapters/gocommand"
	"github.com/goliatone/go-leads/adapters/gologger"
	leadscommand "github.com/goliatone/go-leads/command"
	"github.com/goliatone/go-leads/core"
	"github.com/goliatone/go-leads/jobs"
)

// One runtime wiring pass across the adapter seams: glog loggers bridged to
// go-job, lead handlers mounted on the go-command dispatcher, and digest
// execution messages flowing through the in-memory queue.
func TestRuntimeCompatibility_BusQueueAndLoggerBridges(t *testing.T) {
	ctx := context.Background()

	provider := &recordingProvider{logger: &recordingLogger{}}
	_, _, jobProvider, jobLogger := gologger.ResolveForJob("leads", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}
	jobProvider.GetLogger("leads").Info("bridge check", "component", "compatibility")
	if provider.logger.lastMsg != "bridge check" {
		t.Fatalf("expected bridged log line, got %q", provider.logger.lastMsg)
	}

	service := &compatStubService{}
	facade, err := leads.NewFacade(service)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	subscriptions, err := gocommand.MountFacade(adapter, facade)
	if err != nil {
		t.Fatalf("mount facade: %v", err)
	}
	defer func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	}()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if err := gocommand.Dispatch(ctx, leadscommand.IngestLeadMessage{
		Request: core.IngestLeadRequest{
			Payload: core.LeadPayload{CorrelationID: "corr-compat-1"},
		},
	}); err != nil {
		t.Fatalf("dispatch through bus: %v", err)
	}
	if service.ingestCalls != 1 {
		t.Fatalf("expected bus-dispatched ingest, got %d calls", service.ingestCalls)
	}

	queue := jobs.NewMemoryQueue(1)
	defer queue.Close()
	if err := queue.Enqueue(ctx, &job.ExecutionMessage{
		JobID:          jobs.JobIDFallbackDigest,
		IdempotencyKey: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		t.Fatalf("enqueue digest run: %v", err)
	}
	delivery, err := queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue digest run: %v", err)
	}
	if got := delivery.Message().JobID; got != jobs.JobIDFallbackDigest {
		t.Fatalf("unexpected job id %q", got)
	}
	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack digest run: %v", err)
	}
}

type compatStubService struct {
	ingestCalls int
}

func (s *compatStubService) IngestLead(context.Context, core.IngestLeadRequest) (core.IngestLeadResult, error) {
	s.ingestCalls++
	return core.IngestLeadResult{LeadID: "lead_compat_1", TenantID: core.DefaultTenantID}, nil
}

func (s *compatStubService) Dependencies() core.ServiceDependencies {
	return core.ServiceDependencies{}
}

var _ glog.LoggerProvider = (*recordingProvider)(nil)

type recordingProvider struct {
	logger *recordingLogger
}

func (p *recordingProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

var _ glog.Logger = (*recordingLogger)(nil)

type recordingLogger struct {
	lastMsg string
}

func (l *recordingLogger) Trace(string, ...any) {}
func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Fatal(string, ...any) {}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.lastMsg = msg
}

func (l *recordingLogger) WithContext(context.Context) glog.Logger {
	return l
}
