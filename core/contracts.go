package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type NewLeadInput struct {
	Payload    LeadPayload
	Source     string
	RawPayload []byte
	ReceivedAt time.Time
}

// LeadStore persists inbound leads keyed by correlation id. Register is the
// idempotency boundary of the whole system: the insert-if-absent check must be
// atomic at the storage layer so it holds across processes sharing one store.
type LeadStore interface {
	// Register inserts a new lead. When a lead with the same correlation id
	// already exists it returns the stored lead and created=false, and the
	// caller must not run any further side effects.
	Register(ctx context.Context, in NewLeadInput) (Lead, bool, error)
	AttachTenant(ctx context.Context, leadID string, tenantID string) error
	GetByCorrelationID(ctx context.Context, correlationID string) (Lead, error)
}

// TenantDirectory resolves an external account id to a tenant. An unmapped,
// empty, or garbage account id is normal input and resolves to the default
// tenant with Fallback=true; only storage faults return an error.
type TenantDirectory interface {
	Resolve(ctx context.Context, accountID string) (TenantResolution, error)
}

// Drafter produces outreach text for a lead on behalf of a tenant.
type Drafter interface {
	Draft(ctx context.Context, lead Lead, tenant Tenant) (Draft, error)
}

// Sender performs one synchronous outreach delivery attempt. Ordinary
// transport failures are reported via DispatchResult.Status, not the error.
type Sender interface {
	Send(ctx context.Context, msg OutreachMessage) (DispatchResult, error)
}

type RecordOutreachInput struct {
	LeadID            string
	TenantID          string
	Channel           string
	ToAddress         string
	FromAddress       string
	Subject           string
	Body              string
	Status            string
	ProviderMessageID string
	SentAt            *time.Time
}

// OutreachLog is the append-only dispatch log. A second record for the same
// lead id must be rejected; the orchestrator's sequencing is the first line of
// defense and the store's unique constraint the second.
type OutreachLog interface {
	Record(ctx context.Context, in RecordOutreachInput) (OutreachEvent, error)
}

type AppendLeadEventInput struct {
	LeadID    string
	TenantID  string
	EventType string
	Metadata  map[string]any
}

type LeadEventLog interface {
	Append(ctx context.Context, in AppendLeadEventInput) error
	CountSince(ctx context.Context, eventType string, since time.Time) (int64, error)
}

type StoreProvider interface {
	LeadStore() LeadStore
	TenantDirectory() TenantDirectory
	OutreachLog() OutreachLog
	LeadEventLog() LeadEventLog
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type InboundRequest struct {
	Source   string
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
}

type InboundResult struct {
	Accepted   bool
	StatusCode int
	Body       string
	Metadata   map[string]any
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider
