package leads_test

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	leads "github.com/goliatone/go-leads"
	"github.com/goliatone/go-leads/core"
	"github.com/goliatone/go-leads/dispatch"
	"github.com/goliatone/go-leads/draft"
	leadsmigrations "github.com/goliatone/go-leads/migrations"
	leadsquery "github.com/goliatone/go-leads/query"
	sqlstore "github.com/goliatone/go-leads/store/sql"
	"github.com/goliatone/go-leads/tenants"
	"github.com/goliatone/go-leads/webhooks"
)

// End-to-end composition: sqlite persistence, seeded reference data, template
// drafting, console dispatch and the webhook processor in front, with a
// retried delivery exercising the exactly-once boundary.
func TestComposition_WebhookDeliveryThroughFullPipeline(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newCompositionClient(t)
	defer cleanup()

	if err := sqlstore.SeedDemoData(ctx, client.DB()); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	factory, err := sqlstore.NewStoreFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("build store factory: %v", err)
	}

	drafter, err := draft.NewChain(nil, draft.NewTemplateDrafter())
	if err != nil {
		t.Fatalf("build drafter: %v", err)
	}
	var console bytes.Buffer
	sender := dispatch.NewConsoleSender(&console)

	service, err := leads.NewService(leads.DefaultConfig(),
		leads.WithPersistenceClient(client),
		leads.WithRepositoryFactory(factory),
		leads.WithDrafter(drafter),
		leads.WithSender(sender),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	processor := webhooks.NewProcessor(webhooks.NewAPIKeyVerifier("secret"), service)
	body := []byte(`{
		"CorrelationId": "corr-composed-1",
		"ALAccountId": "123456",
		"FirstName": "Amy",
		"LastName": "Pond",
		"Email": "amy@example.com",
		"Category": "plumbing"
	}`)
	request := core.InboundRequest{
		Source:  core.LeadSourceAngi,
		Headers: map[string]string{webhooks.DefaultAPIKeyHeader: "secret"},
		Body:    body,
	}

	first, err := processor.Process(ctx, request)
	if err != nil {
		t.Fatalf("process first delivery: %v", err)
	}
	if first.StatusCode != http.StatusOK || first.Body != webhooks.SuccessBody {
		t.Fatalf("unexpected first acknowledgement: %#v", first)
	}
	if first.Metadata["duplicate"] != false {
		t.Fatalf("expected fresh delivery, got %#v", first.Metadata)
	}
	if !strings.Contains(console.String(), "amy@example.com") {
		t.Fatalf("expected console dispatch to the lead contact, got:\n%s", console.String())
	}

	// Upstream retry of the same correlation id must acknowledge identically
	// and must not dispatch again.
	consoleLen := console.Len()
	second, err := processor.Process(ctx, request)
	if err != nil {
		t.Fatalf("process retried delivery: %v", err)
	}
	if second.StatusCode != http.StatusOK || second.Body != webhooks.SuccessBody {
		t.Fatalf("unexpected retry acknowledgement: %#v", second)
	}
	if second.Metadata["duplicate"] != true {
		t.Fatalf("expected duplicate delivery, got %#v", second.Metadata)
	}
	if console.Len() != consoleLen {
		t.Fatalf("expected no second dispatch, console grew by %d bytes", console.Len()-consoleLen)
	}

	var leadCount int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM leads WHERE correlation_id = ?", "corr-composed-1",
	).Scan(ctx, &leadCount); err != nil {
		t.Fatalf("count leads: %v", err)
	}
	if leadCount != 1 {
		t.Fatalf("expected one stored lead, got %d", leadCount)
	}

	var outreachCount int
	if err := client.DB().NewRaw("SELECT COUNT(*) FROM outreach_events").Scan(ctx, &outreachCount); err != nil {
		t.Fatalf("count outreach events: %v", err)
	}
	if outreachCount != 1 {
		t.Fatalf("expected exactly one outreach event, got %d", outreachCount)
	}

	// Account 123456 is seeded for the plumbing tenant; the lead must not be
	// routed to the default tenant.
	if first.Metadata["tenant_id"] == core.DefaultTenantID {
		t.Fatalf("expected mapped tenant, got default")
	}
}

func TestComposition_FacadeOverServiceAndStores(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newCompositionClient(t)
	defer cleanup()

	if err := sqlstore.SeedDemoData(ctx, client.DB()); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	factory, err := sqlstore.NewStoreFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("build store factory: %v", err)
	}

	drafter, err := draft.NewChain(nil, draft.NewTemplateDrafter())
	if err != nil {
		t.Fatalf("build drafter: %v", err)
	}
	service, err := leads.NewService(leads.DefaultConfig(),
		leads.WithPersistenceClient(client),
		leads.WithRepositoryFactory(factory),
		leads.WithDrafter(drafter),
		leads.WithSender(dispatch.NewConsoleSender(&bytes.Buffer{})),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	facade, err := leads.NewFacade(service)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	result, err := service.IngestLead(ctx, core.IngestLeadRequest{
		Payload: core.LeadPayload{
			CorrelationID: "corr-facade-1",
			AccountID:     "999999",
			Email:         "hvac@example.com",
		},
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("ingest lead: %v", err)
	}

	lead, err := facade.Queries().GetLead.Query(ctx, leadsquery.GetLeadMessage{CorrelationID: "corr-facade-1"})
	if err != nil {
		t.Fatalf("facade get lead: %v", err)
	}
	if lead.ID != result.LeadID {
		t.Fatalf("expected lead %q, got %q", result.LeadID, lead.ID)
	}

	events, err := facade.Queries().ListLeadEvents.Query(ctx, leadsquery.ListLeadEventsMessage{LeadID: result.LeadID})
	if err != nil {
		t.Fatalf("facade list events: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("expected audit events for ingested lead")
	}
	if events[0].EventType != core.LeadEventReceived {
		t.Fatalf("expected received event first, got %q", events[0].EventType)
	}
}

// The entrypoint composes the resolution cache in front of the sql-backed
// directory; repeated leads from the same account must hit the database once.
func TestComposition_CachedDirectoryServesRepeatAccounts(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newCompositionClient(t)
	defer cleanup()

	if err := sqlstore.SeedDemoData(ctx, client.DB()); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	factory, err := sqlstore.NewStoreFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("build store factory: %v", err)
	}

	base := &countingDirectory{base: factory.TenantDirectory()}
	cacheConfig := repositorycache.DefaultConfig()
	cacheConfig.TTL = time.Minute
	cacheService, err := repositorycache.NewCacheService(cacheConfig)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	directory, err := tenants.NewCachedDirectory(base, cacheService)
	if err != nil {
		t.Fatalf("new cached directory: %v", err)
	}

	service, err := leads.NewService(leads.DefaultConfig(),
		leads.WithPersistenceClient(client),
		leads.WithRepositoryFactory(factory),
		leads.WithTenantDirectory(directory),
		leads.WithDrafter(draft.NewTemplateDrafter()),
		leads.WithSender(dispatch.NewConsoleSender(&bytes.Buffer{})),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := service.IngestLead(ctx, core.IngestLeadRequest{
			Payload: core.LeadPayload{
				CorrelationID: fmt.Sprintf("corr-cached-%d", i),
				AccountID:     "123456",
				Email:         "pipes@example.com",
			},
		})
		if err != nil {
			t.Fatalf("ingest lead %d: %v", i, err)
		}
		if result.TenantID == core.DefaultTenantID {
			t.Fatalf("lead %d routed to default tenant despite seeded mapping", i)
		}
	}

	if base.calls != 1 {
		t.Fatalf("expected one directory lookup for the repeat account, got %d", base.calls)
	}
}

type countingDirectory struct {
	base  core.TenantDirectory
	calls int
}

func (d *countingDirectory) Resolve(ctx context.Context, accountID string) (core.TenantResolution, error) {
	d.calls++
	return d.base.Resolve(ctx, accountID)
}

func newCompositionClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:leads-composition-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := compositionPersistenceConfig{driver: "sqlite3", server: dsn}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	err = leadsmigrations.Register(ctx, func(_ context.Context, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, leadsmigrations.DialectSQLite)
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

type compositionPersistenceConfig struct {
	driver string
	server string
}

func (c compositionPersistenceConfig) GetDebug() bool {
	return false
}

func (c compositionPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c compositionPersistenceConfig) GetServer() string {
	return c.server
}

func (c compositionPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c compositionPersistenceConfig) GetOtelIdentifier() string {
	return "go-leads-tests"
}
